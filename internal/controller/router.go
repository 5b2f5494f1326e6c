package controller

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/unclebandit/aisdr-backend/internal/handler"
)

// Controllers groups everything the router mounts.
type Controllers struct {
	Campaigns *CampaignController
	Intake    *IntakeController
	Outreach  *OutreachController
	Import    *ImportController
}

// NewRouter mounts every route under /api. The request timeout leaves room
// for batch generation.
func NewRouter(c Controllers, log *zap.Logger, timeout time.Duration) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(handler.RequestLogger(log))
	r.Use(middleware.Recoverer)
	if timeout > 0 {
		r.Use(middleware.Timeout(timeout))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		handler.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		// Campaign routes
		r.Post("/campaigns", c.Campaigns.CreateCampaign)
		r.Get("/campaigns", c.Campaigns.ListCampaigns)
		r.Get("/campaigns/latest", c.Campaigns.LatestCampaign)
		r.Get("/campaigns/top", c.Campaigns.TopPeople)
		r.Get("/campaigns/prospects", c.Campaigns.Prospects)
		r.Get("/campaigns/prospects/grouped", c.Campaigns.GroupedProspects)
		r.Get("/campaigns/unique-companies", c.Campaigns.UniqueCompanies)
		r.Get("/campaigns/analytics", c.Campaigns.Analytics)

		// Intake routes
		r.Post("/intake/sessions", c.Intake.StartSession)
		r.Get("/intake/sessions/{id}", c.Intake.GetSession)
		r.Post("/intake/sessions/{id}/turns", c.Intake.Turn)
		r.Post("/intake/sessions/{id}/confirm", c.Intake.Confirm)
		r.Post("/intake/sessions/{id}/reset", c.Intake.Reset)
		r.Get("/intake/sessions/{id}/holding", c.Intake.Holding)

		// Outreach routes
		r.Post("/outreach/preview", c.Outreach.Preview)
		r.Post("/outreach/generate", c.Outreach.Generate)
		r.Post("/outreach/send", c.Outreach.Send)

		r.Post("/import/upload", c.Import.Upload)
	})

	return r
}
