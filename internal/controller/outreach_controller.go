package controller

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/unclebandit/aisdr-backend/internal/handler"
	"github.com/unclebandit/aisdr-backend/internal/model"
	"github.com/unclebandit/aisdr-backend/internal/service"
)

type OutreachController struct {
	OutreachService *service.OutreachService
	Logger          *zap.Logger
}

func (c *OutreachController) Preview(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Template string       `json:"template"`
		Prospect model.Person `json:"prospect"`
	}
	if err := handler.DecodeJSON(r, &body); err != nil {
		handler.WriteError(w, c.Logger, err)
		return
	}

	handler.WriteJSON(w, http.StatusOK, map[string]string{
		"prompt": c.OutreachService.Preview(body.Template, body.Prospect),
	})
}

// Generate always answers 200; failed prospects carry an error in their draft
// and prospects without an email come back under skipped.
func (c *OutreachController) Generate(w http.ResponseWriter, r *http.Request) {
	var body service.GenerateRequest
	if err := handler.DecodeJSON(r, &body); err != nil {
		handler.WriteError(w, c.Logger, err)
		return
	}

	handler.WriteJSON(w, http.StatusOK, c.OutreachService.Generate(r.Context(), body))
}

// Send answers 200 {"sent"} when the dispatcher delivered the batch and 202
// {"queued"} when it was only enqueued for cmd/worker.
func (c *OutreachController) Send(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Prospects []model.Person `json:"prospects"`
		Selected  []string       `json:"selected"`
		Drafts    model.Drafts   `json:"drafts"`
	}
	if err := handler.DecodeJSON(r, &body); err != nil {
		handler.WriteError(w, c.Logger, err)
		return
	}

	recipients := service.BuildRecipients(body.Prospects, body.Selected, body.Drafts)
	sent, err := c.OutreachService.Dispatch(r.Context(), recipients)
	if err != nil {
		handler.WriteError(w, c.Logger, err)
		return
	}

	if c.OutreachService.Queued() {
		handler.WriteJSON(w, http.StatusAccepted, map[string]any{
			"queued":     sent,
			"recipients": recipients,
		})
		return
	}
	handler.WriteJSON(w, http.StatusOK, map[string]any{
		"sent":       sent,
		"recipients": recipients,
	})
}
