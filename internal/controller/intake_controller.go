package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/unclebandit/aisdr-backend/internal/handler"
	"github.com/unclebandit/aisdr-backend/internal/model"
	"github.com/unclebandit/aisdr-backend/internal/service"
)

type IntakeController struct {
	IntakeService *service.IntakeService
	Logger        *zap.Logger
}

func (c *IntakeController) StartSession(w http.ResponseWriter, r *http.Request) {
	session, err := c.IntakeService.Start(r.Context())
	if err != nil {
		handler.WriteError(w, c.Logger, err)
		return
	}
	handler.WriteJSON(w, http.StatusCreated, session)
}

func (c *IntakeController) GetSession(w http.ResponseWriter, r *http.Request) {
	session, err := c.IntakeService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handler.WriteError(w, c.Logger, err)
		return
	}
	handler.WriteJSON(w, http.StatusOK, session)
}

func (c *IntakeController) Turn(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Message string `json:"message"`
	}
	if err := handler.DecodeJSON(r, &body); err != nil {
		handler.WriteError(w, c.Logger, err)
		return
	}

	session, err := c.IntakeService.Turn(r.Context(), chi.URLParam(r, "id"), body.Message)
	if err != nil {
		handler.WriteError(w, c.Logger, err)
		return
	}
	handler.WriteJSON(w, http.StatusOK, session)
}

// Confirm takes optional filters; an empty body is allowed.
func (c *IntakeController) Confirm(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Filters *model.Filters `json:"filters"`
	}
	if r.ContentLength != 0 {
		if err := handler.DecodeJSON(r, &body); err != nil {
			handler.WriteError(w, c.Logger, err)
			return
		}
	}

	session, err := c.IntakeService.Confirm(r.Context(), chi.URLParam(r, "id"), body.Filters)
	if err != nil {
		handler.WriteError(w, c.Logger, err)
		return
	}
	handler.WriteJSON(w, http.StatusOK, session)
}

func (c *IntakeController) Reset(w http.ResponseWriter, r *http.Request) {
	session, err := c.IntakeService.Reset(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handler.WriteError(w, c.Logger, err)
		return
	}
	handler.WriteJSON(w, http.StatusOK, session)
}

func (c *IntakeController) Holding(w http.ResponseWriter, r *http.Request) {
	holding, err := c.IntakeService.Holding(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handler.WriteError(w, c.Logger, err)
		return
	}
	handler.WriteJSON(w, http.StatusOK, holding)
}
