// internal/controller/campaign_controller.go
package controller

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	appErrors "github.com/unclebandit/aisdr-backend/internal/errors"
	"github.com/unclebandit/aisdr-backend/internal/handler"
	"github.com/unclebandit/aisdr-backend/internal/model"
	"github.com/unclebandit/aisdr-backend/internal/service"
)

type CampaignController struct {
	CampaignService *service.CampaignService
	Logger          *zap.Logger
}

type createCampaignBody struct {
	Name             string          `json:"name"`
	Prompt           string          `json:"prompt"`
	Filters          *model.Filters  `json:"filters"`
	CampaignPeople   []model.Person  `json:"campaignPeople"`
	CampaignContacts []model.Contact `json:"campaignContacts"`
}

// decodeCreateBody accepts the payload either as an object or wrapped in an
// array, in which case the first element is used.
func decodeCreateBody(r *http.Request) (createCampaignBody, error) {
	var body createCampaignBody

	raw, err := io.ReadAll(io.LimitReader(r.Body, 10<<20))
	if err != nil {
		return body, fmt.Errorf("read body: %w", err)
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return body, appErrors.NewValidation("body", "missing campaign data")
	}

	if raw[0] == '[' {
		var list []createCampaignBody
		if err := json.Unmarshal(raw, &list); err != nil {
			return body, appErrors.NewValidation("body", fmt.Sprintf("invalid request body: %v", err))
		}
		if len(list) == 0 {
			return body, appErrors.NewValidation("body", "missing campaign data")
		}
		return list[0], nil
	}

	if err := json.Unmarshal(raw, &body); err != nil {
		return body, appErrors.NewValidation("body", fmt.Sprintf("invalid request body: %v", err))
	}
	return body, nil
}

func (c *CampaignController) CreateCampaign(w http.ResponseWriter, r *http.Request) {
	body, err := decodeCreateBody(r)
	if err != nil {
		handler.WriteError(w, c.Logger, err)
		return
	}

	campaign, err := c.CampaignService.CreateCampaign(r.Context(), service.CreateCampaignInput{
		Name:             body.Name,
		Prompt:           body.Prompt,
		Filters:          body.Filters,
		CampaignPeople:   body.CampaignPeople,
		CampaignContacts: body.CampaignContacts,
	})
	if err != nil {
		handler.WriteError(w, c.Logger, err)
		return
	}

	handler.WriteJSON(w, http.StatusCreated, map[string]any{
		"message":  "Campaign saved successfully",
		"campaign": campaign,
	})
}

func (c *CampaignController) ListCampaigns(w http.ResponseWriter, r *http.Request) {
	campaigns, err := c.CampaignService.ListCampaigns(r.Context())
	if err != nil {
		handler.WriteError(w, c.Logger, err)
		return
	}
	handler.WriteJSON(w, http.StatusOK, campaigns)
}

func (c *CampaignController) LatestCampaign(w http.ResponseWriter, r *http.Request) {
	campaign, err := c.CampaignService.LatestCampaign(r.Context())
	if err != nil {
		handler.WriteError(w, c.Logger, err)
		return
	}
	handler.WriteJSON(w, http.StatusOK, campaign)
}

func (c *CampaignController) TopPeople(w http.ResponseWriter, r *http.Request) {
	n, err := queryInt(r, "n")
	if err != nil {
		handler.WriteError(w, c.Logger, err)
		return
	}
	people, err := c.CampaignService.TopPeople(r.Context(), n)
	if err != nil {
		handler.WriteError(w, c.Logger, err)
		return
	}
	handler.WriteJSON(w, http.StatusOK, people)
}

func (c *CampaignController) Prospects(w http.ResponseWriter, r *http.Request) {
	people, err := c.CampaignService.Prospects(r.Context())
	if err != nil {
		handler.WriteError(w, c.Logger, err)
		return
	}
	handler.WriteJSON(w, http.StatusOK, people)
}

func (c *CampaignController) GroupedProspects(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	groups, err := c.CampaignService.GroupedProspects(r.Context(), q.Get("company"), q.Get("q"))
	if err != nil {
		handler.WriteError(w, c.Logger, err)
		return
	}
	handler.WriteJSON(w, http.StatusOK, groups)
}

func (c *CampaignController) UniqueCompanies(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		handler.WriteError(w, c.Logger, err)
		return
	}
	people, err := c.CampaignService.UniqueCompanies(r.Context(), limit)
	if err != nil {
		handler.WriteError(w, c.Logger, err)
		return
	}
	handler.WriteJSON(w, http.StatusOK, people)
}

func (c *CampaignController) Analytics(w http.ResponseWriter, r *http.Request) {
	analytics, err := c.CampaignService.Analytics(r.Context())
	if err != nil {
		handler.WriteError(w, c.Logger, err)
		return
	}
	handler.WriteJSON(w, http.StatusOK, analytics)
}

// queryInt returns 0 when the parameter is absent.
func queryInt(r *http.Request, key string) (int, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, appErrors.NewValidation(key, "must be a non-negative integer")
	}
	return n, nil
}
