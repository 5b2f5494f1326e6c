// internal/workflow/client.go
package workflow

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/unclebandit/aisdr-backend/internal/errors"
	"github.com/unclebandit/aisdr-backend/internal/logger"
	"github.com/unclebandit/aisdr-backend/internal/model"
)

const (
	WorkflowPromptIntent = "prompt-intent"
	WorkflowSendEmails   = "send-emails"
)

// ProspectResult is what the prompt-intent workflow returns.
type ProspectResult struct {
	CampaignPeople   []model.RawPerson  `json:"campaignPeople"`
	CampaignContacts []model.RawContact `json:"campaignContacts"`
}

// Client calls the automation webhooks.
type Client struct {
	HTTP            *http.Client
	PromptIntentURL string
	SendEmailsURL   string
	Logger          *zap.Logger
}

func NewClient(promptIntentURL, sendEmailsURL string, timeout time.Duration, log *zap.Logger) *Client {
	return &Client{
		HTTP:            &http.Client{Timeout: timeout},
		PromptIntentURL: promptIntentURL,
		SendEmailsURL:   sendEmailsURL,
		Logger:          logger.OrNop(log),
	}
}

// ResolveProspects submits the canonical prompt and returns the raw people and
// contacts. A response wrapped in an outer array is unwrapped.
func (c *Client) ResolveProspects(ctx context.Context, prompt string) (*ProspectResult, error) {
	body, err := c.post(ctx, WorkflowPromptIntent, c.PromptIntentURL, map[string]string{"prompt": prompt})
	if err != nil {
		return nil, err
	}

	result, err := decodeProspects(body)
	if err != nil {
		return nil, appErrors.NewWorkflowError(WorkflowPromptIntent, 0, err)
	}

	c.Logger.Info("prospects resolved",
		zap.Int("people", len(result.CampaignPeople)),
		zap.Int("contacts", len(result.CampaignContacts)))
	return result, nil
}

// DispatchEmails hands the whole batch to the send-emails workflow in one request.
func (c *Client) DispatchEmails(ctx context.Context, recipients []model.Recipient) error {
	_, err := c.post(ctx, WorkflowSendEmails, c.SendEmailsURL, model.DispatchBatch{Recipients: recipients})
	if err != nil {
		return err
	}
	c.Logger.Info("📨 dispatch batch delivered to workflow", zap.Int("recipients", len(recipients)))
	return nil
}

func decodeProspects(body []byte) (*ProspectResult, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, errors.New("empty response")
	}

	if trimmed[0] == '[' {
		var wrapped []ProspectResult
		if err := json.Unmarshal(trimmed, &wrapped); err != nil {
			return nil, fmt.Errorf("decode response: %w", err)
		}
		if len(wrapped) == 0 {
			return &ProspectResult{}, nil
		}
		return &wrapped[0], nil
	}

	var result ProspectResult
	if err := json.Unmarshal(trimmed, &result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &result, nil
}

func (c *Client) post(ctx context.Context, name, url string, payload any) ([]byte, error) {
	if url == "" {
		return nil, appErrors.NewWorkflowError(name, 0, errors.New("webhook URL not configured"))
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, appErrors.NewWorkflowError(name, 0, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		return nil, appErrors.NewWorkflowError(name, 0, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, appErrors.NewWorkflowError(name, 0, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, appErrors.NewWorkflowError(name, resp.StatusCode, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.Logger.Warn("workflow returned non-success status",
			zap.String("workflow", name),
			zap.Int("status", resp.StatusCode))
		return nil, appErrors.NewWorkflowError(name, resp.StatusCode, fmt.Errorf("HTTP error! Status: %d", resp.StatusCode))
	}
	return body, nil
}
