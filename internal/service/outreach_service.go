// internal/service/outreach_service.go
package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	appErrors "github.com/unclebandit/aisdr-backend/internal/errors"
	"github.com/unclebandit/aisdr-backend/internal/llm"
	"github.com/unclebandit/aisdr-backend/internal/logger"
	"github.com/unclebandit/aisdr-backend/internal/model"
)

const (
	GenerationErrorMarker = "Error generating email"

	defaultConcurrency = 4

	writerInstruction = `You are an expert cold email writer.
Follow the user's instructions exactly. Output only the email body, no subject line and no commentary.`
)

// Dispatcher delivers one finalized batch. Implemented by the send-emails
// workflow client and the queue publisher.
type Dispatcher interface {
	DispatchEmails(ctx context.Context, recipients []model.Recipient) error
}

// queuer is implemented by dispatchers that only enqueue the batch for a
// worker; their success does not mean the webhook accepted it.
type queuer interface {
	Queued() bool
}

type OutreachService struct {
	Writer          llm.Completer
	Dispatcher      Dispatcher
	DefaultTemplate string
	Concurrency     int
	Logger          *zap.Logger
}

type GenerateRequest struct {
	Template    string         `json:"template"`
	Prospects   []model.Person `json:"prospects"`
	Drafts      model.Drafts   `json:"drafts"`
	OnlyMissing bool           `json:"onlyMissing"`
}

// GenerateResult carries the drafts plus the prospects that could not be
// written to because they have no usable email.
type GenerateResult struct {
	Drafts  model.Drafts   `json:"drafts"`
	Skipped []model.Person `json:"skipped"`
}

func (s *OutreachService) log() *zap.Logger {
	return logger.OrNop(s.Logger)
}

func (s *OutreachService) template(t string) string {
	if strings.TrimSpace(t) == "" {
		return s.DefaultTemplate
	}
	return t
}

// Preview renders the template for one prospect without calling the provider.
func (s *OutreachService) Preview(template string, p model.Person) string {
	return RenderForPerson(s.template(template), p)
}

// Generate drafts one email per addressable prospect. Every prospect is an
// independent request: a failure becomes that prospect's error marker and the
// rest of the batch carries on. The returned drafts start from req.Drafts;
// prospects without an address are listed in Skipped.
func (s *OutreachService) Generate(ctx context.Context, req GenerateRequest) GenerateResult {
	template := s.template(req.Template)

	out := make(model.Drafts, len(req.Drafts)+len(req.Prospects))
	for k, v := range req.Drafts {
		out[k] = v
	}

	limit := s.Concurrency
	if limit <= 0 {
		limit = defaultConcurrency
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	skipped := []model.Person{}
	seen := make(map[string]bool, len(req.Prospects))
	for _, p := range req.Prospects {
		if !Addressable(p) {
			skipped = append(skipped, p)
			continue
		}
		if seen[p.Email] {
			continue
		}
		seen[p.Email] = true
		if req.OnlyMissing && out[p.Email].OK() {
			continue
		}

		p := p
		g.Go(func() error {
			draft := s.generateOne(gctx, template, p)
			mu.Lock()
			out[p.Email] = draft
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	if len(skipped) > 0 {
		s.log().Info("prospects without email skipped", zap.Int("count", len(skipped)))
	}
	return GenerateResult{Drafts: out, Skipped: skipped}
}

func (s *OutreachService) generateOne(ctx context.Context, template string, p model.Person) model.Draft {
	prompt := RenderForPerson(template, p)
	content, err := s.Writer.Complete(ctx, writerInstruction, []model.ChatMessage{
		{Role: model.RoleUser, Content: prompt},
	})
	if err != nil {
		s.log().Warn("email generation failed", zap.String("email", p.Email), zap.Error(err))
		return model.Draft{Email: p.Email, Error: GenerationErrorMarker + ": " + err.Error()}
	}
	return model.Draft{Email: p.Email, Content: content}
}

// BuildRecipients keeps only selected prospects, in prospect order, once per
// email. Failed drafts yield an empty message.
func BuildRecipients(prospects []model.Person, selected []string, drafts model.Drafts) []model.Recipient {
	want := make(map[string]bool, len(selected))
	for _, e := range selected {
		want[e] = true
	}

	recipients := []model.Recipient{}
	seen := make(map[string]bool, len(selected))
	for _, p := range prospects {
		if !want[p.Email] || seen[p.Email] {
			continue
		}
		seen[p.Email] = true

		var message string
		if d, ok := drafts[p.Email]; ok && d.OK() {
			message = d.Content
		}
		recipients = append(recipients, model.Recipient{
			Company:     p.OrganizationName,
			Name:        p.Name,
			Email:       p.Email,
			LinkedinURL: p.LinkedinURL,
			Message:     message,
		})
	}
	return recipients
}

// Queued reports whether a successful Dispatch only enqueued the batch.
func (s *OutreachService) Queued() bool {
	q, ok := s.Dispatcher.(queuer)
	return ok && q.Queued()
}

// Dispatch hands the batch to the dispatcher in one call and returns how many
// recipients were submitted.
func (s *OutreachService) Dispatch(ctx context.Context, recipients []model.Recipient) (int, error) {
	if len(recipients) == 0 {
		return 0, appErrors.NewEmptySelection()
	}

	if err := s.Dispatcher.DispatchEmails(ctx, recipients); err != nil {
		s.log().Error("❌ dispatch failed", zap.Int("recipients", len(recipients)), zap.Error(err))
		var werr *appErrors.WorkflowError
		if errors.As(err, &werr) {
			return 0, err
		}
		return 0, appErrors.NewWorkflowError("dispatch", 0, err)
	}

	s.log().Info("✅ batch dispatched", zap.Int("recipients", len(recipients)))
	return len(recipients), nil
}
