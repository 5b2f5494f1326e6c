// internal/service/intake_service.go
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appErrors "github.com/unclebandit/aisdr-backend/internal/errors"
	"github.com/unclebandit/aisdr-backend/internal/llm"
	"github.com/unclebandit/aisdr-backend/internal/logger"
	"github.com/unclebandit/aisdr-backend/internal/model"
	"github.com/unclebandit/aisdr-backend/internal/repository"
	"github.com/unclebandit/aisdr-backend/internal/workflow"
)

const (
	Greeting = "👋 Hi! Tell me about the leads you're looking for (e.g., 'I want Directors from the Tech industry in the US')."

	FallbackReply = "🤖 Sorry, could you rephrase that?"

	assistantInstruction = `You are a helpful assistant for creating B2B lead generation campaigns.

Ask one follow-up question at a time to get:
- Role
- Department
- Industry
- Country
- Additional info

When the user says "done", "continue", or "yes", stop asking questions and summarize into the final campaign prompt.`

	summaryInstruction = `Summarize into final campaign prompt.
IMPORTANT:
- Output ONLY the campaign sentence itself.
- Wrap the prompt in double quotes.
- No greetings, no closing statements, no markdown formatting, no emojis.
Example:
"Target 25 Indian tech companies with recent funding, focusing on C-Suite executives."`

	campaignNameLength = 50
)

// ProspectResolver is the prompt-intent workflow.
type ProspectResolver interface {
	ResolveProspects(ctx context.Context, prompt string) (*workflow.ProspectResult, error)
}

// IntakeService runs the chat that turns free text into a campaign.
//
//	collecting --done|continue|yes--> summarizing --ok--> confirming --confirm--> done
//	     ^            |                                        |
//	     +--failure---+                     reset from any state returns to collecting
type IntakeService struct {
	Sessions     repository.SessionRepositoryInterface
	CampaignRepo repository.CampaignRepositoryInterface
	Assistant    llm.Completer
	Resolver     ProspectResolver
	Logger       *zap.Logger
	Now          func() time.Time
}

func (s *IntakeService) log() *zap.Logger {
	return logger.OrNop(s.Logger)
}

func (s *IntakeService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func greetingTranscript() []model.ChatMessage {
	return []model.ChatMessage{{Role: model.RoleAssistant, Content: Greeting}}
}

// Start opens a new session in the collecting state.
func (s *IntakeService) Start(ctx context.Context) (*model.IntakeSession, error) {
	now := s.now()
	session := &model.IntakeSession{
		ID:         uuid.NewString(),
		State:      model.StateCollecting,
		Transcript: greetingTranscript(),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.Sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *IntakeService) Get(ctx context.Context, sessionID string) (*model.IntakeSession, error) {
	return s.Sessions.Get(ctx, sessionID)
}

// Turn records one user message. Provider failures are answered with a
// fallback message and never returned as errors. The session is read before
// and saved after the provider call; if another request saved it meanwhile
// the save fails with a ConflictError and this turn is dropped.
func (s *IntakeService) Turn(ctx context.Context, sessionID, text string) (*model.IntakeSession, error) {
	session, err := s.Sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	switch session.State {
	case model.StateCollecting, model.StateConfirming:
	case model.StateDone:
		return nil, appErrors.NewValidation("state", "campaign already created; start over to begin a new one")
	default:
		return nil, appErrors.NewValidation("state", fmt.Sprintf("cannot accept messages while %s", session.State))
	}
	if strings.TrimSpace(text) == "" {
		return nil, appErrors.NewValidation("message", "message is required")
	}

	session.Transcript = append(session.Transcript, model.ChatMessage{Role: model.RoleUser, Content: text})
	session.Slots = ExtractSlots(session.Slots, text)

	if IsTerminationToken(text) {
		s.summarize(ctx, session)
	} else {
		s.followUp(ctx, session)
	}

	session.UpdatedAt = s.now()
	if err := s.Sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *IntakeService) followUp(ctx context.Context, session *model.IntakeSession) {
	reply, err := s.Assistant.Complete(ctx, assistantInstruction, session.Transcript)
	if err != nil {
		s.log().Warn("assistant follow-up failed", zap.String("session_id", session.ID), zap.Error(err))
		reply = FallbackReply
	}
	session.Transcript = append(session.Transcript, model.ChatMessage{Role: model.RoleAssistant, Content: reply})
}

func (s *IntakeService) summarize(ctx context.Context, session *model.IntakeSession) {
	previous := session.State
	session.State = model.StateSummarizing

	transcript := append(append([]model.ChatMessage{}, session.Transcript...),
		model.ChatMessage{Role: model.RoleSystem, Content: summaryInstruction})

	summary, err := s.Assistant.Complete(ctx, assistantInstruction, transcript)
	if err != nil {
		s.log().Warn("summarization failed", zap.String("session_id", session.ID), zap.Error(err))
		session.State = previous
		session.Transcript = append(session.Transcript, model.ChatMessage{Role: model.RoleAssistant, Content: FallbackReply})
		return
	}

	session.CanonicalPrompt = ExtractCanonicalPrompt(summary)
	session.Transcript = append(session.Transcript, model.ChatMessage{
		Role:    model.RoleAssistant,
		Content: fmt.Sprintf("✅ Here's your campaign prompt:\n\n👉 \"%s\"\n\nConfirm to run the workflow.", session.CanonicalPrompt),
	})
	session.State = model.StateConfirming
}

// Confirm submits the canonical prompt to the prompt-intent workflow, stores
// the normalized campaign and replaces the session's holding lists. On any
// failure the session is left as it was.
func (s *IntakeService) Confirm(ctx context.Context, sessionID string, filters *model.Filters) (*model.IntakeSession, error) {
	session, err := s.Sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.State != model.StateConfirming || strings.TrimSpace(session.CanonicalPrompt) == "" {
		return nil, appErrors.NewValidation("canonicalPrompt", "no final prompt available to send to workflow")
	}

	result, err := s.Resolver.ResolveProspects(ctx, session.CanonicalPrompt)
	if err != nil {
		s.log().Error("❌ failed to trigger workflow", zap.String("session_id", session.ID), zap.Error(err))
		return nil, err
	}

	campaign := &model.Campaign{
		Name:             truncateRunes(session.CanonicalPrompt, campaignNameLength),
		Prompt:           session.CanonicalPrompt,
		Filters:          filters,
		CampaignPeople:   NormalizePeople(result.CampaignPeople),
		CampaignContacts: NormalizeContacts(result.CampaignContacts),
	}
	if err := s.CampaignRepo.Insert(ctx, campaign); err != nil {
		s.log().Error("❌ failed to save campaign", zap.String("session_id", session.ID), zap.Error(err))
		return nil, err
	}

	session.Holding = &model.Holding{
		CampaignID:       campaign.ID,
		CampaignPeople:   campaign.CampaignPeople,
		CampaignContacts: campaign.CampaignContacts,
	}
	session.State = model.StateDone
	session.Transcript = append(session.Transcript, model.ChatMessage{
		Role:    model.RoleAssistant,
		Content: fmt.Sprintf("Campaign created with %d prospects across %d companies.", len(campaign.CampaignPeople), len(campaign.CampaignContacts)),
	})
	session.UpdatedAt = s.now()

	if err := s.Sessions.Save(ctx, session); err != nil {
		return nil, err
	}

	s.log().Info("campaign created from intake",
		zap.String("session_id", session.ID),
		zap.String("campaign_id", campaign.ID))
	return session, nil
}

// Reset clears slots, transcript and prompt. The holding lists stay until a
// new campaign replaces them.
func (s *IntakeService) Reset(ctx context.Context, sessionID string) (*model.IntakeSession, error) {
	session, err := s.Sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	session.State = model.StateCollecting
	session.Slots = model.Slots{}
	session.Transcript = greetingTranscript()
	session.CanonicalPrompt = ""
	session.UpdatedAt = s.now()

	if err := s.Sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Holding returns the lists produced by the session's last campaign, empty
// when none was confirmed yet.
func (s *IntakeService) Holding(ctx context.Context, sessionID string) (*model.Holding, error) {
	session, err := s.Sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Holding == nil {
		return &model.Holding{CampaignPeople: []model.Person{}, CampaignContacts: []model.Contact{}}, nil
	}
	return session.Holding, nil
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
