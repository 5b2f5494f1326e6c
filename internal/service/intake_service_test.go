package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/unclebandit/aisdr-backend/internal/errors"
	"github.com/unclebandit/aisdr-backend/internal/model"
	"github.com/unclebandit/aisdr-backend/internal/repository"
	"github.com/unclebandit/aisdr-backend/internal/service"
	"github.com/unclebandit/aisdr-backend/internal/workflow"
)

type fakeCompleter struct {
	replies []string
	err     error
	calls   int
	last    []model.ChatMessage
}

func (f *fakeCompleter) Complete(ctx context.Context, system string, transcript []model.ChatMessage) (string, error) {
	f.calls++
	f.last = transcript
	if f.err != nil {
		return "", f.err
	}
	if len(f.replies) == 0 {
		return "ok", nil
	}
	r := f.replies[0]
	f.replies = f.replies[1:]
	return r, nil
}

type fakeResolver struct {
	result *workflow.ProspectResult
	err    error
	prompt string
}

func (f *fakeResolver) ResolveProspects(ctx context.Context, prompt string) (*workflow.ProspectResult, error) {
	f.prompt = prompt
	return f.result, f.err
}

// hookCompleter runs hook during the provider call.
type hookCompleter struct {
	hook func()
}

func (h *hookCompleter) Complete(ctx context.Context, system string, transcript []model.ChatMessage) (string, error) {
	h.hook()
	return "Which country?", nil
}

func newIntake(completer *fakeCompleter, resolver *fakeResolver) (*service.IntakeService, *repository.MemoryCampaignRepository) {
	campaigns := repository.NewMemoryCampaignRepository()
	return &service.IntakeService{
		Sessions:     repository.NewMemorySessionRepository(),
		CampaignRepo: campaigns,
		Assistant:    completer,
		Resolver:     resolver,
	}, campaigns
}

func TestIntakeStartGreets(t *testing.T) {
	svc, _ := newIntake(&fakeCompleter{}, &fakeResolver{})

	s, err := svc.Start(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, model.StateCollecting, s.State)
	require.Len(t, s.Transcript, 1)
	assert.Equal(t, service.Greeting, s.Transcript[0].Content)
}

func TestIntakeFullFlow(t *testing.T) {
	completer := &fakeCompleter{replies: []string{
		"Which country?",
		`Here you go: "Target Tech Directors in the US"`,
	}}
	resolver := &fakeResolver{result: &workflow.ProspectResult{
		CampaignPeople:   []model.RawPerson{{Name: strPtr("Ann"), OrganizationName: strPtr("Acme")}},
		CampaignContacts: []model.RawContact{{Company: strPtr("Acme")}},
	}}
	svc, campaigns := newIntake(completer, resolver)
	ctx := context.Background()

	s, err := svc.Start(ctx)
	require.NoError(t, err)

	s, err = svc.Turn(ctx, s.ID, "Tech Directors")
	require.NoError(t, err)
	assert.Equal(t, model.StateCollecting, s.State)
	assert.Equal(t, "Tech Directors", s.Slots.Role)
	assert.Equal(t, "Which country?", s.Transcript[len(s.Transcript)-1].Content)

	s, err = svc.Turn(ctx, s.ID, "done")
	require.NoError(t, err)
	assert.Equal(t, model.StateConfirming, s.State)
	assert.Equal(t, "Target Tech Directors in the US", s.CanonicalPrompt)
	assert.Equal(t, model.RoleSystem, completer.last[len(completer.last)-1].Role)

	s, err = svc.Confirm(ctx, s.ID, &model.Filters{Industry: "Tech"})
	require.NoError(t, err)
	assert.Equal(t, model.StateDone, s.State)
	assert.Equal(t, "Target Tech Directors in the US", resolver.prompt)

	holding, err := svc.Holding(ctx, s.ID)
	require.NoError(t, err)
	require.Len(t, holding.CampaignPeople, 1)
	assert.Equal(t, service.NotAvailable, holding.CampaignPeople[0].Email)
	assert.NotEmpty(t, holding.CampaignID)

	latest, err := campaigns.FindLatest(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Target Tech Directors in the US", latest.Prompt)
	assert.Equal(t, "Tech", latest.Filters.Industry)

	_, err = svc.Turn(ctx, s.ID, "one more")
	var verr *appErrors.ValidationError
	assert.True(t, errors.As(err, &verr))
}

func TestIntakeProviderFailureFallsBack(t *testing.T) {
	completer := &fakeCompleter{err: errors.New("rate limited")}
	svc, _ := newIntake(completer, &fakeResolver{})
	ctx := context.Background()

	s, err := svc.Start(ctx)
	require.NoError(t, err)

	s, err = svc.Turn(ctx, s.ID, "Directors in fintech")
	require.NoError(t, err)
	assert.Equal(t, service.FallbackReply, s.Transcript[len(s.Transcript)-1].Content)

	s, err = svc.Turn(ctx, s.ID, "yes")
	require.NoError(t, err)
	assert.Equal(t, model.StateCollecting, s.State)
	assert.Empty(t, s.CanonicalPrompt)
	assert.Equal(t, service.FallbackReply, s.Transcript[len(s.Transcript)-1].Content)
}

func TestIntakeConfirmWithoutPrompt(t *testing.T) {
	resolver := &fakeResolver{}
	svc, _ := newIntake(&fakeCompleter{}, resolver)
	ctx := context.Background()

	s, err := svc.Start(ctx)
	require.NoError(t, err)

	_, err = svc.Confirm(ctx, s.ID, nil)
	var verr *appErrors.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Empty(t, resolver.prompt)
}

func TestIntakeConfirmWorkflowFailureKeepsSession(t *testing.T) {
	completer := &fakeCompleter{replies: []string{`"Target CFOs"`}}
	resolver := &fakeResolver{err: appErrors.NewWorkflowError(workflow.WorkflowPromptIntent, 500, errors.New("boom"))}
	svc, campaigns := newIntake(completer, resolver)
	ctx := context.Background()

	s, err := svc.Start(ctx)
	require.NoError(t, err)
	_, err = svc.Turn(ctx, s.ID, "continue")
	require.NoError(t, err)

	_, err = svc.Confirm(ctx, s.ID, nil)
	var werr *appErrors.WorkflowError
	require.True(t, errors.As(err, &werr))

	s, err = svc.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StateConfirming, s.State)
	assert.Equal(t, "Target CFOs", s.CanonicalPrompt)

	all, err := campaigns.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestIntakeResetKeepsHolding(t *testing.T) {
	completer := &fakeCompleter{replies: []string{`"Target CFOs"`}}
	resolver := &fakeResolver{result: &workflow.ProspectResult{}}
	svc, _ := newIntake(completer, resolver)
	ctx := context.Background()

	s, err := svc.Start(ctx)
	require.NoError(t, err)
	_, err = svc.Turn(ctx, s.ID, "done")
	require.NoError(t, err)
	_, err = svc.Confirm(ctx, s.ID, nil)
	require.NoError(t, err)

	s, err = svc.Reset(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StateCollecting, s.State)
	assert.Empty(t, s.CanonicalPrompt)
	assert.Len(t, s.Transcript, 1)
	assert.NotNil(t, s.Holding)
}

func TestIntakeUnknownSession(t *testing.T) {
	svc, _ := newIntake(&fakeCompleter{}, &fakeResolver{})

	_, err := svc.Turn(context.Background(), "missing", "hello")
	var nf *appErrors.NotFoundError
	assert.True(t, errors.As(err, &nf))
}

func TestIntakeHoldingEmptyBeforeConfirm(t *testing.T) {
	svc, _ := newIntake(&fakeCompleter{}, &fakeResolver{})
	ctx := context.Background()

	s, err := svc.Start(ctx)
	require.NoError(t, err)
	holding, err := svc.Holding(ctx, s.ID)
	require.NoError(t, err)
	assert.Empty(t, holding.CampaignPeople)
	assert.NotNil(t, holding.CampaignContacts)
}

func TestIntakeConcurrentTurnConflicts(t *testing.T) {
	hook := &hookCompleter{}
	campaigns := repository.NewMemoryCampaignRepository()
	svc := &service.IntakeService{
		Sessions:     repository.NewMemorySessionRepository(),
		CampaignRepo: campaigns,
		Assistant:    hook,
		Resolver:     &fakeResolver{},
	}
	ctx := context.Background()

	s, err := svc.Start(ctx)
	require.NoError(t, err)

	hook.hook = func() {
		_, err := svc.Reset(ctx, s.ID)
		require.NoError(t, err)
	}
	_, err = svc.Turn(ctx, s.ID, "Tech Directors")
	var conflict *appErrors.ConflictError
	require.True(t, errors.As(err, &conflict))

	got, err := svc.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Slots.Role)
	assert.Len(t, got.Transcript, 1)
}
