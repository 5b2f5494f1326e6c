package controller_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unclebandit/aisdr-backend/internal/controller"
	"github.com/unclebandit/aisdr-backend/internal/model"
	"github.com/unclebandit/aisdr-backend/internal/repository"
	"github.com/unclebandit/aisdr-backend/internal/service"
	"github.com/unclebandit/aisdr-backend/internal/workflow"
)

// --- Fakes ---

type scriptedAssistant struct {
	replies []string
}

func (a *scriptedAssistant) Complete(ctx context.Context, system string, transcript []model.ChatMessage) (string, error) {
	if len(a.replies) == 0 {
		return "Anything else?", nil
	}
	r := a.replies[0]
	a.replies = a.replies[1:]
	return r, nil
}

type stubResolver struct{}

func (stubResolver) ResolveProspects(ctx context.Context, prompt string) (*workflow.ProspectResult, error) {
	name, org, email := "Ann", "Acme", "ann@acme.io"
	return &workflow.ProspectResult{
		CampaignPeople:   []model.RawPerson{{Name: &name, OrganizationName: &org, Email: &email}},
		CampaignContacts: []model.RawContact{{Company: &org}},
	}, nil
}

type countingDispatcher struct {
	batches [][]model.Recipient
}

func (d *countingDispatcher) DispatchEmails(ctx context.Context, recipients []model.Recipient) error {
	d.batches = append(d.batches, recipients)
	return nil
}

// queuedDispatcher stands in for the AMQP publisher.
type queuedDispatcher struct {
	*countingDispatcher
}

func (queuedDispatcher) Queued() bool { return true }

type testServer struct {
	handler    http.Handler
	dispatcher *countingDispatcher
	assistant  *scriptedAssistant
}

func newTestServer() *testServer {
	return newTestServerWith(func(d *countingDispatcher) service.Dispatcher { return d })
}

func newTestServerWith(wrap func(*countingDispatcher) service.Dispatcher) *testServer {
	campaigns := repository.NewMemoryCampaignRepository()
	assistant := &scriptedAssistant{}
	dispatcher := &countingDispatcher{}

	h := controller.NewRouter(controller.Controllers{
		Campaigns: &controller.CampaignController{
			CampaignService: &service.CampaignService{
				CampaignRepo: campaigns,
				Placeholders: model.Placeholders{EmailsSentToday: 1423, ResponseRate: 0.235, MeetingsScheduled: 47},
			},
		},
		Intake: &controller.IntakeController{
			IntakeService: &service.IntakeService{
				Sessions:     repository.NewMemorySessionRepository(),
				CampaignRepo: campaigns,
				Assistant:    assistant,
				Resolver:     stubResolver{},
			},
		},
		Outreach: &controller.OutreachController{
			OutreachService: &service.OutreachService{
				Writer:          assistant,
				Dispatcher:      wrap(dispatcher),
				DefaultTemplate: "Hi [NAME] at [COMPANY]",
			},
		},
		Import: &controller.ImportController{
			ImportService: &service.ImportService{CampaignRepo: campaigns},
		},
	}, nil, 0)

	return &testServer{handler: h, dispatcher: dispatcher, assistant: assistant}
}

func (s *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

// --- Tests ---

func TestHealthz(t *testing.T) {
	s := newTestServer()
	w := s.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCreateCampaignAcceptsWrappedArray(t *testing.T) {
	s := newTestServer()

	w := s.do(t, http.MethodPost, "/api/campaigns", `[{
		"name": "Q3",
		"campaignPeople": [{"name":"Jo","organization_name":"Acme","email":"jo@acme.io"}],
		"campaignContacts": []
	}]`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(t, http.MethodGet, "/api/campaigns/latest", "")
	require.Equal(t, http.StatusOK, w.Code)
	latest := decode[model.Campaign](t, w)
	assert.Equal(t, "Q3", latest.Name)
	assert.Equal(t, "Acme", latest.CampaignPeople[0].OrganizationName)
}

func TestCreateCampaignValidation(t *testing.T) {
	s := newTestServer()

	w := s.do(t, http.MethodPost, "/api/campaigns", `{"campaignPeople": []}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "campaignContacts")

	w = s.do(t, http.MethodPost, "/api/campaigns", `[]`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/api/campaigns", `{not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReadViewsOnEmptyStore(t *testing.T) {
	s := newTestServer()

	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/campaigns/latest", "").Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/campaigns/unique-companies", "").Code)

	w := s.do(t, http.MethodGet, "/api/campaigns/prospects", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = s.do(t, http.MethodGet, "/api/campaigns/analytics", "")
	require.Equal(t, http.StatusOK, w.Code)
	analytics := decode[model.Analytics](t, w)
	assert.Zero(t, analytics.TotalProspects)
	assert.Equal(t, 1423, analytics.EmailsSentToday)
}

func TestQueryParameters(t *testing.T) {
	s := newTestServer()
	w := s.do(t, http.MethodPost, "/api/campaigns", `{
		"campaignPeople": [
			{"name":"Bob","title":"Z","organization_name":"Acme"},
			{"name":"Ann","title":"A","organization_name":"Acme"},
			{"name":"Cy","title":"M","organization_name":"Beta"}
		],
		"campaignContacts": []
	}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = s.do(t, http.MethodGet, "/api/campaigns/unique-companies?limit=1", "")
	require.Equal(t, http.StatusOK, w.Code)
	unique := decode[[]model.Person](t, w)
	require.Len(t, unique, 1)
	assert.Equal(t, "Bob", unique[0].Name)

	w = s.do(t, http.MethodGet, "/api/campaigns/top?n=2", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]model.Person](t, w), 2)

	w = s.do(t, http.MethodGet, "/api/campaigns/prospects/grouped", "")
	require.Equal(t, http.StatusOK, w.Code)
	groups := decode[[]model.CompanyGroup](t, w)
	require.Len(t, groups, 2)
	assert.Equal(t, "Acme", groups[0].Company)
	assert.Equal(t, "Ann", groups[0].People[0].Name)

	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/api/campaigns/top?n=abc", "").Code)
}

func TestIntakeOverHTTP(t *testing.T) {
	s := newTestServer()
	s.assistant.replies = []string{"Which country?", `"Target Acme engineers"`}

	w := s.do(t, http.MethodPost, "/api/intake/sessions", "")
	require.Equal(t, http.StatusCreated, w.Code)
	session := decode[model.IntakeSession](t, w)

	base := "/api/intake/sessions/" + session.ID
	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, base+"/turns", `{"message":"engineering managers"}`).Code)

	w = s.do(t, http.MethodPost, base+"/turns", `{"message":"done"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, model.StateConfirming, decode[model.IntakeSession](t, w).State)

	w = s.do(t, http.MethodPost, base+"/confirm", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, model.StateDone, decode[model.IntakeSession](t, w).State)

	w = s.do(t, http.MethodGet, base+"/holding", "")
	require.Equal(t, http.StatusOK, w.Code)
	holding := decode[model.Holding](t, w)
	require.Len(t, holding.CampaignPeople, 1)
	assert.Equal(t, "ann@acme.io", holding.CampaignPeople[0].Email)

	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPost, base+"/turns", `{"message":"more"}`).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/intake/sessions/nope", "").Code)
}

func TestOutreachOverHTTP(t *testing.T) {
	s := newTestServer()
	s.assistant.replies = []string{"Dear Jo"}

	w := s.do(t, http.MethodPost, "/api/outreach/preview", `{"prospect":{"name":"Jo","organization_name":"Acme"}}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"prompt":"Hi Jo at Acme"}`, w.Body.String())

	w = s.do(t, http.MethodPost, "/api/outreach/generate", `{"prospects":[
		{"name":"Jo","organization_name":"Acme","email":"jo@acme.io"},
		{"name":"Na","organization_name":"Beta","email":"Not Available"}
	]}`)
	require.Equal(t, http.StatusOK, w.Code)
	generated := decode[struct {
		Drafts  model.Drafts   `json:"drafts"`
		Skipped []model.Person `json:"skipped"`
	}](t, w)
	assert.Equal(t, "Dear Jo", generated.Drafts["jo@acme.io"].Content)
	require.Len(t, generated.Skipped, 1)
	assert.Equal(t, "Na", generated.Skipped[0].Name)

	w = s.do(t, http.MethodPost, "/api/outreach/send", `{"prospects":[{"email":"jo@acme.io"}],"selected":[]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, s.dispatcher.batches)

	w = s.do(t, http.MethodPost, "/api/outreach/send", `{
		"prospects":[{"name":"Jo","email":"jo@acme.io","organization_name":"Acme"}],
		"selected":["jo@acme.io"],
		"drafts":{"jo@acme.io":{"email":"jo@acme.io","content":"Dear Jo"}}
	}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decode[map[string]any](t, w)["sent"])
	require.Len(t, s.dispatcher.batches, 1)
	assert.Equal(t, "Dear Jo", s.dispatcher.batches[0][0].Message)
}

func TestSendAnswersAcceptedWhenQueued(t *testing.T) {
	s := newTestServerWith(func(d *countingDispatcher) service.Dispatcher { return queuedDispatcher{d} })

	w := s.do(t, http.MethodPost, "/api/outreach/send", `{
		"prospects":[{"name":"Jo","email":"jo@acme.io"},{"name":"Al","email":"al@beta.io"}],
		"selected":["jo@acme.io","al@beta.io"]
	}`)
	require.Equal(t, http.StatusAccepted, w.Code)
	body := decode[map[string]any](t, w)
	assert.Equal(t, float64(2), body["queued"])
	assert.NotContains(t, body, "sent")
	require.Len(t, s.dispatcher.batches, 1)
}

func TestImportUpload(t *testing.T) {
	s := newTestServer()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "leads.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte("name,email,company\nJo,jo@acme.io,Acme\n"))
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("save", "true"))
	require.NoError(t, mw.WriteField("name", "Imported"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/import/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(t, http.MethodGet, "/api/campaigns/latest", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Imported", decode[model.Campaign](t, w).Name)
}

func TestImportUploadWithoutFile(t *testing.T) {
	s := newTestServer()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("save", "true"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/import/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
