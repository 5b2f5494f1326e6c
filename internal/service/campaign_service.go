// internal/service/campaign_service.go
package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/unclebandit/aisdr-backend/internal/logger"
	"github.com/unclebandit/aisdr-backend/internal/model"
	"github.com/unclebandit/aisdr-backend/internal/repository"
)

// DefaultTopN is how many people the top view returns when no n is given.
const DefaultTopN = 3

// CampaignService exposes the read-side query variants over one repository.
// Every call reads the store at call time.
type CampaignService struct {
	CampaignRepo repository.CampaignRepositoryInterface
	Placeholders model.Placeholders
	Logger       *zap.Logger
}

// CreateCampaignInput mirrors the insert payload. Nil people or contacts mean
// the field was absent.
type CreateCampaignInput struct {
	Name             string
	Prompt           string
	Filters          *model.Filters
	CampaignPeople   []model.Person
	CampaignContacts []model.Contact
}

func (s *CampaignService) log() *zap.Logger {
	return logger.OrNop(s.Logger)
}

func (s *CampaignService) CreateCampaign(ctx context.Context, in CreateCampaignInput) (*model.Campaign, error) {
	c := &model.Campaign{
		Name:             in.Name,
		Prompt:           in.Prompt,
		Filters:          in.Filters,
		CampaignPeople:   in.CampaignPeople,
		CampaignContacts: in.CampaignContacts,
	}
	if err := s.CampaignRepo.Insert(ctx, c); err != nil {
		return nil, err
	}

	s.log().Info("campaign saved",
		zap.String("campaign_id", c.ID),
		zap.Int("people", len(c.CampaignPeople)),
		zap.Int("contacts", len(c.CampaignContacts)))
	return c, nil
}

// ListCampaigns returns every campaign, newest first.
func (s *CampaignService) ListCampaigns(ctx context.Context) ([]*model.Campaign, error) {
	campaigns, err := s.CampaignRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return LatestFirst(campaigns), nil
}

func (s *CampaignService) LatestCampaign(ctx context.Context) (*model.Campaign, error) {
	return s.CampaignRepo.FindLatest(ctx)
}

func (s *CampaignService) TopPeople(ctx context.Context, n int) ([]model.Person, error) {
	if n <= 0 {
		n = DefaultTopN
	}
	latest, err := s.CampaignRepo.FindLatest(ctx)
	if err != nil {
		return nil, err
	}
	return TopPeople(latest, n), nil
}

func (s *CampaignService) Prospects(ctx context.Context) ([]model.Person, error) {
	campaigns, err := s.CampaignRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return AllProspects(campaigns), nil
}

func (s *CampaignService) GroupedProspects(ctx context.Context, company, search string) ([]model.CompanyGroup, error) {
	people, err := s.Prospects(ctx)
	if err != nil {
		return nil, err
	}
	return GroupProspects(people, company, search), nil
}

// UniqueCompanies is scoped to the latest campaign only.
func (s *CampaignService) UniqueCompanies(ctx context.Context, limit int) ([]model.Person, error) {
	latest, err := s.CampaignRepo.FindLatest(ctx)
	if err != nil {
		return nil, err
	}
	return UniqueCompanies(latest, limit), nil
}

// Analytics counts companies across all campaigns, unlike UniqueCompanies.
func (s *CampaignService) Analytics(ctx context.Context) (*model.Analytics, error) {
	campaigns, err := s.CampaignRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	a := ComputeAnalytics(campaigns, s.Placeholders)
	return &a, nil
}
