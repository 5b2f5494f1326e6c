package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	appErrors "github.com/unclebandit/aisdr-backend/internal/errors"
	"github.com/unclebandit/aisdr-backend/internal/id"
	"github.com/unclebandit/aisdr-backend/internal/model"
)

// MemoryCampaignRepository keeps campaigns in process. Used by tests and by
// STORE_DRIVER=memory.
type MemoryCampaignRepository struct {
	mu        sync.Mutex
	campaigns []*model.Campaign
	last      time.Time
	now       func() time.Time
}

func NewMemoryCampaignRepository() *MemoryCampaignRepository {
	return &MemoryCampaignRepository{now: time.Now}
}

// WithClock replaces the time source used for createdAt.
func (r *MemoryCampaignRepository) WithClock(now func() time.Time) *MemoryCampaignRepository {
	r.now = now
	return r
}

func (r *MemoryCampaignRepository) Insert(ctx context.Context, c *model.Campaign) error {
	if err := c.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	createdAt := r.now().UTC()
	// createdAt never goes backwards.
	if !createdAt.After(r.last) && !r.last.IsZero() {
		createdAt = r.last.Add(time.Nanosecond)
	}
	r.last = createdAt

	c.ID = id.NewString()
	c.CreatedAt = createdAt
	r.campaigns = append(r.campaigns, clone(c))
	return nil
}

func (r *MemoryCampaignRepository) ListAll(ctx context.Context) ([]*model.Campaign, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*model.Campaign, 0, len(r.campaigns))
	for _, c := range r.campaigns {
		out = append(out, clone(c))
	}
	return out, nil
}

func (r *MemoryCampaignRepository) FindLatest(ctx context.Context) (*model.Campaign, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.campaigns) == 0 {
		return nil, appErrors.NewCampaignNotFound()
	}
	sorted := make([]*model.Campaign, len(r.campaigns))
	copy(sorted, r.campaigns)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})
	return clone(sorted[0]), nil
}

func clone(c *model.Campaign) *model.Campaign {
	cp := *c
	cp.CampaignPeople = append([]model.Person{}, c.CampaignPeople...)
	cp.CampaignContacts = append([]model.Contact{}, c.CampaignContacts...)
	if c.Filters != nil {
		f := *c.Filters
		cp.Filters = &f
	}
	return &cp
}

var _ CampaignRepositoryInterface = (*MemoryCampaignRepository)(nil)
