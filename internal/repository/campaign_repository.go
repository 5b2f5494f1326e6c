package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	appErrors "github.com/unclebandit/aisdr-backend/internal/errors"
	"github.com/unclebandit/aisdr-backend/internal/id"
	"github.com/unclebandit/aisdr-backend/internal/model"
)

// CampaignRepositoryInterface is the campaign store. Campaigns are append-only:
// there is no update or delete.
type CampaignRepositoryInterface interface {
	Insert(ctx context.Context, c *model.Campaign) error
	ListAll(ctx context.Context) ([]*model.Campaign, error)
	FindLatest(ctx context.Context) (*model.Campaign, error)
}

// CampaignRepository is the Postgres implementation.
type CampaignRepository struct {
	DB *sql.DB
}

const campaignColumns = `id, name, prompt, filters, campaign_people, campaign_contacts, created_at`

// ====================== Campaign store ======================

func (r *CampaignRepository) Insert(ctx context.Context, c *model.Campaign) error {
	if err := c.Validate(); err != nil {
		return err
	}

	people, err := json.Marshal(c.CampaignPeople)
	if err != nil {
		return fmt.Errorf("encode campaign people: %w", err)
	}
	contacts, err := json.Marshal(c.CampaignContacts)
	if err != nil {
		return fmt.Errorf("encode campaign contacts: %w", err)
	}
	// A typed nil slice is not SQL NULL to lib/pq; keep the interface nil.
	var filters any
	if c.Filters != nil {
		b, err := json.Marshal(c.Filters)
		if err != nil {
			return fmt.Errorf("encode filters: %w", err)
		}
		filters = b
	}

	newID := id.New()
	createdAt := time.Now().UTC().Truncate(time.Microsecond)

	query := `
        INSERT INTO campaigns (id, name, prompt, filters, campaign_people, campaign_contacts, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
    `
	if _, err := r.DB.ExecContext(ctx, query, newID, c.Name, c.Prompt, filters, people, contacts, createdAt); err != nil {
		return fmt.Errorf("insert campaign: %w", err)
	}

	c.ID = strconv.FormatInt(newID, 10)
	c.CreatedAt = createdAt
	return nil
}

func (r *CampaignRepository) ListAll(ctx context.Context) ([]*model.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns ORDER BY created_at DESC, id DESC`

	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list campaigns: %w", err)
	}
	defer rows.Close()

	campaigns := []*model.Campaign{}
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, err
		}
		campaigns = append(campaigns, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list campaigns: %w", err)
	}
	return campaigns, nil
}

func (r *CampaignRepository) FindLatest(ctx context.Context) (*model.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns ORDER BY created_at DESC, id DESC LIMIT 1`

	c, err := scanCampaign(r.DB.QueryRowContext(ctx, query))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NewCampaignNotFound()
		}
		return nil, err
	}
	return c, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCampaign(s scanner) (*model.Campaign, error) {
	var (
		rawID    int64
		filters  []byte
		people   []byte
		contacts []byte
		c        model.Campaign
	)
	if err := s.Scan(&rawID, &c.Name, &c.Prompt, &filters, &people, &contacts, &c.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan campaign: %w", err)
	}

	c.ID = strconv.FormatInt(rawID, 10)
	if len(filters) > 0 {
		c.Filters = &model.Filters{}
		if err := json.Unmarshal(filters, c.Filters); err != nil {
			return nil, fmt.Errorf("decode filters of campaign %d: %w", rawID, err)
		}
	}
	if err := json.Unmarshal(people, &c.CampaignPeople); err != nil {
		return nil, fmt.Errorf("decode people of campaign %d: %w", rawID, err)
	}
	if err := json.Unmarshal(contacts, &c.CampaignContacts); err != nil {
		return nil, fmt.Errorf("decode contacts of campaign %d: %w", rawID, err)
	}
	return &c, nil
}

var _ CampaignRepositoryInterface = (*CampaignRepository)(nil)
