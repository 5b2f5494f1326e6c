// internal/model/campaign.go
package model

import (
	"time"

	appErrors "github.com/unclebandit/aisdr-backend/internal/errors"
)

// Filters are advisory search hints attached to a campaign. They are never
// enforced against the returned people.
type Filters struct {
	Industry    string `json:"industry,omitempty" bson:"industry,omitempty"`
	CompanySize string `json:"companySize,omitempty" bson:"companySize,omitempty"`
	SearchLimit string `json:"searchLimit,omitempty" bson:"searchLimit,omitempty"`
}

type Campaign struct {
	ID               string    `json:"id" bson:"-"`
	Name             string    `json:"name,omitempty" bson:"name,omitempty"`
	Prompt           string    `json:"prompt,omitempty" bson:"prompt,omitempty"`
	Filters          *Filters  `json:"filters,omitempty" bson:"filters,omitempty"`
	CampaignPeople   []Person  `json:"campaignPeople" bson:"campaignPeople"`
	CampaignContacts []Contact `json:"campaignContacts" bson:"campaignContacts"`
	CreatedAt        time.Time `json:"createdAt" bson:"createdAt"`
}

// Validate checks the fields every store requires before insert. A nil slice
// means the field was absent; an empty slice is accepted.
func (c *Campaign) Validate() error {
	if c == nil {
		return appErrors.NewValidation("", "campaign is required")
	}
	if c.CampaignPeople == nil {
		return appErrors.NewValidation("campaignPeople", "missing campaign data")
	}
	if c.CampaignContacts == nil {
		return appErrors.NewValidation("campaignContacts", "missing campaign data")
	}
	return nil
}
