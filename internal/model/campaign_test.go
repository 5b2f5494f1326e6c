package model_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/unclebandit/aisdr-backend/internal/errors"
	"github.com/unclebandit/aisdr-backend/internal/model"
)

func TestCampaignValidate(t *testing.T) {
	tests := []struct {
		name    string
		c       *model.Campaign
		wantErr bool
	}{
		{"nil campaign", nil, true},
		{"missing people", &model.Campaign{CampaignContacts: []model.Contact{{Company: "Acme"}}}, true},
		{"missing contacts", &model.Campaign{CampaignPeople: []model.Person{{Name: "Jo"}}}, true},
		{"empty slices accepted", &model.Campaign{CampaignPeople: []model.Person{}, CampaignContacts: []model.Contact{}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.c.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			var verr *appErrors.ValidationError
			require.True(t, errors.As(err, &verr), "expected ValidationError, got %v", err)
		})
	}
}

func TestDraftOK(t *testing.T) {
	assert.True(t, model.Draft{Email: "a@b.c", Content: "hi"}.OK())
	assert.False(t, model.Draft{Email: "a@b.c", Error: "boom"}.OK())
	assert.False(t, model.Draft{Email: "a@b.c"}.OK())
}
