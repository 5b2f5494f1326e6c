package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/unclebandit/aisdr-backend/internal/model"
	"github.com/unclebandit/aisdr-backend/internal/service"
)

func TestExtractSlotsFillsMatchingSlots(t *testing.T) {
	slots := service.ExtractSlots(model.Slots{}, "Tech Directors in US")

	assert.Equal(t, "Tech Directors in US", slots.Role)
	assert.Equal(t, "Tech Directors in US", slots.Industry)
	assert.Equal(t, "Tech Directors in US", slots.Country)
	assert.Empty(t, slots.Department)
	assert.Empty(t, slots.Additional)
}

func TestExtractSlotsNeverOverwrites(t *testing.T) {
	slots := service.ExtractSlots(model.Slots{}, "Companies in fintech")
	assert.Equal(t, "Companies in fintech", slots.Industry)

	slots = service.ExtractSlots(slots, "actually healthtech, with recent funding")
	assert.Equal(t, "Companies in fintech", slots.Industry)
	assert.Equal(t, "actually healthtech, with recent funding", slots.Additional)
}

func TestExtractSlotsIndustryVariants(t *testing.T) {
	for _, in := range []string{"technology companies", "Techs in Berlin", "fintech startups"} {
		assert.Equal(t, in, service.ExtractSlots(model.Slots{}, in).Industry, in)
	}
	assert.Empty(t, service.ExtractSlots(model.Slots{}, "biotech labs").Industry)
}

func TestExtractSlotsUsesWholeWords(t *testing.T) {
	slots := service.ExtractSlots(model.Slots{}, "focus on said topics")
	assert.Equal(t, model.Slots{}, slots)
}

func TestIsTerminationToken(t *testing.T) {
	for _, in := range []string{"done", " Done ", "CONTINUE", "yes"} {
		assert.True(t, service.IsTerminationToken(in), in)
	}
	for _, in := range []string{"done!", "yes please", "", "ok"} {
		assert.False(t, service.IsTerminationToken(in), in)
	}
}

func TestExtractCanonicalPrompt(t *testing.T) {
	assert.Equal(t,
		"Target 25 Indian tech companies with recent funding",
		service.ExtractCanonicalPrompt(`Sure! "Target 25 Indian tech companies with recent funding" and "more"`))
	assert.Equal(t, "No quotes here", service.ExtractCanonicalPrompt("  No quotes here "))
}

func TestRenderForPerson(t *testing.T) {
	p := model.Person{Name: "Jo", OrganizationName: "Acme"}
	assert.Equal(t, "Hi Jo at Acme", service.RenderForPerson("Hi [NAME] at [COMPANY]", p))
	assert.Equal(t,
		"Jo, Jo works at Acme. Acme!",
		service.RenderForPerson("[NAME], [NAME] works at [COMPANY]. [COMPANY]!", p))
	assert.Equal(t, "Hi there at your company", service.RenderForPerson("Hi [NAME] at [COMPANY]", model.Person{}))
}
