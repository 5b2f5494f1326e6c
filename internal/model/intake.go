// internal/model/intake.go
package model

import "time"

type IntakeState string

const (
	StateCollecting  IntakeState = "collecting"
	StateSummarizing IntakeState = "summarizing"
	StateConfirming  IntakeState = "confirming"
	StateDone        IntakeState = "done"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Slots hold the first user turn matching each keyword pattern.
type Slots struct {
	Role       string `json:"role"`
	Department string `json:"department"`
	Industry   string `json:"industry"`
	Country    string `json:"country"`
	Additional string `json:"additional"`
}

// Holding is the intake result handed to the outreach screens. A newly
// confirmed campaign replaces it wholesale.
type Holding struct {
	CampaignID       string    `json:"campaignId,omitempty"`
	CampaignPeople   []Person  `json:"campaignPeople"`
	CampaignContacts []Contact `json:"campaignContacts"`
}

type IntakeSession struct {
	ID              string        `json:"id"`
	State           IntakeState   `json:"state"`
	Slots           Slots         `json:"slots"`
	Transcript      []ChatMessage `json:"transcript"`
	CanonicalPrompt string        `json:"canonicalPrompt,omitempty"`
	Holding         *Holding      `json:"holding,omitempty"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
	// Version is bumped by every save; a save carrying an older version fails.
	Version int64 `json:"version"`
}
