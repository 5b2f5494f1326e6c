// internal/model/outreach.go
package model

// Draft is the generated email body for one prospect. Error is set instead of
// Content when the generation request failed.
type Draft struct {
	Email   string `json:"email"`
	Content string `json:"content,omitempty"`
	Error   string `json:"error,omitempty"`
}

func (d Draft) OK() bool {
	return d.Error == "" && d.Content != ""
}

// Drafts are keyed by prospect email.
type Drafts map[string]Draft

// Recipient is one entry of a dispatch batch.
type Recipient struct {
	Company     string `json:"company"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	LinkedinURL string `json:"linkedin_url"`
	Message     string `json:"message"`
}

// DispatchBatch is the payload handed to the send-emails workflow.
type DispatchBatch struct {
	Recipients []Recipient `json:"recipients"`
}
