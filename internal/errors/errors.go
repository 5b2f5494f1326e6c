// internal/errors/errors.go
package appErrors

import "fmt"

// ValidationError is returned when a request into the store is malformed or incomplete.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidation(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NotFoundError means no document matched, e.g. no campaign exists yet.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("no %s found", e.Resource)
	}
	return fmt.Sprintf("%s with ID %s not found", e.Resource, e.ID)
}

func NewNotFound(resource, id string) error {
	return &NotFoundError{Resource: resource, ID: id}
}

// NewCampaignNotFound is the common case used by the read views.
func NewCampaignNotFound() error {
	return &NotFoundError{Resource: "campaign"}
}

// ProviderError wraps any failure of the chat-completion provider.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s provider: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

func NewProviderError(provider string, err error) error {
	return &ProviderError{Provider: provider, Err: err}
}

// WorkflowError wraps any failure of an external automation workflow.
type WorkflowError struct {
	Workflow   string
	StatusCode int
	Err        error
}

func (e *WorkflowError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("workflow %s: status %d: %v", e.Workflow, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("workflow %s: %v", e.Workflow, e.Err)
}

func (e *WorkflowError) Unwrap() error { return e.Err }

func NewWorkflowError(workflow string, status int, err error) error {
	return &WorkflowError{Workflow: workflow, StatusCode: status, Err: err}
}

// ConflictError means a stale copy was saved over a newer one.
type ConflictError struct {
	Resource string
	ID       string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %s was modified concurrently; reload and retry", e.Resource, e.ID)
}

func NewConflict(resource, id string) error {
	return &ConflictError{Resource: resource, ID: id}
}

// EmptySelectionError is raised by user-triggered actions with zero selected recipients.
type EmptySelectionError struct{}

func (e *EmptySelectionError) Error() string {
	return "no recipients selected"
}

func NewEmptySelection() error {
	return &EmptySelectionError{}
}
