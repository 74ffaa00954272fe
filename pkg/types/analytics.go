// AnalyticsEvent entity.
package types

import "time"

// Analytics actions recorded against a step.
const (
	ActionView     = "view"
	ActionComplete = "complete"
	ActionSkip     = "skip"
)

// AnalyticsEvent is an immutable log entry recording a user action
// against a walkthrough step. Events are created once and never mutated;
// they are removed only by bulk deletes or the parent walkthrough's
// cascade.
type AnalyticsEvent struct {
	ID            string         `json:"id"`
	WalkthroughID string         `json:"walkthroughId"`
	UserID        string         `json:"userId"`
	StepID        string         `json:"stepId"`
	Action        string         `json:"action"`
	Timestamp     time.Time      `json:"timestamp"`
	// Metadata is opaque to the store; it is serialized as-is and never
	// interpreted.
	Metadata map[string]any `json:"metadata,omitempty"`
}

// EventInput carries the caller-supplied fields for recording an event.
// A zero Timestamp is stamped to "now" by the repository.
type EventInput struct {
	WalkthroughID string         `json:"walkthroughId"`
	UserID        string         `json:"userId"`
	StepID        string         `json:"stepId"`
	Action        string         `json:"action"`
	Timestamp     time.Time      `json:"timestamp"`
	Metadata      map[string]any `json:"metadata,omitempty"`
}
