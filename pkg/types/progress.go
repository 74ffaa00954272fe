// UserProgress entity.
package types

import "time"

// NotStarted is the sentinel CurrentStep value for a progress row created
// before the user has advanced past the first step.
const NotStarted = 0

// UserProgress records how far a user has advanced through a walkthrough.
// At most one row exists per (UserID, WalkthroughID) pair; the store
// enforces this with a unique index and upsert writes.
type UserProgress struct {
	ID            string    `json:"id"`
	UserID        string    `json:"userId"`
	WalkthroughID string    `json:"walkthroughId"`
	CurrentStep   int       `json:"currentStep"`
	Completed     bool      `json:"completed"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// ProgressInput carries the caller-supplied fields for creating a
// progress row.
type ProgressInput struct {
	UserID        string `json:"userId"`
	WalkthroughID string `json:"walkthroughId"`
	CurrentStep   int    `json:"currentStep"`
	Completed     bool   `json:"completed"`
}

// ProgressUpdate carries a partial update. Nil fields are left unchanged;
// UpdatedAt is always refreshed by the repository.
type ProgressUpdate struct {
	CurrentStep *int  `json:"currentStep,omitempty"`
	Completed   *bool `json:"completed,omitempty"`
}
