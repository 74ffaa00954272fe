// Walkthrough and Step entities.
package types

import "time"

// Step positions. Where the step popover is anchored relative to its target.
const (
	PositionTop    = "top"
	PositionRight  = "right"
	PositionBottom = "bottom"
	PositionLeft   = "left"
)

// validPositions is the set of recognized step position values.
var validPositions = map[string]bool{
	PositionTop:    true,
	PositionRight:  true,
	PositionBottom: true,
	PositionLeft:   true,
}

// Step is one stop in a walkthrough, bound to a target UI element.
// Steps are embedded in their walkthrough and serialized as a single
// JSON array, so a walkthrough's steps always update atomically.
type Step struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	Target   string `json:"target"` // CSS selector identifying the UI element.
	Order    int    `json:"order"`  // Unique and monotonic within the walkthrough.
	Position string `json:"position,omitempty"`
	PageURL  string `json:"pageUrl,omitempty"`
}

// Validate checks that the step carries the minimum required fields.
func (s Step) Validate() error {
	if s.Title == "" || s.Content == "" || s.Target == "" {
		return ErrInvalidStep
	}
	if s.Position != "" && !validPositions[s.Position] {
		return ErrInvalidPosition
	}
	return nil
}

// Walkthrough is a named, ordered sequence of UI-tour steps.
type Walkthrough struct {
	ID          string    `json:"id"` // UUID, generated on creation.
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Steps       []Step    `json:"steps"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// WalkthroughInput carries the caller-supplied fields for creating a
// walkthrough. ID and timestamps are assigned by the repository.
type WalkthroughInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Steps       []Step `json:"steps"`
	IsActive    bool   `json:"isActive"`
}

// WalkthroughUpdate carries a partial update. Nil fields are left
// unchanged; UpdatedAt is always refreshed by the repository.
type WalkthroughUpdate struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Steps       *[]Step `json:"steps,omitempty"`
	IsActive    *bool   `json:"isActive,omitempty"`
}
