// Walkthrough repository: CRUD for the walkthrough aggregate. Steps are
// embedded in the row as one JSON array column so a walkthrough's step
// list always updates atomically.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tourforge/walkabout/pkg/types"
)

// WalkthroughRepo provides CRUD access to the walkthroughs table.
type WalkthroughRepo struct {
	store *Store
}

// NewWalkthroughRepo creates a walkthrough repository bound to the store.
func NewWalkthroughRepo(store *Store) *WalkthroughRepo {
	return &WalkthroughRepo{store: store}
}

// Create generates a fresh ID, stamps both timestamps to now, persists
// the walkthrough in one write, and returns the hydrated entity.
func (r *WalkthroughRepo) Create(input types.WalkthroughInput) (*types.Walkthrough, error) {
	db, err := r.store.Handle()
	if err != nil {
		return nil, err
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}

	id := uuid.New().String()
	now := formatTime(time.Now())

	stepsJSON, err := marshalSteps(input.Steps)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(
		`INSERT INTO walkthroughs (id, name, description, steps_json, is_active, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, input.Name, input.Description, stepsJSON, boolToInt(input.IsActive), now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting walkthrough: %w", wrapConstraint(err))
	}

	return r.FindByID(id)
}

// FindByID returns the walkthrough with the given ID, or nil if no such
// row exists. A missing row is not an error.
func (r *WalkthroughRepo) FindByID(id string) (*types.Walkthrough, error) {
	db, err := r.store.Handle()
	if err != nil {
		return nil, err
	}
	if id == "" {
		return nil, types.ErrInvalidID
	}

	row := db.QueryRow(
		`SELECT id, name, description, steps_json, is_active, created_at, updated_at
         FROM walkthroughs WHERE id = ?`, id,
	)
	w, err := scanWalkthrough(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting walkthrough %s: %w", id, err)
	}
	return w, nil
}

// FindAll returns every walkthrough, most recently created first.
func (r *WalkthroughRepo) FindAll() ([]*types.Walkthrough, error) {
	db, err := r.store.Handle()
	if err != nil {
		return nil, err
	}

	rows, err := db.Query(
		`SELECT id, name, description, steps_json, is_active, created_at, updated_at
         FROM walkthroughs ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing walkthroughs: %w", err)
	}
	defer rows.Close()

	results := []*types.Walkthrough{}
	for rows.Next() {
		w, err := scanWalkthrough(rows)
		if err != nil {
			return nil, fmt.Errorf("hydrating walkthrough: %w", err)
		}
		results = append(results, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating walkthroughs: %w", err)
	}
	return results, nil
}

// Update merges the provided fields into the existing row, always
// refreshing updated_at. Returns nil if the ID does not exist; that is a
// normal outcome, not an error.
func (r *WalkthroughRepo) Update(id string, upd types.WalkthroughUpdate) (*types.Walkthrough, error) {
	db, err := r.store.Handle()
	if err != nil {
		return nil, err
	}

	existing, err := r.FindByID(id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}

	sets := []string{}
	args := []any{}

	if upd.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *upd.Name)
	}
	if upd.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *upd.Description)
	}
	if upd.Steps != nil {
		for _, step := range *upd.Steps {
			if err := step.Validate(); err != nil {
				return nil, err
			}
		}
		stepsJSON, err := marshalSteps(*upd.Steps)
		if err != nil {
			return nil, err
		}
		sets = append(sets, "steps_json = ?")
		args = append(args, stepsJSON)
	}
	if upd.IsActive != nil {
		sets = append(sets, "is_active = ?")
		args = append(args, boolToInt(*upd.IsActive))
	}

	sets = append(sets, "updated_at = ?")
	args = append(args, formatTime(time.Now()))
	args = append(args, id)

	_, err = db.Exec(
		"UPDATE walkthroughs SET "+strings.Join(sets, ", ")+" WHERE id = ?",
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("updating walkthrough %s: %w", id, wrapConstraint(err))
	}

	return r.FindByID(id)
}

// Delete removes the walkthrough and reports whether a row existed. The
// engine cascades the delete to dependent user_progress and analytics
// rows.
func (r *WalkthroughRepo) Delete(id string) (bool, error) {
	db, err := r.store.Handle()
	if err != nil {
		return false, err
	}
	if id == "" {
		return false, types.ErrInvalidID
	}

	res, err := db.Exec("DELETE FROM walkthroughs WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("deleting walkthrough %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("deleting walkthrough %s: %w", id, err)
	}
	return n > 0, nil
}

// CreateWithViewEvent persists a walkthrough and its first "view"
// analytics event in a single explicit transaction; on any failure the
// transaction rolls back and the store is left in its prior state.
func (r *WalkthroughRepo) CreateWithViewEvent(input types.WalkthroughInput, userID string) (*types.Walkthrough, error) {
	db, err := r.store.Handle()
	if err != nil {
		return nil, err
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if userID == "" {
		return nil, types.ErrInvalidInput
	}

	id := uuid.New().String()
	now := time.Now()
	nowStr := formatTime(now)

	stepsJSON, err := marshalSteps(input.Steps)
	if err != nil {
		return nil, err
	}

	stepID := ""
	if len(input.Steps) > 0 {
		stepID = input.Steps[0].ID
	}

	tx, err := db.Begin()
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO walkthroughs (id, name, description, steps_json, is_active, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, input.Name, input.Description, stepsJSON, boolToInt(input.IsActive), nowStr, nowStr,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting walkthrough: %w", wrapConstraint(err))
	}

	_, err = tx.Exec(
		`INSERT INTO analytics (id, walkthrough_id, user_id, step_id, action, timestamp, metadata_json)
         VALUES (?, ?, ?, ?, ?, ?, NULL)`,
		uuid.New().String(), id, userID, stepID, types.ActionView, nowStr,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting first view event: %w", wrapConstraint(err))
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing walkthrough: %w", err)
	}

	return r.FindByID(id)
}

// validateInput checks the caller-supplied creation fields.
func validateInput(input types.WalkthroughInput) error {
	if input.Name == "" {
		return types.ErrInvalidInput
	}
	for _, step := range input.Steps {
		if err := step.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// marshalSteps serializes the step list to its canonical JSON array form.
// A nil list serializes as an empty array, never as JSON null.
func marshalSteps(steps []types.Step) (string, error) {
	if steps == nil {
		steps = []types.Step{}
	}
	data, err := json.Marshal(steps)
	if err != nil {
		return "", fmt.Errorf("marshaling steps: %w", err)
	}
	return string(data), nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanWalkthrough hydrates one walkthroughs row into a *types.Walkthrough.
func scanWalkthrough(row rowScanner) (*types.Walkthrough, error) {
	var w types.Walkthrough
	var stepsJSON, createdAt, updatedAt string
	var isActive int

	if err := row.Scan(&w.ID, &w.Name, &w.Description, &stepsJSON, &isActive, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(stepsJSON), &w.Steps); err != nil {
		return nil, fmt.Errorf("parsing steps_json: %w", err)
	}
	w.IsActive = isActive != 0

	var err error
	if w.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if w.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &w, nil
}

// boolToInt converts a bool to its SQLite integer representation.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
