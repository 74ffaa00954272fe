// User progress repository: per-(user, walkthrough) progress state.
// Uniqueness of the pair is enforced by the schema's unique index; Create
// is an upsert against that index, so concurrent first-interaction
// writes collapse to a single row instead of racing a check-then-insert.
package sqlite

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tourforge/walkabout/pkg/types"
)

// ProgressRepo provides access to the user_progress table.
type ProgressRepo struct {
	store *Store
}

// NewProgressRepo creates a progress repository bound to the store.
func NewProgressRepo(store *Store) *ProgressRepo {
	return &ProgressRepo{store: store}
}

// Create records progress for a (user, walkthrough) pair. If a row for
// the pair already exists, its current_step, completed, and updated_at
// are replaced and the existing row is returned; otherwise a new row is
// inserted. Referencing a nonexistent walkthrough fails with
// ErrConstraint.
func (r *ProgressRepo) Create(input types.ProgressInput) (*types.UserProgress, error) {
	db, err := r.store.Handle()
	if err != nil {
		return nil, err
	}
	if input.UserID == "" || input.WalkthroughID == "" {
		return nil, types.ErrInvalidInput
	}

	now := formatTime(time.Now())

	_, err = db.Exec(
		`INSERT INTO user_progress (id, user_id, walkthrough_id, current_step, completed, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)
         ON CONFLICT(user_id, walkthrough_id) DO UPDATE SET
             current_step = excluded.current_step,
             completed = excluded.completed,
             updated_at = excluded.updated_at`,
		uuid.New().String(), input.UserID, input.WalkthroughID,
		input.CurrentStep, boolToInt(input.Completed), now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("upserting progress: %w", wrapConstraint(err))
	}

	return r.FindByUserAndWalkthrough(input.UserID, input.WalkthroughID)
}

// FindByID returns the progress row with the given ID, or nil if no such
// row exists.
func (r *ProgressRepo) FindByID(id string) (*types.UserProgress, error) {
	db, err := r.store.Handle()
	if err != nil {
		return nil, err
	}
	if id == "" {
		return nil, types.ErrInvalidID
	}

	row := db.QueryRow(
		`SELECT id, user_id, walkthrough_id, current_step, completed, created_at, updated_at
         FROM user_progress WHERE id = ?`, id,
	)
	p, err := scanProgress(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting progress %s: %w", id, err)
	}
	return p, nil
}

// FindByUserAndWalkthrough is the canonical unique lookup. Returns nil
// when the pair has no progress row.
func (r *ProgressRepo) FindByUserAndWalkthrough(userID, walkthroughID string) (*types.UserProgress, error) {
	db, err := r.store.Handle()
	if err != nil {
		return nil, err
	}

	row := db.QueryRow(
		`SELECT id, user_id, walkthrough_id, current_step, completed, created_at, updated_at
         FROM user_progress WHERE user_id = ? AND walkthrough_id = ?`,
		userID, walkthroughID,
	)
	p, err := scanProgress(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting progress for user %s: %w", userID, err)
	}
	return p, nil
}

// FindAllByUser returns every progress row for the user, most recently
// created first.
func (r *ProgressRepo) FindAllByUser(userID string) ([]*types.UserProgress, error) {
	return r.findAll(
		`SELECT id, user_id, walkthrough_id, current_step, completed, created_at, updated_at
         FROM user_progress WHERE user_id = ? ORDER BY created_at DESC`, userID,
	)
}

// FindAllByWalkthrough returns every progress row for the walkthrough,
// most recently created first.
func (r *ProgressRepo) FindAllByWalkthrough(walkthroughID string) ([]*types.UserProgress, error) {
	return r.findAll(
		`SELECT id, user_id, walkthrough_id, current_step, completed, created_at, updated_at
         FROM user_progress WHERE walkthrough_id = ? ORDER BY created_at DESC`, walkthroughID,
	)
}

// Update rewrites only the supplied fields, always bumping updated_at.
// Returns nil if the target ID does not exist.
func (r *ProgressRepo) Update(id string, upd types.ProgressUpdate) (*types.UserProgress, error) {
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

	if upd.CurrentStep != nil {
		sets = append(sets, "current_step = ?")
		args = append(args, *upd.CurrentStep)
	}
	if upd.Completed != nil {
		sets = append(sets, "completed = ?")
		args = append(args, boolToInt(*upd.Completed))
	}

	sets = append(sets, "updated_at = ?")
	args = append(args, formatTime(time.Now()))
	args = append(args, id)

	_, err = db.Exec(
		"UPDATE user_progress SET "+strings.Join(sets, ", ")+" WHERE id = ?",
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("updating progress %s: %w", id, err)
	}

	return r.FindByID(id)
}

// Delete removes one progress row and reports whether it existed.
func (r *ProgressRepo) Delete(id string) (bool, error) {
	db, err := r.store.Handle()
	if err != nil {
		return false, err
	}
	if id == "" {
		return false, types.ErrInvalidID
	}

	res, err := db.Exec("DELETE FROM user_progress WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("deleting progress %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("deleting progress %s: %w", id, err)
	}
	return n > 0, nil
}

// DeleteAllByWalkthrough bulk-deletes every progress row for the
// walkthrough and reports whether any row was removed.
func (r *ProgressRepo) DeleteAllByWalkthrough(walkthroughID string) (bool, error) {
	db, err := r.store.Handle()
	if err != nil {
		return false, err
	}

	res, err := db.Exec("DELETE FROM user_progress WHERE walkthrough_id = ?", walkthroughID)
	if err != nil {
		return false, fmt.Errorf("deleting progress for walkthrough %s: %w", walkthroughID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("deleting progress for walkthrough %s: %w", walkthroughID, err)
	}
	return n > 0, nil
}

// findAll runs a list query and hydrates every row.
func (r *ProgressRepo) findAll(query string, args ...any) ([]*types.UserProgress, error) {
	db, err := r.store.Handle()
	if err != nil {
		return nil, err
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing progress: %w", err)
	}
	defer rows.Close()

	results := []*types.UserProgress{}
	for rows.Next() {
		p, err := scanProgress(rows)
		if err != nil {
			return nil, fmt.Errorf("hydrating progress: %w", err)
		}
		results = append(results, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating progress: %w", err)
	}
	return results, nil
}

// scanProgress hydrates one user_progress row into a *types.UserProgress.
func scanProgress(row rowScanner) (*types.UserProgress, error) {
	var p types.UserProgress
	var completed int
	var createdAt, updatedAt string

	if err := row.Scan(&p.ID, &p.UserID, &p.WalkthroughID, &p.CurrentStep, &completed, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	p.Completed = completed != 0

	var err error
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if p.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}
