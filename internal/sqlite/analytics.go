// Analytics repository: append and query immutable per-step usage
// events. Every list query orders by timestamp descending; the editor
// and analytics views depend on that ordering.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tourforge/walkabout/pkg/types"
)

// AnalyticsRepo provides access to the analytics table.
type AnalyticsRepo struct {
	store *Store
}

// NewAnalyticsRepo creates an analytics repository bound to the store.
func NewAnalyticsRepo(store *Store) *AnalyticsRepo {
	return &AnalyticsRepo{store: store}
}

// Create appends one event. Never idempotent: each call records a new
// row. A zero input timestamp is stamped to now. Referencing a
// nonexistent walkthrough fails with ErrConstraint. Metadata is
// serialized opaquely; the repository never interprets its contents.
func (r *AnalyticsRepo) Create(input types.EventInput) (*types.AnalyticsEvent, error) {
	db, err := r.store.Handle()
	if err != nil {
		return nil, err
	}
	if input.WalkthroughID == "" || input.UserID == "" || input.Action == "" {
		return nil, types.ErrInvalidInput
	}

	id := uuid.New().String()
	ts := input.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	var metadataJSON any // NULL when no metadata
	if input.Metadata != nil {
		data, err := json.Marshal(input.Metadata)
		if err != nil {
			return nil, fmt.Errorf("marshaling metadata: %w", err)
		}
		metadataJSON = string(data)
	}

	_, err = db.Exec(
		`INSERT INTO analytics (id, walkthrough_id, user_id, step_id, action, timestamp, metadata_json)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, input.WalkthroughID, input.UserID, input.StepID, input.Action, formatTime(ts), metadataJSON,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting event: %w", wrapConstraint(err))
	}

	return r.FindByID(id)
}

// FindByID returns the event with the given ID, or nil if no such row
// exists.
func (r *AnalyticsRepo) FindByID(id string) (*types.AnalyticsEvent, error) {
	db, err := r.store.Handle()
	if err != nil {
		return nil, err
	}
	if id == "" {
		return nil, types.ErrInvalidID
	}

	row := db.QueryRow(
		`SELECT id, walkthrough_id, user_id, step_id, action, timestamp, metadata_json
         FROM analytics WHERE id = ?`, id,
	)
	e, err := scanEvent(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting event %s: %w", id, err)
	}
	return e, nil
}

// FindByWalkthrough returns the walkthrough's events, newest first.
func (r *AnalyticsRepo) FindByWalkthrough(walkthroughID string) ([]*types.AnalyticsEvent, error) {
	return r.findAll(
		`SELECT id, walkthrough_id, user_id, step_id, action, timestamp, metadata_json
         FROM analytics WHERE walkthrough_id = ? ORDER BY timestamp DESC`, walkthroughID,
	)
}

// FindByUser returns the user's events, newest first.
func (r *AnalyticsRepo) FindByUser(userID string) ([]*types.AnalyticsEvent, error) {
	return r.findAll(
		`SELECT id, walkthrough_id, user_id, step_id, action, timestamp, metadata_json
         FROM analytics WHERE user_id = ? ORDER BY timestamp DESC`, userID,
	)
}

// FindByUserAndWalkthrough returns the user's events for one
// walkthrough, newest first.
func (r *AnalyticsRepo) FindByUserAndWalkthrough(userID, walkthroughID string) ([]*types.AnalyticsEvent, error) {
	return r.findAll(
		`SELECT id, walkthrough_id, user_id, step_id, action, timestamp, metadata_json
         FROM analytics WHERE user_id = ? AND walkthrough_id = ? ORDER BY timestamp DESC`,
		userID, walkthroughID,
	)
}

// FindByDateRange returns events with start <= timestamp <= end (both
// bounds inclusive), newest first.
func (r *AnalyticsRepo) FindByDateRange(start, end time.Time) ([]*types.AnalyticsEvent, error) {
	return r.findAll(
		`SELECT id, walkthrough_id, user_id, step_id, action, timestamp, metadata_json
         FROM analytics WHERE timestamp BETWEEN ? AND ? ORDER BY timestamp DESC`,
		formatTime(start), formatTime(end),
	)
}

// DeleteByWalkthrough bulk-deletes the walkthrough's events and reports
// whether any row was removed.
func (r *AnalyticsRepo) DeleteByWalkthrough(walkthroughID string) (bool, error) {
	return r.deleteWhere("walkthrough_id = ?", walkthroughID)
}

// DeleteByUser bulk-deletes the user's events and reports whether any
// row was removed.
func (r *AnalyticsRepo) DeleteByUser(userID string) (bool, error) {
	return r.deleteWhere("user_id = ?", userID)
}

// Delete removes one event and reports whether it existed.
func (r *AnalyticsRepo) Delete(id string) (bool, error) {
	if id == "" {
		return false, types.ErrInvalidID
	}
	return r.deleteWhere("id = ?", id)
}

// findAll runs a list query and hydrates every row.
func (r *AnalyticsRepo) findAll(query string, args ...any) ([]*types.AnalyticsEvent, error) {
	db, err := r.store.Handle()
	if err != nil {
		return nil, err
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	defer rows.Close()

	results := []*types.AnalyticsEvent{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("hydrating event: %w", err)
		}
		results = append(results, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating events: %w", err)
	}
	return results, nil
}

// deleteWhere deletes matching rows and reports whether any existed.
func (r *AnalyticsRepo) deleteWhere(cond string, args ...any) (bool, error) {
	db, err := r.store.Handle()
	if err != nil {
		return false, err
	}

	res, err := db.Exec("DELETE FROM analytics WHERE "+cond, args...)
	if err != nil {
		return false, fmt.Errorf("deleting events: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("deleting events: %w", err)
	}
	return n > 0, nil
}

// scanEvent hydrates one analytics row into a *types.AnalyticsEvent.
func scanEvent(row rowScanner) (*types.AnalyticsEvent, error) {
	var e types.AnalyticsEvent
	var timestamp string
	var metadataJSON sql.NullString

	if err := row.Scan(&e.ID, &e.WalkthroughID, &e.UserID, &e.StepID, &e.Action, &timestamp, &metadataJSON); err != nil {
		return nil, err
	}

	var err error
	if e.Timestamp, err = parseTime(timestamp); err != nil {
		return nil, err
	}

	if metadataJSON.Valid {
		if err := json.Unmarshal([]byte(metadataJSON.String), &e.Metadata); err != nil {
			return nil, fmt.Errorf("parsing metadata_json: %w", err)
		}
	}
	return &e, nil
}
