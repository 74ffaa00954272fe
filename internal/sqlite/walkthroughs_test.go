// Tests for the walkthrough repository.
package sqlite

import (
	"testing"
	"time"

	"github.com/tourforge/walkabout/pkg/types"
)

func twoSteps() []types.Step {
	return []types.Step{
		{ID: "s1", Title: "Welcome", Content: "Start here", Target: "#app", Order: 1, Position: types.PositionBottom},
		{ID: "s2", Title: "Menu", Content: "Open the menu", Target: ".nav", Order: 2},
	}
}

func TestWalkthroughRepo_CreateAndFindByID(t *testing.T) {
	s, _ := newTestStore(t)
	repo := NewWalkthroughRepo(s)

	created, err := repo.Create(types.WalkthroughInput{
		Name:        "Onboarding",
		Description: "First-run tour",
		Steps:       twoSteps(),
		IsActive:    true,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.ID == "" {
		t.Error("Create should assign an ID")
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Error("Create should stamp timestamps")
	}

	got, err := repo.FindByID(created.ID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if got == nil {
		t.Fatal("FindByID returned nil for existing walkthrough")
	}
	if got.Name != "Onboarding" || got.Description != "First-run tour" || !got.IsActive {
		t.Errorf("round-trip mismatch: %+v", got)
	}
	if len(got.Steps) != 2 {
		t.Fatalf("expected 2 steps, got %d", len(got.Steps))
	}
	if got.Steps[0].Position != types.PositionBottom || got.Steps[1].Order != 2 {
		t.Errorf("steps not preserved: %+v", got.Steps)
	}
}

func TestWalkthroughRepo_CreateRejectsInvalidInput(t *testing.T) {
	s, _ := newTestStore(t)
	repo := NewWalkthroughRepo(s)

	if _, err := repo.Create(types.WalkthroughInput{}); err != types.ErrInvalidInput {
		t.Errorf("expected ErrInvalidInput for empty name, got %v", err)
	}

	bad := types.WalkthroughInput{
		Name:  "Tour",
		Steps: []types.Step{{Title: "No target", Content: "x"}},
	}
	if _, err := repo.Create(bad); err != types.ErrInvalidStep {
		t.Errorf("expected ErrInvalidStep, got %v", err)
	}
}

func TestWalkthroughRepo_FindByIDMissing(t *testing.T) {
	s, _ := newTestStore(t)
	repo := NewWalkthroughRepo(s)

	got, err := repo.FindByID("no-such-id")
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if got != nil {
		t.Error("expected nil for missing walkthrough")
	}
}

func TestWalkthroughRepo_FindAllOrdering(t *testing.T) {
	s, _ := newTestStore(t)
	repo := NewWalkthroughRepo(s)

	first, err := repo.Create(types.WalkthroughInput{Name: "First"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	time.Sleep(5 * time.Millisecond) // distinct created_at
	second, err := repo.Create(types.WalkthroughInput{Name: "Second"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	all, err := repo.FindAll()
	if err != nil {
		t.Fatalf("FindAll failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 walkthroughs, got %d", len(all))
	}
	if all[0].ID != second.ID || all[1].ID != first.ID {
		t.Error("FindAll not ordered most recent first")
	}
}

func TestWalkthroughRepo_Update(t *testing.T) {
	s, _ := newTestStore(t)
	repo := NewWalkthroughRepo(s)

	created, err := repo.Create(types.WalkthroughInput{
		Name:        "Tour",
		Description: "Before",
		Steps:       twoSteps(),
		IsActive:    true,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	time.Sleep(5 * time.Millisecond)

	newName := "Renamed"
	inactive := false
	updated, err := repo.Update(created.ID, types.WalkthroughUpdate{
		Name:     &newName,
		IsActive: &inactive,
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated == nil {
		t.Fatal("Update returned nil for existing walkthrough")
	}
	if updated.Name != "Renamed" || updated.IsActive {
		t.Errorf("partial update not applied: %+v", updated)
	}
	// Untouched fields survive.
	if updated.Description != "Before" || len(updated.Steps) != 2 {
		t.Errorf("untouched fields changed: %+v", updated)
	}
	if !updated.UpdatedAt.After(created.UpdatedAt) {
		t.Error("Update should refresh UpdatedAt")
	}
	if !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Error("Update must not change CreatedAt")
	}
}

func TestWalkthroughRepo_UpdateMissing(t *testing.T) {
	s, _ := newTestStore(t)
	repo := NewWalkthroughRepo(s)

	name := "x"
	got, err := repo.Update("no-such-id", types.WalkthroughUpdate{Name: &name})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if got != nil {
		t.Error("expected nil for missing walkthrough")
	}

	all, err := repo.FindAll()
	if err != nil {
		t.Fatalf("FindAll failed: %v", err)
	}
	if len(all) != 0 {
		t.Error("Update on missing id must not write")
	}
}

func TestWalkthroughRepo_Delete(t *testing.T) {
	s, _ := newTestStore(t)
	repo := NewWalkthroughRepo(s)

	created, err := repo.Create(types.WalkthroughInput{Name: "Tour"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	removed, err := repo.Delete(created.ID)
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if !removed {
		t.Error("Delete should report true for existing row")
	}

	removed, err = repo.Delete(created.ID)
	if err != nil {
		t.Fatalf("second Delete failed: %v", err)
	}
	if removed {
		t.Error("Delete should report false for missing row")
	}
}

func TestWalkthroughRepo_CreateWithViewEvent(t *testing.T) {
	s, _ := newTestStore(t)
	walkthroughs := NewWalkthroughRepo(s)
	analytics := NewAnalyticsRepo(s)

	created, err := walkthroughs.CreateWithViewEvent(types.WalkthroughInput{
		Name:  "Tour",
		Steps: twoSteps(),
	}, "u1")
	if err != nil {
		t.Fatalf("CreateWithViewEvent failed: %v", err)
	}

	events, err := analytics.FindByWalkthrough(created.ID)
	if err != nil {
		t.Fatalf("FindByWalkthrough failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].Action != types.ActionView || events[0].StepID != "s1" {
		t.Errorf("unexpected first event: %+v", events[0])
	}
}

func TestWalkthroughRepo_CreateWithViewEventRollsBack(t *testing.T) {
	s, _ := newTestStore(t)
	repo := NewWalkthroughRepo(s)

	// Empty user id fails validation before any write.
	if _, err := repo.CreateWithViewEvent(types.WalkthroughInput{Name: "Tour"}, ""); err == nil {
		t.Fatal("expected error for empty user id")
	}

	all, err := repo.FindAll()
	if err != nil {
		t.Fatalf("FindAll failed: %v", err)
	}
	if len(all) != 0 {
		t.Error("failed composite create must leave no rows")
	}
}
