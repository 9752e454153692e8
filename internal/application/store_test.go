package application

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func storedApplication(t *testing.T, s *Store, userID string) *Application {
	t.Helper()
	app, err := Build(testCatalog(t), Input{
		UserID:           userID,
		Principal:        dec("2000000"),
		MonthlyIncome:    dec("50000"),
		DesiredTermYears: 20,
		ProductIDs:       []int64{1},
	}, buildTime)
	if err != nil {
		t.Fatalf("Build() error: %s", err)
	}
	if err := s.Create(app); err != nil {
		t.Fatalf("Create() error: %s", err)
	}
	return app
}

func TestStoreCreateAssignsSequentialNumbers(t *testing.T) {
	s := newTestStore(t)

	first := storedApplication(t, s, "user-1")
	second := storedApplication(t, s, "user-2")

	if first.Number != "2025060001" {
		t.Errorf("first number = %q, expected 2025060001", first.Number)
	}
	if second.Number != "2025060002" {
		t.Errorf("second number = %q, expected 2025060002", second.Number)
	}
	if !strings.HasPrefix(first.Number, buildTime.Format("200601")) {
		t.Errorf("number %q does not embed the creation month", first.Number)
	}
}

func TestStoreCreateRejectsDuplicateID(t *testing.T) {
	s := newTestStore(t)
	app := storedApplication(t, s, "user-1")

	if err := s.Create(app); err == nil {
		t.Fatal("expected error for duplicate application ID")
	}
}

func TestStoreGet(t *testing.T) {
	s := newTestStore(t)
	app := storedApplication(t, s, "user-1")

	got, err := s.Get(app.ID)
	if err != nil {
		t.Fatalf("Get() error: %s", err)
	}
	if got.Number != app.Number || got.UserID != "user-1" {
		t.Errorf("round-trip mismatch: %+v", got)
	}
	if len(got.Submissions) != 1 {
		t.Fatalf("submissions not persisted, got %d", len(got.Submissions))
	}
	if !got.Submissions[0].Product.InterestRate.Equal(dec("3.25")) {
		t.Errorf("snapshot rate = %s after round trip", got.Submissions[0].Product.InterestRate)
	}

	if _, err := s.Get("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStoreListByUser(t *testing.T) {
	s := newTestStore(t)
	storedApplication(t, s, "user-1")
	storedApplication(t, s, "user-1")
	storedApplication(t, s, "user-2")

	apps, err := s.ListByUser("user-1")
	if err != nil {
		t.Fatalf("ListByUser() error: %s", err)
	}
	if len(apps) != 2 {
		t.Errorf("expected 2 applications for user-1, got %d", len(apps))
	}

	empty, err := s.ListByUser("nobody")
	if err != nil {
		t.Fatalf("ListByUser() error: %s", err)
	}
	if empty == nil {
		t.Error("empty result should be an empty slice, not nil")
	}
}

func TestStoreUpdateStatus(t *testing.T) {
	s := newTestStore(t)
	app := storedApplication(t, s, "user-1")

	updated, err := s.UpdateStatus(app.ID, StatusSubmitted)
	if err != nil {
		t.Fatalf("UpdateStatus() error: %s", err)
	}
	if updated.Status != StatusSubmitted {
		t.Errorf("status = %q, expected submitted", updated.Status)
	}
	if !updated.UpdatedAt.After(app.UpdatedAt) {
		t.Error("updatedAt not bumped on status change")
	}

	// Same status again is a no-op, not an error.
	again, err := s.UpdateStatus(app.ID, StatusSubmitted)
	if err != nil {
		t.Fatalf("UpdateStatus() repeat error: %s", err)
	}
	if !again.UpdatedAt.Equal(updated.UpdatedAt) {
		t.Error("updatedAt should not change when status is unchanged")
	}

	// Illegal jump.
	if _, err := s.UpdateStatus(app.ID, StatusDraft); err == nil {
		t.Error("expected error for backward transition")
	}

	// Terminal state has no outgoing transitions.
	if _, err := s.UpdateStatus(app.ID, StatusUnderReview); err != nil {
		t.Fatalf("UpdateStatus() to under_review error: %s", err)
	}
	if _, err := s.UpdateStatus(app.ID, StatusApproved); err != nil {
		t.Fatalf("UpdateStatus() to approved error: %s", err)
	}
	if _, err := s.UpdateStatus(app.ID, StatusCancelled); err == nil {
		t.Error("approved is terminal; expected error")
	}

	if _, err := s.UpdateStatus("missing", StatusSubmitted); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStoreSequenceResetsAcrossMonths(t *testing.T) {
	s := newTestStore(t)

	june := storedApplication(t, s, "user-1")
	if june.Number != "2025060001" {
		t.Fatalf("june number = %q", june.Number)
	}

	julyApp, err := Build(testCatalog(t), Input{
		UserID:           "user-1",
		Principal:        dec("2000000"),
		MonthlyIncome:    dec("50000"),
		DesiredTermYears: 20,
		ProductIDs:       []int64{1},
	}, time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Build() error: %s", err)
	}
	if err := s.Create(julyApp); err != nil {
		t.Fatalf("Create() error: %s", err)
	}
	if julyApp.Number != "2025070001" {
		t.Errorf("july number = %q, expected a fresh 0001 sequence", julyApp.Number)
	}
}
