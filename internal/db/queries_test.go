package db

import (
	"context"
	"database/sql"
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/hpungsan/prodsynth/internal/dataset"
	"github.com/hpungsan/prodsynth/internal/errors"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// newTestRun creates a run with default values for testing.
func newTestRun(id string, createdAt int64) *dataset.Run {
	return &dataset.Run{
		ID:     id,
		Path:   "/tmp/" + id + ".csv",
		Rows:   3,
		Users:  120,
		Seed:   42,
		SHA256: "abc123",
		Bytes:  256,
		Summary: dataset.Summary{
			Rows:           3,
			MeanTaskScore:  4.5,
			MinSelfReport:  10,
			MaxSelfReport:  90,
			ActivityCounts: map[dataset.Activity]int{dataset.Coding: 2, dataset.Forum: 1},
		},
		CreatedAt: createdAt,
	}
}

func TestInsertAndGetByID(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	r := newTestRun("01RUN001", 1000)
	if err := Insert(ctx, db, r); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	got, err := GetByID(ctx, db, "01RUN001", false)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if diff := cmp.Diff(r, got); diff != "" {
		t.Errorf("GetByID mismatch (-want +got):\n%s", diff)
	}
}

func TestInsert_SeedAboveInt64(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	r := newTestRun("01RUNBIG", 1000)
	r.Seed = math.MaxUint64
	if err := Insert(ctx, db, r); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	got, err := GetByID(ctx, db, r.ID, false)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Seed != math.MaxUint64 {
		t.Errorf("Seed = %d, want %d", got.Seed, uint64(math.MaxUint64))
	}
}

func TestInsert_DuplicateID(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	if err := Insert(ctx, db, newTestRun("01DUP", 1000)); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	err := Insert(ctx, db, newTestRun("01DUP", 2000))
	if !errors.Is(err, errors.ErrInternal) {
		t.Errorf("expected INTERNAL for duplicate id, got %v", err)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	_, err := GetByID(context.Background(), openTestDB(t), "missing", false)
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("expected NOT_FOUND, got %v", err)
	}
}

func TestSoftDelete(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	if err := Insert(ctx, db, newTestRun("01DEL", 1000)); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if err := SoftDelete(ctx, db, "01DEL"); err != nil {
		t.Fatalf("SoftDelete failed: %v", err)
	}

	if _, err := GetByID(ctx, db, "01DEL", false); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("deleted run should be hidden, got %v", err)
	}

	got, err := GetByID(ctx, db, "01DEL", true)
	if err != nil {
		t.Fatalf("GetByID(includeDeleted) failed: %v", err)
	}
	if got.DeletedAt == nil {
		t.Error("DeletedAt should be set")
	}

	// Second delete is a not-found
	if err := SoftDelete(ctx, db, "01DEL"); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("expected NOT_FOUND on repeat delete, got %v", err)
	}
}

func TestGetLatest(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	got, err := GetLatest(ctx, db, false)
	if err != nil {
		t.Fatalf("GetLatest on empty ledger failed: %v", err)
	}
	if got != nil {
		t.Fatalf("GetLatest on empty ledger = %v, want nil", got)
	}

	for i, id := range []string{"01A", "01B", "01C"} {
		if err := Insert(ctx, db, newTestRun(id, int64(1000+i))); err != nil {
			t.Fatalf("Insert %s failed: %v", id, err)
		}
	}

	got, err = GetLatest(ctx, db, false)
	if err != nil {
		t.Fatalf("GetLatest failed: %v", err)
	}
	if got.ID != "01C" {
		t.Errorf("latest = %s, want 01C", got.ID)
	}

	if err := SoftDelete(ctx, db, "01C"); err != nil {
		t.Fatalf("SoftDelete failed: %v", err)
	}
	got, err = GetLatest(ctx, db, false)
	if err != nil {
		t.Fatalf("GetLatest failed: %v", err)
	}
	if got.ID != "01B" {
		t.Errorf("latest after delete = %s, want 01B", got.ID)
	}

	got, err = GetLatest(ctx, db, true)
	if err != nil {
		t.Fatalf("GetLatest(includeDeleted) failed: %v", err)
	}
	if got.ID != "01C" {
		t.Errorf("latest including deleted = %s, want 01C", got.ID)
	}
}

func TestListRuns(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	ids := []string{"01A", "01B", "01C", "01D", "01E"}
	for i, id := range ids {
		if err := Insert(ctx, db, newTestRun(id, int64(1000+i))); err != nil {
			t.Fatalf("Insert %s failed: %v", id, err)
		}
	}
	if err := SoftDelete(ctx, db, "01E"); err != nil {
		t.Fatalf("SoftDelete failed: %v", err)
	}

	tests := []struct {
		name           string
		limit, offset  int
		includeDeleted bool
		wantIDs        []string
		wantTotal      int
	}{
		{"first page", 2, 0, false, []string{"01D", "01C"}, 4},
		{"second page", 2, 2, false, []string{"01B", "01A"}, 4},
		{"past end", 2, 10, false, []string{}, 4},
		{"include deleted", 1, 0, true, []string{"01E"}, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, total, err := ListRuns(ctx, db, tt.limit, tt.offset, tt.includeDeleted)
			if err != nil {
				t.Fatalf("ListRuns failed: %v", err)
			}
			if total != tt.wantTotal {
				t.Errorf("total = %d, want %d", total, tt.wantTotal)
			}
			gotIDs := make([]string, 0, len(items))
			for _, it := range items {
				gotIDs = append(gotIDs, it.ID)
			}
			if diff := cmp.Diff(tt.wantIDs, gotIDs); diff != "" {
				t.Errorf("ids mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPurgeDeleted(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	for i, id := range []string{"01A", "01B", "01C"} {
		if err := Insert(ctx, db, newTestRun(id, int64(1000+i))); err != nil {
			t.Fatalf("Insert %s failed: %v", id, err)
		}
	}
	if err := SoftDelete(ctx, db, "01A"); err != nil {
		t.Fatalf("SoftDelete failed: %v", err)
	}

	// Backdate one deletion so the age filter has something to keep
	old := time.Now().Add(-10 * 24 * time.Hour).Unix()
	if _, err := db.Exec("UPDATE runs SET deleted_at = ? WHERE id = ?", old, "01A"); err != nil {
		t.Fatalf("backdate failed: %v", err)
	}
	if err := SoftDelete(ctx, db, "01B"); err != nil {
		t.Fatalf("SoftDelete failed: %v", err)
	}

	days := 7
	n, err := PurgeDeleted(ctx, db, &days)
	if err != nil {
		t.Fatalf("PurgeDeleted failed: %v", err)
	}
	if n != 1 {
		t.Errorf("purged %d with age filter, want 1", n)
	}

	n, err = PurgeDeleted(ctx, db, nil)
	if err != nil {
		t.Fatalf("PurgeDeleted failed: %v", err)
	}
	if n != 1 {
		t.Errorf("purged %d without filter, want 1", n)
	}

	_, total, err := ListRuns(ctx, db, 10, 0, true)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if total != 1 {
		t.Errorf("remaining runs = %d, want 1", total)
	}
}
