package conflict

import (
	"testing"
	"time"

	"github.com/adamsuskin/grocery-sub012/internal/domain"
)

func TestRegistry_UpsertAssignsID(t *testing.T) {
	r := NewRegistry()

	stored := r.Upsert(testConflict("item-1", domain.PriorityMedium, time.Now()))
	if stored.ID == "" {
		t.Fatal("Upsert() did not assign a conflict id")
	}

	if got := r.Get(stored.ID); got == nil {
		t.Error("Get() returned nil for stored conflict")
	}
	if got := r.GetByItem("item-1"); got == nil || got.ID != stored.ID {
		t.Error("GetByItem() did not return the stored conflict")
	}
}

func TestRegistry_AtMostOneOpenPerItem(t *testing.T) {
	r := NewRegistry()
	now := time.Now()

	first := r.Upsert(testConflict("item-1", domain.PriorityMedium, now))
	second := r.Upsert(testConflict("item-1", domain.PriorityHigh, now.Add(time.Second)))

	if r.Len() != 1 {
		t.Fatalf("registry holds %d conflicts for one item, want 1", r.Len())
	}

	open := r.GetByItem("item-1")
	if open == nil {
		t.Fatal("GetByItem() returned nil")
	}
	if open.ID != second.ID {
		t.Errorf("open conflict = %s, want most recent upsert %s", open.ID, second.ID)
	}
	if r.Get(first.ID) != nil {
		t.Error("replaced conflict still retrievable by id")
	}
}

func TestRegistry_ResolveIdempotenceUnderRace(t *testing.T) {
	r := NewRegistry()
	stored := r.Upsert(testConflict("item-1", domain.PriorityMedium, time.Now()))

	if err := r.Resolve(stored.ID); err != nil {
		t.Fatalf("first Resolve() error = %v", err)
	}
	if err := r.Resolve(stored.ID); err != ErrNotFound {
		t.Errorf("second Resolve() error = %v, want ErrNotFound", err)
	}
	if r.Len() != 0 {
		t.Errorf("registry len = %d after resolve, want 0", r.Len())
	}
	if r.GetByItem("item-1") != nil {
		t.Error("GetByItem() returned a dangling entry after resolve")
	}
}

func TestRegistry_DismissUnknown(t *testing.T) {
	r := NewRegistry()
	if err := r.Dismiss("nope"); err != ErrNotFound {
		t.Errorf("Dismiss() error = %v, want ErrNotFound", err)
	}
}

func TestRegistry_ListOpenOrdering(t *testing.T) {
	r := NewRegistry()
	base := time.Now()

	low := r.Upsert(testConflict("item-low", domain.PriorityLow, base.Add(3*time.Second)))
	highOld := r.Upsert(testConflict("item-high-old", domain.PriorityHigh, base))
	highNew := r.Upsert(testConflict("item-high-new", domain.PriorityHigh, base.Add(2*time.Second)))
	medium := r.Upsert(testConflict("item-medium", domain.PriorityMedium, base.Add(time.Second)))

	open := r.ListOpen()
	wantOrder := []string{highNew.ID, highOld.ID, medium.ID, low.ID}

	if len(open) != len(wantOrder) {
		t.Fatalf("ListOpen() returned %d conflicts, want %d", len(open), len(wantOrder))
	}
	for i, want := range wantOrder {
		if open[i].ID != want {
			t.Errorf("ListOpen()[%d] = %s, want %s", i, open[i].ID, want)
		}
	}
}

func TestRegistry_SnapshotsAreIsolated(t *testing.T) {
	r := NewRegistry()
	stored := r.Upsert(testConflict("item-1", domain.PriorityMedium, time.Now()))

	snapshot := r.Get(stored.ID)
	snapshot.Priority = domain.PriorityHigh

	if again := r.Get(stored.ID); again.Priority != domain.PriorityMedium {
		t.Error("mutating a Get() snapshot leaked into the registry")
	}
}
