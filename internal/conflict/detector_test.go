package conflict

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/adamsuskin/grocery-sub012/internal/domain"
)

type submission struct {
	itemID string
	value  *domain.Item
}

type mockTransport struct {
	mu          sync.Mutex
	submissions []submission
	err         error
	release     chan struct{}
}

func (m *mockTransport) SubmitResolution(ctx context.Context, itemID string, value *domain.Item) error {
	if m.release != nil {
		<-m.release
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}
	m.submissions = append(m.submissions, submission{itemID: itemID, value: value})
	return nil
}

func (m *mockTransport) last() *submission {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.submissions) == 0 {
		return nil
	}
	s := m.submissions[len(m.submissions)-1]
	return &s
}

func newTestDetector(transport Transport, cfg FeedConfig) *Detector {
	tracker := NewStatusTracker(nil)
	tracker.MarkSynced()
	return NewDetector(transport, tracker, cfg)
}

func TestDetector_CleanContinuationIsSilent(t *testing.T) {
	d := newTestDetector(&mockTransport{}, FeedConfig{})
	now := time.Now()

	remoteItem := testItem("item-1")
	remoteItem.Version = 2
	localItem := testItem("item-1")
	localItem.Version = 3
	localItem.Quantity = 3

	local := versioned(localItem, "alice", now, 2, domain.FieldQuantity)
	remote := versioned(remoteItem, "bob", now.Add(-time.Minute), 1, domain.FieldNotes)

	c, err := d.OnVersionMismatch("item-1", "list-1", local, remote)
	if err != nil {
		t.Fatalf("OnVersionMismatch() error = %v", err)
	}
	if c != nil {
		t.Error("clean continuation raised a conflict")
	}
}

func TestDetector_RemoteStrictlyNewerWinsSilently(t *testing.T) {
	d := newTestDetector(&mockTransport{}, FeedConfig{})
	now := time.Now()

	localItem := testItem("item-1")
	localItem.Version = 2
	remoteItem := testItem("item-1")
	remoteItem.Version = 3
	remoteItem.Quantity = 5

	local := versioned(localItem, "alice", now.Add(-time.Minute), 1, domain.FieldQuantity)
	remote := versioned(remoteItem, "bob", now, 2, domain.FieldQuantity)

	c, err := d.OnVersionMismatch("item-1", "list-1", local, remote)
	if err != nil {
		t.Fatalf("OnVersionMismatch() error = %v", err)
	}
	if c != nil {
		t.Error("unambiguously newer remote write raised a conflict")
	}
}

func TestDetector_DisjointEditScenario(t *testing.T) {
	// Local edits quantity, remote edits notes on the same item.
	d := newTestDetector(&mockTransport{}, FeedConfig{})
	now := time.Now()

	localItem := testItem("item-1")
	localItem.Quantity = 3
	remoteItem := testItem("item-1")
	remoteItem.Notes = "urgent"
	remoteItem.Version = 3

	local := versioned(localItem, "alice", now, 2, domain.FieldQuantity)
	remote := versioned(remoteItem, "bob", now, 2, domain.FieldNotes)

	c, err := d.OnVersionMismatch("item-1", "list-1", local, remote)
	if err != nil {
		t.Fatalf("OnVersionMismatch() error = %v", err)
	}
	if c == nil {
		t.Fatal("racing writes did not raise a conflict")
	}
	if c.Type != domain.ConflictTypeEditEdit {
		t.Errorf("conflict type = %s, want %s", c.Type, domain.ConflictTypeEditEdit)
	}
	if !c.AutoResolvable {
		t.Error("disjoint-field conflict not auto-resolvable")
	}
}

func TestDetector_TrueConflictResolution(t *testing.T) {
	transport := &mockTransport{}
	d := newTestDetector(transport, FeedConfig{})
	now := time.Now()

	localItem := testItem("item-1")
	localItem.Quantity = 3
	remoteItem := testItem("item-1")
	remoteItem.Quantity = 5
	remoteItem.Version = 3

	local := versioned(localItem, "alice", now, 2, domain.FieldQuantity)
	remote := versioned(remoteItem, "bob", now, 2, domain.FieldQuantity)

	c, err := d.OnVersionMismatch("item-1", "list-1", local, remote)
	if err != nil {
		t.Fatalf("OnVersionMismatch() error = %v", err)
	}
	if c.Type != domain.ConflictTypeConcurrentEdit {
		t.Fatalf("conflict type = %s, want %s", c.Type, domain.ConflictTypeConcurrentEdit)
	}
	if c.AutoResolvable {
		t.Error("overlapping-field conflict marked auto-resolvable")
	}

	value, err := d.Resolve(context.Background(), c.ID, domain.ResolutionMine, nil)
	if err != nil {
		t.Fatalf("Resolve(mine) error = %v", err)
	}
	if value.Quantity != 3 {
		t.Errorf("resolved quantity = %v, want local 3", value.Quantity)
	}
	if got := transport.last(); got == nil || got.value.Quantity != 3 {
		t.Error("transport did not receive the local value")
	}
	if d.Registry().GetByItem("item-1") != nil {
		t.Error("conflict still open after successful resolution")
	}
}

func TestDetector_RemoteDeleteWithPendingEdit(t *testing.T) {
	d := newTestDetector(&mockTransport{}, FeedConfig{})
	now := time.Now()

	localItem := testItem("item-1")
	localItem.Gotten = true
	remoteItem := testItem("item-1")
	remoteItem.IsDeleted = true
	remoteItem.Version = 3

	local := versioned(localItem, "alice", now, 2, domain.FieldGotten)
	remote := versioned(remoteItem, "bob", now, 2)

	c, err := d.OnRemoteDelete("item-1", "list-1", local, remote)
	if err != nil {
		t.Fatalf("OnRemoteDelete() error = %v", err)
	}
	if c == nil {
		t.Fatal("remote delete over pending edit did not raise a conflict")
	}
	if c.Type != domain.ConflictTypeDeleteEdit {
		t.Errorf("conflict type = %s, want %s", c.Type, domain.ConflictTypeDeleteEdit)
	}
	if c.AutoResolvable {
		t.Error("delete-edit conflict marked auto-resolvable")
	}
}

func TestDetector_RemoteDeleteWithoutPendingEdit(t *testing.T) {
	d := newTestDetector(&mockTransport{}, FeedConfig{})
	now := time.Now()

	remoteItem := testItem("item-1")
	remoteItem.IsDeleted = true

	local := versioned(testItem("item-1"), "alice", now, 2)
	remote := versioned(remoteItem, "bob", now, 2)

	c, err := d.OnRemoteDelete("item-1", "list-1", local, remote)
	if err != nil {
		t.Fatalf("OnRemoteDelete() error = %v", err)
	}
	if c != nil {
		t.Error("delete without local pending edit raised a conflict")
	}
}

func TestDetector_TransportFailureKeepsConflictOpen(t *testing.T) {
	transport := &mockTransport{err: errors.New("connection refused")}
	d := newTestDetector(transport, FeedConfig{})

	c := d.Registry().Upsert(testConflict("item-1", domain.PriorityMedium, time.Now()))

	_, err := d.Resolve(context.Background(), c.ID, domain.ResolutionTheirs, nil)
	if err == nil {
		t.Fatal("Resolve() succeeded despite transport failure")
	}
	if d.Registry().Get(c.ID) == nil {
		t.Error("conflict cleared even though submission failed")
	}

	// Same choice must be retryable once the transport recovers.
	transport.mu.Lock()
	transport.err = nil
	transport.mu.Unlock()

	if _, err := d.Resolve(context.Background(), c.ID, domain.ResolutionTheirs, nil); err != nil {
		t.Fatalf("retried Resolve() error = %v", err)
	}
	if d.Registry().Get(c.ID) != nil {
		t.Error("conflict still open after successful retry")
	}
}

func TestDetector_ResolveUnknownConflict(t *testing.T) {
	d := newTestDetector(&mockTransport{}, FeedConfig{})

	_, err := d.Resolve(context.Background(), "gone", domain.ResolutionMine, nil)
	if err != ErrNotFound {
		t.Errorf("Resolve() error = %v, want ErrNotFound", err)
	}
}

func TestDetector_ConcurrentResolutionRejected(t *testing.T) {
	transport := &mockTransport{release: make(chan struct{})}
	d := newTestDetector(transport, FeedConfig{})

	c := d.Registry().Upsert(testConflict("item-1", domain.PriorityMedium, time.Now()))

	firstDone := make(chan error, 1)
	go func() {
		_, err := d.Resolve(context.Background(), c.ID, domain.ResolutionMine, nil)
		firstDone <- err
	}()

	// Wait for the first resolution to enter its critical section.
	deadline := time.After(time.Second)
	for {
		d.mu.Lock()
		busy := len(d.inflight) == 1
		d.mu.Unlock()
		if busy {
			break
		}
		select {
		case <-deadline:
			t.Fatal("first resolution never started")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	if _, err := d.Resolve(context.Background(), c.ID, domain.ResolutionTheirs, nil); err != ErrResolutionInFlight {
		t.Errorf("second Resolve() error = %v, want ErrResolutionInFlight", err)
	}

	close(transport.release)
	if err := <-firstDone; err != nil {
		t.Fatalf("first Resolve() error = %v", err)
	}
}

func TestDetector_DismissLeavesTransportAlone(t *testing.T) {
	transport := &mockTransport{}
	d := newTestDetector(transport, FeedConfig{})

	c := d.Registry().Upsert(testConflict("item-1", domain.PriorityMedium, time.Now()))

	if err := d.Dismiss(c.ID); err != nil {
		t.Fatalf("Dismiss() error = %v", err)
	}
	if transport.last() != nil {
		t.Error("Dismiss() submitted a write")
	}
	if err := d.Dismiss(c.ID); err != ErrNotFound {
		t.Errorf("second Dismiss() error = %v, want ErrNotFound", err)
	}
}

func TestDetector_OfflineSuppressesDetection(t *testing.T) {
	tracker := NewStatusTracker(nil)
	tracker.SetOnline(false)
	d := NewDetector(&mockTransport{}, tracker, FeedConfig{})
	now := time.Now()

	localItem := testItem("item-1")
	localItem.Quantity = 3
	remoteItem := testItem("item-1")
	remoteItem.Quantity = 5
	remoteItem.Version = 3

	local := versioned(localItem, "alice", now, 2, domain.FieldQuantity)
	remote := versioned(remoteItem, "bob", now, 2, domain.FieldQuantity)

	c, err := d.OnVersionMismatch("item-1", "list-1", local, remote)
	if err != nil {
		t.Fatalf("OnVersionMismatch() error = %v", err)
	}
	if c != nil {
		t.Error("conflict raised while transport offline")
	}
}

func TestDetector_NewerDetectionSurvivesResolution(t *testing.T) {
	transport := &mockTransport{release: make(chan struct{})}
	d := newTestDetector(transport, FeedConfig{})
	now := time.Now()

	first := d.Registry().Upsert(testConflict("item-1", domain.PriorityMedium, now))

	done := make(chan error, 1)
	go func() {
		_, err := d.Resolve(context.Background(), first.ID, domain.ResolutionMine, nil)
		done <- err
	}()

	deadline := time.After(time.Second)
	for {
		d.mu.Lock()
		busy := len(d.inflight) == 1
		d.mu.Unlock()
		if busy {
			break
		}
		select {
		case <-deadline:
			t.Fatal("resolution never started")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	// A faster remote update replaces the open conflict mid-submission.
	second := d.Registry().Upsert(testConflict("item-1", domain.PriorityHigh, now.Add(time.Second)))

	close(transport.release)
	if err := <-done; err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	if open := d.Registry().GetByItem("item-1"); open == nil || open.ID != second.ID {
		t.Error("newer detection was cleared by the stale resolution")
	}
}
