package conflict

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/adamsuskin/grocery-sub012/internal/domain"
)

// Transport is the write path back to the sync layer. Submissions must
// be confirmed durable (or at least queued) before the registry entry
// is cleared.
type Transport interface {
	SubmitResolution(ctx context.Context, itemID string, value *domain.Item) error
}

// Detector is the engine tying differ, classifier, registry, feed and
// status tracker together. It consumes version-mismatch events from the
// transport and owns all registry mutation; callers never touch the
// registry directly.
type Detector struct {
	registry  *Registry
	feed      *Feed
	status    *StatusTracker
	transport Transport

	mu       sync.Mutex
	inflight map[string]string
}

func NewDetector(transport Transport, status *StatusTracker, feedCfg FeedConfig) *Detector {
	d := &Detector{
		registry:  NewRegistry(),
		status:    status,
		transport: transport,
		inflight:  make(map[string]string),
	}
	d.feed = NewFeed(d.registry, feedCfg, d.expireConflict)
	return d
}

// Registry exposes read access for feed rendering and tests.
func (d *Detector) Registry() *Registry {
	return d.registry
}

// Feed returns the bounded notification view.
func (d *Detector) Feed() *Feed {
	return d.feed
}

// OnVersionMismatch handles the transport reporting that a local
// optimistic write was not a clean continuation of the remote state.
// Returns the stored conflict, or nil when the mismatch resolved
// silently (clean continuation, unambiguous ordering, or transport not
// connected).
func (d *Detector) OnVersionMismatch(itemID, listID string, local, remote domain.VersionedItem) (*domain.Conflict, error) {
	if !d.status.Connected() {
		// Offline writes queue in the transport and get diffed after
		// reconnect reconciliation.
		return nil, nil
	}

	if local.Value == nil || remote.Value == nil {
		return nil, fmt.Errorf("%w: version mismatch without both values", ErrInvalidInput)
	}
	if local.Value.ID != itemID || remote.Value.ID != itemID {
		return nil, fmt.Errorf("%w: version values do not match item %s", ErrInvalidInput, itemID)
	}

	// Last-writer-wins fast paths: if either write was derived from the
	// other side's committed version, ordering is unambiguous and no
	// conflict is raised.
	if local.BaseVersion == remote.Value.Version {
		return nil, nil
	}
	// The second direction only applies once the local write has
	// committed (its value version moved past its base); a pending local
	// write cannot have been seen by the remote side.
	if local.Value.Version > local.BaseVersion && remote.BaseVersion >= local.Value.Version {
		return nil, nil
	}

	changes, err := Diff(local, remote)
	if err != nil {
		return nil, err
	}

	classification := Classify(local, remote, changes)

	stored := d.registry.Upsert(&domain.Conflict{
		ItemID:         itemID,
		ListID:         listID,
		Type:           classification.Type,
		LocalVersion:   local,
		RemoteVersion:  remote,
		Changes:        changes,
		DetectedAt:     time.Now(),
		Priority:       classification.Priority,
		AutoResolvable: classification.AutoResolvable,
	})
	d.feed.Track(stored)

	return stored, nil
}

// OnRemoteDelete handles a record being deleted remotely. A pending
// local edit produces a delete-edit conflict; with no local edit the
// delete is accepted silently.
func (d *Detector) OnRemoteDelete(itemID, listID string, local, remote domain.VersionedItem) (*domain.Conflict, error) {
	if !remote.IsTombstone() {
		return nil, fmt.Errorf("%w: remote delete without tombstone", ErrInvalidInput)
	}
	if len(local.ChangedFields) == 0 {
		return nil, nil
	}
	return d.OnVersionMismatch(itemID, listID, local, remote)
}

// Resolve computes the chosen value, submits it through the transport
// and clears the registry entry only after the submission is accepted.
// A transport failure leaves the conflict open so the same choice can
// be retried without re-classifying.
func (d *Detector) Resolve(ctx context.Context, conflictID string, choice domain.ResolutionChoice, manual *domain.Item) (*domain.Item, error) {
	c := d.registry.Get(conflictID)
	if c == nil {
		return nil, ErrNotFound
	}

	value, err := Apply(c, choice, manual)
	if err != nil {
		return nil, err
	}

	if err := d.beginSubmission(c.ItemID, conflictID); err != nil {
		return nil, err
	}
	defer d.endSubmission(c.ItemID)

	if err := d.transport.SubmitResolution(ctx, c.ItemID, value); err != nil {
		return nil, fmt.Errorf("submit resolution for item %s: %w", c.ItemID, err)
	}

	// Clear only if the open conflict is still the one we resolved; a
	// newer detection for the same item must survive.
	if current := d.registry.GetByItem(c.ItemID); current != nil && current.ID == conflictID {
		if err := d.registry.Resolve(conflictID); err != nil && err != ErrNotFound {
			return nil, err
		}
	}
	d.feed.Forget(conflictID)

	return value, nil
}

// Dismiss drops the conflict without submitting anything; the remote
// value stays in place. An in-flight submission for the same item is
// never aborted.
func (d *Detector) Dismiss(conflictID string) error {
	d.feed.Forget(conflictID)
	return d.registry.Dismiss(conflictID)
}

// ListOpen returns every open conflict in feed order.
func (d *Detector) ListOpen() []*domain.Conflict {
	return d.registry.ListOpen()
}

func (d *Detector) beginSubmission(itemID, conflictID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, busy := d.inflight[itemID]; busy {
		return ErrResolutionInFlight
	}
	d.inflight[itemID] = conflictID
	return nil
}

func (d *Detector) endSubmission(itemID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.inflight, itemID)
}

// expireConflict is the feed's countdown callback: take the remote
// snapshot for auto-resolvable conflicts nobody acted on.
func (d *Detector) expireConflict(conflictID string) {
	if _, err := d.Resolve(context.Background(), conflictID, domain.ResolutionTheirs, nil); err != nil {
		if err == ErrNotFound {
			return
		}
		log.Printf("auto-resolve of conflict %s failed: %v", conflictID, err)
	}
}
