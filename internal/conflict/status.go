package conflict

import "sync"

// SyncState is the transport's sync lifecycle state.
type SyncState string

const (
	StateIdle     SyncState = "idle"
	StateSyncing  SyncState = "syncing"
	StateSynced   SyncState = "synced"
	StateError    SyncState = "error"
	StateRetrying SyncState = "retrying"
)

// StatusTracker mirrors the transport's online/syncing/error state.
// The detector gates conflict creation on Connected so no conflicts are
// raised against stale data during a reconnect storm.
type StatusTracker struct {
	mu       sync.Mutex
	state    SyncState
	online   bool
	lastErr  error
	retryFn  func()
}

func NewStatusTracker(retryFn func()) *StatusTracker {
	return &StatusTracker{
		state:   StateIdle,
		online:  true,
		retryFn: retryFn,
	}
}

func (t *StatusTracker) SetOnline(online bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.online = online
}

func (t *StatusTracker) BeginSync() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = StateSyncing
}

func (t *StatusTracker) MarkSynced() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = StateSynced
	t.lastErr = nil
}

func (t *StatusTracker) MarkError(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = StateError
	t.lastErr = err
}

// Retry moves error -> retrying -> syncing and invokes the transport's
// retry hook. It is a no-op in any other state.
func (t *StatusTracker) Retry() {
	t.mu.Lock()
	if t.state != StateError {
		t.mu.Unlock()
		return
	}
	t.state = StateRetrying
	retry := t.retryFn
	t.mu.Unlock()

	if retry != nil {
		retry()
	}

	t.mu.Lock()
	t.state = StateSyncing
	t.mu.Unlock()
}

func (t *StatusTracker) State() SyncState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

func (t *StatusTracker) IsSyncing() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state == StateSyncing || t.state == StateRetrying
}

func (t *StatusTracker) IsOnline() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.online
}

func (t *StatusTracker) LastError() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastErr
}

// Connected reports whether conflicts are meaningful right now: the
// transport is online and not in an unrecovered error state.
func (t *StatusTracker) Connected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.online && t.state != StateError
}
