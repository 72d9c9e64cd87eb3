package domain

import "time"

// VersionedItem is a snapshot of an Item plus provenance of the write
// that produced it. BaseVersion is the committed item version the write
// was derived from; ChangedFields are the fields the write touched.
type VersionedItem struct {
	Value         *Item     `json:"value"`
	Timestamp     time.Time `json:"timestamp"`
	ActorID       string    `json:"actor_id"`
	ActorName     string    `json:"actor_name"`
	BaseVersion   int64     `json:"base_version"`
	ChangedFields []string  `json:"changed_fields"`
}

// IsTombstone reports whether this version records a deletion.
func (v VersionedItem) IsTombstone() bool {
	return v.Value != nil && v.Value.IsDeleted
}

type FieldChange struct {
	Field    string      `json:"field"`
	OldValue interface{} `json:"old_value"`
	NewValue interface{} `json:"new_value"`
}

type ConflictType string

const (
	ConflictTypeConcurrentEdit ConflictType = "concurrent-edit"
	ConflictTypeDeleteEdit     ConflictType = "delete-edit"
	ConflictTypeEditEdit       ConflictType = "edit-edit"
)

// Priority orders conflicts in the notification feed; higher sorts
// first.
type Priority int

const (
	PriorityLow    Priority = 1
	PriorityMedium Priority = 2
	PriorityHigh   Priority = 3
)

type Conflict struct {
	ID             string        `json:"id"`
	ItemID         string        `json:"item_id"`
	ListID         string        `json:"list_id"`
	Type           ConflictType  `json:"type"`
	LocalVersion   VersionedItem `json:"local_version"`
	RemoteVersion  VersionedItem `json:"remote_version"`
	Changes        []FieldChange `json:"changes"`
	DetectedAt     time.Time     `json:"detected_at"`
	Priority       Priority      `json:"priority"`
	AutoResolvable bool          `json:"auto_resolvable"`
}

type ResolutionChoice string

const (
	ResolutionMine   ResolutionChoice = "mine"
	ResolutionTheirs ResolutionChoice = "theirs"
	ResolutionManual ResolutionChoice = "manual"
)

type ResolveConflictRequest struct {
	Choice      ResolutionChoice `json:"choice" validate:"required,oneof=mine theirs manual"`
	ManualValue *Item            `json:"manual_value,omitempty"`
}

// ConflictLogEntry is the durable audit record of a detection and its
// outcome. The open set itself lives in memory.
type ConflictLogEntry struct {
	ID         string           `json:"id"`
	ConflictID string           `json:"conflict_id"`
	ItemID     string           `json:"item_id"`
	ListID     string           `json:"list_id"`
	UserID     string           `json:"user_id"`
	Type       ConflictType     `json:"type"`
	DetectedAt time.Time        `json:"detected_at"`
	ResolvedAt *time.Time       `json:"resolved_at,omitempty"`
	Choice     ResolutionChoice `json:"choice,omitempty"`
	Dismissed  bool             `json:"dismissed"`
}
