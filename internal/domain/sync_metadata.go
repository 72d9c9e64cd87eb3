package domain

import "time"

type SyncMetadata struct {
	UserID       string           `json:"user_id"`
	ClientID     string           `json:"client_id"`
	LastSyncTime time.Time        `json:"last_sync_time"`
	ItemVersions map[string]int64 `json:"item_versions"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

type SyncRequest struct {
	ClientID     string           `json:"client_id" validate:"required"`
	LastSyncTime time.Time        `json:"last_sync_time"`
	ItemVersions map[string]int64 `json:"item_versions"`
}

type SyncResponse struct {
	Changes  []*ItemChange `json:"changes"`
	SyncTime time.Time     `json:"sync_time"`
	HasMore  bool          `json:"has_more"`
}

type ItemChange struct {
	ItemID    string `json:"item_id"`
	Operation string `json:"operation"`
	Version   int64  `json:"version"`
	Item      *Item  `json:"item,omitempty"`
}

type ManifestEntry struct {
	ID        string    `json:"id"`
	Version   int64     `json:"version"`
	UpdatedAt time.Time `json:"updated_at"`
	IsDeleted bool      `json:"is_deleted"`
}

type ManifestResponse struct {
	Items    []ManifestEntry `json:"items"`
	SyncTime time.Time       `json:"sync_time"`
}

type BatchDiffRequest struct {
	ListID     string          `json:"list_id" validate:"required"`
	ClientID   string          `json:"client_id" validate:"required"`
	LocalItems []LocalItemInfo `json:"local_items"`
}

type LocalItemInfo struct {
	ID            string   `json:"id"`
	Version       int64    `json:"version"`
	BaseVersion   int64    `json:"base_version"`
	ChangedFields []string `json:"changed_fields"`
}

type BatchDiffResponse struct {
	ToDownload []Item         `json:"to_download"`
	ToUpload   []string       `json:"to_upload"`
	ToDelete   []string       `json:"to_delete"`
	Conflicts  []ConflictInfo `json:"conflicts"`
	SyncTime   time.Time      `json:"sync_time"`
}

type ConflictInfo struct {
	ItemID        string `json:"item_id"`
	LocalVersion  int64  `json:"local_version"`
	ServerVersion int64  `json:"server_version"`
}
