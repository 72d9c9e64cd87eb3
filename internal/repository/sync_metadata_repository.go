package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/go-kivik/kivik/v4"

	"github.com/adamsuskin/grocery-sub012/internal/domain"
)

type SyncMetadataRepository interface {
	Get(userID, clientID string) (*domain.SyncMetadata, error)
	Upsert(metadata *domain.SyncMetadata) error
	UpdateLastSync(userID, clientID string, timestamp time.Time) error
	UpdateItemVersion(userID, clientID, itemID string, version int64) error
}

type syncMetadataRepository struct {
	db *kivik.DB
}

func NewSyncMetadataRepository(client *kivik.Client, dbName string) SyncMetadataRepository {
	return &syncMetadataRepository{db: client.DB(dbName)}
}

func (r *syncMetadataRepository) Get(userID, clientID string) (*domain.SyncMetadata, error) {
	docID := fmt.Sprintf("sync:%s:%s", userID, clientID)
	row := r.db.Get(context.Background(), docID)

	var metadata domain.SyncMetadata
	if err := row.ScanDoc(&metadata); err != nil {
		// A client that has never synced starts from an empty state.
		return &domain.SyncMetadata{
			UserID:       userID,
			ClientID:     clientID,
			LastSyncTime: time.Time{},
			ItemVersions: make(map[string]int64),
			UpdatedAt:    time.Now(),
		}, nil
	}

	if metadata.ItemVersions == nil {
		metadata.ItemVersions = make(map[string]int64)
	}

	return &metadata, nil
}

func (r *syncMetadataRepository) Upsert(metadata *domain.SyncMetadata) error {
	docID := fmt.Sprintf("sync:%s:%s", metadata.UserID, metadata.ClientID)

	doc := map[string]interface{}{
		"user_id":        metadata.UserID,
		"client_id":      metadata.ClientID,
		"last_sync_time": metadata.LastSyncTime,
		"item_versions":  metadata.ItemVersions,
		"updated_at":     time.Now(),
	}

	var existingDoc map[string]interface{}
	row := r.db.Get(context.Background(), docID)
	if err := row.ScanDoc(&existingDoc); err == nil {
		if rev, ok := existingDoc["_rev"].(string); ok {
			doc["_rev"] = rev
		}
	}

	if _, err := r.db.Put(context.Background(), docID, doc); err != nil {
		return fmt.Errorf("failed to upsert sync metadata: %w", err)
	}

	return nil
}

func (r *syncMetadataRepository) UpdateLastSync(userID, clientID string, timestamp time.Time) error {
	metadata, err := r.Get(userID, clientID)
	if err != nil {
		return err
	}

	metadata.LastSyncTime = timestamp
	return r.Upsert(metadata)
}

func (r *syncMetadataRepository) UpdateItemVersion(userID, clientID, itemID string, version int64) error {
	metadata, err := r.Get(userID, clientID)
	if err != nil {
		return err
	}

	metadata.ItemVersions[itemID] = version
	return r.Upsert(metadata)
}
