package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/go-kivik/kivik/v4"

	"github.com/adamsuskin/grocery-sub012/internal/domain"
)

type ItemVersionRepository interface {
	SaveVersion(item *domain.Item) error
	GetVersions(itemID string, limit int) ([]*domain.ItemVersion, error)
	GetVersion(itemID string, version int64) (*domain.ItemVersion, error)
}

type itemVersionRepository struct {
	db *kivik.DB
}

func NewItemVersionRepository(client *kivik.Client, dbName string) ItemVersionRepository {
	return &itemVersionRepository{db: client.DB(dbName)}
}

func (r *itemVersionRepository) SaveVersion(item *domain.Item) error {
	version := &domain.ItemVersion{
		ID:        fmt.Sprintf("version:%s:%d", item.ID, item.Version),
		ItemID:    item.ID,
		Version:   item.Version,
		Name:      item.Name,
		Quantity:  item.Quantity,
		Unit:      item.Unit,
		Category:  item.Category,
		Notes:     item.Notes,
		Gotten:    item.Gotten,
		ClientID:  item.LastEditClient,
		CreatedAt: time.Now(),
	}

	if _, err := r.db.Put(context.Background(), version.ID, version); err != nil {
		return fmt.Errorf("failed to save item version: %w", err)
	}

	return nil
}

func (r *itemVersionRepository) GetVersions(itemID string, limit int) ([]*domain.ItemVersion, error) {
	query := map[string]interface{}{
		"selector": map[string]interface{}{
			"item_id": itemID,
			"version": map[string]interface{}{"$exists": true},
		},
		"sort":  []map[string]string{{"version": "desc"}},
		"limit": limit,
	}

	rows := r.db.Find(context.Background(), query)
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list item versions: %w", err)
	}
	defer rows.Close()

	var versions []*domain.ItemVersion
	for rows.Next() {
		var v domain.ItemVersion
		if err := rows.ScanDoc(&v); err != nil {
			continue
		}
		versions = append(versions, &v)
	}

	return versions, nil
}

func (r *itemVersionRepository) GetVersion(itemID string, version int64) (*domain.ItemVersion, error) {
	docID := fmt.Sprintf("version:%s:%d", itemID, version)
	row := r.db.Get(context.Background(), docID)

	var v domain.ItemVersion
	if err := row.ScanDoc(&v); err != nil {
		return nil, fmt.Errorf("failed to find item version: %w", err)
	}

	return &v, nil
}
