package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/go-kivik/kivik/v4"

	"github.com/adamsuskin/grocery-sub012/internal/domain"
)

type ItemRepository interface {
	Create(item *domain.Item) error
	FindByID(id string) (*domain.Item, error)
	ListByList(listID string) ([]*domain.Item, error)
	Update(item *domain.Item) error
	Delete(id string, clientID string) error
}

type itemRepository struct {
	client *kivik.Client
	dbName string
}

func NewItemRepository(client *kivik.Client, dbName string) ItemRepository {
	return &itemRepository{
		client: client,
		dbName: dbName,
	}
}

func (r *itemRepository) Create(item *domain.Item) error {
	db := r.client.DB(r.dbName)

	docID := fmt.Sprintf("item:%s", item.ID)
	if _, err := db.Put(context.Background(), docID, item); err != nil {
		return fmt.Errorf("failed to create item: %w", err)
	}

	return nil
}

func (r *itemRepository) FindByID(id string) (*domain.Item, error) {
	db := r.client.DB(r.dbName)

	docID := fmt.Sprintf("item:%s", id)
	row := db.Get(context.Background(), docID)

	var item domain.Item
	if err := row.ScanDoc(&item); err != nil {
		return nil, fmt.Errorf("failed to find item: %w", err)
	}

	return &item, nil
}

func (r *itemRepository) ListByList(listID string) ([]*domain.Item, error) {
	db := r.client.DB(r.dbName)

	query := map[string]interface{}{
		"selector": map[string]interface{}{
			"list_id": listID,
			"name":    map[string]interface{}{"$exists": true},
		},
	}

	rows := db.Find(context.Background(), query)
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	var items []*domain.Item
	for rows.Next() {
		var item domain.Item
		if err := rows.ScanDoc(&item); err != nil {
			continue
		}
		items = append(items, &item)
	}

	return items, nil
}

func (r *itemRepository) Update(item *domain.Item) error {
	db := r.client.DB(r.dbName)
	docID := fmt.Sprintf("item:%s", item.ID)

	var existingDoc map[string]interface{}
	row := db.Get(context.Background(), docID)
	if err := row.ScanDoc(&existingDoc); err != nil {
		return fmt.Errorf("failed to fetch existing item for update: %w", err)
	}

	existingDoc["name"] = item.Name
	existingDoc["quantity"] = item.Quantity
	existingDoc["unit"] = item.Unit
	existingDoc["category"] = item.Category
	existingDoc["notes"] = item.Notes
	existingDoc["gotten"] = item.Gotten
	existingDoc["last_edit_client"] = item.LastEditClient
	existingDoc["updated_at"] = time.Now()
	existingDoc["version"] = item.Version // Service increments this
	existingDoc["is_deleted"] = item.IsDeleted

	if _, err := db.Put(context.Background(), docID, existingDoc); err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}

	return nil
}

func (r *itemRepository) Delete(id string, clientID string) error {
	db := r.client.DB(r.dbName)
	docID := fmt.Sprintf("item:%s", id)

	var existingDoc map[string]interface{}
	row := db.Get(context.Background(), docID)
	if err := row.ScanDoc(&existingDoc); err != nil {
		return err
	}

	existingDoc["is_deleted"] = true
	existingDoc["updated_at"] = time.Now()
	existingDoc["last_edit_client"] = clientID

	if v, ok := existingDoc["version"].(float64); ok {
		existingDoc["version"] = int64(v) + 1
	}

	if _, err := db.Put(context.Background(), docID, existingDoc); err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}

	return nil
}
