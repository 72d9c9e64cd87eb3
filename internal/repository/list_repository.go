package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-kivik/kivik/v4"

	"github.com/adamsuskin/grocery-sub012/internal/domain"
)

var ErrListNotFound = errors.New("list not found")

type ListRepository interface {
	Create(list *domain.GroceryList) error
	Get(id string) (*domain.GroceryList, error)
	GetByMember(userID string) ([]*domain.GroceryList, error)
	GetDefault(ownerID string) (*domain.GroceryList, error)
	Update(list *domain.GroceryList) error
	Delete(id string) error
}

type listRepository struct {
	db *kivik.DB
}

type listDoc struct {
	ID            string    `json:"_id"`
	Rev           string    `json:"_rev,omitempty"`
	DocType       string    `json:"doc_type"`
	OwnerID       string    `json:"owner_id"`
	Name          string    `json:"name"`
	Collaborators []string  `json:"collaborators"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	IsDefault     bool      `json:"is_default"`
}

func NewListRepository(client *kivik.Client, dbName string) ListRepository {
	return &listRepository{db: client.DB(dbName)}
}

func (r *listRepository) Create(list *domain.GroceryList) error {
	doc := listDoc{
		ID:            fmt.Sprintf("list:%s", list.ID),
		DocType:       "list",
		OwnerID:       list.OwnerID,
		Name:          list.Name,
		Collaborators: list.Collaborators,
		CreatedAt:     list.CreatedAt,
		UpdatedAt:     list.UpdatedAt,
		IsDefault:     list.IsDefault,
	}

	if _, err := r.db.Put(context.Background(), doc.ID, doc); err != nil {
		return fmt.Errorf("failed to create list: %w", err)
	}

	return nil
}

func (r *listRepository) Get(id string) (*domain.GroceryList, error) {
	row := r.db.Get(context.Background(), fmt.Sprintf("list:%s", id))

	var doc listDoc
	if err := row.ScanDoc(&doc); err != nil {
		return nil, ErrListNotFound
	}

	return docToList(&doc, id), nil
}

func (r *listRepository) GetByMember(userID string) ([]*domain.GroceryList, error) {
	query := map[string]interface{}{
		"selector": map[string]interface{}{
			"doc_type": "list",
			"$or": []map[string]interface{}{
				{"owner_id": userID},
				{"collaborators": map[string]interface{}{"$elemMatch": map[string]interface{}{"$eq": userID}}},
			},
		},
	}

	rows := r.db.Find(context.Background(), query)
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list lists: %w", err)
	}
	defer rows.Close()

	var lists []*domain.GroceryList
	for rows.Next() {
		var doc listDoc
		if err := rows.ScanDoc(&doc); err != nil {
			continue
		}
		lists = append(lists, docToList(&doc, doc.ID[len("list:"):]))
	}

	return lists, nil
}

func (r *listRepository) GetDefault(ownerID string) (*domain.GroceryList, error) {
	query := map[string]interface{}{
		"selector": map[string]interface{}{
			"doc_type":   "list",
			"owner_id":   ownerID,
			"is_default": true,
		},
		"limit": 1,
	}

	rows := r.db.Find(context.Background(), query)
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to query default list: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, ErrListNotFound
	}

	var doc listDoc
	if err := rows.ScanDoc(&doc); err != nil {
		return nil, fmt.Errorf("failed to scan list: %w", err)
	}

	return docToList(&doc, doc.ID[len("list:"):]), nil
}

func (r *listRepository) Update(list *domain.GroceryList) error {
	docID := fmt.Sprintf("list:%s", list.ID)

	var existingDoc map[string]interface{}
	row := r.db.Get(context.Background(), docID)
	if err := row.ScanDoc(&existingDoc); err != nil {
		return ErrListNotFound
	}

	existingDoc["name"] = list.Name
	existingDoc["collaborators"] = list.Collaborators
	existingDoc["updated_at"] = time.Now()

	if _, err := r.db.Put(context.Background(), docID, existingDoc); err != nil {
		return fmt.Errorf("failed to update list: %w", err)
	}

	return nil
}

func (r *listRepository) Delete(id string) error {
	docID := fmt.Sprintf("list:%s", id)

	row := r.db.Get(context.Background(), docID)

	var doc map[string]interface{}
	if err := row.ScanDoc(&doc); err != nil {
		return ErrListNotFound
	}

	rev, _ := doc["_rev"].(string)
	if _, err := r.db.Delete(context.Background(), docID, rev); err != nil {
		return fmt.Errorf("failed to delete list: %w", err)
	}

	return nil
}

func docToList(doc *listDoc, id string) *domain.GroceryList {
	return &domain.GroceryList{
		ID:            id,
		OwnerID:       doc.OwnerID,
		Name:          doc.Name,
		Collaborators: doc.Collaborators,
		CreatedAt:     doc.CreatedAt,
		UpdatedAt:     doc.UpdatedAt,
		IsDefault:     doc.IsDefault,
	}
}
