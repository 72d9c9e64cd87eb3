package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/go-kivik/kivik/v4"

	"github.com/adamsuskin/grocery-sub012/internal/domain"
)

// ConflictLogRepository keeps the durable audit trail of conflict
// detections and outcomes. The open conflict set itself is in-memory.
type ConflictLogRepository interface {
	Record(entry *domain.ConflictLogEntry) error
	MarkResolved(conflictID string, choice domain.ResolutionChoice) error
	MarkDismissed(conflictID string) error
	ListByUser(userID string) ([]*domain.ConflictLogEntry, error)
	ListByItem(itemID string) ([]*domain.ConflictLogEntry, error)
}

type conflictLogRepository struct {
	db *kivik.DB
}

func NewConflictLogRepository(client *kivik.Client, dbName string) ConflictLogRepository {
	return &conflictLogRepository{db: client.DB(dbName)}
}

func (r *conflictLogRepository) Record(entry *domain.ConflictLogEntry) error {
	docID := fmt.Sprintf("conflictlog:%s", entry.ConflictID)
	if _, err := r.db.Put(context.Background(), docID, entry); err != nil {
		return fmt.Errorf("failed to record conflict: %w", err)
	}
	return nil
}

func (r *conflictLogRepository) MarkResolved(conflictID string, choice domain.ResolutionChoice) error {
	return r.close(conflictID, choice, false)
}

func (r *conflictLogRepository) MarkDismissed(conflictID string) error {
	return r.close(conflictID, "", true)
}

func (r *conflictLogRepository) close(conflictID string, choice domain.ResolutionChoice, dismissed bool) error {
	docID := fmt.Sprintf("conflictlog:%s", conflictID)

	var existingDoc map[string]interface{}
	row := r.db.Get(context.Background(), docID)
	if err := row.ScanDoc(&existingDoc); err != nil {
		return fmt.Errorf("failed to fetch conflict log entry: %w", err)
	}

	existingDoc["resolved_at"] = time.Now()
	existingDoc["choice"] = choice
	existingDoc["dismissed"] = dismissed

	if _, err := r.db.Put(context.Background(), docID, existingDoc); err != nil {
		return fmt.Errorf("failed to close conflict log entry: %w", err)
	}

	return nil
}

func (r *conflictLogRepository) ListByUser(userID string) ([]*domain.ConflictLogEntry, error) {
	return r.list(map[string]interface{}{"user_id": userID, "conflict_id": map[string]interface{}{"$exists": true}})
}

func (r *conflictLogRepository) ListByItem(itemID string) ([]*domain.ConflictLogEntry, error) {
	return r.list(map[string]interface{}{"item_id": itemID, "conflict_id": map[string]interface{}{"$exists": true}})
}

func (r *conflictLogRepository) list(selector map[string]interface{}) ([]*domain.ConflictLogEntry, error) {
	query := map[string]interface{}{"selector": selector}

	rows := r.db.Find(context.Background(), query)
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list conflict log entries: %w", err)
	}
	defer rows.Close()

	var entries []*domain.ConflictLogEntry
	for rows.Next() {
		var entry domain.ConflictLogEntry
		if err := rows.ScanDoc(&entry); err != nil {
			continue
		}
		entries = append(entries, &entry)
	}

	return entries, nil
}
