package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/adamsuskin/grocery-sub012/internal/conflict"
	"github.com/adamsuskin/grocery-sub012/internal/domain"
	"github.com/adamsuskin/grocery-sub012/internal/repository"
	"github.com/adamsuskin/grocery-sub012/internal/websocket"
)

// ConflictService owns the conflict engine: it feeds detections into
// the detector, persists an audit trail, and pushes conflict events to
// every member of the affected list.
type ConflictService struct {
	detector    *conflict.Detector
	status      *conflict.StatusTracker
	logRepo     repository.ConflictLogRepository
	listService *ListService
	wsManager   *websocket.Manager
}

func NewConflictService(
	itemRepo repository.ItemRepository,
	versionRepo repository.ItemVersionRepository,
	logRepo repository.ConflictLogRepository,
	listService *ListService,
	wsManager *websocket.Manager,
	status *conflict.StatusTracker,
	feedCfg conflict.FeedConfig,
) *ConflictService {
	transport := &resolutionTransport{
		itemRepo:    itemRepo,
		versionRepo: versionRepo,
	}

	s := &ConflictService{
		status:      status,
		logRepo:     logRepo,
		listService: listService,
		wsManager:   wsManager,
	}
	s.detector = conflict.NewDetector(transport, status, feedCfg)
	transport.svc = s

	return s
}

// RaiseVersionMismatch runs an optimistic write that missed its
// expected version through the detector. A nil conflict means the
// mismatch resolved silently and the write may proceed.
func (s *ConflictService) RaiseVersionMismatch(userID, itemID, listID string, local, remote domain.VersionedItem) (*domain.Conflict, error) {
	c, err := s.detector.OnVersionMismatch(itemID, listID, local, remote)
	if err != nil || c == nil {
		return c, err
	}

	s.recordDetection(userID, c)
	s.broadcastConflictRaised(c)

	return c, nil
}

// RaiseRemoteDelete runs an edit that arrived for an already-deleted
// item through the detector.
func (s *ConflictService) RaiseRemoteDelete(userID, itemID, listID string, local, remote domain.VersionedItem) (*domain.Conflict, error) {
	c, err := s.detector.OnRemoteDelete(itemID, listID, local, remote)
	if err != nil || c == nil {
		return c, err
	}

	s.recordDetection(userID, c)
	s.broadcastConflictRaised(c)

	return c, nil
}

// Resolve applies the chosen resolution, commits it through the item
// store and broadcasts the outcome.
func (s *ConflictService) Resolve(ctx context.Context, conflictID string, req *domain.ResolveConflictRequest) (*domain.Item, error) {
	c := s.detector.Registry().Get(conflictID)
	if c == nil {
		return nil, conflict.ErrNotFound
	}

	value, err := s.detector.Resolve(ctx, conflictID, req.Choice, req.ManualValue)
	if err != nil {
		return nil, err
	}

	if err := s.logRepo.MarkResolved(conflictID, req.Choice); err != nil {
		log.Printf("failed to mark conflict %s resolved: %v", conflictID, err)
	}

	s.broadcastConflictResolved(c, req.Choice, value)

	return value, nil
}

// Dismiss drops the conflict without writing anything; the remote
// value stays in place.
func (s *ConflictService) Dismiss(conflictID string) error {
	if err := s.detector.Dismiss(conflictID); err != nil {
		return err
	}

	if err := s.logRepo.MarkDismissed(conflictID); err != nil {
		log.Printf("failed to mark conflict %s dismissed: %v", conflictID, err)
	}

	return nil
}

// ListOpen returns every open conflict, highest priority first.
func (s *ConflictService) ListOpen() []*domain.Conflict {
	return s.detector.ListOpen()
}

// Feed returns the bounded notification view of open conflicts.
func (s *ConflictService) Feed() []*domain.Conflict {
	return s.detector.Feed().Visible()
}

func (s *ConflictService) Get(conflictID string) *domain.Conflict {
	return s.detector.Registry().Get(conflictID)
}

func (s *ConflictService) HistoryByUser(userID string) ([]*domain.ConflictLogEntry, error) {
	return s.logRepo.ListByUser(userID)
}

func (s *ConflictService) HistoryByItem(itemID string) ([]*domain.ConflictLogEntry, error) {
	return s.logRepo.ListByItem(itemID)
}

func (s *ConflictService) Status() *conflict.StatusTracker {
	return s.status
}

func (s *ConflictService) recordDetection(userID string, c *domain.Conflict) {
	entry := &domain.ConflictLogEntry{
		ID:         uuid.New().String(),
		ConflictID: c.ID,
		ItemID:     c.ItemID,
		ListID:     c.ListID,
		UserID:     userID,
		Type:       c.Type,
		DetectedAt: c.DetectedAt,
	}

	if err := s.logRepo.Record(entry); err != nil {
		log.Printf("failed to record conflict %s: %v", c.ID, err)
	}
}

func (s *ConflictService) broadcastConflictRaised(c *domain.Conflict) {
	if s.wsManager == nil {
		return
	}

	conflictJSON, err := json.Marshal(c)
	if err != nil {
		log.Printf("failed to marshal conflict %s: %v", c.ID, err)
		return
	}

	msg, err := websocket.NewMessage(websocket.TypeConflictRaised, &websocket.ConflictRaisedPayload{
		ConflictID:     c.ID,
		ItemID:         c.ItemID,
		ListID:         c.ListID,
		Type:           string(c.Type),
		Priority:       int(c.Priority),
		AutoResolvable: c.AutoResolvable,
		Conflict:       conflictJSON,
	})
	if err != nil {
		log.Printf("failed to build conflict message: %v", err)
		return
	}

	members, err := s.listService.Members(c.ListID)
	if err != nil {
		log.Printf("failed to resolve members of list %s: %v", c.ListID, err)
		return
	}

	s.wsManager.BroadcastToUsers(members, msg, "")
}

func (s *ConflictService) broadcastConflictResolved(c *domain.Conflict, choice domain.ResolutionChoice, value *domain.Item) {
	if s.wsManager == nil {
		return
	}

	var itemJSON json.RawMessage
	if value != nil {
		bytes, err := json.Marshal(value)
		if err != nil {
			log.Printf("failed to marshal resolved item %s: %v", c.ItemID, err)
			return
		}
		itemJSON = bytes
	}

	msg, err := websocket.NewMessage(websocket.TypeConflictResolved, &websocket.ConflictResolvedPayload{
		ConflictID: c.ID,
		ItemID:     c.ItemID,
		ListID:     c.ListID,
		Choice:     string(choice),
		Item:       itemJSON,
	})
	if err != nil {
		log.Printf("failed to build resolution message: %v", err)
		return
	}

	members, err := s.listService.Members(c.ListID)
	if err != nil {
		log.Printf("failed to resolve members of list %s: %v", c.ListID, err)
		return
	}

	s.wsManager.BroadcastToUsers(members, msg, "")
}

// resolutionTransport commits resolved values through the item store.
// The registry entry is only cleared after the write below succeeds.
type resolutionTransport struct {
	itemRepo    repository.ItemRepository
	versionRepo repository.ItemVersionRepository
	svc         *ConflictService
}

func (t *resolutionTransport) SubmitResolution(ctx context.Context, itemID string, value *domain.Item) error {
	item, err := t.itemRepo.FindByID(itemID)
	if err != nil {
		return err
	}

	if t.versionRepo != nil {
		if err := t.versionRepo.SaveVersion(item); err != nil {
			log.Printf("failed to snapshot item %s before resolution: %v", itemID, err)
		}
	}

	next := value.Clone()
	next.ID = item.ID
	next.ListID = item.ListID
	next.CreatedAt = item.CreatedAt
	next.AddedBy = item.AddedBy
	next.Version = item.Version + 1
	next.UpdatedAt = time.Now()
	if next.LastEditClient == "" {
		next.LastEditClient = item.LastEditClient
	}

	if err := t.itemRepo.Update(next); err != nil {
		return err
	}

	if t.svc != nil {
		t.svc.broadcastItemUpdate(next)
	}

	return nil
}

func (s *ConflictService) broadcastItemUpdate(item *domain.Item) {
	if s.wsManager == nil {
		return
	}

	itemJSON, err := json.Marshal(item)
	if err != nil {
		log.Printf("failed to marshal item %s: %v", item.ID, err)
		return
	}

	msg, err := websocket.NewMessage(websocket.TypeItemUpdate, &websocket.ItemUpdatePayload{
		ItemID:    item.ID,
		ListID:    item.ListID,
		Version:   item.Version,
		Item:      itemJSON,
		UpdatedAt: item.UpdatedAt,
		ClientID:  item.LastEditClient,
	})
	if err != nil {
		log.Printf("failed to build item update message: %v", err)
		return
	}

	members, err := s.listService.Members(item.ListID)
	if err != nil {
		log.Printf("failed to resolve members of list %s: %v", item.ListID, err)
		return
	}

	s.wsManager.BroadcastToUsers(members, msg, "")
}
