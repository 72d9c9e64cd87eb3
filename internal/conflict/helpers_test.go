package conflict

import (
	"time"

	"github.com/adamsuskin/grocery-sub012/internal/domain"
)

func testItem(id string) *domain.Item {
	return &domain.Item{
		ID:       id,
		ListID:   "list-1",
		Name:     "Milk",
		Quantity: 1,
		Unit:     "l",
		Category: "dairy",
		Notes:    "",
		Gotten:   false,
		Version:  2,
	}
}

func versioned(item *domain.Item, actor string, at time.Time, base int64, changed ...string) domain.VersionedItem {
	return domain.VersionedItem{
		Value:         item,
		Timestamp:     at,
		ActorID:       actor,
		ActorName:     actor,
		BaseVersion:   base,
		ChangedFields: changed,
	}
}

func testConflict(itemID string, prio domain.Priority, detectedAt time.Time) *domain.Conflict {
	local := testItem(itemID)
	remote := testItem(itemID)
	remote.Quantity = 5

	return &domain.Conflict{
		ItemID:        itemID,
		ListID:        "list-1",
		Type:          domain.ConflictTypeConcurrentEdit,
		LocalVersion:  versioned(local, "alice", detectedAt, 1, domain.FieldQuantity),
		RemoteVersion: versioned(remote, "bob", detectedAt, 1, domain.FieldQuantity),
		DetectedAt:    detectedAt,
		Priority:      prio,
	}
}
