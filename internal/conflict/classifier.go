package conflict

import (
	mapset "github.com/deckarep/golang-set/v2"

	"github.com/adamsuskin/grocery-sub012/internal/domain"
)

// Classification is the typed outcome of classifying a detected
// version mismatch.
type Classification struct {
	Type           domain.ConflictType
	Priority       domain.Priority
	AutoResolvable bool
}

// Classify assigns a conflict type from the two versions and their
// field-level diff.
//
// The per-side changed-field sets come from write provenance
// (VersionedItem.ChangedFields), compared by name only: there is no
// common-ancestor snapshot, so a field both sides set to the same new
// value still counts as overlapping. This is deliberately conservative.
func Classify(local, remote domain.VersionedItem, changes []domain.FieldChange) Classification {
	if remote.IsTombstone() && localHasEdits(local, changes) {
		// Deletions always need human judgment.
		return Classification{
			Type:           domain.ConflictTypeDeleteEdit,
			Priority:       domain.PriorityHigh,
			AutoResolvable: false,
		}
	}

	localFields := mapset.NewSet(local.ChangedFields...)
	remoteFields := mapset.NewSet(remote.ChangedFields...)

	if localFields.Cardinality() > 0 && remoteFields.Cardinality() > 0 &&
		localFields.Intersect(remoteFields).Cardinality() == 0 {
		return Classification{
			Type:           domain.ConflictTypeEditEdit,
			Priority:       domain.PriorityLow,
			AutoResolvable: true,
		}
	}

	return Classification{
		Type:           domain.ConflictTypeConcurrentEdit,
		Priority:       domain.PriorityMedium,
		AutoResolvable: false,
	}
}

func localHasEdits(local domain.VersionedItem, changes []domain.FieldChange) bool {
	return len(local.ChangedFields) > 0 || len(changes) > 0
}
