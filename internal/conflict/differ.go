package conflict

import (
	"fmt"

	"github.com/adamsuskin/grocery-sub012/internal/domain"
)

// Diff computes the field-level differences between two versions of the
// same item. Output order follows the item schema's field declaration
// order, so repeated calls on the same inputs yield identical slices.
func Diff(local, remote domain.VersionedItem) ([]domain.FieldChange, error) {
	if local.Value == nil || remote.Value == nil {
		return nil, fmt.Errorf("%w: both versions must carry a value", ErrInvalidInput)
	}
	if local.Value.ID != remote.Value.ID {
		return nil, fmt.Errorf("%w: version ids differ (%s vs %s)", ErrInvalidInput, local.Value.ID, remote.Value.ID)
	}

	var changes []domain.FieldChange
	for _, field := range domain.ItemFields() {
		oldValue := remote.Value.FieldValue(field)
		newValue := local.Value.FieldValue(field)
		if oldValue != newValue {
			changes = append(changes, domain.FieldChange{
				Field:    field,
				OldValue: oldValue,
				NewValue: newValue,
			})
		}
	}

	return changes, nil
}
