package conflict

import (
	"fmt"

	"github.com/adamsuskin/grocery-sub012/internal/domain"
)

// Apply maps a resolution choice to the item value that should be
// committed. For manual resolution the caller supplies the merged
// value; the policy validates it but never edits it.
func Apply(c *domain.Conflict, choice domain.ResolutionChoice, manual *domain.Item) (*domain.Item, error) {
	switch choice {
	case domain.ResolutionMine:
		return c.LocalVersion.Value.Clone(), nil

	case domain.ResolutionTheirs:
		return c.RemoteVersion.Value.Clone(), nil

	case domain.ResolutionManual:
		if manual == nil {
			return nil, fmt.Errorf("%w: manual resolution requires a merged value", ErrValidation)
		}
		if manual.ID != c.ItemID {
			return nil, fmt.Errorf("%w: merged value id %s does not match item %s", ErrValidation, manual.ID, c.ItemID)
		}
		return manual, nil

	default:
		return nil, fmt.Errorf("%w: unknown resolution choice %q", ErrValidation, choice)
	}
}
