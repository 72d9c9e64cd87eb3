package domain

import "time"

// Item field names, in schema declaration order. Diff output and merge
// UIs rely on this order being stable.
const (
	FieldName     = "name"
	FieldQuantity = "quantity"
	FieldUnit     = "unit"
	FieldCategory = "category"
	FieldNotes    = "notes"
	FieldGotten   = "gotten"
)

var itemFields = []string{
	FieldName,
	FieldQuantity,
	FieldUnit,
	FieldCategory,
	FieldNotes,
	FieldGotten,
}

// ItemFields returns the closed set of diffable item fields in
// declaration order.
func ItemFields() []string {
	fields := make([]string, len(itemFields))
	copy(fields, itemFields)
	return fields
}

type Item struct {
	ID       string  `json:"id"`
	ListID   string  `json:"list_id"`
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
	Category string  `json:"category"`
	Notes    string  `json:"notes"`
	Gotten   bool    `json:"gotten"`

	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	IsDeleted      bool      `json:"is_deleted"`
	Version        int64     `json:"version"`
	LastEditClient string    `json:"last_edit_client"`
	AddedBy        string    `json:"added_by"`
}

// FieldValue returns the value of one of the diffable fields. Unknown
// field names return nil.
func (i *Item) FieldValue(field string) interface{} {
	switch field {
	case FieldName:
		return i.Name
	case FieldQuantity:
		return i.Quantity
	case FieldUnit:
		return i.Unit
	case FieldCategory:
		return i.Category
	case FieldNotes:
		return i.Notes
	case FieldGotten:
		return i.Gotten
	default:
		return nil
	}
}

// Clone returns a copy so registry snapshots cannot be mutated through
// shared pointers.
func (i *Item) Clone() *Item {
	if i == nil {
		return nil
	}
	clone := *i
	return &clone
}

type CreateItemRequest struct {
	ListID   string  `json:"list_id" validate:"required"`
	Name     string  `json:"name" validate:"required,min=1,max=200"`
	Quantity float64 `json:"quantity" validate:"gte=0"`
	Unit     string  `json:"unit" validate:"max=30"`
	Category string  `json:"category" validate:"max=100"`
	Notes    string  `json:"notes" validate:"max=1000"`
	ClientID string  `json:"client_id" validate:"required"`
}

type UpdateItemRequest struct {
	Name            *string  `json:"name"`
	Quantity        *float64 `json:"quantity"`
	Unit            *string  `json:"unit"`
	Category        *string  `json:"category"`
	Notes           *string  `json:"notes"`
	Gotten          *bool    `json:"gotten"`
	IsDeleted       *bool    `json:"is_deleted"`
	ExpectedVersion *int64   `json:"expected_version"`
	ClientID        string   `json:"client_id"`
}

// ChangedFields lists the fields this request touches, in declaration
// order.
func (r *UpdateItemRequest) ChangedFields() []string {
	var fields []string
	if r.Name != nil {
		fields = append(fields, FieldName)
	}
	if r.Quantity != nil {
		fields = append(fields, FieldQuantity)
	}
	if r.Unit != nil {
		fields = append(fields, FieldUnit)
	}
	if r.Category != nil {
		fields = append(fields, FieldCategory)
	}
	if r.Notes != nil {
		fields = append(fields, FieldNotes)
	}
	if r.Gotten != nil {
		fields = append(fields, FieldGotten)
	}
	return fields
}

// ApplyTo copies the touched fields onto a snapshot of the item and
// returns the result. The original is not modified.
func (r *UpdateItemRequest) ApplyTo(item *Item) *Item {
	next := item.Clone()
	if r.Name != nil {
		next.Name = *r.Name
	}
	if r.Quantity != nil {
		next.Quantity = *r.Quantity
	}
	if r.Unit != nil {
		next.Unit = *r.Unit
	}
	if r.Category != nil {
		next.Category = *r.Category
	}
	if r.Notes != nil {
		next.Notes = *r.Notes
	}
	if r.Gotten != nil {
		next.Gotten = *r.Gotten
	}
	if r.IsDeleted != nil {
		next.IsDeleted = *r.IsDeleted
	}
	return next
}
