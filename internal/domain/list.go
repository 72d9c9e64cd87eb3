package domain

import "time"

type GroceryList struct {
	ID            string    `json:"id"`
	OwnerID       string    `json:"owner_id"`
	Name          string    `json:"name"`
	Collaborators []string  `json:"collaborators"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	IsDefault     bool      `json:"is_default"`
}

// HasMember reports whether the user owns or collaborates on the list.
func (l *GroceryList) HasMember(userID string) bool {
	if l.OwnerID == userID {
		return true
	}
	for _, id := range l.Collaborators {
		if id == userID {
			return true
		}
	}
	return false
}

type CreateListRequest struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
}

type UpdateListRequest struct {
	Name string `json:"name,omitempty"`
}

type ShareListRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ListResponse struct {
	ID            string    `json:"id"`
	OwnerID       string    `json:"owner_id"`
	Name          string    `json:"name"`
	Collaborators []string  `json:"collaborators"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	IsDefault     bool      `json:"is_default"`
	ItemCount     int       `json:"item_count,omitempty"`
}
