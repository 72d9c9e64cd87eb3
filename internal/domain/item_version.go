package domain

import "time"

// ItemVersion is a retained snapshot of a committed item version.
type ItemVersion struct {
	ID        string    `json:"id"`
	ItemID    string    `json:"item_id"`
	Version   int64     `json:"version"`
	Name      string    `json:"name"`
	Quantity  float64   `json:"quantity"`
	Unit      string    `json:"unit"`
	Category  string    `json:"category"`
	Notes     string    `json:"notes"`
	Gotten    bool      `json:"gotten"`
	ClientID  string    `json:"client_id"`
	CreatedAt time.Time `json:"created_at"`
}
