package domain

import "time"

// Team represents a collaborative group. The (Name, CreatedBy) pair is
// unique: a creator cannot own two teams with the same name.
type Team struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedBy   string    `json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
