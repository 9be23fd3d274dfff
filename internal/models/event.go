package models

import (
	"time"

	"github.com/google/uuid"
)

// Event is a competition (hackathon) teams are formed for. TeamCapacity is
// the maximum team size including the leader; nil means unbounded.
type Event struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	Description  string     `json:"description"`
	TeamCapacity *int       `json:"team_capacity,omitempty"`
	StartsAt     *time.Time `json:"starts_at,omitempty"`
	EndsAt       *time.Time `json:"ends_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
