package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateEventRequest struct {
	Name         string     `json:"name"`
	Description  string     `json:"description"`
	TeamCapacity *int       `json:"team_capacity"`
	StartsAt     *time.Time `json:"starts_at"`
	EndsAt       *time.Time `json:"ends_at"`
}

type EventResponse struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	Description  string     `json:"description"`
	TeamCapacity *int       `json:"team_capacity,omitempty"`
	StartsAt     *time.Time `json:"starts_at,omitempty"`
	EndsAt       *time.Time `json:"ends_at,omitempty"`
	CreatedAt    string     `json:"created_at"`
}
