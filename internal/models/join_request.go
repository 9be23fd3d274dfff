package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	RequestStatusPending  = "pending"
	RequestStatusAccepted = "accepted"
	RequestStatusDeclined = "declined"
)

// JoinRequest is a user's proposal to join a team, decided by the team leader.
// Pending is the only non-terminal status; accepted and declined requests are
// never reopened.
type JoinRequest struct {
	ID            uuid.UUID  `json:"id"`
	TeamID        uuid.UUID  `json:"team_id"`
	EventID       uuid.UUID  `json:"event_id"`
	RequesterID   uuid.UUID  `json:"requester_id"`
	PreferredRole *string    `json:"preferred_role,omitempty"`
	Status        string     `json:"status"`
	ResolvedBy    *uuid.UUID `json:"resolved_by,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	Team          *Team      `json:"team,omitempty"`
	Requester     *User      `json:"requester,omitempty"`
}

func (r *JoinRequest) IsPending() bool {
	return r.Status == RequestStatusPending
}
