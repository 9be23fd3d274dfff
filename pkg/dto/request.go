package dto

import "github.com/google/uuid"

type CreateJoinRequestRequest struct {
	PreferredRole *string `json:"preferred_role,omitempty"`
}

type JoinRequestResponse struct {
	ID            uuid.UUID     `json:"id"`
	TeamID        uuid.UUID     `json:"team_id"`
	EventID       uuid.UUID     `json:"event_id"`
	RequesterID   uuid.UUID     `json:"requester_id"`
	PreferredRole *string       `json:"preferred_role,omitempty"`
	Status        string        `json:"status"`
	ResolvedBy    *uuid.UUID    `json:"resolved_by,omitempty"`
	CreatedAt     string        `json:"created_at"`
	Team          *TeamResponse `json:"team,omitempty"`
	Requester     *UserResponse `json:"requester,omitempty"`
}
