package dto

import "github.com/google/uuid"

type CreateTeamRequest struct {
	EventID       uuid.UUID `json:"event_id"`
	Name          string    `json:"name"`
	Bio           string    `json:"bio"`
	RolesRequired []string  `json:"roles_required"`
}

type UpdateTeamRequest struct {
	Name          string   `json:"name"`
	Bio           string   `json:"bio"`
	RolesRequired []string `json:"roles_required"`
}

type TeamResponse struct {
	ID            uuid.UUID `json:"id"`
	EventID       uuid.UUID `json:"event_id"`
	LeaderID      uuid.UUID `json:"leader_id"`
	Name          string    `json:"name"`
	Bio           string    `json:"bio"`
	RolesRequired []string  `json:"roles_required"`
	MemberCount   int       `json:"member_count"`
}

type TeamMemberResponse struct {
	ID     uuid.UUID    `json:"id"`
	UserID uuid.UUID    `json:"user_id"`
	Role   string       `json:"role"`
	User   UserResponse `json:"user"`
}
