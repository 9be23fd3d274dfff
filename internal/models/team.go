package models

import (
	"time"

	"github.com/google/uuid"
)

type Team struct {
	ID            uuid.UUID `json:"id"`
	EventID       uuid.UUID `json:"event_id"`
	LeaderID      uuid.UUID `json:"leader_id"`
	Name          string    `json:"name"`
	Bio           string    `json:"bio"`
	RolesRequired []string  `json:"roles_required"`
	MemberCount   int       `json:"member_count,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TeamMember links a user to a team. EventID is denormalized from the team so
// the database can enforce one membership per user per event.
type TeamMember struct {
	ID        uuid.UUID `json:"id"`
	TeamID    uuid.UUID `json:"team_id"`
	EventID   uuid.UUID `json:"event_id"`
	UserID    uuid.UUID `json:"user_id"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	User      *User     `json:"user,omitempty"`
}

const (
	RoleLeader = "leader"
	RoleMember = "member"
)
