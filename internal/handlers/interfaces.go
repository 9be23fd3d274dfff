package handlers

import (
	"context"
	"time"

	"github.com/andrej/teamup-api/internal/models"
	"github.com/andrej/teamup-api/internal/services"
	"github.com/andrej/teamup-api/internal/sse"
	"github.com/google/uuid"
)

// UserServiceInterface defines the methods used by handlers from UserService
type UserServiceInterface interface {
	Register(ctx context.Context, email, name, password string) (*models.User, error)
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, id uuid.UUID, name string) (*models.User, error)
}

// EventServiceInterface defines the methods used by handlers from EventService
type EventServiceInterface interface {
	Create(ctx context.Context, name, description string, teamCapacity *int, startsAt, endsAt *time.Time) (*models.Event, error)
	GetByID(ctx context.Context, eventID uuid.UUID) (*models.Event, error)
	List(ctx context.Context) ([]models.Event, error)
}

// TeamServiceInterface defines the methods used by handlers from TeamService
type TeamServiceInterface interface {
	Create(ctx context.Context, eventID, leaderID uuid.UUID, name, bio string, rolesRequired []string) (*models.Team, error)
	GetByID(ctx context.Context, teamID uuid.UUID) (*models.Team, error)
	GetByEvent(ctx context.Context, eventID uuid.UUID) ([]models.Team, error)
	GetUserTeamForEvent(ctx context.Context, userID, eventID uuid.UUID) (*models.Team, error)
	Update(ctx context.Context, teamID uuid.UUID, name, bio string, rolesRequired []string) (*models.Team, error)
	Delete(ctx context.Context, teamID uuid.UUID) error
	IsLeader(ctx context.Context, teamID, userID uuid.UUID) (bool, error)
	IsMember(ctx context.Context, teamID, userID uuid.UUID) (bool, error)
	GetMembers(ctx context.Context, teamID uuid.UUID) ([]models.TeamMember, error)
	RemoveMember(ctx context.Context, teamID, userID uuid.UUID) error
}

// RequestServiceInterface defines the methods used by handlers from RequestService
type RequestServiceInterface interface {
	Create(ctx context.Context, teamID, requesterID uuid.UUID, preferredRole *string) (*models.JoinRequest, error)
	Accept(ctx context.Context, requestID, deciderID uuid.UUID) error
	Decline(ctx context.Context, requestID, deciderID uuid.UUID) error
	Cancel(ctx context.Context, requestID, requesterID uuid.UUID) error
	GetByID(ctx context.Context, requestID uuid.UUID) (*models.JoinRequest, error)
	GetPendingForTeam(ctx context.Context, teamID uuid.UUID) ([]models.JoinRequest, error)
	GetPendingForLeader(ctx context.Context, leaderID uuid.UUID) ([]models.JoinRequest, error)
	GetPendingForUserEvent(ctx context.Context, requesterID, eventID uuid.UUID) (*models.JoinRequest, error)
}

// TokenServiceInterface defines the methods used by handlers from TokenService
type TokenServiceInterface interface {
	StoreRefreshToken(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error
	ValidateRefreshToken(ctx context.Context, tokenHash string) (uuid.UUID, error)
	RevokeRefreshToken(ctx context.Context, tokenHash string) error
}

// JWTServiceInterface defines the methods used by handlers from JWTService
type JWTServiceInterface interface {
	GenerateTokenPair(userID uuid.UUID, email string) (*services.TokenPair, error)
	ValidateRefreshToken(token string) (uuid.UUID, error)
	RefreshExpiry() time.Duration
}

// EmailServiceInterface defines the methods used by handlers from EmailService
type EmailServiceInterface interface {
	SendJoinRequestReceived(to, teamName, requesterName string) error
	SendRequestAccepted(to, teamName string) error
	SendRequestDeclined(to, teamName string) error
}

// HubInterface defines the methods used by handlers from the Hub
type HubInterface interface {
	Register(client *sse.Client)
	Unregister(client *sse.Client)
	SubscribeToTeam(clientID string, teamID uuid.UUID)
	UnsubscribeFromTeam(clientID string, teamID uuid.UUID)
	BroadcastRequestCreated(teamID, requestID, requesterID uuid.UUID)
	BroadcastRequestResolved(teamID, requestID, resolvedBy uuid.UUID, status string)
	BroadcastMemberLeft(teamID, userID uuid.UUID)
	BroadcastTeamDeleted(teamID, eventID uuid.UUID)
}
