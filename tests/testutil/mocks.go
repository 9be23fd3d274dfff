package testutil

import (
	"context"
	"time"

	"github.com/andrej/teamup-api/internal/models"
	"github.com/andrej/teamup-api/internal/services"
	"github.com/andrej/teamup-api/internal/sse"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockUserService mocks the UserService
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Register(ctx context.Context, email, name, password string) (*models.User, error) {
	args := m.Called(ctx, email, name, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) Update(ctx context.Context, id uuid.UUID, name string) (*models.User, error) {
	args := m.Called(ctx, id, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

// MockEventService mocks the EventService
type MockEventService struct {
	mock.Mock
}

func (m *MockEventService) Create(ctx context.Context, name, description string, teamCapacity *int, startsAt, endsAt *time.Time) (*models.Event, error) {
	args := m.Called(ctx, name, description, teamCapacity, startsAt, endsAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Event), args.Error(1)
}

func (m *MockEventService) GetByID(ctx context.Context, eventID uuid.UUID) (*models.Event, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Event), args.Error(1)
}

func (m *MockEventService) List(ctx context.Context) ([]models.Event, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Event), args.Error(1)
}

// MockTeamService mocks the TeamService
type MockTeamService struct {
	mock.Mock
}

func (m *MockTeamService) Create(ctx context.Context, eventID, leaderID uuid.UUID, name, bio string, rolesRequired []string) (*models.Team, error) {
	args := m.Called(ctx, eventID, leaderID, name, bio, rolesRequired)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Team), args.Error(1)
}

func (m *MockTeamService) GetByID(ctx context.Context, teamID uuid.UUID) (*models.Team, error) {
	args := m.Called(ctx, teamID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Team), args.Error(1)
}

func (m *MockTeamService) GetByEvent(ctx context.Context, eventID uuid.UUID) ([]models.Team, error) {
	args := m.Called(ctx, eventID)
	return args.Get(0).([]models.Team), args.Error(1)
}

func (m *MockTeamService) GetUserTeamForEvent(ctx context.Context, userID, eventID uuid.UUID) (*models.Team, error) {
	args := m.Called(ctx, userID, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Team), args.Error(1)
}

func (m *MockTeamService) Update(ctx context.Context, teamID uuid.UUID, name, bio string, rolesRequired []string) (*models.Team, error) {
	args := m.Called(ctx, teamID, name, bio, rolesRequired)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Team), args.Error(1)
}

func (m *MockTeamService) Delete(ctx context.Context, teamID uuid.UUID) error {
	args := m.Called(ctx, teamID)
	return args.Error(0)
}

func (m *MockTeamService) IsLeader(ctx context.Context, teamID, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, teamID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockTeamService) IsMember(ctx context.Context, teamID, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, teamID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockTeamService) GetMembers(ctx context.Context, teamID uuid.UUID) ([]models.TeamMember, error) {
	args := m.Called(ctx, teamID)
	return args.Get(0).([]models.TeamMember), args.Error(1)
}

func (m *MockTeamService) RemoveMember(ctx context.Context, teamID, userID uuid.UUID) error {
	args := m.Called(ctx, teamID, userID)
	return args.Error(0)
}

// MockRequestService mocks the RequestService
type MockRequestService struct {
	mock.Mock
}

func (m *MockRequestService) Create(ctx context.Context, teamID, requesterID uuid.UUID, preferredRole *string) (*models.JoinRequest, error) {
	args := m.Called(ctx, teamID, requesterID, preferredRole)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.JoinRequest), args.Error(1)
}

func (m *MockRequestService) Accept(ctx context.Context, requestID, deciderID uuid.UUID) error {
	args := m.Called(ctx, requestID, deciderID)
	return args.Error(0)
}

func (m *MockRequestService) Decline(ctx context.Context, requestID, deciderID uuid.UUID) error {
	args := m.Called(ctx, requestID, deciderID)
	return args.Error(0)
}

func (m *MockRequestService) Cancel(ctx context.Context, requestID, requesterID uuid.UUID) error {
	args := m.Called(ctx, requestID, requesterID)
	return args.Error(0)
}

func (m *MockRequestService) GetByID(ctx context.Context, requestID uuid.UUID) (*models.JoinRequest, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.JoinRequest), args.Error(1)
}

func (m *MockRequestService) GetPendingForTeam(ctx context.Context, teamID uuid.UUID) ([]models.JoinRequest, error) {
	args := m.Called(ctx, teamID)
	return args.Get(0).([]models.JoinRequest), args.Error(1)
}

func (m *MockRequestService) GetPendingForLeader(ctx context.Context, leaderID uuid.UUID) ([]models.JoinRequest, error) {
	args := m.Called(ctx, leaderID)
	return args.Get(0).([]models.JoinRequest), args.Error(1)
}

func (m *MockRequestService) GetPendingForUserEvent(ctx context.Context, requesterID, eventID uuid.UUID) (*models.JoinRequest, error) {
	args := m.Called(ctx, requesterID, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.JoinRequest), args.Error(1)
}

// MockTokenService mocks the TokenService
type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) StoreRefreshToken(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error {
	args := m.Called(ctx, userID, tokenHash, expiresAt)
	return args.Error(0)
}

func (m *MockTokenService) ValidateRefreshToken(ctx context.Context, tokenHash string) (uuid.UUID, error) {
	args := m.Called(ctx, tokenHash)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockTokenService) RevokeRefreshToken(ctx context.Context, tokenHash string) error {
	args := m.Called(ctx, tokenHash)
	return args.Error(0)
}

// MockJWTService mocks the JWTService
type MockJWTService struct {
	mock.Mock
}

func (m *MockJWTService) GenerateTokenPair(userID uuid.UUID, email string) (*services.TokenPair, error) {
	args := m.Called(userID, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.TokenPair), args.Error(1)
}

func (m *MockJWTService) ValidateRefreshToken(token string) (uuid.UUID, error) {
	args := m.Called(token)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockJWTService) RefreshExpiry() time.Duration {
	args := m.Called()
	return args.Get(0).(time.Duration)
}

// MockEmailService mocks the EmailService
type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendJoinRequestReceived(to, teamName, requesterName string) error {
	args := m.Called(to, teamName, requesterName)
	return args.Error(0)
}

func (m *MockEmailService) SendRequestAccepted(to, teamName string) error {
	args := m.Called(to, teamName)
	return args.Error(0)
}

func (m *MockEmailService) SendRequestDeclined(to, teamName string) error {
	args := m.Called(to, teamName)
	return args.Error(0)
}

// MockHub mocks the SSE hub
type MockHub struct {
	mock.Mock
}

func (m *MockHub) Register(client *sse.Client) {
	m.Called(client)
}

func (m *MockHub) Unregister(client *sse.Client) {
	m.Called(client)
}

func (m *MockHub) SubscribeToTeam(clientID string, teamID uuid.UUID) {
	m.Called(clientID, teamID)
}

func (m *MockHub) UnsubscribeFromTeam(clientID string, teamID uuid.UUID) {
	m.Called(clientID, teamID)
}

func (m *MockHub) BroadcastRequestCreated(teamID, requestID, requesterID uuid.UUID) {
	m.Called(teamID, requestID, requesterID)
}

func (m *MockHub) BroadcastRequestResolved(teamID, requestID, resolvedBy uuid.UUID, status string) {
	m.Called(teamID, requestID, resolvedBy, status)
}

func (m *MockHub) BroadcastMemberLeft(teamID, userID uuid.UUID) {
	m.Called(teamID, userID)
}

func (m *MockHub) BroadcastTeamDeleted(teamID, eventID uuid.UUID) {
	m.Called(teamID, eventID)
}
