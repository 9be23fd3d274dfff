package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/andrej/teamup-api/internal/database"
	"github.com/andrej/teamup-api/internal/models"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Fixtures provides factory methods for creating test data
type Fixtures struct {
	db      *database.DB
	counter int
}

// NewFixtures creates a new fixtures factory
func NewFixtures(db *database.DB) *Fixtures {
	return &Fixtures{db: db}
}

// CreateUser creates a test user with default values
func (f *Fixtures) CreateUser(t *testing.T, opts ...UserOption) *models.User {
	t.Helper()
	f.counter++

	user := &models.User{
		Email: fmt.Sprintf("user%d@example.com", f.counter),
		Name:  fmt.Sprintf("Test User %d", f.counter),
	}

	for _, opt := range opts {
		opt(user)
	}

	if user.PasswordHash == "" {
		hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
		if err != nil {
			t.Fatalf("failed to hash password: %v", err)
		}
		user.PasswordHash = string(hash)
	}

	ctx := context.Background()
	err := f.db.Pool.QueryRow(ctx, `
		INSERT INTO users (email, name, avatar_url, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING id, email, name, avatar_url, password_hash, created_at, updated_at
	`, user.Email, user.Name, user.AvatarURL, user.PasswordHash).Scan(
		&user.ID, &user.Email, &user.Name, &user.AvatarURL,
		&user.PasswordHash, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user
}

// UserOption configures a test user
type UserOption func(*models.User)

// WithEmail sets the user's email
func WithEmail(email string) UserOption {
	return func(u *models.User) {
		u.Email = email
	}
}

// WithName sets the user's name
func WithName(name string) UserOption {
	return func(u *models.User) {
		u.Name = name
	}
}

// CreateEvent creates a test event
func (f *Fixtures) CreateEvent(t *testing.T, opts ...EventOption) *models.Event {
	t.Helper()
	f.counter++

	event := &models.Event{
		Name: fmt.Sprintf("Test Event %d", f.counter),
	}

	for _, opt := range opts {
		opt(event)
	}

	ctx := context.Background()
	err := f.db.Pool.QueryRow(ctx, `
		INSERT INTO events (name, description, team_capacity, starts_at, ends_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, name, description, team_capacity, starts_at, ends_at, created_at, updated_at
	`, event.Name, event.Description, event.TeamCapacity, event.StartsAt, event.EndsAt).Scan(
		&event.ID, &event.Name, &event.Description, &event.TeamCapacity,
		&event.StartsAt, &event.EndsAt, &event.CreatedAt, &event.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("failed to create event: %v", err)
	}

	return event
}

// EventOption configures a test event
type EventOption func(*models.Event)

// WithEventName sets the event's name
func WithEventName(name string) EventOption {
	return func(e *models.Event) {
		e.Name = name
	}
}

// WithCapacity sets the event's per-team capacity
func WithCapacity(n int) EventOption {
	return func(e *models.Event) {
		e.TeamCapacity = &n
	}
}

// CreateTeam creates a test team with the given leader as its first member
func (f *Fixtures) CreateTeam(t *testing.T, event *models.Event, leader *models.User, opts ...TeamOption) *models.Team {
	t.Helper()
	f.counter++

	team := &models.Team{
		Name:     fmt.Sprintf("Test Team %d", f.counter),
		EventID:  event.ID,
		LeaderID: leader.ID,
	}

	for _, opt := range opts {
		opt(team)
	}

	ctx := context.Background()
	tx, err := f.db.Pool.Begin(ctx)
	if err != nil {
		t.Fatalf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO teams (event_id, leader_id, name, bio, roles_required)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, event_id, leader_id, name, bio, roles_required, created_at, updated_at
	`, team.EventID, team.LeaderID, team.Name, team.Bio, team.RolesRequired).Scan(
		&team.ID, &team.EventID, &team.LeaderID, &team.Name, &team.Bio,
		&team.RolesRequired, &team.CreatedAt, &team.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("failed to create team: %v", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO team_members (team_id, event_id, user_id, role)
		VALUES ($1, $2, $3, $4)
	`, team.ID, team.EventID, leader.ID, models.RoleLeader)
	if err != nil {
		t.Fatalf("failed to add leader as member: %v", err)
	}

	if err := tx.Commit(ctx); err != nil {
		t.Fatalf("failed to commit transaction: %v", err)
	}

	team.MemberCount = 1
	return team
}

// TeamOption configures a test team
type TeamOption func(*models.Team)

// WithTeamName sets the team's name
func WithTeamName(name string) TeamOption {
	return func(t *models.Team) {
		t.Name = name
	}
}

// AddTeamMember adds a member to a team
func (f *Fixtures) AddTeamMember(t *testing.T, team *models.Team, user *models.User) {
	t.Helper()
	ctx := context.Background()

	_, err := f.db.Pool.Exec(ctx, `
		INSERT INTO team_members (team_id, event_id, user_id, role)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (team_id, user_id) DO NOTHING
	`, team.ID, team.EventID, user.ID, models.RoleMember)
	if err != nil {
		t.Fatalf("failed to add team member: %v", err)
	}
}

// CreateJoinRequest creates a pending join request
func (f *Fixtures) CreateJoinRequest(t *testing.T, team *models.Team, requester *models.User) *models.JoinRequest {
	t.Helper()
	ctx := context.Background()

	req := &models.JoinRequest{
		TeamID:      team.ID,
		EventID:     team.EventID,
		RequesterID: requester.ID,
	}

	err := f.db.Pool.QueryRow(ctx, `
		INSERT INTO join_requests (team_id, event_id, requester_id, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, team_id, event_id, requester_id, preferred_role, status, resolved_by, created_at, updated_at
	`, req.TeamID, req.EventID, req.RequesterID, models.RequestStatusPending).Scan(
		&req.ID, &req.TeamID, &req.EventID, &req.RequesterID, &req.PreferredRole,
		&req.Status, &req.ResolvedBy, &req.CreatedAt, &req.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("failed to create join request: %v", err)
	}

	return req
}

// CreateRefreshToken creates a test refresh token
func (f *Fixtures) CreateRefreshToken(t *testing.T, userID uuid.UUID, tokenHash string, expiresAt time.Time) {
	t.Helper()
	ctx := context.Background()

	_, err := f.db.Pool.Exec(ctx, `
		INSERT INTO refresh_tokens (user_id, token_hash, expires_at)
		VALUES ($1, $2, $3)
	`, userID, tokenHash, expiresAt)
	if err != nil {
		t.Fatalf("failed to create refresh token: %v", err)
	}
}
