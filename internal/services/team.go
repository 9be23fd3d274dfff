package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/andrej/teamup-api/internal/database"
	"github.com/andrej/teamup-api/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var (
	ErrTeamNotFound      = errors.New("team not found")
	ErrAlreadyOnTeam     = errors.New("user already has a team for this event")
	ErrTeamFull          = errors.New("team is already at capacity")
	ErrNotAMember        = errors.New("user is not a member of this team")
	ErrLeaderCannotLeave = errors.New("leader cannot leave the team, delete it instead")
)

// TeamService owns teams and memberships. Every mutation that could give a
// user a second membership within an event is backed by the
// UNIQUE(event_id, user_id) constraint on team_members.
type TeamService struct {
	db *database.DB
}

func NewTeamService(db *database.DB) *TeamService {
	return &TeamService{db: db}
}

// Create inserts the team and its leader membership in one transaction; the
// leader counts toward capacity from the first moment the team exists.
func (s *TeamService) Create(ctx context.Context, eventID, leaderID uuid.UUID, name, bio string, rolesRequired []string) (*models.Team, error) {
	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var exists bool
	err = tx.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM events WHERE id = $1)
	`, eventID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check event: %w", err)
	}
	if !exists {
		return nil, ErrEventNotFound
	}

	var onTeam bool
	err = tx.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM team_members WHERE event_id = $1 AND user_id = $2)
	`, eventID, leaderID).Scan(&onTeam)
	if err != nil {
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}
	if onTeam {
		return nil, ErrAlreadyOnTeam
	}

	var team models.Team
	err = tx.QueryRow(ctx, `
		INSERT INTO teams (event_id, leader_id, name, bio, roles_required)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, event_id, leader_id, name, bio, roles_required, created_at, updated_at
	`, eventID, leaderID, name, bio, rolesRequired).Scan(
		&team.ID, &team.EventID, &team.LeaderID, &team.Name, &team.Bio,
		&team.RolesRequired, &team.CreatedAt, &team.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create team: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO team_members (team_id, event_id, user_id, role)
		VALUES ($1, $2, $3, $4)
	`, team.ID, eventID, leaderID, models.RoleLeader)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrAlreadyOnTeam
		}
		return nil, fmt.Errorf("failed to add leader as member: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	team.MemberCount = 1
	return &team, nil
}

func (s *TeamService) GetByID(ctx context.Context, teamID uuid.UUID) (*models.Team, error) {
	var team models.Team
	err := s.db.Pool.QueryRow(ctx, `
		SELECT t.id, t.event_id, t.leader_id, t.name, t.bio, t.roles_required, t.created_at, t.updated_at,
		       (SELECT COUNT(*) FROM team_members tm WHERE tm.team_id = t.id)
		FROM teams t WHERE t.id = $1
	`, teamID).Scan(
		&team.ID, &team.EventID, &team.LeaderID, &team.Name, &team.Bio,
		&team.RolesRequired, &team.CreatedAt, &team.UpdatedAt, &team.MemberCount,
	)
	if err != nil {
		return nil, ErrTeamNotFound
	}
	return &team, nil
}

func (s *TeamService) GetByEvent(ctx context.Context, eventID uuid.UUID) ([]models.Team, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT t.id, t.event_id, t.leader_id, t.name, t.bio, t.roles_required, t.created_at, t.updated_at,
		       (SELECT COUNT(*) FROM team_members tm WHERE tm.team_id = t.id)
		FROM teams t
		WHERE t.event_id = $1
		ORDER BY t.created_at DESC
	`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var teams []models.Team
	for rows.Next() {
		var team models.Team
		if err := rows.Scan(
			&team.ID, &team.EventID, &team.LeaderID, &team.Name, &team.Bio,
			&team.RolesRequired, &team.CreatedAt, &team.UpdatedAt, &team.MemberCount,
		); err != nil {
			return nil, err
		}
		teams = append(teams, team)
	}
	return teams, nil
}

// GetUserTeamForEvent resolves the one team (if any) a user belongs to within
// an event, as leader or member.
func (s *TeamService) GetUserTeamForEvent(ctx context.Context, userID, eventID uuid.UUID) (*models.Team, error) {
	var team models.Team
	err := s.db.Pool.QueryRow(ctx, `
		SELECT t.id, t.event_id, t.leader_id, t.name, t.bio, t.roles_required, t.created_at, t.updated_at,
		       (SELECT COUNT(*) FROM team_members m WHERE m.team_id = t.id)
		FROM teams t
		JOIN team_members tm ON tm.team_id = t.id
		WHERE tm.user_id = $1 AND t.event_id = $2
	`, userID, eventID).Scan(
		&team.ID, &team.EventID, &team.LeaderID, &team.Name, &team.Bio,
		&team.RolesRequired, &team.CreatedAt, &team.UpdatedAt, &team.MemberCount,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrTeamNotFound
	}
	if err != nil {
		return nil, err
	}
	return &team, nil
}

func (s *TeamService) Update(ctx context.Context, teamID uuid.UUID, name, bio string, rolesRequired []string) (*models.Team, error) {
	var team models.Team
	err := s.db.Pool.QueryRow(ctx, `
		UPDATE teams SET name = $1, bio = $2, roles_required = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING id, event_id, leader_id, name, bio, roles_required, created_at, updated_at
	`, name, bio, rolesRequired, teamID).Scan(
		&team.ID, &team.EventID, &team.LeaderID, &team.Name, &team.Bio,
		&team.RolesRequired, &team.CreatedAt, &team.UpdatedAt,
	)
	if err != nil {
		return nil, ErrTeamNotFound
	}
	return &team, nil
}

// Delete removes a team and declines its pending join requests in the same
// transaction, so no requester is left blocked on a dead team.
func (s *TeamService) Delete(ctx context.Context, teamID uuid.UUID) error {
	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		UPDATE join_requests SET status = $1, updated_at = NOW()
		WHERE team_id = $2 AND status = $3
	`, models.RequestStatusDeclined, teamID, models.RequestStatusPending)
	if err != nil {
		return fmt.Errorf("failed to decline pending requests: %w", err)
	}

	result, err := tx.Exec(ctx, `DELETE FROM teams WHERE id = $1`, teamID)
	if err != nil {
		return fmt.Errorf("failed to delete team: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrTeamNotFound
	}

	return tx.Commit(ctx)
}

// IsLeader is the single capability gate for leader-only operations.
func (s *TeamService) IsLeader(ctx context.Context, teamID, userID uuid.UUID) (bool, error) {
	var leaderID uuid.UUID
	err := s.db.Pool.QueryRow(ctx, `SELECT leader_id FROM teams WHERE id = $1`, teamID).Scan(&leaderID)
	if err != nil {
		return false, ErrTeamNotFound
	}
	return leaderID == userID, nil
}

func (s *TeamService) IsMember(ctx context.Context, teamID, userID uuid.UUID) (bool, error) {
	var exists bool
	err := s.db.Pool.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM team_members WHERE team_id = $1 AND user_id = $2)
	`, teamID, userID).Scan(&exists)
	return exists, err
}

func (s *TeamService) GetMembers(ctx context.Context, teamID uuid.UUID) ([]models.TeamMember, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT tm.id, tm.team_id, tm.event_id, tm.user_id, tm.role, tm.created_at,
		       u.id, u.email, u.name, u.avatar_url, u.created_at, u.updated_at
		FROM team_members tm
		JOIN users u ON tm.user_id = u.id
		WHERE tm.team_id = $1
		ORDER BY tm.created_at
	`, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []models.TeamMember
	for rows.Next() {
		var member models.TeamMember
		var user models.User
		if err := rows.Scan(
			&member.ID, &member.TeamID, &member.EventID, &member.UserID, &member.Role, &member.CreatedAt,
			&user.ID, &user.Email, &user.Name, &user.AvatarURL, &user.CreatedAt, &user.UpdatedAt,
		); err != nil {
			return nil, err
		}
		member.User = &user
		members = append(members, member)
	}
	return members, nil
}

func (s *TeamService) RemoveMember(ctx context.Context, teamID, userID uuid.UUID) error {
	var role string
	err := s.db.Pool.QueryRow(ctx, `
		SELECT role FROM team_members WHERE team_id = $1 AND user_id = $2
	`, teamID, userID).Scan(&role)
	if err != nil {
		return ErrNotAMember
	}

	if role == models.RoleLeader {
		return ErrLeaderCannotLeave
	}

	_, err = s.db.Pool.Exec(ctx, `
		DELETE FROM team_members WHERE team_id = $1 AND user_id = $2
	`, teamID, userID)
	return err
}
