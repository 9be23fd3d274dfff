package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/andrej/teamup-api/internal/database"
	"github.com/andrej/teamup-api/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrRequestNotFound   = errors.New("join request not found")
	ErrRequestNotPending = errors.New("join request has already been resolved")
	ErrAlreadyPending    = errors.New("user already has a pending request for this event")
	ErrNotLeader         = errors.New("only the team leader may respond to requests")
	ErrNotRequestOwner   = errors.New("only the requester may cancel this request")
)

// acceptRetries bounds automatic retries of an Accept that failed on a
// transient transaction conflict (serialization failure or deadlock).
const acceptRetries = 3

// RequestService arbitrates join requests. It is the only writer of
// join_requests rows and the only code path that turns an accepted request
// into a membership, so the capacity and single-membership invariants are
// checked here, inside the same transaction that mutates them.
type RequestService struct {
	db *database.DB
}

func NewRequestService(db *database.DB) *RequestService {
	return &RequestService{db: db}
}

// Create files a pending request. All preconditions are checked with the team
// row locked, so the advisory capacity check and the uniqueness checks see a
// stable member count. The partial unique index on (event_id, requester_id)
// catches the losing side of two concurrent creates.
func (s *RequestService) Create(ctx context.Context, teamID, requesterID uuid.UUID, preferredRole *string) (*models.JoinRequest, error) {
	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var eventID uuid.UUID
	var capacity *int
	err = tx.QueryRow(ctx, `
		SELECT t.event_id, e.team_capacity
		FROM teams t
		JOIN events e ON t.event_id = e.id
		WHERE t.id = $1
		FOR UPDATE OF t
	`, teamID).Scan(&eventID, &capacity)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrTeamNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load team: %w", err)
	}

	var onTeam bool
	err = tx.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM team_members WHERE event_id = $1 AND user_id = $2)
	`, eventID, requesterID).Scan(&onTeam)
	if err != nil {
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}
	if onTeam {
		return nil, ErrAlreadyOnTeam
	}

	var hasPending bool
	err = tx.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM join_requests WHERE event_id = $1 AND requester_id = $2 AND status = $3)
	`, eventID, requesterID, models.RequestStatusPending).Scan(&hasPending)
	if err != nil {
		return nil, fmt.Errorf("failed to check pending requests: %w", err)
	}
	if hasPending {
		return nil, ErrAlreadyPending
	}

	// Advisory only: capacity is re-checked when the leader accepts, but a
	// request against an already-full team is futile and rejected up front.
	if capacity != nil {
		var count int
		err = tx.QueryRow(ctx, `
			SELECT COUNT(*) FROM team_members WHERE team_id = $1
		`, teamID).Scan(&count)
		if err != nil {
			return nil, fmt.Errorf("failed to count members: %w", err)
		}
		if count >= *capacity {
			return nil, ErrTeamFull
		}
	}

	var req models.JoinRequest
	err = tx.QueryRow(ctx, `
		INSERT INTO join_requests (team_id, event_id, requester_id, preferred_role, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, team_id, event_id, requester_id, preferred_role, status, resolved_by, created_at, updated_at
	`, teamID, eventID, requesterID, preferredRole, models.RequestStatusPending).Scan(
		&req.ID, &req.TeamID, &req.EventID, &req.RequesterID, &req.PreferredRole,
		&req.Status, &req.ResolvedBy, &req.CreatedAt, &req.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrAlreadyPending
		}
		return nil, fmt.Errorf("failed to create join request: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &req, nil
}

// Accept resolves a pending request into a membership. Transient transaction
// conflicts are retried a bounded number of times; exhaustion reports the
// team as full so the caller simply tries again.
func (s *RequestService) Accept(ctx context.Context, requestID, deciderID uuid.UUID) error {
	var err error
	for attempt := 0; attempt < acceptRetries; attempt++ {
		err = s.accept(ctx, requestID, deciderID)
		if !isTransientTxError(err) {
			return err
		}
	}
	return ErrTeamFull
}

// accept runs the whole decision in one transaction: the request row and the
// team row are locked, capacity and single-membership are re-validated
// against current state, and only then is the member inserted and the request
// marked accepted. A capacity failure leaves the request pending; a requester
// who joined elsewhere in the meantime gets the request auto-declined.
func (s *RequestService) accept(ctx context.Context, requestID, deciderID uuid.UUID) error {
	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var req models.JoinRequest
	err = tx.QueryRow(ctx, `
		SELECT id, team_id, event_id, requester_id, preferred_role, status
		FROM join_requests WHERE id = $1
		FOR UPDATE
	`, requestID).Scan(
		&req.ID, &req.TeamID, &req.EventID, &req.RequesterID, &req.PreferredRole, &req.Status,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrRequestNotFound
		}
		if isTransientTxError(err) {
			return err
		}
		return fmt.Errorf("failed to load request: %w", err)
	}

	var leaderID uuid.UUID
	var capacity *int
	err = tx.QueryRow(ctx, `
		SELECT t.leader_id, e.team_capacity
		FROM teams t
		JOIN events e ON t.event_id = e.id
		WHERE t.id = $1
		FOR UPDATE OF t
	`, req.TeamID).Scan(&leaderID, &capacity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrTeamNotFound
		}
		if isTransientTxError(err) {
			return err
		}
		return fmt.Errorf("failed to load team: %w", err)
	}

	if leaderID != deciderID {
		return ErrNotLeader
	}
	if req.Status != models.RequestStatusPending {
		return ErrRequestNotPending
	}

	if capacity != nil {
		var count int
		err = tx.QueryRow(ctx, `
			SELECT COUNT(*) FROM team_members WHERE team_id = $1
		`, req.TeamID).Scan(&count)
		if err != nil {
			return fmt.Errorf("failed to count members: %w", err)
		}
		if count >= *capacity {
			// The team filled up since the request was made. The request
			// stays pending; the leader can still decline it explicitly.
			return ErrTeamFull
		}
	}

	var onTeam bool
	err = tx.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM team_members WHERE event_id = $1 AND user_id = $2)
	`, req.EventID, req.RequesterID).Scan(&onTeam)
	if err != nil {
		return fmt.Errorf("failed to check membership: %w", err)
	}
	if onTeam {
		// The requester joined another team while this request sat pending.
		// Close the request out instead of leaving it dangling.
		_, err = tx.Exec(ctx, `
			UPDATE join_requests SET status = $1, resolved_by = $2, updated_at = NOW()
			WHERE id = $3
		`, models.RequestStatusDeclined, deciderID, requestID)
		if err != nil {
			return fmt.Errorf("failed to decline stale request: %w", err)
		}
		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("failed to commit transaction: %w", err)
		}
		return ErrAlreadyOnTeam
	}

	role := models.RoleMember
	if req.PreferredRole != nil && *req.PreferredRole != "" {
		role = *req.PreferredRole
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO team_members (team_id, event_id, user_id, role)
		VALUES ($1, $2, $3, $4)
	`, req.TeamID, req.EventID, req.RequesterID, role)
	if err != nil {
		if isUniqueViolation(err) {
			// Lost a cross-team race after the in-transaction check. The
			// aborted transaction still holds the request row lock, so it
			// must be rolled back before the decline runs on a fresh
			// connection or that update would wait on the lock forever.
			_ = tx.Rollback(ctx)
			_, _ = s.db.Pool.Exec(ctx, `
				UPDATE join_requests SET status = $1, resolved_by = $2, updated_at = NOW()
				WHERE id = $3 AND status = $4
			`, models.RequestStatusDeclined, deciderID, requestID, models.RequestStatusPending)
			return ErrAlreadyOnTeam
		}
		return fmt.Errorf("failed to add member: %w", err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE join_requests SET status = $1, resolved_by = $2, updated_at = NOW()
		WHERE id = $3
	`, models.RequestStatusAccepted, deciderID, requestID)
	if err != nil {
		return fmt.Errorf("failed to update request: %w", err)
	}

	return tx.Commit(ctx)
}

// Decline marks a pending request declined. Terminal requests stay terminal:
// the guarded update reports ErrRequestNotPending on a second decision.
func (s *RequestService) Decline(ctx context.Context, requestID, deciderID uuid.UUID) error {
	var leaderID uuid.UUID
	err := s.db.Pool.QueryRow(ctx, `
		SELECT t.leader_id
		FROM join_requests jr
		JOIN teams t ON jr.team_id = t.id
		WHERE jr.id = $1
	`, requestID).Scan(&leaderID)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrRequestNotFound
	}
	if err != nil {
		return err
	}

	if leaderID != deciderID {
		return ErrNotLeader
	}

	result, err := s.db.Pool.Exec(ctx, `
		UPDATE join_requests SET status = $1, resolved_by = $2, updated_at = NOW()
		WHERE id = $3 AND status = $4
	`, models.RequestStatusDeclined, deciderID, requestID, models.RequestStatusPending)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrRequestNotPending
	}
	return nil
}

// Cancel lets the requester withdraw before a decision, releasing the
// one-pending-request-per-event slot immediately.
func (s *RequestService) Cancel(ctx context.Context, requestID, requesterID uuid.UUID) error {
	var ownerID uuid.UUID
	var status string
	err := s.db.Pool.QueryRow(ctx, `
		SELECT requester_id, status FROM join_requests WHERE id = $1
	`, requestID).Scan(&ownerID, &status)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrRequestNotFound
	}
	if err != nil {
		return err
	}

	if ownerID != requesterID {
		return ErrNotRequestOwner
	}
	if status != models.RequestStatusPending {
		return ErrRequestNotPending
	}

	result, err := s.db.Pool.Exec(ctx, `
		DELETE FROM join_requests WHERE id = $1 AND status = $2
	`, requestID, models.RequestStatusPending)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrRequestNotPending
	}
	return nil
}

func (s *RequestService) GetByID(ctx context.Context, requestID uuid.UUID) (*models.JoinRequest, error) {
	var req models.JoinRequest
	err := s.db.Pool.QueryRow(ctx, `
		SELECT id, team_id, event_id, requester_id, preferred_role, status, resolved_by, created_at, updated_at
		FROM join_requests WHERE id = $1
	`, requestID).Scan(
		&req.ID, &req.TeamID, &req.EventID, &req.RequesterID, &req.PreferredRole,
		&req.Status, &req.ResolvedBy, &req.CreatedAt, &req.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrRequestNotFound
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// GetPendingForTeam lists a single team's pending requests with requester
// details, for the leader's respond view.
func (s *RequestService) GetPendingForTeam(ctx context.Context, teamID uuid.UUID) ([]models.JoinRequest, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT jr.id, jr.team_id, jr.event_id, jr.requester_id, jr.preferred_role, jr.status, jr.resolved_by, jr.created_at, jr.updated_at,
		       u.id, u.email, u.name, u.avatar_url, u.created_at, u.updated_at
		FROM join_requests jr
		JOIN users u ON jr.requester_id = u.id
		WHERE jr.team_id = $1 AND jr.status = $2
		ORDER BY jr.created_at
	`, teamID, models.RequestStatusPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRequestsWithRequester(rows)
}

// GetPendingForLeader lists pending requests across every team the user
// leads, with team and requester details.
func (s *RequestService) GetPendingForLeader(ctx context.Context, leaderID uuid.UUID) ([]models.JoinRequest, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT jr.id, jr.team_id, jr.event_id, jr.requester_id, jr.preferred_role, jr.status, jr.resolved_by, jr.created_at, jr.updated_at,
		       t.id, t.event_id, t.leader_id, t.name, t.bio, t.roles_required, t.created_at, t.updated_at,
		       u.id, u.email, u.name, u.avatar_url, u.created_at, u.updated_at
		FROM join_requests jr
		JOIN teams t ON jr.team_id = t.id
		JOIN users u ON jr.requester_id = u.id
		WHERE t.leader_id = $1 AND jr.status = $2
		ORDER BY jr.created_at
	`, leaderID, models.RequestStatusPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []models.JoinRequest
	for rows.Next() {
		var req models.JoinRequest
		var team models.Team
		var requester models.User
		if err := rows.Scan(
			&req.ID, &req.TeamID, &req.EventID, &req.RequesterID, &req.PreferredRole,
			&req.Status, &req.ResolvedBy, &req.CreatedAt, &req.UpdatedAt,
			&team.ID, &team.EventID, &team.LeaderID, &team.Name, &team.Bio,
			&team.RolesRequired, &team.CreatedAt, &team.UpdatedAt,
			&requester.ID, &requester.Email, &requester.Name, &requester.AvatarURL,
			&requester.CreatedAt, &requester.UpdatedAt,
		); err != nil {
			return nil, err
		}
		req.Team = &team
		req.Requester = &requester
		requests = append(requests, req)
	}
	return requests, nil
}

// GetPendingForUserEvent returns the user's own pending request within an
// event, if any.
func (s *RequestService) GetPendingForUserEvent(ctx context.Context, requesterID, eventID uuid.UUID) (*models.JoinRequest, error) {
	var req models.JoinRequest
	err := s.db.Pool.QueryRow(ctx, `
		SELECT id, team_id, event_id, requester_id, preferred_role, status, resolved_by, created_at, updated_at
		FROM join_requests
		WHERE requester_id = $1 AND event_id = $2 AND status = $3
	`, requesterID, eventID, models.RequestStatusPending).Scan(
		&req.ID, &req.TeamID, &req.EventID, &req.RequesterID, &req.PreferredRole,
		&req.Status, &req.ResolvedBy, &req.CreatedAt, &req.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrRequestNotFound
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func scanRequestsWithRequester(rows interface {
	Next() bool
	Scan(dest ...any) error
}) ([]models.JoinRequest, error) {
	var requests []models.JoinRequest
	for rows.Next() {
		var req models.JoinRequest
		var requester models.User
		if err := rows.Scan(
			&req.ID, &req.TeamID, &req.EventID, &req.RequesterID, &req.PreferredRole,
			&req.Status, &req.ResolvedBy, &req.CreatedAt, &req.UpdatedAt,
			&requester.ID, &requester.Email, &requester.Name, &requester.AvatarURL,
			&requester.CreatedAt, &requester.UpdatedAt,
		); err != nil {
			return nil, err
		}
		req.Requester = &requester
		requests = append(requests, req)
	}
	return requests, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// isTransientTxError reports serialization failures and deadlocks, the two
// conflict classes that are safe to retry with a fresh transaction.
func isTransientTxError(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "40001" || pgErr.Code == "40P01"
}
