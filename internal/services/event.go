package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/andrej/teamup-api/internal/database"
	"github.com/andrej/teamup-api/internal/models"
	"github.com/google/uuid"
)

var ErrEventNotFound = errors.New("event not found")

// EventService is the catalog side: events are created once and read by the
// team formation flow. Capacity is never changed from here.
type EventService struct {
	db *database.DB
}

func NewEventService(db *database.DB) *EventService {
	return &EventService{db: db}
}

func (s *EventService) Create(ctx context.Context, name, description string, teamCapacity *int, startsAt, endsAt *time.Time) (*models.Event, error) {
	var event models.Event
	err := s.db.Pool.QueryRow(ctx, `
		INSERT INTO events (name, description, team_capacity, starts_at, ends_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, name, description, team_capacity, starts_at, ends_at, created_at, updated_at
	`, name, description, teamCapacity, startsAt, endsAt).Scan(
		&event.ID, &event.Name, &event.Description, &event.TeamCapacity,
		&event.StartsAt, &event.EndsAt, &event.CreatedAt, &event.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	return &event, nil
}

func (s *EventService) GetByID(ctx context.Context, eventID uuid.UUID) (*models.Event, error) {
	var event models.Event
	err := s.db.Pool.QueryRow(ctx, `
		SELECT id, name, description, team_capacity, starts_at, ends_at, created_at, updated_at
		FROM events WHERE id = $1
	`, eventID).Scan(
		&event.ID, &event.Name, &event.Description, &event.TeamCapacity,
		&event.StartsAt, &event.EndsAt, &event.CreatedAt, &event.UpdatedAt,
	)
	if err != nil {
		return nil, ErrEventNotFound
	}
	return &event, nil
}

func (s *EventService) List(ctx context.Context) ([]models.Event, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT id, name, description, team_capacity, starts_at, ends_at, created_at, updated_at
		FROM events
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		var event models.Event
		if err := rows.Scan(
			&event.ID, &event.Name, &event.Description, &event.TeamCapacity,
			&event.StartsAt, &event.EndsAt, &event.CreatedAt, &event.UpdatedAt,
		); err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, nil
}
