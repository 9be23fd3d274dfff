package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/andrej/teamup-api/internal/models"
	"github.com/andrej/teamup-api/internal/services"
	"github.com/andrej/teamup-api/pkg/dto"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
)

type EventHandler struct {
	eventService EventServiceInterface
}

func NewEventHandler(eventService EventServiceInterface) *EventHandler {
	return &EventHandler{eventService: eventService}
}

func (h *EventHandler) Create(c *drift.Context) {
	var req dto.CreateEventRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.Name == "" {
		c.BadRequest("name is required")
		return
	}
	if req.TeamCapacity != nil && *req.TeamCapacity < 1 {
		c.BadRequest("team_capacity must be at least 1")
		return
	}
	if req.StartsAt != nil && req.EndsAt != nil && req.EndsAt.Before(*req.StartsAt) {
		c.BadRequest("ends_at must be after starts_at")
		return
	}

	event, err := h.eventService.Create(context.Background(), req.Name, req.Description, req.TeamCapacity, req.StartsAt, req.EndsAt)
	if err != nil {
		c.InternalServerError("failed to create event")
		return
	}

	_ = c.JSON(201, eventResponse(event))
}

func (h *EventHandler) List(c *drift.Context) {
	events, err := h.eventService.List(context.Background())
	if err != nil {
		c.InternalServerError("failed to get events")
		return
	}

	response := make([]dto.EventResponse, len(events))
	for i := range events {
		response[i] = eventResponse(&events[i])
	}

	_ = c.JSON(200, response)
}

func (h *EventHandler) Get(c *drift.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid event id")
		return
	}

	event, err := h.eventService.GetByID(context.Background(), eventID)
	if err != nil {
		if errors.Is(err, services.ErrEventNotFound) {
			c.NotFound("event not found")
			return
		}
		c.InternalServerError("failed to get event")
		return
	}

	_ = c.JSON(200, eventResponse(event))
}

func eventResponse(event *models.Event) dto.EventResponse {
	return dto.EventResponse{
		ID:           event.ID,
		Name:         event.Name,
		Description:  event.Description,
		TeamCapacity: event.TeamCapacity,
		StartsAt:     event.StartsAt,
		EndsAt:       event.EndsAt,
		CreatedAt:    event.CreatedAt.Format(time.RFC3339),
	}
}
