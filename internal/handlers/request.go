package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/andrej/teamup-api/internal/middleware"
	"github.com/andrej/teamup-api/internal/models"
	"github.com/andrej/teamup-api/internal/services"
	"github.com/andrej/teamup-api/pkg/dto"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
)

type RequestHandler struct {
	requestService RequestServiceInterface
	teamService    TeamServiceInterface
	userService    UserServiceInterface
	emailService   EmailServiceInterface
	hub            HubInterface
}

func NewRequestHandler(
	requestService RequestServiceInterface,
	teamService TeamServiceInterface,
	userService UserServiceInterface,
	emailService EmailServiceInterface,
	hub HubInterface,
) *RequestHandler {
	return &RequestHandler{
		requestService: requestService,
		teamService:    teamService,
		userService:    userService,
		emailService:   emailService,
		hub:            hub,
	}
}

func (h *RequestHandler) Create(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	teamID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid team id")
		return
	}

	var req dto.CreateJoinRequestRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	request, err := h.requestService.Create(context.Background(), teamID, userID, req.PreferredRole)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTeamNotFound):
			c.NotFound("team not found")
		case errors.Is(err, services.ErrAlreadyOnTeam):
			_ = c.JSON(409, map[string]any{
				"code":    "ALREADY_ON_TEAM",
				"message": "you are already on a team for this event",
			})
		case errors.Is(err, services.ErrAlreadyPending):
			_ = c.JSON(409, map[string]any{
				"code":    "ALREADY_PENDING",
				"message": "you already have a pending request for this event",
			})
		case errors.Is(err, services.ErrTeamFull):
			_ = c.JSON(409, map[string]any{
				"code":    "TEAM_FULL",
				"message": "this team has no open slots",
			})
		default:
			c.InternalServerError("failed to create request")
		}
		return
	}

	h.hub.BroadcastRequestCreated(teamID, request.ID, userID)
	go h.notifyLeader(teamID, userID)

	_ = c.JSON(201, requestResponse(request))
}

func (h *RequestHandler) Accept(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	requestID, err := uuid.Parse(c.Param("requestId"))
	if err != nil {
		c.BadRequest("invalid request id")
		return
	}

	err = h.requestService.Accept(context.Background(), requestID, userID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrRequestNotFound):
			c.NotFound("request not found")
		case errors.Is(err, services.ErrTeamNotFound):
			c.NotFound("team not found")
		case errors.Is(err, services.ErrNotLeader):
			c.Forbidden("only the team leader can accept requests")
		case errors.Is(err, services.ErrRequestNotPending):
			_ = c.JSON(409, map[string]any{
				"code":    "REQUEST_NOT_PENDING",
				"message": "this request has already been resolved",
			})
		case errors.Is(err, services.ErrTeamFull):
			_ = c.JSON(409, map[string]any{
				"code":    "TEAM_FULL",
				"message": "the team is full, the request is still pending",
			})
		case errors.Is(err, services.ErrAlreadyOnTeam):
			_ = c.JSON(409, map[string]any{
				"code":    "ALREADY_ON_TEAM",
				"message": "the requester joined another team, the request was declined",
			})
		default:
			c.InternalServerError("failed to accept request")
		}
		return
	}

	request, err := h.requestService.GetByID(context.Background(), requestID)
	if err == nil {
		h.hub.BroadcastRequestResolved(request.TeamID, request.ID, userID, request.Status)
		go h.notifyRequester(request, true)
	}

	_ = c.JSON(200, map[string]string{"message": "request accepted"})
}

func (h *RequestHandler) Decline(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	requestID, err := uuid.Parse(c.Param("requestId"))
	if err != nil {
		c.BadRequest("invalid request id")
		return
	}

	err = h.requestService.Decline(context.Background(), requestID, userID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrRequestNotFound):
			c.NotFound("request not found")
		case errors.Is(err, services.ErrNotLeader):
			c.Forbidden("only the team leader can decline requests")
		case errors.Is(err, services.ErrRequestNotPending):
			_ = c.JSON(409, map[string]any{
				"code":    "REQUEST_NOT_PENDING",
				"message": "this request has already been resolved",
			})
		default:
			c.InternalServerError("failed to decline request")
		}
		return
	}

	request, err := h.requestService.GetByID(context.Background(), requestID)
	if err == nil {
		h.hub.BroadcastRequestResolved(request.TeamID, request.ID, userID, request.Status)
		go h.notifyRequester(request, false)
	}

	_ = c.JSON(200, map[string]string{"message": "request declined"})
}

func (h *RequestHandler) Cancel(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	requestID, err := uuid.Parse(c.Param("requestId"))
	if err != nil {
		c.BadRequest("invalid request id")
		return
	}

	err = h.requestService.Cancel(context.Background(), requestID, userID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrRequestNotFound):
			c.NotFound("request not found")
		case errors.Is(err, services.ErrNotRequestOwner):
			c.Forbidden("only the requester can cancel this request")
		case errors.Is(err, services.ErrRequestNotPending):
			_ = c.JSON(409, map[string]any{
				"code":    "REQUEST_NOT_PENDING",
				"message": "this request has already been resolved",
			})
		default:
			c.InternalServerError("failed to cancel request")
		}
		return
	}

	_ = c.JSON(200, map[string]string{"message": "request cancelled"})
}

func (h *RequestHandler) ListForTeam(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	teamID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid team id")
		return
	}

	isLeader, err := h.teamService.IsLeader(context.Background(), teamID, userID)
	if err != nil {
		c.NotFound("team not found")
		return
	}
	if !isLeader {
		c.Forbidden("only the leader can view a team's requests")
		return
	}

	requests, err := h.requestService.GetPendingForTeam(context.Background(), teamID)
	if err != nil {
		c.InternalServerError("failed to get requests")
		return
	}

	_ = c.JSON(200, requestResponses(requests))
}

func (h *RequestHandler) ListPendingForLeader(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	requests, err := h.requestService.GetPendingForLeader(context.Background(), userID)
	if err != nil {
		c.InternalServerError("failed to get requests")
		return
	}

	_ = c.JSON(200, requestResponses(requests))
}

func (h *RequestHandler) GetMyRequest(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid event id")
		return
	}

	request, err := h.requestService.GetPendingForUserEvent(context.Background(), userID, eventID)
	if err != nil {
		c.NotFound("no pending request for this event")
		return
	}

	_ = c.JSON(200, requestResponse(request))
}

func (h *RequestHandler) notifyLeader(teamID, requesterID uuid.UUID) {
	ctx := context.Background()

	team, err := h.teamService.GetByID(ctx, teamID)
	if err != nil {
		return
	}
	leader, err := h.userService.GetByID(ctx, team.LeaderID)
	if err != nil {
		return
	}
	requester, err := h.userService.GetByID(ctx, requesterID)
	if err != nil {
		return
	}

	_ = h.emailService.SendJoinRequestReceived(leader.Email, team.Name, requester.Name)
}

func (h *RequestHandler) notifyRequester(request *models.JoinRequest, accepted bool) {
	ctx := context.Background()

	team, err := h.teamService.GetByID(ctx, request.TeamID)
	if err != nil {
		return
	}
	requester, err := h.userService.GetByID(ctx, request.RequesterID)
	if err != nil {
		return
	}

	if accepted {
		_ = h.emailService.SendRequestAccepted(requester.Email, team.Name)
	} else {
		_ = h.emailService.SendRequestDeclined(requester.Email, team.Name)
	}
}

func requestResponse(request *models.JoinRequest) dto.JoinRequestResponse {
	resp := dto.JoinRequestResponse{
		ID:            request.ID,
		TeamID:        request.TeamID,
		EventID:       request.EventID,
		RequesterID:   request.RequesterID,
		PreferredRole: request.PreferredRole,
		Status:        request.Status,
		ResolvedBy:    request.ResolvedBy,
		CreatedAt:     request.CreatedAt.Format(time.RFC3339),
	}
	if request.Team != nil {
		team := teamResponse(request.Team)
		resp.Team = &team
	}
	if request.Requester != nil {
		resp.Requester = &dto.UserResponse{
			ID:        request.Requester.ID,
			Email:     request.Requester.Email,
			Name:      request.Requester.Name,
			AvatarURL: request.Requester.AvatarURL,
		}
	}
	return resp
}

func requestResponses(requests []models.JoinRequest) []dto.JoinRequestResponse {
	response := make([]dto.JoinRequestResponse, len(requests))
	for i := range requests {
		response[i] = requestResponse(&requests[i])
	}
	return response
}
