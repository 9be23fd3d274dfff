package handlers

import (
	"context"
	"errors"

	"github.com/andrej/teamup-api/internal/middleware"
	"github.com/andrej/teamup-api/internal/models"
	"github.com/andrej/teamup-api/internal/services"
	"github.com/andrej/teamup-api/pkg/dto"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
)

type TeamHandler struct {
	teamService TeamServiceInterface
	hub         HubInterface
}

func NewTeamHandler(teamService TeamServiceInterface, hub HubInterface) *TeamHandler {
	return &TeamHandler{
		teamService: teamService,
		hub:         hub,
	}
}

func (h *TeamHandler) Create(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	var req dto.CreateTeamRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.EventID == uuid.Nil {
		c.BadRequest("event_id is required")
		return
	}
	if req.Name == "" {
		c.BadRequest("name is required")
		return
	}

	team, err := h.teamService.Create(context.Background(), req.EventID, userID, req.Name, req.Bio, req.RolesRequired)
	if err != nil {
		if errors.Is(err, services.ErrEventNotFound) {
			c.NotFound("event not found")
			return
		}
		if errors.Is(err, services.ErrAlreadyOnTeam) {
			_ = c.JSON(409, map[string]any{
				"code":    "ALREADY_ON_TEAM",
				"message": "you are already on a team for this event",
			})
			return
		}
		c.InternalServerError("failed to create team")
		return
	}

	_ = c.JSON(201, teamResponse(team))
}

func (h *TeamHandler) Get(c *drift.Context) {
	teamID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid team id")
		return
	}

	team, err := h.teamService.GetByID(context.Background(), teamID)
	if err != nil {
		c.NotFound("team not found")
		return
	}

	_ = c.JSON(200, teamResponse(team))
}

func (h *TeamHandler) ListByEvent(c *drift.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid event id")
		return
	}

	teams, err := h.teamService.GetByEvent(context.Background(), eventID)
	if err != nil {
		c.InternalServerError("failed to get teams")
		return
	}

	response := make([]dto.TeamResponse, len(teams))
	for i := range teams {
		response[i] = teamResponse(&teams[i])
	}

	_ = c.JSON(200, response)
}

func (h *TeamHandler) GetMyTeam(c *drift.Context) {
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

	team, err := h.teamService.GetUserTeamForEvent(context.Background(), userID, eventID)
	if err != nil {
		c.NotFound("you are not on a team for this event")
		return
	}

	_ = c.JSON(200, teamResponse(team))
}

func (h *TeamHandler) Update(c *drift.Context) {
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
		c.Forbidden("only the leader can update the team")
		return
	}

	var req dto.UpdateTeamRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.Name == "" {
		c.BadRequest("name is required")
		return
	}

	team, err := h.teamService.Update(context.Background(), teamID, req.Name, req.Bio, req.RolesRequired)
	if err != nil {
		c.InternalServerError("failed to update team")
		return
	}

	_ = c.JSON(200, teamResponse(team))
}

func (h *TeamHandler) Delete(c *drift.Context) {
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

	team, err := h.teamService.GetByID(context.Background(), teamID)
	if err != nil {
		c.NotFound("team not found")
		return
	}
	if team.LeaderID != userID {
		c.Forbidden("only the leader can delete the team")
		return
	}

	if err := h.teamService.Delete(context.Background(), teamID); err != nil {
		c.InternalServerError("failed to delete team")
		return
	}

	h.hub.BroadcastTeamDeleted(teamID, team.EventID)

	_ = c.JSON(200, map[string]string{"message": "team deleted"})
}

func (h *TeamHandler) GetMembers(c *drift.Context) {
	teamID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid team id")
		return
	}

	if _, err := h.teamService.GetByID(context.Background(), teamID); err != nil {
		c.NotFound("team not found")
		return
	}

	members, err := h.teamService.GetMembers(context.Background(), teamID)
	if err != nil {
		c.InternalServerError("failed to get members")
		return
	}

	response := make([]dto.TeamMemberResponse, len(members))
	for i, m := range members {
		response[i] = dto.TeamMemberResponse{
			ID:     m.ID,
			UserID: m.UserID,
			Role:   m.Role,
			User: dto.UserResponse{
				ID:        m.User.ID,
				Email:     m.User.Email,
				Name:      m.User.Name,
				AvatarURL: m.User.AvatarURL,
			},
		}
	}

	_ = c.JSON(200, response)
}

func (h *TeamHandler) RemoveMember(c *drift.Context) {
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

	memberID, err := uuid.Parse(c.Param("memberId"))
	if err != nil {
		c.BadRequest("invalid member id")
		return
	}

	isLeader, err := h.teamService.IsLeader(context.Background(), teamID, userID)
	if err != nil {
		c.NotFound("team not found")
		return
	}
	if !isLeader {
		c.Forbidden("only the leader can remove members")
		return
	}

	if memberID == userID {
		c.BadRequest("leader cannot remove themselves, delete the team instead")
		return
	}

	if err := h.teamService.RemoveMember(context.Background(), teamID, memberID); err != nil {
		if errors.Is(err, services.ErrNotAMember) {
			c.NotFound("member not found")
			return
		}
		if errors.Is(err, services.ErrLeaderCannotLeave) {
			c.BadRequest("cannot remove the team leader")
			return
		}
		c.InternalServerError("failed to remove member")
		return
	}

	h.hub.BroadcastMemberLeft(teamID, memberID)

	_ = c.JSON(200, map[string]string{"message": "member removed"})
}

func (h *TeamHandler) Leave(c *drift.Context) {
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

	if err := h.teamService.RemoveMember(context.Background(), teamID, userID); err != nil {
		if errors.Is(err, services.ErrLeaderCannotLeave) {
			c.BadRequest("leader cannot leave the team, delete it instead")
			return
		}
		if errors.Is(err, services.ErrNotAMember) {
			c.NotFound("team not found or not a member")
			return
		}
		c.InternalServerError("failed to leave team")
		return
	}

	h.hub.BroadcastMemberLeft(teamID, userID)

	_ = c.JSON(200, map[string]string{"message": "left team"})
}

func teamResponse(team *models.Team) dto.TeamResponse {
	return dto.TeamResponse{
		ID:            team.ID,
		EventID:       team.EventID,
		LeaderID:      team.LeaderID,
		Name:          team.Name,
		Bio:           team.Bio,
		RolesRequired: team.RolesRequired,
		MemberCount:   team.MemberCount,
	}
}
