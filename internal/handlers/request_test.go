package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/andrej/teamup-api/internal/middleware"
	"github.com/andrej/teamup-api/internal/models"
	"github.com/andrej/teamup-api/internal/services"
	"github.com/andrej/teamup-api/pkg/dto"
	"github.com/andrej/teamup-api/tests/testutil"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	driftmw "github.com/m1z23r/drift/pkg/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type requestTestEnv struct {
	requestService *testutil.MockRequestService
	teamService    *testutil.MockTeamService
	userService    *testutil.MockUserService
	emailService   *testutil.MockEmailService
	hub            *testutil.MockHub
	jwtSvc         *services.JWTService
	app            http.Handler
}

func newRequestTestEnv(t *testing.T) *requestTestEnv {
	t.Helper()

	env := &requestTestEnv{
		requestService: new(testutil.MockRequestService),
		teamService:    new(testutil.MockTeamService),
		userService:    new(testutil.MockUserService),
		emailService:   new(testutil.MockEmailService),
		hub:            new(testutil.MockHub),
		jwtSvc:         newTestJWTService(),
	}

	handler := NewRequestHandler(env.requestService, env.teamService, env.userService, env.emailService, env.hub)

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Use(middleware.Auth(env.jwtSvc))
	app.Post("/teams/:id/requests", handler.Create)
	app.Get("/teams/:id/requests", handler.ListForTeam)
	app.Get("/requests/pending", handler.ListPendingForLeader)
	app.Post("/requests/:requestId/accept", handler.Accept)
	app.Post("/requests/:requestId/decline", handler.Decline)
	app.Delete("/requests/:requestId", handler.Cancel)

	env.app = app
	return env
}

func (env *requestTestEnv) do(t *testing.T, method, path string, body any, userID uuid.UUID) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	token := generateTestToken(t, env.jwtSvc, userID, "user@example.com")
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	env.app.ServeHTTP(rec, req)
	return rec
}

func TestRequestHandler_Create_Success(t *testing.T) {
	env := newRequestTestEnv(t)

	userID := uuid.New()
	teamID := uuid.New()
	eventID := uuid.New()
	requestID := uuid.New()
	leaderID := uuid.New()

	request := &models.JoinRequest{
		ID:          requestID,
		TeamID:      teamID,
		EventID:     eventID,
		RequesterID: userID,
		Status:      models.RequestStatusPending,
	}
	team := &models.Team{ID: teamID, EventID: eventID, LeaderID: leaderID, Name: "Night Owls"}
	leader := &models.User{ID: leaderID, Email: "leader@example.com", Name: "Lea"}
	requester := &models.User{ID: userID, Email: "ana@example.com", Name: "Ana"}

	env.requestService.On("Create", mock.Anything, teamID, userID, (*string)(nil)).Return(request, nil)
	env.hub.On("BroadcastRequestCreated", teamID, requestID, userID).Return()
	env.teamService.On("GetByID", mock.Anything, teamID).Return(team, nil).Maybe()
	env.userService.On("GetByID", mock.Anything, leaderID).Return(leader, nil).Maybe()
	env.userService.On("GetByID", mock.Anything, userID).Return(requester, nil).Maybe()
	env.emailService.On("SendJoinRequestReceived", "leader@example.com", "Night Owls", "Ana").Return(nil).Maybe()

	rec := env.do(t, http.MethodPost, "/teams/"+teamID.String()+"/requests", dto.CreateJoinRequestRequest{}, userID)

	assert.Equal(t, http.StatusCreated, rec.Code)

	var response dto.JoinRequestResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, requestID, response.ID)
	assert.Equal(t, models.RequestStatusPending, response.Status)

	env.requestService.AssertExpectations(t)
	env.hub.AssertExpectations(t)
}

func TestRequestHandler_Create_AlreadyPending(t *testing.T) {
	env := newRequestTestEnv(t)

	userID := uuid.New()
	teamID := uuid.New()

	env.requestService.On("Create", mock.Anything, teamID, userID, (*string)(nil)).
		Return(nil, services.ErrAlreadyPending)

	rec := env.do(t, http.MethodPost, "/teams/"+teamID.String()+"/requests", dto.CreateJoinRequestRequest{}, userID)

	assert.Equal(t, http.StatusConflict, rec.Code)

	var response map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, "ALREADY_PENDING", response["code"])

	env.requestService.AssertExpectations(t)
}

func TestRequestHandler_Create_TeamFull(t *testing.T) {
	env := newRequestTestEnv(t)

	userID := uuid.New()
	teamID := uuid.New()

	env.requestService.On("Create", mock.Anything, teamID, userID, (*string)(nil)).
		Return(nil, services.ErrTeamFull)

	rec := env.do(t, http.MethodPost, "/teams/"+teamID.String()+"/requests", dto.CreateJoinRequestRequest{}, userID)

	assert.Equal(t, http.StatusConflict, rec.Code)

	var response map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, "TEAM_FULL", response["code"])
}

func TestRequestHandler_Accept_Success(t *testing.T) {
	env := newRequestTestEnv(t)

	leaderID := uuid.New()
	requestID := uuid.New()
	teamID := uuid.New()
	requesterID := uuid.New()

	resolved := &models.JoinRequest{
		ID:          requestID,
		TeamID:      teamID,
		RequesterID: requesterID,
		Status:      models.RequestStatusAccepted,
	}

	env.requestService.On("Accept", mock.Anything, requestID, leaderID).Return(nil)
	env.requestService.On("GetByID", mock.Anything, requestID).Return(resolved, nil)
	env.hub.On("BroadcastRequestResolved", teamID, requestID, leaderID, models.RequestStatusAccepted).Return()
	env.teamService.On("GetByID", mock.Anything, teamID).Return(&models.Team{ID: teamID, Name: "Night Owls"}, nil).Maybe()
	env.userService.On("GetByID", mock.Anything, requesterID).Return(&models.User{ID: requesterID, Email: "ana@example.com"}, nil).Maybe()
	env.emailService.On("SendRequestAccepted", "ana@example.com", "Night Owls").Return(nil).Maybe()

	rec := env.do(t, http.MethodPost, "/requests/"+requestID.String()+"/accept", nil, leaderID)

	assert.Equal(t, http.StatusOK, rec.Code)
	env.requestService.AssertExpectations(t)
	env.hub.AssertExpectations(t)
}

func TestRequestHandler_Accept_NotLeader(t *testing.T) {
	env := newRequestTestEnv(t)

	userID := uuid.New()
	requestID := uuid.New()

	env.requestService.On("Accept", mock.Anything, requestID, userID).Return(services.ErrNotLeader)

	rec := env.do(t, http.MethodPost, "/requests/"+requestID.String()+"/accept", nil, userID)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	env.requestService.AssertExpectations(t)
}

func TestRequestHandler_Accept_TeamFull(t *testing.T) {
	env := newRequestTestEnv(t)

	leaderID := uuid.New()
	requestID := uuid.New()

	env.requestService.On("Accept", mock.Anything, requestID, leaderID).Return(services.ErrTeamFull)

	rec := env.do(t, http.MethodPost, "/requests/"+requestID.String()+"/accept", nil, leaderID)

	assert.Equal(t, http.StatusConflict, rec.Code)

	var response map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, "TEAM_FULL", response["code"])
}

func TestRequestHandler_Accept_AlreadyResolved(t *testing.T) {
	env := newRequestTestEnv(t)

	leaderID := uuid.New()
	requestID := uuid.New()

	env.requestService.On("Accept", mock.Anything, requestID, leaderID).Return(services.ErrRequestNotPending)

	rec := env.do(t, http.MethodPost, "/requests/"+requestID.String()+"/accept", nil, leaderID)

	assert.Equal(t, http.StatusConflict, rec.Code)

	var response map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, "REQUEST_NOT_PENDING", response["code"])
}

func TestRequestHandler_Decline_Success(t *testing.T) {
	env := newRequestTestEnv(t)

	leaderID := uuid.New()
	requestID := uuid.New()
	teamID := uuid.New()
	requesterID := uuid.New()

	resolved := &models.JoinRequest{
		ID:          requestID,
		TeamID:      teamID,
		RequesterID: requesterID,
		Status:      models.RequestStatusDeclined,
	}

	env.requestService.On("Decline", mock.Anything, requestID, leaderID).Return(nil)
	env.requestService.On("GetByID", mock.Anything, requestID).Return(resolved, nil)
	env.hub.On("BroadcastRequestResolved", teamID, requestID, leaderID, models.RequestStatusDeclined).Return()
	env.teamService.On("GetByID", mock.Anything, teamID).Return(&models.Team{ID: teamID, Name: "Night Owls"}, nil).Maybe()
	env.userService.On("GetByID", mock.Anything, requesterID).Return(&models.User{ID: requesterID, Email: "ana@example.com"}, nil).Maybe()
	env.emailService.On("SendRequestDeclined", "ana@example.com", "Night Owls").Return(nil).Maybe()

	rec := env.do(t, http.MethodPost, "/requests/"+requestID.String()+"/decline", nil, leaderID)

	assert.Equal(t, http.StatusOK, rec.Code)
	env.requestService.AssertExpectations(t)
}

func TestRequestHandler_Cancel_NotOwner(t *testing.T) {
	env := newRequestTestEnv(t)

	userID := uuid.New()
	requestID := uuid.New()

	env.requestService.On("Cancel", mock.Anything, requestID, userID).Return(services.ErrNotRequestOwner)

	rec := env.do(t, http.MethodDelete, "/requests/"+requestID.String(), nil, userID)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	env.requestService.AssertExpectations(t)
}

func TestRequestHandler_ListForTeam_LeaderOnly(t *testing.T) {
	env := newRequestTestEnv(t)

	userID := uuid.New()
	teamID := uuid.New()

	env.teamService.On("IsLeader", mock.Anything, teamID, userID).Return(false, nil)

	rec := env.do(t, http.MethodGet, "/teams/"+teamID.String()+"/requests", nil, userID)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	env.teamService.AssertExpectations(t)
}

func TestRequestHandler_ListPendingForLeader(t *testing.T) {
	env := newRequestTestEnv(t)

	leaderID := uuid.New()
	requests := []models.JoinRequest{
		{ID: uuid.New(), TeamID: uuid.New(), Status: models.RequestStatusPending},
		{ID: uuid.New(), TeamID: uuid.New(), Status: models.RequestStatusPending},
	}

	env.requestService.On("GetPendingForLeader", mock.Anything, leaderID).Return(requests, nil)

	rec := env.do(t, http.MethodGet, "/requests/pending", nil, leaderID)

	assert.Equal(t, http.StatusOK, rec.Code)

	var response []dto.JoinRequestResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Len(t, response, 2)

	env.requestService.AssertExpectations(t)
}
