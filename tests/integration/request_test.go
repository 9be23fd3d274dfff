package integration

import (
	"context"
	"sync"
	"testing"

	"github.com/andrej/teamup-api/internal/models"
	"github.com/andrej/teamup-api/internal/services"
	"github.com/andrej/teamup-api/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestService_Integration_CreateAndAccept(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb := setupTest(t)
	fixtures := testutil.NewFixtures(tdb.DB)
	teamSvc := services.NewTeamService(tdb.DB)
	svc := services.NewRequestService(tdb.DB)
	ctx := context.Background()

	event := fixtures.CreateEvent(t, testutil.WithCapacity(4))
	leader := fixtures.CreateUser(t)
	requester := fixtures.CreateUser(t)
	team := fixtures.CreateTeam(t, event, leader)

	role := "backend"
	request, err := svc.Create(ctx, team.ID, requester.ID, &role)
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusPending, request.Status)

	err = svc.Accept(ctx, request.ID, leader.ID)
	require.NoError(t, err)

	// The requester is now a member with the preferred role
	members, err := teamSvc.GetMembers(ctx, team.ID)
	require.NoError(t, err)
	require.Len(t, members, 2)
	for _, m := range members {
		if m.UserID == requester.ID {
			assert.Equal(t, "backend", m.Role)
		}
	}

	// The request carries the resolution
	resolved, err := svc.GetByID(ctx, request.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusAccepted, resolved.Status)
	require.NotNil(t, resolved.ResolvedBy)
	assert.Equal(t, leader.ID, *resolved.ResolvedBy)
}

func TestRequestService_Integration_Create_DuplicatePending(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb := setupTest(t)
	fixtures := testutil.NewFixtures(tdb.DB)
	svc := services.NewRequestService(tdb.DB)
	ctx := context.Background()

	event := fixtures.CreateEvent(t)
	leader := fixtures.CreateUser(t)
	requester := fixtures.CreateUser(t)
	team := fixtures.CreateTeam(t, event, leader)

	_, err := svc.Create(ctx, team.ID, requester.ID, nil)
	require.NoError(t, err)

	_, err = svc.Create(ctx, team.ID, requester.ID, nil)
	assert.ErrorIs(t, err, services.ErrAlreadyPending)

	// Also blocked for a different team in the same event
	otherLeader := fixtures.CreateUser(t)
	otherTeam := fixtures.CreateTeam(t, event, otherLeader)
	_, err = svc.Create(ctx, otherTeam.ID, requester.ID, nil)
	assert.ErrorIs(t, err, services.ErrAlreadyPending)
}

func TestRequestService_Integration_Create_AlreadyOnTeam(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb := setupTest(t)
	fixtures := testutil.NewFixtures(tdb.DB)
	svc := services.NewRequestService(tdb.DB)
	ctx := context.Background()

	event := fixtures.CreateEvent(t)
	leader := fixtures.CreateUser(t)
	member := fixtures.CreateUser(t)
	team := fixtures.CreateTeam(t, event, leader)
	fixtures.AddTeamMember(t, team, member)

	otherLeader := fixtures.CreateUser(t)
	otherTeam := fixtures.CreateTeam(t, event, otherLeader)

	_, err := svc.Create(ctx, otherTeam.ID, member.ID, nil)
	assert.ErrorIs(t, err, services.ErrAlreadyOnTeam)
}

func TestRequestService_Integration_Create_TeamFull(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb := setupTest(t)
	fixtures := testutil.NewFixtures(tdb.DB)
	svc := services.NewRequestService(tdb.DB)
	ctx := context.Background()

	// Capacity 1 means the leader alone fills the team
	event := fixtures.CreateEvent(t, testutil.WithCapacity(1))
	leader := fixtures.CreateUser(t)
	requester := fixtures.CreateUser(t)
	team := fixtures.CreateTeam(t, event, leader)

	_, err := svc.Create(ctx, team.ID, requester.ID, nil)
	assert.ErrorIs(t, err, services.ErrTeamFull)
}

func TestRequestService_Integration_Accept_TeamFull_RequestStaysPending(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb := setupTest(t)
	fixtures := testutil.NewFixtures(tdb.DB)
	svc := services.NewRequestService(tdb.DB)
	ctx := context.Background()

	event := fixtures.CreateEvent(t, testutil.WithCapacity(2))
	leader := fixtures.CreateUser(t)
	requester1 := fixtures.CreateUser(t)
	requester2 := fixtures.CreateUser(t)
	team := fixtures.CreateTeam(t, event, leader)

	request1 := fixtures.CreateJoinRequest(t, team, requester1)
	request2 := fixtures.CreateJoinRequest(t, team, requester2)

	err := svc.Accept(ctx, request1.ID, leader.ID)
	require.NoError(t, err)

	// The last slot is gone; the second accept fails but leaves the
	// request pending so the leader can retry after someone leaves
	err = svc.Accept(ctx, request2.ID, leader.ID)
	assert.ErrorIs(t, err, services.ErrTeamFull)

	still, err := svc.GetByID(ctx, request2.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusPending, still.Status)
}

func TestRequestService_Integration_Accept_RequesterJoinedElsewhere(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb := setupTest(t)
	fixtures := testutil.NewFixtures(tdb.DB)
	svc := services.NewRequestService(tdb.DB)
	ctx := context.Background()

	event := fixtures.CreateEvent(t)
	leader := fixtures.CreateUser(t)
	requester := fixtures.CreateUser(t)
	team := fixtures.CreateTeam(t, event, leader)

	request := fixtures.CreateJoinRequest(t, team, requester)

	// The requester joins another team before the leader decides
	otherLeader := fixtures.CreateUser(t)
	otherTeam := fixtures.CreateTeam(t, event, otherLeader)
	fixtures.AddTeamMember(t, otherTeam, requester)

	err := svc.Accept(ctx, request.ID, leader.ID)
	assert.ErrorIs(t, err, services.ErrAlreadyOnTeam)

	// The stale request was declined on the way out
	declined, err := svc.GetByID(ctx, request.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusDeclined, declined.Status)
}

func TestRequestService_Integration_ConcurrentAccepts_OneSlot(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb := setupTest(t)
	fixtures := testutil.NewFixtures(tdb.DB)
	teamSvc := services.NewTeamService(tdb.DB)
	svc := services.NewRequestService(tdb.DB)
	ctx := context.Background()

	// One open slot, two pending requests, two concurrent accepts
	event := fixtures.CreateEvent(t, testutil.WithCapacity(2))
	leader := fixtures.CreateUser(t)
	requester1 := fixtures.CreateUser(t)
	requester2 := fixtures.CreateUser(t)
	team := fixtures.CreateTeam(t, event, leader)

	request1 := fixtures.CreateJoinRequest(t, team, requester1)
	request2 := fixtures.CreateJoinRequest(t, team, requester2)

	var wg sync.WaitGroup
	errs := make([]error, 2)

	wg.Add(2)
	go func() {
		defer wg.Done()
		errs[0] = svc.Accept(ctx, request1.ID, leader.ID)
	}()
	go func() {
		defer wg.Done()
		errs[1] = svc.Accept(ctx, request2.ID, leader.ID)
	}()
	wg.Wait()

	// Exactly one accept wins, the other hits the capacity check
	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, services.ErrTeamFull)
		}
	}
	assert.Equal(t, 1, succeeded)

	members, err := teamSvc.GetMembers(ctx, team.ID)
	require.NoError(t, err)
	assert.Len(t, members, 2)
}

func TestRequestService_Integration_Decline(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb := setupTest(t)
	fixtures := testutil.NewFixtures(tdb.DB)
	svc := services.NewRequestService(tdb.DB)
	ctx := context.Background()

	event := fixtures.CreateEvent(t)
	leader := fixtures.CreateUser(t)
	requester := fixtures.CreateUser(t)
	team := fixtures.CreateTeam(t, event, leader)

	request := fixtures.CreateJoinRequest(t, team, requester)

	err := svc.Decline(ctx, request.ID, leader.ID)
	require.NoError(t, err)

	declined, err := svc.GetByID(ctx, request.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusDeclined, declined.Status)

	// Declining again reports the terminal state
	err = svc.Decline(ctx, request.ID, leader.ID)
	assert.ErrorIs(t, err, services.ErrRequestNotPending)

	// A declined request frees the requester to apply again
	_, err = svc.Create(ctx, team.ID, requester.ID, nil)
	assert.NoError(t, err)
}

func TestRequestService_Integration_Cancel(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb := setupTest(t)
	fixtures := testutil.NewFixtures(tdb.DB)
	svc := services.NewRequestService(tdb.DB)
	ctx := context.Background()

	event := fixtures.CreateEvent(t)
	leader := fixtures.CreateUser(t)
	requester := fixtures.CreateUser(t)
	team := fixtures.CreateTeam(t, event, leader)

	request := fixtures.CreateJoinRequest(t, team, requester)

	// Only the requester may cancel
	err := svc.Cancel(ctx, request.ID, leader.ID)
	assert.ErrorIs(t, err, services.ErrNotRequestOwner)

	err = svc.Cancel(ctx, request.ID, requester.ID)
	require.NoError(t, err)

	_, err = svc.GetByID(ctx, request.ID)
	assert.ErrorIs(t, err, services.ErrRequestNotFound)

	// Cancelling frees the pending slot immediately
	_, err = svc.Create(ctx, team.ID, requester.ID, nil)
	assert.NoError(t, err)
}

func TestRequestService_Integration_LeaveAndRequestAgain(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb := setupTest(t)
	fixtures := testutil.NewFixtures(tdb.DB)
	teamSvc := services.NewTeamService(tdb.DB)
	svc := services.NewRequestService(tdb.DB)
	ctx := context.Background()

	event := fixtures.CreateEvent(t, testutil.WithCapacity(2))
	leader := fixtures.CreateUser(t)
	requester := fixtures.CreateUser(t)
	team := fixtures.CreateTeam(t, event, leader)

	request := fixtures.CreateJoinRequest(t, team, requester)
	require.NoError(t, svc.Accept(ctx, request.ID, leader.ID))

	// Leaving opens the slot again
	require.NoError(t, teamSvc.RemoveMember(ctx, team.ID, requester.ID))

	again, err := svc.Create(ctx, team.ID, requester.ID, nil)
	require.NoError(t, err)
	require.NoError(t, svc.Accept(ctx, again.ID, leader.ID))

	isMember, err := teamSvc.IsMember(ctx, team.ID, requester.ID)
	require.NoError(t, err)
	assert.True(t, isMember)
}

func TestRequestService_Integration_GetPendingForLeader(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb := setupTest(t)
	fixtures := testutil.NewFixtures(tdb.DB)
	svc := services.NewRequestService(tdb.DB)
	ctx := context.Background()

	event := fixtures.CreateEvent(t)
	leader := fixtures.CreateUser(t)
	requester1 := fixtures.CreateUser(t)
	requester2 := fixtures.CreateUser(t)
	team := fixtures.CreateTeam(t, event, leader)

	fixtures.CreateJoinRequest(t, team, requester1)
	declined := fixtures.CreateJoinRequest(t, team, requester2)
	require.NoError(t, svc.Decline(ctx, declined.ID, leader.ID))

	pending, err := svc.GetPendingForLeader(ctx, leader.ID)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, requester1.ID, pending[0].RequesterID)
	require.NotNil(t, pending[0].Requester)
	assert.Equal(t, requester1.Email, pending[0].Requester.Email)
}
