package services

import (
	"testing"
	"time"

	"travelbuddy_backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetDashboard(t *testing.T) {
	t.Parallel()

	users := newFakeUserRepo()
	me := users.add(&models.User{Email: "me@example.com", FullName: "Me", Role: models.UserRoleUser})
	other := users.add(&models.User{Email: "other@example.com", FullName: "Other", Role: models.UserRoleUser})

	plans := newFakePlanRepo()
	reviews := newFakeReviewRepo()
	service := NewDashboardService(plans, reviews)

	// A plan I host, starting in the future.
	hosted := &models.TravelPlan{
		Title:       "Sajek valley ride",
		Destination: "Sajek",
		StartDate:   time.Now().AddDate(0, 1, 0),
		EndDate:     time.Now().AddDate(0, 1, 5),
		TravelType:  models.TravelTypeFriends,
		Visibility:  models.VisibilityPublic,
		HostID:      me.ID,
	}
	require.NoError(t, plans.Create(hosted))

	// Someone else's plan to the same destination shows up as a match.
	match := &models.TravelPlan{
		Title:       "Sajek on a budget",
		Destination: "Sajek",
		StartDate:   time.Now().AddDate(0, 1, 1),
		EndDate:     time.Now().AddDate(0, 1, 4),
		TravelType:  models.TravelTypeGroup,
		Visibility:  models.VisibilityPublic,
		HostID:      other.ID,
	}
	require.NoError(t, plans.Create(match))

	// A finished trip I joined as an accepted participant, not yet reviewed.
	finished := &models.TravelPlan{
		Title:       "Old Dhaka food walk",
		Destination: "Dhaka",
		StartDate:   time.Now().AddDate(0, 0, -10),
		EndDate:     time.Now().AddDate(0, 0, -5),
		TravelType:  models.TravelTypeGroup,
		Visibility:  models.VisibilityPublic,
		HostID:      other.ID,
	}
	require.NoError(t, plans.Create(finished))
	require.NoError(t, plans.CreateParticipant(&models.TravelPlanParticipant{
		TravelPlanID: finished.ID,
		UserID:       me.ID,
		Status:       models.ParticipantStatusAccepted,
		RequestedAt:  time.Now().AddDate(0, 0, -15),
	}))

	resp, err := service.GetDashboard(me.ID)
	require.NoError(t, err)

	require.Len(t, resp.HostedPlans, 1)
	assert.Equal(t, hosted.ID, resp.HostedPlans[0].ID)

	require.Len(t, resp.JoinedPlans, 1)
	assert.Equal(t, finished.ID, resp.JoinedPlans[0].Plan.ID)

	// Only the future hosted plan is upcoming; the finished one is not.
	require.Len(t, resp.UpcomingPlans, 1)
	assert.Equal(t, hosted.ID, resp.UpcomingPlans[0].ID)

	require.Len(t, resp.ReviewableTrips, 1)
	assert.Equal(t, finished.ID, resp.ReviewableTrips[0].Plan.ID)
	assert.Equal(t, other.ID, resp.ReviewableTrips[0].HostID)

	require.Contains(t, resp.MatchesByPlan, hosted.ID)
	require.Len(t, resp.MatchesByPlan[hosted.ID], 1)
	assert.Equal(t, match.ID, resp.MatchesByPlan[hosted.ID][0].ID)

	// Reviewing the host clears the reviewable entry.
	planID := finished.ID
	require.NoError(t, reviews.Create(&models.Review{
		AuthorID:     me.ID,
		TargetID:     other.ID,
		TravelPlanID: &planID,
		Rating:       5,
	}))

	resp, err = service.GetDashboard(me.ID)
	require.NoError(t, err)
	assert.Empty(t, resp.ReviewableTrips)
}
