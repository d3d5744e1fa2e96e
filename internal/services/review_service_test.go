package services

import (
	"testing"
	"time"

	"travelbuddy_backend/internal/models"
	"travelbuddy_backend/internal/services/dto"
	"travelbuddy_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reviewFixture struct {
	service ReviewService
	reviews *fakeReviewRepo
	plans   *fakePlanRepo
	users   *fakeUserRepo
	host    *models.User
	guest   *models.User
}

func newReviewFixture(t *testing.T) *reviewFixture {
	t.Helper()

	users := newFakeUserRepo()
	host := users.add(&models.User{Email: "host@example.com", FullName: "Host", Role: models.UserRoleUser})
	guest := users.add(&models.User{Email: "guest@example.com", FullName: "Guest", Role: models.UserRoleUser})

	plans := newFakePlanRepo()
	reviews := newFakeReviewRepo()
	service := NewReviewService(reviews, plans, users)
	return &reviewFixture{service: service, reviews: reviews, plans: plans, users: users, host: host, guest: guest}
}

// finishedTrip creates a plan that ended in the past with the guest as an
// accepted participant.
func (f *reviewFixture) finishedTrip(t *testing.T) *models.TravelPlan {
	t.Helper()
	plan := &models.TravelPlan{
		Title:       "Sundarbans boat trip",
		Destination: "Sundarbans",
		StartDate:   time.Now().AddDate(0, 0, -14),
		EndDate:     time.Now().AddDate(0, 0, -7),
		TravelType:  models.TravelTypeGroup,
		Visibility:  models.VisibilityPublic,
		HostID:      f.host.ID,
	}
	require.NoError(t, f.plans.Create(plan))
	require.NoError(t, f.plans.CreateParticipant(&models.TravelPlanParticipant{
		TravelPlanID: plan.ID,
		UserID:       f.guest.ID,
		Status:       models.ParticipantStatusAccepted,
		RequestedAt:  time.Now().AddDate(0, 0, -20),
	}))
	return plan
}

func TestCreatePlanReview(t *testing.T) {
	t.Parallel()

	t.Run("accepted participant reviews the host after the trip", func(t *testing.T) {
		t.Parallel()
		f := newReviewFixture(t)
		plan := f.finishedTrip(t)

		resp, err := f.service.CreatePlanReview(f.guest.ID, plan.ID, &dto.CreatePlanReviewRequest{
			Rating:  5,
			Comment: "Great host, well organized trip",
		})
		require.NoError(t, err)
		assert.Equal(t, f.host.ID, resp.TargetID)
		assert.Equal(t, f.guest.ID, resp.AuthorID)
		assert.Equal(t, 5, resp.Rating)
		require.NotNil(t, resp.TravelPlanID)
		assert.Equal(t, plan.ID, *resp.TravelPlanID)
	})

	t.Run("trip still running cannot be reviewed", func(t *testing.T) {
		t.Parallel()
		f := newReviewFixture(t)
		plan := &models.TravelPlan{
			Title:       "Ongoing trip",
			Destination: "Sylhet",
			StartDate:   time.Now().AddDate(0, 0, -2),
			EndDate:     time.Now().AddDate(0, 0, 2),
			TravelType:  models.TravelTypeSolo,
			Visibility:  models.VisibilityPublic,
			HostID:      f.host.ID,
		}
		require.NoError(t, f.plans.Create(plan))

		_, err := f.service.CreatePlanReview(f.guest.ID, plan.ID, &dto.CreatePlanReviewRequest{Rating: 4})
		assert.ErrorIs(t, err, apperrors.ErrTripNotFinished)
	})

	t.Run("pending participant cannot review", func(t *testing.T) {
		t.Parallel()
		f := newReviewFixture(t)
		plan := f.finishedTrip(t)

		outsider := f.users.add(&models.User{Email: "late@example.com", FullName: "Late", Role: models.UserRoleUser})
		require.NoError(t, f.plans.CreateParticipant(&models.TravelPlanParticipant{
			TravelPlanID: plan.ID,
			UserID:       outsider.ID,
			Status:       models.ParticipantStatusPending,
			RequestedAt:  time.Now(),
		}))

		_, err := f.service.CreatePlanReview(outsider.ID, plan.ID, &dto.CreatePlanReviewRequest{Rating: 3})
		assert.ErrorIs(t, err, apperrors.ErrNotAcceptedParticipant)
	})

	t.Run("second review of the same trip is rejected", func(t *testing.T) {
		t.Parallel()
		f := newReviewFixture(t)
		plan := f.finishedTrip(t)

		_, err := f.service.CreatePlanReview(f.guest.ID, plan.ID, &dto.CreatePlanReviewRequest{Rating: 5})
		require.NoError(t, err)

		_, err = f.service.CreatePlanReview(f.guest.ID, plan.ID, &dto.CreatePlanReviewRequest{Rating: 1})
		assert.ErrorIs(t, err, apperrors.ErrAlreadyReviewed)
	})

	t.Run("unknown plan is rejected", func(t *testing.T) {
		t.Parallel()
		f := newReviewFixture(t)

		_, err := f.service.CreatePlanReview(f.guest.ID, "no-such-plan", &dto.CreatePlanReviewRequest{Rating: 5})
		assert.ErrorIs(t, err, apperrors.ErrUnknownPlan)
	})
}

func TestCreateUserReview(t *testing.T) {
	t.Parallel()

	t.Run("self review is rejected", func(t *testing.T) {
		t.Parallel()
		f := newReviewFixture(t)

		_, err := f.service.CreateUserReview(f.guest.ID, &dto.CreateReviewRequest{
			TargetID: f.guest.ID,
			Rating:   5,
		})
		assert.ErrorIs(t, err, apperrors.ErrSelfReviewNotAllowed)
	})

	t.Run("unknown target is rejected", func(t *testing.T) {
		t.Parallel()
		f := newReviewFixture(t)

		_, err := f.service.CreateUserReview(f.guest.ID, &dto.CreateReviewRequest{
			TargetID: "no-such-user",
			Rating:   4,
		})
		require.Error(t, err)
	})

	t.Run("review of another user succeeds", func(t *testing.T) {
		t.Parallel()
		f := newReviewFixture(t)

		resp, err := f.service.CreateUserReview(f.guest.ID, &dto.CreateReviewRequest{
			TargetID: f.host.ID,
			Rating:   4,
			Comment:  "Friendly travel buddy",
		})
		require.NoError(t, err)
		assert.Equal(t, f.host.ID, resp.TargetID)
		assert.Nil(t, resp.TravelPlanID)
	})
}

func TestGetUserReviews(t *testing.T) {
	t.Parallel()

	f := newReviewFixture(t)
	plan := f.finishedTrip(t)

	_, err := f.service.CreatePlanReview(f.guest.ID, plan.ID, &dto.CreatePlanReviewRequest{Rating: 5})
	require.NoError(t, err)

	other := f.users.add(&models.User{Email: "third@example.com", FullName: "Third", Role: models.UserRoleUser})
	_, err = f.service.CreateUserReview(other.ID, &dto.CreateReviewRequest{TargetID: f.host.ID, Rating: 3})
	require.NoError(t, err)

	resp, err := f.service.GetUserReviews(f.host.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.TotalCount)
	assert.InDelta(t, 4.0, resp.AverageRating, 0.001)
	assert.Len(t, resp.Reviews, 2)
}

func TestUpdateAndDeleteReview(t *testing.T) {
	t.Parallel()

	t.Run("author can update own review", func(t *testing.T) {
		t.Parallel()
		f := newReviewFixture(t)
		plan := f.finishedTrip(t)

		created, err := f.service.CreatePlanReview(f.guest.ID, plan.ID, &dto.CreatePlanReviewRequest{Rating: 2, Comment: "meh"})
		require.NoError(t, err)

		rating := 4
		resp, err := f.service.UpdateReview(f.guest.ID, created.ID, &dto.UpdateReviewRequest{Rating: &rating})
		require.NoError(t, err)
		assert.Equal(t, 4, resp.Rating)
	})

	t.Run("another user cannot update the review", func(t *testing.T) {
		t.Parallel()
		f := newReviewFixture(t)
		plan := f.finishedTrip(t)

		created, err := f.service.CreatePlanReview(f.guest.ID, plan.ID, &dto.CreatePlanReviewRequest{Rating: 2})
		require.NoError(t, err)

		rating := 5
		_, err = f.service.UpdateReview(f.host.ID, created.ID, &dto.UpdateReviewRequest{Rating: &rating})
		require.Error(t, err)
	})

	t.Run("admin can delete any review", func(t *testing.T) {
		t.Parallel()
		f := newReviewFixture(t)
		plan := f.finishedTrip(t)

		created, err := f.service.CreatePlanReview(f.guest.ID, plan.ID, &dto.CreatePlanReviewRequest{Rating: 1})
		require.NoError(t, err)

		require.NoError(t, f.service.DeleteReview(f.host.ID, true, created.ID))
		_, err = f.reviews.FindByID(created.ID)
		assert.Error(t, err)
	})
}
