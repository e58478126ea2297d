package services

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/matchforge/registration-system/models"
	"github.com/matchforge/registration-system/notifications"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newReviewFixture(t *testing.T) (ReviewService, *joinRequestFixture) {
	t.Helper()
	f := newJoinRequestFixture(t, 4, 0, models.PairingIndividual, models.GenderCategoryMen)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	hub := notifications.NewHub(logger)

	svc := NewReviewService(f.joinRequestRepo, f.sportEventRepo, f.tournamentRepo, f.svc, hub)
	return svc, f
}

func TestReviewService_List(t *testing.T) {
	ctx := context.Background()
	svc, f := newReviewFixture(t)

	for userID := 201; userID <= 203; userID++ {
		_, err := f.svc.Submit(ctx, f.submission(userID))
		require.NoError(t, err)
	}

	t.Run("organizer sees requests and event counters", func(t *testing.T) {
		list, err := svc.List(ctx, f.tournament.ID, testOrganizerID, nil)
		require.NoError(t, err)
		assert.Len(t, list.Requests, 3)
		require.Len(t, list.Events, 1)
		assert.Equal(t, 0, list.Events[0].RegisteredEntries)
	})

	t.Run("status filter narrows the queue", func(t *testing.T) {
		approved := models.JoinRequestApproved
		list, err := svc.List(ctx, f.tournament.ID, testOrganizerID, &approved)
		require.NoError(t, err)
		assert.Empty(t, list.Requests)
	})

	t.Run("non-organizer is refused", func(t *testing.T) {
		_, err := svc.List(ctx, f.tournament.ID, testPlayerID, nil)
		require.ErrorIs(t, err, ErrOrganizerOnly)
	})
}

func TestReviewService_ActionsRefreshTheList(t *testing.T) {
	ctx := context.Background()
	svc, f := newReviewFixture(t)

	first, err := f.svc.Submit(ctx, f.submission(201))
	require.NoError(t, err)
	second, err := f.svc.Submit(ctx, f.submission(202))
	require.NoError(t, err)

	request, list, err := svc.Approve(ctx, first.ID, testOrganizerID, "welcome")
	require.NoError(t, err)
	assert.Equal(t, models.JoinRequestApproved, request.Status)
	require.NotNil(t, list)
	require.Len(t, list.Events, 1)
	assert.Equal(t, 1, list.Events[0].RegisteredEntries, "the refreshed list reflects the action")

	request, list, err = svc.Reject(ctx, second.ID, testOrganizerID, "roster full")
	require.NoError(t, err)
	assert.Equal(t, models.JoinRequestRejected, request.Status)
	require.NotNil(t, list)

	pending := models.JoinRequestPending
	filtered, err := svc.List(ctx, f.tournament.ID, testOrganizerID, &pending)
	require.NoError(t, err)
	assert.Empty(t, filtered.Requests, "both requests reached a terminal state")
}
