package services

import (
	"context"
	"testing"
	"time"

	"github.com/matchforge/registration-system/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validTournamentInput() CreateTournamentInput {
	return CreateTournamentInput{
		Name:                 "Winter Classic",
		RegistrationDeadline: time.Now().Add(24 * time.Hour),
		StartDate:            time.Now().Add(48 * time.Hour),
		EndDate:              time.Now().Add(72 * time.Hour),
	}
}

func TestTournamentService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		svc := NewTournamentService(newFakeTournamentRepo(), newFakeSportEventRepo())

		tournament, err := svc.Create(ctx, testOrganizerID, validTournamentInput())
		require.NoError(t, err)
		assert.NotZero(t, tournament.ID)
		assert.Equal(t, testOrganizerID, tournament.OrganizerID)
	})

	t.Run("name required", func(t *testing.T) {
		svc := NewTournamentService(newFakeTournamentRepo(), newFakeSportEventRepo())

		input := validTournamentInput()
		input.Name = "   "
		_, err := svc.Create(ctx, testOrganizerID, input)
		require.ErrorIs(t, err, ErrTournamentNameRequired)
	})

	t.Run("dates must be ordered", func(t *testing.T) {
		svc := NewTournamentService(newFakeTournamentRepo(), newFakeSportEventRepo())

		input := validTournamentInput()
		input.RegistrationDeadline = input.StartDate.Add(time.Hour)
		_, err := svc.Create(ctx, testOrganizerID, input)
		require.ErrorIs(t, err, ErrInvalidDateOrder)

		input = validTournamentInput()
		input.EndDate = input.StartDate.Add(-time.Hour)
		_, err = svc.Create(ctx, testOrganizerID, input)
		require.ErrorIs(t, err, ErrInvalidDateOrder)
	})
}

func TestTournamentService_OrganizerGuards(t *testing.T) {
	ctx := context.Background()
	tournamentRepo := newFakeTournamentRepo()
	svc := NewTournamentService(tournamentRepo, newFakeSportEventRepo())

	tournament, err := svc.Create(ctx, testOrganizerID, validTournamentInput())
	require.NoError(t, err)

	t.Run("update by stranger", func(t *testing.T) {
		_, err := svc.Update(ctx, tournament.ID, testPlayerID, validTournamentInput())
		require.ErrorIs(t, err, ErrOrganizerOnly)
	})

	t.Run("delete by stranger", func(t *testing.T) {
		err := svc.Delete(ctx, tournament.ID, testPlayerID)
		require.ErrorIs(t, err, ErrOrganizerOnly)
	})

	t.Run("owner can update", func(t *testing.T) {
		input := validTournamentInput()
		input.Name = "Winter Classic II"
		updated, err := svc.Update(ctx, tournament.ID, testOrganizerID, input)
		require.NoError(t, err)
		assert.Equal(t, "Winter Classic II", updated.Name)
	})
}

func TestTournamentService_GetByIDLoadsEvents(t *testing.T) {
	ctx := context.Background()
	tournamentRepo := newFakeTournamentRepo()
	sportEventRepo := newFakeSportEventRepo()
	svc := NewTournamentService(tournamentRepo, sportEventRepo)

	tournament, err := svc.Create(ctx, testOrganizerID, validTournamentInput())
	require.NoError(t, err)

	event := &models.SportEvent{
		TournamentID:   tournament.ID,
		Sport:          "padel",
		PairingMode:    models.PairingPaired,
		GenderCategory: models.GenderCategoryMixed,
		Capacity:       8,
	}
	require.NoError(t, sportEventRepo.Create(ctx, event))

	loaded, err := svc.GetByID(ctx, tournament.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Events, 1)
	assert.Equal(t, "padel", loaded.Events[0].Sport)

	_, err = svc.GetByID(ctx, 999)
	require.ErrorIs(t, err, ErrTournamentNotFound)
}
