package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math/rand"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/matchforge/registration-system/models"
	"github.com/matchforge/registration-system/notifications"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bracketFixture struct {
	svc             *bracketService
	mock            sqlmock.Sqlmock
	matchRepo       *fakeMatchRepo
	participantRepo *fakeParticipantRepo
	tournament      *models.Tournament
	event           *models.SportEvent
}

func newBracketFixture(t *testing.T) *bracketFixture {
	t.Helper()
	ctx := context.Background()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	tournamentRepo := newFakeTournamentRepo()
	sportEventRepo := newFakeSportEventRepo()
	matchRepo := newFakeMatchRepo()
	participantRepo := newFakeParticipantRepo()

	tournament := &models.Tournament{
		Name:                 "Autumn Cup",
		OrganizerID:          testOrganizerID,
		RegistrationDeadline: time.Now().Add(-time.Hour),
		StartDate:            time.Now().Add(time.Hour),
		EndDate:              time.Now().Add(48 * time.Hour),
	}
	require.NoError(t, tournamentRepo.Create(ctx, tournament))

	event := &models.SportEvent{
		TournamentID:   tournament.ID,
		Sport:          "squash",
		PairingMode:    models.PairingIndividual,
		GenderCategory: models.GenderCategoryMen,
		Capacity:       16,
	}
	require.NoError(t, sportEventRepo.Create(ctx, event))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	hub := notifications.NewHub(logger)

	svc := NewBracketService(db, matchRepo, participantRepo, sportEventRepo, tournamentRepo, hub, logger).(*bracketService)
	svc.newRand = func() *rand.Rand { return rand.New(rand.NewSource(42)) }

	return &bracketFixture{
		svc:             svc,
		mock:            mock,
		matchRepo:       matchRepo,
		participantRepo: participantRepo,
		tournament:      tournament,
		event:           event,
	}
}

func (f *bracketFixture) addParticipants(t *testing.T, n int) {
	t.Helper()
	ctx := context.Background()
	for i := 0; i < n; i++ {
		p := &models.Participant{
			TournamentID:  f.tournament.ID,
			SportEventID:  f.event.ID,
			JoinRequestID: 1000 + i,
			UserID:        2000 + i,
			DisplayName:   "Player",
		}
		require.NoError(t, f.participantRepo.Create(ctx, p))
	}
}

func TestBracketService_FormRoundOne(t *testing.T) {
	ctx := context.Background()

	t.Run("odd entry count produces a bye", func(t *testing.T) {
		f := newBracketFixture(t)
		f.addParticipants(t, 5)

		f.mock.ExpectBegin()
		f.mock.ExpectCommit()

		matches, err := f.svc.FormRoundOne(ctx, f.event.ID, testOrganizerID)
		require.NoError(t, err)
		require.Len(t, matches, 3)

		numbers := make([]int, 0, len(matches))
		byes := 0
		for _, m := range matches {
			assert.Equal(t, 1, m.Round)
			numbers = append(numbers, m.MatchNumber)
			if m.IsBye() {
				byes++
				assert.Equal(t, models.MatchStatusCompleted, m.Status)
				require.NotNil(t, m.WinnerID)
				assert.Equal(t, m.Slot1ParticipantID, *m.WinnerID)
			} else {
				assert.Equal(t, models.MatchStatusPending, m.Status)
			}
		}
		assert.Equal(t, 1, byes)
		assert.ElementsMatch(t, []int{1, 2, 3}, numbers, "match numbers are dense and 1-based")

		require.NoError(t, f.mock.ExpectationsWereMet())
	})

	t.Run("forming twice is refused", func(t *testing.T) {
		f := newBracketFixture(t)
		f.addParticipants(t, 4)

		f.mock.ExpectBegin()
		f.mock.ExpectCommit()

		_, err := f.svc.FormRoundOne(ctx, f.event.ID, testOrganizerID)
		require.NoError(t, err)

		_, err = f.svc.FormRoundOne(ctx, f.event.ID, testOrganizerID)
		require.ErrorIs(t, err, ErrBracketExists)
	})

	t.Run("fewer than two entries", func(t *testing.T) {
		f := newBracketFixture(t)
		f.addParticipants(t, 1)

		_, err := f.svc.FormRoundOne(ctx, f.event.ID, testOrganizerID)
		require.ErrorIs(t, err, ErrInsufficientEntries)
	})

	t.Run("only the organizer may form the bracket", func(t *testing.T) {
		f := newBracketFixture(t)
		f.addParticipants(t, 4)

		_, err := f.svc.FormRoundOne(ctx, f.event.ID, testPlayerID)
		require.ErrorIs(t, err, ErrOrganizerOnly)
	})

	t.Run("insert failure rolls the batch back", func(t *testing.T) {
		f := newBracketFixture(t)
		f.addParticipants(t, 4)
		f.matchRepo.createErr = errors.New("constraint violation")

		f.mock.ExpectBegin()
		f.mock.ExpectRollback()

		_, err := f.svc.FormRoundOne(ctx, f.event.ID, testOrganizerID)
		require.Error(t, err)
		require.NoError(t, f.mock.ExpectationsWereMet())

		assert.Empty(t, f.matchRepo.matches, "nothing may persist from a failed batch")
	})

	t.Run("every participant appears exactly once", func(t *testing.T) {
		f := newBracketFixture(t)
		f.addParticipants(t, 6)

		f.mock.ExpectBegin()
		f.mock.ExpectCommit()

		matches, err := f.svc.FormRoundOne(ctx, f.event.ID, testOrganizerID)
		require.NoError(t, err)
		require.Len(t, matches, 3)

		seen := make(map[int]int)
		for _, m := range matches {
			seen[m.Slot1ParticipantID]++
			require.NotNil(t, m.Slot2ParticipantID)
			seen[*m.Slot2ParticipantID]++
			assert.NotEqual(t, m.Slot1ParticipantID, *m.Slot2ParticipantID, "no self-pairing")
		}
		require.Len(t, seen, 6)
		for id, count := range seen {
			assert.Equalf(t, 1, count, "participant %d placed more than once", id)
		}
	})
}

func TestBracketService_GetBracket(t *testing.T) {
	ctx := context.Background()
	f := newBracketFixture(t)
	f.addParticipants(t, 4)

	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	formed, err := f.svc.FormRoundOne(ctx, f.event.ID, testOrganizerID)
	require.NoError(t, err)

	listed, err := f.svc.GetBracket(ctx, f.event.ID)
	require.NoError(t, err)
	assert.Len(t, listed, len(formed))
}
