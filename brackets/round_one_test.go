package brackets

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/matchforge/registration-system/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEntries(n int) []Entry {
	entries := make([]Entry, n)
	for i := range entries {
		entries[i] = Entry{ParticipantID: i + 1, DisplayName: fmt.Sprintf("Player %d", i+1)}
	}
	return entries
}

func TestRoundOneGenerator_Generate(t *testing.T) {
	scheduledAt := time.Date(2026, 9, 12, 10, 0, 0, 0, time.UTC)

	t.Run("fewer than two entries", func(t *testing.T) {
		g := NewRoundOneGenerator(rand.New(rand.NewSource(1)))

		_, err := g.Generate(1, 1, nil, scheduledAt)
		require.ErrorIs(t, err, ErrInsufficientEntries)

		_, err = g.Generate(1, 1, testEntries(1), scheduledAt)
		require.ErrorIs(t, err, ErrInsufficientEntries)
	})

	t.Run("even count pairs everyone", func(t *testing.T) {
		g := NewRoundOneGenerator(rand.New(rand.NewSource(7)))

		matches, err := g.Generate(10, 20, testEntries(4), scheduledAt)
		require.NoError(t, err)
		require.Len(t, matches, 2)

		seen := make(map[int]int)
		for i, m := range matches {
			assert.Equal(t, 10, m.TournamentID)
			assert.Equal(t, 20, m.SportEventID)
			assert.Equal(t, 1, m.Round)
			assert.Equal(t, i+1, m.MatchNumber)
			assert.Equal(t, scheduledAt, m.ScheduledAt)
			assert.Equal(t, models.MatchStatusPending, m.Status)
			assert.Nil(t, m.WinnerID)

			require.NotNil(t, m.Slot2ParticipantID)
			assert.NotEqual(t, m.Slot1ParticipantID, *m.Slot2ParticipantID)
			seen[m.Slot1ParticipantID]++
			seen[*m.Slot2ParticipantID]++
		}

		require.Len(t, seen, 4, "every entry placed")
		for id, count := range seen {
			assert.Equalf(t, 1, count, "entry %d placed more than once", id)
		}
	})

	t.Run("odd count yields a completed bye", func(t *testing.T) {
		g := NewRoundOneGenerator(rand.New(rand.NewSource(3)))

		matches, err := g.Generate(10, 20, testEntries(5), scheduledAt)
		require.NoError(t, err)
		require.Len(t, matches, 3)

		numbers := make([]int, 0, 3)
		byes := 0
		for _, m := range matches {
			numbers = append(numbers, m.MatchNumber)
			if m.Slot2ParticipantID == nil {
				byes++
				assert.Equal(t, models.MatchStatusCompleted, m.Status)
				require.NotNil(t, m.WinnerID)
				assert.Equal(t, m.Slot1ParticipantID, *m.WinnerID)
			}
		}
		assert.Equal(t, 1, byes)
		assert.Equal(t, []int{1, 2, 3}, numbers, "numbers are dense in pairing order")
	})

	t.Run("input slice is not mutated", func(t *testing.T) {
		g := NewRoundOneGenerator(rand.New(rand.NewSource(5)))
		entries := testEntries(6)

		_, err := g.Generate(1, 1, entries, scheduledAt)
		require.NoError(t, err)

		for i, e := range entries {
			assert.Equal(t, i+1, e.ParticipantID)
		}
	})

	t.Run("different seeds produce different orderings", func(t *testing.T) {
		entries := testEntries(8)

		pairings := make(map[string]bool)
		for seed := int64(0); seed < 16; seed++ {
			g := NewRoundOneGenerator(rand.New(rand.NewSource(seed)))
			matches, err := g.Generate(1, 1, entries, scheduledAt)
			require.NoError(t, err)

			key := ""
			for _, m := range matches {
				key += fmt.Sprintf("%d-%d|", m.Slot1ParticipantID, *m.Slot2ParticipantID)
			}
			pairings[key] = true
		}

		assert.Greater(t, len(pairings), 1, "the shuffle must actually vary with the seed")
	})
}
