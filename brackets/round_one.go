package brackets

import (
	"errors"
	"math/rand"
	"time"

	"github.com/matchforge/registration-system/models"
)

var ErrInsufficientEntries = errors.New("not enough entries to form a bracket (minimum 2)")

// Entry is one approved participant (or team) eligible for pairing.
type Entry struct {
	ParticipantID int
	DisplayName   string
}

// RoundOneGenerator pairs approved entries into a randomized round-1
// single-elimination bracket. The shuffle source is injected so tests can
// pin seeds; production callers pass a time-seeded source.
type RoundOneGenerator struct {
	rnd *rand.Rand
}

func NewRoundOneGenerator(rnd *rand.Rand) *RoundOneGenerator {
	return &RoundOneGenerator{rnd: rnd}
}

// Generate shuffles the entries uniformly and pairs them consecutively:
// entries[0] vs entries[1], entries[2] vs entries[3], and so on. An odd
// trailing entry receives a bye: a single-occupant match created already
// completed with the occupant as winner. Match numbers are dense and
// 1-based in pairing order; round is fixed at 1.
func (g *RoundOneGenerator) Generate(tournamentID, sportEventID int, entries []Entry, scheduledAt time.Time) ([]*models.Match, error) {
	if len(entries) < 2 {
		return nil, ErrInsufficientEntries
	}

	shuffled := make([]Entry, len(entries))
	copy(shuffled, entries)
	g.rnd.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	matches := make([]*models.Match, 0, (len(shuffled)+1)/2)
	matchNumber := 0

	for i := 0; i+1 < len(shuffled); i += 2 {
		matchNumber++
		matches = append(matches, &models.Match{
			TournamentID:       tournamentID,
			SportEventID:       sportEventID,
			Round:              1,
			MatchNumber:        matchNumber,
			Slot1ParticipantID: shuffled[i].ParticipantID,
			Slot2ParticipantID: intPtr(shuffled[i+1].ParticipantID),
			ScheduledAt:        scheduledAt,
			Status:             models.MatchStatusPending,
		})
	}

	if len(shuffled)%2 == 1 {
		matchNumber++
		last := shuffled[len(shuffled)-1]
		winnerID := last.ParticipantID
		matches = append(matches, &models.Match{
			TournamentID:       tournamentID,
			SportEventID:       sportEventID,
			Round:              1,
			MatchNumber:        matchNumber,
			Slot1ParticipantID: last.ParticipantID,
			ScheduledAt:        scheduledAt,
			Status:             models.MatchStatusCompleted,
			WinnerID:           &winnerID,
		})
	}

	return matches, nil
}

func intPtr(v int) *int {
	return &v
}
