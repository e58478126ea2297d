package models

import "time"

type MatchStatus string

const (
	MatchStatusPending   MatchStatus = "pending"
	MatchStatusCompleted MatchStatus = "completed"
	MatchStatusCancelled MatchStatus = "cancelled"
)

// Match — один матч первого раунда сетки. Slot2ParticipantID == nil
// обозначает bye: матч создаётся сразу завершённым, победитель — единственный
// участник.
type Match struct {
	ID                 int         `json:"id" db:"id"`
	TournamentID       int         `json:"tournament_id" db:"tournament_id"`
	SportEventID       int         `json:"sport_event_id" db:"sport_event_id"`
	Round              int         `json:"round" db:"round"`
	MatchNumber        int         `json:"match_number" db:"match_number"`
	Slot1ParticipantID int         `json:"slot1_participant_id" db:"slot1_participant_id"`
	Slot2ParticipantID *int        `json:"slot2_participant_id,omitempty" db:"slot2_participant_id"`
	ScheduledAt        time.Time   `json:"scheduled_at" db:"scheduled_at"`
	Status             MatchStatus `json:"status" db:"status"`
	WinnerID           *int        `json:"winner_id,omitempty" db:"winner_id"`
}

func (m *Match) IsBye() bool {
	return m.Slot2ParticipantID == nil
}
