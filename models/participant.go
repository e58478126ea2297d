package models

import "time"

// Participant — подтверждённое участие. Created exactly once, as a side
// effect of a join request transitioning to approved.
type Participant struct {
	ID            int       `json:"id" db:"id"`
	TournamentID  int       `json:"tournament_id" db:"tournament_id"`
	SportEventID  int       `json:"sport_event_id" db:"sport_event_id"`
	JoinRequestID int       `json:"join_request_id" db:"join_request_id"`
	UserID        int       `json:"user_id" db:"user_id"`
	DisplayName   string    `json:"display_name" db:"display_name"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}
