package models

import "time"

// Tournament представляет турнир. Child entities (sport events, join
// requests, participants, matches) cascade on delete at the database level.
type Tournament struct {
	ID                   int       `json:"id" db:"id"`
	Name                 string    `json:"name" db:"name"`
	Description          *string   `json:"description,omitempty" db:"description"`
	OrganizerID          int       `json:"organizer_id" db:"organizer_id"`
	RegistrationDeadline time.Time `json:"registration_deadline" db:"registration_deadline"`
	StartDate            time.Time `json:"start_date" db:"start_date"`
	EndDate              time.Time `json:"end_date" db:"end_date"`
	Location             *string   `json:"location,omitempty" db:"location"`
	CreatedAt            time.Time `json:"created_at" db:"created_at"`

	// Опциональные связанные сущности (не мапятся напрямую)
	Organizer *User        `json:"organizer,omitempty" db:"-"`
	Events    []SportEvent `json:"events,omitempty" db:"-"`
}
