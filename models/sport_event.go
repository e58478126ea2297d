package models

import "time"

// PairingMode определяет, чем является одна заявка: одиночный игрок,
// пара или команда. Fixed at event creation.
type PairingMode string

const (
	PairingIndividual PairingMode = "individual"
	PairingPaired     PairingMode = "paired"
	PairingTeam       PairingMode = "team"
)

func (m PairingMode) Valid() bool {
	switch m {
	case PairingIndividual, PairingPaired, PairingTeam:
		return true
	}
	return false
}

type GenderCategory string

const (
	GenderCategoryMen   GenderCategory = "men"
	GenderCategoryWomen GenderCategory = "women"
	GenderCategoryMixed GenderCategory = "mixed"
)

func (c GenderCategory) Valid() bool {
	switch c {
	case GenderCategoryMen, GenderCategoryWomen, GenderCategoryMixed:
		return true
	}
	return false
}

// SportEvent — одна дисциплина внутри турнира (спорт + формат + вместимость).
// Capacity counts approved entries: teams for team/paired modes,
// individual participants otherwise. RegisteredEntries is mutated only
// through the atomic conditional update in the sport event repository.
type SportEvent struct {
	ID                int            `json:"id" db:"id"`
	TournamentID      int            `json:"tournament_id" db:"tournament_id"`
	Sport             string         `json:"sport" db:"sport"`
	PairingMode       PairingMode    `json:"pairing_mode" db:"pairing_mode"`
	GenderCategory    GenderCategory `json:"gender_category" db:"gender_category"`
	EntryFee          int            `json:"entry_fee" db:"entry_fee"` // cents
	Capacity          int            `json:"capacity" db:"capacity"`
	RegisteredEntries int            `json:"registered_entries" db:"registered_entries"`
	CreatedAt         time.Time      `json:"created_at" db:"created_at"`
}

func (e *SportEvent) RemainingSlots() int {
	remaining := e.Capacity - e.RegisteredEntries
	if remaining < 0 {
		return 0
	}
	return remaining
}
