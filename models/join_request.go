package models

import "time"

// JoinRequestStatus соответствует ENUM в БД.
type JoinRequestStatus string

const (
	JoinRequestPending  JoinRequestStatus = "pending"
	JoinRequestApproved JoinRequestStatus = "approved"
	JoinRequestRejected JoinRequestStatus = "rejected"
)

func (s JoinRequestStatus) Valid() bool {
	switch s {
	case JoinRequestPending, JoinRequestApproved, JoinRequestRejected:
		return true
	}
	return false
}

// Terminal reports whether no further transition is allowed.
func (s JoinRequestStatus) Terminal() bool {
	return s == JoinRequestApproved || s == JoinRequestRejected
}

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

func (g Gender) Valid() bool {
	return g == GenderMale || g == GenderFemale
}

// Opposite возвращает противоположный пол (для mixed-событий пара обязана
// быть разнополой).
func (g Gender) Opposite() Gender {
	if g == GenderMale {
		return GenderFemale
	}
	return GenderMale
}

type ExperienceLevel string

const (
	ExperienceBeginner     ExperienceLevel = "beginner"
	ExperienceIntermediate ExperienceLevel = "intermediate"
	ExperienceAdvanced     ExperienceLevel = "advanced"
)

func (l ExperienceLevel) Valid() bool {
	switch l {
	case ExperienceBeginner, ExperienceIntermediate, ExperienceAdvanced:
		return true
	}
	return false
}

// JoinRequest — заявка пользователя на участие в дисциплине турнира.
// Exactly one non-rejected request may exist per (user, sport event);
// the partial unique index in the database enforces it.
type JoinRequest struct {
	ID           int    `json:"id" db:"id"`
	TournamentID int    `json:"tournament_id" db:"tournament_id"`
	SportEventID int    `json:"sport_event_id" db:"sport_event_id"`
	UserID       int    `json:"user_id" db:"user_id"`
	Sport        string `json:"sport" db:"sport"`

	PlayerName string   `json:"player_name" db:"player_name"`
	Gender     Gender   `json:"gender" db:"gender"`
	MobileNo   string   `json:"mobile_no" db:"mobile_no"`
	Roles      []string `json:"roles,omitempty" db:"roles"`

	PartnerName     *string `json:"partner_name,omitempty" db:"partner_name"`
	PartnerGender   *Gender `json:"partner_gender,omitempty" db:"partner_gender"`
	PartnerMobileNo *string `json:"partner_mobile_no,omitempty" db:"partner_mobile_no"`

	AdditionalInfo *string `json:"additional_info,omitempty" db:"additional_info"`

	PaymentProofURL *string `json:"payment_proof_url,omitempty" db:"payment_proof_url"`
	PaymentProofKey *string `json:"-" db:"payment_proof_key"`

	Status        JoinRequestStatus `json:"status" db:"status"`
	SubmittedAt   time.Time         `json:"submitted_at" db:"submitted_at"`
	ReviewedAt    *time.Time        `json:"reviewed_at,omitempty" db:"reviewed_at"`
	ReviewerNotes *string           `json:"reviewer_notes,omitempty" db:"reviewer_notes"`
}
