package services

import "errors"

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Ресурс не найден (универсальная)
	ErrNotFound = errors.New("requested resource not found")

	// Ошибки валидации и бизнес-правил
	ErrValidationFailed       = errors.New("validation failed")
	ErrPasswordTooShort       = errors.New("password is too short")
	ErrNameTooShort           = errors.New("name must be at least 2 characters")
	ErrInvalidGender          = errors.New("gender must be one of the allowed values")
	ErrInvalidMobileNumber    = errors.New("mobile number must be exactly 10 digits")
	ErrAgeOutOfRange          = errors.New("age must be between 16 and 30")
	ErrPartnerRequired        = errors.New("partner details are required for paired events")
	ErrPhotoRequired          = errors.New("a photo upload is required for team events")
	ErrExperienceRequired     = errors.New("an experience level is required for team events")
	ErrEvidenceRequired       = errors.New("payment proof is required for paid events")
	ErrRegistrationClosed     = errors.New("tournament registration deadline has passed")
	ErrPairingModeImmutable   = errors.New("pairing mode cannot be changed after creation")
	ErrInvalidCapacity        = errors.New("capacity must be positive")
	ErrInvalidDateOrder       = errors.New("registration deadline, start date and end date must be in order")
	ErrTournamentNameRequired = errors.New("tournament name is required")

	// Бизнес-отказы регистрации и сетки
	ErrDuplicateRequest     = errors.New("an active join request already exists for this sport event")
	ErrCapacityExceeded     = errors.New("the sport event has reached its entry ceiling")
	ErrInsufficientEntries  = errors.New("not enough approved entries to form a bracket")
	ErrBracketExists        = errors.New("a round 1 bracket already exists for this sport event")
	ErrRequestNotPending    = errors.New("join request has already been reviewed")
	ErrPartialApproval      = errors.New("request approved but participant record creation failed; retry record creation")
	ErrIntakeSessionMissing = errors.New("no intake session in progress")
	ErrIntakeStepOrder      = errors.New("intake step invoked out of order")

	// Ошибки аутентификации и авторизации
	ErrAuthInvalidCredentials = errors.New("invalid email or password")
	ErrAuthEmailTaken         = errors.New("email is already taken")
	ErrForbiddenOperation     = errors.New("operation not allowed for the current user")
	ErrOrganizerOnly          = errors.New("only the tournament organizer can perform this action")

	// Ошибки, специфичные для сущностей
	ErrUserNotFound        = errors.New("user not found")
	ErrTournamentNotFound  = errors.New("tournament not found")
	ErrSportEventNotFound  = errors.New("sport event not found")
	ErrJoinRequestNotFound = errors.New("join request not found")
	ErrParticipantNotFound = errors.New("participant not found")
)
