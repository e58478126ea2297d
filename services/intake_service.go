package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/matchforge/registration-system/models"
	"github.com/matchforge/registration-system/repositories"
	"github.com/matchforge/registration-system/storage"
)

// IntakeStep — шаг мастера регистрации. The wizard is linear and resumable;
// nothing is committed to storage until the final step succeeds.
type IntakeStep string

const (
	StepEventSelection IntakeStep = "event_selection"
	StepDetails        IntakeStep = "details"
	StepEvidence       IntakeStep = "evidence"
	StepCompleted      IntakeStep = "completed"
)

const (
	minParticipantAge = 16
	maxParticipantAge = 30
)

// ParticipantDetailsInput carries the step-2 form. Which fields are
// required depends on the chosen event's pairing mode.
type ParticipantDetailsInput struct {
	PlayerName  string        `json:"player_name"`
	Gender      models.Gender `json:"gender"`
	MobileNo    string        `json:"mobile_no"`
	Age         int           `json:"age"`
	Affiliation *string       `json:"affiliation,omitempty"`
	Roles       []string      `json:"roles,omitempty"`

	PartnerName     *string        `json:"partner_name,omitempty"`
	PartnerGender   *models.Gender `json:"partner_gender,omitempty"`
	PartnerMobileNo *string        `json:"partner_mobile_no,omitempty"`

	ExperienceLevel *models.ExperienceLevel `json:"experience_level,omitempty"`
}

// IntakeSession is the in-memory accumulator for one (user, tournament)
// registration attempt. "Back" only moves the cursor; validated data stays.
type IntakeSession struct {
	UserID       int                      `json:"user_id"`
	TournamentID int                      `json:"tournament_id"`
	Step         IntakeStep               `json:"step"`
	Event        *models.SportEvent       `json:"event,omitempty"`
	Details      *ParticipantDetailsInput `json:"details,omitempty"`
	TeamPhotoURL *string                  `json:"team_photo_url,omitempty"`
	StartedAt    time.Time                `json:"started_at"`
}

// IntakeOutcome is returned by the steps that can finish the flow: for
// zero-fee events SubmitDetails submits directly and Request is set.
type IntakeOutcome struct {
	Session *IntakeSession      `json:"session"`
	Request *models.JoinRequest `json:"request,omitempty"`
}

// PaymentInfo is shown on the evidence step: the organizer's QR code and
// the fee owed.
type PaymentInfo struct {
	QRCodeURL string `json:"qr_code_url"`
	EntryFee  int    `json:"entry_fee"`
}

type IntakeService interface {
	Start(ctx context.Context, userID, tournamentID int) (*IntakeSession, error)
	Session(userID, tournamentID int) (*IntakeSession, error)
	SelectEvent(ctx context.Context, userID, tournamentID, sportEventID int) (*IntakeSession, error)
	SubmitDetails(ctx context.Context, userID, tournamentID int, details ParticipantDetailsInput) (*IntakeOutcome, error)
	AttachTeamPhoto(ctx context.Context, userID, tournamentID int, contentType string, size int64, reader io.Reader) (*IntakeSession, error)
	PaymentInfo(ctx context.Context, userID, tournamentID int) (*PaymentInfo, error)
	SubmitEvidence(ctx context.Context, userID, tournamentID int, contentType string, size int64, reader io.Reader) (*models.JoinRequest, error)
	Back(userID, tournamentID int) (*IntakeSession, error)
}

type intakeService struct {
	tournamentRepo repositories.TournamentRepository
	sportEventRepo repositories.SportEventRepository
	joinRequests   JoinRequestService
	uploader       storage.FileUploader
	logger         *slog.Logger

	mu       sync.RWMutex
	sessions map[string]*IntakeSession
}

func NewIntakeService(
	tournamentRepo repositories.TournamentRepository,
	sportEventRepo repositories.SportEventRepository,
	joinRequests JoinRequestService,
	uploader storage.FileUploader,
	logger *slog.Logger,
) IntakeService {
	return &intakeService{
		tournamentRepo: tournamentRepo,
		sportEventRepo: sportEventRepo,
		joinRequests:   joinRequests,
		uploader:       uploader,
		logger:         logger,
		sessions:       make(map[string]*IntakeSession),
	}
}

func sessionKey(userID, tournamentID int) string {
	return fmt.Sprintf("%d:%d", userID, tournamentID)
}

func (s *intakeService) Start(ctx context.Context, userID, tournamentID int) (*IntakeSession, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to load tournament %d: %w", tournamentID, err)
	}
	if time.Now().After(tournament.RegistrationDeadline) {
		return nil, ErrRegistrationClosed
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := sessionKey(userID, tournamentID)
	if existing, ok := s.sessions[key]; ok && existing.Step != StepCompleted {
		return existing, nil
	}

	session := &IntakeSession{
		UserID:       userID,
		TournamentID: tournamentID,
		Step:         StepEventSelection,
		StartedAt:    time.Now(),
	}
	s.sessions[key] = session
	return session, nil
}

func (s *intakeService) Session(userID, tournamentID int) (*IntakeSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[sessionKey(userID, tournamentID)]
	if !ok {
		return nil, ErrIntakeSessionMissing
	}
	return session, nil
}

func (s *intakeService) SelectEvent(ctx context.Context, userID, tournamentID, sportEventID int) (*IntakeSession, error) {
	session, err := s.Session(userID, tournamentID)
	if err != nil {
		return nil, err
	}
	if session.Step != StepEventSelection {
		return nil, ErrIntakeStepOrder
	}

	event, err := s.sportEventRepo.GetByID(ctx, sportEventID)
	if err != nil {
		if errors.Is(err, repositories.ErrSportEventNotFound) {
			return nil, ErrSportEventNotFound
		}
		return nil, fmt.Errorf("failed to load sport event %d: %w", sportEventID, err)
	}
	if event.TournamentID != tournamentID {
		return nil, ErrSportEventNotFound
	}

	s.mu.Lock()
	session.Event = event
	session.Step = StepDetails
	s.mu.Unlock()
	return session, nil
}

func (s *intakeService) SubmitDetails(ctx context.Context, userID, tournamentID int, details ParticipantDetailsInput) (*IntakeOutcome, error) {
	session, err := s.Session(userID, tournamentID)
	if err != nil {
		return nil, err
	}
	if session.Step != StepDetails || session.Event == nil {
		return nil, ErrIntakeStepOrder
	}

	if err := s.validateDetails(session, &details); err != nil {
		return nil, err
	}

	s.mu.Lock()
	session.Details = &details
	s.mu.Unlock()

	// Paid events continue to the evidence step; free events submit now.
	if session.Event.EntryFee > 0 {
		s.mu.Lock()
		session.Step = StepEvidence
		s.mu.Unlock()
		return &IntakeOutcome{Session: session}, nil
	}

	request, err := s.joinRequests.Submit(ctx, s.buildPayload(session, nil))
	if err != nil {
		return nil, err
	}
	s.complete(userID, tournamentID, session)
	return &IntakeOutcome{Session: session, Request: request}, nil
}

func (s *intakeService) AttachTeamPhoto(ctx context.Context, userID, tournamentID int, contentType string, size int64, reader io.Reader) (*IntakeSession, error) {
	session, err := s.Session(userID, tournamentID)
	if err != nil {
		return nil, err
	}
	if session.Step != StepDetails || session.Event == nil {
		return nil, ErrIntakeStepOrder
	}
	if session.Event.PairingMode != models.PairingTeam {
		return nil, fmt.Errorf("%w: photo uploads only apply to team events", ErrValidationFailed)
	}

	key := storage.ObjectKey("team-photos", userID)
	result, err := s.uploader.Upload(ctx, key, contentType, size, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to upload team photo: %w", err)
	}

	s.mu.Lock()
	session.TeamPhotoURL = &result.Location
	s.mu.Unlock()
	return session, nil
}

func (s *intakeService) PaymentInfo(ctx context.Context, userID, tournamentID int) (*PaymentInfo, error) {
	session, err := s.Session(userID, tournamentID)
	if err != nil {
		return nil, err
	}
	if session.Step != StepEvidence || session.Event == nil {
		return nil, ErrIntakeStepOrder
	}

	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to load tournament %d: %w", tournamentID, err)
	}

	// The organizer's most recently uploaded QR code is the one shown.
	qrKey, err := s.uploader.ListLatest(ctx, storage.OwnerPrefix("qr-codes", tournament.OrganizerID))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve organizer QR code: %w", err)
	}
	if qrKey == "" {
		return nil, fmt.Errorf("%w: organizer has not uploaded a payment QR code", ErrNotFound)
	}

	return &PaymentInfo{
		QRCodeURL: s.uploader.GetPublicURL(qrKey),
		EntryFee:  session.Event.EntryFee,
	}, nil
}

func (s *intakeService) SubmitEvidence(ctx context.Context, userID, tournamentID int, contentType string, size int64, reader io.Reader) (*models.JoinRequest, error) {
	session, err := s.Session(userID, tournamentID)
	if err != nil {
		return nil, err
	}
	if session.Step != StepEvidence || session.Event == nil || session.Details == nil {
		return nil, ErrIntakeStepOrder
	}

	key := storage.ObjectKey("payment-proofs", userID)
	uploaded, err := s.uploader.Upload(ctx, key, contentType, size, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to upload payment proof: %w", err)
	}

	request, err := s.joinRequests.Submit(ctx, s.buildPayload(session, uploaded))
	if err != nil {
		// Two-phase action with explicit compensation: the blob store and
		// the request store share no transaction boundary, so a failed
		// submit orphans the upload and we delete it best-effort.
		if delErr := s.uploader.Delete(ctx, uploaded.Key); delErr != nil {
			s.logger.Error("failed to delete orphaned payment proof",
				slog.String("key", uploaded.Key), slog.Any("error", delErr))
		}
		return nil, err
	}

	s.complete(userID, tournamentID, session)
	return request, nil
}

func (s *intakeService) Back(userID, tournamentID int) (*IntakeSession, error) {
	session, err := s.Session(userID, tournamentID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	switch session.Step {
	case StepDetails:
		session.Step = StepEventSelection
	case StepEvidence:
		session.Step = StepDetails
	default:
		return nil, ErrIntakeStepOrder
	}
	return session, nil
}

func (s *intakeService) complete(userID, tournamentID int, session *IntakeSession) {
	s.mu.Lock()
	session.Step = StepCompleted
	delete(s.sessions, sessionKey(userID, tournamentID))
	s.mu.Unlock()
}

// validateDetails applies the form variant the event's pairing mode selects.
func (s *intakeService) validateDetails(session *IntakeSession, details *ParticipantDetailsInput) error {
	if err := validatePerson(details.PlayerName, details.Gender, details.MobileNo); err != nil {
		return err
	}

	switch session.Event.PairingMode {
	case models.PairingIndividual:
		if details.Age < minParticipantAge || details.Age > maxParticipantAge {
			return ErrAgeOutOfRange
		}
	case models.PairingPaired:
		if details.PartnerName == nil || details.PartnerMobileNo == nil {
			return ErrPartnerRequired
		}
		// For mixed events the partner's gender is fixed and non-editable.
		if session.Event.GenderCategory == models.GenderCategoryMixed {
			opposite := details.Gender.Opposite()
			details.PartnerGender = &opposite
		}
		if details.PartnerGender == nil {
			return ErrPartnerRequired
		}
		if err := validatePerson(*details.PartnerName, *details.PartnerGender, *details.PartnerMobileNo); err != nil {
			return err
		}
	case models.PairingTeam:
		if details.ExperienceLevel == nil || !details.ExperienceLevel.Valid() {
			return ErrExperienceRequired
		}
		if session.TeamPhotoURL == nil {
			return ErrPhotoRequired
		}
	}
	return nil
}

// buildPayload assembles the accumulated wizard state into the submission
// the state machine consumes.
func (s *intakeService) buildPayload(session *IntakeSession, proof *storage.UploadResult) SubmitJoinRequestInput {
	details := session.Details
	input := SubmitJoinRequestInput{
		TournamentID:    session.TournamentID,
		SportEventID:    session.Event.ID,
		UserID:          session.UserID,
		PlayerName:      details.PlayerName,
		Gender:          details.Gender,
		MobileNo:        details.MobileNo,
		Roles:           details.Roles,
		PartnerName:     details.PartnerName,
		PartnerGender:   details.PartnerGender,
		PartnerMobileNo: details.PartnerMobileNo,
	}

	switch session.Event.PairingMode {
	case models.PairingIndividual:
		input.AdditionalInfo = details.Affiliation
	case models.PairingTeam:
		info := fmt.Sprintf("experience=%s photo=%s", *details.ExperienceLevel, *session.TeamPhotoURL)
		input.AdditionalInfo = &info
	}

	if proof != nil {
		input.PaymentProofURL = &proof.Location
		input.PaymentProofKey = &proof.Key
	}
	return input
}
