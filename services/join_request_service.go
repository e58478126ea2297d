package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode"

	"github.com/matchforge/registration-system/models"
	"github.com/matchforge/registration-system/repositories"
)

const mobileNumberLength = 10

// SubmitJoinRequestInput is the payload the intake flow accumulates across
// its steps and hands to Submit.
type SubmitJoinRequestInput struct {
	TournamentID int
	SportEventID int
	UserID       int

	PlayerName string
	Gender     models.Gender
	MobileNo   string
	Roles      []string

	PartnerName     *string
	PartnerGender   *models.Gender
	PartnerMobileNo *string

	AdditionalInfo *string

	PaymentProofURL *string
	PaymentProofKey *string
}

// JoinRequestService владеет жизненным циклом заявки: pending (initial) →
// approved | rejected. Out of a terminal state there is no transition.
type JoinRequestService interface {
	Submit(ctx context.Context, input SubmitJoinRequestInput) (*models.JoinRequest, error)
	Approve(ctx context.Context, requestID, reviewerID int, reviewerNotes string) (*models.JoinRequest, error)
	Reject(ctx context.Context, requestID, reviewerID int, reviewerNotes string) (*models.JoinRequest, error)

	// RetryParticipantRecord re-attempts the participant-record side effect
	// of an approval that failed half-way (ErrPartialApproval). The capacity
	// slot is already held, so no counter mutation happens here.
	RetryParticipantRecord(ctx context.Context, requestID, reviewerID int) (*models.Participant, error)
}

type joinRequestService struct {
	joinRequestRepo repositories.JoinRequestRepository
	sportEventRepo  repositories.SportEventRepository
	tournamentRepo  repositories.TournamentRepository
	participantRepo repositories.ParticipantRepository
	ledger          CapacityLedger
	logger          *slog.Logger
}

func NewJoinRequestService(
	joinRequestRepo repositories.JoinRequestRepository,
	sportEventRepo repositories.SportEventRepository,
	tournamentRepo repositories.TournamentRepository,
	participantRepo repositories.ParticipantRepository,
	ledger CapacityLedger,
	logger *slog.Logger,
) JoinRequestService {
	return &joinRequestService{
		joinRequestRepo: joinRequestRepo,
		sportEventRepo:  sportEventRepo,
		tournamentRepo:  tournamentRepo,
		participantRepo: participantRepo,
		ledger:          ledger,
		logger:          logger,
	}
}

func (s *joinRequestService) Submit(ctx context.Context, input SubmitJoinRequestInput) (*models.JoinRequest, error) {
	event, err := s.sportEventRepo.GetByID(ctx, input.SportEventID)
	if err != nil {
		if errors.Is(err, repositories.ErrSportEventNotFound) {
			return nil, ErrSportEventNotFound
		}
		return nil, fmt.Errorf("failed to load sport event %d: %w", input.SportEventID, err)
	}

	tournament, err := s.tournamentRepo.GetByID(ctx, event.TournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to load tournament %d: %w", event.TournamentID, err)
	}
	if time.Now().After(tournament.RegistrationDeadline) {
		return nil, ErrRegistrationClosed
	}

	if err := validateSubmission(event, input); err != nil {
		return nil, err
	}

	// Early rejection while the event is already full; the authoritative
	// re-check happens at approval time through the ledger.
	if event.RegisteredEntries >= event.Capacity {
		return nil, ErrCapacityExceeded
	}

	jr := &models.JoinRequest{
		TournamentID:    event.TournamentID,
		SportEventID:    event.ID,
		UserID:          input.UserID,
		Sport:           event.Sport,
		PlayerName:      input.PlayerName,
		Gender:          input.Gender,
		MobileNo:        input.MobileNo,
		Roles:           input.Roles,
		PartnerName:     input.PartnerName,
		PartnerGender:   input.PartnerGender,
		PartnerMobileNo: input.PartnerMobileNo,
		AdditionalInfo:  input.AdditionalInfo,
		PaymentProofURL: input.PaymentProofURL,
		PaymentProofKey: input.PaymentProofKey,
		Status:          models.JoinRequestPending,
	}

	if err := s.joinRequestRepo.Create(ctx, jr); err != nil {
		switch {
		case errors.Is(err, repositories.ErrJoinRequestConflict):
			return nil, ErrDuplicateRequest
		case errors.Is(err, repositories.ErrJoinRequestUserInvalid):
			return nil, ErrUserNotFound
		case errors.Is(err, repositories.ErrJoinRequestEventInvalid):
			return nil, ErrSportEventNotFound
		}
		return nil, fmt.Errorf("failed to persist join request: %w", err)
	}
	return jr, nil
}

func (s *joinRequestService) Approve(ctx context.Context, requestID, reviewerID int, reviewerNotes string) (*models.JoinRequest, error) {
	jr, event, err := s.loadForReview(ctx, requestID, reviewerID)
	if err != nil {
		return nil, err
	}

	// Approval may not leave pending without evidence when the event is paid.
	if event.EntryFee > 0 && (jr.PaymentProofURL == nil || *jr.PaymentProofURL == "") {
		return nil, ErrEvidenceRequired
	}

	// The ledger increment is the single atomic gate: it is taken before the
	// status write so the counter can never exceed the ceiling, whatever the
	// interleaving of concurrent reviewers.
	granted, err := s.ledger.TryIncrement(ctx, jr.SportEventID)
	if err != nil {
		return nil, err
	}
	if !granted {
		// The ceiling was reached between submission and approval; the
		// request stays pending and the caller gets a distinct error.
		return nil, ErrCapacityExceeded
	}

	flipped, err := s.joinRequestRepo.UpdateStatusIfPending(ctx, requestID, models.JoinRequestApproved, notesPtr(reviewerNotes))
	if err != nil {
		s.releaseSlot(ctx, jr.SportEventID)
		return nil, fmt.Errorf("failed to mark join request %d approved: %w", requestID, err)
	}
	if !flipped {
		// Lost the race to a concurrent reviewer; give the slot back.
		s.releaseSlot(ctx, jr.SportEventID)
		return nil, ErrRequestNotPending
	}

	participant := &models.Participant{
		TournamentID:  jr.TournamentID,
		SportEventID:  jr.SportEventID,
		JoinRequestID: jr.ID,
		UserID:        jr.UserID,
		DisplayName:   jr.PlayerName,
	}
	if err := s.participantRepo.Create(ctx, participant); err != nil && !errors.Is(err, repositories.ErrParticipantConflict) {
		// The status write and counter increment already happened; surface
		// the distinct partial-failure error so the organizer can retry
		// record creation without re-approving.
		return nil, fmt.Errorf("%w: %w", ErrPartialApproval, err)
	}

	now := time.Now()
	jr.Status = models.JoinRequestApproved
	jr.ReviewedAt = &now
	jr.ReviewerNotes = notesPtr(reviewerNotes)
	return jr, nil
}

func (s *joinRequestService) Reject(ctx context.Context, requestID, reviewerID int, reviewerNotes string) (*models.JoinRequest, error) {
	jr, _, err := s.loadForReview(ctx, requestID, reviewerID)
	if err != nil {
		return nil, err
	}

	flipped, err := s.joinRequestRepo.UpdateStatusIfPending(ctx, requestID, models.JoinRequestRejected, notesPtr(reviewerNotes))
	if err != nil {
		return nil, fmt.Errorf("failed to mark join request %d rejected: %w", requestID, err)
	}
	if !flipped {
		return nil, ErrRequestNotPending
	}

	now := time.Now()
	jr.Status = models.JoinRequestRejected
	jr.ReviewedAt = &now
	jr.ReviewerNotes = notesPtr(reviewerNotes)
	return jr, nil
}

func (s *joinRequestService) RetryParticipantRecord(ctx context.Context, requestID, reviewerID int) (*models.Participant, error) {
	jr, err := s.joinRequestRepo.FindByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, repositories.ErrJoinRequestNotFound) {
			return nil, ErrJoinRequestNotFound
		}
		return nil, fmt.Errorf("failed to load join request %d: %w", requestID, err)
	}
	if jr.Status != models.JoinRequestApproved {
		return nil, ErrRequestNotPending
	}
	if err := s.authorizeOrganizer(ctx, jr.TournamentID, reviewerID); err != nil {
		return nil, err
	}

	participant := &models.Participant{
		TournamentID:  jr.TournamentID,
		SportEventID:  jr.SportEventID,
		JoinRequestID: jr.ID,
		UserID:        jr.UserID,
		DisplayName:   jr.PlayerName,
	}
	err = s.participantRepo.Create(ctx, participant)
	if errors.Is(err, repositories.ErrParticipantConflict) {
		return s.participantRepo.FindByJoinRequest(ctx, jr.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create participant record for join request %d: %w", requestID, err)
	}
	return participant, nil
}

func (s *joinRequestService) loadForReview(ctx context.Context, requestID, reviewerID int) (*models.JoinRequest, *models.SportEvent, error) {
	jr, err := s.joinRequestRepo.FindByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, repositories.ErrJoinRequestNotFound) {
			return nil, nil, ErrJoinRequestNotFound
		}
		return nil, nil, fmt.Errorf("failed to load join request %d: %w", requestID, err)
	}
	if jr.Status.Terminal() {
		return nil, nil, ErrRequestNotPending
	}

	if err := s.authorizeOrganizer(ctx, jr.TournamentID, reviewerID); err != nil {
		return nil, nil, err
	}

	event, err := s.sportEventRepo.GetByID(ctx, jr.SportEventID)
	if err != nil {
		if errors.Is(err, repositories.ErrSportEventNotFound) {
			return nil, nil, ErrSportEventNotFound
		}
		return nil, nil, fmt.Errorf("failed to load sport event %d: %w", jr.SportEventID, err)
	}
	return jr, event, nil
}

func (s *joinRequestService) authorizeOrganizer(ctx context.Context, tournamentID, userID int) error {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return ErrTournamentNotFound
		}
		return fmt.Errorf("failed to load tournament %d: %w", tournamentID, err)
	}
	if tournament.OrganizerID != userID {
		return ErrOrganizerOnly
	}
	return nil
}

func (s *joinRequestService) releaseSlot(ctx context.Context, sportEventID int) {
	if err := s.ledger.Release(ctx, sportEventID); err != nil {
		s.logger.Error("failed to release capacity slot after lost approval race",
			slog.Int("sport_event_id", sportEventID), slog.Any("error", err))
	}
}

func validateSubmission(event *models.SportEvent, input SubmitJoinRequestInput) error {
	if err := validatePerson(input.PlayerName, input.Gender, input.MobileNo); err != nil {
		return err
	}

	switch event.PairingMode {
	case models.PairingPaired:
		if input.PartnerName == nil || input.PartnerGender == nil || input.PartnerMobileNo == nil {
			return ErrPartnerRequired
		}
		if err := validatePerson(*input.PartnerName, *input.PartnerGender, *input.PartnerMobileNo); err != nil {
			return err
		}
		if event.GenderCategory == models.GenderCategoryMixed && *input.PartnerGender != input.Gender.Opposite() {
			return fmt.Errorf("%w: mixed events require partners of opposite gender", ErrValidationFailed)
		}
	case models.PairingIndividual, models.PairingTeam:
		// Single primary record; variant-specific fields are validated by
		// the intake flow before the payload is assembled.
	}

	if event.EntryFee > 0 && (input.PaymentProofURL == nil || *input.PaymentProofURL == "") {
		return ErrEvidenceRequired
	}
	return nil
}

func validatePerson(name string, gender models.Gender, mobileNo string) error {
	if len([]rune(name)) < 2 {
		return ErrNameTooShort
	}
	if !gender.Valid() {
		return ErrInvalidGender
	}
	if !validMobileNumber(mobileNo) {
		return ErrInvalidMobileNumber
	}
	return nil
}

func validMobileNumber(mobileNo string) bool {
	if len(mobileNo) != mobileNumberLength {
		return false
	}
	for _, r := range mobileNo {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func notesPtr(notes string) *string {
	if notes == "" {
		return nil
	}
	return &notes
}
