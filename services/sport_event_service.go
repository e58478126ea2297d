package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/matchforge/registration-system/models"
	"github.com/matchforge/registration-system/repositories"
	"github.com/matchforge/registration-system/storage"
)

type CreateSportEventInput struct {
	Sport          string                `json:"sport"`
	PairingMode    models.PairingMode    `json:"pairing_mode"`
	GenderCategory models.GenderCategory `json:"gender_category"`
	EntryFee       int                   `json:"entry_fee"`
	Capacity       int                   `json:"capacity"`
}

type SportEventService interface {
	Create(ctx context.Context, tournamentID, callerID int, input CreateSportEventInput) (*models.SportEvent, error)
	GetByID(ctx context.Context, id int) (*models.SportEvent, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.SportEvent, error)

	// UploadQRCode stores the organizer's payment QR; the intake flow shows
	// the most recent one on the evidence step.
	UploadQRCode(ctx context.Context, organizerID int, contentType string, size int64, reader io.Reader) (*storage.UploadResult, error)
}

type sportEventService struct {
	sportEventRepo repositories.SportEventRepository
	tournamentRepo repositories.TournamentRepository
	uploader       storage.FileUploader
}

func NewSportEventService(
	sportEventRepo repositories.SportEventRepository,
	tournamentRepo repositories.TournamentRepository,
	uploader storage.FileUploader,
) SportEventService {
	return &sportEventService{
		sportEventRepo: sportEventRepo,
		tournamentRepo: tournamentRepo,
		uploader:       uploader,
	}
}

func (s *sportEventService) Create(ctx context.Context, tournamentID, callerID int, input CreateSportEventInput) (*models.SportEvent, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament %d: %w", tournamentID, err)
	}
	if tournament.OrganizerID != callerID {
		return nil, ErrOrganizerOnly
	}

	sport := strings.TrimSpace(input.Sport)
	if sport == "" {
		return nil, fmt.Errorf("%w: sport is required", ErrValidationFailed)
	}
	if !input.PairingMode.Valid() {
		return nil, fmt.Errorf("%w: unknown pairing mode %q", ErrValidationFailed, input.PairingMode)
	}
	if !input.GenderCategory.Valid() {
		return nil, fmt.Errorf("%w: unknown gender category %q", ErrValidationFailed, input.GenderCategory)
	}
	if input.Capacity <= 0 {
		return nil, ErrInvalidCapacity
	}
	if input.EntryFee < 0 {
		return nil, fmt.Errorf("%w: entry fee cannot be negative", ErrValidationFailed)
	}

	event := &models.SportEvent{
		TournamentID:   tournamentID,
		Sport:          sport,
		PairingMode:    input.PairingMode,
		GenderCategory: input.GenderCategory,
		EntryFee:       input.EntryFee,
		Capacity:       input.Capacity,
	}

	if err := s.sportEventRepo.Create(ctx, event); err != nil {
		if errors.Is(err, repositories.ErrSportEventTournamentInvalid) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to create sport event: %w", err)
	}
	return event, nil
}

func (s *sportEventService) GetByID(ctx context.Context, id int) (*models.SportEvent, error) {
	event, err := s.sportEventRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrSportEventNotFound) {
			return nil, ErrSportEventNotFound
		}
		return nil, fmt.Errorf("failed to get sport event %d: %w", id, err)
	}
	return event, nil
}

func (s *sportEventService) ListByTournament(ctx context.Context, tournamentID int) ([]*models.SportEvent, error) {
	events, err := s.sportEventRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sport events for tournament %d: %w", tournamentID, err)
	}
	return events, nil
}

func (s *sportEventService) UploadQRCode(ctx context.Context, organizerID int, contentType string, size int64, reader io.Reader) (*storage.UploadResult, error) {
	key := storage.ObjectKey("qr-codes", organizerID)
	result, err := s.uploader.Upload(ctx, key, contentType, size, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to upload QR code: %w", err)
	}
	return result, nil
}
