package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/matchforge/registration-system/models"
	"github.com/matchforge/registration-system/repositories"
)

type CreateTournamentInput struct {
	Name                 string    `json:"name"`
	Description          *string   `json:"description,omitempty"`
	RegistrationDeadline time.Time `json:"registration_deadline"`
	StartDate            time.Time `json:"start_date"`
	EndDate              time.Time `json:"end_date"`
	Location             *string   `json:"location,omitempty"`
}

type TournamentService interface {
	Create(ctx context.Context, organizerID int, input CreateTournamentInput) (*models.Tournament, error)
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	Update(ctx context.Context, id, callerID int, input CreateTournamentInput) (*models.Tournament, error)
	Delete(ctx context.Context, id, callerID int) error
	List(ctx context.Context, limit, offset int) ([]*models.Tournament, error)
}

type tournamentService struct {
	tournamentRepo repositories.TournamentRepository
	sportEventRepo repositories.SportEventRepository
}

func NewTournamentService(tournamentRepo repositories.TournamentRepository, sportEventRepo repositories.SportEventRepository) TournamentService {
	return &tournamentService{
		tournamentRepo: tournamentRepo,
		sportEventRepo: sportEventRepo,
	}
}

func validateTournamentDates(input CreateTournamentInput) error {
	// Регистрация закрывается не позже старта, старт не позже окончания.
	if input.RegistrationDeadline.After(input.StartDate) || input.StartDate.After(input.EndDate) {
		return ErrInvalidDateOrder
	}
	return nil
}

func (s *tournamentService) Create(ctx context.Context, organizerID int, input CreateTournamentInput) (*models.Tournament, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrTournamentNameRequired
	}
	if err := validateTournamentDates(input); err != nil {
		return nil, err
	}

	tournament := &models.Tournament{
		Name:                 name,
		Description:          input.Description,
		OrganizerID:          organizerID,
		RegistrationDeadline: input.RegistrationDeadline,
		StartDate:            input.StartDate,
		EndDate:              input.EndDate,
		Location:             input.Location,
	}

	if err := s.tournamentRepo.Create(ctx, tournament); err != nil {
		return nil, fmt.Errorf("failed to create tournament: %w", err)
	}
	return tournament, nil
}

func (s *tournamentService) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament %d: %w", id, err)
	}

	events, err := s.sportEventRepo.ListByTournament(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list events for tournament %d: %w", id, err)
	}
	tournament.Events = make([]models.SportEvent, len(events))
	for i, e := range events {
		tournament.Events[i] = *e
	}
	return tournament, nil
}

func (s *tournamentService) Update(ctx context.Context, id, callerID int, input CreateTournamentInput) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament %d: %w", id, err)
	}
	if tournament.OrganizerID != callerID {
		return nil, ErrOrganizerOnly
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrTournamentNameRequired
	}
	if err := validateTournamentDates(input); err != nil {
		return nil, err
	}

	tournament.Name = name
	tournament.Description = input.Description
	tournament.RegistrationDeadline = input.RegistrationDeadline
	tournament.StartDate = input.StartDate
	tournament.EndDate = input.EndDate
	tournament.Location = input.Location

	if err := s.tournamentRepo.Update(ctx, tournament); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to update tournament %d: %w", id, err)
	}
	return tournament, nil
}

func (s *tournamentService) Delete(ctx context.Context, id, callerID int) error {
	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return ErrTournamentNotFound
		}
		return fmt.Errorf("failed to get tournament %d: %w", id, err)
	}
	if tournament.OrganizerID != callerID {
		return ErrOrganizerOnly
	}

	if err := s.tournamentRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete tournament %d: %w", id, err)
	}
	return nil
}

func (s *tournamentService) List(ctx context.Context, limit, offset int) ([]*models.Tournament, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	tournaments, err := s.tournamentRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	return tournaments, nil
}
