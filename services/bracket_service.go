package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/matchforge/registration-system/brackets"
	"github.com/matchforge/registration-system/models"
	"github.com/matchforge/registration-system/notifications"
	"github.com/matchforge/registration-system/repositories"
)

// BracketService формирует сетку первого раунда из подтверждённых заявок
// одной дисциплины и сохраняет её одной транзакцией.
type BracketService interface {
	FormRoundOne(ctx context.Context, sportEventID, callerID int) ([]*models.Match, error)
	GetBracket(ctx context.Context, sportEventID int) ([]*models.Match, error)
}

type bracketService struct {
	db              *sql.DB
	matchRepo       repositories.MatchRepository
	participantRepo repositories.ParticipantRepository
	sportEventRepo  repositories.SportEventRepository
	tournamentRepo  repositories.TournamentRepository
	hub             *notifications.Hub
	logger          *slog.Logger
	newRand         func() *rand.Rand
}

func NewBracketService(
	db *sql.DB,
	matchRepo repositories.MatchRepository,
	participantRepo repositories.ParticipantRepository,
	sportEventRepo repositories.SportEventRepository,
	tournamentRepo repositories.TournamentRepository,
	hub *notifications.Hub,
	logger *slog.Logger,
) BracketService {
	return &bracketService{
		db:              db,
		matchRepo:       matchRepo,
		participantRepo: participantRepo,
		sportEventRepo:  sportEventRepo,
		tournamentRepo:  tournamentRepo,
		hub:             hub,
		logger:          logger,
		newRand: func() *rand.Rand {
			return rand.New(rand.NewSource(time.Now().UnixNano()))
		},
	}
}

func (s *bracketService) FormRoundOne(ctx context.Context, sportEventID, callerID int) ([]*models.Match, error) {
	event, err := s.sportEventRepo.GetByID(ctx, sportEventID)
	if err != nil {
		if errors.Is(err, repositories.ErrSportEventNotFound) {
			return nil, ErrSportEventNotFound
		}
		return nil, fmt.Errorf("failed to load sport event %d: %w", sportEventID, err)
	}

	tournament, err := s.tournamentRepo.GetByID(ctx, event.TournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to load tournament %d: %w", event.TournamentID, err)
	}
	if tournament.OrganizerID != callerID {
		return nil, ErrOrganizerOnly
	}

	// Idempotency guard: forming a bracket twice must be refused, not
	// silently duplicated.
	existing, err := s.matchRepo.CountByEventAndRound(ctx, sportEventID, 1)
	if err != nil {
		return nil, err
	}
	if existing > 0 {
		return nil, ErrBracketExists
	}

	participants, err := s.participantRepo.ListBySportEvent(ctx, sportEventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list approved entries for sport event %d: %w", sportEventID, err)
	}
	if len(participants) < 2 {
		return nil, ErrInsufficientEntries
	}

	entries := make([]brackets.Entry, len(participants))
	for i, p := range participants {
		entries[i] = brackets.Entry{ParticipantID: p.ID, DisplayName: p.DisplayName}
	}

	scheduledAt := tournament.StartDate
	if time.Now().After(scheduledAt) {
		scheduledAt = time.Now().Add(15 * time.Minute)
	}

	generator := brackets.NewRoundOneGenerator(s.newRand())
	matches, err := generator.Generate(tournament.ID, sportEventID, entries, scheduledAt)
	if err != nil {
		if errors.Is(err, brackets.ErrInsufficientEntries) {
			return nil, ErrInsufficientEntries
		}
		return nil, fmt.Errorf("failed to generate round 1 bracket for sport event %d: %w", sportEventID, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := s.matchRepo.CreateBatch(ctx, tx, matches); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.logger.Error("rollback failed after bracket insert error",
				slog.Int("sport_event_id", sportEventID), slog.Any("error", rbErr))
		}
		return nil, fmt.Errorf("failed to persist round 1 bracket for sport event %d: %w", sportEventID, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit round 1 bracket for sport event %d: %w", sportEventID, err)
	}

	s.logger.Info("round 1 bracket formed",
		slog.Int("sport_event_id", sportEventID),
		slog.Int("matches", len(matches)))
	s.hub.NotifyRoom(notifications.RoomForTournament(tournament.ID), "BRACKET_CREATED", matches)

	return matches, nil
}

func (s *bracketService) GetBracket(ctx context.Context, sportEventID int) ([]*models.Match, error) {
	matches, err := s.matchRepo.ListBySportEvent(ctx, sportEventID)
	if err != nil {
		return nil, fmt.Errorf("failed to load bracket for sport event %d: %w", sportEventID, err)
	}
	return matches, nil
}
