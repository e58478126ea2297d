package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/matchforge/registration-system/models"
	"github.com/matchforge/registration-system/notifications"
	"github.com/matchforge/registration-system/repositories"
	"golang.org/x/sync/errgroup"
)

// ReviewList is what the console renders: the filtered requests plus the
// per-event counters, so the organizer always sees accurate remaining
// capacity alongside the queue.
type ReviewList struct {
	Requests []*models.JoinRequest `json:"requests"`
	Events   []*models.SportEvent  `json:"events"`
}

// ReviewService — тонкая оркестрация над машиной состояний заявки: никаких
// собственных бизнес-правил, только авторизация, диспетчеризация и
// обновление списка после каждого действия.
type ReviewService interface {
	List(ctx context.Context, tournamentID, callerID int, statusFilter *models.JoinRequestStatus) (*ReviewList, error)
	Approve(ctx context.Context, requestID, callerID int, notes string) (*models.JoinRequest, *ReviewList, error)
	Reject(ctx context.Context, requestID, callerID int, notes string) (*models.JoinRequest, *ReviewList, error)
}

type reviewService struct {
	joinRequestRepo repositories.JoinRequestRepository
	sportEventRepo  repositories.SportEventRepository
	tournamentRepo  repositories.TournamentRepository
	stateMachine    JoinRequestService
	hub             *notifications.Hub
}

func NewReviewService(
	joinRequestRepo repositories.JoinRequestRepository,
	sportEventRepo repositories.SportEventRepository,
	tournamentRepo repositories.TournamentRepository,
	stateMachine JoinRequestService,
	hub *notifications.Hub,
) ReviewService {
	return &reviewService{
		joinRequestRepo: joinRequestRepo,
		sportEventRepo:  sportEventRepo,
		tournamentRepo:  tournamentRepo,
		stateMachine:    stateMachine,
		hub:             hub,
	}
}

func (s *reviewService) List(ctx context.Context, tournamentID, callerID int, statusFilter *models.JoinRequestStatus) (*ReviewList, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to load tournament %d: %w", tournamentID, err)
	}
	if tournament.OrganizerID != callerID {
		return nil, ErrOrganizerOnly
	}

	list := &ReviewList{}
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		requests, err := s.joinRequestRepo.ListByTournament(gCtx, tournamentID, statusFilter)
		if err != nil {
			return fmt.Errorf("failed to list join requests for tournament %d: %w", tournamentID, err)
		}
		list.Requests = requests
		return nil
	})

	g.Go(func() error {
		events, err := s.sportEventRepo.ListByTournament(gCtx, tournamentID)
		if err != nil {
			return fmt.Errorf("failed to list sport events for tournament %d: %w", tournamentID, err)
		}
		list.Events = events
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return list, nil
}

func (s *reviewService) Approve(ctx context.Context, requestID, callerID int, notes string) (*models.JoinRequest, *ReviewList, error) {
	request, err := s.stateMachine.Approve(ctx, requestID, callerID, notes)
	if err != nil {
		return nil, nil, err
	}

	s.hub.NotifyRoom(notifications.RoomForTournament(request.TournamentID), "REQUEST_APPROVED", request)
	list, err := s.List(ctx, request.TournamentID, callerID, nil)
	if err != nil {
		return request, nil, err
	}
	return request, list, nil
}

func (s *reviewService) Reject(ctx context.Context, requestID, callerID int, notes string) (*models.JoinRequest, *ReviewList, error) {
	request, err := s.stateMachine.Reject(ctx, requestID, callerID, notes)
	if err != nil {
		return nil, nil, err
	}

	s.hub.NotifyRoom(notifications.RoomForTournament(request.TournamentID), "REQUEST_REJECTED", request)
	list, err := s.List(ctx, request.TournamentID, callerID, nil)
	if err != nil {
		return request, nil, err
	}
	return request, list, nil
}
