package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/matchforge/registration-system/repositories"
)

// CapacityLedger отслеживает число подтверждённых заявок на дисциплину и
// закрывает гонку одновременных одобрений: TryIncrement — единственная
// точка синхронизации, условный UPDATE на уровне хранилища.
type CapacityLedger interface {
	CurrentCount(ctx context.Context, sportEventID int) (int, error)
	Ceiling(ctx context.Context, sportEventID int) (int, error)

	// TryIncrement succeeds and increments iff current < ceiling; otherwise
	// it returns false and leaves state unchanged. Every approval goes
	// through this, never through a separate read-then-write pair.
	TryIncrement(ctx context.Context, sportEventID int) (bool, error)

	// Release undoes an increment whose follow-up write lost a race.
	Release(ctx context.Context, sportEventID int) error
}

type capacityLedger struct {
	sportEventRepo repositories.SportEventRepository
}

func NewCapacityLedger(sportEventRepo repositories.SportEventRepository) CapacityLedger {
	return &capacityLedger{sportEventRepo: sportEventRepo}
}

func (l *capacityLedger) CurrentCount(ctx context.Context, sportEventID int) (int, error) {
	event, err := l.sportEventRepo.GetByID(ctx, sportEventID)
	if err != nil {
		if errors.Is(err, repositories.ErrSportEventNotFound) {
			return 0, ErrSportEventNotFound
		}
		return 0, fmt.Errorf("failed to read registered count for sport event %d: %w", sportEventID, err)
	}
	return event.RegisteredEntries, nil
}

func (l *capacityLedger) Ceiling(ctx context.Context, sportEventID int) (int, error) {
	event, err := l.sportEventRepo.GetByID(ctx, sportEventID)
	if err != nil {
		if errors.Is(err, repositories.ErrSportEventNotFound) {
			return 0, ErrSportEventNotFound
		}
		return 0, fmt.Errorf("failed to read ceiling for sport event %d: %w", sportEventID, err)
	}
	return event.Capacity, nil
}

func (l *capacityLedger) TryIncrement(ctx context.Context, sportEventID int) (bool, error) {
	ok, err := l.sportEventRepo.TryIncrementRegistered(ctx, sportEventID)
	if err != nil {
		return false, fmt.Errorf("failed to increment capacity counter for sport event %d: %w", sportEventID, err)
	}
	return ok, nil
}

func (l *capacityLedger) Release(ctx context.Context, sportEventID int) error {
	if err := l.sportEventRepo.DecrementRegistered(ctx, sportEventID); err != nil {
		return fmt.Errorf("failed to release capacity slot for sport event %d: %w", sportEventID, err)
	}
	return nil
}
