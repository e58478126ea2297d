package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/matchforge/registration-system/models"
)

var (
	ErrSportEventNotFound          = errors.New("sport event not found")
	ErrSportEventTournamentInvalid = errors.New("sport event references an unknown tournament")
)

type SportEventRepository interface {
	Create(ctx context.Context, e *models.SportEvent) error
	GetByID(ctx context.Context, id int) (*models.SportEvent, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.SportEvent, error)

	// TryIncrementRegistered is the single atomic capacity gate: it
	// increments registered_entries iff the count is still below capacity,
	// in one conditional UPDATE. Returns false, without mutating anything,
	// when the ceiling has been reached.
	TryIncrementRegistered(ctx context.Context, id int) (bool, error)

	// DecrementRegistered compensates an increment whose follow-up write
	// lost a race (e.g. the request was approved by someone else first).
	DecrementRegistered(ctx context.Context, id int) error
}

type postgresSportEventRepository struct {
	db *sql.DB
}

func NewPostgresSportEventRepository(db *sql.DB) SportEventRepository {
	return &postgresSportEventRepository{db: db}
}

const sportEventColumns = `id, tournament_id, sport, pairing_mode, gender_category, entry_fee, capacity, registered_entries, created_at`

func (r *postgresSportEventRepository) Create(ctx context.Context, e *models.SportEvent) error {
	query := `
		INSERT INTO sport_events (tournament_id, sport, pairing_mode, gender_category, entry_fee, capacity)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, registered_entries, created_at`

	err := r.db.QueryRowContext(ctx, query,
		e.TournamentID,
		e.Sport,
		e.PairingMode,
		e.GenderCategory,
		e.EntryFee,
		e.Capacity,
	).Scan(&e.ID, &e.RegisteredEntries, &e.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			if pqErr.Constraint == "sport_events_tournament_id_fkey" {
				return ErrSportEventTournamentInvalid
			}
		}
		return fmt.Errorf("failed to create sport event: %w", err)
	}
	return nil
}

func (r *postgresSportEventRepository) scanSportEvent(rowScanner interface {
	Scan(dest ...interface{}) error
}, e *models.SportEvent) error {
	return rowScanner.Scan(
		&e.ID,
		&e.TournamentID,
		&e.Sport,
		&e.PairingMode,
		&e.GenderCategory,
		&e.EntryFee,
		&e.Capacity,
		&e.RegisteredEntries,
		&e.CreatedAt,
	)
}

func (r *postgresSportEventRepository) GetByID(ctx context.Context, id int) (*models.SportEvent, error) {
	query := fmt.Sprintf(`SELECT %s FROM sport_events WHERE id = $1`, sportEventColumns)

	e := &models.SportEvent{}
	err := r.scanSportEvent(r.db.QueryRowContext(ctx, query, id), e)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSportEventNotFound
		}
		return nil, fmt.Errorf("failed to get sport event: %w", err)
	}
	return e, nil
}

func (r *postgresSportEventRepository) ListByTournament(ctx context.Context, tournamentID int) ([]*models.SportEvent, error) {
	query := fmt.Sprintf(`SELECT %s FROM sport_events WHERE tournament_id = $1 ORDER BY created_at ASC`, sportEventColumns)

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sport events: %w", err)
	}
	defer rows.Close()

	events := make([]*models.SportEvent, 0)
	for rows.Next() {
		e := &models.SportEvent{}
		if err := r.scanSportEvent(rows, e); err != nil {
			return nil, fmt.Errorf("failed to scan sport event row: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sport event rows: %w", err)
	}
	return events, nil
}

func (r *postgresSportEventRepository) TryIncrementRegistered(ctx context.Context, id int) (bool, error) {
	query := `
		UPDATE sport_events
		SET registered_entries = registered_entries + 1
		WHERE id = $1 AND registered_entries < capacity`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("failed to increment registered entries: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check affected rows for capacity increment: %w", err)
	}
	return rowsAffected == 1, nil
}

func (r *postgresSportEventRepository) DecrementRegistered(ctx context.Context, id int) error {
	query := `
		UPDATE sport_events
		SET registered_entries = registered_entries - 1
		WHERE id = $1 AND registered_entries > 0`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to decrement registered entries: %w", err)
	}
	return checkAffectedRows(result, ErrSportEventNotFound)
}
