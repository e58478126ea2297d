package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/matchforge/registration-system/models"
)

var ErrMatchNotFound = errors.New("match not found")

type MatchRepository interface {
	// CreateBatch inserts all matches using the given executor. Callers run
	// it inside a transaction so a rejected batch persists nothing.
	CreateBatch(ctx context.Context, exec SQLExecutor, matches []*models.Match) error
	CountByEventAndRound(ctx context.Context, sportEventID, round int) (int, error)
	ListBySportEvent(ctx context.Context, sportEventID int) ([]*models.Match, error)
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

const matchColumns = `id, tournament_id, sport_event_id, round, match_number, slot1_participant_id, slot2_participant_id, scheduled_at, status, winner_id`

func (r *postgresMatchRepository) CreateBatch(ctx context.Context, exec SQLExecutor, matches []*models.Match) error {
	query := `
		INSERT INTO matches (tournament_id, sport_event_id, round, match_number, slot1_participant_id, slot2_participant_id, scheduled_at, status, winner_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`

	for _, m := range matches {
		err := exec.QueryRowContext(ctx, query,
			m.TournamentID,
			m.SportEventID,
			m.Round,
			m.MatchNumber,
			m.Slot1ParticipantID,
			m.Slot2ParticipantID,
			m.ScheduledAt,
			m.Status,
			m.WinnerID,
		).Scan(&m.ID)
		if err != nil {
			return fmt.Errorf("failed to insert match %d of round %d: %w", m.MatchNumber, m.Round, err)
		}
	}
	return nil
}

func (r *postgresMatchRepository) CountByEventAndRound(ctx context.Context, sportEventID, round int) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM matches WHERE sport_event_id = $1 AND round = $2`
	if err := r.db.QueryRowContext(ctx, query, sportEventID, round).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count matches for sport event %d round %d: %w", sportEventID, round, err)
	}
	return count, nil
}

func (r *postgresMatchRepository) ListBySportEvent(ctx context.Context, sportEventID int) ([]*models.Match, error) {
	query := fmt.Sprintf(`SELECT %s FROM matches WHERE sport_event_id = $1 ORDER BY round ASC, match_number ASC`, matchColumns)

	rows, err := r.db.QueryContext(ctx, query, sportEventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		m := &models.Match{}
		err := rows.Scan(
			&m.ID,
			&m.TournamentID,
			&m.SportEventID,
			&m.Round,
			&m.MatchNumber,
			&m.Slot1ParticipantID,
			&m.Slot2ParticipantID,
			&m.ScheduledAt,
			&m.Status,
			&m.WinnerID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating match rows: %w", err)
	}
	return matches, nil
}
