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
	ErrParticipantNotFound = errors.New("participant not found")
	ErrParticipantConflict = errors.New("participant record already exists for this join request")
)

type ParticipantRepository interface {
	Create(ctx context.Context, p *models.Participant) error
	FindByID(ctx context.Context, id int) (*models.Participant, error)
	FindByJoinRequest(ctx context.Context, joinRequestID int) (*models.Participant, error)
	ListBySportEvent(ctx context.Context, sportEventID int) ([]*models.Participant, error)
}

type postgresParticipantRepository struct {
	db *sql.DB
}

func NewPostgresParticipantRepository(db *sql.DB) ParticipantRepository {
	return &postgresParticipantRepository{db: db}
}

const participantColumns = `id, tournament_id, sport_event_id, join_request_id, user_id, display_name, created_at`

func (r *postgresParticipantRepository) Create(ctx context.Context, p *models.Participant) error {
	query := `
		INSERT INTO participants (tournament_id, sport_event_id, join_request_id, user_id, display_name)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		p.TournamentID,
		p.SportEventID,
		p.JoinRequestID,
		p.UserID,
		p.DisplayName,
	).Scan(&p.ID, &p.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			// Unique index on join_request_id: exactly one participant
			// record per approval.
			if pqErr.Constraint == "participants_join_request_id_key" {
				return ErrParticipantConflict
			}
		}
		return fmt.Errorf("failed to create participant: %w", err)
	}
	return nil
}

func (r *postgresParticipantRepository) scanParticipant(rowScanner interface {
	Scan(dest ...interface{}) error
}, p *models.Participant) error {
	return rowScanner.Scan(
		&p.ID,
		&p.TournamentID,
		&p.SportEventID,
		&p.JoinRequestID,
		&p.UserID,
		&p.DisplayName,
		&p.CreatedAt,
	)
}

func (r *postgresParticipantRepository) findOne(ctx context.Context, query string, args ...interface{}) (*models.Participant, error) {
	p := &models.Participant{}
	err := r.scanParticipant(r.db.QueryRowContext(ctx, query, args...), p)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrParticipantNotFound
		}
		return nil, fmt.Errorf("failed to find participant: %w", err)
	}
	return p, nil
}

func (r *postgresParticipantRepository) FindByID(ctx context.Context, id int) (*models.Participant, error) {
	query := fmt.Sprintf(`SELECT %s FROM participants WHERE id = $1`, participantColumns)
	return r.findOne(ctx, query, id)
}

func (r *postgresParticipantRepository) FindByJoinRequest(ctx context.Context, joinRequestID int) (*models.Participant, error) {
	query := fmt.Sprintf(`SELECT %s FROM participants WHERE join_request_id = $1`, participantColumns)
	return r.findOne(ctx, query, joinRequestID)
}

func (r *postgresParticipantRepository) ListBySportEvent(ctx context.Context, sportEventID int) ([]*models.Participant, error) {
	query := fmt.Sprintf(`SELECT %s FROM participants WHERE sport_event_id = $1 ORDER BY created_at ASC`, participantColumns)

	rows, err := r.db.QueryContext(ctx, query, sportEventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants by sport event: %w", err)
	}
	defer rows.Close()

	participants := make([]*models.Participant, 0)
	for rows.Next() {
		p := &models.Participant{}
		if err := r.scanParticipant(rows, p); err != nil {
			return nil, fmt.Errorf("failed to scan participant row: %w", err)
		}
		participants = append(participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating participant rows: %w", err)
	}
	return participants, nil
}
