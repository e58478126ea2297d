package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/matchforge/registration-system/models"
)

var (
	ErrJoinRequestNotFound     = errors.New("join request not found")
	ErrJoinRequestConflict     = errors.New("an active join request already exists for this user and sport event")
	ErrJoinRequestUserInvalid  = errors.New("join request references an unknown user")
	ErrJoinRequestEventInvalid = errors.New("join request references an unknown sport event")
)

type JoinRequestRepository interface {
	Create(ctx context.Context, jr *models.JoinRequest) error
	FindByID(ctx context.Context, id int) (*models.JoinRequest, error)
	ListByTournament(ctx context.Context, tournamentID int, statusFilter *models.JoinRequestStatus) ([]*models.JoinRequest, error)

	// UpdateStatusIfPending flips a pending request into a terminal state in
	// one conditional UPDATE. Returns false when the request was no longer
	// pending, so concurrent reviewers cannot both win.
	UpdateStatusIfPending(ctx context.Context, id int, status models.JoinRequestStatus, reviewerNotes *string) (bool, error)
}

type postgresJoinRequestRepository struct {
	db *sql.DB
}

func NewPostgresJoinRequestRepository(db *sql.DB) JoinRequestRepository {
	return &postgresJoinRequestRepository{db: db}
}

const joinRequestColumns = `id, tournament_id, sport_event_id, user_id, sport, player_name, gender, mobile_no, roles,
	partner_name, partner_gender, partner_mobile_no, additional_info,
	payment_proof_url, payment_proof_key, status, submitted_at, reviewed_at, reviewer_notes`

func (r *postgresJoinRequestRepository) Create(ctx context.Context, jr *models.JoinRequest) error {
	query := `
		INSERT INTO join_requests (tournament_id, sport_event_id, user_id, sport, player_name, gender, mobile_no, roles,
			partner_name, partner_gender, partner_mobile_no, additional_info,
			payment_proof_url, payment_proof_key, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id, submitted_at`

	err := r.db.QueryRowContext(ctx, query,
		jr.TournamentID,
		jr.SportEventID,
		jr.UserID,
		jr.Sport,
		jr.PlayerName,
		jr.Gender,
		jr.MobileNo,
		pq.Array(jr.Roles),
		jr.PartnerName,
		jr.PartnerGender,
		jr.PartnerMobileNo,
		jr.AdditionalInfo,
		jr.PaymentProofURL,
		jr.PaymentProofKey,
		jr.Status,
	).Scan(&jr.ID, &jr.SubmittedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505": // unique_violation
				// Partial unique index on (user_id, sport_event_id) WHERE
				// status <> 'rejected': the storage-level duplicate guard.
				if pqErr.Constraint == "uq_join_requests_active" {
					return ErrJoinRequestConflict
				}
			case "23503": // foreign_key_violation
				switch pqErr.Constraint {
				case "join_requests_user_id_fkey":
					return ErrJoinRequestUserInvalid
				case "join_requests_sport_event_id_fkey":
					return ErrJoinRequestEventInvalid
				}
			}
		}
		return fmt.Errorf("failed to create join request: %w", err)
	}
	return nil
}

func (r *postgresJoinRequestRepository) scanJoinRequest(rowScanner interface {
	Scan(dest ...interface{}) error
}, jr *models.JoinRequest) error {
	return rowScanner.Scan(
		&jr.ID,
		&jr.TournamentID,
		&jr.SportEventID,
		&jr.UserID,
		&jr.Sport,
		&jr.PlayerName,
		&jr.Gender,
		&jr.MobileNo,
		pq.Array(&jr.Roles),
		&jr.PartnerName,
		&jr.PartnerGender,
		&jr.PartnerMobileNo,
		&jr.AdditionalInfo,
		&jr.PaymentProofURL,
		&jr.PaymentProofKey,
		&jr.Status,
		&jr.SubmittedAt,
		&jr.ReviewedAt,
		&jr.ReviewerNotes,
	)
}

func (r *postgresJoinRequestRepository) FindByID(ctx context.Context, id int) (*models.JoinRequest, error) {
	query := fmt.Sprintf(`SELECT %s FROM join_requests WHERE id = $1`, joinRequestColumns)

	jr := &models.JoinRequest{}
	err := r.scanJoinRequest(r.db.QueryRowContext(ctx, query, id), jr)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrJoinRequestNotFound
		}
		return nil, fmt.Errorf("failed to find join request: %w", err)
	}
	return jr, nil
}

func (r *postgresJoinRequestRepository) ListByTournament(ctx context.Context, tournamentID int, statusFilter *models.JoinRequestStatus) ([]*models.JoinRequest, error) {
	var queryBuilder strings.Builder
	args := []interface{}{tournamentID}

	queryBuilder.WriteString(fmt.Sprintf(`SELECT %s FROM join_requests WHERE tournament_id = $1`, joinRequestColumns))
	if statusFilter != nil {
		queryBuilder.WriteString(" AND status = $2")
		args = append(args, *statusFilter)
	}
	queryBuilder.WriteString(" ORDER BY submitted_at ASC")

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list join requests: %w", err)
	}
	defer rows.Close()

	requests := make([]*models.JoinRequest, 0)
	for rows.Next() {
		jr := &models.JoinRequest{}
		if err := r.scanJoinRequest(rows, jr); err != nil {
			return nil, fmt.Errorf("failed to scan join request row: %w", err)
		}
		requests = append(requests, jr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating join request rows: %w", err)
	}
	return requests, nil
}

func (r *postgresJoinRequestRepository) UpdateStatusIfPending(ctx context.Context, id int, status models.JoinRequestStatus, reviewerNotes *string) (bool, error) {
	query := `
		UPDATE join_requests
		SET status = $1, reviewer_notes = $2, reviewed_at = NOW()
		WHERE id = $3 AND status = 'pending'`

	result, err := r.db.ExecContext(ctx, query, status, reviewerNotes, id)
	if err != nil {
		return false, fmt.Errorf("failed to update join request status: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check affected rows for join request status update: %w", err)
	}
	return rowsAffected == 1, nil
}
