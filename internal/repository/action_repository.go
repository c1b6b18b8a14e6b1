package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/hostel-complaint-service/internal/domain"
)

// ActionRepository manages the append-only complaint action log.
type ActionRepository interface {
	Create(ctx context.Context, action *domain.ComplaintAction) error
	ListByComplaint(ctx context.Context, complaintID string) ([]domain.ComplaintAction, error)
	CountByComplaint(ctx context.Context, complaintID string) (int, error)
}

type actionRepository struct {
	pool *pgxpool.Pool
}

// NewActionRepository builds repository.
func NewActionRepository(pool *pgxpool.Pool) ActionRepository {
	return &actionRepository{pool: pool}
}

func (r *actionRepository) Create(ctx context.Context, action *domain.ComplaintAction) error {
	const query = `
        INSERT INTO complaint_actions (complaint_id, actor_name, actor_role, action_type, comment, created_at)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id`
	return r.pool.QueryRow(ctx, query,
		action.ComplaintID,
		action.ActorName,
		action.ActorRole,
		action.ActionType,
		action.Comment,
		action.Timestamp,
	).Scan(&action.ID)
}

func (r *actionRepository) ListByComplaint(ctx context.Context, complaintID string) ([]domain.ComplaintAction, error) {
	const query = `
        SELECT id, complaint_id, actor_name, actor_role, action_type, comment, created_at
        FROM complaint_actions WHERE complaint_id=$1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, complaintID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanActions(rows)
}

func (r *actionRepository) CountByComplaint(ctx context.Context, complaintID string) (int, error) {
	const query = `SELECT COUNT(*) FROM complaint_actions WHERE complaint_id=$1`
	var count int
	if err := r.pool.QueryRow(ctx, query, complaintID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func scanActions(rows pgx.Rows) ([]domain.ComplaintAction, error) {
	var result []domain.ComplaintAction
	for rows.Next() {
		var action domain.ComplaintAction
		if err := rows.Scan(
			&action.ID,
			&action.ComplaintID,
			&action.ActorName,
			&action.ActorRole,
			&action.ActionType,
			&action.Comment,
			&action.Timestamp,
		); err != nil {
			return nil, err
		}
		result = append(result, action)
	}
	return result, rows.Err()
}
