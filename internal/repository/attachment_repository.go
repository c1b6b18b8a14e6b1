package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/hostel-complaint-service/internal/domain"
)

// AttachmentRepository persists attachment metadata for complaints and actions.
type AttachmentRepository interface {
	CreateForComplaint(ctx context.Context, complaintID string, attachment *domain.ComplaintAttachment) error
	CreateForAction(ctx context.Context, actionID string, attachment *domain.ComplaintAttachment) error
	ListByComplaint(ctx context.Context, complaintID string) ([]domain.ComplaintAttachment, error)
	ListByAction(ctx context.Context, actionID string) ([]domain.ComplaintAttachment, error)
}

type attachmentRepository struct {
	pool *pgxpool.Pool
}

// NewAttachmentRepository constructs repository.
func NewAttachmentRepository(pool *pgxpool.Pool) AttachmentRepository {
	return &attachmentRepository{pool: pool}
}

func (r *attachmentRepository) CreateForComplaint(ctx context.Context, complaintID string, attachment *domain.ComplaintAttachment) error {
	const query = `
        INSERT INTO complaint_attachments (complaint_id, file_name, size_bytes, mime_type, url)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		complaintID,
		attachment.FileName,
		attachment.SizeBytes,
		attachment.MimeType,
		attachment.URL,
	).Scan(&attachment.ID, &attachment.CreatedAt)
}

func (r *attachmentRepository) CreateForAction(ctx context.Context, actionID string, attachment *domain.ComplaintAttachment) error {
	const query = `
        INSERT INTO complaint_attachments (action_id, file_name, size_bytes, mime_type, url)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		actionID,
		attachment.FileName,
		attachment.SizeBytes,
		attachment.MimeType,
		attachment.URL,
	).Scan(&attachment.ID, &attachment.CreatedAt)
}

func (r *attachmentRepository) ListByComplaint(ctx context.Context, complaintID string) ([]domain.ComplaintAttachment, error) {
	const query = `
        SELECT id, file_name, size_bytes, mime_type, url, created_at
        FROM complaint_attachments WHERE complaint_id=$1 ORDER BY created_at ASC`
	return r.list(ctx, query, complaintID)
}

func (r *attachmentRepository) ListByAction(ctx context.Context, actionID string) ([]domain.ComplaintAttachment, error) {
	const query = `
        SELECT id, file_name, size_bytes, mime_type, url, created_at
        FROM complaint_attachments WHERE action_id=$1 ORDER BY created_at ASC`
	return r.list(ctx, query, actionID)
}

func (r *attachmentRepository) list(ctx context.Context, query string, arg any) ([]domain.ComplaintAttachment, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAttachments(rows)
}

func scanAttachments(rows pgx.Rows) ([]domain.ComplaintAttachment, error) {
	var result []domain.ComplaintAttachment
	for rows.Next() {
		var attachment domain.ComplaintAttachment
		if err := rows.Scan(
			&attachment.ID,
			&attachment.FileName,
			&attachment.SizeBytes,
			&attachment.MimeType,
			&attachment.URL,
			&attachment.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, attachment)
	}
	return result, rows.Err()
}
