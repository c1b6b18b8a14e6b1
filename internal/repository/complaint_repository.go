package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/hostel-complaint-service/internal/domain"
)

// ComplaintQuery captures server-side listing parameters.
type ComplaintQuery struct {
	StudentID   *string
	Statuses    []domain.ComplaintStatus
	Categories  []domain.ComplaintCategory
	Priorities  []domain.ComplaintPriority
	SearchTerm  *string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Limit       int
	Offset      int
}

// ComplaintRepository encapsulates complaint persistence.
type ComplaintRepository interface {
	Create(ctx context.Context, complaint *domain.Complaint) error
	Update(ctx context.Context, complaint *domain.Complaint) error
	GetByID(ctx context.Context, id string) (*domain.Complaint, error)
	ExistsID(ctx context.Context, id string) (bool, error)
	ListByStudent(ctx context.Context, studentID string, limit, offset int) ([]domain.Complaint, error)
	ListWithQuery(ctx context.Context, query ComplaintQuery) ([]domain.Complaint, error)
	CountByStatus(ctx context.Context) (map[domain.ComplaintStatus]int64, error)
}

type complaintRepository struct {
	pool *pgxpool.Pool
}

// NewComplaintRepository instantiates repository.
func NewComplaintRepository(pool *pgxpool.Pool) ComplaintRepository {
	return &complaintRepository{pool: pool}
}

func (r *complaintRepository) Create(ctx context.Context, complaint *domain.Complaint) error {
	const query = `
        INSERT INTO complaints (id, title, description, category, priority, student_id, student_name,
            student_email, student_phone, roll_number, branch, semester, status, is_anonymous,
            action_count, forwarded_to, created_at, updated_at, sla_deadline)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)`
	_, err := r.pool.Exec(ctx, query,
		complaint.ID,
		complaint.Title,
		complaint.Description,
		complaint.Category,
		complaint.Priority,
		complaint.StudentID,
		complaint.StudentName,
		complaint.StudentEmail,
		complaint.StudentPhone,
		complaint.RollNumber,
		complaint.Branch,
		complaint.Semester,
		complaint.Status,
		complaint.IsAnonymous,
		complaint.ActionCount,
		complaint.ForwardedTo,
		complaint.CreatedAt,
		complaint.UpdatedAt,
		complaint.SLADeadline,
	)
	return err
}

func (r *complaintRepository) Update(ctx context.Context, complaint *domain.Complaint) error {
	const query = `
        UPDATE complaints SET status=$1, action_count=$2, forwarded_to=$3, updated_at=$4, resolved_at=$5
        WHERE id=$6`
	cmd, err := r.pool.Exec(ctx, query,
		complaint.Status,
		complaint.ActionCount,
		complaint.ForwardedTo,
		complaint.UpdatedAt,
		complaint.ResolvedAt,
		complaint.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *complaintRepository) GetByID(ctx context.Context, id string) (*domain.Complaint, error) {
	const query = `
        SELECT id, title, description, category, priority, student_id, student_name, student_email,
               student_phone, roll_number, branch, semester, status, is_anonymous, action_count,
               forwarded_to, created_at, updated_at, sla_deadline, resolved_at
        FROM complaints WHERE id=$1`
	var complaint domain.Complaint
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&complaint.ID,
		&complaint.Title,
		&complaint.Description,
		&complaint.Category,
		&complaint.Priority,
		&complaint.StudentID,
		&complaint.StudentName,
		&complaint.StudentEmail,
		&complaint.StudentPhone,
		&complaint.RollNumber,
		&complaint.Branch,
		&complaint.Semester,
		&complaint.Status,
		&complaint.IsAnonymous,
		&complaint.ActionCount,
		&complaint.ForwardedTo,
		&complaint.CreatedAt,
		&complaint.UpdatedAt,
		&complaint.SLADeadline,
		&complaint.ResolvedAt,
	); err != nil {
		return nil, err
	}
	return &complaint, nil
}

func (r *complaintRepository) ExistsID(ctx context.Context, id string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM complaints WHERE id=$1)`
	var exists bool
	if err := r.pool.QueryRow(ctx, query, id).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *complaintRepository) ListByStudent(ctx context.Context, studentID string, limit, offset int) ([]domain.Complaint, error) {
	query := ComplaintQuery{
		StudentID: &studentID,
		Limit:     limit,
		Offset:    offset,
	}
	return r.ListWithQuery(ctx, query)
}

func (r *complaintRepository) ListWithQuery(ctx context.Context, filter ComplaintQuery) ([]domain.Complaint, error) {
	base := `SELECT id, title, description, category, priority, student_id, student_name, student_email,
                    student_phone, roll_number, branch, semester, status, is_anonymous, action_count,
                    forwarded_to, created_at, updated_at, sla_deadline, resolved_at
             FROM complaints`
	clauses := []string{"1=1"}
	args := []any{}

	if filter.StudentID != nil {
		args = append(args, *filter.StudentID)
		clauses = append(clauses, fmt.Sprintf("student_id=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Categories) > 0 {
		placeholders := make([]string, len(filter.Categories))
		for i, category := range filter.Categories {
			args = append(args, category)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("category IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Priorities) > 0 {
		placeholders := make([]string, len(filter.Priorities))
		for i, priority := range filter.Priorities {
			args = append(args, priority)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("priority IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.CreatedFrom != nil {
		args = append(args, *filter.CreatedFrom)
		clauses = append(clauses, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.CreatedTo != nil {
		args = append(args, *filter.CreatedTo)
		clauses = append(clauses, fmt.Sprintf("created_at <= $%d", len(args)))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.SearchTerm)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(title) LIKE %s OR LOWER(id) LIKE %s OR LOWER(student_name) LIKE %s)", placeholder, placeholder, placeholder))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanComplaints(rows)
}

func (r *complaintRepository) CountByStatus(ctx context.Context) (map[domain.ComplaintStatus]int64, error) {
	const query = `SELECT status, COUNT(*) FROM complaints GROUP BY status`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.ComplaintStatus]int64)
	for rows.Next() {
		var status domain.ComplaintStatus
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

func scanComplaints(rows pgx.Rows) ([]domain.Complaint, error) {
	var result []domain.Complaint
	for rows.Next() {
		var complaint domain.Complaint
		if err := rows.Scan(
			&complaint.ID,
			&complaint.Title,
			&complaint.Description,
			&complaint.Category,
			&complaint.Priority,
			&complaint.StudentID,
			&complaint.StudentName,
			&complaint.StudentEmail,
			&complaint.StudentPhone,
			&complaint.RollNumber,
			&complaint.Branch,
			&complaint.Semester,
			&complaint.Status,
			&complaint.IsAnonymous,
			&complaint.ActionCount,
			&complaint.ForwardedTo,
			&complaint.CreatedAt,
			&complaint.UpdatedAt,
			&complaint.SLADeadline,
			&complaint.ResolvedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, complaint)
	}
	return result, rows.Err()
}
