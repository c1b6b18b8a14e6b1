package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/hostel-complaint-service/internal/domain"
)

// StudentRepository defines persistence access for student accounts.
type StudentRepository interface {
	Create(ctx context.Context, student *domain.Student) error
	Update(ctx context.Context, student *domain.Student) error
	GetByID(ctx context.Context, id string) (*domain.Student, error)
	GetByEmail(ctx context.Context, email string) (*domain.Student, error)
}

type studentRepository struct {
	pool *pgxpool.Pool
}

// NewStudentRepository returns a Postgres-backed implementation.
func NewStudentRepository(pool *pgxpool.Pool) StudentRepository {
	return &studentRepository{pool: pool}
}

func (r *studentRepository) Create(ctx context.Context, student *domain.Student) error {
	const query = `
        INSERT INTO students (name, email, roll_number, branch, semester, password_hash, status)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		student.Name,
		student.Email,
		student.RollNumber,
		student.Branch,
		student.Semester,
		student.PasswordHash,
		student.Status,
	).Scan(&student.ID, &student.CreatedAt, &student.UpdatedAt)
}

func (r *studentRepository) Update(ctx context.Context, student *domain.Student) error {
	const query = `
        UPDATE students SET name=$1, email=$2, roll_number=$3, branch=$4, semester=$5,
            password_hash=$6, status=$7, updated_at=NOW()
        WHERE id=$8`

	cmd, err := r.pool.Exec(ctx, query,
		student.Name,
		student.Email,
		student.RollNumber,
		student.Branch,
		student.Semester,
		student.PasswordHash,
		student.Status,
		student.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *studentRepository) GetByID(ctx context.Context, id string) (*domain.Student, error) {
	const query = `
        SELECT id, name, email, roll_number, branch, semester, password_hash, status, created_at, updated_at
        FROM students WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *studentRepository) GetByEmail(ctx context.Context, email string) (*domain.Student, error) {
	const query = `
        SELECT id, name, email, roll_number, branch, semester, password_hash, status, created_at, updated_at
        FROM students WHERE email=$1`
	return r.fetchSingle(ctx, query, email)
}

func (r *studentRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Student, error) {
	var student domain.Student
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&student.ID,
		&student.Name,
		&student.Email,
		&student.RollNumber,
		&student.Branch,
		&student.Semester,
		&student.PasswordHash,
		&student.Status,
		&student.CreatedAt,
		&student.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &student, nil
}
