package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/hostel-complaint-service/internal/domain"
)

// AdminRepository defines persistence access for admin members.
type AdminRepository interface {
	Create(ctx context.Context, admin *domain.AdminMember) error
	Update(ctx context.Context, admin *domain.AdminMember) error
	GetByID(ctx context.Context, id string) (*domain.AdminMember, error)
	GetByEmail(ctx context.Context, email string) (*domain.AdminMember, error)
}

type adminRepository struct {
	pool *pgxpool.Pool
}

// NewAdminRepository returns a Postgres-backed implementation.
func NewAdminRepository(pool *pgxpool.Pool) AdminRepository {
	return &adminRepository{pool: pool}
}

func (r *adminRepository) Create(ctx context.Context, admin *domain.AdminMember) error {
	const query = `
        INSERT INTO admin_members (name, email, password_hash, role, active)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		admin.Name,
		admin.Email,
		admin.PasswordHash,
		admin.Role,
		admin.Active,
	).Scan(&admin.ID, &admin.CreatedAt, &admin.UpdatedAt)
}

func (r *adminRepository) Update(ctx context.Context, admin *domain.AdminMember) error {
	const query = `
        UPDATE admin_members SET name=$1, email=$2, password_hash=$3, role=$4, active=$5, updated_at=NOW()
        WHERE id=$6`

	cmd, err := r.pool.Exec(ctx, query,
		admin.Name,
		admin.Email,
		admin.PasswordHash,
		admin.Role,
		admin.Active,
		admin.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *adminRepository) GetByID(ctx context.Context, id string) (*domain.AdminMember, error) {
	const query = `
        SELECT id, name, email, password_hash, role, active, created_at, updated_at
        FROM admin_members WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *adminRepository) GetByEmail(ctx context.Context, email string) (*domain.AdminMember, error) {
	const query = `
        SELECT id, name, email, password_hash, role, active, created_at, updated_at
        FROM admin_members WHERE email=$1`
	return r.fetchSingle(ctx, query, email)
}

func (r *adminRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.AdminMember, error) {
	var admin domain.AdminMember
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&admin.ID,
		&admin.Name,
		&admin.Email,
		&admin.PasswordHash,
		&admin.Role,
		&admin.Active,
		&admin.CreatedAt,
		&admin.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &admin, nil
}
