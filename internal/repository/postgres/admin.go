package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/avc/accshop/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// AdminRepository реализует domain.AdminRepository
type AdminRepository struct {
	db DBTX
}

// NewAdminRepository создает новый AdminRepository
func NewAdminRepository(db DBTX) *AdminRepository {
	return &AdminRepository{db: db}
}

// CreateAdmin создает администратора
func (r *AdminRepository) CreateAdmin(ctx context.Context, login, passwordHash string) (*domain.Admin, error) {
	admin := &domain.Admin{
		Login:        login,
		PasswordHash: passwordHash,
	}

	err := r.db.QueryRow(ctx,
		`INSERT INTO admins (login, password_hash)
		 VALUES ($1, $2)
		 RETURNING id, created_at`,
		login, passwordHash,
	).Scan(&admin.ID, &admin.CreatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrAdminExists
		}
		return nil, fmt.Errorf("repository: failed to create admin %q: %w", login, err)
	}

	return admin, nil
}

// GetAdminByLogin получает администратора по логину
func (r *AdminRepository) GetAdminByLogin(ctx context.Context, login string) (*domain.Admin, error) {
	admin := &domain.Admin{}

	err := r.db.QueryRow(ctx,
		`SELECT id, login, password_hash, created_at
		 FROM admins
		 WHERE login = $1`,
		login,
	).Scan(&admin.ID, &admin.Login, &admin.PasswordHash, &admin.CreatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAdminNotFound
		}
		return nil, fmt.Errorf("repository: failed to get admin %q: %w", login, err)
	}

	return admin, nil
}
