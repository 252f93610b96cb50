package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/avc/accshop/internal/domain"
	"github.com/jackc/pgx/v5"
)

// AccountRepository реализует domain.AccountRepository
type AccountRepository struct {
	db DBTX
}

// NewAccountRepository создает новый AccountRepository
func NewAccountRepository(db DBTX) *AccountRepository {
	return &AccountRepository{db: db}
}

// CreateAccount добавляет новый аккаунт на склад
func (r *AccountRepository) CreateAccount(ctx context.Context, account *domain.Account) error {
	if account.Status == "" {
		account.Status = domain.AccountStatusAvailable
	}

	err := r.db.QueryRow(ctx,
		`INSERT INTO accounts (name, price, description, image_urls, category, username_enc, password_enc, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, added_at`,
		account.Name, account.Price, account.Description, account.ImageURLs,
		account.Category, account.UsernameEnc, account.PasswordEnc, account.Status,
	).Scan(&account.ID, &account.AddedAt)

	if err != nil {
		return fmt.Errorf("repository: failed to create account %q: %w", account.Name, err)
	}

	return nil
}

// GetAccountByID получает аккаунт по ID
func (r *AccountRepository) GetAccountByID(ctx context.Context, id int64) (*domain.Account, error) {
	account := &domain.Account{}

	err := r.db.QueryRow(ctx,
		`SELECT id, name, price, description, image_urls, category, username_enc, password_enc, status, added_at
		 FROM accounts
		 WHERE id = $1`,
		id,
	).Scan(&account.ID, &account.Name, &account.Price, &account.Description, &account.ImageURLs,
		&account.Category, &account.UsernameEnc, &account.PasswordEnc, &account.Status, &account.AddedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("repository: failed to get account %d: %w", id, err)
	}

	return account, nil
}

// ListAvailable получает доступные к продаже аккаунты, опционально по категории
func (r *AccountRepository) ListAvailable(ctx context.Context, category string) ([]*domain.Account, error) {
	query := `SELECT id, name, price, description, image_urls, category, username_enc, password_enc, status, added_at
		 FROM accounts
		 WHERE status = $1`
	args := []interface{}{domain.AccountStatusAvailable}

	if category != "" {
		query += ` AND category = $2`
		args = append(args, category)
	}
	query += ` ORDER BY added_at DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to list available accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*domain.Account
	for rows.Next() {
		account := &domain.Account{}
		err := rows.Scan(&account.ID, &account.Name, &account.Price, &account.Description, &account.ImageURLs,
			&account.Category, &account.UsernameEnc, &account.PasswordEnc, &account.Status, &account.AddedAt)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan account: %w", err)
		}
		accounts = append(accounts, account)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating accounts: %w", err)
	}

	return accounts, nil
}

// MarkSold атомарно переводит аккаунт из available в sold.
// Check-and-set по статусу гарантирует, что два конкурирующих пути
// оплаты не продадут один аккаунт дважды.
func (r *AccountRepository) MarkSold(ctx context.Context, id int64) error {
	result, err := r.db.Exec(ctx,
		`UPDATE accounts
		 SET status = $1
		 WHERE id = $2 AND status = $3`,
		domain.AccountStatusSold, id, domain.AccountStatusAvailable,
	)

	if err != nil {
		return fmt.Errorf("repository: failed to mark account %d sold: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		return domain.ErrAccountUnavailable
	}

	return nil
}

// DeleteAccount удаляет аккаунт. Заказы удаляются каскадно (FK).
func (r *AccountRepository) DeleteAccount(ctx context.Context, id int64) error {
	result, err := r.db.Exec(ctx,
		`DELETE FROM accounts WHERE id = $1`,
		id,
	)

	if err != nil {
		return fmt.Errorf("repository: failed to delete account %d: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}

	return nil
}
