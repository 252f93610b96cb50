package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/avc/accshop/internal/domain"
	"github.com/avc/accshop/internal/utils/vault"
)

// AddAccountInput описывает параметры добавления аккаунта на склад
type AddAccountInput struct {
	Name        string   `json:"name"`
	Price       int64    `json:"price"`
	Description string   `json:"description"`
	ImageURLs   []string `json:"image_urls"`
	Category    string   `json:"category"`
	Username    string   `json:"username"`
	Password    string   `json:"password"`
}

// Catalog реализует операции над складом аккаунтов
type Catalog struct {
	accounts domain.AccountRepository
	vault    *vault.Vault
}

// NewCatalog создает новый Catalog
func NewCatalog(accounts domain.AccountRepository, credVault *vault.Vault) *Catalog {
	return &Catalog{
		accounts: accounts,
		vault:    credVault,
	}
}

// AddAccount шифрует учетные данные и добавляет аккаунт на склад
func (s *Catalog) AddAccount(ctx context.Context, input AddAccountInput) (*domain.Account, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Username = strings.TrimSpace(input.Username)
	input.Password = strings.TrimSpace(input.Password)

	if input.Name == "" || input.Username == "" || input.Password == "" || input.Price <= 0 {
		return nil, ErrInvalidInput
	}

	usernameEnc, err := s.vault.Encrypt(input.Username)
	if err != nil {
		return nil, fmt.Errorf("catalog: failed to encrypt username: %w", err)
	}
	passwordEnc, err := s.vault.Encrypt(input.Password)
	if err != nil {
		return nil, fmt.Errorf("catalog: failed to encrypt password: %w", err)
	}

	account := &domain.Account{
		Name:        input.Name,
		Price:       input.Price,
		Description: input.Description,
		ImageURLs:   input.ImageURLs,
		Category:    strings.ToUpper(strings.TrimSpace(input.Category)),
		UsernameEnc: usernameEnc,
		PasswordEnc: passwordEnc,
		Status:      domain.AccountStatusAvailable,
	}
	if account.ImageURLs == nil {
		account.ImageURLs = []string{}
	}

	if err := s.accounts.CreateAccount(ctx, account); err != nil {
		return nil, fmt.Errorf("catalog: failed to add account: %w", err)
	}

	return account, nil
}

// ListAvailable возвращает доступные аккаунты, опционально по категории
func (s *Catalog) ListAvailable(ctx context.Context, category string) ([]*domain.Account, error) {
	accounts, err := s.accounts.ListAvailable(ctx, strings.ToUpper(strings.TrimSpace(category)))
	if err != nil {
		return nil, fmt.Errorf("catalog: failed to list accounts: %w", err)
	}
	return accounts, nil
}

// GetAccount возвращает аккаунт по ID
func (s *Catalog) GetAccount(ctx context.Context, id int64) (*domain.Account, error) {
	account, err := s.accounts.GetAccountByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return account, nil
}

// DeleteAccount удаляет аккаунт со склада вместе с его заказами
func (s *Catalog) DeleteAccount(ctx context.Context, id int64) error {
	if err := s.accounts.DeleteAccount(ctx, id); err != nil {
		return err
	}
	return nil
}
