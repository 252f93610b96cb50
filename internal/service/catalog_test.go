package service

import (
	"context"
	"testing"

	"github.com/avc/accshop/internal/domain"
	"github.com/avc/accshop/internal/utils/vault"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCatalog(t *testing.T) (*Catalog, *fakeAccountRepo, *vault.Vault) {
	t.Helper()
	v, err := vault.New(testVaultKey)
	require.NoError(t, err)
	repo := newFakeAccountRepo()
	return NewCatalog(repo, v), repo, v
}

func TestCatalog_AddAccount(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		catalog, _, v := newTestCatalog(t)

		account, err := catalog.AddAccount(ctx, AddAccountInput{
			Name:     "Netflix Premium",
			Price:    100000,
			Category: "netflix",
			Username: "user@mail.com",
			Password: "secret",
		})
		require.NoError(t, err)
		assert.Equal(t, domain.AccountStatusAvailable, account.Status)
		assert.Equal(t, "NETFLIX", account.Category)
		assert.NotNil(t, account.ImageURLs)

		// Учетные данные хранятся только в зашифрованном виде
		assert.NotEqual(t, "user@mail.com", account.UsernameEnc)
		assert.NotEqual(t, "secret", account.PasswordEnc)

		username, err := v.Decrypt(account.UsernameEnc)
		require.NoError(t, err)
		assert.Equal(t, "user@mail.com", username)
		pass, err := v.Decrypt(account.PasswordEnc)
		require.NoError(t, err)
		assert.Equal(t, "secret", pass)
	})

	t.Run("Missing required fields", func(t *testing.T) {
		catalog, _, _ := newTestCatalog(t)

		tests := []AddAccountInput{
			{Price: 100, Username: "u", Password: "p"},
			{Name: "X", Price: 100, Password: "p"},
			{Name: "X", Price: 100, Username: "u"},
			{Name: "X", Price: 0, Username: "u", Password: "p"},
			{Name: "X", Price: -5, Username: "u", Password: "p"},
		}
		for _, input := range tests {
			_, err := catalog.AddAccount(ctx, input)
			assert.ErrorIs(t, err, ErrInvalidInput)
		}
	})
}

func TestCatalog_ListAvailable(t *testing.T) {
	ctx := context.Background()

	t.Run("Category normalized", func(t *testing.T) {
		catalog, repo, _ := newTestCatalog(t)
		err := repo.CreateAccount(ctx, &domain.Account{
			ID: 1, Name: "Netflix", Price: 100, Category: "NETFLIX",
			Status: domain.AccountStatusAvailable,
		})
		require.NoError(t, err)

		// Фейк не фильтрует по категории, проверяем только прохождение вызова
		accounts, err := catalog.ListAvailable(ctx, " netflix ")
		require.NoError(t, err)
		assert.Len(t, accounts, 1)
	})
}

func TestCatalog_DeleteAccount(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		catalog, repo, _ := newTestCatalog(t)
		err := repo.CreateAccount(ctx, &domain.Account{ID: 1, Name: "X", Price: 100, Status: domain.AccountStatusAvailable})
		require.NoError(t, err)

		require.NoError(t, catalog.DeleteAccount(ctx, 1))

		_, err = catalog.GetAccount(ctx, 1)
		assert.ErrorIs(t, err, domain.ErrAccountNotFound)
	})

	t.Run("Not found", func(t *testing.T) {
		catalog, _, _ := newTestCatalog(t)

		err := catalog.DeleteAccount(ctx, 404)
		assert.ErrorIs(t, err, domain.ErrAccountNotFound)
	})
}
