package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/avc/accshop/internal/domain"
	"github.com/avc/accshop/internal/utils/vault"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubOrderRepo отдает заранее заданные отчетные данные
type stubOrderRepo struct {
	fakeOrderRepo
	paid      []*domain.PaidOrder
	revenue   int64
	purchases []*domain.Purchase
	err       error
}

func (r *stubOrderRepo) ListPaidOrders(ctx context.Context) ([]*domain.PaidOrder, error) {
	return r.paid, r.err
}

func (r *stubOrderRepo) TotalRevenue(ctx context.Context) (int64, error) {
	return r.revenue, r.err
}

func (r *stubOrderRepo) GetPurchaseHistory(ctx context.Context, buyerID int64) ([]*domain.Purchase, error) {
	return r.purchases, r.err
}

func newTestReports(t *testing.T, repo *stubOrderRepo) (*Reports, *vault.Vault) {
	t.Helper()
	v, err := vault.New(testVaultKey)
	require.NoError(t, err)
	return NewReports(repo, v, zap.NewNop()), v
}

func TestReports_SalesHistory(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		repo := &stubOrderRepo{
			paid: []*domain.PaidOrder{
				{Order: domain.Order{ID: "SHOP1", Amount: 90000, Status: domain.OrderStatusPaid}, AccountName: "Netflix"},
			},
		}
		reports, _ := newTestReports(t, repo)

		orders, err := reports.SalesHistory(ctx)
		require.NoError(t, err)
		require.Len(t, orders, 1)
		assert.Equal(t, "Netflix", orders[0].AccountName)
	})

	t.Run("Repository error", func(t *testing.T) {
		repo := &stubOrderRepo{err: errors.New("db down")}
		reports, _ := newTestReports(t, repo)

		_, err := reports.SalesHistory(ctx)
		assert.Error(t, err)
	})
}

func TestReports_TotalRevenue(t *testing.T) {
	ctx := context.Background()

	repo := &stubOrderRepo{revenue: 140000}
	reports, _ := newTestReports(t, repo)

	total, err := reports.TotalRevenue(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(140000), total)
}

func TestReports_PurchaseHistory(t *testing.T) {
	ctx := context.Background()

	t.Run("Decrypts credentials", func(t *testing.T) {
		repo := &stubOrderRepo{}
		reports, v := newTestReports(t, repo)

		username, err := v.Encrypt("user@mail.com")
		require.NoError(t, err)
		pass, err := v.Encrypt("secret")
		require.NoError(t, err)
		repo.purchases = []*domain.Purchase{
			{AccountName: "Netflix", UsernameEnc: username, PasswordEnc: pass, CreatedAt: time.Now()},
		}

		records, err := reports.PurchaseHistory(ctx, 555001)
		require.NoError(t, err)
		require.Len(t, records, 1)
		require.NotNil(t, records[0].Credentials)
		assert.Equal(t, "user@mail.com", records[0].Credentials.Username)
		assert.Equal(t, "secret", records[0].Credentials.Password)
	})

	t.Run("Corrupt record does not hide others", func(t *testing.T) {
		repo := &stubOrderRepo{}
		reports, v := newTestReports(t, repo)

		username, err := v.Encrypt("user@mail.com")
		require.NoError(t, err)
		pass, err := v.Encrypt("secret")
		require.NoError(t, err)
		repo.purchases = []*domain.Purchase{
			{AccountName: "Broken", UsernameEnc: "garbage", PasswordEnc: "garbage"},
			{AccountName: "Netflix", UsernameEnc: username, PasswordEnc: pass},
		}

		records, err := reports.PurchaseHistory(ctx, 555001)
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Nil(t, records[0].Credentials)
		assert.Equal(t, "Broken", records[0].AccountName)
		require.NotNil(t, records[1].Credentials)
	})

	t.Run("Empty history", func(t *testing.T) {
		repo := &stubOrderRepo{}
		reports, _ := newTestReports(t, repo)

		records, err := reports.PurchaseHistory(ctx, 555001)
		require.NoError(t, err)
		assert.Empty(t, records)
	})
}
