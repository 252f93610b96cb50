package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/avc/accshop/internal/domain"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderRepository_CreateOrder(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOrderRepository(mock)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		order := &domain.Order{
			ID:        "SHOP17000000000001234",
			BuyerID:   123456789,
			AccountID: 7,
			Amount:    90000,
			Method:    domain.PaymentMethodBank,
		}
		now := time.Now()

		rows := pgxmock.NewRows([]string{"created_at"}).AddRow(now)

		mock.ExpectQuery(`INSERT INTO orders`).
			WithArgs(order.ID, order.BuyerID, order.AccountID, order.Amount,
				domain.OrderStatusPending, order.Method, order.CouponCode).
			WillReturnRows(rows)

		err := repo.CreateOrder(ctx, order)
		require.NoError(t, err)
		assert.Equal(t, domain.OrderStatusPending, order.Status)
		assert.Equal(t, now, order.CreatedAt)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Database error", func(t *testing.T) {
		order := &domain.Order{ID: "SHOP1", BuyerID: 1, AccountID: 1, Amount: 1000, Method: domain.PaymentMethodBank}

		mock.ExpectQuery(`INSERT INTO orders`).
			WithArgs(order.ID, order.BuyerID, order.AccountID, order.Amount,
				domain.OrderStatusPending, order.Method, order.CouponCode).
			WillReturnError(errors.New("connection refused"))

		err := repo.CreateOrder(ctx, order)
		assert.Error(t, err)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestOrderRepository_SetOrderStatus(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOrderRepository(mock)
	ctx := context.Background()

	t.Run("Pending order updated", func(t *testing.T) {
		mock.ExpectExec(`UPDATE orders`).
			WithArgs(domain.OrderStatusPaid, "SHOP1", domain.OrderStatusPending).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		err := repo.SetOrderStatus(ctx, "SHOP1", domain.OrderStatusPaid)
		assert.NoError(t, err)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Finalized order untouched", func(t *testing.T) {
		// Запоздавшая отмена уже оплаченного заказа не меняет ничего
		mock.ExpectExec(`UPDATE orders`).
			WithArgs(domain.OrderStatusCancelled, "SHOP1", domain.OrderStatusPending).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := repo.SetOrderStatus(ctx, "SHOP1", domain.OrderStatusCancelled)
		assert.ErrorIs(t, err, domain.ErrOrderNotFound)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestOrderRepository_ListPaidOrders(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOrderRepository(mock)
	ctx := context.Background()

	columns := []string{"id", "buyer_id", "account_id", "amount", "status", "payment_method", "coupon_code", "created_at", "account_name"}

	t.Run("Success", func(t *testing.T) {
		now := time.Now()
		code := "SALE10"
		rows := pgxmock.NewRows(columns).
			AddRow("SHOP2", int64(2), int64(8), int64(50000), domain.OrderStatusPaid, domain.PaymentMethodCard, (*string)(nil), now, "Spotify").
			AddRow("SHOP1", int64(1), int64(7), int64(90000), domain.OrderStatusPaid, domain.PaymentMethodBank, &code, now.Add(-time.Hour), "")

		mock.ExpectQuery(`LEFT JOIN accounts`).
			WithArgs(domain.OrderStatusPaid).
			WillReturnRows(rows)

		orders, err := repo.ListPaidOrders(ctx)
		require.NoError(t, err)
		require.Len(t, orders, 2)
		assert.Equal(t, "Spotify", orders[0].AccountName)
		assert.Nil(t, orders[0].CouponCode)
		// Аккаунт удален после продажи, имя пустое
		assert.Equal(t, "", orders[1].AccountName)
		require.NotNil(t, orders[1].CouponCode)
		assert.Equal(t, "SALE10", *orders[1].CouponCode)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestOrderRepository_TotalRevenue(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOrderRepository(mock)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		rows := pgxmock.NewRows([]string{"coalesce"}).AddRow(int64(140000))

		mock.ExpectQuery(`SELECT COALESCE\(SUM\(amount\), 0\)`).
			WithArgs(domain.OrderStatusPaid).
			WillReturnRows(rows)

		total, err := repo.TotalRevenue(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(140000), total)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("No sales", func(t *testing.T) {
		rows := pgxmock.NewRows([]string{"coalesce"}).AddRow(int64(0))

		mock.ExpectQuery(`SELECT COALESCE\(SUM\(amount\), 0\)`).
			WithArgs(domain.OrderStatusPaid).
			WillReturnRows(rows)

		total, err := repo.TotalRevenue(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(0), total)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestOrderRepository_GetPurchaseHistory(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOrderRepository(mock)
	ctx := context.Background()

	columns := []string{"name", "username_enc", "password_enc", "created_at"}

	t.Run("Success", func(t *testing.T) {
		now := time.Now()
		rows := pgxmock.NewRows(columns).
			AddRow("Netflix Premium", "aa:bb", "cc:dd", now)

		mock.ExpectQuery(`JOIN accounts`).
			WithArgs(int64(123456789), domain.OrderStatusPaid).
			WillReturnRows(rows)

		purchases, err := repo.GetPurchaseHistory(ctx, 123456789)
		require.NoError(t, err)
		require.Len(t, purchases, 1)
		assert.Equal(t, "Netflix Premium", purchases[0].AccountName)
		assert.Equal(t, "aa:bb", purchases[0].UsernameEnc)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("No purchases", func(t *testing.T) {
		mock.ExpectQuery(`JOIN accounts`).
			WithArgs(int64(55), domain.OrderStatusPaid).
			WillReturnRows(pgxmock.NewRows(columns))

		purchases, err := repo.GetPurchaseHistory(ctx, 55)
		require.NoError(t, err)
		assert.Empty(t, purchases)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
