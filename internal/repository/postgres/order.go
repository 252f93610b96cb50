package postgres

import (
	"context"
	"fmt"

	"github.com/avc/accshop/internal/domain"
)

// OrderRepository реализует domain.OrderRepository
type OrderRepository struct {
	db DBTX
}

// NewOrderRepository создает новый OrderRepository
func NewOrderRepository(db DBTX) *OrderRepository {
	return &OrderRepository{db: db}
}

// CreateOrder создает новый заказ в статусе pending
func (r *OrderRepository) CreateOrder(ctx context.Context, order *domain.Order) error {
	if order.Status == "" {
		order.Status = domain.OrderStatusPending
	}

	err := r.db.QueryRow(ctx,
		`INSERT INTO orders (id, buyer_id, account_id, amount, status, payment_method, coupon_code)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING created_at`,
		order.ID, order.BuyerID, order.AccountID, order.Amount, order.Status, order.Method, order.CouponCode,
	).Scan(&order.CreatedAt)

	if err != nil {
		return fmt.Errorf("repository: failed to create order %q: %w", order.ID, err)
	}

	return nil
}

// SetOrderStatus переводит pending-заказ в новый статус.
// Заказ в терминальном статусе не затрагивается: условие по статусу
// в WHERE защищает оплаченные заказы от запоздавших отмен.
func (r *OrderRepository) SetOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus) error {
	result, err := r.db.Exec(ctx,
		`UPDATE orders
		 SET status = $1
		 WHERE id = $2 AND status = $3`,
		status, orderID, domain.OrderStatusPending,
	)

	if err != nil {
		return fmt.Errorf("repository: failed to update order %q status: %w", orderID, err)
	}

	if result.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}

	return nil
}

// ListPaidOrders получает все оплаченные заказы с названием аккаунта.
// LEFT JOIN: аккаунт мог быть удален после продажи.
func (r *OrderRepository) ListPaidOrders(ctx context.Context) ([]*domain.PaidOrder, error) {
	rows, err := r.db.Query(ctx,
		`SELECT o.id, o.buyer_id, o.account_id, o.amount, o.status, o.payment_method, o.coupon_code, o.created_at,
		        COALESCE(a.name, '') AS account_name
		 FROM orders o
		 LEFT JOIN accounts a ON o.account_id = a.id
		 WHERE o.status = $1
		 ORDER BY o.created_at DESC`,
		domain.OrderStatusPaid,
	)

	if err != nil {
		return nil, fmt.Errorf("repository: failed to list paid orders: %w", err)
	}
	defer rows.Close()

	var orders []*domain.PaidOrder
	for rows.Next() {
		order := &domain.PaidOrder{}
		err := rows.Scan(&order.ID, &order.BuyerID, &order.AccountID, &order.Amount, &order.Status,
			&order.Method, &order.CouponCode, &order.CreatedAt, &order.AccountName)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan paid order: %w", err)
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating paid orders: %w", err)
	}

	return orders, nil
}

// TotalRevenue считает суммарную выручку по оплаченным заказам
func (r *OrderRepository) TotalRevenue(ctx context.Context) (int64, error) {
	var total int64

	err := r.db.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount), 0)
		 FROM orders
		 WHERE status = $1`,
		domain.OrderStatusPaid,
	).Scan(&total)

	if err != nil {
		return 0, fmt.Errorf("repository: failed to calculate total revenue: %w", err)
	}

	return total, nil
}

// GetPurchaseHistory получает купленные пользователем аккаунты
// вместе с зашифрованными учетными данными
func (r *OrderRepository) GetPurchaseHistory(ctx context.Context, buyerID int64) ([]*domain.Purchase, error) {
	rows, err := r.db.Query(ctx,
		`SELECT a.name, a.username_enc, a.password_enc, o.created_at
		 FROM orders o
		 JOIN accounts a ON o.account_id = a.id
		 WHERE o.buyer_id = $1 AND o.status = $2
		 ORDER BY o.created_at DESC`,
		buyerID, domain.OrderStatusPaid,
	)

	if err != nil {
		return nil, fmt.Errorf("repository: failed to get purchase history for buyer %d: %w", buyerID, err)
	}
	defer rows.Close()

	var purchases []*domain.Purchase
	for rows.Next() {
		purchase := &domain.Purchase{}
		err := rows.Scan(&purchase.AccountName, &purchase.UsernameEnc, &purchase.PasswordEnc, &purchase.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan purchase: %w", err)
		}
		purchases = append(purchases, purchase)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating purchases: %w", err)
	}

	return purchases, nil
}
