package service

import (
	"context"
	"fmt"

	"github.com/avc/accshop/internal/domain"
	"github.com/avc/accshop/internal/utils/vault"
	"go.uber.org/zap"
)

// PurchaseRecord представляет элемент истории покупок с уже
// расшифрованными учетными данными. Credentials == nil, если
// расшифровка не удалась.
type PurchaseRecord struct {
	AccountName string
	Credentials *domain.Credentials
}

// Reports реализует отчеты по продажам и историю покупок
type Reports struct {
	orders domain.OrderRepository
	vault  *vault.Vault
	logger *zap.Logger
}

// NewReports создает новый Reports
func NewReports(orders domain.OrderRepository, credVault *vault.Vault, logger *zap.Logger) *Reports {
	return &Reports{
		orders: orders,
		vault:  credVault,
		logger: logger,
	}
}

// SalesHistory возвращает оплаченные заказы с названиями аккаунтов
func (s *Reports) SalesHistory(ctx context.Context) ([]*domain.PaidOrder, error) {
	orders, err := s.orders.ListPaidOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("reports: failed to get sales history: %w", err)
	}
	return orders, nil
}

// TotalRevenue возвращает суммарную выручку
func (s *Reports) TotalRevenue(ctx context.Context) (int64, error) {
	total, err := s.orders.TotalRevenue(ctx)
	if err != nil {
		return 0, fmt.Errorf("reports: failed to calculate revenue: %w", err)
	}
	return total, nil
}

// PurchaseHistory возвращает покупки пользователя с расшифрованными
// учетными данными. Аккаунт с нечитаемыми данными попадает в список
// без Credentials, а сбой логируется: одна битая запись не должна
// прятать остальные покупки.
func (s *Reports) PurchaseHistory(ctx context.Context, buyerID int64) ([]*PurchaseRecord, error) {
	purchases, err := s.orders.GetPurchaseHistory(ctx, buyerID)
	if err != nil {
		return nil, fmt.Errorf("reports: failed to get purchase history for buyer %d: %w", buyerID, err)
	}

	records := make([]*PurchaseRecord, 0, len(purchases))
	for _, purchase := range purchases {
		record := &PurchaseRecord{AccountName: purchase.AccountName}

		username, errU := s.vault.Decrypt(purchase.UsernameEnc)
		pass, errP := s.vault.Decrypt(purchase.PasswordEnc)
		if errU != nil || errP != nil {
			s.logger.Error("failed to decrypt purchased credentials",
				zap.Int64("buyer_id", buyerID),
				zap.String("account", purchase.AccountName),
				zap.Errors("errors", []error{errU, errP}),
			)
		} else {
			record.Credentials = &domain.Credentials{Username: username, Password: pass}
		}

		records = append(records, record)
	}

	return records, nil
}
