package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/avc/accshop/internal/domain"
	"github.com/avc/accshop/internal/utils/orderid"
	"github.com/avc/accshop/internal/utils/vault"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Таймаут фоновых операций завершения сессии (отмена заказа,
// удаление сообщения), у которых нет родительского контекста запроса.
const teardownTimeout = 10 * time.Second

// MessageRef указывает на отправленное покупателю сообщение с
// платежными инструкциями, чтобы его можно было убрать позже
type MessageRef struct {
	ChatID    int64
	MessageID int
}

// PaymentInstructions содержит данные для личного сообщения с
// реквизитами оплаты
type PaymentInstructions struct {
	OrderID     string
	AccountName string
	Amount      int64
	QRImageURL  string
	ExpiresIn   time.Duration
}

// Messenger определяет канал доставки личных сообщений покупателю.
// Координатор не занимается отрисовкой: Messenger получает данные,
// а их представление — дело транспорта.
type Messenger interface {
	SendPaymentInstructions(ctx context.Context, buyerID int64, instr PaymentInstructions) (MessageRef, error)
	SendCredentials(ctx context.Context, buyerID int64, accountName string, creds domain.Credentials) error
	DeleteMessage(ctx context.Context, ref MessageRef) error
	Notify(ctx context.Context, buyerID int64, text string) error
}

// CheckoutConfig содержит настройки координатора оплат
type CheckoutConfig struct {
	PollInterval   time.Duration // интервал опроса банковской ленты
	PaymentTimeout time.Duration // время на оплату банковским переводом
	OrderPrefix    string

	// Реквизиты для QR банковского перевода. Пустые значения означают,
	// что банковский путь оплаты недоступен (ErrGatewayUnconfigured).
	BankID          string
	BankAccountNo   string
	BankAccountName string
}

// paymentSession хранит состояние одной незавершенной оплаты
// банковским переводом. Ключ карты сессий — ID покупателя, поэтому
// у покупателя не может быть двух активных сессий одновременно.
type paymentSession struct {
	orderID    string
	accountID  int64
	amount     int64
	couponCode string
	messageRef MessageRef
	cancel     context.CancelFunc
	timer      *time.Timer
}

// Checkout координирует оформление и подтверждение заказов.
// Только он переводит заказы и аккаунты в терминальные статусы
// по результатам платежных событий.
type Checkout struct {
	cfg       CheckoutConfig
	accounts  domain.AccountRepository
	orders    domain.OrderRepository
	coupons   domain.CouponRepository
	vault     *vault.Vault
	feed      FeedClient
	cards     CardClient
	messenger Messenger
	logger    *zap.Logger

	mu       sync.Mutex
	sessions map[int64]*paymentSession // по ID покупателя
	applied  map[int64]string          // предварительно примененные купоны
	wg       sync.WaitGroup
}

// NewCheckout создает новый координатор оплат
func NewCheckout(
	cfg CheckoutConfig,
	accounts domain.AccountRepository,
	orders domain.OrderRepository,
	coupons domain.CouponRepository,
	credVault *vault.Vault,
	feed FeedClient,
	cards CardClient,
	messenger Messenger,
	logger *zap.Logger,
) *Checkout {
	return &Checkout{
		cfg:       cfg,
		accounts:  accounts,
		orders:    orders,
		coupons:   coupons,
		vault:     credVault,
		feed:      feed,
		cards:     cards,
		messenger: messenger,
		logger:    logger,
		sessions:  make(map[int64]*paymentSession),
		applied:   make(map[int64]string),
	}
}

// StartResult представляет исход запуска оформления заказа
type StartResult struct {
	OrderID     string
	AccountName string
	Amount      int64
	Discount    int64
	// Fulfilled выставлен для моментального исполнения (купон 100%):
	// сессия не создавалась, учетные данные уже в Credentials.
	Fulfilled   bool
	Credentials *domain.Credentials
}

// ApplyCouponResult представляет успешное применение купона
type ApplyCouponResult struct {
	Code        string
	DiscountPct int
}

// ChargeCardResult представляет успешное гашение карты пополнения
type ChargeCardResult struct {
	OrderID     string
	AccountName string
	Amount      int64
	Credentials domain.Credentials
}

// StartBankCheckout запускает оформление заказа с оплатой банковским
// переводом: создает pending-заказ, отправляет покупателю QR с
// реквизитами и открывает сессию ожидания оплаты с опросом ленты
// транзакций и таймаутом.
func (c *Checkout) StartBankCheckout(ctx context.Context, buyerID, accountID int64) (*StartResult, error) {
	c.mu.Lock()
	if _, ok := c.sessions[buyerID]; ok {
		c.mu.Unlock()
		return nil, ErrSessionActive
	}
	c.mu.Unlock()

	account, err := c.getAvailableAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	couponCode, discountPct, err := c.resolveAppliedCoupon(ctx, buyerID)
	if err != nil {
		return nil, err
	}

	final, discount := FinalPrice(account.Price, discountPct)

	// Бесплатный заказ исполняется сразу, без сессии и опроса
	if final == 0 && couponCode != "" {
		return c.fulfillFree(ctx, buyerID, account, couponCode)
	}

	if c.cfg.BankID == "" || c.cfg.BankAccountNo == "" || c.cfg.BankAccountName == "" {
		return nil, ErrGatewayUnconfigured
	}

	order := &domain.Order{
		ID:         orderid.New(c.cfg.OrderPrefix, buyerID),
		BuyerID:    buyerID,
		AccountID:  account.ID,
		Amount:     final,
		Status:     domain.OrderStatusPending,
		Method:     domain.PaymentMethodBank,
		CouponCode: optionalCode(couponCode),
	}
	if err := c.orders.CreateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("checkout: failed to create order: %w", err)
	}

	instr := PaymentInstructions{
		OrderID:     order.ID,
		AccountName: account.Name,
		Amount:      final,
		QRImageURL:  c.qrImageURL(final, order.ID),
		ExpiresIn:   c.cfg.PaymentTimeout,
	}
	ref, err := c.messenger.SendPaymentInstructions(ctx, buyerID, instr)
	if err != nil {
		// Без канала доставки покупатель не получит реквизиты:
		// попытка оформления фатальна, заказ сразу отменяется
		c.logger.Warn("payment instructions undeliverable",
			zap.Int64("buyer_id", buyerID),
			zap.String("order", order.ID),
			zap.Error(err),
		)
		c.cancelOrder(order.ID)
		return nil, ErrDMUnreachable
	}

	pollCtx, cancelPoll := context.WithCancel(context.Background())
	session := &paymentSession{
		orderID:    order.ID,
		accountID:  account.ID,
		amount:     final,
		couponCode: couponCode,
		messageRef: ref,
		cancel:     cancelPoll,
	}

	c.mu.Lock()
	if _, ok := c.sessions[buyerID]; ok {
		// Параллельный старт успел раньше
		c.mu.Unlock()
		cancelPoll()
		c.cancelOrder(order.ID)
		c.retractMessage(ref)
		return nil, ErrSessionActive
	}
	c.sessions[buyerID] = session
	// Таймер взводится под мьютексом: даже мгновенное срабатывание
	// увидит сессию в карте
	session.timer = time.AfterFunc(c.cfg.PaymentTimeout, func() {
		c.expire(buyerID, order.ID)
	})
	c.mu.Unlock()

	c.wg.Add(1)
	go c.pollLoop(pollCtx, buyerID, order.ID)

	c.logger.Info("bank checkout started",
		zap.Int64("buyer_id", buyerID),
		zap.String("order", order.ID),
		zap.Int64("amount", final),
	)

	return &StartResult{
		OrderID:     order.ID,
		AccountName: account.Name,
		Amount:      final,
		Discount:    discount,
	}, nil
}

// ApplyCoupon предварительно применяет купон к будущим заказам
// покупателя. Лимит применений купона при этом не списывается.
func (c *Checkout) ApplyCoupon(ctx context.Context, buyerID int64, code string) (*ApplyCouponResult, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if normalized == "" {
		return nil, ErrCouponInvalid
	}

	coupon, err := c.coupons.GetCouponByCode(ctx, normalized)
	if err != nil {
		if errors.Is(err, domain.ErrCouponNotFound) {
			return nil, ErrCouponInvalid
		}
		return nil, fmt.Errorf("checkout: failed to get coupon: %w", err)
	}

	if coupon.Expired(time.Now()) {
		return nil, ErrCouponExpired
	}
	if coupon.Exhausted() {
		return nil, ErrCouponExhausted
	}

	c.mu.Lock()
	c.applied[buyerID] = normalized
	c.mu.Unlock()

	return &ApplyCouponResult{Code: normalized, DiscountPct: coupon.DiscountPct}, nil
}

// ChargeCard оформляет заказ с оплатой картой пополнения. Путь
// синхронный: без сессии, опроса и таймера. Повторная проверка
// доступности и check-and-set при продаже сохраняют инвариант
// единственной продажи и здесь.
func (c *Checkout) ChargeCard(ctx context.Context, buyerID, accountID int64, telco, code, serial string) (*ChargeCardResult, error) {
	if telco == "" || code == "" || serial == "" {
		return nil, ErrInvalidInput
	}

	account, err := c.getAvailableAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	couponCode, discountPct, err := c.resolveAppliedCoupon(ctx, buyerID)
	if err != nil {
		return nil, err
	}
	final, _ := FinalPrice(account.Price, discountPct)

	if final == 0 && couponCode != "" {
		result, err := c.fulfillFree(ctx, buyerID, account, couponCode)
		if err != nil {
			return nil, err
		}
		return &ChargeCardResult{
			OrderID:     result.OrderID,
			AccountName: result.AccountName,
			Amount:      0,
			Credentials: *result.Credentials,
		}, nil
	}

	order := &domain.Order{
		ID:         orderid.New(c.cfg.OrderPrefix, buyerID),
		BuyerID:    buyerID,
		AccountID:  account.ID,
		Amount:     final,
		Status:     domain.OrderStatusPending,
		Method:     domain.PaymentMethodCard,
		CouponCode: optionalCode(couponCode),
	}
	if err := c.orders.CreateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("checkout: failed to create order: %w", err)
	}

	chargeResult, err := c.cards.Charge(ctx, CardChargeRequest{
		Telco:     telco,
		Code:      code,
		Serial:    serial,
		Amount:    final,
		RequestID: uuid.NewString(),
	})
	if err != nil {
		c.cancelOrder(order.ID)
		if errors.Is(err, ErrGatewayUnconfigured) {
			return nil, ErrGatewayUnconfigured
		}
		return nil, fmt.Errorf("checkout: card charge failed: %w", err)
	}
	if !chargeResult.Success() {
		c.cancelOrder(order.ID)
		return nil, &CardDeclinedError{Status: chargeResult.Status, Message: chargeResult.Message}
	}

	creds, err := c.finalizeSale(ctx, order.ID, account.ID, buyerID, couponCode)
	if err != nil {
		return nil, err
	}

	c.logger.Info("card checkout fulfilled",
		zap.Int64("buyer_id", buyerID),
		zap.String("order", order.ID),
		zap.Int64("amount", final),
	)

	return &ChargeCardResult{
		OrderID:     order.ID,
		AccountName: account.Name,
		Amount:      final,
		Credentials: creds,
	}, nil
}

// Stop завершает все активные сессии опроса. Состояние сессий живет
// только в памяти: после перезапуска незавершенные pending-заказы
// остаются в журнале и видны администратору.
func (c *Checkout) Stop() {
	c.mu.Lock()
	for buyerID, session := range c.sessions {
		session.timer.Stop()
		session.cancel()
		delete(c.sessions, buyerID)
	}
	c.mu.Unlock()
	c.wg.Wait()
}

// pollLoop опрашивает ленту транзакций до подтверждения оплаты,
// таймаута или остановки координатора
func (c *Checkout) pollLoop(ctx context.Context, buyerID int64, orderID string) {
	defer c.wg.Done()

	ticker := time.NewTicker(c.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if done := c.pollOnce(ctx, buyerID, orderID); done {
				return
			}
		}
	}
}

// pollOnce выполняет один тик опроса. Возвращает true, когда сессию
// можно больше не опрашивать.
func (c *Checkout) pollOnce(ctx context.Context, buyerID int64, orderID string) bool {
	c.mu.Lock()
	session := c.sessions[buyerID]
	if session == nil || session.orderID != orderID {
		c.mu.Unlock()
		return true
	}
	amount := session.amount
	c.mu.Unlock()

	transactions, err := c.feed.RecentTransactions(ctx)
	if err != nil {
		// Сбой ленты не роняет сессию: этот тик считается пустым
		c.logger.Warn("feed fetch failed",
			zap.String("order", orderID),
			zap.Error(err),
		)
		return false
	}

	for _, tx := range transactions {
		if tx.Amount == amount && strings.Contains(tx.Memo, orderID) {
			c.settle(buyerID, orderID)
			return true
		}
	}

	return false
}

// settle завершает сессию после найденного в ленте платежа
func (c *Checkout) settle(buyerID int64, orderID string) {
	session := c.takeSession(buyerID, orderID)
	if session == nil {
		// Таймаут или другой путь оплаты успел раньше
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), teardownTimeout)
	defer cancel()

	creds, err := c.finalizeSale(ctx, orderID, session.accountID, buyerID, session.couponCode)
	if err != nil {
		if errors.Is(err, ErrItemUnavailable) {
			// Аккаунт ушел по конкурирующему пути; заказ уже отменен
			c.retractMessage(session.messageRef)
			c.notify(buyerID, fmt.Sprintf("Заказ %s отменен: товар больше не доступен. Свяжитесь с администратором для возврата средств.", orderID))
			return
		}
		c.logger.Error("failed to finalize paid order",
			zap.String("order", orderID),
			zap.Error(err),
		)
		return
	}

	c.retractMessage(session.messageRef)

	if err := c.messenger.SendCredentials(ctx, buyerID, c.accountName(ctx, session.accountID), creds); err != nil {
		c.logger.Error("failed to deliver credentials",
			zap.Int64("buyer_id", buyerID),
			zap.String("order", orderID),
			zap.Error(err),
		)
	}

	c.logger.Info("bank checkout fulfilled",
		zap.Int64("buyer_id", buyerID),
		zap.String("order", orderID),
	)
}

// expire срабатывает по таймеру оплаты. Перед любыми изменениями
// заново проверяется, что сессия покупателя все еще отвечает заказу,
// взведшему таймер: запоздавший таймер чужой сессии — no-op.
func (c *Checkout) expire(buyerID int64, orderID string) {
	session := c.takeSession(buyerID, orderID)
	if session == nil {
		return
	}

	c.cancelOrder(orderID)
	c.retractMessage(session.messageRef)
	c.notify(buyerID, fmt.Sprintf("Заказ %s автоматически отменен: время на оплату истекло.", orderID))

	c.logger.Info("payment session expired",
		zap.Int64("buyer_id", buyerID),
		zap.String("order", orderID),
	)
}

// takeSession атомарно изымает сессию покупателя, если она отвечает
// заказу orderID. Гонка "тик против таймера" разрешается здесь:
// тот, кто изъял сессию, выполняет завершение, второй получает nil.
func (c *Checkout) takeSession(buyerID int64, orderID string) *paymentSession {
	c.mu.Lock()
	defer c.mu.Unlock()

	session := c.sessions[buyerID]
	if session == nil || session.orderID != orderID {
		return nil
	}

	delete(c.sessions, buyerID)
	session.timer.Stop()
	session.cancel()
	return session
}

// finalizeSale выполняет общий для всех путей оплаты финал: атомарно
// продает аккаунт, переводит заказ в paid, списывает купон и
// расшифровывает учетные данные. Check-and-set в MarkSold — тот самый
// шлагбаум, который не дает двум путям оплаты продать аккаунт дважды.
func (c *Checkout) finalizeSale(ctx context.Context, orderID string, accountID, buyerID int64, couponCode string) (domain.Credentials, error) {
	if err := c.accounts.MarkSold(ctx, accountID); err != nil {
		if errors.Is(err, domain.ErrAccountUnavailable) {
			c.cancelOrder(orderID)
			return domain.Credentials{}, ErrItemUnavailable
		}
		return domain.Credentials{}, fmt.Errorf("checkout: failed to mark account sold: %w", err)
	}

	if err := c.orders.SetOrderStatus(ctx, orderID, domain.OrderStatusPaid); err != nil {
		c.logger.Error("failed to mark order paid",
			zap.String("order", orderID),
			zap.Error(err),
		)
	}

	if couponCode != "" {
		c.consumeCoupon(ctx, buyerID, couponCode)
	}

	account, err := c.accounts.GetAccountByID(ctx, accountID)
	if err != nil {
		return domain.Credentials{}, fmt.Errorf("checkout: failed to load account %d: %w", accountID, err)
	}

	username, err := c.vault.Decrypt(account.UsernameEnc)
	if err != nil {
		return domain.Credentials{}, fmt.Errorf("checkout: failed to decrypt username of account %d: %w", accountID, err)
	}
	pass, err := c.vault.Decrypt(account.PasswordEnc)
	if err != nil {
		return domain.Credentials{}, fmt.Errorf("checkout: failed to decrypt password of account %d: %w", accountID, err)
	}

	return domain.Credentials{Username: username, Password: pass}, nil
}

// fulfillFree исполняет бесплатный (купон 100%) заказ сразу:
// без сессии, опроса и таймера
func (c *Checkout) fulfillFree(ctx context.Context, buyerID int64, account *domain.Account, couponCode string) (*StartResult, error) {
	order := &domain.Order{
		ID:         orderid.New(c.cfg.OrderPrefix, buyerID),
		BuyerID:    buyerID,
		AccountID:  account.ID,
		Amount:     0,
		Status:     domain.OrderStatusPending,
		Method:     domain.PaymentMethodCoupon,
		CouponCode: optionalCode(couponCode),
	}
	if err := c.orders.CreateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("checkout: failed to create order: %w", err)
	}

	creds, err := c.finalizeSale(ctx, order.ID, account.ID, buyerID, couponCode)
	if err != nil {
		return nil, err
	}

	c.logger.Info("free checkout fulfilled",
		zap.Int64("buyer_id", buyerID),
		zap.String("order", order.ID),
		zap.String("coupon", couponCode),
	)

	return &StartResult{
		OrderID:     order.ID,
		AccountName: account.Name,
		Amount:      0,
		Discount:    account.Price,
		Fulfilled:   true,
		Credentials: &creds,
	}, nil
}

// getAvailableAccount загружает аккаунт и проверяет, что он доступен
func (c *Checkout) getAvailableAccount(ctx context.Context, accountID int64) (*domain.Account, error) {
	account, err := c.accounts.GetAccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, ErrItemUnavailable
		}
		return nil, fmt.Errorf("checkout: failed to get account %d: %w", accountID, err)
	}
	if account.Status != domain.AccountStatusAvailable {
		return nil, ErrItemUnavailable
	}
	return account, nil
}

// resolveAppliedCoupon перепроверяет предварительно примененный купон
// покупателя на момент оформления заказа
func (c *Checkout) resolveAppliedCoupon(ctx context.Context, buyerID int64) (code string, discountPct int, err error) {
	c.mu.Lock()
	code = c.applied[buyerID]
	c.mu.Unlock()

	if code == "" {
		return "", 0, nil
	}

	coupon, err := c.coupons.GetCouponByCode(ctx, code)
	if err != nil {
		if errors.Is(err, domain.ErrCouponNotFound) {
			return "", 0, ErrCouponInvalid
		}
		return "", 0, fmt.Errorf("checkout: failed to get coupon %q: %w", code, err)
	}

	if coupon.Expired(time.Now()) {
		return "", 0, ErrCouponExpired
	}
	if coupon.Exhausted() {
		return "", 0, ErrCouponExhausted
	}

	return code, coupon.DiscountPct, nil
}

// consumeCoupon списывает применение купона после подтвержденной
// продажи и снимает предварительное применение у покупателя
func (c *Checkout) consumeCoupon(ctx context.Context, buyerID int64, code string) {
	if err := c.coupons.DecrementUses(ctx, code); err != nil {
		// Заказ уже оплачен; исчерпание купона в последний момент
		// не повод откатывать продажу
		c.logger.Warn("failed to consume coupon use",
			zap.String("coupon", code),
			zap.Error(err),
		)
	}

	c.mu.Lock()
	if c.applied[buyerID] == code {
		delete(c.applied, buyerID)
	}
	c.mu.Unlock()
}

// cancelOrder отменяет pending-заказ, логируя сбой вместо паники
func (c *Checkout) cancelOrder(orderID string) {
	ctx, cancel := context.WithTimeout(context.Background(), teardownTimeout)
	defer cancel()

	if err := c.orders.SetOrderStatus(ctx, orderID, domain.OrderStatusCancelled); err != nil {
		c.logger.Error("failed to cancel order",
			zap.String("order", orderID),
			zap.Error(err),
		)
	}
}

// retractMessage убирает сообщение с реквизитами. Fire-and-forget:
// неудача только логируется.
func (c *Checkout) retractMessage(ref MessageRef) {
	ctx, cancel := context.WithTimeout(context.Background(), teardownTimeout)
	defer cancel()

	if err := c.messenger.DeleteMessage(ctx, ref); err != nil {
		c.logger.Warn("failed to retract payment message",
			zap.Int64("chat_id", ref.ChatID),
			zap.Int("message_id", ref.MessageID),
			zap.Error(err),
		)
	}
}

// notify отправляет покупателю уведомление. Fire-and-forget.
func (c *Checkout) notify(buyerID int64, text string) {
	ctx, cancel := context.WithTimeout(context.Background(), teardownTimeout)
	defer cancel()

	if err := c.messenger.Notify(ctx, buyerID, text); err != nil {
		c.logger.Warn("failed to notify buyer",
			zap.Int64("buyer_id", buyerID),
			zap.Error(err),
		)
	}
}

// accountName возвращает название аккаунта для сообщений покупателю;
// при сбое чтения возвращает пустую строку
func (c *Checkout) accountName(ctx context.Context, accountID int64) string {
	account, err := c.accounts.GetAccountByID(ctx, accountID)
	if err != nil {
		return ""
	}
	return account.Name
}

// qrImageURL собирает ссылку на картинку VietQR с суммой и
// назначением платежа
func (c *Checkout) qrImageURL(amount int64, orderID string) string {
	query := url.Values{}
	query.Set("amount", fmt.Sprintf("%d", amount))
	query.Set("addInfo", orderID)
	query.Set("accountName", c.cfg.BankAccountName)

	return fmt.Sprintf("https://img.vietqr.io/image/%s-%s-compact.png?%s",
		c.cfg.BankID, c.cfg.BankAccountNo, query.Encode())
}

func optionalCode(code string) *string {
	if code == "" {
		return nil
	}
	return &code
}
