package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/avc/accshop/internal/domain"
	"github.com/avc/accshop/internal/service"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// CheckoutService описывает операции оформления заказа, нужные боту
type CheckoutService interface {
	StartBankCheckout(ctx context.Context, buyerID, accountID int64) (*service.StartResult, error)
	ApplyCoupon(ctx context.Context, buyerID int64, code string) (*service.ApplyCouponResult, error)
	ChargeCard(ctx context.Context, buyerID, accountID int64, telco, code, serial string) (*service.ChargeCardResult, error)
}

// CatalogService описывает операции витрины, нужные боту
type CatalogService interface {
	ListAvailable(ctx context.Context, category string) ([]*domain.Account, error)
	GetAccount(ctx context.Context, id int64) (*domain.Account, error)
}

// HistoryService описывает историю покупок, нужную боту
type HistoryService interface {
	PurchaseHistory(ctx context.Context, buyerID int64) ([]*service.PurchaseRecord, error)
}

// Bot обрабатывает входящие сообщения и callback-кнопки Telegram
type Bot struct {
	api      *tgbotapi.BotAPI
	checkout CheckoutService
	catalog  CatalogService
	history  HistoryService
	logger   *zap.Logger
}

// New создает нового бота
func New(api *tgbotapi.BotAPI, checkout CheckoutService, catalog CatalogService, history HistoryService, logger *zap.Logger) *Bot {
	return &Bot{
		api:      api,
		checkout: checkout,
		catalog:  catalog,
		history:  history,
		logger:   logger,
	}
}

// Run запускает long-poll цикл обновлений и блокируется до отмены контекста
func (b *Bot) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := b.api.GetUpdatesChan(u)

	b.logger.Info("Бот запущен", zap.String("username", b.api.Self.UserName))

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil && update.Message.IsCommand():
		b.handleCommand(ctx, update.Message)
	}
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	switch msg.Command() {
	case "start", "help":
		b.reply(chatID,
			"Привет! Это магазин аккаунтов.\n\n"+
				"/shop — витрина\n"+
				"/coupon КОД — применить купон к следующей покупке\n"+
				"/card ID_ТОВАРА ОПЕРАТОР СЕРИЯ КОД — оплатить картой пополнения\n"+
				"/myaccounts — мои покупки")
	case "shop":
		text, markup, err := b.categoryMenu(ctx)
		if err != nil {
			b.logger.Error("Не удалось построить меню категорий", zap.Error(err))
			b.reply(chatID, errorText(err))
			return
		}
		b.replyMarkup(chatID, text, markup)
	case "coupon":
		b.handleCoupon(ctx, chatID, msg.CommandArguments())
	case "card":
		b.handleCard(ctx, chatID, msg.CommandArguments())
	case "myaccounts":
		b.handleHistory(ctx, chatID)
	default:
		b.reply(chatID, "Неизвестная команда. /help покажет список команд.")
	}
}

func (b *Bot) handleCoupon(ctx context.Context, buyerID int64, args string) {
	code := strings.TrimSpace(args)
	if code == "" {
		b.reply(buyerID, "Укажите код купона: /coupon КОД")
		return
	}

	res, err := b.checkout.ApplyCoupon(ctx, buyerID, code)
	if err != nil {
		b.reply(buyerID, errorText(err))
		return
	}
	b.reply(buyerID, fmt.Sprintf("Купон %s принят: скидка %d%% на следующую покупку.", res.Code, res.DiscountPct))
}

func (b *Bot) handleCard(ctx context.Context, buyerID int64, args string) {
	fields := strings.Fields(args)
	if len(fields) != 4 {
		b.reply(buyerID, "Формат: /card ID_ТОВАРА ОПЕРАТОР СЕРИЯ КОД")
		return
	}
	accountID, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		b.reply(buyerID, "ID товара должен быть числом.")
		return
	}

	res, err := b.checkout.ChargeCard(ctx, buyerID, accountID, fields[1], fields[3], fields[2])
	if err != nil {
		b.reply(buyerID, errorText(err))
		return
	}

	text := fmt.Sprintf(
		"✅ <b>Карта принята!</b>\n\n"+
			"Покупка <b>%s</b> за %s VND. Данные для входа:\n\n"+
			"Логин: <code>%s</code>\nПароль: <code>%s</code>",
		escape(res.AccountName), formatVND(res.Amount),
		escape(res.Credentials.Username), escape(res.Credentials.Password),
	)
	b.replyHTML(buyerID, text)
}

func (b *Bot) handleHistory(ctx context.Context, buyerID int64) {
	records, err := b.history.PurchaseHistory(ctx, buyerID)
	if err != nil {
		b.logger.Error("Не удалось получить историю покупок", zap.Error(err))
		b.reply(buyerID, errorText(err))
		return
	}
	if len(records) == 0 {
		b.reply(buyerID, "У вас пока нет покупок.")
		return
	}

	var sb strings.Builder
	sb.WriteString("<b>Ваши покупки:</b>\n\n")
	for _, rec := range records {
		if rec.Credentials == nil {
			fmt.Fprintf(&sb, "▫️ %s — данные недоступны, обратитесь в поддержку\n", escape(rec.AccountName))
			continue
		}
		fmt.Fprintf(&sb, "▫️ <b>%s</b>\nЛогин: <code>%s</code>\nПароль: <code>%s</code>\n\n",
			escape(rec.AccountName), escape(rec.Credentials.Username), escape(rec.Credentials.Password))
	}
	b.replyHTML(buyerID, sb.String())
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	// Всегда гасим "часики" на кнопке
	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		b.logger.Debug("Не удалось ответить на callback", zap.Error(err))
	}
	if cb.Message == nil {
		return
	}
	chatID := cb.Message.Chat.ID

	p, err := decodePayload(cb.Data)
	if err != nil {
		b.logger.Warn("Некорректные callback-данные", zap.String("data", cb.Data), zap.Error(err))
		return
	}

	switch p.Action {
	case actionCategory:
		b.editShopPage(ctx, chatID, cb.Message.MessageID, p.Category, 0)
	case actionPage:
		b.editShopPage(ctx, chatID, cb.Message.MessageID, p.Category, p.Index)
	case actionImage:
		account, err := b.catalog.GetAccount(ctx, p.AccountID)
		if err != nil {
			b.reply(chatID, errorText(err))
			return
		}
		b.accountImages(ctx, chatID, account)
	case actionBuy:
		b.handleBuy(ctx, chatID, p.AccountID)
	default:
		b.logger.Warn("Неизвестное действие callback", zap.String("action", p.Action))
	}
}

func (b *Bot) editShopPage(ctx context.Context, chatID int64, messageID int, category string, page int) {
	text, markup, err := b.shopPage(ctx, category, page)
	if err != nil {
		b.logger.Error("Не удалось построить страницу витрины", zap.Error(err))
		b.reply(chatID, errorText(err))
		return
	}

	var edit tgbotapi.EditMessageTextConfig
	if len(markup.InlineKeyboard) > 0 {
		edit = tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, markup)
	} else {
		edit = tgbotapi.NewEditMessageText(chatID, messageID, text)
	}
	edit.ParseMode = tgbotapi.ModeHTML
	if _, err := b.api.Send(edit); err != nil {
		b.logger.Warn("Не удалось обновить страницу витрины", zap.Error(err))
	}
}

func (b *Bot) handleBuy(ctx context.Context, buyerID, accountID int64) {
	res, err := b.checkout.StartBankCheckout(ctx, buyerID, accountID)
	if err != nil {
		// При недоступности личных сообщений уведомлять некуда
		if !errors.Is(err, service.ErrDMUnreachable) {
			b.reply(buyerID, errorText(err))
		}
		return
	}

	if res.Fulfilled {
		text := fmt.Sprintf(
			"🎉 Купон покрыл всю стоимость!\n\n"+
				"Покупка <b>%s</b>. Данные для входа:\n\n"+
				"Логин: <code>%s</code>\nПароль: <code>%s</code>",
			escape(res.AccountName), escape(res.Credentials.Username), escape(res.Credentials.Password),
		)
		b.replyHTML(buyerID, text)
		return
	}

	if res.Discount > 0 {
		b.reply(buyerID, fmt.Sprintf("Применена скидка %s VND.", formatVND(res.Discount)))
	}
}

// errorText переводит ошибки сервисного слоя в сообщения покупателю
func errorText(err error) string {
	var declined *service.CardDeclinedError
	switch {
	case errors.Is(err, service.ErrSessionActive):
		return "У вас уже есть неоплаченный заказ. Дождитесь его оплаты или истечения."
	case errors.Is(err, service.ErrItemUnavailable), errors.Is(err, domain.ErrAccountNotFound):
		return "Этот товар уже продан или недоступен."
	case errors.Is(err, service.ErrCouponInvalid):
		return "Такого купона не существует."
	case errors.Is(err, service.ErrCouponExpired):
		return "Срок действия купона истек."
	case errors.Is(err, service.ErrCouponExhausted):
		return "Лимит использований купона исчерпан."
	case errors.Is(err, service.ErrGatewayUnconfigured):
		return "Этот способ оплаты временно недоступен."
	case errors.As(err, &declined):
		return fmt.Sprintf("Карта отклонена: %s", declined.Message)
	default:
		return "Что-то пошло не так. Попробуйте позже."
	}
}

func (b *Bot) reply(chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		b.logger.Warn("Не удалось отправить сообщение", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (b *Bot) replyHTML(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Warn("Не удалось отправить сообщение", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (b *Bot) replyMarkup(chatID int64, text string, markup tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	if len(markup.InlineKeyboard) > 0 {
		msg.ReplyMarkup = markup
	}
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Warn("Не удалось отправить сообщение", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}
