package bot

import (
	"context"
	"fmt"

	"github.com/avc/accshop/internal/domain"
	"github.com/avc/accshop/internal/service"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Messenger реализует service.Messenger поверх Telegram.
// В личном чате chat ID совпадает с ID пользователя, поэтому
// buyerID используется как адрес доставки.
type Messenger struct {
	api *tgbotapi.BotAPI
}

// NewMessenger создает новый Messenger
func NewMessenger(api *tgbotapi.BotAPI) *Messenger {
	return &Messenger{api: api}
}

// SendPaymentInstructions отправляет покупателю QR и реквизиты перевода
func (m *Messenger) SendPaymentInstructions(ctx context.Context, buyerID int64, instr service.PaymentInstructions) (service.MessageRef, error) {
	photo := tgbotapi.NewPhoto(buyerID, tgbotapi.FileURL(instr.QRImageURL))
	photo.ParseMode = tgbotapi.ModeHTML
	photo.Caption = fmt.Sprintf(
		"<b>Заказ: %s</b>\n\n"+
			"Оплатите переводом по QR-коду.\n\n"+
			"<b>Обязательное назначение платежа:</b>\n<code>%s</code>\n"+
			"<b>Сумма:</b> <code>%s VND</code>\n\n"+
			"На оплату отводится %d минут.",
		escape(instr.AccountName), instr.OrderID, formatVND(instr.Amount), int(instr.ExpiresIn.Minutes()),
	)

	sent, err := m.api.Send(photo)
	if err != nil {
		return service.MessageRef{}, fmt.Errorf("messenger: failed to send payment instructions: %w", err)
	}

	return service.MessageRef{ChatID: buyerID, MessageID: sent.MessageID}, nil
}

// SendCredentials отправляет покупателю учетные данные купленного аккаунта
func (m *Messenger) SendCredentials(ctx context.Context, buyerID int64, accountName string, creds domain.Credentials) error {
	msg := tgbotapi.NewMessage(buyerID, fmt.Sprintf(
		"✅ <b>Оплата получена!</b>\n\n"+
			"Спасибо за покупку <b>%s</b>. Данные для входа:\n\n"+
			"Логин: <code>%s</code>\nПароль: <code>%s</code>\n\n"+
			"Сразу смените пароль.",
		escape(accountName), escape(creds.Username), escape(creds.Password),
	))
	msg.ParseMode = tgbotapi.ModeHTML

	if _, err := m.api.Send(msg); err != nil {
		return fmt.Errorf("messenger: failed to send credentials: %w", err)
	}
	return nil
}

// DeleteMessage убирает ранее отправленное сообщение
func (m *Messenger) DeleteMessage(ctx context.Context, ref service.MessageRef) error {
	if _, err := m.api.Request(tgbotapi.NewDeleteMessage(ref.ChatID, ref.MessageID)); err != nil {
		return fmt.Errorf("messenger: failed to delete message %d: %w", ref.MessageID, err)
	}
	return nil
}

// Notify отправляет покупателю текстовое уведомление
func (m *Messenger) Notify(ctx context.Context, buyerID int64, text string) error {
	if _, err := m.api.Send(tgbotapi.NewMessage(buyerID, text)); err != nil {
		return fmt.Errorf("messenger: failed to notify buyer %d: %w", buyerID, err)
	}
	return nil
}
