package bot

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/avc/accshop/internal/domain"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const pageSize = 5

// categoryMenu строит меню категорий по доступным сейчас товарам
func (b *Bot) categoryMenu(ctx context.Context) (string, tgbotapi.InlineKeyboardMarkup, error) {
	accounts, err := b.catalog.ListAvailable(ctx, "")
	if err != nil {
		return "", tgbotapi.InlineKeyboardMarkup{}, err
	}
	if len(accounts) == 0 {
		return "Витрина пуста, загляните позже.", tgbotapi.InlineKeyboardMarkup{}, nil
	}

	counts := make(map[string]int)
	for _, acc := range accounts {
		counts[acc.Category]++
	}
	categories := make([]string, 0, len(counts))
	for cat := range counts {
		categories = append(categories, cat)
	}
	sort.Strings(categories)

	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(categories))
	for _, cat := range categories {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("%s (%d)", cat, counts[cat]),
				encodePayload(payload{Action: actionCategory, Category: cat}),
			),
		))
	}

	return "🛒 Выберите категорию:", tgbotapi.NewInlineKeyboardMarkup(rows...), nil
}

// shopPage строит страницу витрины для категории
func (b *Bot) shopPage(ctx context.Context, category string, page int) (string, tgbotapi.InlineKeyboardMarkup, error) {
	accounts, err := b.catalog.ListAvailable(ctx, category)
	if err != nil {
		return "", tgbotapi.InlineKeyboardMarkup{}, err
	}
	if len(accounts) == 0 {
		return "В этой категории все распродано.", tgbotapi.InlineKeyboardMarkup{}, nil
	}

	pages := (len(accounts) + pageSize - 1) / pageSize
	if page < 0 {
		page = 0
	}
	if page >= pages {
		page = pages - 1
	}
	start := page * pageSize
	end := start + pageSize
	if end > len(accounts) {
		end = len(accounts)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "<b>%s</b> — страница %d/%d\n\n", escape(category), page+1, pages)
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, pageSize+2)
	for _, acc := range accounts[start:end] {
		fmt.Fprintf(&sb, "▫️ <b>%s</b> — %s VND\n%s\n\n", escape(acc.Name), formatVND(acc.Price), escape(acc.Description))
		row := []tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("Купить: %s", acc.Name),
				encodePayload(payload{Action: actionBuy, AccountID: acc.ID}),
			),
		}
		if len(acc.ImageURLs) > 0 {
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(
				"📷", encodePayload(payload{Action: actionImage, AccountID: acc.ID}),
			))
		}
		rows = append(rows, row)
	}

	if pages > 1 {
		nav := make([]tgbotapi.InlineKeyboardButton, 0, 2)
		if page > 0 {
			nav = append(nav, tgbotapi.NewInlineKeyboardButtonData(
				"⬅️ Назад", encodePayload(payload{Action: actionPage, Category: category, Index: page - 1}),
			))
		}
		if page < pages-1 {
			nav = append(nav, tgbotapi.NewInlineKeyboardButtonData(
				"Вперед ➡️", encodePayload(payload{Action: actionPage, Category: category, Index: page + 1}),
			))
		}
		rows = append(rows, nav)
	}

	return sb.String(), tgbotapi.NewInlineKeyboardMarkup(rows...), nil
}

// accountImages отправляет покупателю изображения товара
func (b *Bot) accountImages(ctx context.Context, chatID int64, account *domain.Account) {
	if len(account.ImageURLs) == 0 {
		b.reply(chatID, "Для этого товара нет изображений.")
		return
	}
	for _, u := range account.ImageURLs {
		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileURL(u))
		photo.Caption = account.Name
		if _, err := b.api.Send(photo); err != nil {
			b.logger.Warn("Не удалось отправить изображение товара", zap.Error(err))
		}
	}
}

// formatVND форматирует сумму с разделителями тысяч (100000 -> 100.000)
func formatVND(n int64) string {
	s := fmt.Sprintf("%d", n)
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)
	out := strings.Join(parts, ".")
	if neg {
		out = "-" + out
	}
	return out
}

// escape экранирует текст для Telegram HTML-разметки
func escape(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}
