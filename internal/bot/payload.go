package bot

import (
	"encoding/json"
	"fmt"
)

// Действия inline-клавиатуры
const (
	actionCategory = "cat"
	actionPage     = "pg"
	actionBuy      = "buy"
	actionImage    = "img"
)

// payload описывает данные callback-кнопки. Telegram ограничивает
// callback data 64 байтами, поэтому ключи однобуквенные.
type payload struct {
	Action    string `json:"a"`
	Category  string `json:"c,omitempty"`
	Index     int    `json:"i,omitempty"`
	AccountID int64  `json:"id,omitempty"`
}

func encodePayload(p payload) string {
	data, err := json.Marshal(p)
	if err != nil {
		return ""
	}
	return string(data)
}

func decodePayload(data string) (payload, error) {
	var p payload
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return payload{}, fmt.Errorf("bot: malformed callback data: %w", err)
	}
	if p.Action == "" {
		return payload{}, fmt.Errorf("bot: callback data without action")
	}
	return p, nil
}
