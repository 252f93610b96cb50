// Package orderid генерирует идентификаторы заказов, которые покупатель
// указывает в назначении банковского перевода. Идентификатор содержит
// метку времени создания, что упрощает трассировку оплат.
package orderid

import (
	"fmt"
	"strconv"
	"time"
)

const buyerTailLen = 4

// New генерирует идентификатор заказа вида
// <prefix><unix-миллисекунды><последние цифры ID покупателя>.
// Уникальность обеспечивается правилом "одна активная сессия на
// покупателя" в сочетании с миллисекундной меткой времени.
func New(prefix string, buyerID int64) string {
	tail := strconv.FormatInt(buyerID, 10)
	if len(tail) > buyerTailLen {
		tail = tail[len(tail)-buyerTailLen:]
	}
	return fmt.Sprintf("%s%d%s", prefix, time.Now().UnixMilli(), tail)
}
