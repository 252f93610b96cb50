package service

// FinalPrice вычисляет сумму к оплате и размер скидки для базовой цены
// и процента скидки. Скидка округляется вниз до целого; при 100%
// сумма к оплате равна нулю без участия округления.
func FinalPrice(base int64, discountPct int) (final, discount int64) {
	switch {
	case discountPct >= 100:
		return 0, base
	case discountPct <= 0:
		return base, 0
	}

	discount = base * int64(discountPct) / 100
	final = base - discount
	if final < 0 {
		final = 0
	}
	return final, discount
}
