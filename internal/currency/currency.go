// currency — нормализация обозначений валют и пересчёт сумм
// по фиксированному курсу.
package currency

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/milos55/marketscraper/pkg/log"
)

// Канонические коды валют фида.
const (
	MKD = "MKD"
	EUR = "EUR"
	// Negotiable — сентинел «цена по договор»: числового пересчёта нет,
	// вызывающий код обязан обработать его до Convert.
	Negotiable = "NEGOTIABLE"
)

// ErrUnknownCurrency — валюта отсутствует в таблице курсов.
var ErrUnknownCurrency = errors.New("unknown currency")

// rates — статичные курсы к денару (MKD за единицу валюты).
// Пересчёт любой пары идёт в два шага через MKD.
var rates = map[string]float64{
	MKD: 1,
	EUR: 61.5,
}

// normalizeMap — символы и легаси-формы фида -> канонический код.
var normalizeMap = map[string]string{
	"€":         EUR,
	"ден":       MKD,
	"ПоДоговор": Negotiable,
}

// Normalize приводит обозначение валюты к каноническому коду.
// Неизвестный вход проходит без изменений.
func Normalize(code string) string {
	code = strings.TrimSpace(code)
	if canonical, ok := normalizeMap[code]; ok {
		return canonical
	}

	return code
}

// Convert пересчитывает сумму из from в to через денар.
// Валюты нормализуются; Negotiable и неизвестные коды дают ErrUnknownCurrency.
func Convert(amount float64, from, to string) (float64, error) {
	from = Normalize(from)
	to = Normalize(to)

	rateFrom, ok := rates[from]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownCurrency, from)
	}

	rateTo, ok := rates[to]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownCurrency, to)
	}

	return amount * rateFrom / rateTo, nil
}

// ParseAmount разбирает числовое представление цены из фида.
// Неразбираемый вход — деградация, не сбой: возвращаем 0 и пишем ошибку
// в лог, объявление остаётся в выдаче.
func ParseAmount(ctx context.Context, raw string) float64 {
	amount, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		log.From(ctx).Error("price_parse_failed",
			slog.String("op", "currency.ParseAmount"),
			slog.String("raw", raw),
		)
		return 0
	}

	return amount
}
