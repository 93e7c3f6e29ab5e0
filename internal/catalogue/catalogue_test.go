package catalogue

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/milos55/marketscraper/internal/currency"
	"github.com/milos55/marketscraper/internal/models"
)

// Тесты каталога.
//
// Покрытие:
//  - Load: валидация (числовая цена либо «по договор»), дедупликация по
//    ссылке, разбор даты, цена числом и числовой строкой;
//  - PricesFor: мемоизация, идемпотентность, работа по снапшоту,
//    деградация на неизвестной валюте;
//  - Invalidate: полный сброс.

func rawAd(link, price, cur string) models.RawAd {
	return models.RawAd{
		Title:    "t",
		Link:     link,
		Price:    json.RawMessage(price),
		Currency: cur,
		Date:     "2025-04-01 10:30:00",
	}
}

func TestLoad_ValidationAndDedup(t *testing.T) {
	t.Parallel()

	c := New()
	n := c.Load(context.Background(), []models.RawAd{
		rawAd("a", `100`, "ден"),
		rawAd("b", `"250"`, "€"),      // числовая строка — валидна
		rawAd("c", `""`, "ПоДоговор"), // «по договор» без цены — валидна
		rawAd("d", `""`, "ден"),       // ни цены, ни «по договор» — отброс
		rawAd("a", `999`, "ден"),      // дубликат ссылки — отброс
	})

	require.Equal(t, 3, n)
	require.Equal(t, 3, c.Len())

	ads := c.All()
	require.Equal(t, "a", ads[0].Link)
	require.Equal(t, 100.0, ads[0].Price)
	require.Equal(t, currency.MKD, ads[0].Currency)
	require.Equal(t, 2025, ads[0].PostedAt.Year())

	require.Equal(t, 250.0, ads[1].Price)
	require.Equal(t, currency.EUR, ads[1].Currency)

	require.Equal(t, currency.Negotiable, ads[2].Currency)
	require.NotEqual(t, ads[0].ID, ads[1].ID)
}

func TestPricesFor_MemoizesOnce(t *testing.T) {
	t.Parallel()

	c := New()
	c.Load(context.Background(), []models.RawAd{
		rawAd("a", `6150`, "ден"),
		rawAd("b", `100`, "€"),
		rawAd("c", `""`, "ПоДоговор"),
	})

	ads := c.All()
	prices := c.PricesFor(context.Background(), ads, "EUR")

	require.InDelta(t, 100, prices[ads[0].ID], 1e-9)
	require.InDelta(t, 100, prices[ads[1].ID], 1e-9)
	// «По договор» не пересчитывается.
	require.NotContains(t, prices, ads[2].ID)

	// Идемпотентность: подменяем кэш и убеждаемся, что повтор не пересчитывает.
	ads[0].Converted["EUR"] = 42
	prices = c.PricesFor(context.Background(), ads, "EUR")
	require.Equal(t, 42.0, prices[ads[0].ID])
}

func TestPricesFor_UnknownCurrencyDegradesToZero(t *testing.T) {
	t.Parallel()

	c := New()
	c.Load(context.Background(), []models.RawAd{
		rawAd("a", `100`, "USD"), // цена валидна, но курса нет
	})

	ads := c.All()
	prices := c.PricesFor(context.Background(), ads, "MKD")
	require.Equal(t, 0.0, prices[ads[0].ID])
}

// TestPricesFor_StaleSnapshot — пересчёт идёт по переданному снапшоту,
// а не по текущему содержимому: полная перезагрузка каталога между
// взятием снапшота и пересчётом не теряет цены прохода.
func TestPricesFor_StaleSnapshot(t *testing.T) {
	t.Parallel()

	c := New()
	c.Load(context.Background(), []models.RawAd{rawAd("a", `6150`, "ден")})
	snapshot := c.All()

	c.Load(context.Background(), []models.RawAd{rawAd("b", `999`, "ден")})

	prices := c.PricesFor(context.Background(), snapshot, "EUR")
	require.Len(t, prices, 1)
	require.InDelta(t, 100, prices[snapshot[0].ID], 1e-9)
}

func TestPricesFor_NegotiableTarget(t *testing.T) {
	t.Parallel()

	c := New()
	c.Load(context.Background(), []models.RawAd{rawAd("a", `100`, "ден")})

	require.Nil(t, c.PricesFor(context.Background(), c.All(), "ПоДоговор"))
	require.Nil(t, c.PricesFor(context.Background(), c.All(), ""))
}

func TestInvalidate(t *testing.T) {
	t.Parallel()

	c := New()
	c.Load(context.Background(), []models.RawAd{rawAd("a", `1`, "ден")})
	require.False(t, c.LoadedAt().IsZero())

	c.Invalidate()
	require.Equal(t, 0, c.Len())
	require.True(t, c.LoadedAt().IsZero())
}
