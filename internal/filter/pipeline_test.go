package filter

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/milos55/marketscraper/internal/catalogue"
	"github.com/milos55/marketscraper/internal/models"
	"github.com/milos55/marketscraper/internal/search"
)

// Тесты пайплайна.
//
// Покрытие (сценарии из свойств системы):
//  - категория: точное совпадение, исходный относительный порядок;
//  - поиск: ALL против ANY; ordered-ALL чувствителен к порядку термов;
//  - цена: включающие границы, «по договор» видим только при min по
//    умолчанию, заглушка «цена 1»;
//  - локация: точное совпадение;
//  - сортировки стабильны; без ключа порядок каталога сохраняется;
//  - идемпотентность: два прогона с одним состоянием — одинаковый результат.

func buildCatalogue(t *testing.T, raw []models.RawAd) *catalogue.Catalogue {
	t.Helper()

	c := catalogue.New()
	c.Load(context.Background(), raw)
	return c
}

func raw(link, title, desc, category, location, price, cur, date string) models.RawAd {
	return models.RawAd{
		Title:    title,
		Desc:     desc,
		Category: category,
		Location: location,
		Price:    json.RawMessage(price),
		Currency: cur,
		Date:     date,
		Link:     link,
	}
}

func links(ads []*models.Ad) []string {
	out := make([]string, 0, len(ads))
	for _, ad := range ads {
		out = append(out, ad.Link)
	}
	return out
}

func TestRun_CategoryStage(t *testing.T) {
	t.Parallel()

	cat := buildCatalogue(t, []models.RawAd{
		raw("1", "a", "", "Electronics", "", `100`, "ден", "2025-01-01"),
		raw("2", "b", "", "Vehicles", "", `100`, "ден", "2025-01-02"),
		raw("3", "c", "", "Electronics", "", `100`, "ден", "2025-01-03"),
		raw("4", "d", "", "Furniture", "", `100`, "ден", "2025-01-04"),
		raw("5", "e", "", "Vehicles", "", `100`, "ден", "2025-01-05"),
	})
	p := New(cat)

	got := p.Run(context.Background(), models.FilterState{Category: "Electronics"}, models.SearchQuery{})

	// Ровно две записи, в исходном относительном порядке.
	require.Equal(t, []string{"1", "3"}, links(got))
}

func TestRun_SearchAllVsAny(t *testing.T) {
	t.Parallel()

	cat := buildCatalogue(t, []models.RawAd{
		raw("a-only", "alpha", "", "", "", `100`, "ден", "2025-01-01"),
		raw("both", "alpha beta", "", "", "", `100`, "ден", "2025-01-02"),
	})
	p := New(cat)

	q := models.SearchQuery{
		Terms: []string{"alpha", "beta"},
		Scope: models.MatchScope{Title: true},
	}

	// ALL: только запись с обоими термами.
	q.Mode = models.MatchAll
	require.Equal(t, []string{"both"}, links(p.Run(context.Background(), models.FilterState{}, q)))

	// ANY: обе записи.
	q.Mode = models.MatchAny
	require.Equal(t, []string{"a-only", "both"}, links(p.Run(context.Background(), models.FilterState{}, q)))
}

func TestRun_SearchOrdered(t *testing.T) {
	t.Parallel()

	cat := buildCatalogue(t, []models.RawAd{
		raw("x", "blue car red", "", "", "", `100`, "ден", "2025-01-01"),
	})
	p := New(cat)

	base := models.SearchQuery{
		Scope:   models.MatchScope{Title: true},
		Mode:    models.MatchAll,
		Ordered: true,
	}

	q := base
	q.Terms = []string{"car", "red"}
	require.Len(t, p.Run(context.Background(), models.FilterState{}, q), 1)

	// Неверный порядок в ordered-ALL не проходит...
	q.Terms = []string{"red", "car"}
	require.Empty(t, p.Run(context.Background(), models.FilterState{}, q))

	// ...но проходит в unordered-ALL.
	q.Ordered = false
	require.Len(t, p.Run(context.Background(), models.FilterState{}, q), 1)
}

func TestRun_SearchDefaultScopeIsBothFields(t *testing.T) {
	t.Parallel()

	cat := buildCatalogue(t, []models.RawAd{
		raw("in-desc", "nothing here", "samsung galaxy", "", "", `100`, "ден", "2025-01-01"),
	})
	p := New(cat)

	q := models.SearchQuery{Terms: []string{"samsung"}, Mode: models.MatchAll}
	require.Len(t, p.Run(context.Background(), models.FilterState{}, q), 1)
}

func TestRun_PriceBoundsInclusive(t *testing.T) {
	t.Parallel()

	cat := buildCatalogue(t, []models.RawAd{
		raw("low", "a", "", "", "", `500`, "ден", "2025-01-01"),
		raw("min", "b", "", "", "", `1000`, "ден", "2025-01-02"),
		raw("mid", "c", "", "", "", `2000`, "ден", "2025-01-03"),
		raw("max", "d", "", "", "", `3000`, "ден", "2025-01-04"),
		raw("high", "e", "", "", "", `3500`, "ден", "2025-01-05"),
	})
	p := New(cat)

	state := models.FilterState{
		Prices: models.PriceRange{Min: 1000, Max: 3000, Currency: "MKD"},
	}

	// Границы включающие: min и max остаются.
	require.Equal(t, []string{"min", "mid", "max"}, links(p.Run(context.Background(), state, models.SearchQuery{})))
}

func TestRun_PriceRangeConvertsCurrency(t *testing.T) {
	t.Parallel()

	cat := buildCatalogue(t, []models.RawAd{
		raw("eur", "a", "", "", "", `100`, "€", "2025-01-01"),   // 6150 ден
		raw("mkd", "b", "", "", "", `6000`, "ден", "2025-01-02"),
		raw("cheap", "c", "", "", "", `100`, "ден", "2025-01-03"),
	})
	p := New(cat)

	state := models.FilterState{
		Prices: models.PriceRange{Min: 5000, Max: 7000, Currency: "MKD"},
	}

	require.Equal(t, []string{"eur", "mkd"}, links(p.Run(context.Background(), state, models.SearchQuery{})))
}

func TestRun_NegotiableVisibility(t *testing.T) {
	t.Parallel()

	cat := buildCatalogue(t, []models.RawAd{
		raw("priced", "a", "", "", "", `2000`, "ден", "2025-01-01"),
		raw("dogovor", "b", "", "", "", `""`, "ПоДоговор", "2025-01-02"),
	})
	p := New(cat)

	// Нижняя граница по умолчанию: «по договор» в выдаче.
	got := p.Run(context.Background(), models.FilterState{}, models.SearchQuery{})
	require.Equal(t, []string{"priced", "dogovor"}, links(got))

	// Поднятый min прячет «по договор».
	state := models.FilterState{Prices: models.PriceRange{Min: 100}}
	require.Equal(t, []string{"priced"}, links(p.Run(context.Background(), state, models.SearchQuery{})))

	// Чекбокс исключает «по договор» всегда.
	state = models.FilterState{ExcludeNegotiable: true}
	require.Equal(t, []string{"priced"}, links(p.Run(context.Background(), state, models.SearchQuery{})))
}

func TestRun_TokenPriceExclusion(t *testing.T) {
	t.Parallel()

	cat := buildCatalogue(t, []models.RawAd{
		raw("token", "a", "", "", "", `1`, "ден", "2025-01-01"),
		raw("real", "b", "", "", "", `1500`, "ден", "2025-01-02"),
	})
	p := New(cat)

	got := p.Run(context.Background(), models.FilterState{ExcludeTokenPrice: true}, models.SearchQuery{})
	require.Equal(t, []string{"real"}, links(got))

	// Без чекбокса заглушка остаётся.
	got = p.Run(context.Background(), models.FilterState{}, models.SearchQuery{})
	require.Equal(t, []string{"token", "real"}, links(got))
}

func TestRun_LocationStage(t *testing.T) {
	t.Parallel()

	cat := buildCatalogue(t, []models.RawAd{
		raw("sk", "a", "", "", "Скопје", `100`, "ден", "2025-01-01"),
		raw("bt", "b", "", "", "Битола", `100`, "ден", "2025-01-02"),
	})
	p := New(cat)

	got := p.Run(context.Background(), models.FilterState{Location: "Битола"}, models.SearchQuery{})
	require.Equal(t, []string{"bt"}, links(got))
}

func TestRun_Sorts(t *testing.T) {
	t.Parallel()

	cat := buildCatalogue(t, []models.RawAd{
		raw("mid", "a", "", "", "", `200`, "ден", "2025-01-02"),
		raw("old", "b", "", "", "", `300`, "ден", "2025-01-01"),
		raw("new", "c", "", "", "", `100`, "ден", "2025-01-03"),
	})
	p := New(cat)

	run := func(key models.SortKey) []string {
		return links(p.Run(context.Background(), models.FilterState{Sort: key}, models.SearchQuery{}))
	}

	require.Equal(t, []string{"new", "mid", "old"}, run(models.SortNewest))
	require.Equal(t, []string{"old", "mid", "new"}, run(models.SortOldest))
	require.Equal(t, []string{"new", "mid", "old"}, run(models.SortCheapest))
	require.Equal(t, []string{"old", "mid", "new"}, run(models.SortExpensive))
	// Без ключа — порядок каталога.
	require.Equal(t, []string{"mid", "old", "new"}, run(models.SortNone))
}

// TestRun_ConcurrentCurrencies — два сеанса фильтруют общий каталог в
// разных валютах одновременно, третий поток его перезагружает.
// Прогоны не делят изменяемых структур: под -race чисто, каждый прогон
// видит согласованные цены своего снапшота.
func TestRun_ConcurrentCurrencies(t *testing.T) {
	t.Parallel()

	feed := []models.RawAd{
		raw("1", "a", "", "", "", `6150`, "ден", "2025-01-01"),
		raw("2", "b", "", "", "", `100`, "€", "2025-01-02"),
		raw("3", "c", "", "", "", `300`, "€", "2025-01-03"),
	}
	cat := buildCatalogue(t, feed)
	p := New(cat)

	mkd := models.FilterState{Prices: models.PriceRange{Min: 1, Currency: "MKD"}}
	eur := models.FilterState{Prices: models.PriceRange{Min: 1, Currency: "EUR"}}

	var (
		wg      sync.WaitGroup
		dropped atomic.Int64
	)
	for _, state := range []models.FilterState{mkd, eur} {
		state := state
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				got := p.Run(context.Background(), state, models.SearchQuery{})
				// Все три записи ценовые и с известным курсом:
				// ни одна не теряется ни при каком чередовании.
				if len(got) != 3 {
					dropped.Add(1)
				}
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			cat.Load(context.Background(), feed)
		}
	}()

	wg.Wait()
	require.Zero(t, dropped.Load())
}

// TestRun_TrailingCommaKeepsMatches — хвостовая запятая в поиске не
// опустошает выдачу: пустые термы не участвуют в сопоставлении.
func TestRun_TrailingCommaKeepsMatches(t *testing.T) {
	t.Parallel()

	cat := buildCatalogue(t, []models.RawAd{
		raw("1", "samsung galaxy", "", "", "", `1500`, "ден", "2025-01-01"),
		raw("2", "audi a4", "", "", "", `5000`, "€", "2025-01-02"),
	})
	p := New(cat)

	q := models.SearchQuery{Terms: search.ParseTerms("samsung,")}

	got := p.Run(context.Background(), models.FilterState{}, q)
	require.Equal(t, []string{"1"}, links(got))
}

func TestRun_Idempotent(t *testing.T) {
	t.Parallel()

	cat := buildCatalogue(t, []models.RawAd{
		raw("1", "samsung telefon", "", "Electronics", "Скопје", `1500`, "ден", "2025-01-01"),
		raw("2", "audi a4", "", "Vehicles", "Битола", `5000`, "€", "2025-01-02"),
		raw("3", "dogovor", "", "Electronics", "Скопје", `""`, "ПоДоговор", "2025-01-03"),
	})
	p := New(cat)

	state := models.FilterState{Category: "Electronics", Sort: models.SortNewest}
	q := models.SearchQuery{Terms: []string{""}}

	first := p.Run(context.Background(), state, q)
	second := p.Run(context.Background(), state, q)

	require.Equal(t, links(first), links(second))
}
