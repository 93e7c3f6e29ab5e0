// filter — детерминированный пайплайн: категория -> поиск -> цена ->
// локация -> сортировка. Каждая стадия получает выход предыдущей,
// идемпотентна и не мутирует идентичность записей каталога.
package filter

import (
	"context"
	"sort"
	"strconv"

	"github.com/milos55/marketscraper/internal/catalogue"
	"github.com/milos55/marketscraper/internal/currency"
	"github.com/milos55/marketscraper/internal/models"
	"github.com/milos55/marketscraper/internal/search"
)

// tokenPriceSentinel — цена-заглушка источника «реальной цены нет».
// Сверяемся с нормализованным сырым представлением цены; числовое
// сравнение покрывает записи, где фид прислал цену числом.
var tokenPriceSentinel = strconv.Itoa(models.DefaultMinPrice)

// Pipeline — фильтрующий конвейер над общим каталогом.
type Pipeline struct {
	cat *catalogue.Catalogue
}

// New создаёт пайплайн над каталогом.
func New(cat *catalogue.Catalogue) *Pipeline {
	return &Pipeline{cat: cat}
}

// Run прогоняет каталог через все стадии и возвращает новый слайс.
// Одинаковые (state, query) над неизменным каталогом дают одинаковый
// упорядоченный результат.
func (p *Pipeline) Run(ctx context.Context, state models.FilterState, query models.SearchQuery) []*models.Ad {
	ads := p.cat.All()

	ads = applyCategory(ads, state)
	ads = applySearch(ads, query)
	ads = p.applyPrice(ctx, ads, state)
	ads = applyLocation(ads, state)

	return sortAds(ads, state.Sort)
}

// applyCategory — стадия 1: точное совпадение категории, если выбрана.
func applyCategory(ads []*models.Ad, state models.FilterState) []*models.Ad {
	if state.Category == "" {
		return ads
	}

	out := make([]*models.Ad, 0, len(ads))
	for _, ad := range ads {
		if ad != nil && ad.Category == state.Category {
			out = append(out, ad)
		}
	}

	return out
}

// applySearch — стадия 2: термы против включённых полей.
// Объявление остаётся, если совпало хотя бы одно включённое поле.
func applySearch(ads []*models.Ad, query models.SearchQuery) []*models.Ad {
	if query.Empty() {
		return ads
	}

	scope := query.Scope
	if !scope.Title && !scope.Description {
		// Ничего не включено — ищем по обоим полям.
		scope = models.MatchScope{Title: true, Description: true}
	}

	out := make([]*models.Ad, 0, len(ads))
	for _, ad := range ads {
		if ad == nil {
			continue
		}

		titleMatch := scope.Title && matchesAllTerms(ad.Title, query)
		descMatch := scope.Description && matchesAllTerms(ad.Description, query)

		if titleMatch || descMatch {
			out = append(out, ad)
		}
	}

	return out
}

// matchesAllTerms — диспетчер режимов поиска для одного поля.
func matchesAllTerms(text string, query models.SearchQuery) bool {
	if query.Ordered && query.Mode != models.MatchAny {
		return search.MatchesInOrder(text, query.Terms)
	}

	if query.Mode == models.MatchAny {
		for _, term := range query.Terms {
			if search.Matches(text, term) {
				return true
			}
		}
		return false
	}

	// Режим по умолчанию: каждый терм находится независимо.
	for _, term := range query.Terms {
		if !search.Matches(text, term) {
			return false
		}
	}

	return true
}

// applyPrice — стадия 3: заглушки, «по договор» и границы диапазона.
func (p *Pipeline) applyPrice(ctx context.Context, ads []*models.Ad, state models.FilterState) []*models.Ad {
	cur := currency.Normalize(state.Prices.Currency)
	if cur == "" {
		cur = currency.MKD
	}

	// Цены считаются по тому же снапшоту, который фильтруем: каталог
	// под конкурентным Load не разъезжается с проходом.
	prices := p.cat.PricesFor(ctx, ads, cur)

	min := state.Prices.EffectiveMin()
	max := state.Prices.EffectiveMax()

	out := make([]*models.Ad, 0, len(ads))
	for _, ad := range ads {
		if ad == nil {
			continue
		}

		if state.ExcludeTokenPrice && isTokenPrice(ad) {
			continue
		}

		if ad.Currency == currency.Negotiable {
			if state.ExcludeNegotiable {
				continue
			}
			// «По договор» видим только при неподнятой нижней границе.
			if state.Prices.AtDefaultMin() {
				out = append(out, ad)
			}
			continue
		}

		converted, ok := prices[ad.ID]
		if !ok {
			// Структурно неполная запись исключается, а не роняет стадию.
			continue
		}

		if converted >= min && converted <= max {
			out = append(out, ad)
		}
	}

	return out
}

// isTokenPrice распознаёт цену-заглушку.
func isTokenPrice(ad *models.Ad) bool {
	return currency.Normalize(ad.RawPrice) == tokenPriceSentinel ||
		ad.Price == models.DefaultMinPrice
}

// applyLocation — стадия 4: точное совпадение локации, если выбрана.
func applyLocation(ads []*models.Ad, state models.FilterState) []*models.Ad {
	if state.Location == "" {
		return ads
	}

	out := make([]*models.Ad, 0, len(ads))
	for _, ad := range ads {
		if ad != nil && ad.Location == state.Location {
			out = append(out, ad)
		}
	}

	return out
}

// sortAds — стадия 5: стабильная сортировка по ключу.
// Цена сортируется по исходному номиналу объявления, не по пересчёту.
// Без ключа порядок каталога сохраняется.
func sortAds(ads []*models.Ad, key models.SortKey) []*models.Ad {
	out := make([]*models.Ad, len(ads))
	copy(out, ads)

	switch key {
	case models.SortNewest:
		sort.SliceStable(out, func(i, j int) bool { return out[i].PostedAt.After(out[j].PostedAt) })
	case models.SortOldest:
		sort.SliceStable(out, func(i, j int) bool { return out[i].PostedAt.Before(out[j].PostedAt) })
	case models.SortCheapest:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	case models.SortExpensive:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price > out[j].Price })
	}

	return out
}
