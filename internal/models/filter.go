package models

import "math"

// MatchMode — режим сопоставления поисковых термов.
type MatchMode string

const (
	// MatchAll — каждый терм должен найтись (режим по умолчанию).
	MatchAll MatchMode = "every"
	// MatchAny — достаточно одного терма.
	MatchAny MatchMode = "some"
)

// MatchScope — по каким полям ищем.
type MatchScope struct {
	Title       bool
	Description bool
}

// SearchQuery — производное эфемерное состояние поиска,
// пересобирается на каждое событие ввода.
//
// Terms — упорядоченные lower-case термы (split по запятой, trim).
// Сентинел «без фильтра» — единственный пустой терм.
type SearchQuery struct {
	Terms   []string
	Scope   MatchScope
	Mode    MatchMode
	Ordered bool
}

// Empty сообщает, что реальных термов нет и стадия поиска пропускается.
func (q SearchQuery) Empty() bool {
	return len(q.Terms) == 0 || (len(q.Terms) == 1 && q.Terms[0] == "")
}

// SortKey — порядок сортировки результата.
type SortKey string

const (
	SortNone      SortKey = ""
	SortNewest    SortKey = "newest"
	SortOldest    SortKey = "oldest"
	SortCheapest  SortKey = "cheapest"
	SortExpensive SortKey = "expensive"
)

// Valid сообщает, что ключ сортировки известен.
func (k SortKey) Valid() bool {
	switch k {
	case SortNone, SortNewest, SortOldest, SortCheapest, SortExpensive:
		return true
	}
	return false
}

// DefaultMinPrice — нижняя граница цены по умолчанию.
// При Min == DefaultMinPrice объявления «по договор» остаются видимыми.
const DefaultMinPrice = 1

// PriceRange — границы цены в выбранной валюте.
// Max <= 0 трактуется как +Inf.
type PriceRange struct {
	Min      float64
	Max      float64
	Currency string
}

// EffectiveMin — нижняя граница с дефолтом.
func (p PriceRange) EffectiveMin() float64 {
	if p.Min <= 0 {
		return DefaultMinPrice
	}
	return p.Min
}

// EffectiveMax — верхняя граница с дефолтом +Inf.
func (p PriceRange) EffectiveMax() float64 {
	if p.Max <= 0 {
		return math.Inf(1)
	}
	return p.Max
}

// AtDefaultMin сообщает, что пользователь не поднимал нижнюю границу.
func (p PriceRange) AtDefaultMin() bool {
	return p.EffectiveMin() == DefaultMinPrice
}

// FilterState — изменяемое состояние фильтров сессии.
// Владелец — контроллер; пайплайн получает копию по значению.
type FilterState struct {
	Category          string
	Location          string
	Prices            PriceRange
	ExcludeNegotiable bool
	ExcludeTokenPrice bool
	Sort              SortKey
}
