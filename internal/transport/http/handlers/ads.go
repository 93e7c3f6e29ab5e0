package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/milos55/marketscraper/internal/controller"
	"github.com/milos55/marketscraper/internal/models"
	"github.com/milos55/marketscraper/internal/render"
	apierrors "github.com/milos55/marketscraper/internal/transport/http/errors"
)

// adsResponse — страница выдачи с эхом фильтров.
type adsResponse struct {
	Lang       string            `json:"lang"`
	Items      []render.AdView   `json:"items"`
	Pagination models.Pagination `json:"pagination"`
	Filters    filtersEcho       `json:"filters"`
}

// filtersEcho — сериализуемый снимок фильтров сессии.
type filtersEcho struct {
	Category          string  `json:"category"`
	Location          string  `json:"location"`
	PriceMin          float64 `json:"price_min"`
	PriceMax          float64 `json:"price_max"`
	PriceCurrency     string  `json:"price_currency"`
	ExcludeNegotiable bool    `json:"exclude_negotiable"`
	ExcludeTokenPrice bool    `json:"exclude_token_price"`
	Sort              string  `json:"sort"`
}

// filtersRequest — частичное обновление фильтров: применяются только
// присланные поля.
type filtersRequest struct {
	Category          *string  `json:"category"`
	Location          *string  `json:"location"`
	Search            *string  `json:"search"`
	MatchMode         *string  `json:"match_mode"`
	Ordered           *bool    `json:"ordered"`
	SearchInTitle     *bool    `json:"search_in_title"`
	SearchInDesc      *bool    `json:"search_in_description"`
	PriceMin          *float64 `json:"price_min"`
	PriceMax          *float64 `json:"price_max"`
	PriceCurrency     *string  `json:"price_currency"`
	ExcludeNegotiable *bool    `json:"exclude_negotiable"`
	ExcludeTokenPrice *bool    `json:"exclude_token_price"`
	Sort              *string  `json:"sort"`
}

type pageRequest struct {
	Page int `json:"page"`
}

// ListAds — GET /{lang}/ads?page=N.
// page приходит из истории навигации: страница восстанавливается
// без пересчёта фильтров и без проверки верхней границы.
func (h *Handlers) ListAds(w http.ResponseWriter, r *http.Request) {
	lang := normalizeLang(chi.URLParam(r, "lang"))
	ctrl := h.controllerFor(w, r)

	if v := r.URL.Query().Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			apierrors.WriteError(w, r, errInvalidArgument("page %q", v))
			return
		}

		ctrl.RestorePage(n)
	}

	h.respondAds(w, r, lang, ctrl)
}

// UpdateFilters — POST /{lang}/ads/filters: применяет присланные поля
// и возвращает пересчитанную первую страницу выдачи.
func (h *Handlers) UpdateFilters(w http.ResponseWriter, r *http.Request) {
	lang := normalizeLang(chi.URLParam(r, "lang"))

	var req filtersRequest
	if err := decodeStrict(r, &req); err != nil {
		apierrors.WriteError(w, r, errInvalidArgument("body: %v", err))
		return
	}

	ctrl := h.controllerFor(w, r)
	ctx := r.Context()

	if req.Category != nil {
		ctrl.SetCategory(ctx, *req.Category)
	}
	if req.Location != nil {
		ctrl.SetLocation(ctx, *req.Location)
	}
	if req.Sort != nil {
		if err := ctrl.SetSort(ctx, models.SortKey(*req.Sort)); err != nil {
			apierrors.WriteError(w, r, err)
			return
		}
	}
	if req.ExcludeNegotiable != nil {
		ctrl.SetExcludeNegotiable(ctx, *req.ExcludeNegotiable)
	}
	if req.ExcludeTokenPrice != nil {
		ctrl.SetExcludeTokenPrice(ctx, *req.ExcludeTokenPrice)
	}
	if req.MatchMode != nil {
		if err := ctrl.SetMatchMode(models.MatchMode(*req.MatchMode)); err != nil {
			apierrors.WriteError(w, r, err)
			return
		}
	}
	if req.Ordered != nil {
		ctrl.SetOrdered(*req.Ordered)
	}
	if req.SearchInTitle != nil || req.SearchInDesc != nil {
		title := req.SearchInTitle == nil || *req.SearchInTitle
		desc := req.SearchInDesc == nil || *req.SearchInDesc
		ctrl.SetScope(title, desc)
	}
	if req.Search != nil {
		ctrl.SetSearch(*req.Search)
	}
	if req.PriceMin != nil || req.PriceMax != nil || req.PriceCurrency != nil {
		prices := ctrl.State().Prices
		if req.PriceMin != nil {
			prices.Min = *req.PriceMin
		}
		if req.PriceMax != nil {
			prices.Max = *req.PriceMax
		}
		if req.PriceCurrency != nil {
			prices.Currency = *req.PriceCurrency
		}

		if err := ctrl.SetPriceRange(prices.Min, prices.Max, prices.Currency); err != nil {
			apierrors.WriteError(w, r, err)
			return
		}
	}

	h.respondAds(w, r, lang, ctrl)
}

// SetPage — POST /{lang}/ads/page: валидный переход по страницам.
// Вне диапазона — 400, текущая страница не меняется.
func (h *Handlers) SetPage(w http.ResponseWriter, r *http.Request) {
	lang := normalizeLang(chi.URLParam(r, "lang"))

	var req pageRequest
	if err := decodeStrict(r, &req); err != nil {
		apierrors.WriteError(w, r, errInvalidArgument("body: %v", err))
		return
	}

	ctrl := h.controllerFor(w, r)

	if !ctrl.SetPage(r.Context(), req.Page) {
		apierrors.WriteError(w, r, errInvalidArgument("page %d out of range", req.Page))
		return
	}

	h.respondAds(w, r, lang, ctrl)
}

// AdsHTML — GET /{lang}/ads/html: та же страница выдачи готовой разметкой.
// Рендер идёт из возвращённой страницы в приёмник запроса: состояние
// контроллера не трогаем, параллельные запросы одной сессии не делят
// буфер отрисовки.
func (h *Handlers) AdsHTML(w http.ResponseWriter, r *http.Request) {
	ctrl := h.controllerFor(w, r)

	page := ctrl.Results(r.Context())

	target := &render.HTMLTarget{}
	target.Render(render.Views(page.Items), page.Pagination)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = target.WriteTo(w)
}

// respondAds — общий хвост: текущая страница выдачи + эхо фильтров.
func (h *Handlers) respondAds(w http.ResponseWriter, r *http.Request, lang string, ctrl *controller.Controller) {
	page := ctrl.Results(r.Context())
	state := ctrl.State()

	writeJSON(w, http.StatusOK, adsResponse{
		Lang:       lang,
		Items:      render.Views(page.Items),
		Pagination: page.Pagination,
		Filters: filtersEcho{
			Category:          state.Category,
			Location:          state.Location,
			PriceMin:          state.Prices.Min,
			PriceMax:          state.Prices.Max,
			PriceCurrency:     state.Prices.Currency,
			ExcludeNegotiable: state.ExcludeNegotiable,
			ExcludeTokenPrice: state.ExcludeTokenPrice,
			Sort:              string(state.Sort),
		},
	})
}
