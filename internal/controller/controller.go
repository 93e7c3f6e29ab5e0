// controller — состояние выдачи одной сессии: фильтры, поиск,
// пагинация и дебаунс пересчёта. Источник данных (каталог) общий,
// состояние — своё на сессию.
package controller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/milos55/marketscraper/internal/filter"
	"github.com/milos55/marketscraper/internal/models"
	"github.com/milos55/marketscraper/internal/pagination"
	"github.com/milos55/marketscraper/internal/render"
	"github.com/milos55/marketscraper/internal/sched"
	"github.com/milos55/marketscraper/internal/search"
	"github.com/milos55/marketscraper/pkg/log"
)

// ErrInvalidInput — отвергнутое значение фильтра; состояние не меняется.
var ErrInvalidInput = errors.New("invalid input")

// Controller ведёт состояние выдачи одной сессии поверх общего каталога.
// Все методы потокобезопасны.
type Controller struct {
	mu sync.Mutex

	pipe  *filter.Pipeline
	pages *pagination.State
	deb   *sched.Debouncer

	state models.FilterState
	query models.SearchQuery

	// filtered — последний пересчитанный результат; dirty помечает,
	// что состояние изменилось и пересчёт ещё не выполнялся.
	filtered []*models.Ad
	dirty    bool

	target render.Target

	// baseCtx живёт дольше любого HTTP-запроса: дебаунс-горутина
	// пересчитывает уже после того, как запрос, её поставивший, завершён.
	baseCtx context.Context
}

// New создаёт контроллер с пустыми фильтрами на первой странице.
func New(ctx context.Context, pipe *filter.Pipeline, pageSize int, debounce time.Duration) *Controller {
	if ctx == nil {
		ctx = context.Background()
	}

	return &Controller{
		pipe:    pipe,
		pages:   pagination.New(pageSize),
		deb:     sched.New(debounce),
		dirty:   true,
		baseCtx: ctx,
	}
}

// SetRenderTarget подключает приёмник отрисовки; nil отключает.
func (c *Controller) SetRenderTarget(t render.Target) {
	c.mu.Lock()
	c.target = t
	c.mu.Unlock()
}

// SetCategory выбирает категорию ("" — все) и немедленно пересчитывает
// выдачу с возвратом на первую страницу.
func (c *Controller) SetCategory(ctx context.Context, category string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state.Category = category
	c.recomputeLocked(ctx, false)
}

// SetLocation выбирает локацию ("" — все); пересчёт немедленный.
func (c *Controller) SetLocation(ctx context.Context, location string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state.Location = location
	c.recomputeLocked(ctx, false)
}

// SetSort меняет порядок сортировки; пересчёт немедленный.
// Неизвестный ключ отвергается без изменения состояния.
func (c *Controller) SetSort(ctx context.Context, key models.SortKey) error {
	const op = "controller.SetSort"

	if !key.Valid() {
		return fmt.Errorf("%s: %w: sort %q", op, ErrInvalidInput, key)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.state.Sort = key
	c.recomputeLocked(ctx, false)

	return nil
}

// SetExcludeNegotiable переключает скрытие объявлений «по договор».
func (c *Controller) SetExcludeNegotiable(ctx context.Context, exclude bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state.ExcludeNegotiable = exclude
	c.recomputeLocked(ctx, false)
}

// SetExcludeTokenPrice переключает скрытие объявлений с ценой-заглушкой.
func (c *Controller) SetExcludeTokenPrice(ctx context.Context, exclude bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state.ExcludeTokenPrice = exclude
	c.recomputeLocked(ctx, false)
}

// SetMatchMode задаёт режим сопоставления термов; пересчёт отложенный,
// как и у остальных параметров поиска.
func (c *Controller) SetMatchMode(mode models.MatchMode) error {
	const op = "controller.SetMatchMode"

	if mode != models.MatchAll && mode != models.MatchAny {
		return fmt.Errorf("%s: %w: mode %q", op, ErrInvalidInput, mode)
	}

	c.mu.Lock()
	c.query.Mode = mode
	c.markDirtyLocked()
	c.mu.Unlock()

	c.deb.Schedule(c.debouncedRecompute)

	return nil
}

// SetScope задаёт поля поиска; при обоих false поиск идёт по обоим полям.
func (c *Controller) SetScope(title, description bool) {
	c.mu.Lock()
	c.query.Scope = models.MatchScope{Title: title, Description: description}
	c.markDirtyLocked()
	c.mu.Unlock()

	c.deb.Schedule(c.debouncedRecompute)
}

// SetOrdered переключает упорядоченный поиск термов.
func (c *Controller) SetOrdered(ordered bool) {
	c.mu.Lock()
	c.query.Ordered = ordered
	c.markDirtyLocked()
	c.mu.Unlock()

	c.deb.Schedule(c.debouncedRecompute)
}

// SetSearch принимает сырой ввод строки поиска. Термы пересобираются
// на каждый вызов, пересчёт откладывается до паузы ввода.
func (c *Controller) SetSearch(input string) {
	c.mu.Lock()
	c.query.Terms = search.ParseTerms(input)
	c.markDirtyLocked()
	c.mu.Unlock()

	c.deb.Schedule(c.debouncedRecompute)
}

// SetPriceRange задаёт границы цены в валюте cur. Отрицательные границы
// и min > max отвергаются без изменения состояния; пересчёт отложенный.
func (c *Controller) SetPriceRange(min, max float64, cur string) error {
	const op = "controller.SetPriceRange"

	if min < 0 || max < 0 {
		return fmt.Errorf("%s: %w: negative bound", op, ErrInvalidInput)
	}
	if max > 0 && min > max {
		return fmt.Errorf("%s: %w: min %v above max %v", op, ErrInvalidInput, min, max)
	}

	c.mu.Lock()
	c.state.Prices = models.PriceRange{Min: min, Max: max, Currency: cur}
	c.markDirtyLocked()
	c.mu.Unlock()

	c.deb.Schedule(c.debouncedRecompute)

	return nil
}

// SetPage переходит на страницу n текущей выдачи. Переход вне диапазона
// отвергается с сохранением прежней страницы. Смена страницы не трогает
// фильтры и не перезагружает каталог.
func (c *Controller) SetPage(ctx context.Context, n int) bool {
	c.deb.Flush()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.dirty {
		c.recomputeLocked(ctx, true)
	}

	return c.pages.SetPage(n, len(c.filtered))
}

// RestorePage восстанавливает страницу из истории навигации без
// пересчёта фильтров и без проверки верхней границы: выдача за краем
// просто окажется пустой.
func (c *Controller) RestorePage(n int) {
	c.mu.Lock()
	c.pages.Restore(n)
	c.mu.Unlock()
}

// Page — текущая страница.
func (c *Controller) Page() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.pages.Page()
}

// State — копия текущих фильтров для эха клиенту.
func (c *Controller) State() models.FilterState {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.state
}

// Results отдаёт страницу текущей выдачи. Хвост дебаунса сбрасывается:
// читатель всегда видит результат последнего ввода. Подключённый
// render.Target получает те же карточки.
func (c *Controller) Results(ctx context.Context) models.ResultPage {
	c.deb.Flush()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.dirty {
		c.recomputeLocked(ctx, true)
	}

	items := pagination.Slice(c.filtered, c.pages.Page(), c.pages.Size())
	page := models.ResultPage{
		Items:      items,
		Pagination: c.pages.Summary(len(c.filtered)),
	}

	if c.target != nil {
		c.target.Render(render.Views(items), page.Pagination)
	}

	return page
}

// Close останавливает дебаунс; дальнейшие постановки игнорируются.
func (c *Controller) Close() {
	c.deb.Stop()
}

// markDirtyLocked помечает состояние изменённым. Вызывается под mu.
func (c *Controller) markDirtyLocked() {
	c.dirty = true
}

// recomputeLocked прогоняет пайплайн и фиксирует результат.
// preservePage оставляет текущую страницу (чтение, восстановление);
// иначе пагинация возвращается на первую страницу. Вызывается под mu.
func (c *Controller) recomputeLocked(ctx context.Context, preservePage bool) {
	c.filtered = c.pipe.Run(ctx, c.state, c.query)
	c.dirty = false

	if !preservePage {
		c.pages.Reset()
	}

	log.From(ctx).Debug("results_recomputed",
		slog.String("op", "controller.recompute"),
		slog.Int("matched", len(c.filtered)),
		slog.Int("page", c.pages.Page()),
	)
}

// debouncedRecompute — пересчёт по срабатыванию дебаунса.
func (c *Controller) debouncedRecompute() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.dirty {
		c.recomputeLocked(c.baseCtx, false)
	}
}
