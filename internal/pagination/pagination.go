// pagination — оконная арифметика страниц над отфильтрованным списком.
package pagination

import "github.com/milos55/marketscraper/internal/models"

// DefaultPageSize — объявлений на страницу.
const DefaultPageSize = 48

// State — состояние пагинации сессии.
// Инвариант: 1 <= page <= max(1, ceil(total/size)).
type State struct {
	page int
	size int
}

// New создаёт состояние на первой странице.
func New(size int) *State {
	if size <= 0 {
		size = DefaultPageSize
	}

	return &State{page: 1, size: size}
}

// TotalPages — число страниц для itemCount элементов (минимум 1).
func TotalPages(itemCount, pageSize int) int {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	pages := (itemCount + pageSize - 1) / pageSize
	if pages < 1 {
		return 1
	}

	return pages
}

// Slice возвращает окно страницы, с клампом по краям: страница за
// пределами диапазона даёт пустой срез (перенумерацию делает вызывающий
// код, не пайплайн).
func Slice[T any](items []T, page, pageSize int) []T {
	if page < 1 || pageSize <= 0 {
		return nil
	}

	lo := (page - 1) * pageSize
	if lo >= len(items) {
		return nil
	}

	hi := lo + pageSize
	if hi > len(items) {
		hi = len(items)
	}

	return items[lo:hi]
}

// Page — текущая страница.
func (s *State) Page() int { return s.page }

// Size — размер страницы.
func (s *State) Size() int { return s.size }

// SetPage — валидный переход на страницу n при totalItems элементах.
// Вне диапазона — no-op с сохранением прежней страницы, возврат false.
func (s *State) SetPage(n, totalItems int) bool {
	if n < 1 || n > TotalPages(totalItems, s.size) {
		return false
	}

	s.page = n
	return true
}

// Reset возвращает пагинацию на первую страницу — обязателен при любом
// изменении фильтра/поиска/сортировки, кроме явного восстановления
// из истории навигации (см. Restore).
func (s *State) Reset() {
	s.page = 1
}

// Restore выставляет страницу из сохранённого состояния истории,
// без проверки верхней границы: каталог мог ещё не загрузиться,
// кламп произойдёт при выдаче.
func (s *State) Restore(n int) {
	if n < 1 {
		n = 1
	}

	s.page = n
}

// Summary — сводка для фронта по текущему состоянию и числу элементов.
func (s *State) Summary(totalItems int) models.Pagination {
	return models.Pagination{
		CurrentPage: s.page,
		TotalPages:  TotalPages(totalItems, s.size),
		TotalItems:  totalItems,
		PerPage:     s.size,
	}
}
