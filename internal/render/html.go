package render

import (
	"bytes"
	"html/template"
	"io"
	"sync"

	"github.com/milos55/marketscraper/internal/models"
)

// cardsTemplate — серверная отрисовка сетки карточек.
// Тот же материал, что и JSON-ответ, только готовой разметкой.
const cardsTemplate = `<div class="ads-grid">
{{- range .Items }}
  <article class="ad-card">
    <a href="{{ .Link }}"><img src="{{ .ImageURL }}" alt="{{ .Title }}"></a>
    <h3><a href="{{ .Link }}">{{ .Title }}</a></h3>
    <p class="ad-desc">{{ .Desc }}</p>
    <p class="ad-price">{{ .Price }}</p>
    <p class="ad-meta">{{ .Location }}{{ if .Date }} · {{ .Date }}{{ end }}</p>
    <p class="ad-phone">{{ .Phone }}</p>
  </article>
{{- end }}
</div>
<nav class="pagination" data-page="{{ .Page.CurrentPage }}" data-total="{{ .Page.TotalPages }}">
  Страница {{ .Page.CurrentPage }} од {{ .Page.TotalPages }} ({{ .Page.TotalItems }})
</nav>
`

var cardsTmpl = template.Must(template.New("cards").Parse(cardsTemplate))

// HTMLTarget пишет отрисованную сетку в буфер; потокобезопасен,
// чтобы дебаунс-горутина и обработчик не гонялись за результатом.
type HTMLTarget struct {
	mu   sync.Mutex
	last []byte
}

type cardsData struct {
	Items []AdView
	Page  models.Pagination
}

// Render реализует Target.
func (t *HTMLTarget) Render(items []AdView, page models.Pagination) {
	var buf bytes.Buffer

	if err := cardsTmpl.Execute(&buf, cardsData{Items: items, Page: page}); err != nil {
		return
	}

	t.mu.Lock()
	t.last = buf.Bytes()
	t.mu.Unlock()
}

// WriteTo выдаёт последнюю отрисовку.
func (t *HTMLTarget) WriteTo(w io.Writer) (int64, error) {
	t.mu.Lock()
	b := t.last
	t.mu.Unlock()

	n, err := w.Write(b)

	return int64(n), err
}
