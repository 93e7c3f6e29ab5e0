// render — view-модели объявлений и их форматирование для фронта.
// Ядро фильтрации ничего не знает про разметку: сюда приходит готовый
// список объявлений и сводка пагинации.
package render

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/milos55/marketscraper/internal/currency"
	"github.com/milos55/marketscraper/internal/models"
)

// NoImageURL — заглушка для объявлений без фото.
const NoImageURL = "/static/images/No-image.png"

// apiErrorMarkers — сентинел-строки ошибок API источника вместо URL фото.
var apiErrorMarkers = []string{
	"No HTTP resource was found",
	"No type was found",
}

var nonDigits = regexp.MustCompile(`\D`)

// AdView — отображаемая карточка объявления.
type AdView struct {
	ID       string `json:"id"`
	Link     string `json:"link"`
	Title    string `json:"title"`
	Desc     string `json:"description"`
	Category string `json:"category"`
	Location string `json:"location"`
	Price    string `json:"price"`
	Date     string `json:"date"`
	Phone    string `json:"phone"`
	ImageURL string `json:"image_url"`
}

// Target — принимающая сторона отрисовки: список карточек и сводка
// пагинации. Реализации: JSON-ответ транспорта, HTML-рендерер.
type Target interface {
	Render(items []AdView, page models.Pagination)
}

// View собирает карточку из доменной записи.
func View(ad *models.Ad) AdView {
	return AdView{
		ID:       ad.ID.String(),
		Link:     ad.Link,
		Title:    ad.Title,
		Desc:     ad.Description,
		Category: ad.Category,
		Location: ad.Location,
		Price:    FormatPrice(ad.Price, ad.Currency),
		Date:     formatDate(ad.PostedAt),
		Phone:    FormatPhone(ad.Phone),
		ImageURL: ImageURL(ad.ImageURL),
	}
}

// Views собирает карточки, сохраняя порядок.
func Views(ads []*models.Ad) []AdView {
	out := make([]AdView, 0, len(ads))
	for _, ad := range ads {
		out = append(out, View(ad))
	}

	return out
}

// FormatPrice — человекочитаемая цена.
// «По договор» без числа; нулевая цена показывает только валюту
// (так источник кодирует «цена в валюте по запросу»).
func FormatPrice(price float64, cur string) string {
	if currency.Normalize(cur) == currency.Negotiable {
		return "По Договор"
	}

	if price == 0 {
		return cur
	}

	return strconv.FormatFloat(price, 'f', -1, 64) + " " + cur
}

// FormatPhone группирует девятизначные номера как ddd-ddd-ddd.
// Прочие значения проходят как есть; пустое — "N/A".
func FormatPhone(phone string) string {
	if phone == "" {
		return "N/A"
	}

	digits := nonDigits.ReplaceAllString(phone, "")
	if len(digits) == 9 {
		return digits[0:3] + "-" + digits[3:6] + "-" + digits[6:9]
	}

	return phone
}

// ImageURL подменяет отсутствующее или битое фото заглушкой.
func ImageURL(raw string) string {
	if raw == "" {
		return NoImageURL
	}

	for _, marker := range apiErrorMarkers {
		if strings.Contains(raw, marker) {
			return NoImageURL
		}
	}

	return raw
}

func formatDate(ts time.Time) string {
	if ts.IsZero() {
		return ""
	}

	return ts.Format("2006-01-02")
}
