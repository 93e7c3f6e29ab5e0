// scraper — прямой скрейп листинга pazar3.mk как альтернативный
// источник каталога. Страницы листинга несут JSON-LD блок со списком
// товаров; разметка карточек меняется чаще, чем structured data,
// поэтому разбираем именно его.
package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/milos55/marketscraper/internal/models"
	"github.com/milos55/marketscraper/pkg/log"
)

const storeName = "pazar3"

// relativeDayLayout — формат даты листинга после подстановки дня.
const relativeDayLayout = "02.01.2006 15:04"

// Pazar3 реализует service.Source скрейпом листинга.
type Pazar3 struct {
	baseURL string
	pages   int
	client  *http.Client
	now     func() time.Time
}

// New создаёт скрейпер листинга: baseURL — корень листинга,
// pages — сколько страниц обходить за проход.
func New(baseURL string, pages int, client *http.Client) *Pazar3 {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if pages <= 0 {
		pages = 1
	}

	return &Pazar3{
		baseURL: strings.TrimRight(baseURL, "/"),
		pages:   pages,
		client:  client,
		now:     time.Now,
	}
}

// ldItem — элемент JSON-LD списка товаров.
type ldItem struct {
	Type     string          `json:"@type"`
	Name     string          `json:"name"`
	URL      string          `json:"url"`
	Image    json.RawMessage `json:"image"`
	Category string          `json:"category"`
	Offers   struct {
		Price         json.RawMessage `json:"price"`
		PriceCurrency string          `json:"priceCurrency"`
	} `json:"offers"`
}

// ldList — JSON-LD блок листинга.
type ldList struct {
	Type            string `json:"@type"`
	ItemListElement []struct {
		Item ldItem `json:"item"`
	} `json:"itemListElement"`
}

// FetchAds обходит страницы листинга и собирает сырые записи.
// Сбой отдельной страницы — деградация с warn-логом; ошибка наверх
// уходит только когда не удалась ни одна страница.
func (p *Pazar3) FetchAds(ctx context.Context, category *string) ([]models.RawAd, error) {
	const op = "scraper.FetchAds"

	lg := log.From(ctx)

	listURL := p.baseURL
	if category != nil && *category != "" {
		listURL += "/" + strings.Trim(*category, "/")
	}

	var (
		ads    []models.RawAd
		failed int
	)

	for page := 1; page <= p.pages; page++ {
		pageURL := fmt.Sprintf("%s?Page=%d", listURL, page)

		pageAds, err := p.fetchPage(ctx, pageURL)
		if err != nil {
			failed++
			lg.Warn("listing_page_failed",
				slog.String("op", op),
				slog.String("url", pageURL),
				slog.String("err", err.Error()),
			)
			continue
		}

		ads = append(ads, pageAds...)
	}

	if failed == p.pages {
		return nil, fmt.Errorf("%s: all %d listing pages failed", op, p.pages)
	}

	lg.Info("listing_scraped",
		slog.String("op", op),
		slog.Int("pages", p.pages-failed),
		slog.Int("ads", len(ads)),
	)

	return ads, nil
}

// FetchCategories собирает уникальные категории с первой страницы листинга.
func (p *Pazar3) FetchCategories(ctx context.Context) ([]string, error) {
	const op = "scraper.FetchCategories"

	ads, err := p.fetchPage(ctx, p.baseURL+"?Page=1")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	seen := make(map[string]struct{})
	var categories []string
	for _, ad := range ads {
		if ad.Category == "" {
			continue
		}
		if _, ok := seen[ad.Category]; ok {
			continue
		}
		seen[ad.Category] = struct{}{}
		categories = append(categories, ad.Category)
	}

	sort.Strings(categories)

	return categories, nil
}

// fetchPage загружает одну страницу листинга и разбирает её JSON-LD.
func (p *Pazar3) fetchPage(ctx context.Context, pageURL string) ([]models.RawAd, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("new_request: %w", err)
	}
	req.Header.Set("Accept-Language", "mk-MK,mk;q=0.9")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("status=%d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse_html: %w", err)
	}

	var ads []models.RawAd

	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, sel *goquery.Selection) {
		var list ldList
		if err := json.Unmarshal([]byte(sel.Text()), &list); err != nil {
			return
		}
		if list.Type != "ItemList" {
			return
		}

		for _, el := range list.ItemListElement {
			if ad, ok := p.toRawAd(el.Item); ok {
				ads = append(ads, ad)
			}
		}
	})

	// Дата в structured data отсутствует — добираем её из карточек.
	dates := listingDates(doc, p.now)
	for i := range ads {
		if i < len(dates) {
			ads[i].Date = dates[i]
		}
	}

	return ads, nil
}

// toRawAd приводит JSON-LD элемент к сырой записи фида.
func (p *Pazar3) toRawAd(item ldItem) (models.RawAd, bool) {
	if item.Name == "" || item.URL == "" {
		return models.RawAd{}, false
	}

	return models.RawAd{
		Title:    item.Name,
		Price:    item.Offers.Price,
		Currency: item.Offers.PriceCurrency,
		Image:    firstImage(item.Image),
		Link:     item.URL,
		Category: item.Category,
		Store:    storeName,
	}, true
}

// firstImage — image в JSON-LD бывает строкой либо массивом строк.
func firstImage(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return single
	}

	var many []string
	if err := json.Unmarshal(raw, &many); err == nil && len(many) > 0 {
		return many[0]
	}

	return ""
}

// listingDates вытаскивает даты публикации из карточек листинга
// в порядке следования.
func listingDates(doc *goquery.Document, now func() time.Time) []string {
	var dates []string

	doc.Find("div.ad-date, span.ad-date, time").Each(func(_ int, sel *goquery.Selection) {
		raw := strings.TrimSpace(sel.Text())
		if raw == "" {
			return
		}

		dates = append(dates, NormalizeListingDate(raw, now()))
	})

	return dates
}

// NormalizeListingDate переводит относительные даты листинга
// («Денес 14:30», «Вчера 09:00») в ISO-представление фида.
// Нераспознанный вход проходит без изменений.
func NormalizeListingDate(raw string, now time.Time) string {
	raw = strings.TrimSpace(raw)

	switch {
	case strings.HasPrefix(raw, "Денес"):
		raw = strings.Replace(raw, "Денес", now.Format("02.01.2006"), 1)
	case strings.HasPrefix(raw, "Вчера"):
		raw = strings.Replace(raw, "Вчера", now.AddDate(0, 0, -1).Format("02.01.2006"), 1)
	}

	if ts, err := time.Parse(relativeDayLayout, strings.TrimSpace(raw)); err == nil {
		return ts.Format("2006-01-02 15:04:05")
	}

	return raw
}
