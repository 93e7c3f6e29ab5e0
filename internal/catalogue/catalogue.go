// catalogue — явный кэш каталога объявлений на сессию:
// загрузка-валидация фида, read-view для пайплайна и мемоизация
// пересчитанных цен. Никакого ambient-глобального состояния —
// владелец (оркестратор) передаёт каталог зависимостям сам.
package catalogue

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/milos55/marketscraper/internal/currency"
	"github.com/milos55/marketscraper/internal/models"
	"github.com/milos55/marketscraper/pkg/log"
)

// dateLayouts — форматы addate у источников (ISO-подобные).
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Catalogue — in-memory хранилище загруженных объявлений.
//
// Жизненный цикл: Load один раз на сессию, Invalidate перед полной
// перезагрузкой. Записи не удаляются и не мутируются, кроме ленивой
// дозаписи Converted (см. EnsurePricesFor).
//
// RWMutex: HTTP-хендлеры читают конкурентно, перезагрузка и мемоизация
// пишут.
type Catalogue struct {
	mu       sync.RWMutex
	ads      []*models.Ad
	loadedAt time.Time
}

// New создаёт пустой каталог.
func New() *Catalogue {
	return &Catalogue{}
}

// Load валидирует сырые записи фида и замещает ими содержимое каталога.
//
// Правила:
//   - запись обязана иметь разбираемую числовую цену либо валюту
//     «по договор» — иначе она отбрасывается с warn-логом, без сбоя;
//   - дедупликация по adlink, первая запись выигрывает;
//   - каждой записи присваивается UUID.
//
// Возвращает число принятых записей.
func (c *Catalogue) Load(ctx context.Context, raw []models.RawAd) int {
	const op = "catalogue.Load"

	lg := log.From(ctx)

	ads := make([]*models.Ad, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	dropped := 0

	for _, r := range raw {
		ad, ok := validate(r)
		if !ok {
			dropped++
			lg.Warn("ad_record_invalid",
				slog.String("op", op),
				slog.String("link", r.Link),
				slog.String("price", r.PriceText()),
				slog.String("currency", r.Currency),
			)
			continue
		}

		if ad.Link != "" {
			if _, dup := seen[ad.Link]; dup {
				continue
			}
			seen[ad.Link] = struct{}{}
		}

		ads = append(ads, ad)
	}

	c.mu.Lock()
	c.ads = ads
	c.loadedAt = time.Now().UTC()
	c.mu.Unlock()

	lg.Info("catalogue_loaded",
		slog.String("op", op),
		slog.Int("accepted", len(ads)),
		slog.Int("dropped", dropped),
	)

	return len(ads)
}

// validate превращает сырую запись в доменную.
// Инвариант Ad: цена числовая либо валюта Negotiable, но не «ни то ни другое».
func validate(r models.RawAd) (*models.Ad, bool) {
	cur := currency.Normalize(r.Currency)

	var price float64
	priced := false
	if p, err := strconv.ParseFloat(r.PriceText(), 64); err == nil {
		price = p
		priced = true
	}

	if !priced && cur != currency.Negotiable {
		return nil, false
	}

	ad := &models.Ad{
		ID:          uuid.New(),
		Link:        r.Link,
		Title:       r.Title,
		Description: r.Desc,
		Category:    r.Category,
		Location:    r.Location,
		Price:       price,
		RawPrice:    r.PriceText(),
		Currency:    cur,
		Phone:       r.Phone,
		ImageURL:    r.Image,
		Store:       r.Store,
		Converted:   make(map[string]float64),
	}

	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, r.Date); err == nil {
			ad.PostedAt = ts
			break
		}
	}

	return ad, true
}

// All возвращает read-view каталога в порядке загрузки.
// Слайс общий, вызывающий код не должен его мутировать.
func (c *Catalogue) All() []*models.Ad {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.ads
}

// Len — число объявлений в каталоге.
func (c *Catalogue) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.ads)
}

// LoadedAt — момент последней успешной загрузки (zero — не загружался).
func (c *Catalogue) LoadedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.loadedAt
}

// Invalidate очищает каталог (полная перезагрузка сессии).
func (c *Catalogue) Invalidate() {
	c.mu.Lock()
	c.ads = nil
	c.loadedAt = time.Time{}
	c.mu.Unlock()
}

// PricesFor возвращает цены переданного снапшота объявлений,
// пересчитанные в валюту cur, по ID объявления.
//
// Мемо-кэш ad.Converted читается и дозаписывается только здесь, под
// мьютексом каталога; вызывающий код получает собственную карту и к
// общим структурам не прикасается. Снапшот может быть старше текущего
// содержимого каталога (конкурентный Load) — пересчёт идёт именно по
// нему, так что фильтрующий проход и его цены всегда согласованы.
//
// «По договор» и пустая валюта дают nil; ошибка пересчёта — деградация:
// сумма 0, error-лог, объявление остаётся в карте.
func (c *Catalogue) PricesFor(ctx context.Context, ads []*models.Ad, cur string) map[uuid.UUID]float64 {
	const op = "catalogue.PricesFor"

	cur = currency.Normalize(cur)
	if cur == "" || cur == currency.Negotiable {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	lg := log.From(ctx)
	prices := make(map[uuid.UUID]float64, len(ads))

	for _, ad := range ads {
		if ad == nil || ad.Currency == currency.Negotiable {
			continue
		}

		if amount, ok := ad.Converted[cur]; ok {
			prices[ad.ID] = amount
			continue
		}

		amount, err := currency.Convert(ad.Price, ad.Currency, cur)
		if err != nil {
			lg.Error("price_convert_failed",
				slog.String("op", op),
				slog.String("link", ad.Link),
				slog.String("from", ad.Currency),
				slog.String("to", cur),
				slog.String("err", err.Error()),
			)
			amount = 0
		}

		ad.Converted[cur] = amount
		prices[ad.ID] = amount
	}

	return prices
}
