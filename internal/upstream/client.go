// upstream — клиент JSON-фида объявлений.
// Апстрим отдаёт каталог по POST /fetch_ads и список категорий
// по POST /fetch_categories.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/milos55/marketscraper/internal/models"
	"github.com/milos55/marketscraper/pkg/log"
)

// Client реализует service.Source поверх JSON-фида.
// HTTP-клиент настраивается извне (таймауты, прокси и т.д.).
type Client struct {
	baseURL string
	client  *http.Client
}

// New создаёт клиент фида по корневому URL апстрима.
func New(baseURL string, client *http.Client) *Client {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

// fetchAdsRequest — тело запроса фида; category == nil означает все категории.
type fetchAdsRequest struct {
	Category *string `json:"category"`
}

// FetchAds запрашивает сырые записи каталога.
func (c *Client) FetchAds(ctx context.Context, category *string) ([]models.RawAd, error) {
	const op = "upstream.FetchAds"

	var ads []models.RawAd
	if err := c.post(ctx, op, "/fetch_ads", fetchAdsRequest{Category: category}, &ads); err != nil {
		return nil, err
	}

	log.From(ctx).Info("ads_fetched",
		slog.String("op", op),
		slog.Int("count", len(ads)),
	)

	return ads, nil
}

// FetchCategories запрашивает список имён категорий.
func (c *Client) FetchCategories(ctx context.Context) ([]string, error) {
	const op = "upstream.FetchCategories"

	var categories []string
	if err := c.post(ctx, op, "/fetch_categories", struct{}{}, &categories); err != nil {
		return nil, err
	}

	return categories, nil
}

// post выполняет POST с JSON-телом и декодирует JSON-ответ в out.
func (c *Client) post(ctx context.Context, op, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%s: marshal: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%s: new_request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		log.From(ctx).Warn("http_error",
			slog.String("op", op),
			slog.String("url", c.baseURL+path),
			slog.String("err", err.Error()),
		)
		return fmt.Errorf("%s: do: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("%s: status=%d", op, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode: %w", op, err)
	}

	return nil
}
