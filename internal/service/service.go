// service содержит бизнес-логику ads-сервиса.
package service

import (
	"context"
	"errors"

	"github.com/milos55/marketscraper/internal/catalogue"
	"github.com/milos55/marketscraper/internal/config"
	"github.com/milos55/marketscraper/internal/models"
)

var (
	// ErrInvalidArgument — некорректные входные аргументы.
	// Транспорт: 400.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNotFound — сущность отсутствует.
	// Транспорт: 404.
	ErrNotFound = errors.New("not found")
	// ErrUnavailable — апстрим недоступен, каталог пуст.
	// Транспорт: 503.
	ErrUnavailable = errors.New("upstream unavailable")
)

// Source — контракт источника каталога: JSON-фид апстрима либо скрейпер.
type Source interface {
	// FetchAds возвращает сырые записи фида; category == nil — все категории.
	FetchAds(ctx context.Context, category *string) ([]models.RawAd, error)
	// FetchCategories возвращает список имён категорий.
	FetchCategories(ctx context.Context) ([]string, error)
}

// Service — бизнес-логика над каталогом и источником.
type Service struct {
	src Source
	cat *catalogue.Catalogue
	cfg config.Config

	refreshErr errValue
}

// New создает новый экземпляр Service.
func New(src Source, cat *catalogue.Catalogue, cfg config.Config) *Service {
	return &Service{
		src: src,
		cat: cat,
		cfg: cfg,
	}
}

// Catalogue — общий каталог сервиса (read-mostly).
func (s *Service) Catalogue() *catalogue.Catalogue {
	return s.cat
}
