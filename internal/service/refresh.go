package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/milos55/marketscraper/pkg/log"
)

// errValue — последняя ошибка обновления каталога под мьютексом.
type errValue struct {
	mu  sync.Mutex
	err error
}

func (v *errValue) set(err error) {
	v.mu.Lock()
	v.err = err
	v.mu.Unlock()
}

func (v *errValue) get() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.err
}

// RefreshCatalogue выполняет полный цикл перезагрузки: фид -> валидация ->
// замещение содержимого каталога.
//
// Сбой фида не ретраится: каталог остаётся пустым (или прежним, если уже
// был загружен), ошибка запоминается для /healthz и выдачи, наверх уходит
// ErrUnavailable.
func (s *Service) RefreshCatalogue(ctx context.Context) error {
	const op = "service.RefreshCatalogue"

	lg := log.From(ctx)
	lg.Info("catalogue_refresh_start", slog.String("op", op))

	raw, err := s.src.FetchAds(ctx, nil)
	if err != nil {
		s.refreshErr.set(err)
		lg.Error("catalogue_fetch_failed",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)

		return fmt.Errorf("%s: %w", op, ErrUnavailable)
	}

	accepted := s.cat.Load(ctx, raw)
	s.refreshErr.set(nil)

	lg.Info("catalogue_refresh_ok",
		slog.String("op", op),
		slog.Int("accepted", accepted),
	)

	return nil
}

// RefreshError — последняя ошибка обновления (nil, если всё хорошо).
func (s *Service) RefreshError() error {
	return s.refreshErr.get()
}

// Ready сообщает, что каталог загружен и последний цикл прошёл без ошибок.
func (s *Service) Ready() bool {
	return s.refreshErr.get() == nil && !s.cat.LoadedAt().IsZero()
}

// Categories возвращает список категорий от источника.
func (s *Service) Categories(ctx context.Context) ([]string, error) {
	const op = "service.Categories"

	categories, err := s.src.FetchCategories(ctx)
	if err != nil {
		log.From(ctx).Error("categories_fetch_failed",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)

		return nil, fmt.Errorf("%s: %w", op, ErrUnavailable)
	}

	return categories, nil
}

// StartAutoRefresh запускает периодическую перезагрузку каталога.
// Интервал берётся из cfg.Catalogue.RefreshInterval; останавливается по ctx.
func (s *Service) StartAutoRefresh(ctx context.Context) error {
	const op = "service.StartAutoRefresh"

	interval := s.cfg.Catalogue.RefreshInterval
	if interval <= 0 {
		return fmt.Errorf("%s: refresh interval is not configured", op)
	}

	lg := log.From(ctx)
	lg.Info("auto_refresh_start",
		slog.String("op", op),
		slog.Duration("interval", interval),
	)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			lg.Info("auto_refresh_stop", slog.String("op", op))
			return nil
		case <-ticker.C:
			if err := s.RefreshCatalogue(ctx); err != nil {
				lg.Warn("auto_refresh_tick_error",
					slog.String("op", op),
					slog.String("err", err.Error()),
				)
			}
		}
	}
}
