// session — реестр сессионных контроллеров выдачи.
// Каждому посетителю — собственное состояние фильтров поверх общего
// каталога; неактивные сессии вычищаются по TTL.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/milos55/marketscraper/internal/controller"
	"github.com/milos55/marketscraper/pkg/log"
)

// entry — контроллер с отметкой последнего обращения.
type entry struct {
	ctrl     *controller.Controller
	lastSeen time.Time
}

// Registry — потокобезопасный реестр контроллеров по ID сессии.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*entry

	ttl     time.Duration
	factory func() *controller.Controller
	clock   func() time.Time
}

// NewRegistry создаёт реестр; factory строит контроллер для новой сессии.
func NewRegistry(ttl time.Duration, factory func() *controller.Controller) *Registry {
	return &Registry{
		entries: make(map[string]*entry),
		ttl:     ttl,
		factory: factory,
		clock:   time.Now,
	}
}

// Get возвращает контроллер сессии id, продлевая её жизнь.
// Неизвестный или пустой id заводит новую сессию; возвращается
// действующий id (он же — значение сессионной куки).
func (r *Registry) Get(id string) (string, *controller.Controller) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.clock()

	if id != "" {
		if e, ok := r.entries[id]; ok {
			e.lastSeen = now
			return id, e.ctrl
		}
	}

	id = uuid.NewString()
	e := &entry{ctrl: r.factory(), lastSeen: now}
	r.entries[id] = e

	return id, e.ctrl
}

// Len — число живых сессий.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.entries)
}

// evictStale закрывает и удаляет сессии, молчащие дольше TTL.
func (r *Registry) evictStale(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	evicted := 0
	for id, e := range r.entries {
		if now.Sub(e.lastSeen) > r.ttl {
			e.ctrl.Close()
			delete(r.entries, id)
			evicted++
		}
	}

	return evicted
}

// StartEviction запускает периодическую чистку протухших сессий;
// останавливается по ctx. Период — половина TTL.
func (r *Registry) StartEviction(ctx context.Context) {
	const op = "session.StartEviction"

	interval := r.ttl / 2
	if interval <= 0 {
		interval = time.Minute
	}

	lg := log.From(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.evictStale(r.clock()); n > 0 {
				lg.Info("sessions_evicted",
					slog.String("op", op),
					slog.Int("count", n),
				)
			}
		}
	}
}
