package handlers

import (
	"net/http"

	apierrors "github.com/milos55/marketscraper/internal/transport/http/errors"
)

// Categories — GET /categories: список категорий источника.
func (h *Handlers) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.svc.Categories(r.Context())
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"categories": categories})
}

// Refresh — POST /refresh: принудительная перезагрузка каталога.
func (h *Handlers) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.RefreshCatalogue(r.Context()); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"ads":    h.svc.Catalogue().Len(),
	})
}

// Healthz — GET /healthz: готовность сервиса (каталог загружен,
// последний цикл обновления без ошибок).
func (h *Handlers) Healthz(w http.ResponseWriter, _ *http.Request) {
	if !h.svc.Ready() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "degraded"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}
