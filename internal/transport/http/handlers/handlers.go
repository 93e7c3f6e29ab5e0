// handlers — REST-поверхность выдачи объявлений.
// Состояние фильтров живёт на сервере в сессионном контроллере;
// клиент шлёт изменения, в ответ всегда уходит текущая страница выдачи.
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/milos55/marketscraper/internal/controller"
	"github.com/milos55/marketscraper/internal/service"
	"github.com/milos55/marketscraper/internal/session"
)

// sessionCookie — кука с ID сессионного контроллера.
const sessionCookie = "ads_session"

// Поддерживаемые языки интерфейса; неизвестный код откатывается на en.
var langs = map[string]struct{}{
	"mkd": {},
	"en":  {},
	"al":  {},
}

// Handlers агрегирует зависимости HTTP-слоя.
type Handlers struct {
	svc      *service.Service
	sessions *session.Registry
}

func New(svc *service.Service, sessions *session.Registry) *Handlers {
	return &Handlers{svc: svc, sessions: sessions}
}

// controllerFor возвращает контроллер сессии запроса, заводя новую
// сессию (и куку) при отсутствии или протухании прежней.
func (h *Handlers) controllerFor(w http.ResponseWriter, r *http.Request) *controller.Controller {
	var id string
	if c, err := r.Cookie(sessionCookie); err == nil {
		id = c.Value
	}

	newID, ctrl := h.sessions.Get(id)
	if newID != id {
		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookie,
			Value:    newID,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}

	return ctrl
}

// normalizeLang валидирует код языка из пути.
func normalizeLang(lang string) string {
	if _, ok := langs[lang]; ok {
		return lang
	}

	return "en"
}

// writeJSON — единый ответ JSON с нужным Content-Type.
// Ошибки выводим через apierrors.WriteError.
func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

// decodeStrict — строгий JSON-декодер: запрещаем неизвестные поля.
func decodeStrict(r *http.Request, value any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(value)
}

// errInvalidArgument — локальная ошибка парсинга -> 400.
func errInvalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", controller.ErrInvalidInput, fmt.Sprintf(format, args...))
}
