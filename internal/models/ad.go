// models содержит доменные сущности ads-сервиса.
// Эти типы используются слоями каталога, фильтрации и транспорта.
package models

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Ad — доменная сущность объявления.
//
// Особенности:
//   - ID — UUIDv4, присваивается каталогом при загрузке;
//   - Link — идентичность записи у источника (дедупликация по ней);
//   - Price — числовая цена в валюте Currency; для «по договор»
//     цена отсутствует, а Currency == currency.Negotiable;
//   - RawPrice — исходное текстовое представление цены из фида
//     (нужно для фильтра «цена-заглушка», см. filter);
//   - Converted — ленивый мемо-кэш пересчитанных цен по коду валюты;
//     читается и дозаписывается только каталогом под его мьютексом,
//     после загрузки не инвалидируется.
type Ad struct {
	// ID — уникальный идентификатор объявления.
	ID uuid.UUID
	// Link — ссылка на объявление у источника (идентичность).
	Link string
	// Title — заголовок объявления.
	Title string
	// Description — текст объявления.
	Description string
	// Category — категория (точное строковое значение источника).
	Category string
	// Location — населённый пункт.
	Location string
	// Price — числовая цена; 0 допустим (источник так кодирует «цена в валюте»).
	Price float64
	// RawPrice — цена как пришла из фида, без парсинга.
	RawPrice string
	// Currency — канонический код валюты (MKD/EUR/NEGOTIABLE) либо исходное значение.
	Currency string
	// PostedAt — дата публикации у источника.
	PostedAt time.Time
	// Phone — контактный телефон (сырой).
	Phone string
	// ImageURL — ссылка на фото либо сентинел-строка ошибки API источника.
	ImageURL string
	// Store — источник объявления (reklama5/pazar3/...).
	Store string

	// Converted — кэш цен, пересчитанных в другие валюты: код -> сумма.
	// Доступ только через каталог (см. Catalogue.PricesFor).
	Converted map[string]float64
}

// RawAd — запись фида /fetch_ads как есть, до валидации.
//
// adprice приходит то числом, то числовой строкой, поэтому json.Number
// через RawMessage не используем — поле разбирает каталог.
type RawAd struct {
	Title    string          `json:"adtitle"`
	Desc     string          `json:"addesc"`
	Price    json.RawMessage `json:"adprice"`
	Currency string          `json:"adcurrency"`
	Date     string          `json:"addate"`
	Phone    string          `json:"adphone"`
	Image    string          `json:"adimage"`
	Link     string          `json:"adlink"`
	Category string          `json:"adcategory"`
	Location string          `json:"adlocation"`
	Store    string          `json:"adstore,omitempty"`
}

// PriceText возвращает adprice как трим-строку без JSON-кавычек.
func (r RawAd) PriceText() string {
	s := strings.TrimSpace(string(r.Price))
	s = strings.Trim(s, `"`)
	return strings.TrimSpace(s)
}
