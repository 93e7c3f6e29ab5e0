// search — сопоставление поисковых термов с текстами объявлений:
// латинично-кириллическая транслитерация, нечёткое совпадение и скоринг.
package search

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// translitPairs — фиксированная таблица латиница -> кириллица (македонский
// алфавит). Диграфы стоят первыми: замена обязана идти от длинных
// последовательностей к коротким, иначе "s"+"h" сработает раньше "sh"
// и испортит диграф.
var translitPairs = []struct {
	lat string
	cyr string
}{
	{"gj", "ѓ"},
	{"zh", "ж"},
	{"dz", "ѕ"},
	{"lj", "љ"},
	{"nj", "њ"},
	{"kj", "ќ"},
	{"ch", "ч"},
	{"dj", "џ"},
	{"sh", "ш"},
	{"a", "а"},
	{"b", "б"},
	{"v", "в"},
	{"g", "г"},
	{"d", "д"},
	{"e", "е"},
	{"z", "з"},
	{"i", "и"},
	{"j", "ј"},
	{"k", "к"},
	{"l", "л"},
	{"m", "м"},
	{"n", "н"},
	{"o", "о"},
	{"p", "п"},
	{"r", "р"},
	{"s", "с"},
	{"t", "т"},
	{"u", "у"},
	{"f", "ф"},
	{"h", "х"},
	{"c", "ц"},
}

// fold приводит строку к нижнему регистру с учётом Unicode
// (кириллица через strings.ToLower не во всех кейсах совпадает с
// каноническим case folding, поэтому x/text).
func fold(s string) string {
	return cases.Lower(language.Und).String(strings.TrimSpace(s))
}

// Transliterate переводит латинский текст в кириллицу по фиксированной
// таблице. Кириллический вход проходит без изменений (в таблице только
// латинские ключи). Регистр приводится к нижнему.
func Transliterate(text string) string {
	result := fold(text)
	for _, p := range translitPairs {
		result = strings.ReplaceAll(result, p.lat, p.cyr)
	}

	return result
}
