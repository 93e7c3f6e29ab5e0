package search

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Matches решает, находится ли терм в тексте.
//
// Порядок проверок:
//  1. прямое вхождение подстроки;
//  2. вхождение после транслитерации любой из сторон;
//  3. словесные границы: слово == терм, слово начинается с терма,
//     либо (для термов от 3 символов) терм начинается со слова.
//
// Край: терм короче 2 символов сопоставляется только точным равенством
// полю — иначе одна буква совпадает почти со всем каталогом.
func Matches(text, term string) bool {
	text = fold(text)
	term = fold(term)

	if text == "" || term == "" {
		return false
	}

	if utf8.RuneCountInString(term) < 2 {
		return text == term
	}

	if strings.Contains(text, term) {
		return true
	}

	ctext := Transliterate(text)
	cterm := Transliterate(term)
	if strings.Contains(text, cterm) || strings.Contains(ctext, term) || strings.Contains(ctext, cterm) {
		return true
	}

	return matchesWord(text, term) || matchesWord(ctext, cterm)
}

// matchesWord проверяет терм по границам слов.
func matchesWord(text, term string) bool {
	longTerm := utf8.RuneCountInString(term) >= 3

	for _, word := range splitWords(text) {
		if word == term || strings.HasPrefix(word, term) {
			return true
		}
		if longTerm && strings.HasPrefix(term, word) {
			return true
		}
	}

	return false
}

// splitWords режет текст на слова по не-буквенно-цифровым символам.
// regexp с \b тут не годится: в Go «границы слова» ASCII-ориентированы
// и не видят кириллицу.
func splitWords(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// MatchesInOrder требует, чтобы термы встречались в тексте слева направо,
// без перекрытий, каждый следующий — строго после конца предыдущего.
// Транслитерация применяется на каждом шаге: обе стороны приводятся к
// канонической кириллической форме, поиск идёт в одном пространстве
// позиций.
func MatchesInOrder(text string, terms []string) bool {
	if len(terms) == 0 {
		return false
	}

	haystack := Transliterate(text)
	pos := 0

	for _, term := range terms {
		needle := Transliterate(term)
		if needle == "" {
			return false
		}

		idx := strings.Index(haystack[pos:], needle)
		if idx < 0 {
			return false
		}

		pos += idx + len(needle)
	}

	return true
}

// Оценки совпадения для ранжирования (больше — лучше).
const (
	scoreExact      = 100
	scoreWord       = 90
	scorePrefix     = 80
	scoreSubstring  = 70
	scoreTranslit   = 60
	scorePartial    = 50
	scoreNoMatch    = 0
)

// Score — приблизительная оценка качества совпадения для будущего
// ранжирования. При равных оценках порядок кандидатов сохраняется
// (сортировка обязана быть стабильной).
func Score(text, term string) int {
	ftext := fold(text)
	fterm := fold(term)

	if ftext == "" || fterm == "" {
		return scoreNoMatch
	}

	if ftext == fterm {
		return scoreExact
	}

	for _, word := range splitWords(ftext) {
		if word == fterm {
			return scoreWord
		}
	}

	if strings.HasPrefix(ftext, fterm) {
		return scorePrefix
	}

	if strings.Contains(ftext, fterm) {
		return scoreSubstring
	}

	ctext := Transliterate(ftext)
	cterm := Transliterate(fterm)
	if strings.Contains(ctext, cterm) {
		return scoreTranslit
	}

	if Matches(text, term) {
		return scorePartial
	}

	return scoreNoMatch
}

// ParseTerms разбирает пользовательский ввод в термы запроса:
// split по запятой, trim, нижний регистр. Пустые термы (хвостовая или
// сдвоенная запятая — обычный живой ввод) отбрасываются, чтобы не
// опустошать выдачу в ALL-режиме. Ввод без единого непустого терма
// даёт сентинел-слайс с единственной пустой строкой («без фильтра»).
func ParseTerms(input string) []string {
	parts := strings.Split(fold(input), ",")
	terms := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			terms = append(terms, p)
		}
	}

	if len(terms) == 0 {
		return []string{""}
	}

	return terms
}
