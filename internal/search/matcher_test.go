package search

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// Тесты матчера.
//
// Покрытие:
//  - транслитерация: диграфы раньше одиночных символов, симметрия направлений;
//  - Matches: подстрока, транслит-фолбэк, словесные границы, край одного символа;
//  - MatchesInOrder: порядок слева направо, без перекрытий;
//  - Score: лестница оценок;
//  - ParseTerms: запятые, trim, сентинел пустого ввода.

func TestTransliterate_DigraphsBeforeSingles(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"shest", "шест"},
		{"gjorgji", "ѓорѓи"},
		{"chudo", "чудо"},
		{"zhaba", "жаба"},
		{"skopje", "скопје"},
		// Кириллический вход проходит без изменений.
		{"шест", "шест"},
		// Регистр приводится к нижнему до замен.
		{"SHest", "шест"},
	}

	for _, tc := range tests {
		require.Equal(t, tc.want, Transliterate(tc.in), "вход %q", tc.in)
	}
}

func TestMatches_TransliterationRoundTrip(t *testing.T) {
	t.Parallel()

	// Симметрия направлений: запрос латиницей против кириллического поля и наоборот.
	require.True(t, Matches("шест", "shest"))
	require.True(t, Matches("shest", "шест"))
}

func TestMatches_Substring(t *testing.T) {
	t.Parallel()

	require.True(t, Matches("Telefon Samsung Galaxy", "samsung"))
	require.True(t, Matches("продавам телефон самсунг", "telefon"))
	require.False(t, Matches("велосипед детски", "телефон"))
}

func TestMatches_WordBoundary(t *testing.T) {
	t.Parallel()

	// Слово начинается с терма.
	require.True(t, Matches("косилка за трева", "коси"))
	// Терм (>=3 символа) начинается со слова: толерантность к хвосту опечатки.
	require.True(t, Matches("ауди а4 кола", "колата"))
}

func TestMatches_SingleCharIsExactOnly(t *testing.T) {
	t.Parallel()

	// Односимвольный терм — только точное равенство всему полю.
	require.False(t, Matches("samsung", "s"))
	require.True(t, Matches("s", "s"))
	require.False(t, Matches("", "s"))
	require.False(t, Matches("samsung", ""))
}

func TestMatchesInOrder(t *testing.T) {
	t.Parallel()

	text := "blue car red"

	require.True(t, MatchesInOrder(text, []string{"car", "red"}))
	// Неверный порядок не проходит.
	require.False(t, MatchesInOrder(text, []string{"red", "car"}))
	// Перекрытие запрещено: второй поиск стартует после конца первого.
	require.False(t, MatchesInOrder("carred", []string{"carr", "red"}))
	require.True(t, MatchesInOrder("car red", []string{"car", "red"}))
	// Транслит-фолбэк на каждом шаге.
	require.True(t, MatchesInOrder("сино car црвено", []string{"sino", "crveno"}))
	require.False(t, MatchesInOrder(text, nil))
}

func TestScore_Ladder(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		term string
		want int
	}{
		{"exact", "samsung", "Samsung", 100},
		{"word", "telefon samsung galaxy", "samsung", 90},
		{"prefix", "samsung galaxy", "sams", 80},
		{"substring", "novi samsungi", "amsung", 70},
		{"translit", "телефон самсунг", "samsung", 60},
		{"none", "velosiped", "телевизор", 0},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.want, Score(tc.text, tc.term))
		})
	}
}

func TestParseTerms(t *testing.T) {
	t.Parallel()

	require.Equal(t, []string{"кола", "ауди"}, ParseTerms(" Кола , АУДИ "))
	require.Equal(t, []string{"samsung"}, ParseTerms("Samsung"))
	// Хвостовая и сдвоенная запятая не рождают пустых термов.
	require.Equal(t, []string{"samsung"}, ParseTerms("samsung,"))
	require.Equal(t, []string{"кола", "ауди"}, ParseTerms("кола,,ауди"))
	// Сентинел «без фильтра».
	require.Equal(t, []string{""}, ParseTerms("  "))
	require.Equal(t, []string{""}, ParseTerms(" , ,"))
}
