package render

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/milos55/marketscraper/internal/models"
)

func TestFormatPrice(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		price float64
		cur   string
		want  string
	}{
		{name: "negotiable", price: 0, cur: "NEGOTIABLE", want: "По Договор"},
		{name: "negotiable_raw_symbol", price: 0, cur: "ПоДоговор", want: "По Договор"},
		{name: "zero_price_currency_only", price: 0, cur: "EUR", want: "EUR"},
		{name: "regular_mkd", price: 6150, cur: "MKD", want: "6150 MKD"},
		{name: "fractional", price: 99.5, cur: "EUR", want: "99.5 EUR"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.want, FormatPrice(tc.price, tc.cur))
		})
	}
}

func TestFormatPhone(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		phone string
		want  string
	}{
		{name: "nine_digits", phone: "070123456", want: "070-123-456"},
		{name: "nine_digits_spaced", phone: "070 123 456", want: "070-123-456"},
		{name: "empty", phone: "", want: "N/A"},
		{name: "other_length_passthrough", phone: "+38970123456", want: "+38970123456"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.want, FormatPhone(tc.phone))
		})
	}
}

func TestImageURL(t *testing.T) {
	t.Parallel()

	require.Equal(t, NoImageURL, ImageURL(""))
	require.Equal(t, NoImageURL, ImageURL("No HTTP resource was found that matches the request"))
	require.Equal(t, NoImageURL, ImageURL("No type was found that matches the controller"))
	require.Equal(t, "https://cdn.example/1.jpg", ImageURL("https://cdn.example/1.jpg"))
}

func TestView(t *testing.T) {
	t.Parallel()

	ad := &models.Ad{
		ID:       uuid.New(),
		Link:     "https://example.mk/ad/1",
		Title:    "Стан во центар",
		Price:    350,
		Currency: "EUR",
		PostedAt: time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC),
		Phone:    "071234567",
	}

	v := View(ad)
	require.Equal(t, ad.ID.String(), v.ID)
	require.Equal(t, "350 EUR", v.Price)
	require.Equal(t, "2026-05-10", v.Date)
	require.Equal(t, "071-234-567", v.Phone)
	require.Equal(t, NoImageURL, v.ImageURL)
}

func TestHTMLTarget(t *testing.T) {
	t.Parallel()

	target := &HTMLTarget{}
	target.Render([]AdView{{Title: "Возило", Price: "По Договор", Phone: "N/A"}}, models.Pagination{
		CurrentPage: 1,
		TotalPages:  1,
		TotalItems:  1,
		PerPage:     48,
	})

	var buf bytes.Buffer
	_, err := target.WriteTo(&buf)
	require.NoError(t, err)

	out := buf.String()
	require.Contains(t, out, "Возило")
	require.Contains(t, out, "По Договор")
	require.Contains(t, out, `data-page="1"`)
}
