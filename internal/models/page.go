package models

// Pagination — сводка пагинации для фронта.
type Pagination struct {
	CurrentPage int `json:"current_page"`
	TotalPages  int `json:"total_pages"`
	TotalItems  int `json:"total_items"`
	PerPage     int `json:"per_page"`
}

// ResultPage — страница отфильтрованных объявлений.
type ResultPage struct {
	Items      []*Ad
	Pagination Pagination
}
