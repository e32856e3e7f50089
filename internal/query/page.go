package query

// Pagination describes where a page sits inside the filtered row set.
// Total counts rows after filters but before pagination; From/To are nil
// for an empty page.
type Pagination struct {
	CurrentPage int  `json:"current_page"`
	LastPage    int  `json:"last_page"`
	PerPage     int  `json:"per_page"`
	Total       int  `json:"total"`
	From        *int `json:"from"`
	To          *int `json:"to"`
}

// ResultPage is the list-endpoint payload: rows, pagination metadata and
// the echo of resolved filters.
type ResultPage struct {
	Data       any            `json:"data"`
	Pagination Pagination     `json:"pagination"`
	Filters    map[string]any `json:"filters"`
}

// NewResultPage assembles the payload for q given the scanned rows and the
// unpaginated total.
func NewResultPage(data any, rows, total int, q *Query) ResultPage {
	lastPage := (total + q.PerPage - 1) / q.PerPage
	if lastPage < 1 {
		lastPage = 1
	}

	page := Pagination{
		CurrentPage: q.Page,
		LastPage:    lastPage,
		PerPage:     q.PerPage,
		Total:       total,
	}
	if rows > 0 {
		from := (q.Page-1)*q.PerPage + 1
		to := from + rows - 1
		page.From = &from
		page.To = &to
	}

	return ResultPage{
		Data:       data,
		Pagination: page,
		Filters:    q.Applied,
	}
}
