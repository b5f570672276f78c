package domain

const (
	DefaultPage  = 1
	DefaultLimit = 10
)

// Page is offset/limit pagination input shared by all list filters.
type Page struct {
	PageNum int
	Limit   int
}

func (p Page) Offset() int {
	return (p.PageNum - 1) * p.Limit
}

// Normalize clamps nonsensical values to the defaults.
func (p Page) Normalize() Page {
	if p.PageNum < 1 {
		p.PageNum = DefaultPage
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	return p
}

type PageMeta struct {
	TotalItems  int `json:"totalItems"`
	CurrentPage int `json:"currentPage"`
	TotalPages  int `json:"totalPages"`
	Limit       int `json:"limit"`
}

func NewPageMeta(totalItems int, p Page) PageMeta {
	totalPages := (totalItems + p.Limit - 1) / p.Limit
	return PageMeta{
		TotalItems:  totalItems,
		CurrentPage: p.PageNum,
		TotalPages:  totalPages,
		Limit:       p.Limit,
	}
}
