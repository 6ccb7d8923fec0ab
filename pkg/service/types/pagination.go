package types

import (
	"github.com/pulseone/pulse-admin/pkg/clients/pulseone"
	"github.com/pulseone/pulse-admin/pkg/pagination"
)

// Pagination is the page request handed to list operations. Page is 1-based.
type Pagination struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

const DefaultPageSize = 25
const DefaultPage = 1

func NewDefaultPagination() *Pagination {
	return &Pagination{
		Page:     DefaultPage,
		PageSize: DefaultPageSize,
	}
}

func (p *Pagination) Load(pageNumber int, pageSize int) {
	if pageNumber > 0 {
		p.Page = pageNumber
	}
	if pageSize > 0 {
		p.PageSize = pageSize
	}
}

// FromPaginator reads the current page and size of a Paginator.
func FromPaginator(p *pagination.Paginator) *Pagination {
	return &Pagination{
		Page:     p.CurrentPage(),
		PageSize: p.PageSize(),
	}
}

// Query converts to the query parameters understood by PulseOne list endpoints.
// A nil Pagination uses the defaults.
func (p *Pagination) Query() pulseone.PageQuery {
	if p == nil {
		p = NewDefaultPagination()
	}
	return pulseone.PageQuery{Page: p.Page, Limit: p.PageSize}
}
