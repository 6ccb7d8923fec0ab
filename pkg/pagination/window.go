package pagination

import (
	"iter"
	"slices"
)

// PageInfo describes the page controls to render around the visible window.
type PageInfo struct {
	Pages             []int `json:"pages"`
	ShowFirstEllipsis bool  `json:"showFirstEllipsis"`
	ShowLastEllipsis  bool  `json:"showLastEllipsis"`
	ShowFirstPage     bool  `json:"showFirstPage"`
	ShowLastPage      bool  `json:"showLastPage"`
}

// window returns the inclusive bounds of at most maxVisible contiguous pages, centered on the
// current page where possible and never leaving [1, TotalPages].
func (p *Paginator) window(maxVisible int) (int, int) {
	maxVisible = max(maxVisible, 1)
	total := p.TotalPages()
	if total <= maxVisible {
		return 1, total
	}

	half := maxVisible / 2
	start := max(p.currentPage-half, 1)
	end := min(start+maxVisible-1, total)
	if end-start+1 < maxVisible {
		start = max(end-maxVisible+1, 1)
	}
	return start, end
}

// PageNumbers yields the page numbers to show as controls. The bounds are fixed when
// PageNumbers is called, so the sequence can be ranged over repeatedly with the same result.
func (p *Paginator) PageNumbers(maxVisible int) iter.Seq[int] {
	start, end := p.window(maxVisible)
	return func(yield func(int) bool) {
		for page := start; page <= end; page++ {
			if !yield(page) {
				return
			}
		}
	}
}

func (p *Paginator) PageInfo(maxVisible int) PageInfo {
	pages := slices.Collect(p.PageNumbers(maxVisible))
	first, last := pages[0], pages[len(pages)-1]
	total := p.TotalPages()

	return PageInfo{
		Pages:             pages,
		ShowFirstEllipsis: first > 2,
		ShowLastEllipsis:  last < total-1,
		ShowFirstPage:     first > 1,
		ShowLastPage:      last < total,
	}
}
