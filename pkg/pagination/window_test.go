package pagination

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_PageNumbers(t *testing.T) {
	t.Run("All pages when they fit", func(t *testing.T) {
		p := NewPaginator(&Config{InitialPageSize: 10, InitialTotal: 40})
		assert.Equal(t, []int{1, 2, 3, 4}, slices.Collect(p.PageNumbers(5)))
	})
	t.Run("Window is centered on the current page", func(t *testing.T) {
		p := NewPaginator(&Config{InitialPage: 10, InitialPageSize: 10, InitialTotal: 200})
		assert.Equal(t, []int{8, 9, 10, 11, 12}, slices.Collect(p.PageNumbers(5)))
		assert.Equal(t, []int{7, 8, 9, 10, 11, 12}, slices.Collect(p.PageNumbers(6)))
	})
	t.Run("Window shifts left at the upper bound", func(t *testing.T) {
		p := NewPaginator(&Config{InitialPage: 19, InitialPageSize: 10, InitialTotal: 200})
		assert.Equal(t, []int{16, 17, 18, 19, 20}, slices.Collect(p.PageNumbers(5)))
	})
	t.Run("Window starts at one near the lower bound", func(t *testing.T) {
		p := NewPaginator(&Config{InitialPage: 2, InitialPageSize: 10, InitialTotal: 200})
		assert.Equal(t, []int{1, 2, 3, 4, 5}, slices.Collect(p.PageNumbers(5)))
	})
	t.Run("Non-positive maxVisible shows the current page only", func(t *testing.T) {
		p := NewPaginator(&Config{InitialPage: 7, InitialPageSize: 10, InitialTotal: 200})
		assert.Equal(t, []int{7}, slices.Collect(p.PageNumbers(0)))
		assert.Equal(t, []int{7}, slices.Collect(p.PageNumbers(-4)))
	})
	t.Run("Sequence is restartable and stops early", func(t *testing.T) {
		p := NewPaginator(&Config{InitialPage: 5, InitialPageSize: 10, InitialTotal: 200})
		seq := p.PageNumbers(5)
		assert.Equal(t, slices.Collect(seq), slices.Collect(seq))

		seen := make([]int, 0)
		for page := range seq {
			seen = append(seen, page)
			if len(seen) == 2 {
				break
			}
		}
		assert.Equal(t, []int{3, 4}, seen)
	})
	t.Run("Window containment for every page and size", func(t *testing.T) {
		for _, total := range []int{0, 1, 7, 10, 55, 230} {
			p := NewPaginator(&Config{InitialPageSize: 10, InitialTotal: total})
			for page := 1; page <= p.TotalPages(); page++ {
				p.GoToPage(page)
				for maxVisible := 1; maxVisible <= 12; maxVisible++ {
					pages := slices.Collect(p.PageNumbers(maxVisible))

					assert.Len(t, pages, min(maxVisible, p.TotalPages()))
					assert.Contains(t, pages, p.CurrentPage())
					for i, n := range pages {
						assert.GreaterOrEqual(t, n, 1)
						assert.LessOrEqual(t, n, p.TotalPages())
						if i > 0 {
							assert.Equal(t, pages[i-1]+1, n)
						}
					}
				}
			}
		}
	})
}

func Test_PageInfo(t *testing.T) {
	t.Run("Middle of a long listing shows both ends", func(t *testing.T) {
		p := NewPaginator(&Config{InitialPage: 10, InitialPageSize: 10, InitialTotal: 200})
		info := p.PageInfo(5)
		assert.Equal(t, PageInfo{
			Pages:             []int{8, 9, 10, 11, 12},
			ShowFirstEllipsis: true,
			ShowLastEllipsis:  true,
			ShowFirstPage:     true,
			ShowLastPage:      true,
		}, info)
	})
	t.Run("Start of the listing", func(t *testing.T) {
		p := NewPaginator(&Config{InitialPage: 1, InitialPageSize: 10, InitialTotal: 200})
		info := p.PageInfo(5)
		assert.False(t, info.ShowFirstPage)
		assert.False(t, info.ShowFirstEllipsis)
		assert.True(t, info.ShowLastPage)
		assert.True(t, info.ShowLastEllipsis)
	})
	t.Run("Window adjacent to the ends needs no ellipsis", func(t *testing.T) {
		p := NewPaginator(&Config{InitialPage: 4, InitialPageSize: 10, InitialTotal: 70})
		info := p.PageInfo(5)
		assert.Equal(t, []int{2, 3, 4, 5, 6}, info.Pages)
		assert.True(t, info.ShowFirstPage)
		assert.False(t, info.ShowFirstEllipsis)
		assert.True(t, info.ShowLastPage)
		assert.False(t, info.ShowLastEllipsis)
	})
	t.Run("Empty listing", func(t *testing.T) {
		info := NewPaginator(nil).PageInfo(5)
		assert.Equal(t, []int{1}, info.Pages)
		assert.False(t, info.ShowFirstPage)
		assert.False(t, info.ShowLastPage)
		assert.False(t, info.ShowFirstEllipsis)
		assert.False(t, info.ShowLastEllipsis)
	})
}
