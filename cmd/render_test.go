package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/pulseone/pulse-admin/pkg/pagination"
	"github.com/stretchr/testify/assert"
)

func Test_PageFooter(t *testing.T) {
	t.Run("Middle of a long listing", func(t *testing.T) {
		p := pagination.NewPaginator(&pagination.Config{InitialPage: 6, InitialPageSize: 10, InitialTotal: 200})
		assert.Equal(t, "« 1 … 4 5 [6] 7 8 … 20 »", pageFooter(p, 5))
	})
	t.Run("First page", func(t *testing.T) {
		p := pagination.NewPaginator(&pagination.Config{InitialPage: 1, InitialPageSize: 10, InitialTotal: 200})
		assert.Equal(t, "[1] 2 3 4 5 … 20 »", pageFooter(p, 5))
	})
	t.Run("Last page", func(t *testing.T) {
		p := pagination.NewPaginator(&pagination.Config{InitialPage: 20, InitialPageSize: 10, InitialTotal: 200})
		assert.Equal(t, "« 1 … 16 17 18 19 [20]", pageFooter(p, 5))
	})
	t.Run("Window next to the first page has no ellipsis", func(t *testing.T) {
		p := pagination.NewPaginator(&pagination.Config{InitialPage: 4, InitialPageSize: 10, InitialTotal: 70})
		assert.Equal(t, "« 1 2 3 [4] 5 6 7 »", pageFooter(p, 5))
	})
	t.Run("Few pages", func(t *testing.T) {
		p := pagination.NewPaginator(&pagination.Config{InitialPage: 2, InitialPageSize: 10, InitialTotal: 30})
		assert.Equal(t, "« 1 [2] 3 »", pageFooter(p, 5))
	})
}

func Test_PageSummary(t *testing.T) {
	p := pagination.NewPaginator(&pagination.Config{InitialPage: 5, InitialPageSize: 10, InitialTotal: 47})
	assert.Equal(t, "Showing 41-47 of 47 (page 5 of 5, 10 per page)", pageSummary(p))
	assert.Equal(t, "No items", pageSummary(pagination.NewPaginator(nil)))
}

func Test_RenderTable(t *testing.T) {
	buf := &bytes.Buffer{}
	renderTable(buf, []string{"ID", "NAME"}, [][]string{{"1", "Boiler"}, {"2", "Chiller"}})
	out := buf.String()
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "Boiler")
	assert.Contains(t, out, "Chiller")

	buf.Reset()
	renderTable(buf, []string{"ID"}, nil)
	assert.Equal(t, "No results", strings.TrimSpace(buf.String()))
}
