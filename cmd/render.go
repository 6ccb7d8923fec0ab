package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/pulseone/pulse-admin/pkg/pagination"
)

var (
	cellStyle = lipgloss.NewStyle().Padding(0, 1)

	severityStyles = map[string]lipgloss.Style{
		"critical": lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		"high":     lipgloss.NewStyle().Foreground(lipgloss.Color("202")),
		"medium":   lipgloss.NewStyle().Foreground(lipgloss.Color("226")),
		"low":      lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
	}
)

func renderTable(w io.Writer, headers []string, rows [][]string) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "No results")
		return
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			return cellStyle
		})
	fmt.Fprintln(w, t.Render())
}

func renderKeyValues(w io.Writer, pairs [][2]string) {
	width := 0
	for _, p := range pairs {
		width = max(width, len(p[0]))
	}
	key := lipgloss.NewStyle().Bold(true).Width(width + 2)
	for _, p := range pairs {
		fmt.Fprintln(w, key.Render(p[0])+p[1])
	}
}

func styleSeverity(severity string) string {
	if s, ok := severityStyles[strings.ToLower(severity)]; ok {
		return s.Render(severity)
	}
	return severity
}

// pageSummary describes the visible range, e.g. "Showing 51-60 of 200".
func pageSummary(p *pagination.Paginator) string {
	s := p.State()
	if s.IsEmpty {
		return "No items"
	}
	return fmt.Sprintf("Showing %d-%d of %d (page %d of %d, %d per page)",
		s.StartIndex, s.EndIndex, s.TotalCount, s.CurrentPage, s.TotalPages, s.PageSize)
}

// pageFooter renders the page selector, e.g. "« 1 … 4 5 [6] 7 8 … 20 »".
func pageFooter(p *pagination.Paginator, maxVisible int) string {
	info := p.PageInfo(maxVisible)
	parts := make([]string, 0, len(info.Pages)+6)

	if p.HasPrev() {
		parts = append(parts, "«")
	}
	if info.ShowFirstPage {
		parts = append(parts, "1")
	}
	if info.ShowFirstEllipsis {
		parts = append(parts, "…")
	}
	for _, page := range info.Pages {
		label := strconv.Itoa(page)
		if page == p.CurrentPage() {
			label = "[" + label + "]"
		}
		parts = append(parts, label)
	}
	if info.ShowLastEllipsis {
		parts = append(parts, "…")
	}
	if info.ShowLastPage {
		parts = append(parts, strconv.Itoa(p.TotalPages()))
	}
	if p.HasNext() {
		parts = append(parts, "»")
	}
	return strings.Join(parts, " ")
}

func renderPagination(w io.Writer, p *pagination.Paginator, maxVisible int) {
	fmt.Fprintln(w, pageSummary(p))
	if p.TotalPages() > 1 {
		fmt.Fprintln(w, pageFooter(p, maxVisible))
	}
}

func boolLabel(b bool, yes string, no string) string {
	if b {
		return yes
	}
	return no
}

func intLabel(v int) string {
	if v == 0 {
		return "-"
	}
	return strconv.Itoa(v)
}
