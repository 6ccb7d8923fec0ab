package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/pulseone/pulse-admin/pkg/clients/pulseone"
	"github.com/pulseone/pulse-admin/pkg/pagination"
	"github.com/pulseone/pulse-admin/pkg/preferences"
	"github.com/pulseone/pulse-admin/pkg/service/types"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type pageFlags struct {
	page     int
	pageSize int
	all      bool
}

func addPageFlags(cmd *cobra.Command) *pageFlags {
	f := &pageFlags{}
	cmd.Flags().IntVar(&f.page, "page", 0, "Page to show (default: the page last shown for this listing)")
	cmd.Flags().IntVar(&f.pageSize, "page-size", 0, "Items per page (default: the size last used for this listing)")
	cmd.Flags().BoolVar(&f.all, "all", false, "Fetch and show every page")
	return f
}

type fetchPageFunc[T any] func(ctx context.Context, page *types.Pagination) (*pulseone.ListResponse[T], error)

type listing[T any] struct {
	cacheKey string
	headers  []string
	fetch    fetchPageFunc[T]
	row      func(item *T) []string
}

func (a *app) newPaginator(cacheKey string, total int) *pagination.Paginator {
	return pagination.NewPaginator(&pagination.Config{
		InitialPageSize: a.cfg.PaginationConfig.PageSize,
		InitialTotal:    total,
		MaxPageSize:     a.cfg.PaginationConfig.MaxPageSize,
		CacheKey:        cacheKey,
		Store:           a.store,
		Logger:          a.logger,
		OnPageChange: func(page int, pageSize int) {
			a.logger.Sugar().Debugw("Page changed",
				zap.String("listing", cacheKey),
				zap.Int("page", page),
				zap.Int("pageSize", pageSize),
			)
		},
	})
}

// requestedPage is the explicit --page, else the page remembered for the listing, else 1.
func (a *app) requestedPage(cacheKey string, flags *pageFlags) int {
	if flags.page > 0 {
		return flags.page
	}
	if r := preferences.Load(a.store, cacheKey, time.Now()); r != nil {
		return r.CurrentPage
	}
	return 1
}

// fetchListingPage loads one page and settles the paginator against the total the server
// reports. A page past the end is re-requested as the last page.
func fetchListingPage[T any](ctx context.Context, a *app, p *pagination.Paginator, flags *pageFlags, l *listing[T]) (*pulseone.ListResponse[T], error) {
	if flags.page > 0 && flags.pageSize > 0 {
		p.ChangePageSize(flags.pageSize)
	}
	requested := a.requestedPage(l.cacheKey, flags)

	fetched := &types.Pagination{Page: requested, PageSize: p.PageSize()}
	res, err := l.fetch(ctx, fetched)
	if err != nil {
		return nil, err
	}
	p.UpdateTotalCount(res.Pagination.Total)
	p.GoToPage(requested)

	if flags.page <= 0 && flags.pageSize > 0 {
		p.ChangePageSize(flags.pageSize)
	}
	if p.CurrentPage() == fetched.Page && p.PageSize() == fetched.PageSize {
		return res, nil
	}

	res, err = l.fetch(ctx, types.FromPaginator(p))
	if err != nil {
		return nil, err
	}
	p.UpdateTotalCount(res.Pagination.Total)
	return res, nil
}

// collectAll walks every page of a listing.
func collectAll[T any](ctx context.Context, pageSize int, fetch fetchPageFunc[T]) ([]T, int, error) {
	page := types.NewDefaultPagination()
	page.Load(1, pageSize)

	items := make([]T, 0)
	for {
		res, err := fetch(ctx, page)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, res.Items...)
		if len(res.Items) == 0 || len(items) >= res.Pagination.Total {
			return items, res.Pagination.Total, nil
		}
		page.Page++
	}
}

func runListing[T any](ctx context.Context, a *app, flags *pageFlags, l *listing[T]) error {
	p := a.newPaginator(l.cacheKey, 0)

	if flags.all {
		if flags.pageSize > 0 {
			p.ChangePageSize(flags.pageSize)
		}
		items, total, err := collectAll(ctx, p.PageSize(), l.fetch)
		if err != nil {
			return err
		}
		renderTable(a.out, l.headers, rowsOf(items, l.row))
		fmt.Fprintf(a.out, "%d of %d items\n", len(items), total)
		return nil
	}

	res, err := fetchListingPage(ctx, a, p, flags, l)
	if err != nil {
		return err
	}
	renderTable(a.out, l.headers, rowsOf(res.Items, l.row))
	renderPagination(a.out, p, a.cfg.PaginationConfig.MaxVisible)
	return nil
}

// runLocalListing pages through items already held in memory.
func runLocalListing[T any](a *app, flags *pageFlags, l *listing[T], items []T) {
	p := a.newPaginator(l.cacheKey, len(items))
	if flags.all {
		renderTable(a.out, l.headers, rowsOf(items, l.row))
		fmt.Fprintf(a.out, "%d items\n", len(items))
		return
	}
	if flags.pageSize > 0 {
		p.ChangePageSize(flags.pageSize)
	}
	if flags.page > 0 {
		p.GoToPage(flags.page)
	}
	renderTable(a.out, l.headers, rowsOf(pageOf(items, p), l.row))
	renderPagination(a.out, p, a.cfg.PaginationConfig.MaxVisible)
}

func pageOf[T any](items []T, p *pagination.Paginator) []T {
	if p.IsEmpty() {
		return items[:0]
	}
	return items[p.StartIndex()-1 : p.EndIndex()]
}

func rowsOf[T any](items []T, row func(item *T) []string) [][]string {
	rows := make([][]string, 0, len(items))
	for i := range items {
		rows = append(rows, row(&items[i]))
	}
	return rows
}
