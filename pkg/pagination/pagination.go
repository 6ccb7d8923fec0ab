// Package pagination tracks page, page size and total item count for a paginated listing.
//
// A Paginator never fails: out of range input is clamped to the nearest valid value, and the
// optional preferences store is best effort. The invariant 1 <= CurrentPage <= TotalPages holds
// after every operation, and TotalPages is at least 1 even for an empty listing.
//
// A Paginator is not safe for concurrent use.
package pagination

import (
	"time"

	"github.com/pulseone/pulse-admin/pkg/preferences"
	"go.uber.org/zap"
)

const (
	DefaultPage        = 1
	DefaultPageSize    = 10
	DefaultMinPageSize = 1
	DefaultMaxPageSize = 1000
	DefaultMaxVisible  = 5
)

type PageChangeFunc func(page int, pageSize int)

type Config struct {
	InitialPage     int
	InitialPageSize int
	InitialTotal    int

	MinPageSize int
	MaxPageSize int

	// CacheKey and Store enable remembering the last page and page size.
	CacheKey string
	Store    preferences.Store

	OnPageChange PageChangeFunc
	Logger       *zap.Logger

	// Now is used to stamp and age cached records; defaults to time.Now.
	Now func() time.Time
}

// State is a read-only snapshot of a Paginator including every derived field.
type State struct {
	CurrentPage int `json:"currentPage"`
	PageSize    int `json:"pageSize"`
	TotalCount  int `json:"totalCount"`
	TotalPages  int `json:"totalPages"`

	HasNext     bool `json:"hasNext"`
	HasPrev     bool `json:"hasPrev"`
	StartIndex  int  `json:"startIndex"`
	EndIndex    int  `json:"endIndex"`
	IsEmpty     bool `json:"isEmpty"`
	IsFirstPage bool `json:"isFirstPage"`
	IsLastPage  bool `json:"isLastPage"`
}

type Paginator struct {
	minPageSize int
	maxPageSize int

	initialPage     int
	initialPageSize int
	initialTotal    int

	currentPage int
	pageSize    int
	totalCount  int

	cacheKey     string
	store        preferences.Store
	onPageChange PageChangeFunc
	logger       *zap.Logger
	now          func() time.Time
}

func NewPaginator(cfg *Config) *Paginator {
	if cfg == nil {
		cfg = &Config{}
	}
	p := &Paginator{
		minPageSize:  cfg.MinPageSize,
		maxPageSize:  cfg.MaxPageSize,
		cacheKey:     cfg.CacheKey,
		store:        cfg.Store,
		onPageChange: cfg.OnPageChange,
		logger:       cfg.Logger,
		now:          cfg.Now,
	}
	if p.minPageSize < 1 {
		p.minPageSize = DefaultMinPageSize
	}
	if p.maxPageSize < 1 {
		p.maxPageSize = DefaultMaxPageSize
	}
	if p.maxPageSize < p.minPageSize {
		p.maxPageSize = p.minPageSize
	}
	if p.store == nil {
		p.store = preferences.NoopStore{}
	}
	if p.logger == nil {
		p.logger = zap.NewNop()
	}
	if p.now == nil {
		p.now = time.Now
	}

	pageSize := cfg.InitialPageSize
	if pageSize == 0 {
		pageSize = DefaultPageSize
	}
	p.pageSize = p.clampPageSize(pageSize)
	p.totalCount = clampTotal(cfg.InitialTotal)
	p.currentPage = clamp(cfg.InitialPage, 1, p.TotalPages())

	p.initialPage = p.currentPage
	p.initialPageSize = p.pageSize
	p.initialTotal = p.totalCount

	p.restore()

	return p
}

func (p *Paginator) restore() {
	r := preferences.Load(p.store, p.cacheKey, p.now())
	if r == nil {
		return
	}
	p.pageSize = p.clampPageSize(r.PageSize)
	p.currentPage = clamp(r.CurrentPage, 1, p.TotalPages())
	p.logger.Sugar().Debugw("Restored pagination preference",
		zap.String("key", p.cacheKey),
		zap.Int("page", p.currentPage),
		zap.Int("pageSize", p.pageSize),
	)
}

func (p *Paginator) persist() {
	preferences.Save(p.store, p.cacheKey, p.currentPage, p.pageSize, p.now())
}

func (p *Paginator) notify() {
	if p.onPageChange != nil {
		p.onPageChange(p.currentPage, p.pageSize)
	}
}

// GoToPage moves to requested, clamped into [1, TotalPages]. Landing on the current page is a
// no-op: the page change callback does not fire and nothing is persisted.
func (p *Paginator) GoToPage(requested int) {
	page := clamp(requested, 1, p.TotalPages())
	if page != requested {
		p.logger.Sugar().Debugw("Clamped requested page",
			zap.Int("requested", requested),
			zap.Int("page", page),
		)
	}
	if page == p.currentPage {
		return
	}
	p.currentPage = page
	p.notify()
	p.persist()
}

func (p *Paginator) NextPage() {
	p.GoToPage(p.currentPage + 1)
}

func (p *Paginator) PrevPage() {
	p.GoToPage(p.currentPage - 1)
}

func (p *Paginator) FirstPage() {
	p.GoToPage(1)
}

func (p *Paginator) LastPage() {
	p.GoToPage(p.TotalPages())
}

// ChangePageSize switches to a new page size and moves to the page that contains the first
// item of the previously visible page.
func (p *Paginator) ChangePageSize(requested int) {
	size := p.clampPageSize(requested)
	if size == p.pageSize {
		return
	}
	firstItemIndex := (p.currentPage - 1) * p.pageSize

	p.pageSize = size
	p.currentPage = clamp(firstItemIndex/size+1, 1, p.TotalPages())
	p.notify()
	p.persist()
}

// UpdateTotalCount records a new total, typically the one reported by the server with a list
// response. When the current page falls past the new last page it moves to the last page.
func (p *Paginator) UpdateTotalCount(newTotal int) {
	p.totalCount = clampTotal(newTotal)

	if last := p.TotalPages(); p.currentPage > last {
		p.currentPage = last
		p.notify()
		p.persist()
	}
}

// Reset restores the construction time page, page size and total, and forgets the cached record.
func (p *Paginator) Reset() {
	p.currentPage = p.initialPage
	p.pageSize = p.initialPageSize
	p.totalCount = p.initialTotal
	preferences.Clear(p.store, p.cacheKey)
}

func (p *Paginator) CurrentPage() int {
	return p.currentPage
}

func (p *Paginator) PageSize() int {
	return p.pageSize
}

func (p *Paginator) TotalCount() int {
	return p.totalCount
}

func (p *Paginator) TotalPages() int {
	return totalPages(p.totalCount, p.pageSize)
}

func (p *Paginator) HasNext() bool {
	return p.currentPage < p.TotalPages()
}

func (p *Paginator) HasPrev() bool {
	return p.currentPage > 1
}

// StartIndex is the 1-based index of the first item on the current page, 0 when empty.
func (p *Paginator) StartIndex() int {
	if p.totalCount == 0 {
		return 0
	}
	return min(p.Offset()+1, p.totalCount)
}

// EndIndex is the 1-based index of the last item on the current page, 0 when empty.
func (p *Paginator) EndIndex() int {
	return min(p.currentPage*p.pageSize, p.totalCount)
}

func (p *Paginator) IsEmpty() bool {
	return p.totalCount == 0
}

func (p *Paginator) IsFirstPage() bool {
	return p.currentPage == 1
}

func (p *Paginator) IsLastPage() bool {
	return p.currentPage == p.TotalPages()
}

// Offset is the 0-based index of the first item on the current page, as sent to list endpoints.
func (p *Paginator) Offset() int {
	return (p.currentPage - 1) * p.pageSize
}

func (p *Paginator) Limit() int {
	return p.pageSize
}

func (p *Paginator) State() State {
	return State{
		CurrentPage: p.currentPage,
		PageSize:    p.pageSize,
		TotalCount:  p.totalCount,
		TotalPages:  p.TotalPages(),
		HasNext:     p.HasNext(),
		HasPrev:     p.HasPrev(),
		StartIndex:  p.StartIndex(),
		EndIndex:    p.EndIndex(),
		IsEmpty:     p.IsEmpty(),
		IsFirstPage: p.IsFirstPage(),
		IsLastPage:  p.IsLastPage(),
	}
}

func (p *Paginator) clampPageSize(size int) int {
	return clamp(size, p.minPageSize, p.maxPageSize)
}

func totalPages(total int, pageSize int) int {
	if pageSize < 1 || total <= 0 {
		return 1
	}
	return (total + pageSize - 1) / pageSize
}

func clampTotal(total int) int {
	return max(total, 0)
}

func clamp(v int, lo int, hi int) int {
	return max(lo, min(v, hi))
}
