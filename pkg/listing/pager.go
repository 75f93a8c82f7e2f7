// Package listing drives filtered, sorted, page-numbered collections fetched
// from the server.
package listing

import (
	"context"
	"log/slog"
	"sync"
)

const DefaultLimit = 20

type Query struct {
	Page     int
	Limit    int
	Search   string
	Status   string
	Category string
	Sort     string
}

type FetchFunc[T any] func(ctx context.Context, q Query) ([]T, error)

// Pager keeps the current query and the items loaded so far. Every filter,
// sort or search change resets to page 1 and refetches; responses belonging to
// a superseded query are dropped.
type Pager[T any] struct {
	fetch  FetchFunc[T]
	logger *slog.Logger

	mu      sync.Mutex
	query   Query
	items   []T
	hasMore bool
	loading bool
	loaded  bool
	gen     uint64
	err     error
}

func NewPager[T any](fetch FetchFunc[T], limit int, logger *slog.Logger) *Pager[T] {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pager[T]{
		fetch:  fetch,
		logger: logger,
		query:  Query{Page: 1, Limit: limit},
	}
}

func (p *Pager[T]) Query() Query {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.query
}

func (p *Pager[T]) Items() []T {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]T, len(p.items))
	copy(out, p.items)
	return out
}

// HasMore is true iff the last page came back full.
func (p *Pager[T]) HasMore() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hasMore
}

func (p *Pager[T]) Loading() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loading
}

// Loaded reports whether at least one fetch has completed.
func (p *Pager[T]) Loaded() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loaded
}

// Err is the last fetch error. The list itself is left empty on error.
func (p *Pager[T]) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

func (p *Pager[T]) SetSearch(ctx context.Context, search string) error {
	return p.reset(ctx, func(q *Query) { q.Search = search })
}

func (p *Pager[T]) SetStatus(ctx context.Context, status string) error {
	return p.reset(ctx, func(q *Query) { q.Status = status })
}

func (p *Pager[T]) SetCategory(ctx context.Context, category string) error {
	return p.reset(ctx, func(q *Query) { q.Category = category })
}

func (p *Pager[T]) SetSort(ctx context.Context, sort string) error {
	return p.reset(ctx, func(q *Query) { q.Sort = sort })
}

// SetQuery replaces every filter at once. Page and limit are kept.
func (p *Pager[T]) SetQuery(ctx context.Context, q Query) error {
	return p.reset(ctx, func(cur *Query) {
		cur.Search = q.Search
		cur.Status = q.Status
		cur.Category = q.Category
		cur.Sort = q.Sort
	})
}

// Reload refetches page 1 with the current filters.
func (p *Pager[T]) Reload(ctx context.Context) error {
	return p.reset(ctx, func(*Query) {})
}

func (p *Pager[T]) reset(ctx context.Context, change func(*Query)) error {
	p.mu.Lock()
	change(&p.query)
	p.query.Page = 1
	p.gen++
	gen := p.gen
	q := p.query
	p.loading = true
	p.mu.Unlock()

	items, err := p.fetch(ctx, q)

	p.mu.Lock()
	defer p.mu.Unlock()
	if gen != p.gen {
		return nil
	}
	p.loading = false
	p.loaded = true
	p.err = err
	if err != nil {
		p.logger.Warn("list fetch failed", slog.String("error", err.Error()))
		p.items = nil
		p.hasMore = false
		return err
	}
	p.items = items
	p.hasMore = len(items) == q.Limit
	return nil
}

// NextPage appends the following page. It does nothing while a fetch is in
// flight or when the previous page was short.
func (p *Pager[T]) NextPage(ctx context.Context) error {
	p.mu.Lock()
	if p.loading || !p.hasMore {
		p.mu.Unlock()
		return nil
	}
	gen := p.gen
	q := p.query
	q.Page++
	p.loading = true
	p.mu.Unlock()

	items, err := p.fetch(ctx, q)

	p.mu.Lock()
	defer p.mu.Unlock()
	if gen != p.gen {
		return nil
	}
	p.loading = false
	p.err = err
	if err != nil {
		p.logger.Warn("next page fetch failed", slog.Int("page", q.Page), slog.String("error", err.Error()))
		return err
	}
	p.query.Page = q.Page
	p.items = append(p.items, items...)
	p.hasMore = len(items) == q.Limit
	return nil
}
