// Package store holds the reactive product-list state container. It owns
// the list snapshot, the concurrency and ordering policy across overlapping
// commands, and the fan-out of state snapshots to subscribers.
package store

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"product-catalog/internal/client"
	"product-catalog/internal/config"
	"product-catalog/internal/domain"
	"product-catalog/internal/query"
	"product-catalog/internal/validate"
)

// Store is the single source of truth for a product list screen. State is
// mutated only by its command methods; consumers read it through Snapshot
// and Subscribe. List-affecting commands are serialized by a generation
// counter: a fetch whose generation has been superseded when its response
// arrives is silently dropped, so only the most recent command determines
// the final list.
type Store struct {
	repo   client.Repository
	logger *zap.Logger

	mu          sync.Mutex
	state       domain.ListState
	gen         uint64
	typesFrozen bool
	inFlight    context.CancelFunc

	subs    map[int]chan domain.ListState
	nextSub int
	closed  bool

	searchDebounce *debouncer
	priceDebounce  *debouncer
}

// New creates a store with an Idle state on page 1 of the configured
// default page size.
func New(repo client.Repository, cfg config.StoreConfig, logger *zap.Logger) *Store {
	pageSize := cfg.DefaultPageSize
	if pageSize <= 0 {
		pageSize = query.DefaultPageSize
	}
	return &Store{
		repo:   repo,
		logger: logger,
		state: domain.ListState{
			Status: domain.StatusIdle,
			ActiveQuery: domain.FilterQuery{
				Page:     1,
				PageSize: pageSize,
			},
		},
		subs:           make(map[int]chan domain.ListState),
		searchDebounce: newDebouncer(cfg.SearchDebounce),
		priceDebounce:  newDebouncer(cfg.PriceDebounce),
	}
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() domain.ListState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Subscribe registers an observer. The channel immediately carries the
// current snapshot and then every subsequent transition until the returned
// unsubscribe function is called. A slow subscriber never blocks the store:
// intermediate snapshots are coalesced into the latest one.
func (s *Store) Subscribe() (<-chan domain.ListState, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan domain.ListState, 1)
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	ch <- s.state.Clone()

	unsubscribe := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if sub, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(sub)
		}
	}
	return ch, unsubscribe
}

// Close stops the debouncers, cancels any in-flight fetch, and closes all
// subscriber channels.
func (s *Store) Close() {
	s.searchDebounce.stop()
	s.priceDebounce.stop()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.gen++ // orphan any in-flight fetch
	if s.inFlight != nil {
		s.inFlight()
		s.inFlight = nil
	}
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
}

// LoadList fetches the page described by the override, filling page and
// page size from the current query, and replaces the visible items on
// success. Filter, sort and search facets not set on the override are
// cleared; a nil override reloads the current page unfiltered.
func (s *Store) LoadList(override *domain.FilterQuery) {
	s.mu.Lock()
	partial := domain.FilterQuery{}
	if override != nil {
		partial = *override
	}
	q := query.Normalize(partial, s.state.ActiveQuery)
	q.Search = ""
	gen, ctx := s.beginFetchLocked(domain.StatusLoading)
	s.mu.Unlock()

	go s.runList(ctx, gen, q, false)
}

// Refresh resets to page 1 and reloads with replace semantics.
func (s *Store) Refresh() {
	s.LoadList(&domain.FilterQuery{Page: 1})
}

// Search replaces the visible items with the full (unpaginated) match list
// for the term. A blank term returns to normal browsing on page 1. An empty
// result is a success, not an error.
func (s *Store) Search(term string) {
	trimmed := strings.TrimSpace(term)
	if trimmed == "" {
		s.LoadList(&domain.FilterQuery{Page: 1})
		return
	}

	s.mu.Lock()
	gen, ctx := s.beginFetchLocked(domain.StatusLoading)
	s.mu.Unlock()

	go func() {
		products, err := s.repo.Search(ctx, trimmed)

		s.mu.Lock()
		defer s.mu.Unlock()
		if gen != s.gen {
			return // superseded; drop the stale result
		}
		if err != nil {
			s.failLocked("Search failed", err)
			return
		}

		s.state.Items = products
		s.state.ActiveQuery.Search = trimmed
		// search is unpaginated; collapse the pagination metadata so UI
		// controls fold down to a single page
		s.state.Pagination = domain.PageMeta{
			Page:       1,
			PageSize:   len(products),
			TotalItems: len(products),
			TotalPages: 1,
		}
		s.state.Status = domain.StatusSuccess
		s.state.ErrorMessage = ""
		s.publishLocked()
	}()
}

// ChangeFilter applies a new filter facet (type, price bounds, sort) and
// reloads from page 1. The page size is preserved unless the filter sets
// its own.
func (s *Store) ChangeFilter(filter domain.FilterQuery) {
	filter.Page = 1
	filter.Search = ""
	s.mu.Lock()
	if filter.PageSize == 0 {
		filter.PageSize = s.state.ActiveQuery.PageSize
	}
	q := query.Normalize(filter, s.state.ActiveQuery)
	q.Page = 1
	gen, ctx := s.beginFetchLocked(domain.StatusLoading)
	s.mu.Unlock()

	go s.runList(ctx, gen, q, false)
}

// ChangePage navigates to the given page with replace semantics. Pages
// outside [1, totalPages] are a no-op.
func (s *Store) ChangePage(page int) {
	s.mu.Lock()
	if page < 1 || page > s.state.Pagination.TotalPages {
		s.mu.Unlock()
		return
	}
	q := s.state.ActiveQuery
	q.Page = page
	q.Search = ""
	gen, ctx := s.beginFetchLocked(domain.StatusLoading)
	s.mu.Unlock()

	go s.runList(ctx, gen, q, false)
}

// FirstPage, PreviousPage, NextPage and LastPage navigate relative to the
// current pagination metadata. Out-of-range targets are no-ops.
func (s *Store) FirstPage() { s.ChangePage(1) }

func (s *Store) PreviousPage() {
	s.ChangePage(s.Snapshot().Pagination.Page - 1)
}

func (s *Store) NextPage() {
	s.ChangePage(s.Snapshot().Pagination.Page + 1)
}

func (s *Store) LastPage() {
	s.ChangePage(s.Snapshot().Pagination.TotalPages)
}

// LoadMore appends the next page to the visible items. It is a no-op
// unless the store is in Success state with more pages available.
func (s *Store) LoadMore() {
	s.mu.Lock()
	if s.state.Status != domain.StatusSuccess || !s.state.Pagination.HasMore() {
		s.mu.Unlock()
		return
	}
	q := s.state.ActiveQuery
	q.Page = s.state.Pagination.Page + 1
	q.Search = ""
	gen, ctx := s.beginFetchLocked(domain.StatusLoadingMore)
	s.mu.Unlock()

	go s.runList(ctx, gen, q, true)
}

// CreateProduct validates the draft and, when it passes, submits it to the
// backend and appends the created product to the visible items. Validation
// failures are returned synchronously without any network call or list
// state change. Transport failures set the Error status and leave the list
// untouched.
func (s *Store) CreateProduct(ctx context.Context, draft domain.ProductDraft) (domain.ValidationResult, error) {
	result := validate.Validate(draft)
	if !result.Valid {
		return result, nil
	}

	created, err := s.repo.Create(ctx, draft)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.failLocked("Failed to create product", err)
		return result, err
	}

	s.state.Items = append(s.state.Items, created)
	s.state.SelectedProduct = nil
	s.state.EditMode = false
	s.state.Status = domain.StatusSuccess
	s.state.ErrorMessage = ""
	s.publishLocked()
	return result, nil
}

// UpdateProduct validates the draft and, when it passes, submits the update
// and replaces the matching item in place, preserving list order.
func (s *Store) UpdateProduct(ctx context.Context, id int64, draft domain.ProductDraft) (domain.ValidationResult, error) {
	result := validate.Validate(draft)
	if !result.Valid {
		return result, nil
	}

	updated, err := s.repo.Update(ctx, id, draft)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.failLocked("Failed to update product", err)
		return result, err
	}

	for i := range s.state.Items {
		if s.state.Items[i].ID == id {
			s.state.Items[i] = updated
			break
		}
	}
	s.state.SelectedProduct = nil
	s.state.EditMode = false
	s.state.Status = domain.StatusSuccess
	s.state.ErrorMessage = ""
	s.publishLocked()
	return result, nil
}

// DeleteProduct removes the product from the backend and, on success, from
// the visible items. On failure the list is left untouched.
func (s *Store) DeleteProduct(ctx context.Context, id int64) error {
	err := s.repo.Delete(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.failLocked("Failed to delete product", err)
		return err
	}

	items := s.state.Items[:0]
	for _, p := range s.state.Items {
		if p.ID != id {
			items = append(items, p)
		}
	}
	s.state.Items = items
	if s.state.SelectedProduct != nil && s.state.SelectedProduct.ID == id {
		s.state.SelectedProduct = nil
	}
	s.state.Status = domain.StatusSuccess
	s.state.ErrorMessage = ""
	s.publishLocked()
	return nil
}

// SelectProduct fetches a single product for the detail/edit view and
// stores it as the selection.
func (s *Store) SelectProduct(ctx context.Context, id int64) error {
	product, err := s.repo.GetByID(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.failLocked("Failed to load product", err)
		return err
	}
	s.state.SelectedProduct = &product
	s.state.EditMode = true
	s.publishLocked()
	return nil
}

// ClearSelection drops the selected product and leaves edit mode.
func (s *Store) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.SelectedProduct = nil
	s.state.EditMode = false
	s.publishLocked()
}

// SearchInput feeds a raw search box value through the search debouncer;
// the Search command fires only after input quiescence.
func (s *Store) SearchInput(term string) {
	s.searchDebounce.trigger(func() {
		s.Search(term)
	})
}

// PriceRangeInput feeds raw price bound inputs through the price debouncer.
// The resulting filter change preserves the current type and sort.
func (s *Store) PriceRangeInput(minPrice, maxPrice *float64) {
	s.priceDebounce.trigger(func() {
		s.mu.Lock()
		filter := s.state.ActiveQuery
		s.mu.Unlock()
		filter.MinPrice = minPrice
		filter.MaxPrice = maxPrice
		s.ChangeFilter(filter)
	})
}

// beginFetchLocked starts a new authoritative list fetch: it bumps the
// generation, cancels the superseded request, sets the transitional status,
// and publishes. Caller holds s.mu.
func (s *Store) beginFetchLocked(status domain.Status) (uint64, context.Context) {
	s.gen++
	if s.inFlight != nil {
		// cancellation is a resource optimization only; correctness comes
		// from the generation check at resolution time
		s.inFlight()
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.inFlight = cancel

	s.state.Status = status
	s.state.ErrorMessage = ""
	s.publishLocked()
	return s.gen, ctx
}

// runList performs a list fetch and reconciles the response against the
// state as it is at resolution time. Stale generations are dropped.
func (s *Store) runList(ctx context.Context, gen uint64, q domain.FilterQuery, appendItems bool) {
	page, err := s.repo.List(ctx, q)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return
	}
	if err != nil {
		s.failLocked("Failed to load products", err)
		return
	}

	if appendItems {
		s.state.Items = append(s.state.Items, page.Products...)
	} else {
		s.state.Items = page.Products
	}
	s.state.ActiveQuery = q
	s.state.Pagination = domain.PageMeta{
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalItems: page.TotalItems,
		TotalPages: page.TotalPages,
	}
	s.state.Status = domain.StatusSuccess
	s.state.ErrorMessage = ""

	// the type filter options come from the first successful unfiltered
	// page and are never recomputed
	if !s.typesFrozen && q.IsUnfiltered() {
		s.state.KnownTypes = distinctTypes(page.Products)
		s.typesFrozen = true
	}

	s.publishLocked()
}

// failLocked records a transport failure without blanking the last good
// list. Caller holds s.mu.
func (s *Store) failLocked(msg string, err error) {
	s.logger.Error(msg, zap.Error(err))
	s.state.Status = domain.StatusError
	s.state.ErrorMessage = err.Error()
	s.publishLocked()
}

// publishLocked fans the current snapshot out to all subscribers without
// blocking: each subscriber channel holds at most the latest snapshot.
// Caller holds s.mu.
func (s *Store) publishLocked() {
	if len(s.subs) == 0 {
		return
	}
	snap := s.state.Clone()
	for _, ch := range s.subs {
		select {
		case ch <- snap:
		default:
			// drop the stale snapshot and retry with the latest
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
}

func distinctTypes(products []domain.Product) []string {
	seen := make(map[string]struct{}, len(products))
	var types []string
	for _, p := range products {
		if p.Type == "" {
			continue
		}
		if _, ok := seen[p.Type]; ok {
			continue
		}
		seen[p.Type] = struct{}{}
		types = append(types, p.Type)
	}
	return types
}
