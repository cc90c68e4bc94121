package domain

// Status is the lifecycle phase of the product list.
type Status string

const (
	StatusIdle        Status = "idle"
	StatusLoading     Status = "loading"
	StatusLoadingMore Status = "loading_more"
	StatusSuccess     Status = "success"
	StatusError       Status = "error"
)

// FilterQuery describes a list request: pagination, optional filters,
// sorting, and an optional free-text search term. A non-empty search term
// replaces list browsing; filter, sort and pagination are suspended while
// it is active.
type FilterQuery struct {
	Page      int
	PageSize  int
	Type      string
	MinPrice  *float64
	MaxPrice  *float64
	SortBy    string
	SortOrder string
	Search    string
}

// IsUnfiltered reports whether the query applies no filter, sort, or search.
func (q FilterQuery) IsUnfiltered() bool {
	return q.Type == "" && q.MinPrice == nil && q.MaxPrice == nil &&
		q.SortBy == "" && q.Search == ""
}

// ProductPage is one page of list results with its pagination metadata.
type ProductPage struct {
	Products   []Product
	Page       int
	PageSize   int
	TotalItems int
	TotalPages int
}

// PageMeta is the pagination slice of the list state.
type PageMeta struct {
	Page       int
	PageSize   int
	TotalItems int
	TotalPages int
}

// HasMore reports whether another page can be fetched.
func (m PageMeta) HasMore() bool {
	return m.Page < m.TotalPages
}

// ListState is the single source of truth for the product list screen.
// It is owned and mutated exclusively by the store and exposed to
// consumers only as snapshots.
type ListState struct {
	Items           []Product
	Status          Status
	ErrorMessage    string
	ActiveQuery     FilterQuery
	Pagination      PageMeta
	SelectedProduct *Product
	KnownTypes      []string
	EditMode        bool
}

// Clone returns a deep copy safe to hand to subscribers.
func (s ListState) Clone() ListState {
	out := s
	if s.Items != nil {
		out.Items = make([]Product, len(s.Items))
		copy(out.Items, s.Items)
	}
	if s.KnownTypes != nil {
		out.KnownTypes = make([]string, len(s.KnownTypes))
		copy(out.KnownTypes, s.KnownTypes)
	}
	if s.SelectedProduct != nil {
		p := *s.SelectedProduct
		out.SelectedProduct = &p
	}
	if s.ActiveQuery.MinPrice != nil {
		v := *s.ActiveQuery.MinPrice
		out.ActiveQuery.MinPrice = &v
	}
	if s.ActiveQuery.MaxPrice != nil {
		v := *s.ActiveQuery.MaxPrice
		out.ActiveQuery.MaxPrice = &v
	}
	return out
}
