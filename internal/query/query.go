// Package query builds canonical list queries: it fills unset fields from
// the current state, clamps pagination bounds, and serializes queries into
// the parameter names the backend expects. Everything here is pure.
package query

import (
	"net/url"
	"strconv"
	"strings"

	"product-catalog/internal/domain"
)

const (
	MinPage         = 1
	MinPageSize     = 1
	MaxPageSize     = 100
	DefaultPageSize = 10
)

// SortOrderAsc and SortOrderDesc are the only directions the backend accepts.
const (
	SortOrderAsc  = "asc"
	SortOrderDesc = "desc"
)

// Normalize merges a partial query with the current one and returns a
// canonical query: page >= 1, pageSize within [1,100], blank string filters
// dropped, inverted price bounds swapped, combined sort tokens split.
func Normalize(partial, current domain.FilterQuery) domain.FilterQuery {
	q := partial

	if q.Page == 0 {
		q.Page = current.Page
	}
	if q.Page < MinPage {
		q.Page = MinPage
	}

	if q.PageSize == 0 {
		q.PageSize = current.PageSize
	}
	if q.PageSize == 0 {
		q.PageSize = DefaultPageSize
	}
	if q.PageSize < MinPageSize {
		q.PageSize = MinPageSize
	}
	if q.PageSize > MaxPageSize {
		q.PageSize = MaxPageSize
	}

	q.Type = strings.TrimSpace(q.Type)
	q.Search = strings.TrimSpace(q.Search)

	if q.MinPrice != nil && q.MaxPrice != nil && *q.MinPrice > *q.MaxPrice {
		q.MinPrice, q.MaxPrice = q.MaxPrice, q.MinPrice
	}

	q.SortBy, q.SortOrder = normalizeSort(q.SortBy, q.SortOrder)

	return q
}

// Values serializes a query into the transport-level parameter mapping.
// The search term is not included; search uses its own endpoint.
func Values(q domain.FilterQuery) url.Values {
	v := url.Values{}
	v.Set("page", strconv.Itoa(q.Page))
	v.Set("pageSize", strconv.Itoa(q.PageSize))
	if q.Type != "" {
		v.Set("type", q.Type)
	}
	if q.MinPrice != nil {
		v.Set("minPrice", formatPrice(*q.MinPrice))
	}
	if q.MaxPrice != nil {
		v.Set("maxPrice", formatPrice(*q.MaxPrice))
	}
	if q.SortBy != "" {
		v.Set("sortBy", q.SortBy)
		v.Set("sortOrder", q.SortOrder)
	}
	return v
}

// CanonicalizeSort splits a combined sort token such as "price_asc" or
// "created_at_desc" into the two-field form. A token without a direction
// suffix sorts ascending.
func CanonicalizeSort(token string) (sortBy, sortOrder string) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ""
	}
	switch {
	case strings.HasSuffix(token, "_asc"):
		return strings.TrimSuffix(token, "_asc"), SortOrderAsc
	case strings.HasSuffix(token, "_desc"):
		return strings.TrimSuffix(token, "_desc"), SortOrderDesc
	default:
		return token, SortOrderAsc
	}
}

func normalizeSort(sortBy, sortOrder string) (string, string) {
	sortBy = strings.TrimSpace(sortBy)
	if sortBy == "" {
		return "", ""
	}
	sortOrder = strings.ToLower(strings.TrimSpace(sortOrder))
	if sortOrder == "" {
		// accept the combined-token encoding on input
		return CanonicalizeSort(sortBy)
	}
	if sortOrder != SortOrderAsc && sortOrder != SortOrderDesc {
		sortOrder = SortOrderAsc
	}
	return sortBy, sortOrder
}

func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
