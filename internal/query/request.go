package query

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Pagination defaults. Out-of-range input is clamped to these, never rejected.
const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100

	// MaxKeywordLength bounds a keyword in runes.
	MaxKeywordLength = 200
)

// unknownCategory never matches a stored category; ids start at 1.
const unknownCategory int64 = 0

// PageRequest describes one page of the filtered listing.
type PageRequest struct {
	Query      string
	CategoryID *int64
	Page       int
	Limit      int
}

// ParsePageRequest builds a PageRequest from untyped boundary parameters.
// Malformed page and limit values fall back to the defaults; a malformed
// category id becomes an id that matches no category.
func ParsePageRequest(query, category, page, limit string) PageRequest {
	return PageRequest{
		Query:      query,
		CategoryID: ParseCategoryID(category),
		Page:       parsePositive(page, DefaultPage),
		Limit:      parsePositive(limit, DefaultLimit),
	}.Normalize()
}

// ParseCategoryID returns nil for an absent category.
func ParseCategoryID(s string) *int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		id = unknownCategory
	}
	return &id
}

// Normalize clamps Page and Limit into range and trims Query.
func (r PageRequest) Normalize() PageRequest {
	r.Query = strings.TrimSpace(r.Query)
	if r.Page < 1 {
		r.Page = DefaultPage
	}
	if r.Limit < 1 {
		r.Limit = DefaultLimit
	}
	if r.Limit > MaxLimit {
		r.Limit = MaxLimit
	}
	if r.CategoryID != nil && *r.CategoryID <= 0 {
		id := unknownCategory
		r.CategoryID = &id
	}
	return r
}

// Offset is (Page-1)*Limit over the normalized request. It saturates instead of overflowing.
func (r PageRequest) Offset() int64 {
	n := r.Normalize()
	pages := int64(n.Page - 1)
	limit := int64(n.Limit)
	if pages > math.MaxInt64/limit {
		return math.MaxInt64
	}
	return pages * limit
}

// Filter returns the predicate part of the request.
func (r PageRequest) Filter() Filter {
	n := r.Normalize()
	return Filter{Keyword: n.Query, CategoryID: n.CategoryID}
}

// Filter is the predicate shared by a page query and its count query.
type Filter struct {
	Keyword    string
	CategoryID *int64
}

// HasKeyword reports whether the filter restricts by full-text match.
func (f Filter) HasKeyword() bool {
	return strings.TrimSpace(f.Keyword) != ""
}

// KnownCategory reports whether CategoryID can refer to a stored category at all.
// A nil CategoryID means no category filter and is reported as known.
func (f Filter) KnownCategory() bool {
	return f.CategoryID == nil || *f.CategoryID > 0
}

// ValidKeyword reports whether keyword is acceptable for a required-keyword search.
func ValidKeyword(keyword string) bool {
	k := strings.TrimSpace(keyword)
	return k != "" && utf8.RuneCountInString(k) <= MaxKeywordLength
}

func parsePositive(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return def
	}
	return n
}
