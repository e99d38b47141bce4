package pagination

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const (
	// MaxLimit caps the page size a caller can request.
	MaxLimit = 100

	pageParam  = "_page"
	limitParam = "_limit"
)

// Params holds optional offset paging inputs. A zero Limit means "everything",
// matching clients that never page.
type Params struct {
	Page  int
	Limit int
}

// FromQuery reads _page and _limit and strips them from the query so they are
// not treated as filters.
func FromQuery(query url.Values) (Params, error) {
	var params Params
	if raw := strings.TrimSpace(query.Get(limitParam)); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			return Params{}, fmt.Errorf("%s must be a positive integer", limitParam)
		}
		params.Limit = NormalizeLimit(limit)
	}
	if raw := strings.TrimSpace(query.Get(pageParam)); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page <= 0 {
			return Params{}, fmt.Errorf("%s must be a positive integer", pageParam)
		}
		params.Page = page
	}
	query.Del(limitParam)
	query.Del(pageParam)
	return params, nil
}

// NormalizeLimit enforces the maximum page size.
func NormalizeLimit(limit int) int {
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// Bounds returns the [start, end) window of a collection of size n.
func (p Params) Bounds(n int) (int, int) {
	if p.Limit <= 0 {
		return 0, n
	}
	page := p.Page
	if page <= 0 {
		page = 1
	}
	start := (page - 1) * p.Limit
	if start > n {
		start = n
	}
	end := start + p.Limit
	if end > n {
		end = n
	}
	return start, end
}

// Apply slices items to the requested page.
func Apply[T any](items []T, p Params) []T {
	start, end := p.Bounds(len(items))
	return items[start:end]
}
