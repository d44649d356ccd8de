package pagination

import (
	"context"
	"net/url"
	"strconv"

	"github.com/JaimeStill/inquest/pkg/query"
)

// PageRequest selects one page of a listing. Page is 1-based.
type PageRequest struct {
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
	Search   *string           `json:"search,omitempty"`
	Sort     []query.SortField `json:"sort,omitempty"`
}

// Normalize clamps the page to at least 1 and the size into
// [1, cfg.MaxPageSize], using cfg.DefaultPageSize when unset.
func (r *PageRequest) Normalize(cfg Config) {
	r.Page = max(r.Page, 1)
	if r.PageSize < 1 {
		r.PageSize = cfg.DefaultPageSize
	}
	r.PageSize = min(r.PageSize, cfg.MaxPageSize)
}

func (r *PageRequest) Offset() int {
	return (r.Page - 1) * r.PageSize
}

// PageRequestFromQuery reads page, page_size, search and sort from a
// query string. Malformed numbers fall back to the defaults.
func PageRequestFromQuery(values url.Values, cfg Config) PageRequest {
	req := PageRequest{Sort: query.ParseSortFields(values.Get("sort"))}
	req.Page, _ = strconv.Atoi(values.Get("page"))
	req.PageSize, _ = strconv.Atoi(values.Get("page_size"))
	if s := values.Get("search"); s != "" {
		req.Search = &s
	}
	req.Normalize(cfg)
	return req
}

// PageResult is one page of T plus the totals needed to walk the rest.
type PageResult[T any] struct {
	Data       []T `json:"data"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalPages int `json:"total_pages"`
}

// NewPageResult reports at least one page, and an empty rather than null
// Data slice.
func NewPageResult[T any](data []T, total, page, pageSize int) PageResult[T] {
	pages := 1
	if pageSize > 0 && total > 0 {
		pages = (total + pageSize - 1) / pageSize
	}
	if data == nil {
		data = []T{}
	}
	return PageResult[T]{
		Data:       data,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: pages,
	}
}

// Last reports whether no page follows this one.
func (r *PageResult[T]) Last() bool {
	return r.Page >= r.TotalPages
}

// Collect walks every page of a listing from page 1 and returns the
// concatenated items.
func Collect[T any](
	ctx context.Context,
	pageSize int,
	list func(context.Context, PageRequest) (*PageResult[T], error),
) ([]T, error) {
	var all []T
	req := PageRequest{Page: 1, PageSize: pageSize}
	for {
		result, err := list(ctx, req)
		if err != nil {
			return nil, err
		}
		all = append(all, result.Data...)
		if result.Last() || len(result.Data) == 0 {
			return all, nil
		}
		req.Page++
	}
}
