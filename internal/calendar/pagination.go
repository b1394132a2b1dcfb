package calendar

// DefaultPageSize applies when a page number is given without a size.
const DefaultPageSize = 20

// PageRequest is a 1-based page position. The zero value asks for every
// match on a single page.
type PageRequest struct {
	Page     int
	PageSize int
}

func (r PageRequest) All() bool {
	return r.Page <= 0 && r.PageSize <= 0
}

// Normalize fills in the defaults for a partially given request.
func (r PageRequest) Normalize() PageRequest {
	if r.All() {
		return r
	}
	if r.PageSize <= 0 {
		r.PageSize = DefaultPageSize
	}
	if r.Page <= 0 {
		r.Page = 1
	}
	return r
}

// Offset is the number of rows to skip for the (normalized) request.
func (r PageRequest) Offset() int {
	r = r.Normalize()
	if r.All() {
		return 0
	}
	return (r.Page - 1) * r.PageSize
}

// Page is one page of items plus the position metadata of the listing.
type Page[T any] struct {
	Items    []T  `json:"items"`
	Page     int  `json:"page"`      // 1-based
	PageSize int  `json:"page_size"` // items per page
	HasNext  bool `json:"has_next"`
	HasPrev  bool `json:"has_prev"`
	Total    int  `json:"total"`
}

// NewPage wraps items already fetched for r. total counts every match of the
// listing, not just this page.
func NewPage[T any](items []T, r PageRequest, total int64) Page[T] {
	if items == nil {
		items = []T{}
	}
	r = r.Normalize()
	if r.All() {
		size := len(items)
		if size == 0 {
			size = 1
		}
		return Page[T]{Items: items, Page: 1, PageSize: size, Total: len(items)}
	}
	return Page[T]{
		Items:    items,
		Page:     r.Page,
		PageSize: r.PageSize,
		HasNext:  int64(r.Offset()+len(items)) < total,
		HasPrev:  r.Page > 1,
		Total:    int(total),
	}
}
