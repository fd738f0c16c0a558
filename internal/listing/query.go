// Package listing keeps an admin list view's window, page, filter and total
// consistent with the URL query string and the rows on screen.
package listing

import (
	"net/url"
	"strconv"
)

const DefaultPageSize = 5

// Params names the query string keys a view writes.
type Params struct {
	From   string
	To     string
	Page   string
	Total  string
	Filter string
}

var (
	LabelParams = Params{From: "from", To: "to", Page: "page", Total: "total", Filter: "label"}
	NameParams  = Params{From: "from", To: "to", Page: "page", Total: "total", Filter: "name"}
)

// Query is one list request. Offset always equals (Page-1)*Limit. Total is
// the last count the server reported and is advisory only.
type Query struct {
	Offset     int
	Limit      int
	Page       int
	TextFilter string
	Total      int
}

func DefaultQuery(pageSize int) Query {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return Query{Limit: pageSize, Page: 1}
}

// ParseQuery reads a query from URL values. It accepts offset or from for
// the window start, limit or an inclusive to for the window size, and
// textFilter, name or label for the filter. Missing or malformed values
// fall back to the defaults.
func ParseQuery(v url.Values, p Params, pageSize int) Query {
	q := DefaultQuery(pageSize)

	offset, hasOffset := firstInt(v, "offset", p.From, "from")
	if offset < 0 {
		offset = 0
	}
	if limit, ok := firstInt(v, "limit"); ok && limit > 0 {
		q.Limit = limit
	} else if to, ok := firstInt(v, p.To, "to"); ok && to-offset+1 > 0 {
		q.Limit = to - offset + 1
	}

	if page, ok := firstInt(v, p.Page, "page"); ok && page >= 1 {
		q.Page = page
	} else if hasOffset {
		q.Page = offset/q.Limit + 1
	}
	q.Offset = (q.Page - 1) * q.Limit

	if total, ok := firstInt(v, p.Total, "total"); ok && total >= 0 {
		q.Total = total
	}
	for _, key := range []string{p.Filter, "textFilter", "name", "label"} {
		if key != "" && v.Has(key) {
			q.TextFilter = v.Get(key)
			break
		}
	}
	return q
}

// Values projects q onto the URL keys in p.
func (q Query) Values(p Params) url.Values {
	v := url.Values{}
	v.Set(p.From, strconv.Itoa(q.Offset))
	v.Set(p.To, strconv.Itoa(q.Offset+q.Limit-1))
	v.Set(p.Page, strconv.Itoa(q.Page))
	v.Set(p.Total, strconv.Itoa(q.Total))
	v.Set(p.Filter, q.TextFilter)
	return v
}

func (q Query) TotalPages() int {
	if q.Limit <= 0 || q.Total <= 0 {
		return 0
	}
	return (q.Total + q.Limit - 1) / q.Limit
}

func (q Query) CanGoNext() bool {
	return q.Page < q.TotalPages()
}

func (q Query) CanGoPrevious() bool {
	return q.Page > 1
}

func (q Query) AtPage(page int) Query {
	if page < 1 {
		page = 1
	}
	q.Page = page
	q.Offset = (page - 1) * q.Limit
	return q
}

func (q Query) Next() Query {
	return q.AtPage(q.Page + 1)
}

func (q Query) Previous() Query {
	return q.AtPage(q.Page - 1)
}

// WithFilter sets the filter and goes back to the first page.
func (q Query) WithFilter(text string) Query {
	q.TextFilter = text
	return q.AtPage(1)
}

func firstInt(v url.Values, keys ...string) (int, bool) {
	for _, key := range keys {
		if key == "" || !v.Has(key) {
			continue
		}
		n, err := strconv.Atoi(v.Get(key))
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}
