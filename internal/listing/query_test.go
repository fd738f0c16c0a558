package listing

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseQueryDefaults(t *testing.T) {
	q := ParseQuery(url.Values{}, LabelParams, 5)
	assert.Equal(t, Query{Offset: 0, Limit: 5, Page: 1}, q)
}

func TestParseQueryAcceptsAliases(t *testing.T) {
	q := ParseQuery(url.Values{"offset": {"10"}, "limit": {"5"}, "textFilter": {"pasta"}}, LabelParams, 5)
	assert.Equal(t, Query{Offset: 10, Limit: 5, Page: 3, TextFilter: "pasta"}, q)

	q = ParseQuery(url.Values{"from": {"0"}, "to": {"3"}, "page": {"2"}, "name": {"ragù"}}, NameParams, 5)
	assert.Equal(t, Query{Offset: 4, Limit: 4, Page: 2, TextFilter: "ragù"}, q)
}

func TestParseQueryIgnoresMalformedValues(t *testing.T) {
	q := ParseQuery(url.Values{"page": {"zero"}, "from": {"-3"}, "to": {"x"}, "total": {"-1"}}, LabelParams, 5)
	assert.Equal(t, Query{Offset: 0, Limit: 5, Page: 1}, q)
}

func TestValuesRoundTrip(t *testing.T) {
	for _, q := range []Query{
		{Offset: 0, Limit: 5, Page: 1},
		{Offset: 20, Limit: 5, Page: 5, TextFilter: "Antipasti", Total: 23},
		{Offset: 6, Limit: 3, Page: 3, TextFilter: "a&b=c", Total: 9},
	} {
		for _, p := range []Params{LabelParams, NameParams} {
			encoded := q.Values(p).Encode()
			parsed, err := url.ParseQuery(encoded)
			assert.NoError(t, err)
			assert.Equal(t, q, ParseQuery(parsed, p, 5), encoded)
		}
	}
}

func TestPaginationBounds(t *testing.T) {
	cases := []struct {
		total, page    int
		pages          int
		next, previous bool
	}{
		{total: 0, page: 1, pages: 0},
		{total: 5, page: 1, pages: 1},
		{total: 6, page: 1, pages: 2, next: true},
		{total: 6, page: 2, pages: 2, previous: true},
		{total: 23, page: 3, pages: 5, next: true, previous: true},
	}
	for _, c := range cases {
		q := DefaultQuery(5).AtPage(c.page)
		q.Total = c.total
		assert.Equal(t, c.pages, q.TotalPages())
		assert.Equal(t, c.next, q.CanGoNext(), "total=%d page=%d", c.total, c.page)
		assert.Equal(t, c.previous, q.CanGoPrevious(), "total=%d page=%d", c.total, c.page)
	}
}

func TestOffsetFollowsPage(t *testing.T) {
	q := DefaultQuery(5)
	q.Total = 100
	for _, move := range []func(Query) Query{
		Query.Next, Query.Next, Query.Previous, Query.Next,
		func(q Query) Query { return q.WithFilter("x") },
		Query.Next, Query.Previous, Query.Previous,
	} {
		q = move(q)
		assert.GreaterOrEqual(t, q.Page, 1)
		assert.Equal(t, (q.Page-1)*q.Limit, q.Offset)
	}
}
