// Package gateway wraps the record and blob stores in one typed table per
// entity. No operation returns an error: every outcome is normalized to a
// Result, and callers branch on Success.
package gateway

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cast"

	"github.com/lehmann314159/recipes/internal/store"
)

// errNoData marks a response that carried no data container.
var errNoData = errors.New("response carried no data")

type Result[T any] struct {
	Success    bool
	Data       T
	TotalCount int
}

func ok[T any](data T) Result[T] {
	return Result[T]{Success: true, Data: data}
}

type Table[T any] struct {
	name        string
	searchField string
	orderBy     string
	records     store.RecordStore
	encode      func(T) store.Row
	decode      func(store.Row) (T, error)
	log         zerolog.Logger
	metrics     *Metrics
}

// List returns one window of rows whose search field contains text,
// ignoring case, together with the exact number of matching rows.
func (t *Table[T]) List(ctx context.Context, offset, limit int, text string) Result[[]T] {
	start := time.Now()
	res, err := t.records.Select(ctx, store.Select{
		Table:   t.name,
		Filters: []store.Filter{store.Contains(t.searchField, text)},
		Range:   &store.Range{Offset: offset, Limit: limit},
		Count:   true,
		OrderBy: t.orderBy,
	})
	out := t.rows("list", start, res, err)
	if out.Success {
		out.TotalCount = res.Count
	}
	return out
}

// ListAll returns every row. It feeds pickers and public pages.
func (t *Table[T]) ListAll(ctx context.Context) Result[[]T] {
	start := time.Now()
	res, err := t.records.Select(ctx, store.Select{Table: t.name, OrderBy: t.orderBy})
	out := t.rows("list_all", start, res, err)
	if out.Success {
		out.TotalCount = len(out.Data)
	}
	return out
}

// ListBy returns every row whose field equals value.
func (t *Table[T]) ListBy(ctx context.Context, field, value string) Result[[]T] {
	start := time.Now()
	res, err := t.records.Select(ctx, store.Select{
		Table:   t.name,
		Filters: []store.Filter{store.Eq(field, value)},
		OrderBy: t.orderBy,
	})
	out := t.rows("list_by", start, res, err)
	if out.Success {
		out.TotalCount = len(out.Data)
	}
	return out
}

func (t *Table[T]) Get(ctx context.Context, id string) Result[T] {
	start := time.Now()
	res, err := t.records.Select(ctx, store.Select{Table: t.name, Filters: []store.Filter{store.Eq("id", id)}})
	if err == nil && len(res.Rows) == 0 {
		err = store.ErrNotFound
	}
	var v T
	if err == nil {
		v, err = t.decode(res.Rows[0])
	}
	if err != nil {
		t.logFailure("get", start, err)
		return Result[T]{}
	}
	t.metrics.observe(t.name, "get", start, true)
	return ok(v)
}

// Create inserts v and returns the identifier the store assigned.
func (t *Table[T]) Create(ctx context.Context, v T) Result[string] {
	start := time.Now()
	rows, err := t.records.Insert(ctx, t.name, t.encode(v))
	return t.identified("create", start, rows, err)
}

func (t *Table[T]) Update(ctx context.Context, v T, id string) Result[string] {
	start := time.Now()
	rows, err := t.records.Update(ctx, t.name, t.encode(v), store.Eq("id", id))
	return t.identified("update", start, rows, err)
}

func (t *Table[T]) Delete(ctx context.Context, id string) Result[struct{}] {
	start := time.Now()
	if err := t.records.Delete(ctx, t.name, store.Eq("id", id)); err != nil {
		return t.failNone("delete", start, err)
	}
	t.metrics.observe(t.name, "delete", start, true)
	return ok(struct{}{})
}

func (t *Table[T]) rows(op string, start time.Time, res store.Result, err error) Result[[]T] {
	if err != nil {
		return t.failList(op, start, err)
	}
	if res.Rows == nil {
		return t.failList(op, start, errNoData)
	}
	out := make([]T, 0, len(res.Rows))
	for _, row := range res.Rows {
		v, err := t.decode(row)
		if err != nil {
			return t.failList(op, start, err)
		}
		out = append(out, v)
	}
	t.metrics.observe(t.name, op, start, true)
	return ok(out)
}

func (t *Table[T]) identified(op string, start time.Time, rows []store.Row, err error) Result[string] {
	if err == nil && len(rows) == 0 {
		err = errNoData
	}
	var id string
	if err == nil {
		id, err = cast.ToStringE(rows[0]["id"])
	}
	if err == nil && id == "" {
		err = errNoData
	}
	if err != nil {
		t.logFailure(op, start, err)
		return Result[string]{}
	}
	t.metrics.observe(t.name, op, start, true)
	return ok(id)
}

func (t *Table[T]) failList(op string, start time.Time, err error) Result[[]T] {
	t.logFailure(op, start, err)
	return Result[[]T]{}
}

func (t *Table[T]) failNone(op string, start time.Time, err error) Result[struct{}] {
	t.logFailure(op, start, err)
	return Result[struct{}]{}
}

func (t *Table[T]) logFailure(op string, start time.Time, err error) {
	t.metrics.observe(t.name, op, start, false)
	t.log.Warn().Str("table", t.name).Str("op", op).Err(err).Msg("remote call failed")
}

// Images stores one image per record, keyed by the record id.
type Images struct {
	blobs       store.BlobStore
	bucket      string
	contentType string
	log         zerolog.Logger
	metrics     *Metrics
}

func (i *Images) Add(ctx context.Context, id string, data []byte) Result[struct{}] {
	start := time.Now()
	if err := i.blobs.Upload(ctx, i.bucket, id, data, i.contentType); err != nil {
		return i.fail("image_add", start, id, err)
	}
	i.metrics.observe(i.bucket, "image_add", start, true)
	return ok(struct{}{})
}

func (i *Images) Delete(ctx context.Context, id string) Result[struct{}] {
	start := time.Now()
	if err := i.blobs.Remove(ctx, i.bucket, []string{id}); err != nil {
		return i.fail("image_delete", start, id, err)
	}
	i.metrics.observe(i.bucket, "image_delete", start, true)
	return ok(struct{}{})
}

func (i *Images) URL(id string) string {
	return i.blobs.URL(i.bucket, id)
}

func (i *Images) fail(op string, start time.Time, id string, err error) Result[struct{}] {
	i.metrics.observe(i.bucket, op, start, false)
	i.log.Warn().Str("bucket", i.bucket).Str("op", op).Str("key", id).Err(err).Msg("remote call failed")
	return Result[struct{}]{}
}
