// Package store defines what the application needs from the hosted data
// service: a tabular record store and a keyed blob store. The gateway is the
// only consumer; backends live in repository, blobstore and supabase.
package store

import (
	"context"
	"errors"
	"io"
	"strings"
)

var (
	ErrUnknownTable  = errors.New("unknown table")
	ErrUnknownColumn = errors.New("unknown column")
	ErrNotFound      = errors.New("not found")
)

// Row is one record as exchanged with a backend, keyed by column name.
type Row map[string]any

type Op string

const (
	OpEq    Op = "eq"
	OpILike Op = "ilike"
)

// Filter restricts a query. For OpILike, Value is a pattern using % and _
// as wildcards and a backslash as the escape character, e.g. "%anti%".
type Filter struct {
	Field string
	Op    Op
	Value any
}

func Eq(field string, value any) Filter {
	return Filter{Field: field, Op: OpEq, Value: value}
}

// Contains matches rows whose field contains text, ignoring case. Wildcards
// in text match literally.
func Contains(field, text string) Filter {
	return Filter{Field: field, Op: OpILike, Value: "%" + likeEscaper.Replace(text) + "%"}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// Range is a row window starting at Offset holding at most Limit rows.
type Range struct {
	Offset int
	Limit  int
}

// Last is the inclusive index of the final row in the window.
func (r Range) Last() int {
	return r.Offset + r.Limit - 1
}

type Select struct {
	Table   string
	Columns []string // empty means all
	Filters []Filter
	Range   *Range
	Count   bool
	OrderBy string
}

// Result holds a page of rows. Count is the exact number of rows matching
// the filters when requested, -1 otherwise. A nil Rows slice means the
// backend returned no data container.
type Result struct {
	Rows  []Row
	Count int
}

type RecordStore interface {
	Select(ctx context.Context, q Select) (Result, error)
	Insert(ctx context.Context, table string, row Row) ([]Row, error)
	Update(ctx context.Context, table string, patch Row, match Filter) ([]Row, error)
	Delete(ctx context.Context, table string, match Filter) error
}

// BlobStore holds binary objects keyed by owning record id. Removing a key
// that does not exist is not an error.
type BlobStore interface {
	Upload(ctx context.Context, bucket, key string, data []byte, contentType string) error
	Remove(ctx context.Context, bucket string, keys []string) error
	URL(bucket, key string) string
}

// BlobReader is implemented by blob stores the server must proxy itself.
type BlobReader interface {
	Open(ctx context.Context, bucket, key string) (io.ReadCloser, error)
}
