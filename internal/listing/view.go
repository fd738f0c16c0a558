package listing

import (
	"context"
	"net/url"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/lehmann314159/recipes/internal/gateway"
	"github.com/lehmann314159/recipes/internal/relay"
)

type State int

const (
	Idle State = iota
	Fetching
	Error
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Fetching:
		return "fetching"
	case Error:
		return "error"
	}
	return "unknown"
}

// Fetcher loads one window of rows. gateway.Table.List satisfies it.
type Fetcher[T any] func(ctx context.Context, offset, limit int, text string) gateway.Result[[]T]

type Config[T any] struct {
	Fetch    Fetcher[T]
	Relay    *relay.Relay
	Params   Params
	PageSize int
	// Debounce delays filter fetches until typing pauses. Zero fetches on
	// every change.
	Debounce       time.Duration
	FailureMessage string
	// OnURL receives the query string after every state change.
	OnURL  func(url.Values)
	Logger zerolog.Logger
}

// View is the pagination state machine of one list.
type View[T any] struct {
	cfg       Config[T]
	debouncer *Debouncer

	mu     sync.Mutex
	state  State
	query  Query
	rows   []T
	loaded bool
	seq    uint64
}

func NewView[T any](cfg Config[T]) *View[T] {
	if cfg.Relay == nil {
		cfg.Relay = relay.New()
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	if cfg.FailureMessage == "" {
		cfg.FailureMessage = "Impossibile caricare i dati"
	}
	v := &View[T]{cfg: cfg, query: DefaultQuery(cfg.PageSize)}
	if cfg.Debounce > 0 {
		v.debouncer = NewDebouncer(cfg.Debounce)
	}
	return v
}

// Restore sets the query from URL values without fetching.
func (v *View[T]) Restore(values url.Values) {
	v.mu.Lock()
	v.query = ParseQuery(values, v.cfg.Params, v.cfg.PageSize)
	v.mu.Unlock()
}

// Mount restores the query from URL values and issues the first fetch.
func (v *View[T]) Mount(ctx context.Context, values url.Values) {
	v.Restore(values)
	v.load(ctx)
}

// FilterTextChange resets to the first page and fetches with the new
// filter, after the quiet period when the view is debounced.
func (v *View[T]) FilterTextChange(ctx context.Context, text string) {
	v.mu.Lock()
	v.query = v.query.WithFilter(text)
	v.mu.Unlock()
	v.publish()

	if v.debouncer == nil {
		v.load(ctx)
		return
	}
	v.debouncer.Trigger(func() { v.load(ctx) })
}

// NextPage reports false and does nothing when there is no next page.
func (v *View[T]) NextPage(ctx context.Context) bool {
	return v.step(ctx, Query.CanGoNext, Query.Next)
}

func (v *View[T]) PreviousPage(ctx context.Context) bool {
	return v.step(ctx, Query.CanGoPrevious, Query.Previous)
}

func (v *View[T]) Refresh(ctx context.Context) {
	v.load(ctx)
}

// Stop drops a pending debounced fetch.
func (v *View[T]) Stop() {
	if v.debouncer != nil {
		v.debouncer.Stop()
	}
}

func (v *View[T]) Query() Query {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.query
}

func (v *View[T]) Rows() []T {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]T(nil), v.rows...)
}

func (v *View[T]) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// Loaded reports whether any fetch has succeeded yet.
func (v *View[T]) Loaded() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.loaded
}

func (v *View[T]) Values() url.Values {
	return v.Query().Values(v.cfg.Params)
}

func (v *View[T]) step(ctx context.Context, allowed func(Query) bool, move func(Query) Query) bool {
	v.mu.Lock()
	if !allowed(v.query) {
		v.mu.Unlock()
		return false
	}
	v.query = move(v.query)
	v.mu.Unlock()
	v.publish()
	v.load(ctx)
	return true
}

// load fetches the current window. When the reported total no longer
// reaches the current page, it moves to the last page and fetches once more.
func (v *View[T]) load(ctx context.Context) {
	if v.fetchOnce(ctx, true) {
		v.publish()
		v.fetchOnce(ctx, false)
	}
}

func (v *View[T]) fetchOnce(ctx context.Context, mayClamp bool) (clamped bool) {
	v.mu.Lock()
	v.seq++
	seq := v.seq
	q := v.query
	v.state = Fetching
	v.mu.Unlock()

	done := v.cfg.Relay.Begin()
	res := v.cfg.Fetch(ctx, q.Offset, q.Limit, q.TextFilter)
	done()

	v.mu.Lock()
	defer v.mu.Unlock()
	if seq != v.seq {
		v.cfg.Logger.Debug().Uint64("seq", seq).Msg("discarding stale list response")
		return false
	}
	if !res.Success {
		v.state = Error
		v.cfg.Relay.Notify(relay.Error, v.cfg.FailureMessage)
		return false
	}

	v.rows = res.Data
	v.loaded = true
	v.query.Total = res.TotalCount
	v.state = Idle

	if pages := v.query.TotalPages(); mayClamp && pages >= 1 && v.query.Page > pages {
		v.query = v.query.AtPage(pages)
		return true
	}
	return false
}

func (v *View[T]) publish() {
	if v.cfg.OnURL != nil {
		v.cfg.OnURL(v.Values())
	}
}
