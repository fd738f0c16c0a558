// Package relay carries the busy flag and the user-facing notifications for
// one unit of work. The busy flag is reference counted, so overlapping
// operations keep it raised until the last one finishes.
package relay

import (
	"context"
	"sync"
)

type Level string

const (
	Success Level = "success"
	Warning Level = "warning"
	Error   Level = "error"
)

type Notification struct {
	Level   Level
	Message string
}

type Relay struct {
	mu       sync.Mutex
	inFlight int
	notes    []Notification
}

func New() *Relay {
	return &Relay{}
}

// Begin marks one operation as outstanding. The returned func ends it;
// calling it more than once has no further effect.
func (r *Relay) Begin() func() {
	r.mu.Lock()
	r.inFlight++
	r.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			r.inFlight--
			r.mu.Unlock()
		})
	}
}

func (r *Relay) Busy() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.inFlight > 0
}

func (r *Relay) Notify(level Level, message string) {
	r.mu.Lock()
	r.notes = append(r.notes, Notification{Level: level, Message: message})
	r.mu.Unlock()
}

// Last returns the most recent notification.
func (r *Relay) Last() (Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notes) == 0 {
		return Notification{}, false
	}
	return r.notes[len(r.notes)-1], true
}

// Drain returns every pending notification and clears them.
func (r *Relay) Drain() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	notes := r.notes
	r.notes = nil
	return notes
}

type ctxKey struct{}

// NewContext returns a copy of ctx carrying r.
func NewContext(ctx context.Context, r *Relay) context.Context {
	return context.WithValue(ctx, ctxKey{}, r)
}

// FromContext returns the relay carried by ctx. Without one, it returns a
// fresh relay nobody reads.
func FromContext(ctx context.Context) *Relay {
	if r, ok := ctx.Value(ctxKey{}).(*Relay); ok && r != nil {
		return r
	}
	return New()
}
