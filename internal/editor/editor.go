// Package editor saves and deletes a record together with its image and,
// for recipes, its ingredient and step collections. Every action is an
// ordered pipeline of gateway calls that stops at the first failed step and
// yields a single Outcome.
package editor

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/lehmann314159/recipes/internal/gateway"
	"github.com/lehmann314159/recipes/internal/relay"
)

type Kind int

const (
	Success Kind = iota
	// Invalid means the draft was rejected locally and nothing was sent.
	Invalid
	// Transport means the first remote step failed and nothing changed.
	Transport
	// Partial means an early step succeeded and a dependent one failed.
	Partial
	// Orphan means the record is gone but its image is still stored.
	Orphan
)

func (k Kind) String() string {
	switch k {
	case Success:
		return "success"
	case Invalid:
		return "invalid"
	case Transport:
		return "transport"
	case Partial:
		return "partial"
	case Orphan:
		return "orphan"
	}
	return "unknown"
}

// Validation maps a form field to its error marker.
type Validation map[string]string

type Outcome struct {
	Kind     Kind
	Step     string // failed step, empty on success
	Message  string
	Level    relay.Level
	ID       string
	Redirect string
	Invalid  Validation
}

func (o Outcome) OK() bool {
	return o.Kind == Success
}

type Records[T any] interface {
	Get(ctx context.Context, id string) gateway.Result[T]
	Create(ctx context.Context, v T) gateway.Result[string]
	Update(ctx context.Context, v T, id string) gateway.Result[string]
	Delete(ctx context.Context, id string) gateway.Result[struct{}]
}

type Images interface {
	Add(ctx context.Context, id string, data []byte) gateway.Result[struct{}]
	Delete(ctx context.Context, id string) gateway.Result[struct{}]
}

// Draft is a form being edited. An empty ID means the record does not
// exist yet.
type Draft[T any] struct {
	ID         string
	Fields     T
	Image      []byte
	HasImage   bool
	ImageDirty bool
}

// StageImage replaces the image on the next save.
func (d *Draft[T]) StageImage(data []byte) {
	d.Image = data
	d.ImageDirty = true
}

type Options[T any] struct {
	Entity    string
	Validate  func(T) Validation
	WithImage bool
	EditPath  func(id string) string
	Messages  Messages
}

type Editor[T any] struct {
	records Records[T]
	images  Images
	opts    Options[T]
	log     zerolog.Logger
}

// New returns an editor. images may be nil when opts.WithImage is false.
func New[T any](records Records[T], images Images, opts Options[T], log zerolog.Logger) *Editor[T] {
	return &Editor[T]{
		records: records,
		images:  images,
		opts:    opts,
		log:     log.With().Str("component", "editor").Str("entity", opts.Entity).Logger(),
	}
}

// Load fetches the record with id into a draft in edit mode.
func (e *Editor[T]) Load(ctx context.Context, id string) (Draft[T], Outcome) {
	done := relay.FromContext(ctx).Begin()
	defer done()

	res := e.records.Get(ctx, id)
	if !res.Success {
		return Draft[T]{}, e.report(ctx, failure(Transport, "get", e.opts.Messages.LoadFailed))
	}
	return Draft[T]{ID: id, Fields: res.Data, HasImage: e.opts.WithImage}, Outcome{Kind: Success, ID: id}
}

// Save validates d and writes it. On success, and when a new record exists
// but its image could not be stored, d is refreshed from the store.
func (e *Editor[T]) Save(ctx context.Context, d *Draft[T]) Outcome {
	if invalid := e.validate(d); len(invalid) > 0 {
		return Outcome{Kind: Invalid, Level: relay.Warning, Invalid: invalid}
	}

	done := relay.FromContext(ctx).Begin()
	defer done()

	if d.ID != "" {
		return e.report(ctx, e.update(ctx, d))
	}
	return e.report(ctx, e.create(ctx, d))
}

func (e *Editor[T]) update(ctx context.Context, d *Draft[T]) Outcome {
	id := d.ID
	m := e.opts.Messages
	steps := []step{{
		fail: failure(Transport, "update", m.UpdateFailed),
		run:  func(ctx context.Context) bool { return e.records.Update(ctx, d.Fields, id).Success },
	}}
	if e.opts.WithImage && d.ImageDirty {
		steps = append(steps,
			step{
				fail: failure(Partial, "image_delete", m.RemoveOldImageFailed),
				run:  func(ctx context.Context) bool { return e.images.Delete(ctx, id).Success },
			},
			step{
				fail: failure(Partial, "image_add", m.UpdateImageFailed),
				run:  func(ctx context.Context) bool { return e.images.Add(ctx, id, d.Image).Success },
			},
		)
	}

	if out, ok := run(ctx, steps); !ok {
		out.ID = id
		return out
	}
	e.refresh(ctx, d)
	return Outcome{Kind: Success, Level: relay.Success, Message: m.Updated, ID: id}
}

func (e *Editor[T]) create(ctx context.Context, d *Draft[T]) Outcome {
	var id string
	m := e.opts.Messages
	steps := []step{{
		fail: failure(Transport, "create", m.CreateFailed),
		run: func(ctx context.Context) bool {
			res := e.records.Create(ctx, d.Fields)
			id = res.Data
			return res.Success
		},
	}}
	if e.opts.WithImage {
		steps = append(steps, step{
			fail: failure(Partial, "image_add", m.AddImageFailed),
			run:  func(ctx context.Context) bool { return e.images.Add(ctx, id, d.Image).Success },
		})
	}

	out, ok := run(ctx, steps)
	if id == "" {
		return out
	}
	// The record exists from here on, so the draft switches to edit mode.
	d.ID = id
	e.refresh(ctx, d)
	if !ok {
		d.HasImage = false
		out.ID = id
		return out
	}
	out = Outcome{Kind: Success, Level: relay.Success, Message: m.Created, ID: id}
	if e.opts.EditPath != nil {
		out.Redirect = e.opts.EditPath(id)
	}
	return out
}

// Delete removes the record and then its image.
func (e *Editor[T]) Delete(ctx context.Context, id string) Outcome {
	done := relay.FromContext(ctx).Begin()
	defer done()

	m := e.opts.Messages
	steps := []step{{
		fail: failure(Transport, "delete", m.DeleteFailed),
		run:  func(ctx context.Context) bool { return e.records.Delete(ctx, id).Success },
	}}
	if e.opts.WithImage {
		steps = append(steps, step{
			fail: Outcome{Kind: Orphan, Step: "image_delete", Level: relay.Warning, Message: m.OrphanImage},
			run:  func(ctx context.Context) bool { return e.images.Delete(ctx, id).Success },
		})
	}
	out, ok := run(ctx, steps)
	if ok {
		out = Outcome{Kind: Success, Level: relay.Success, Message: m.Deleted}
	}
	out.ID = id
	return e.report(ctx, out)
}

func (e *Editor[T]) validate(d *Draft[T]) Validation {
	invalid := Validation{}
	if e.opts.Validate != nil {
		for field, msg := range e.opts.Validate(d.Fields) {
			invalid[field] = msg
		}
	}
	if e.opts.WithImage && d.ID == "" && (!d.ImageDirty || len(d.Image) == 0) {
		invalid["image"] = RequiredField
	}
	return invalid
}

// refresh reloads d from the store. The fresh copy replaces local state,
// and the staged image is dropped once the store holds it.
func (e *Editor[T]) refresh(ctx context.Context, d *Draft[T]) {
	res := e.records.Get(ctx, d.ID)
	if !res.Success {
		e.log.Warn().Str("id", d.ID).Msg("could not refresh draft after save")
		return
	}
	d.Fields = res.Data
	d.Image = nil
	d.ImageDirty = false
	d.HasImage = e.opts.WithImage
}

func (e *Editor[T]) report(ctx context.Context, out Outcome) Outcome {
	if out.Message != "" {
		relay.FromContext(ctx).Notify(out.Level, out.Message)
	}
	if !out.OK() {
		e.log.Info().Str("step", out.Step).Str("outcome", out.Kind.String()).Str("id", out.ID).Msg(out.Message)
	}
	return out
}

type step struct {
	run  func(context.Context) bool
	fail Outcome
}

// run executes steps in order and returns the outcome of the first one that
// fails.
func run(ctx context.Context, steps []step) (Outcome, bool) {
	for _, s := range steps {
		if !s.run(ctx) {
			return s.fail, false
		}
	}
	return Outcome{Kind: Success}, true
}

func failure(kind Kind, step, message string) Outcome {
	return Outcome{Kind: kind, Step: step, Message: message, Level: relay.Error}
}

// Required marks every named field whose value is blank.
func Required(fields map[string]string) Validation {
	invalid := Validation{}
	for name, value := range fields {
		if isBlank(value) {
			invalid[name] = RequiredField
		}
	}
	return invalid
}
