package editor

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lehmann314159/recipes/internal/gateway"
	"github.com/lehmann314159/recipes/internal/models"
	"github.com/lehmann314159/recipes/internal/relay"
)

// script records every gateway call in order and fails the ones listed.
type script struct {
	mu    sync.Mutex
	calls []string
	fail  map[string]bool
}

func (s *script) call(name string, args ...any) bool {
	entry := name
	for _, a := range args {
		entry += fmt.Sprintf(" %v", a)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, entry)
	return !s.fail[name]
}

func (s *script) names() []string {
	out := make([]string, len(s.calls))
	for i, c := range s.calls {
		out[i], _, _ = strings.Cut(c, " ")
	}
	return out
}

type fakeRecords[T any] struct {
	s      *script
	stored map[string]T
	nextID string
}

func (f *fakeRecords[T]) Get(_ context.Context, id string) gateway.Result[T] {
	if !f.s.call("get", id) {
		return gateway.Result[T]{}
	}
	v, found := f.stored[id]
	return gateway.Result[T]{Success: found, Data: v}
}

func (f *fakeRecords[T]) Create(_ context.Context, v T) gateway.Result[string] {
	if !f.s.call("create", v) {
		return gateway.Result[string]{}
	}
	f.stored[f.nextID] = v
	return gateway.Result[string]{Success: true, Data: f.nextID}
}

func (f *fakeRecords[T]) Update(_ context.Context, v T, id string) gateway.Result[string] {
	if !f.s.call("update", v, id) {
		return gateway.Result[string]{}
	}
	f.stored[id] = v
	return gateway.Result[string]{Success: true, Data: id}
}

func (f *fakeRecords[T]) Delete(_ context.Context, id string) gateway.Result[struct{}] {
	if !f.s.call("delete", id) {
		return gateway.Result[struct{}]{}
	}
	delete(f.stored, id)
	return gateway.Result[struct{}]{Success: true}
}

type fakeImages struct{ s *script }

func (f fakeImages) Add(_ context.Context, id string, data []byte) gateway.Result[struct{}] {
	return gateway.Result[struct{}]{Success: f.s.call("imageAdd", id, string(data))}
}

func (f fakeImages) Delete(_ context.Context, id string) gateway.Result[struct{}] {
	return gateway.Result[struct{}]{Success: f.s.call("imageDelete", id)}
}

func categoryEditor(s *script) (*Editor[models.Category], *fakeRecords[models.Category]) {
	records := &fakeRecords[models.Category]{s: s, stored: map[string]models.Category{}, nextID: "c1"}
	e := New[models.Category](records, fakeImages{s}, Options[models.Category]{
		Entity:    "category",
		Validate:  ValidateCategory,
		WithImage: true,
		EditPath:  func(id string) string { return "/admin/categories/" + id },
		Messages:  CategoryMessages,
	}, zerolog.Nop())
	return e, records
}

func recipeEditor(s *script) (*Editor[models.Recipe], *fakeRecords[models.Recipe]) {
	records := &fakeRecords[models.Recipe]{s: s, stored: map[string]models.Recipe{
		"r1": {ID: "r1", Name: "Carbonara", Time: "20 min", People: 4, CategoryID: "c1"},
	}}
	e := New[models.Recipe](records, fakeImages{s}, Options[models.Recipe]{
		Entity:    "recipe",
		Validate:  ValidateRecipe,
		WithImage: true,
		Messages:  RecipeMessages,
	}, zerolog.Nop())
	return e, records
}

func withRelay() (context.Context, *relay.Relay) {
	r := relay.New()
	return relay.NewContext(context.Background(), r), r
}

func TestCreateCategoryUploadsImageAndRedirects(t *testing.T) {
	s := &script{}
	e, records := categoryEditor(s)
	ctx, r := withRelay()

	d := &Draft[models.Category]{Fields: models.Category{Label: "Antipasti"}}
	d.StageImage([]byte("X"))
	out := e.Save(ctx, d)

	assert.Equal(t, Success, out.Kind)
	assert.Equal(t, "c1", out.ID)
	assert.Equal(t, "/admin/categories/c1", out.Redirect)
	assert.Equal(t, []string{"create", "imageAdd", "get"}, s.names())
	assert.Equal(t, "imageAdd c1 X", s.calls[1])
	assert.Equal(t, models.Category{Label: "Antipasti"}, records.stored["c1"])
	assert.Equal(t, "c1", d.ID)
	assert.False(t, d.ImageDirty)
	assert.True(t, d.HasImage)

	note, ok := r.Last()
	require.True(t, ok)
	assert.Equal(t, CategoryMessages.Created, note.Message)
	assert.Len(t, r.Drain(), 1)
	assert.False(t, r.Busy())
}

func TestCreateWithFailedImageKeepsRecord(t *testing.T) {
	s := &script{fail: map[string]bool{"imageAdd": true}}
	e, records := categoryEditor(s)
	ctx, r := withRelay()

	d := &Draft[models.Category]{Fields: models.Category{Label: "Primi"}}
	d.StageImage([]byte("X"))
	out := e.Save(ctx, d)

	assert.Equal(t, Partial, out.Kind)
	assert.Equal(t, "image_add", out.Step)
	assert.Equal(t, CategoryMessages.AddImageFailed, out.Message)
	assert.Empty(t, out.Redirect)
	assert.Equal(t, "c1", d.ID)
	assert.False(t, d.HasImage)
	assert.Contains(t, records.stored, "c1")
	assert.Len(t, r.Drain(), 1)
}

func TestCreateFailureStops(t *testing.T) {
	s := &script{fail: map[string]bool{"create": true}}
	e, _ := categoryEditor(s)
	ctx, _ := withRelay()

	d := &Draft[models.Category]{Fields: models.Category{Label: "Primi"}}
	d.StageImage([]byte("X"))
	out := e.Save(ctx, d)

	assert.Equal(t, Transport, out.Kind)
	assert.Equal(t, CategoryMessages.CreateFailed, out.Message)
	assert.Equal(t, []string{"create"}, s.names())
	assert.Empty(t, d.ID)
}

func TestInvalidDraftMakesNoCalls(t *testing.T) {
	s := &script{}
	e, _ := categoryEditor(s)
	ctx, r := withRelay()

	out := e.Save(ctx, &Draft[models.Category]{Fields: models.Category{Label: "  "}})

	assert.Equal(t, Invalid, out.Kind)
	assert.Equal(t, RequiredField, out.Invalid["label"])
	assert.Equal(t, RequiredField, out.Invalid["image"])
	assert.Empty(t, s.calls)
	assert.Empty(t, r.Drain())
}

func TestEditWithNewImageRunsInOrder(t *testing.T) {
	s := &script{}
	e, _ := recipeEditor(s)
	ctx, _ := withRelay()

	d, out := e.Load(ctx, "r1")
	require.True(t, out.OK())
	s.calls = nil

	d.Fields.Name = "Carbonara romana"
	d.StageImage([]byte("new"))
	out = e.Save(ctx, &d)

	assert.Equal(t, Success, out.Kind)
	assert.Equal(t, []string{"update", "imageDelete", "imageAdd", "get"}, s.names())
	assert.Equal(t, "Carbonara romana", d.Fields.Name)
}

func TestEditFailedUpdateTouchesNoImage(t *testing.T) {
	s := &script{fail: map[string]bool{"update": true}}
	e, _ := recipeEditor(s)
	ctx, _ := withRelay()

	d, _ := e.Load(ctx, "r1")
	s.calls = nil
	d.StageImage([]byte("new"))
	out := e.Save(ctx, &d)

	assert.Equal(t, Transport, out.Kind)
	assert.Equal(t, RecipeMessages.UpdateFailed, out.Message)
	assert.Equal(t, []string{"update"}, s.names())
}

func TestEditFailedOldImageRemovalStops(t *testing.T) {
	s := &script{fail: map[string]bool{"imageDelete": true}}
	e, _ := recipeEditor(s)
	ctx, r := withRelay()

	d := &Draft[models.Recipe]{ID: "r1", Fields: models.Recipe{Name: "Carbonara", Time: "20 min", People: 4, CategoryID: "c1"}, HasImage: true}
	d.StageImage([]byte("new"))
	out := e.Save(ctx, d)

	assert.Equal(t, Partial, out.Kind)
	assert.Equal(t, "image_delete", out.Step)
	assert.Equal(t, RecipeMessages.RemoveOldImageFailed, out.Message)
	assert.Equal(t, []string{"update", "imageDelete"}, s.names())
	assert.Len(t, r.Drain(), 1)
}

func TestEditFailedUpload(t *testing.T) {
	s := &script{fail: map[string]bool{"imageAdd": true}}
	e, _ := recipeEditor(s)
	ctx, _ := withRelay()

	d := &Draft[models.Recipe]{ID: "r1", Fields: models.Recipe{Name: "Carbonara", Time: "20 min", People: 4, CategoryID: "c1"}}
	d.StageImage([]byte("new"))
	out := e.Save(ctx, d)

	assert.Equal(t, Partial, out.Kind)
	assert.Equal(t, RecipeMessages.UpdateImageFailed, out.Message)
	assert.Equal(t, []string{"update", "imageDelete", "imageAdd"}, s.names())
}

func TestEditWithoutNewImageSkipsImage(t *testing.T) {
	s := &script{}
	e, _ := recipeEditor(s)
	ctx, _ := withRelay()

	d := &Draft[models.Recipe]{ID: "r1", Fields: models.Recipe{Name: "Amatriciana", Time: "30 min", People: 2, CategoryID: "c1"}}
	out := e.Save(ctx, d)

	assert.True(t, out.OK())
	assert.Equal(t, []string{"update", "get"}, s.names())
}

func TestIngredientHasNoImageSteps(t *testing.T) {
	s := &script{}
	records := &fakeRecords[models.Ingredient]{s: s, stored: map[string]models.Ingredient{}, nextID: "i1"}
	e := New[models.Ingredient](records, nil, Options[models.Ingredient]{
		Entity:   "ingredient",
		Validate: ValidateIngredient,
		Messages: IngredientMessages,
	}, zerolog.Nop())
	ctx, _ := withRelay()

	out := e.Save(ctx, &Draft[models.Ingredient]{Fields: models.Ingredient{Label: "Guanciale"}})
	assert.True(t, out.OK())
	out = e.Delete(ctx, "i1")
	assert.True(t, out.OK())
	assert.Equal(t, []string{"create", "get", "delete"}, s.names())
}

func TestDeleteReportsOrphanImage(t *testing.T) {
	s := &script{fail: map[string]bool{"imageDelete": true}}
	e, records := recipeEditor(s)
	ctx, r := withRelay()

	out := e.Delete(ctx, "r1")

	assert.Equal(t, Orphan, out.Kind)
	assert.Equal(t, relay.Warning, out.Level)
	assert.Equal(t, RecipeMessages.OrphanImage, out.Message)
	assert.NotContains(t, records.stored, "r1")
	assert.Len(t, r.Drain(), 1)
}

func TestDeleteFailureLeavesImage(t *testing.T) {
	s := &script{fail: map[string]bool{"delete": true}}
	e, _ := recipeEditor(s)
	ctx, _ := withRelay()

	out := e.Delete(ctx, "r1")

	assert.Equal(t, Transport, out.Kind)
	assert.Equal(t, []string{"delete"}, s.names())
}

func TestLoadFailureNotifies(t *testing.T) {
	s := &script{fail: map[string]bool{"get": true}}
	e, _ := recipeEditor(s)
	ctx, r := withRelay()

	_, out := e.Load(ctx, "r1")
	assert.Equal(t, Transport, out.Kind)
	note, ok := r.Last()
	require.True(t, ok)
	assert.Equal(t, RecipeMessages.LoadFailed, note.Message)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "success", Success.String())
	assert.Equal(t, "orphan", Orphan.String())
	assert.Equal(t, "unknown", Kind(42).String())
	assert.Equal(t, "unknown", Kind(-1).String())
}

func TestRecipeNeedsNameAndCategory(t *testing.T) {
	s := &script{}
	e, records := recipeEditor(s)
	records.nextID = "r2"
	ctx, _ := withRelay()

	out := e.Save(ctx, &Draft[models.Recipe]{Fields: models.Recipe{Name: "Carbonara"}})
	assert.Equal(t, Invalid, out.Kind)
	assert.Equal(t, Validation{"category_id": RequiredField, "image": RequiredField}, out.Invalid)
	assert.Empty(t, s.calls)

	d := &Draft[models.Recipe]{Fields: models.Recipe{Name: "Carbonara", CategoryID: "c1"}}
	d.StageImage([]byte("jpeg"))
	out = e.Save(ctx, d)
	assert.Equal(t, Success, out.Kind)
	assert.Equal(t, "r2", out.ID)
}
