package editor

import (
	"context"
	"sort"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lehmann314159/recipes/internal/gateway"
	"github.com/lehmann314159/recipes/internal/models"
	"github.com/lehmann314159/recipes/internal/relay"
)

type fakeLinks struct {
	s    *script
	rows []models.RecipeIngredient
}

func (f *fakeLinks) ListBy(context.Context, string, string) gateway.Result[[]models.RecipeIngredient] {
	if !f.s.call("listLinks") {
		return gateway.Result[[]models.RecipeIngredient]{}
	}
	return gateway.Result[[]models.RecipeIngredient]{Success: true, Data: append([]models.RecipeIngredient{}, f.rows...)}
}

func (f *fakeLinks) Create(_ context.Context, v models.RecipeIngredient) gateway.Result[string] {
	if !f.s.call("createLink", v.IngredientID) {
		return gateway.Result[string]{}
	}
	v.ID = "l" + v.IngredientID
	f.rows = append(f.rows, v)
	return gateway.Result[string]{Success: true, Data: v.ID}
}

func (f *fakeLinks) Update(_ context.Context, _ models.RecipeIngredient, id string) gateway.Result[string] {
	return gateway.Result[string]{Success: f.s.call("updateLink", id), Data: id}
}

func (f *fakeLinks) Delete(_ context.Context, id string) gateway.Result[struct{}] {
	if !f.s.call("deleteLink", id) {
		return gateway.Result[struct{}]{}
	}
	for i, l := range f.rows {
		if l.ID == id {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			break
		}
	}
	return gateway.Result[struct{}]{Success: true}
}

type fakeSteps struct {
	s    *script
	rows map[string]models.ProcedureStep
}

func (f *fakeSteps) ListBy(context.Context, string, string) gateway.Result[[]models.ProcedureStep] {
	if !f.s.call("listSteps") {
		return gateway.Result[[]models.ProcedureStep]{}
	}
	out := make([]models.ProcedureStep, 0, len(f.rows))
	for _, st := range f.rows {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return gateway.Result[[]models.ProcedureStep]{Success: true, Data: out}
}

func (f *fakeSteps) Create(_ context.Context, v models.ProcedureStep) gateway.Result[string] {
	if !f.s.call("createStep", v.Position) {
		return gateway.Result[string]{}
	}
	v.ID = "s" + v.Step
	f.rows[v.ID] = v
	return gateway.Result[string]{Success: true, Data: v.ID}
}

func (f *fakeSteps) Update(_ context.Context, v models.ProcedureStep, id string) gateway.Result[string] {
	if !f.s.call("updateStep", id, v.Position) {
		return gateway.Result[string]{}
	}
	f.rows[id] = v
	return gateway.Result[string]{Success: true, Data: id}
}

func (f *fakeSteps) Delete(_ context.Context, id string) gateway.Result[struct{}] {
	if !f.s.call("deleteStep", id) {
		return gateway.Result[struct{}]{}
	}
	delete(f.rows, id)
	return gateway.Result[struct{}]{Success: true}
}

type fakePantry []models.Ingredient

func (p fakePantry) ListAll(context.Context) gateway.Result[[]models.Ingredient] {
	return gateway.Result[[]models.Ingredient]{Success: true, Data: p}
}

func newNested(s *script) (*Nested, *fakeLinks, *fakeSteps) {
	links := &fakeLinks{s: s}
	steps := &fakeSteps{s: s, rows: map[string]models.ProcedureStep{}}
	pantry := fakePantry{{ID: "i1", Label: "Guanciale", Icon: "🥓"}, {ID: "i2", Label: "Pecorino", Icon: "🧀"}}
	return NewNested(links, steps, pantry, zerolog.Nop()), links, steps
}

func TestAddIngredientRejectsDuplicate(t *testing.T) {
	s := &script{}
	n, _, _ := newNested(s)
	ctx, r := withRelay()

	recipe := &models.Recipe{ID: "r1", Ingredients: []models.RecipeIngredient{{ID: "l1", IngredientID: "i1", Quantity: "100 g"}}}
	in := &IngredientDraft{IngredientID: "i1", Quantity: "50 g"}
	out := n.AddIngredient(ctx, recipe, in)

	assert.Equal(t, Invalid, out.Kind)
	assert.Empty(t, s.calls)
	assert.Equal(t, IngredientDraft{IngredientID: "i1", Quantity: "50 g"}, *in)
	note, ok := r.Last()
	require.True(t, ok)
	assert.Equal(t, relay.Warning, note.Level)
	assert.Equal(t, msgIngredientExists, note.Message)
}

func TestAddIngredientPersistsAndReloads(t *testing.T) {
	s := &script{}
	n, _, _ := newNested(s)
	ctx, _ := withRelay()

	recipe := &models.Recipe{ID: "r1"}
	in := &IngredientDraft{IngredientID: "i2", Quantity: " 50 g "}
	out := n.AddIngredient(ctx, recipe, in)

	require.True(t, out.OK())
	assert.Equal(t, []string{"createLink", "listLinks"}, s.names())
	assert.Equal(t, IngredientDraft{}, *in)
	require.Len(t, recipe.Ingredients, 1)
	assert.Equal(t, "Pecorino", recipe.Ingredients[0].Label)
	assert.Equal(t, "50 g", recipe.Ingredients[0].Quantity)
}

func TestAddIngredientFailureKeepsDraft(t *testing.T) {
	s := &script{fail: map[string]bool{"createLink": true}}
	n, _, _ := newNested(s)
	ctx, r := withRelay()

	in := &IngredientDraft{IngredientID: "i2", Quantity: "50 g"}
	out := n.AddIngredient(ctx, &models.Recipe{ID: "r1"}, in)

	assert.Equal(t, Transport, out.Kind)
	assert.Equal(t, "i2", in.IngredientID)
	assert.Equal(t, []string{"createLink"}, s.names())
	assert.Len(t, r.Drain(), 1)
}

func TestAddIngredientRequiresFields(t *testing.T) {
	s := &script{}
	n, _, _ := newNested(s)
	out := n.AddIngredient(context.Background(), &models.Recipe{ID: "r1"}, &IngredientDraft{IngredientID: "i1"})

	assert.Equal(t, Invalid, out.Kind)
	assert.Equal(t, RequiredField, out.Invalid["quantity"])
	assert.Empty(t, s.calls)
}

func TestRemoveIngredient(t *testing.T) {
	s := &script{}
	n, links, _ := newNested(s)
	links.rows = []models.RecipeIngredient{{ID: "l1", RecipeID: "r1", IngredientID: "i1"}}
	ctx, _ := withRelay()

	recipe := &models.Recipe{ID: "r1", Ingredients: links.rows}
	out := n.RemoveIngredient(ctx, recipe, "l1")

	require.True(t, out.OK())
	assert.Empty(t, recipe.Ingredients)
}

func TestStepsAppendRemoveAndMove(t *testing.T) {
	s := &script{}
	n, _, _ := newNested(s)
	ctx, _ := withRelay()
	recipe := &models.Recipe{ID: "r1"}

	for _, text := range []string{"a", "b", "c"} {
		sd := &StepDraft{Text: text}
		require.True(t, n.AddStep(ctx, recipe, sd).OK())
		assert.Empty(t, sd.Text)
	}
	require.Len(t, recipe.Steps, 3)
	assert.Equal(t, 2, recipe.Steps[2].Position)

	s.calls = nil
	require.True(t, n.MoveStep(ctx, recipe, 2, 0).OK())
	assert.Equal(t, []string{"updateStep sc 0", "updateStep sa 1", "updateStep sb 2", "listSteps"}, s.calls)
	assert.Equal(t, []string{"c", "a", "b"}, stepTexts(recipe))

	require.True(t, n.RemoveStep(ctx, recipe, "sa").OK())
	assert.Equal(t, []string{"c", "b"}, stepTexts(recipe))
}

func TestMoveStepPartialFailure(t *testing.T) {
	s := &script{}
	n, _, steps := newNested(s)
	ctx, _ := withRelay()
	recipe := &models.Recipe{ID: "r1"}
	for _, text := range []string{"a", "b"} {
		require.True(t, n.AddStep(ctx, recipe, &StepDraft{Text: text}).OK())
	}

	s.calls = nil
	s.fail = map[string]bool{"updateStep": true}
	out := n.MoveStep(ctx, recipe, 0, 1)
	assert.Equal(t, Transport, out.Kind)
	assert.Equal(t, []string{"updateStep"}, s.names())
	assert.Len(t, steps.rows, 2)

	out = n.MoveStep(ctx, recipe, 0, 5)
	assert.Equal(t, Invalid, out.Kind)
}

func TestToggleFavourite(t *testing.T) {
	s := &script{}
	_, records := recipeEditor(s)
	ctx, _ := withRelay()

	r, out := ToggleFavourite(ctx, records, "r1")
	require.True(t, out.OK())
	assert.True(t, r.IsFavourite)
	assert.Equal(t, []string{"get", "update", "get"}, s.names())

	s.fail = map[string]bool{"update": true}
	_, out = ToggleFavourite(ctx, records, "r1")
	assert.Equal(t, Transport, out.Kind)
}

func TestLoadChildren(t *testing.T) {
	s := &script{}
	n, links, steps := newNested(s)
	links.rows = []models.RecipeIngredient{{ID: "l1", RecipeID: "r1", IngredientID: "i1", Quantity: "100 g"}}
	steps.rows["s1"] = models.ProcedureStep{ID: "s1", RecipeID: "r1", Step: "Rosolare", Position: 0}

	recipe := &models.Recipe{ID: "r1"}
	require.True(t, n.LoadChildren(context.Background(), recipe))
	require.Len(t, recipe.Ingredients, 1)
	assert.Equal(t, "Guanciale", recipe.Ingredients[0].Label)
	require.Len(t, recipe.Steps, 1)
}

func stepTexts(r *models.Recipe) []string {
	out := make([]string, len(r.Steps))
	for i, s := range r.Steps {
		out[i] = s.Step
	}
	return out
}
