package editor

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/lehmann314159/recipes/internal/gateway"
	"github.com/lehmann314159/recipes/internal/models"
	"github.com/lehmann314159/recipes/internal/relay"
)

func ValidateCategory(c models.Category) Validation {
	return Required(map[string]string{"label": c.Label})
}

func ValidateIngredient(i models.Ingredient) Validation {
	return Required(map[string]string{"label": i.Label})
}

// ValidateRecipe requires a name and a category. Time and people are
// optional.
func ValidateRecipe(r models.Recipe) Validation {
	return Required(map[string]string{"name": r.Name, "category_id": r.CategoryID})
}

type Collection[T any] interface {
	ListBy(ctx context.Context, field, value string) gateway.Result[[]T]
	Create(ctx context.Context, v T) gateway.Result[string]
	Update(ctx context.Context, v T, id string) gateway.Result[string]
	Delete(ctx context.Context, id string) gateway.Result[struct{}]
}

type Lister[T any] interface {
	ListAll(ctx context.Context) gateway.Result[[]T]
}

// IngredientDraft is the add-ingredient sub-form of a recipe.
type IngredientDraft struct {
	IngredientID string
	Quantity     string
}

// StepDraft is the add-step sub-form of a recipe.
type StepDraft struct {
	Text string
}

// Nested edits the ingredients and procedure of an existing recipe. Each
// change is persisted immediately and followed by a reload of the affected
// collection.
type Nested struct {
	links       Collection[models.RecipeIngredient]
	steps       Collection[models.ProcedureStep]
	ingredients Lister[models.Ingredient]
	log         zerolog.Logger
}

func NewNested(links Collection[models.RecipeIngredient], steps Collection[models.ProcedureStep], ingredients Lister[models.Ingredient], log zerolog.Logger) *Nested {
	return &Nested{
		links:       links,
		steps:       steps,
		ingredients: ingredients,
		log:         log.With().Str("component", "editor").Str("entity", "recipe").Logger(),
	}
}

var errLoad = errors.New("load failed")

// LoadChildren fills r.Ingredients and r.Steps, reading links, ingredient
// labels and steps concurrently.
func (n *Nested) LoadChildren(ctx context.Context, r *models.Recipe) bool {
	done := relay.FromContext(ctx).Begin()
	defer done()

	var (
		links       []models.RecipeIngredient
		steps       []models.ProcedureStep
		ingredients []models.Ingredient
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		res := n.links.ListBy(gctx, "recipe_id", r.ID)
		links = res.Data
		return okOr(res.Success)
	})
	g.Go(func() error {
		res := n.ingredients.ListAll(gctx)
		ingredients = res.Data
		return okOr(res.Success)
	})
	g.Go(func() error {
		res := n.steps.ListBy(gctx, "recipe_id", r.ID)
		steps = res.Data
		return okOr(res.Success)
	})
	if err := g.Wait(); err != nil {
		relay.FromContext(ctx).Notify(relay.Error, msgIngredientsReload)
		return false
	}
	r.Ingredients = withLabels(links, ingredients)
	r.Steps = steps
	return true
}

func (n *Nested) AddIngredient(ctx context.Context, r *models.Recipe, in *IngredientDraft) Outcome {
	invalid := Required(map[string]string{"ingredient_id": in.IngredientID, "quantity": in.Quantity})
	if len(invalid) > 0 {
		return Outcome{Kind: Invalid, Level: relay.Warning, Invalid: invalid}
	}
	for _, link := range r.Ingredients {
		if link.IngredientID == in.IngredientID {
			return n.report(ctx, Outcome{
				Kind:    Invalid,
				Level:   relay.Warning,
				Message: msgIngredientExists,
				Invalid: Validation{"ingredient_id": msgIngredientExists},
			})
		}
	}

	done := relay.FromContext(ctx).Begin()
	defer done()

	res := n.links.Create(ctx, models.RecipeIngredient{
		RecipeID:     r.ID,
		IngredientID: in.IngredientID,
		Quantity:     strings.TrimSpace(in.Quantity),
	})
	if !res.Success {
		return n.report(ctx, failure(Transport, "ingredient_create", msgIngredientAddFailed))
	}
	*in = IngredientDraft{}
	return n.report(ctx, n.reloadIngredients(ctx, r, ok(msgIngredientAdded, res.Data)))
}

func (n *Nested) RemoveIngredient(ctx context.Context, r *models.Recipe, linkID string) Outcome {
	done := relay.FromContext(ctx).Begin()
	defer done()

	if !n.links.Delete(ctx, linkID).Success {
		return n.report(ctx, failure(Transport, "ingredient_delete", msgIngredientRmFailed))
	}
	return n.report(ctx, n.reloadIngredients(ctx, r, ok(msgIngredientRemoved, linkID)))
}

// AddStep appends a step at the end of the procedure.
func (n *Nested) AddStep(ctx context.Context, r *models.Recipe, sd *StepDraft) Outcome {
	if isBlank(sd.Text) {
		return Outcome{Kind: Invalid, Level: relay.Warning, Invalid: Validation{"step": RequiredField}}
	}

	done := relay.FromContext(ctx).Begin()
	defer done()

	position := 0
	for _, s := range r.Steps {
		if s.Position >= position {
			position = s.Position + 1
		}
	}
	res := n.steps.Create(ctx, models.ProcedureStep{RecipeID: r.ID, Step: strings.TrimSpace(sd.Text), Position: position})
	if !res.Success {
		return n.report(ctx, failure(Transport, "step_create", msgStepAddFailed))
	}
	*sd = StepDraft{}
	return n.report(ctx, n.reloadSteps(ctx, r, ok(msgStepAdded, res.Data)))
}

func (n *Nested) RemoveStep(ctx context.Context, r *models.Recipe, stepID string) Outcome {
	done := relay.FromContext(ctx).Begin()
	defer done()

	if !n.steps.Delete(ctx, stepID).Success {
		return n.report(ctx, failure(Transport, "step_delete", msgStepRmFailed))
	}
	return n.report(ctx, n.reloadSteps(ctx, r, ok(msgStepRemoved, stepID)))
}

// MoveStep moves the step at index from to index to and persists the new
// order by rewriting the position of every step that changed place.
func (n *Nested) MoveStep(ctx context.Context, r *models.Recipe, from, to int) Outcome {
	if from < 0 || from >= len(r.Steps) || to < 0 || to >= len(r.Steps) {
		return n.report(ctx, Outcome{Kind: Invalid, Level: relay.Warning, Message: msgInvalidMove})
	}
	if from == to {
		return Outcome{Kind: Success, ID: r.ID}
	}

	done := relay.FromContext(ctx).Begin()
	defer done()

	ordered := append([]models.ProcedureStep(nil), r.Steps...)
	moved := ordered[from]
	ordered = append(ordered[:from], ordered[from+1:]...)
	ordered = append(ordered[:to], append([]models.ProcedureStep{moved}, ordered[to:]...)...)

	written := 0
	for i, s := range ordered {
		if s.Position == i {
			continue
		}
		s.Position = i
		if !n.steps.Update(ctx, s, s.ID).Success {
			kind := Transport
			if written > 0 {
				kind = Partial
			}
			out := failure(kind, "step_update", msgStepsMoveFailed)
			if written > 0 {
				out = n.reloadSteps(ctx, r, out)
			}
			return n.report(ctx, out)
		}
		written++
	}
	return n.report(ctx, n.reloadSteps(ctx, r, ok(msgStepsMoved, r.ID)))
}

func (n *Nested) reloadIngredients(ctx context.Context, r *models.Recipe, out Outcome) Outcome {
	var (
		links       []models.RecipeIngredient
		ingredients []models.Ingredient
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		res := n.links.ListBy(gctx, "recipe_id", r.ID)
		links = res.Data
		return okOr(res.Success)
	})
	g.Go(func() error {
		res := n.ingredients.ListAll(gctx)
		ingredients = res.Data
		return okOr(res.Success)
	})
	if err := g.Wait(); err != nil {
		return reloadFailed(out, msgIngredientsReload)
	}
	r.Ingredients = withLabels(links, ingredients)
	return out
}

func (n *Nested) reloadSteps(ctx context.Context, r *models.Recipe, out Outcome) Outcome {
	res := n.steps.ListBy(ctx, "recipe_id", r.ID)
	if !res.Success {
		return reloadFailed(out, msgStepsReload)
	}
	r.Steps = res.Data
	return out
}

func (n *Nested) report(ctx context.Context, out Outcome) Outcome {
	if out.Message != "" {
		relay.FromContext(ctx).Notify(out.Level, out.Message)
	}
	if !out.OK() {
		n.log.Info().Str("step", out.Step).Str("outcome", out.Kind.String()).Msg(out.Message)
	}
	return out
}

// ToggleFavourite flips the favourite flag of a recipe and returns the
// stored copy.
func ToggleFavourite(ctx context.Context, recipes Records[models.Recipe], id string) (models.Recipe, Outcome) {
	done := relay.FromContext(ctx).Begin()
	defer done()

	fail := func(step string) (models.Recipe, Outcome) {
		out := failure(Transport, step, msgFavouriteFailed)
		relay.FromContext(ctx).Notify(out.Level, out.Message)
		return models.Recipe{}, out
	}
	got := recipes.Get(ctx, id)
	if !got.Success {
		return fail("get")
	}
	r := got.Data
	r.IsFavourite = !r.IsFavourite
	if !recipes.Update(ctx, r, id).Success {
		return fail("update")
	}
	if fresh := recipes.Get(ctx, id); fresh.Success {
		r = fresh.Data
	}
	return r, Outcome{Kind: Success, ID: id}
}

// withLabels copies the display label and icon of each linked ingredient.
func withLabels(links []models.RecipeIngredient, ingredients []models.Ingredient) []models.RecipeIngredient {
	byID := make(map[string]models.Ingredient, len(ingredients))
	for _, i := range ingredients {
		byID[i.ID] = i
	}
	out := make([]models.RecipeIngredient, len(links))
	for i, link := range links {
		if ing, found := byID[link.IngredientID]; found {
			link.Label = ing.Label
			link.Icon = ing.Icon
		}
		out[i] = link
	}
	return out
}

// reloadFailed turns a successful change whose collection could not be
// reloaded into a partial outcome.
func reloadFailed(out Outcome, message string) Outcome {
	if !out.OK() {
		return out
	}
	return Outcome{Kind: Partial, Step: "reload", Level: relay.Warning, Message: message, ID: out.ID}
}

func ok(message, id string) Outcome {
	return Outcome{Kind: Success, Level: relay.Success, Message: message, ID: id}
}

func okOr(success bool) error {
	if !success {
		return errLoad
	}
	return nil
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
