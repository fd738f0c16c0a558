package gateway

import (
	"github.com/rs/zerolog"

	"github.com/lehmann314159/recipes/internal/models"
	"github.com/lehmann314159/recipes/internal/store"
)

const (
	DefaultBucket      = "images"
	DefaultContentType = "image/jpeg"
)

type Options struct {
	Bucket      string
	ContentType string
	Logger      zerolog.Logger
	Metrics     *Metrics
}

// Gateway holds one table per entity and the image bucket.
type Gateway struct {
	Categories        *Table[models.Category]
	Ingredients       *Table[models.Ingredient]
	Recipes           *Table[models.Recipe]
	RecipeIngredients *Table[models.RecipeIngredient]
	Steps             *Table[models.ProcedureStep]
	Images            *Images
}

func New(records store.RecordStore, blobs store.BlobStore, opts Options) *Gateway {
	if opts.Bucket == "" {
		opts.Bucket = DefaultBucket
	}
	if opts.ContentType == "" {
		opts.ContentType = DefaultContentType
	}
	log := opts.Logger.With().Str("component", "gateway").Logger()

	return &Gateway{
		Categories: &Table[models.Category]{
			name: "categories", searchField: "label", orderBy: "label",
			records: records, encode: encodeCategory, decode: decodeCategory,
			log: log, metrics: opts.Metrics,
		},
		Ingredients: &Table[models.Ingredient]{
			name: "ingredients", searchField: "label", orderBy: "label",
			records: records, encode: encodeIngredient, decode: decodeIngredient,
			log: log, metrics: opts.Metrics,
		},
		Recipes: &Table[models.Recipe]{
			name: "recipes", searchField: "name", orderBy: "name",
			records: records, encode: encodeRecipe, decode: decodeRecipe,
			log: log, metrics: opts.Metrics,
		},
		RecipeIngredients: &Table[models.RecipeIngredient]{
			name: "recipe_ingredients", searchField: "quantity",
			records: records, encode: encodeRecipeIngredient, decode: decodeRecipeIngredient,
			log: log, metrics: opts.Metrics,
		},
		Steps: &Table[models.ProcedureStep]{
			name: "procedures", searchField: "step", orderBy: "position",
			records: records, encode: encodeStep, decode: decodeStep,
			log: log, metrics: opts.Metrics,
		},
		Images: &Images{
			blobs: blobs, bucket: opts.Bucket, contentType: opts.ContentType,
			log: log, metrics: opts.Metrics,
		},
	}
}
