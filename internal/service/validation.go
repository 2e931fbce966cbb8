package service

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator"

	"github.com/Rogue-Bear-Innovations/foodgram-back/internal/config"
)

type (
	IngredientAmount struct {
		ID     uint64 `json:"id" validate:"required"`
		Amount int    `json:"amount" validate:"ingredient_amount"`
	}

	RecipeInput struct {
		Name        string             `json:"name" validate:"required,max=200"`
		Text        string             `json:"text" validate:"required"`
		Image       string             `json:"image"`
		CookingTime int                `json:"cooking_time" validate:"cooking_time"`
		Tags        []uint64           `json:"tags" validate:"required,min=1"`
		Ingredients []IngredientAmount `json:"ingredients" validate:"required,min=1,dive"`
	}

	recipeValidator struct {
		v   *validator.Validate
		cfg *config.Config
	}
)

func newRecipeValidator(cfg *config.Config) *recipeValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("cooking_time", func(fl validator.FieldLevel) bool {
		n := int(fl.Field().Int())
		return n >= cfg.MinCookingTime && n <= cfg.MaxCookingTime
	})
	_ = v.RegisterValidation("ingredient_amount", func(fl validator.FieldLevel) bool {
		n := int(fl.Field().Int())
		return n >= cfg.MinAmount && n <= cfg.MaxAmount
	})
	return &recipeValidator{v: v, cfg: cfg}
}

// Validate checks the payload shape and the configured bounds. Reference checks against the
// store happen separately.
func (rv *recipeValidator) Validate(in *RecipeInput, requireImage bool) *ValidationError {
	verr := &ValidationError{}

	if err := rv.v.Struct(in); err != nil {
		if fieldErrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range fieldErrs {
				verr.Add(topField(fe.Namespace()), rv.message(fe))
			}
		} else {
			verr.Add("non_field_errors", err.Error())
		}
	}

	if requireImage && in.Image == "" {
		verr.Add("image", "This field is required.")
	}

	seenIngredients := make(map[uint64]struct{}, len(in.Ingredients))
	for _, ia := range in.Ingredients {
		if _, ok := seenIngredients[ia.ID]; ok {
			verr.Add("ingredients", "Ingredients must be unique.")
			break
		}
		seenIngredients[ia.ID] = struct{}{}
	}

	seenTags := make(map[uint64]struct{}, len(in.Tags))
	for _, id := range in.Tags {
		if _, ok := seenTags[id]; ok {
			verr.Add("tags", "Tags must be unique.")
			break
		}
		seenTags[id] = struct{}{}
	}

	return verr
}

func (rv *recipeValidator) message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "min":
		return "This field is required."
	case "max":
		return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
	case "cooking_time":
		return fmt.Sprintf("Cooking time must be between %d and %d.", rv.cfg.MinCookingTime, rv.cfg.MaxCookingTime)
	case "ingredient_amount":
		return fmt.Sprintf("Amount must be between %d and %d.", rv.cfg.MinAmount, rv.cfg.MaxAmount)
	}
	return fmt.Sprintf("Failed on the '%s' rule.", fe.Tag())
}

// topField turns "RecipeInput.ingredients[0].amount" into "ingredients".
func topField(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		namespace = namespace[i+1:]
	}
	if i := strings.IndexAny(namespace, ".["); i >= 0 {
		namespace = namespace[:i]
	}
	return namespace
}
