package service

import (
	"context"
	"testing"

	"github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rogue-Bear-Innovations/foodgram-back/internal/db"
)

func TestRecipeCreate(t *testing.T) {
	f := newFixture(t)
	author := f.user(t, "author")
	breakfast := f.tag(t, "breakfast")
	lunch := f.tag(t, "lunch")
	oats := f.ingredient(t, "oats", "g")
	milk := f.ingredient(t, "milk", "ml")

	view := f.recipe(t, author, "Porridge", []uint64{lunch.ID, breakfast.ID},
		IngredientAmount{ID: oats.ID, Amount: 80},
		IngredientAmount{ID: milk.ID, Amount: 200},
	)

	r := view.Recipe
	assert.Equal(t, "Porridge", r.Name)
	assert.Equal(t, author.ID, r.Author.ID)
	require.Len(t, f.images.saved, 1)
	assert.Equal(t, f.images.saved[0], r.Image)

	require.Len(t, r.Tags, 2)
	assert.Equal(t, breakfast.ID, r.Tags[0].ID)

	require.Len(t, r.Ingredients, 2)
	assert.Equal(t, "oats", r.Ingredients[0].Ingredient.Name)
	assert.Equal(t, 80, r.Ingredients[0].Amount)
	assert.Equal(t, "milk", r.Ingredients[1].Ingredient.Name)
}

func TestRecipeCreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := f.user(t, "author")
	tag := f.tag(t, "dinner")
	beef := f.ingredient(t, "beef", "g")

	valid := func() RecipeInput {
		return RecipeInput{
			Name:        "Stew",
			Text:        "Simmer.",
			Image:       "data:image/png;base64,AAAA",
			CookingTime: 120,
			Tags:        []uint64{tag.ID},
			Ingredients: []IngredientAmount{{ID: beef.ID, Amount: 500}},
		}
	}

	tests := []struct {
		name   string
		mutate func(in *RecipeInput)
		field  string
	}{
		{"missing name", func(in *RecipeInput) { in.Name = "" }, "name"},
		{"missing image", func(in *RecipeInput) { in.Image = "" }, "image"},
		{"broken image", func(in *RecipeInput) { in.Image = "broken" }, "image"},
		{"zero cooking time", func(in *RecipeInput) { in.CookingTime = 0 }, "cooking_time"},
		{"cooking time too long", func(in *RecipeInput) { in.CookingTime = 32001 }, "cooking_time"},
		{"no tags", func(in *RecipeInput) { in.Tags = nil }, "tags"},
		{"repeated tag", func(in *RecipeInput) { in.Tags = []uint64{tag.ID, tag.ID} }, "tags"},
		{"unknown tag", func(in *RecipeInput) { in.Tags = []uint64{404} }, "tags"},
		{"no ingredients", func(in *RecipeInput) { in.Ingredients = nil }, "ingredients"},
		{"zero amount", func(in *RecipeInput) { in.Ingredients[0].Amount = 0 }, "ingredients"},
		{"repeated ingredient", func(in *RecipeInput) {
			in.Ingredients = append(in.Ingredients, IngredientAmount{ID: beef.ID, Amount: 1})
		}, "ingredients"},
		{"unknown ingredient", func(in *RecipeInput) { in.Ingredients[0].ID = 404 }, "ingredients"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid()
			tt.mutate(&in)

			_, err := f.recipes.RecipeCreate(ctx, author, in)
			verr := &ValidationError{}
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.Contains(t, verr.Fields, tt.field)
		})
	}

	var count int64
	require.NoError(t, f.db.Model(&db.Recipe{}).Count(&count).Error)
	assert.Zero(t, count)

	_, err := f.recipes.RecipeCreate(ctx, nil, valid())
	assert.True(t, errors.Is(err, ErrUnauthorized))
}

func TestRecipeUpdateAndDeleteAreAuthorOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := f.user(t, "author")
	stranger := f.user(t, "stranger")
	tag := f.tag(t, "salad")
	tomato := f.ingredient(t, "tomato", "pcs")
	r := f.recipe(t, author, "Salad", []uint64{tag.ID}, IngredientAmount{ID: tomato.ID, Amount: 2})

	in := RecipeInput{
		Name:        "Greek salad",
		Text:        "Chop.",
		CookingTime: 10,
		Tags:        []uint64{tag.ID},
		Ingredients: []IngredientAmount{{ID: tomato.ID, Amount: 3}},
	}

	_, err := f.recipes.RecipeUpdate(ctx, stranger, r.Recipe.ID, in)
	assert.True(t, errors.Is(err, ErrForbidden))
	assert.True(t, errors.Is(f.recipes.RecipeDelete(ctx, stranger, r.Recipe.ID), ErrForbidden))

	_, err = f.recipes.RecipeUpdate(ctx, author, 404, in)
	assert.True(t, errors.Is(err, ErrNotFound))

	updated, err := f.recipes.RecipeUpdate(ctx, author, r.Recipe.ID, in)
	require.NoError(t, err)
	assert.Equal(t, "Greek salad", updated.Recipe.Name)
	assert.Equal(t, r.Recipe.Image, updated.Recipe.Image)
	require.Len(t, updated.Recipe.Ingredients, 1)
	assert.Equal(t, 3, updated.Recipe.Ingredients[0].Amount)

	require.NoError(t, f.recipes.RecipeDelete(ctx, author, r.Recipe.ID))
	assert.Contains(t, f.images.removed, r.Recipe.Image)

	_, err = f.recipes.RecipeGet(ctx, author, r.Recipe.ID)
	assert.True(t, errors.Is(err, ErrNotFound))

	var items int64
	require.NoError(t, f.db.Model(&db.RecipeIngredient{}).Count(&items).Error)
	assert.Zero(t, items)
}

func TestRecipeList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	breakfast := f.tag(t, "breakfast")
	dinner := f.tag(t, "dinner")
	egg := f.ingredient(t, "egg", "pcs")
	item := IngredientAmount{ID: egg.ID, Amount: 2}

	omelette := f.recipe(t, alice, "Omelette", []uint64{breakfast.ID}, item)
	f.recipe(t, alice, "Frittata", []uint64{dinner.ID}, item)
	shakshuka := f.recipe(t, bob, "Shakshuka", []uint64{breakfast.ID, dinner.ID}, item)

	_, err := f.memberships.Add(ctx, bob, omelette.Recipe.ID, db.KindFavorite)
	require.NoError(t, err)
	_, err = f.memberships.Add(ctx, bob, shakshuka.Recipe.ID, db.KindShoppingCart)
	require.NoError(t, err)

	names := func(p *Page[RecipeView]) []string {
		res := make([]string, len(p.Items))
		for i, v := range p.Items {
			res[i] = v.Recipe.Name
		}
		return res
	}

	tests := []struct {
		name   string
		viewer *db.User
		filter RecipeFilter
		want   []string
	}{
		{"all newest first", nil, RecipeFilter{}, []string{"Shakshuka", "Frittata", "Omelette"}},
		{"by author", nil, RecipeFilter{AuthorID: alice.ID}, []string{"Frittata", "Omelette"}},
		{"by tag", nil, RecipeFilter{TagSlugs: []string{"breakfast"}}, []string{"Shakshuka", "Omelette"}},
		{"any of tags", nil, RecipeFilter{TagSlugs: []string{"breakfast", "dinner"}}, []string{"Shakshuka", "Frittata", "Omelette"}},
		{"favorited", bob, RecipeFilter{IsFavorited: true}, []string{"Omelette"}},
		{"in cart", bob, RecipeFilter{IsInShoppingCart: true}, []string{"Shakshuka"}},
		{"flags ignored for anonymous", nil, RecipeFilter{IsFavorited: true}, []string{"Shakshuka", "Frittata", "Omelette"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := f.recipes.RecipeList(ctx, tt.viewer, tt.filter, PageParams{})
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(page))
			assert.EqualValues(t, len(tt.want), page.Count)
		})
	}

	page, err := f.recipes.RecipeList(ctx, bob, RecipeFilter{}, PageParams{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, page.Count)
	assert.Equal(t, []string{"Omelette"}, names(page))
	assert.True(t, page.Items[0].IsFavorited)
	assert.False(t, page.Items[0].IsInShoppingCart)
	assert.False(t, page.HasNext())
	assert.True(t, page.HasPrevious())
}

func TestRecipeConditions(t *testing.T) {
	viewer := &db.User{}
	viewer.ID = 7

	where, args, err := recipeConditions(viewer, RecipeFilter{TagSlugs: []string{"breakfast"}, IsFavorited: true}).ToSql()
	require.NoError(t, err)
	assert.Contains(t, where, "EXISTS (SELECT 1 FROM recipe_tags rt JOIN tags t ON t.id = rt.tag_id WHERE rt.recipe_id = recipes.id AND t.slug IN (?))")
	assert.Contains(t, where, "EXISTS (SELECT 1 FROM memberships m WHERE m.recipe_id = recipes.id AND m.kind = ? AND m.user_id = ?)")
	assert.Equal(t, []interface{}{"breakfast", "favorite", uint64(7)}, args)

	_, _, err = exists(squirrel.Select().From("recipes")).ToSql()
	assert.Error(t, err)
}
