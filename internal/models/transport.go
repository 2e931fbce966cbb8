package models

import (
	"github.com/Rogue-Bear-Innovations/foodgram-back/internal/db"
	"github.com/Rogue-Bear-Innovations/foodgram-back/internal/service"
)

type RegisterReq struct {
	Email     string `json:"email" validate:"required,email,max=254"`
	Username  string `json:"username" validate:"required,max=150,username"`
	FirstName string `json:"first_name" validate:"required,max=150"`
	LastName  string `json:"last_name" validate:"required,max=150"`
	Password  string `json:"password" validate:"required,max=72"`
}

type LoginReq struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type SetPasswordReq struct {
	NewPassword     string `json:"new_password" validate:"required,max=72"`
	CurrentPassword string `json:"current_password" validate:"required"`
}

type TokenResp struct {
	AuthToken string `json:"auth_token"`
}

type UserCreatedResp struct {
	ID        uint64 `json:"id"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type UserResp struct {
	ID           uint64 `json:"id"`
	Email        string `json:"email"`
	Username     string `json:"username"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	IsSubscribed bool   `json:"is_subscribed"`
}

type AuthorResp struct {
	UserResp
	Recipes      []RecipeShortResp `json:"recipes"`
	RecipesCount int64             `json:"recipes_count"`
}

type TagResp struct {
	ID    uint64 `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Slug  string `json:"slug"`
}

type IngredientResp struct {
	ID              uint64 `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
}

type RecipeIngredientResp struct {
	ID              uint64 `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int    `json:"amount"`
}

type RecipeResp struct {
	ID               uint64                 `json:"id"`
	Tags             []TagResp              `json:"tags"`
	Author           UserResp               `json:"author"`
	Ingredients      []RecipeIngredientResp `json:"ingredients"`
	IsFavorited      bool                   `json:"is_favorited"`
	IsInShoppingCart bool                   `json:"is_in_shopping_cart"`
	Name             string                 `json:"name"`
	Image            string                 `json:"image"`
	Text             string                 `json:"text"`
	CookingTime      int                    `json:"cooking_time"`
}

type RecipeShortResp struct {
	ID          uint64 `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	CookingTime int    `json:"cooking_time"`
}

// PageResp is the paginated list envelope. Next and Previous are absolute URLs or null.
type PageResp[T any] struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

func NewUserCreatedResp(u *db.User) UserCreatedResp {
	return UserCreatedResp{
		ID:        u.ID,
		Email:     u.Email,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}

func NewUserResp(u db.User, subscribed bool) UserResp {
	return UserResp{
		ID:           u.ID,
		Email:        u.Email,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		IsSubscribed: subscribed,
	}
}

func NewUserViewResp(v service.UserView) UserResp {
	return NewUserResp(v.User, v.IsSubscribed)
}

func NewAuthorResp(v service.AuthorView) AuthorResp {
	recipes := make([]RecipeShortResp, len(v.Recipes))
	for i := range v.Recipes {
		recipes[i] = NewRecipeShortResp(&v.Recipes[i])
	}
	return AuthorResp{
		UserResp:     NewUserResp(v.User, v.IsSubscribed),
		Recipes:      recipes,
		RecipesCount: v.RecipesCount,
	}
}

func NewTagResp(t db.Tag) TagResp {
	return TagResp{ID: t.ID, Name: t.Name, Color: t.Color, Slug: t.Slug}
}

func NewTagsResp(tags []db.Tag) []TagResp {
	resp := make([]TagResp, len(tags))
	for i := range tags {
		resp[i] = NewTagResp(tags[i])
	}
	return resp
}

func NewIngredientResp(i db.Ingredient) IngredientResp {
	return IngredientResp{ID: i.ID, Name: i.Name, MeasurementUnit: i.MeasurementUnit}
}

func NewIngredientsResp(ingredients []db.Ingredient) []IngredientResp {
	resp := make([]IngredientResp, len(ingredients))
	for i := range ingredients {
		resp[i] = NewIngredientResp(ingredients[i])
	}
	return resp
}

func NewRecipeResp(v service.RecipeView) RecipeResp {
	r := v.Recipe
	ingredients := make([]RecipeIngredientResp, len(r.Ingredients))
	for i, ri := range r.Ingredients {
		ingredients[i] = RecipeIngredientResp{
			ID:              ri.IngredientID,
			Name:            ri.Ingredient.Name,
			MeasurementUnit: ri.Ingredient.MeasurementUnit,
			Amount:          ri.Amount,
		}
	}
	return RecipeResp{
		ID:               r.ID,
		Tags:             NewTagsResp(r.Tags),
		Author:           NewUserResp(r.Author, v.AuthorSubscribed),
		Ingredients:      ingredients,
		IsFavorited:      v.IsFavorited,
		IsInShoppingCart: v.IsInShoppingCart,
		Name:             r.Name,
		Image:            r.Image,
		Text:             r.Text,
		CookingTime:      r.CookingTime,
	}
}

func NewRecipeShortResp(r *db.Recipe) RecipeShortResp {
	return RecipeShortResp{ID: r.ID, Name: r.Name, Image: r.Image, CookingTime: r.CookingTime}
}
