package db

import (
	"time"
)

type MembershipKind string

const (
	KindFavorite     MembershipKind = "favorite"
	KindShoppingCart MembershipKind = "shopping_cart"
)

type (
	GormForkedModel struct {
		ID        uint64 `gorm:"primarykey"`
		CreatedAt time.Time
		UpdatedAt time.Time
	}

	User struct {
		GormForkedModel
		Email     string `gorm:"unique;not null"`
		Username  string `gorm:"unique;not null"`
		FirstName string `gorm:"not null"`
		LastName  string `gorm:"not null"`
		Password  string `gorm:"not null"`
		Token     string `gorm:"not null;index"`
	}

	Tag struct {
		GormForkedModel
		Name  string `gorm:"not null;unique"`
		Color string `gorm:"not null;unique;size:7"`
		Slug  string `gorm:"not null;unique"`
	}

	Ingredient struct {
		GormForkedModel
		Name            string `gorm:"not null;uniqueIndex:uidx_name_measurement_unit"`
		MeasurementUnit string `gorm:"not null;uniqueIndex:uidx_name_measurement_unit"`
	}

	// Line items keep insertion order through their own primary key.
	Recipe struct {
		GormForkedModel
		AuthorID    uint64             `gorm:"not null;index"`
		Author      User               `gorm:"constraint:OnDelete:CASCADE;"`
		Name        string             `gorm:"not null"`
		Image       string             `gorm:"not null"`
		Text        string             `gorm:"not null"`
		CookingTime int                `gorm:"not null"`
		PubDate     time.Time          `gorm:"not null;index"`
		Tags        []Tag              `gorm:"many2many:recipe_tags;constraint:OnDelete:CASCADE;"`
		Ingredients []RecipeIngredient `gorm:"constraint:OnDelete:CASCADE;"`
	}

	RecipeIngredient struct {
		ID           uint64     `gorm:"primarykey"`
		RecipeID     uint64     `gorm:"not null;uniqueIndex:uidx_recipe_ingredient"`
		IngredientID uint64     `gorm:"not null;uniqueIndex:uidx_recipe_ingredient"`
		Ingredient   Ingredient `gorm:"constraint:OnDelete:CASCADE;"`
		Amount       int        `gorm:"not null"`
	}

	// Membership is the user x recipe relation behind both favorites and the shopping cart.
	Membership struct {
		ID        uint64         `gorm:"primarykey"`
		UserID    uint64         `gorm:"not null;uniqueIndex:uidx_user_recipe_kind"`
		User      User           `gorm:"constraint:OnDelete:CASCADE;"`
		RecipeID  uint64         `gorm:"not null;uniqueIndex:uidx_user_recipe_kind"`
		Recipe    Recipe         `gorm:"constraint:OnDelete:CASCADE;"`
		Kind      MembershipKind `gorm:"not null;size:32;uniqueIndex:uidx_user_recipe_kind"`
		CreatedAt time.Time
	}

	Subscription struct {
		ID        uint64 `gorm:"primarykey"`
		UserID    uint64 `gorm:"not null;uniqueIndex:uidx_user_author;check:chk_subscription_not_self,user_id <> author_id"`
		User      User   `gorm:"constraint:OnDelete:CASCADE;"`
		AuthorID  uint64 `gorm:"not null;uniqueIndex:uidx_user_author"`
		Author    User   `gorm:"constraint:OnDelete:CASCADE;"`
		CreatedAt time.Time
	}
)
