package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Rogue-Bear-Innovations/foodgram-back/internal/config"
	"github.com/Rogue-Bear-Innovations/foodgram-back/internal/db"
	"github.com/Rogue-Bear-Innovations/foodgram-back/internal/media"
	"github.com/Rogue-Bear-Innovations/foodgram-back/internal/shopping"
)

type (
	fakeImages struct {
		saved   []string
		removed []string
	}

	fixture struct {
		db            *gorm.DB
		cfg           *config.Config
		images        *fakeImages
		general       *General
		catalog       *Catalog
		recipes       *Recipes
		memberships   *Memberships
		subscriptions *Subscriptions
		shopping      *ShoppingList
	}
)

func (f *fakeImages) SaveRecipeImage(dataURI string) (string, error) {
	if dataURI == "broken" {
		return "", media.ErrInvalidImage
	}
	p := "/media/recipes/images/" + uuid.New().String() + ".png"
	f.saved = append(f.saved, p)
	return p, nil
}

func (f *fakeImages) Remove(publicPath string) {
	f.removed = append(f.removed, publicPath)
}

func testConfig() *config.Config {
	return &config.Config{
		MinCookingTime:    1,
		MaxCookingTime:    32000,
		MinAmount:         1,
		MaxAmount:         32000,
		PageSize:          6,
		ExportPDFFileName: "shopping_list.pdf",
		ExportTXTFileName: "shopping_list.txt",
		BcryptCost:        bcrypt.MinCost,
	}
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.New().String())
	gdb, err := db.Open(sqlite.Open(dsn), logger.Discard)
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return gdb
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	gdb := newTestDB(t)
	cfg := testConfig()
	l := zap.NewNop().Sugar()
	images := &fakeImages{}

	return &fixture{
		db:            gdb,
		cfg:           cfg,
		images:        images,
		general:       NewGeneral(gdb, cfg, l),
		catalog:       NewCatalog(gdb, l),
		recipes:       NewRecipes(gdb, cfg, images, l),
		memberships:   NewMemberships(gdb, l),
		subscriptions: NewSubscriptions(gdb, cfg, l),
		shopping:      NewShoppingList(gdb, shopping.NewExporter(cfg), l),
	}
}

func (f *fixture) user(t *testing.T, name string) *db.User {
	t.Helper()
	u, err := f.general.Register(context.Background(), RegisterInput{
		Email:     name + "@example.com",
		Username:  name,
		FirstName: name,
		LastName:  "Tester",
		Password:  "secret-" + name,
	})
	require.NoError(t, err)
	return u
}

func (f *fixture) tag(t *testing.T, slug string) db.Tag {
	t.Helper()
	tag := db.Tag{Name: slug, Slug: slug, Color: "#" + uuid.New().String()[:6]}
	require.NoError(t, f.db.Create(&tag).Error)
	return tag
}

func (f *fixture) ingredient(t *testing.T, name, unit string) db.Ingredient {
	t.Helper()
	i := db.Ingredient{Name: name, MeasurementUnit: unit}
	require.NoError(t, f.db.Create(&i).Error)
	return i
}

func (f *fixture) recipe(t *testing.T, author *db.User, name string, tags []uint64, items ...IngredientAmount) *RecipeView {
	t.Helper()
	v, err := f.recipes.RecipeCreate(context.Background(), author, RecipeInput{
		Name:        name,
		Text:        "Mix and bake.",
		Image:       "data:image/png;base64,AAAA",
		CookingTime: 30,
		Tags:        tags,
		Ingredients: items,
	})
	require.NoError(t, err)
	return v
}
