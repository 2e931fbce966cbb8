package service

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Rogue-Bear-Innovations/foodgram-back/internal/config"
	"github.com/Rogue-Bear-Innovations/foodgram-back/internal/db"
	"github.com/Rogue-Bear-Innovations/foodgram-back/internal/media"
)

type (
	ImageStore interface {
		SaveRecipeImage(dataURI string) (string, error)
		Remove(publicPath string)
	}

	RecipeFilter struct {
		AuthorID         uint64
		TagSlugs         []string
		IsFavorited      bool
		IsInShoppingCart bool
	}

	// RecipeView is a recipe as seen by a viewer.
	RecipeView struct {
		Recipe           db.Recipe
		AuthorSubscribed bool
		IsFavorited      bool
		IsInShoppingCart bool
	}

	Recipes struct {
		db        *gorm.DB
		images    ImageStore
		validator *recipeValidator
		pageSize  int
		logger    *zap.SugaredLogger
	}
)

func NewRecipes(db *gorm.DB, cfg *config.Config, images ImageStore, l *zap.SugaredLogger) *Recipes {
	return &Recipes{
		db:        db,
		images:    images,
		validator: newRecipeValidator(cfg),
		pageSize:  cfg.PageSize,
		logger:    l,
	}
}

func (s *Recipes) RecipeCreate(ctx context.Context, user *db.User, in RecipeInput) (*RecipeView, error) {
	if user == nil {
		return nil, ErrUnauthorized
	}
	tags, err := s.checkInput(ctx, &in, true)
	if err != nil {
		return nil, err
	}

	image, err := s.saveImage(in.Image)
	if err != nil {
		return nil, err
	}

	model := db.Recipe{
		AuthorID:    user.ID,
		Name:        in.Name,
		Image:       image,
		Text:        in.Text,
		CookingTime: in.CookingTime,
		PubDate:     time.Now(),
		Tags:        tags,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Author", "Tags.*", "Ingredients").Create(&model).Error; err != nil {
			return errors.Wrap(err, "create recipe")
		}
		return createLineItems(tx, model.ID, in.Ingredients)
	})
	if err != nil {
		s.images.Remove(image)
		return nil, err
	}

	return s.RecipeGet(ctx, user, model.ID)
}

func (s *Recipes) RecipeUpdate(ctx context.Context, user *db.User, id uint64, in RecipeInput) (*RecipeView, error) {
	if user == nil {
		return nil, ErrUnauthorized
	}
	current, err := s.ownRecipe(ctx, user, id)
	if err != nil {
		return nil, err
	}
	tags, err := s.checkInput(ctx, &in, false)
	if err != nil {
		return nil, err
	}

	image := current.Image
	if in.Image != "" {
		if image, err = s.saveImage(in.Image); err != nil {
			return nil, err
		}
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(current).Updates(map[string]interface{}{
			"name":         in.Name,
			"text":         in.Text,
			"cooking_time": in.CookingTime,
			"image":        image,
		})
		if res.Error != nil {
			return errors.Wrap(res.Error, "update recipe")
		}
		if err := tx.Model(current).Association("Tags").Replace(tags); err != nil {
			return errors.Wrap(err, "replace tags")
		}
		if err := tx.Where("recipe_id = ?", current.ID).Delete(&db.RecipeIngredient{}).Error; err != nil {
			return errors.Wrap(err, "delete line items")
		}
		return createLineItems(tx, current.ID, in.Ingredients)
	})
	if err != nil {
		if image != current.Image {
			s.images.Remove(image)
		}
		return nil, err
	}
	if image != current.Image {
		s.images.Remove(current.Image)
	}

	return s.RecipeGet(ctx, user, id)
}

// RecipeDelete removes the recipe. Line items and memberships go with it through ON DELETE CASCADE.
func (s *Recipes) RecipeDelete(ctx context.Context, user *db.User, id uint64) error {
	if user == nil {
		return ErrUnauthorized
	}
	current, err := s.ownRecipe(ctx, user, id)
	if err != nil {
		return err
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(current).Association("Tags").Clear(); err != nil {
			return errors.Wrap(err, "clear tags")
		}
		if err := tx.Delete(&db.Recipe{}, current.ID).Error; err != nil {
			return errors.Wrap(err, "delete recipe")
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.images.Remove(current.Image)
	return nil
}

func (s *Recipes) RecipeGet(ctx context.Context, viewer *db.User, id uint64) (*RecipeView, error) {
	recipe := db.Recipe{}
	if err := preloadRecipe(s.db.WithContext(ctx)).First(&recipe, id).Error; err != nil {
		return nil, notFound(err, "Recipe")
	}
	views, err := s.views(ctx, viewer, []db.Recipe{recipe})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *Recipes) RecipeList(ctx context.Context, viewer *db.User, filter RecipeFilter, params PageParams) (*Page[RecipeView], error) {
	params = params.normalize(s.pageSize)

	where, args, err := recipeConditions(viewer, filter).ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "build sql")
	}
	q := s.db.WithContext(ctx).Model(&db.Recipe{}).Where(where, args...).Session(&gorm.Session{})

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return nil, errors.Wrap(err, "count recipes")
	}

	recipes := make([]db.Recipe, 0)
	err = preloadRecipe(q).
		Order("pub_date DESC").Order("id DESC").
		Offset(params.offset()).Limit(params.Limit).
		Find(&recipes).Error
	if err != nil {
		return nil, errors.Wrap(err, "list recipes")
	}

	items, err := s.views(ctx, viewer, recipes)
	if err != nil {
		return nil, err
	}
	return &Page[RecipeView]{Count: count, Page: params.Page, Limit: params.Limit, Items: items}, nil
}

func recipeConditions(viewer *db.User, filter RecipeFilter) squirrel.And {
	conds := squirrel.And{}
	if filter.AuthorID != 0 {
		conds = append(conds, squirrel.Eq{"recipes.author_id": filter.AuthorID})
	}
	if len(filter.TagSlugs) != 0 {
		conds = append(conds, exists(squirrel.
			Select("1").From("recipe_tags rt").
			Join("tags t ON t.id = rt.tag_id").
			Where("rt.recipe_id = recipes.id").
			Where(squirrel.Eq{"t.slug": filter.TagSlugs})))
	}
	if viewer != nil {
		if filter.IsFavorited {
			conds = append(conds, membershipExists(viewer.ID, db.KindFavorite))
		}
		if filter.IsInShoppingCart {
			conds = append(conds, membershipExists(viewer.ID, db.KindShoppingCart))
		}
	}
	return conds
}

func membershipExists(userID uint64, kind db.MembershipKind) squirrel.Sqlizer {
	return exists(squirrel.
		Select("1").From("memberships m").
		Where("m.recipe_id = recipes.id").
		Where(squirrel.Eq{"m.user_id": userID, "m.kind": string(kind)}))
}

func exists(sub squirrel.SelectBuilder) squirrel.Sqlizer {
	return squirrel.Expr("EXISTS (?)", sub)
}

func preloadRecipe(q *gorm.DB) *gorm.DB {
	return q.
		Preload("Author").
		Preload("Tags", func(tx *gorm.DB) *gorm.DB { return tx.Order("tags.id") }).
		Preload("Ingredients", func(tx *gorm.DB) *gorm.DB { return tx.Order("recipe_ingredients.id") }).
		Preload("Ingredients.Ingredient")
}

func (s *Recipes) views(ctx context.Context, viewer *db.User, recipes []db.Recipe) ([]RecipeView, error) {
	views := make([]RecipeView, len(recipes))
	if len(recipes) == 0 {
		return views, nil
	}

	recipeIDs := make([]uint64, len(recipes))
	authorIDs := make([]uint64, len(recipes))
	for i := range recipes {
		recipeIDs[i] = recipes[i].ID
		authorIDs[i] = recipes[i].AuthorID
	}

	subscribed, err := subscribedTo(ctx, s.db, viewer, authorIDs)
	if err != nil {
		return nil, err
	}
	memberships := make([]db.Membership, 0)
	if viewer != nil {
		err := s.db.WithContext(ctx).
			Where("user_id = ? AND recipe_id IN ?", viewer.ID, recipeIDs).
			Find(&memberships).Error
		if err != nil {
			return nil, errors.Wrap(err, "find memberships")
		}
	}
	kinds := make(map[uint64]map[db.MembershipKind]bool, len(memberships))
	for _, m := range memberships {
		if kinds[m.RecipeID] == nil {
			kinds[m.RecipeID] = make(map[db.MembershipKind]bool)
		}
		kinds[m.RecipeID][m.Kind] = true
	}

	for i := range recipes {
		views[i] = RecipeView{
			Recipe:           recipes[i],
			AuthorSubscribed: subscribed[recipes[i].AuthorID],
			IsFavorited:      kinds[recipes[i].ID][db.KindFavorite],
			IsInShoppingCart: kinds[recipes[i].ID][db.KindShoppingCart],
		}
	}
	return views, nil
}

func (s *Recipes) ownRecipe(ctx context.Context, user *db.User, id uint64) (*db.Recipe, error) {
	recipe := db.Recipe{}
	if err := s.db.WithContext(ctx).First(&recipe, id).Error; err != nil {
		return nil, notFound(err, "Recipe")
	}
	if recipe.AuthorID != user.ID {
		return nil, ErrForbidden
	}
	return &recipe, nil
}

// checkInput validates the payload and resolves the referenced tags.
func (s *Recipes) checkInput(ctx context.Context, in *RecipeInput, create bool) ([]db.Tag, error) {
	verr := s.validator.Validate(in, create)
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	tags := make([]db.Tag, 0, len(in.Tags))
	if err := s.db.WithContext(ctx).Where("id IN ?", in.Tags).Order("id").Find(&tags).Error; err != nil {
		return nil, errors.Wrap(err, "find tags")
	}
	if len(tags) != len(in.Tags) {
		verr.Add("tags", "Some of the tags do not exist.")
	}

	ingredientIDs := make([]uint64, len(in.Ingredients))
	for i, ia := range in.Ingredients {
		ingredientIDs[i] = ia.ID
	}
	var found int64
	err := s.db.WithContext(ctx).Model(&db.Ingredient{}).Where("id IN ?", ingredientIDs).Count(&found).Error
	if err != nil {
		return nil, errors.Wrap(err, "count ingredients")
	}
	if found != int64(len(ingredientIDs)) {
		verr.Add("ingredients", "Some of the ingredients do not exist.")
	}

	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	return tags, nil
}

func (s *Recipes) saveImage(dataURI string) (string, error) {
	p, err := s.images.SaveRecipeImage(dataURI)
	if err != nil {
		if errors.Is(err, media.ErrInvalidImage) {
			return "", fieldError("image", "Upload a valid image.")
		}
		return "", errors.Wrap(err, "save image")
	}
	return p, nil
}

func createLineItems(tx *gorm.DB, recipeID uint64, in []IngredientAmount) error {
	items := make([]db.RecipeIngredient, len(in))
	for i, ia := range in {
		items[i] = db.RecipeIngredient{RecipeID: recipeID, IngredientID: ia.ID, Amount: ia.Amount}
	}
	if err := tx.Omit("Ingredient").Create(&items).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fieldError("ingredients", "Ingredients must be unique.")
		}
		return errors.Wrap(err, "create line items")
	}
	return nil
}
