package service

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Rogue-Bear-Innovations/foodgram-back/internal/db"
)

var membershipNames = map[db.MembershipKind]string{
	db.KindFavorite:     "favorites",
	db.KindShoppingCart: "the shopping cart",
}

// Memberships toggles a recipe in one of the user's recipe lists. Favorites and the shopping
// cart share the implementation and differ only by kind.
type Memberships struct {
	db     *gorm.DB
	logger *zap.SugaredLogger
}

func NewMemberships(db *gorm.DB, l *zap.SugaredLogger) *Memberships {
	return &Memberships{
		db:     db,
		logger: l,
	}
}

// Add puts the recipe in the list. A second add of the same pair is rejected by the unique
// index, which turns concurrent duplicates into exactly one success.
func (s *Memberships) Add(ctx context.Context, user *db.User, recipeID uint64, kind db.MembershipKind) (*db.Recipe, error) {
	if user == nil {
		return nil, ErrUnauthorized
	}
	recipe := db.Recipe{}
	if err := s.db.WithContext(ctx).First(&recipe, recipeID).Error; err != nil {
		return nil, notFound(err, "Recipe")
	}

	res := s.db.WithContext(ctx).Omit(clause.Associations).Create(&db.Membership{
		UserID:   user.ID,
		RecipeID: recipeID,
		Kind:     kind,
	})
	if res.Error != nil {
		switch {
		case errors.Is(res.Error, gorm.ErrDuplicatedKey):
			return nil, userError(ErrDuplicateMembership, "Recipe is already in %s.", membershipNames[kind])
		case errors.Is(res.Error, gorm.ErrForeignKeyViolated):
			return nil, userError(ErrNotFound, "Recipe not found.")
		}
		return nil, errors.Wrap(res.Error, "create membership")
	}

	s.logger.Debugw("membership added", "user", user.ID, "recipe", recipeID, "kind", kind)
	return &recipe, nil
}

func (s *Memberships) Remove(ctx context.Context, user *db.User, recipeID uint64, kind db.MembershipKind) error {
	if user == nil {
		return ErrUnauthorized
	}
	if err := s.db.WithContext(ctx).Select("id").First(&db.Recipe{}, recipeID).Error; err != nil {
		return notFound(err, "Recipe")
	}

	res := s.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ? AND kind = ?", user.ID, recipeID, kind).
		Delete(&db.Membership{})
	if res.Error != nil {
		return errors.Wrap(res.Error, "delete membership")
	}
	if res.RowsAffected == 0 {
		return userError(ErrMissingMembership, "Recipe is not in %s.", membershipNames[kind])
	}

	s.logger.Debugw("membership removed", "user", user.ID, "recipe", recipeID, "kind", kind)
	return nil
}
