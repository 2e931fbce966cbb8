package service

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Rogue-Bear-Innovations/foodgram-back/internal/db"
	"github.com/Rogue-Bear-Innovations/foodgram-back/internal/shopping"
)

// ShoppingList derives the user's shopping list from current cart membership on every call.
type ShoppingList struct {
	db       *gorm.DB
	exporter *shopping.Exporter
	logger   *zap.SugaredLogger
}

func NewShoppingList(db *gorm.DB, exporter *shopping.Exporter, l *zap.SugaredLogger) *ShoppingList {
	return &ShoppingList{
		db:       db,
		exporter: exporter,
		logger:   l,
	}
}

func (s *ShoppingList) Aggregate(ctx context.Context, user *db.User) ([]shopping.Entry, error) {
	if user == nil {
		return nil, ErrUnauthorized
	}
	items, err := s.lineItems(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return shopping.Aggregate(items), nil
}

func (s *ShoppingList) Export(ctx context.Context, user *db.User, format shopping.Format) (*shopping.Document, error) {
	entries, err := s.Aggregate(ctx, user)
	if err != nil {
		return nil, err
	}
	doc, err := s.exporter.Export(entries, format)
	if err != nil {
		if errors.Is(err, shopping.ErrUnknownFormat) {
			return nil, fieldError("format", "Unknown export format.")
		}
		return nil, errors.Wrap(err, "export")
	}
	s.logger.Debugw("shopping list exported", "user", user.ID, "entries", len(entries), "format", format)
	return doc, nil
}

func (s *ShoppingList) lineItems(ctx context.Context, userID uint64) ([]shopping.LineItem, error) {
	sql, args, err := squirrel.
		Select("ri.recipe_id", "ri.ingredient_id", "i.name", "i.measurement_unit", "ri.amount").
		From("memberships m").
		Join("recipe_ingredients ri ON ri.recipe_id = m.recipe_id").
		Join("ingredients i ON i.id = ri.ingredient_id").
		Where(squirrel.Eq{"m.user_id": userID, "m.kind": string(db.KindShoppingCart)}).
		OrderBy("ri.recipe_id", "ri.id").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "build sql")
	}

	items := make([]shopping.LineItem, 0)
	if res := s.db.WithContext(ctx).Raw(sql, args...).Scan(&items); res.Error != nil {
		return nil, errors.Wrap(res.Error, "scan")
	}
	return items, nil
}
