package service

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Rogue-Bear-Innovations/foodgram-back/internal/config"
	"github.com/Rogue-Bear-Innovations/foodgram-back/internal/db"
)

type (
	// AuthorView is a followed user with a preview of their recipes.
	AuthorView struct {
		User         db.User
		IsSubscribed bool
		Recipes      []db.Recipe
		RecipesCount int64
	}

	Subscriptions struct {
		db       *gorm.DB
		pageSize int
		logger   *zap.SugaredLogger
	}
)

func NewSubscriptions(db *gorm.DB, cfg *config.Config, l *zap.SugaredLogger) *Subscriptions {
	return &Subscriptions{
		db:       db,
		pageSize: cfg.PageSize,
		logger:   l,
	}
}

// Subscribe makes follower follow the author. recipesLimit caps the recipe preview; zero or
// less means no cap.
func (s *Subscriptions) Subscribe(ctx context.Context, follower *db.User, authorID uint64, recipesLimit int) (*AuthorView, error) {
	if follower == nil {
		return nil, ErrUnauthorized
	}
	if follower.ID == authorID {
		return nil, userError(ErrSelfSubscription, "You cannot subscribe to yourself.")
	}
	author := db.User{}
	if err := s.db.WithContext(ctx).First(&author, authorID).Error; err != nil {
		return nil, notFound(err, "User")
	}

	res := s.db.WithContext(ctx).Omit(clause.Associations).Create(&db.Subscription{
		UserID:   follower.ID,
		AuthorID: authorID,
	})
	if res.Error != nil {
		switch {
		case errors.Is(res.Error, gorm.ErrDuplicatedKey):
			return nil, userError(ErrDuplicateMembership, "You are already subscribed to this user.")
		case errors.Is(res.Error, gorm.ErrCheckConstraintViolated):
			return nil, userError(ErrSelfSubscription, "You cannot subscribe to yourself.")
		case errors.Is(res.Error, gorm.ErrForeignKeyViolated):
			return nil, userError(ErrNotFound, "User not found.")
		}
		return nil, errors.Wrap(res.Error, "create subscription")
	}

	views, err := s.authorViews(ctx, []db.User{author}, recipesLimit)
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *Subscriptions) Unsubscribe(ctx context.Context, follower *db.User, authorID uint64) error {
	if follower == nil {
		return ErrUnauthorized
	}
	if err := s.db.WithContext(ctx).Select("id").First(&db.User{}, authorID).Error; err != nil {
		return notFound(err, "User")
	}

	res := s.db.WithContext(ctx).
		Where("user_id = ? AND author_id = ?", follower.ID, authorID).
		Delete(&db.Subscription{})
	if res.Error != nil {
		return errors.Wrap(res.Error, "delete subscription")
	}
	if res.RowsAffected == 0 {
		return userError(ErrMissingMembership, "You are not subscribed to this user.")
	}
	return nil
}

func (s *Subscriptions) List(ctx context.Context, follower *db.User, params PageParams, recipesLimit int) (*Page[AuthorView], error) {
	if follower == nil {
		return nil, ErrUnauthorized
	}
	params = params.normalize(s.pageSize)

	q := s.db.WithContext(ctx).Model(&db.User{}).
		Joins("JOIN subscriptions ON subscriptions.author_id = users.id").
		Where("subscriptions.user_id = ?", follower.ID).
		Session(&gorm.Session{})

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return nil, errors.Wrap(err, "count subscriptions")
	}

	authors := make([]db.User, 0)
	if err := q.Order("subscriptions.id").Offset(params.offset()).Limit(params.Limit).Find(&authors).Error; err != nil {
		return nil, errors.Wrap(err, "list subscriptions")
	}

	items, err := s.authorViews(ctx, authors, recipesLimit)
	if err != nil {
		return nil, err
	}
	return &Page[AuthorView]{Count: count, Page: params.Page, Limit: params.Limit, Items: items}, nil
}

// authorViews builds views for authors the caller is known to follow.
func (s *Subscriptions) authorViews(ctx context.Context, authors []db.User, recipesLimit int) ([]AuthorView, error) {
	views := make([]AuthorView, len(authors))
	for i := range authors {
		q := s.db.WithContext(ctx).Model(&db.Recipe{}).Where("author_id = ?", authors[i].ID).Session(&gorm.Session{})

		var count int64
		if err := q.Count(&count).Error; err != nil {
			return nil, errors.Wrap(err, "count author recipes")
		}

		recipes := make([]db.Recipe, 0)
		find := q.Order("pub_date DESC").Order("id DESC")
		if recipesLimit > 0 {
			find = find.Limit(recipesLimit)
		}
		if err := find.Find(&recipes).Error; err != nil {
			return nil, errors.Wrap(err, "find author recipes")
		}

		views[i] = AuthorView{
			User:         authors[i],
			IsSubscribed: true,
			Recipes:      recipes,
			RecipesCount: count,
		}
	}
	return views, nil
}
