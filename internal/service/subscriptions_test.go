package service

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscribe(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := f.user(t, "author")
	follower := f.user(t, "follower")
	tag := f.tag(t, "dessert")
	sugar := f.ingredient(t, "sugar", "g")
	for _, name := range []string{"Cake", "Pie", "Tart"} {
		f.recipe(t, author, name, []uint64{tag.ID}, IngredientAmount{ID: sugar.ID, Amount: 100})
	}

	view, err := f.subscriptions.Subscribe(ctx, follower, author.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, author.ID, view.User.ID)
	assert.True(t, view.IsSubscribed)
	assert.EqualValues(t, 3, view.RecipesCount)
	require.Len(t, view.Recipes, 2)
	assert.Equal(t, "Tart", view.Recipes[0].Name)

	_, err = f.subscriptions.Subscribe(ctx, follower, author.ID, 0)
	assert.True(t, errors.Is(err, ErrDuplicateMembership), "got %v", err)

	u, err := f.general.GetUser(ctx, follower, author.ID)
	require.NoError(t, err)
	assert.True(t, u.IsSubscribed)

	page, err := f.subscriptions.List(ctx, follower, PageParams{}, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Count)
	require.Len(t, page.Items, 1)
	assert.Len(t, page.Items[0].Recipes, 3)

	require.NoError(t, f.subscriptions.Unsubscribe(ctx, follower, author.ID))

	err = f.subscriptions.Unsubscribe(ctx, follower, author.ID)
	assert.True(t, errors.Is(err, ErrMissingMembership), "got %v", err)

	page, err = f.subscriptions.List(ctx, follower, PageParams{}, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 0, page.Count)
	assert.Empty(t, page.Items)
}

func TestSubscribeSelf(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.user(t, "narcissus")

	_, err := f.subscriptions.Subscribe(ctx, user, user.ID, 0)
	assert.True(t, errors.Is(err, ErrSelfSubscription), "got %v", err)

	// Self subscription fails the same way for an id that does not exist yet.
	ghost := *user
	ghost.ID = 999
	_, err = f.subscriptions.Subscribe(ctx, &ghost, ghost.ID, 0)
	assert.True(t, errors.Is(err, ErrSelfSubscription), "got %v", err)
}

func TestSubscribeUnknownAuthor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.user(t, "follower")

	_, err := f.subscriptions.Subscribe(ctx, user, 404, 0)
	assert.True(t, errors.Is(err, ErrNotFound), "got %v", err)

	err = f.subscriptions.Unsubscribe(ctx, user, 404)
	assert.True(t, errors.Is(err, ErrNotFound), "got %v", err)

	_, err = f.subscriptions.Subscribe(ctx, nil, user.ID, 0)
	assert.True(t, errors.Is(err, ErrUnauthorized))
}
