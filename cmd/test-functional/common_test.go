//go:build functional

package test_functional

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 1x1 transparent png
const pixel = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR42mNkYAAAAAYAAjCB0C8AAAAASUVORK5CYII="

func apiURL(path string) string {
	u := AppBaseURL
	u.Path = path
	return u.String()
}

func signUp(t *testing.T, ctx context.Context, name string) string {
	t.Helper()

	resp, err := resty.New().R().
		SetContext(ctx).
		SetBody(map[string]string{
			"email":      name + "@example.com",
			"username":   name,
			"first_name": name,
			"last_name":  "Functional",
			"password":   "secret-password",
		}).
		Post(apiURL("/api/users/"))
	require.Nil(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode(), resp.String())

	type Resp struct {
		AuthToken string `json:"auth_token"`
	}
	resp, err = resty.New().R().
		SetContext(ctx).
		SetResult(&Resp{}).
		SetBody(map[string]string{"email": name + "@example.com", "password": "secret-password"}).
		Post(apiURL("/api/auth/token/login/"))
	require.Nil(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode(), resp.String())

	got, ok := resp.Result().(*Resp)
	require.True(t, ok)
	return got.AuthToken
}

func TestRegister(t *testing.T) {
	t.Run("successful register", func(t *testing.T) {
		defer FlushDB()

		ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
		defer cancel()

		token := signUp(t, ctx, "functional")
		assert.NotEmpty(t, token)

		var (
			id       uint64
			username string
		)
		err := DBConn.QueryRow(ctx, "SELECT id, username FROM users WHERE token=$1", token).Scan(&id, &username)
		assert.Nil(t, err)
		assert.Equal(t, "functional", username)
	})

	t.Run("bad body", func(t *testing.T) {
		defer FlushDB()

		ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
		defer cancel()

		resp, err := resty.New().
			R().
			SetHeader("Content-Type", "application/json").
			SetContext(ctx).
			SetBody(`
			{"something": "???"}
		`).
			Post(apiURL("/api/users/"))
		assert.Nil(t, err)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode())
	})
}

func TestShoppingCartDownload(t *testing.T) {
	defer FlushDB()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	token := signUp(t, ctx, "cook")

	var tagID, flourID, eggsID uint64
	err := DBConn.QueryRow(ctx,
		"INSERT INTO tags (name, color, slug, created_at, updated_at) VALUES ('Breakfast', '#E26C2D', 'breakfast', now(), now()) RETURNING id",
	).Scan(&tagID)
	require.Nil(t, err)
	err = DBConn.QueryRow(ctx,
		"INSERT INTO ingredients (name, measurement_unit, created_at, updated_at) VALUES ('flour', 'g', now(), now()) RETURNING id",
	).Scan(&flourID)
	require.Nil(t, err)
	err = DBConn.QueryRow(ctx,
		"INSERT INTO ingredients (name, measurement_unit, created_at, updated_at) VALUES ('eggs', 'pcs', now(), now()) RETURNING id",
	).Scan(&eggsID)
	require.Nil(t, err)

	client := resty.New().SetHeader("Authorization", "Token "+token)

	type Recipe struct {
		ID uint64 `json:"id"`
	}
	ids := make([]uint64, 0, 2)
	for _, amount := range []int{200, 300} {
		resp, err := client.R().
			SetContext(ctx).
			SetResult(&Recipe{}).
			SetBody(map[string]interface{}{
				"name":         fmt.Sprintf("Bread %d", amount),
				"text":         "Knead and bake.",
				"image":        pixel,
				"cooking_time": 60,
				"tags":         []uint64{tagID},
				"ingredients": []map[string]interface{}{
					{"id": flourID, "amount": amount},
					{"id": eggsID, "amount": 1},
				},
			}).
			Post(apiURL("/api/recipes/"))
		require.Nil(t, err)
		require.Equal(t, http.StatusCreated, resp.StatusCode(), resp.String())
		ids = append(ids, resp.Result().(*Recipe).ID)
	}

	for _, id := range ids {
		resp, err := client.R().SetContext(ctx).Post(apiURL(fmt.Sprintf("/api/recipes/%d/shopping_cart/", id)))
		require.Nil(t, err)
		require.Equal(t, http.StatusCreated, resp.StatusCode(), resp.String())
	}

	resp, err := client.R().
		SetContext(ctx).
		SetQueryParam("format", "txt").
		Get(apiURL("/api/recipes/download_shopping_cart/"))
	require.Nil(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode())
	assert.Equal(t, `attachment; filename="shopping_list.txt"`, resp.Header().Get("Content-Disposition"))
	assert.Equal(t, "Shopping list\n\n1. eggs (pcs) - 2\n2. flour (g) - 500\n", resp.String())

	var memberships int
	err = DBConn.QueryRow(ctx, "SELECT count(*) FROM memberships WHERE kind = 'shopping_cart'").Scan(&memberships)
	require.Nil(t, err)
	assert.Equal(t, 2, memberships)
}
