package transport

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Rogue-Bear-Innovations/foodgram-back/internal/db"
	"github.com/Rogue-Bear-Innovations/foodgram-back/internal/models"
	"github.com/Rogue-Bear-Innovations/foodgram-back/internal/service"
	"github.com/Rogue-Bear-Innovations/foodgram-back/internal/shopping"
)

func (s *HTTPServer) RecipeList(c echo.Context) error {
	params, err := pageParams(c)
	if err != nil {
		return err
	}
	filter := service.RecipeFilter{}
	err = echo.QueryParamsBinder(c).
		Uint64("author", &filter.AuthorID).
		Strings("tags", &filter.TagSlugs).
		Bool("is_favorited", &filter.IsFavorited).
		Bool("is_in_shopping_cart", &filter.IsInShoppingCart).
		BindError()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	page, err := s.recipes.RecipeList(c.Request().Context(), viewer(c), filter, params)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pageResp(c, page, models.NewRecipeResp))
}

func (s *HTTPServer) RecipeGet(c echo.Context) error {
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}
	v, err := s.recipes.RecipeGet(c.Request().Context(), viewer(c), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, models.NewRecipeResp(*v))
}

// RecipeCreate binds without echo validation; the recipe rules live in the service.
func (s *HTTPServer) RecipeCreate(c echo.Context) error {
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}
	req := service.RecipeInput{}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	v, err := s.recipes.RecipeCreate(c.Request().Context(), user, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, models.NewRecipeResp(*v))
}

func (s *HTTPServer) RecipeUpdate(c echo.Context) error {
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}
	req := service.RecipeInput{}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	v, err := s.recipes.RecipeUpdate(c.Request().Context(), user, id, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, models.NewRecipeResp(*v))
}

func (s *HTTPServer) RecipeDelete(c echo.Context) error {
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}
	if err := s.recipes.RecipeDelete(c.Request().Context(), user, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *HTTPServer) membershipAdd(kind db.MembershipKind) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, err := GetUserFromContext(c)
		if err != nil {
			return err
		}
		id, err := GetAndParseParam(c, "id")
		if err != nil {
			return err
		}
		recipe, err := s.memberships.Add(c.Request().Context(), user, id, kind)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusCreated, models.NewRecipeShortResp(recipe))
	}
}

func (s *HTTPServer) membershipRemove(kind db.MembershipKind) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, err := GetUserFromContext(c)
		if err != nil {
			return err
		}
		id, err := GetAndParseParam(c, "id")
		if err != nil {
			return err
		}
		if err := s.memberships.Remove(c.Request().Context(), user, id, kind); err != nil {
			return err
		}
		return c.NoContent(http.StatusNoContent)
	}
}

func (s *HTTPServer) DownloadShoppingCart(c echo.Context) error {
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}
	format, err := shopping.ParseFormat(c.QueryParam("format"))
	if err != nil {
		verr := &service.ValidationError{}
		verr.Add("format", "Unknown export format.")
		return verr
	}

	doc, err := s.shopping.Export(c.Request().Context(), user, format)
	if err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", doc.FileName))
	return c.Blob(http.StatusOK, doc.ContentType, doc.Body)
}
