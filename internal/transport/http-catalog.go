package transport

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Rogue-Bear-Innovations/foodgram-back/internal/models"
)

func (s *HTTPServer) TagList(c echo.Context) error {
	tags, err := s.catalog.TagList(c.Request().Context(), c.QueryParam("name"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, models.NewTagsResp(tags))
}

func (s *HTTPServer) TagGet(c echo.Context) error {
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}
	tag, err := s.catalog.TagGet(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, models.NewTagResp(*tag))
}

func (s *HTTPServer) IngredientList(c echo.Context) error {
	ingredients, err := s.catalog.IngredientList(c.Request().Context(), c.QueryParam("name"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, models.NewIngredientsResp(ingredients))
}

func (s *HTTPServer) IngredientGet(c echo.Context) error {
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}
	ingredient, err := s.catalog.IngredientGet(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, models.NewIngredientResp(*ingredient))
}
