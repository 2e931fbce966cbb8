package transport

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Rogue-Bear-Innovations/foodgram-back/internal/models"
	"github.com/Rogue-Bear-Innovations/foodgram-back/internal/service"
)

func (s *HTTPServer) UserRegister(c echo.Context) error {
	req := models.RegisterReq{}
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := s.general.Register(c.Request().Context(), service.RegisterInput{
		Email:     req.Email,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, models.NewUserCreatedResp(user))
}

func (s *HTTPServer) UserList(c echo.Context) error {
	params, err := pageParams(c)
	if err != nil {
		return err
	}
	page, err := s.general.ListUsers(c.Request().Context(), viewer(c), params)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pageResp(c, page, models.NewUserViewResp))
}

func (s *HTTPServer) UserMe(c echo.Context) error {
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, models.NewUserResp(*user, false))
}

func (s *HTTPServer) UserGet(c echo.Context) error {
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}
	v, err := s.general.GetUser(c.Request().Context(), viewer(c), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, models.NewUserViewResp(*v))
}

func (s *HTTPServer) UserSetPassword(c echo.Context) error {
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}
	req := models.SetPasswordReq{}
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}
	if err := s.general.SetPassword(c.Request().Context(), user, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *HTTPServer) Login(c echo.Context) error {
	req := models.LoginReq{}
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}
	token, err := s.general.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, models.TokenResp{AuthToken: token})
}

func (s *HTTPServer) Logout(c echo.Context) error {
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}
	if err := s.general.Logout(c.Request().Context(), user); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *HTTPServer) SubscriptionList(c echo.Context) error {
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}
	params, err := pageParams(c)
	if err != nil {
		return err
	}
	limit, err := recipesLimit(c)
	if err != nil {
		return err
	}
	page, err := s.subscriptions.List(c.Request().Context(), user, params, limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pageResp(c, page, models.NewAuthorResp))
}

func (s *HTTPServer) Subscribe(c echo.Context) error {
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}
	limit, err := recipesLimit(c)
	if err != nil {
		return err
	}
	v, err := s.subscriptions.Subscribe(c.Request().Context(), user, id, limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, models.NewAuthorResp(*v))
}

func (s *HTTPServer) Unsubscribe(c echo.Context) error {
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}
	if err := s.subscriptions.Unsubscribe(c.Request().Context(), user, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func recipesLimit(c echo.Context) (int, error) {
	limit := 0
	if err := echo.QueryParamsBinder(c).Int("recipes_limit", &limit).BindError(); err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "Invalid recipes_limit.")
	}
	return limit, nil
}
