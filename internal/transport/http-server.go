package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Rogue-Bear-Innovations/foodgram-back/internal/config"
	"github.com/Rogue-Bear-Innovations/foodgram-back/internal/db"
	"github.com/Rogue-Bear-Innovations/foodgram-back/internal/service"
)

const (
	tokenScheme = "Token "
	userKey     = "user"
	censored    = "$censored"
)

var (
	usernameRe = regexp.MustCompile(`^[\w.@+-]+$`)

	censoredFields = []string{"password", "current_password", "new_password"}
)

type (
	Deps struct {
		fx.In

		General       *service.General
		Catalog       *service.Catalog
		Recipes       *service.Recipes
		Memberships   *service.Memberships
		Subscriptions *service.Subscriptions
		Shopping      *service.ShoppingList
	}

	CustomValidator struct {
		validator *validator.Validate
	}

	HTTPServer struct {
		general       *service.General
		catalog       *service.Catalog
		recipes       *service.Recipes
		memberships   *service.Memberships
		subscriptions *service.Subscriptions
		shopping      *service.ShoppingList
		logger        *zap.SugaredLogger
	}
)

func NewHTTPServer(lc fx.Lifecycle, cfg *config.Config, deps Deps, logger *zap.SugaredLogger) *HTTPServer {
	instance := newHTTPServer(deps, logger)
	e := instance.router(cfg)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				listen := cfg.Host + ":" + cfg.Port
				logger.Infow("starting HTTP server", "listen", listen)
				if err := e.Start(listen); err != nil && err != http.ErrServerClosed {
					logger.Fatalw("shutting down the server", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Stopping HTTP server.")
			return e.Shutdown(ctx)
		},
	})

	return instance
}

func newHTTPServer(deps Deps, logger *zap.SugaredLogger) *HTTPServer {
	return &HTTPServer{
		general:       deps.General,
		catalog:       deps.Catalog,
		recipes:       deps.Recipes,
		memberships:   deps.Memberships,
		subscriptions: deps.Subscriptions,
		shopping:      deps.Shopping,
		logger:        logger,
	}
}

func (s *HTTPServer) router(cfg *config.Config) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Pre(middleware.AddTrailingSlashWithConfig(middleware.TrailingSlashConfig{
		Skipper: func(c echo.Context) bool {
			p := c.Request().URL.Path
			return p == "/ping" || strings.HasPrefix(p, cfg.MediaURL+"/")
		},
	}))

	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			s.logger.Infow("request", "method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency)
			return nil
		},
	}))
	e.Use(middleware.BodyDumpWithConfig(middleware.BodyDumpConfig{
		Skipper: func(c echo.Context) bool {
			return !strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON)
		},
		Handler: func(c echo.Context, req, _ []byte) {
			s.logger.Debugw("request body", "path", c.Path(), "body", string(censorBody(req)))
		},
	}))
	e.Use(s.AuthMiddleware)

	e.Validator = NewCustomValidator()
	e.HTTPErrorHandler = s.errorHandler

	api := e.Group("/api")

	users := api.Group("/users")
	users.POST("/", s.UserRegister)
	users.GET("/", s.UserList)
	users.GET("/me/", s.UserMe)
	users.POST("/set_password/", s.UserSetPassword)
	users.GET("/subscriptions/", s.SubscriptionList)
	users.GET("/:id/", s.UserGet)
	users.POST("/:id/subscribe/", s.Subscribe)
	users.DELETE("/:id/subscribe/", s.Unsubscribe)

	auth := api.Group("/auth/token")
	auth.POST("/login/", s.Login)
	auth.POST("/logout/", s.Logout)

	api.GET("/tags/", s.TagList)
	api.GET("/tags/:id/", s.TagGet)
	api.GET("/ingredients/", s.IngredientList)
	api.GET("/ingredients/:id/", s.IngredientGet)

	recipes := api.Group("/recipes")
	recipes.GET("/", s.RecipeList)
	recipes.POST("/", s.RecipeCreate)
	recipes.GET("/download_shopping_cart/", s.DownloadShoppingCart)
	recipes.GET("/:id/", s.RecipeGet)
	recipes.PATCH("/:id/", s.RecipeUpdate)
	recipes.DELETE("/:id/", s.RecipeDelete)
	recipes.POST("/:id/favorite/", s.membershipAdd(db.KindFavorite))
	recipes.DELETE("/:id/favorite/", s.membershipRemove(db.KindFavorite))
	recipes.POST("/:id/shopping_cart/", s.membershipAdd(db.KindShoppingCart))
	recipes.DELETE("/:id/shopping_cart/", s.membershipRemove(db.KindShoppingCart))

	e.GET("/ping", func(c echo.Context) error { return c.String(http.StatusOK, "pong") })
	e.Static(cfg.MediaURL, cfg.MediaRoot)

	return e
}

// AuthMiddleware resolves the caller from "Authorization: Token <t>" or "X-Token". Requests
// without a token pass through anonymously; an unknown token is rejected.
func (s *HTTPServer) AuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := tokenFromRequest(c.Request())
		if token == "" {
			return next(c)
		}
		user, err := s.general.UserByToken(c.Request().Context(), token)
		if err != nil {
			return err
		}
		c.Set(userKey, user)
		return next(c)
	}
}

func tokenFromRequest(r *http.Request) string {
	if h := r.Header.Get(echo.HeaderAuthorization); strings.HasPrefix(h, tokenScheme) {
		return strings.TrimSpace(strings.TrimPrefix(h, tokenScheme))
	}
	return strings.TrimSpace(r.Header.Get("X-Token"))
}

// censorBody masks password fields in a JSON request body before it is logged.
func censorBody(b []byte) []byte {
	body := map[string]interface{}{}
	if err := json.Unmarshal(b, &body); err != nil {
		return b
	}
	for _, f := range censoredFields {
		if _, ok := body[f]; ok {
			body[f] = censored
		}
	}
	res, err := json.Marshal(body)
	if err != nil {
		return b
	}
	return res
}

////////

func NewCustomValidator() *CustomValidator {
	v := validator.New()
	v.RegisterTagNameFunc(jsonName)
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		name := fl.Field().String()
		return name != "me" && usernameRe.MatchString(name)
	})
	return &CustomValidator{validator: v}
}

func (cv *CustomValidator) Validate(i interface{}) error {
	err := cv.validator.Struct(i)
	if err == nil {
		return nil
	}
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return errors.Wrap(err, "validate")
	}
	verr := &service.ValidationError{}
	for _, fe := range fieldErrs {
		verr.Add(fe.Field(), validationMessage(fe))
	}
	return verr
}

func BindAndValidate(c echo.Context, v interface{}) error {
	var err error
	if err = c.Bind(v); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err = c.Validate(v); err != nil {
		return err
	}
	return nil
}

// GetUserFromContext returns the authenticated caller or service.ErrUnauthorized.
func GetUserFromContext(c echo.Context) (*db.User, error) {
	user := viewer(c)
	if user == nil {
		return nil, service.ErrUnauthorized
	}
	return user, nil
}

// viewer returns the caller if one was authenticated, nil otherwise.
func viewer(c echo.Context) *db.User {
	user, _ := c.Get(userKey).(*db.User)
	return user
}

func GetAndParseParam(c echo.Context, name string) (uint64, error) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusNotFound, "Not found.")
	}
	return v, nil
}
