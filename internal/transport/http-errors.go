package transport

import (
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Rogue-Bear-Innovations/foodgram-back/internal/service"
)

type (
	detailResp struct {
		Detail string `json:"detail"`
	}

	errorsResp struct {
		Errors string `json:"errors"`
	}
)

func (s *HTTPServer) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status, body := errorResponse(err)
	if status == http.StatusInternalServerError {
		s.logger.Errorw("request failed", "path", c.Path(), "error", err)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, body)
	}
	if err != nil {
		s.logger.Errorw("write error response", "error", err)
	}
}

// errorResponse maps service and echo errors onto a status code and a JSON body.
func errorResponse(err error) (int, interface{}) {
	verr := &service.ValidationError{}
	if errors.As(err, &verr) {
		return http.StatusBadRequest, verr.Fields
	}

	switch {
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized, detailResp{Detail: "Authentication credentials were not provided."}
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden, detailResp{Detail: "You do not have permission to perform this action."}
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, detailResp{Detail: message(err)}
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusBadRequest, map[string][]string{
			"non_field_errors": {"Unable to log in with provided credentials."},
		}
	case errors.Is(err, service.ErrDuplicateMembership),
		errors.Is(err, service.ErrMissingMembership),
		errors.Is(err, service.ErrSelfSubscription):
		return http.StatusBadRequest, errorsResp{Errors: message(err)}
	}

	herr := &echo.HTTPError{}
	if errors.As(err, &herr) {
		return herr.Code, detailResp{Detail: fmt.Sprint(herr.Message)}
	}
	return http.StatusInternalServerError, detailResp{Detail: "Internal server error."}
}

// message prefers the client-facing text of a service.UserError.
func message(err error) string {
	uerr := &service.UserError{}
	if errors.As(err, &uerr) {
		return uerr.Message
	}
	msg := errors.Cause(err).Error()
	if msg == "" {
		return msg
	}
	return strings.ToUpper(msg[:1]) + msg[1:] + "."
}

func jsonName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return f.Name
	}
	return name
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "max":
		return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
	case "username":
		return "Enter a valid username."
	}
	return fmt.Sprintf("Failed on the '%s' rule.", fe.Tag())
}
