package transport

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Rogue-Bear-Innovations/foodgram-back/internal/models"
	"github.com/Rogue-Bear-Innovations/foodgram-back/internal/service"
)

func pageParams(c echo.Context) (service.PageParams, error) {
	p := service.PageParams{}
	err := echo.QueryParamsBinder(c).
		Int("page", &p.Page).
		Int("limit", &p.Limit).
		BindError()
	if err != nil {
		return p, echo.NewHTTPError(http.StatusBadRequest, "Invalid page.")
	}
	return p, nil
}

func pageResp[T, R any](c echo.Context, p *service.Page[T], conv func(T) R) models.PageResp[R] {
	results := make([]R, len(p.Items))
	for i := range p.Items {
		results[i] = conv(p.Items[i])
	}
	resp := models.PageResp[R]{Count: p.Count, Results: results}
	if p.HasNext() {
		resp.Next = pageURL(c, p.Page+1)
	}
	if p.HasPrevious() {
		resp.Previous = pageURL(c, p.Page-1)
	}
	return resp
}

func pageURL(c echo.Context, page int) *string {
	r := c.Request()
	u := url.URL{
		Scheme: c.Scheme(),
		Host:   r.Host,
		Path:   r.URL.Path,
	}
	q := r.URL.Query()
	if page == 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}
	u.RawQuery = q.Encode()
	s := u.String()
	return &s
}
