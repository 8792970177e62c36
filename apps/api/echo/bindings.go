package echoapi

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

var (
	limitParam  = "limit"
	offsetParam = "offset"
)

// Page is the optional `?limit=&offset=` window applied to list endpoints.
// A zero Limit means no limit.
type Page struct {
	Limit  int
	Offset int
}

func (p *Page) Bind(ctx echo.Context) {
	if n, err := strconv.Atoi(ctx.QueryParam(limitParam)); err == nil && n > 0 {
		p.Limit = n
	}
	if n, err := strconv.Atoi(ctx.QueryParam(offsetParam)); err == nil && n > 0 {
		p.Offset = n
	}
}

// Bounds returns the slice bounds of the page within a list of n items.
func (p Page) Bounds(n int) (lo, hi int) {
	lo = p.Offset
	if lo > n {
		lo = n
	}
	hi = n
	if p.Limit > 0 && lo+p.Limit < n {
		hi = lo + p.Limit
	}
	return lo, hi
}
