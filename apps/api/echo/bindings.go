package echoapi

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/TanishSen/Learn-Scope/core"
)

const (
	limitParam  = "limit"
	offsetParam = "offset"
	statusParam = "status"
)

// queryInt reads an integer query param; missing or malformed values yield 0.
func queryInt(ctx echo.Context, name string) int {
	n, err := strconv.Atoi(ctx.QueryParam(name))
	if err != nil {
		return 0
	}
	return n
}

// bindPagination reads ?limit&offset, falling back to the defaults for bad values.
func bindPagination(ctx echo.Context) core.Pagination {
	return core.NewPagination(queryInt(ctx, limitParam), queryInt(ctx, offsetParam))
}

// pathID parses a positive integer path param.
func pathID(ctx echo.Context, name string) (int, error) {
	id, err := strconv.Atoi(ctx.Param(name))
	if err != nil || id <= 0 {
		return 0, core.NewValidationError(errInvalidID, core.FieldError{Field: name, Error: "must be a positive integer"})
	}
	return id, nil
}
