package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/TanishSen/Learn-Scope/core"
	"github.com/TanishSen/Learn-Scope/core/activity"
	"github.com/TanishSen/Learn-Scope/core/dashboard"
)

type activityApi struct {
	activities *activity.Service
	dashboard  *dashboard.Service
}

func registerActivityAPI(g *echo.Group, auth echo.MiddlewareFunc, activities *activity.Service, dash *dashboard.Service) {
	api := activityApi{activities: activities, dashboard: dash}

	g.GET("/activities", api.query)
	g.GET("/dashboard", api.stats, auth)
}

// Handlers

func (api *activityApi) query(ctx echo.Context) error {
	limit := queryInt(ctx, limitParam)
	if limit > core.MaxPageLimit {
		limit = core.MaxPageLimit
	}
	acts, err := api.activities.Recent(ctx.Request().Context(), limit)
	if err != nil {
		return errors.Wrap(err, "querying activities")
	}
	return ctx.JSON(http.StatusOK, acts)
}

func (api *activityApi) stats(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	stats, err := api.dashboard.Stats(ctx.Request().Context(), usr.ID)
	if err != nil {
		return errors.Wrap(err, "building dashboard")
	}
	return ctx.JSON(http.StatusOK, stats)
}
