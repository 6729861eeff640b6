package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/TanishSen/Learn-Scope/core"
	"github.com/TanishSen/Learn-Scope/core/livehelp"
	"github.com/TanishSen/Learn-Scope/services/metrics"
)

type liveHelpApi struct {
	svc *livehelp.Service
	s   *server
}

func registerLiveHelpAPI(g *echo.Group, auth echo.MiddlewareFunc, s *server) {
	api := liveHelpApi{svc: s.LiveHelpSvc, s: s}

	lg := g.Group("/live-help")
	lg.GET("", api.query)
	lg.POST("", api.create, auth)
	lg.PATCH("/:id", api.changeStatus, auth)
}

// Handlers

func (api *liveHelpApi) query(ctx echo.Context) error {
	var status livehelp.Status
	if raw := ctx.QueryParam(statusParam); raw != "" {
		st, err := livehelp.ParseStatus(raw)
		if err != nil {
			return core.NewValidationError(err, core.FieldError{Field: statusParam, Error: err.Error()})
		}
		status = st
	}

	sessions, err := api.svc.Query(ctx.Request().Context(), status)
	if err != nil {
		return errors.Wrap(err, "querying live help sessions")
	}
	return ctx.JSON(http.StatusOK, sessions)
}

func (api *liveHelpApi) create(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}

	// status is not bindable: new sessions are always pending
	var data livehelp.NewSession
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSession")
	}
	if err = data.Validate(api.s.Validate); err != nil {
		return err
	}

	sess, err := api.svc.Request(ctx.Request().Context(), usr.ID, data)
	if err != nil {
		return errors.Wrap(err, "requesting live help")
	}
	api.s.Metrics.Event(metrics.EventLiveHelpRequest)
	return ctx.JSON(http.StatusCreated, sess)
}

func (api *liveHelpApi) changeStatus(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}

	var data livehelp.StatusChange
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to StatusChange")
	}
	if err = data.Validate(api.s.Validate); err != nil {
		return err
	}

	sess, err := api.svc.ChangeStatus(ctx.Request().Context(), usr.ID, id, data.Status)
	if err != nil {
		return errors.Wrap(err, "changing live help status")
	}
	if sess.Status == livehelp.StatusCompleted {
		api.s.Metrics.Event(metrics.EventLiveHelpDone)
	}
	return ctx.JSON(http.StatusOK, sess)
}
