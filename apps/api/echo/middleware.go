package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/TanishSen/Learn-Scope/core/session"
	"github.com/TanishSen/Learn-Scope/core/user"
	"github.com/TanishSen/Learn-Scope/services/metrics"
)

// sessionMiddleware authenticates the request from its session cookie.
// It stores the user in the context, stamps their presence and refreshes the cookie (rolling expiry).
func sessionMiddleware(sessions *session.Manager, svc *user.Service, conf cookieConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			cookie, err := ctx.Cookie(sessionCookieName)
			if err != nil || cookie.Value == "" {
				return errUnauthorized
			}

			reqCtx := ctx.Request().Context()
			sess, err := sessions.Resolve(reqCtx, cookie.Value)
			if err != nil {
				switch errors.Cause(err) {
				case session.ErrInvalidToken, session.ErrNotFound:
					return errUnauthorized
				}
				return errors.Wrap(err, "resolving session")
			}

			usr, err := svc.GetByID(reqCtx, sess.UserID)
			if err != nil {
				if errors.Cause(err) == user.ErrNotFound {
					return errUnauthorized
				}
				return errors.Wrap(err, "getting session user")
			}
			if usr, err = svc.Touch(reqCtx, usr); err != nil {
				return errors.Wrap(err, "stamping presence")
			}

			ctx.Set(contextUserKey, usr)
			setSessionCookie(ctx, conf, cookie.Value)
			return next(ctx)
		}
	}
}

// metricsMiddleware records every request under its route template, so ids do not explode the label space.
func metricsMiddleware(m *metrics.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			done := m.RequestStarted(ctx.Request().Method)
			if err := next(ctx); err != nil {
				ctx.Error(err)
			}

			path := ctx.Path()
			if path == "" {
				path = "unmatched"
			}
			status := ctx.Response().Status
			if status == 0 {
				status = http.StatusOK
			}
			done(path, status)
			return nil
		}
	}
}
