package echoapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/TanishSen/Learn-Scope/core/session"
	"github.com/TanishSen/Learn-Scope/core/user"
	"github.com/TanishSen/Learn-Scope/services/metrics"
)

const (
	sessionCookieName = "sid"
	contextUserKey    = "user"
)

type cookieConfig struct {
	secure bool
	maxAge int // seconds
}

func setSessionCookie(ctx echo.Context, conf cookieConfig, value string) {
	ctx.SetCookie(&http.Cookie{
		Name:     sessionCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   conf.maxAge,
		Expires:  time.Now().Add(time.Duration(conf.maxAge) * time.Second),
		HttpOnly: true,
		Secure:   conf.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(ctx echo.Context, conf cookieConfig) {
	ctx.SetCookie(&http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   conf.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// getContextUser returns the user authenticated by sessionMiddleware.
func getContextUser(ctx echo.Context) (user.User, error) {
	if usr, ok := ctx.Get(contextUserKey).(user.User); ok {
		return usr, nil
	}
	return user.User{}, errUnauthorized
}

type messageResponse struct {
	Message string `json:"message"`
}

type authApi struct {
	svc      *user.Service
	sessions *session.Manager
	cookies  cookieConfig
	s        *server
}

func registerAuthAPI(g *echo.Group, auth echo.MiddlewareFunc, s *server) {
	api := authApi{svc: s.UserSvc, sessions: s.Sessions, cookies: s.cookieConfig(), s: s}

	g.POST("/register", api.register)
	g.POST("/login", api.login)
	g.POST("/logout", api.logout)
	g.GET("/user", api.currentUser, auth)
	g.GET("/auth/user", api.currentUser, auth)
}

// Handlers

func (api *authApi) openSession(ctx echo.Context, usr user.User) error {
	value, _, err := api.sessions.Issue(ctx.Request().Context(), usr.ID)
	if err != nil {
		return errors.Wrap(err, "issuing session")
	}
	setSessionCookie(ctx, api.cookies, value)
	return nil
}

func (api *authApi) register(ctx echo.Context) error {
	var data user.NewUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUser")
	}
	if err := data.Validate(ctx.Request().Context(), api.s.Validate, api.svc); err != nil {
		return err
	}

	usr, err := api.svc.Register(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "registering user")
	}
	if err = api.openSession(ctx, usr); err != nil {
		return err
	}
	api.s.Metrics.Event(metrics.EventRegistration)
	return ctx.JSON(http.StatusCreated, usr.Public())
}

func (api *authApi) login(ctx echo.Context) error {
	var data user.LoginCredentials
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginCredentials")
	}
	if err := data.Validate(api.s.Validate); err != nil {
		return err
	}

	usr, err := api.svc.Authenticate(ctx.Request().Context(), data.Username, data.Password)
	if err != nil {
		return errors.Wrap(err, "authenticating")
	}
	if err = api.openSession(ctx, usr); err != nil {
		return err
	}
	api.s.Metrics.Event(metrics.EventLogin)
	return ctx.JSON(http.StatusOK, usr.Public())
}

// logout always succeeds; a valid session is revoked and its user marked offline.
func (api *authApi) logout(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	if cookie, err := ctx.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
		if sess, err := api.sessions.Resolve(reqCtx, cookie.Value); err == nil {
			if err = api.svc.Logout(reqCtx, sess.UserID); err != nil && errors.Cause(err) != user.ErrNotFound {
				return errors.Wrap(err, "logging out")
			}
		}
		if err = api.sessions.Revoke(reqCtx, cookie.Value); err != nil {
			return errors.Wrap(err, "revoking session")
		}
	}
	clearSessionCookie(ctx, api.cookies)
	return ctx.JSON(http.StatusOK, messageResponse{Message: "Logged out successfully"})
}

func (api *authApi) currentUser(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, usr.Public())
}
