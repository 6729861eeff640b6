package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/TanishSen/Learn-Scope/core"
	"github.com/TanishSen/Learn-Scope/core/activity"
	"github.com/TanishSen/Learn-Scope/core/dashboard"
	"github.com/TanishSen/Learn-Scope/core/expertise"
	"github.com/TanishSen/Learn-Scope/core/livehelp"
	"github.com/TanishSen/Learn-Scope/core/question"
	"github.com/TanishSen/Learn-Scope/core/session"
	"github.com/TanishSen/Learn-Scope/core/subject"
	"github.com/TanishSen/Learn-Scope/core/user"
	"github.com/TanishSen/Learn-Scope/services/metrics"
)

type (
	ServerDeps struct {
		Conf           *core.Config
		Logger         core.Logger
		Metrics        *metrics.Metrics
		Validate       *validator.Validate
		Translator     ut.Translator
		Sessions       *session.Manager
		DisableReqLogs bool

		UserSvc      *user.Service
		SubjectSvc   *subject.Service
		QuestionSvc  *question.Service
		LiveHelpSvc  *livehelp.Service
		ExpertiseSvc *expertise.Service
		ActivitySvc  *activity.Service
		DashboardSvc *dashboard.Service
	}

	Server interface {
		http.Handler
		Start()
		Errors() <-chan error
		ShutdownSignal() <-chan os.Signal
		Shutdown(context.Context) error
		Close() error
	}

	server struct {
		ServerDeps
		app      *echo.Echo
		errors   chan error
		shutdown chan os.Signal
	}
)

var _ Server = (*server)(nil)

func NewServer(deps ServerDeps) Server {
	s := &server{
		ServerDeps: deps,
		app:        echo.New(),
		errors:     make(chan error, 1),
		shutdown:   make(chan os.Signal, 1),
	}
	if s.Metrics == nil {
		s.Metrics = metrics.New()
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *server) setup() {
	s.app.HideBanner = true
	s.app.Debug = s.Conf.Debug
	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.Logger, s.Translator)

	s.app.Pre(middleware.RemoveTrailingSlash())
	s.app.Use(metricsMiddleware(s.Metrics))
	if !s.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(s.Conf.Debug || s.Conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.GET("/", home)
	s.app.GET("/metrics", echo.WrapHandler(s.Metrics.Handler()))

	g := s.app.Group("/api")
	auth := sessionMiddleware(s.Sessions, s.UserSvc, s.cookieConfig())

	registerAuthAPI(g, auth, s)
	registerSubjectAPI(g, s.SubjectSvc)
	registerQuestionAPI(g, auth, s)
	registerLiveHelpAPI(g, auth, s)
	registerUserAPI(g, auth, s)
	registerActivityAPI(g, auth, s.ActivitySvc, s.DashboardSvc)
}

func (s *server) cookieConfig() cookieConfig {
	return cookieConfig{
		secure: s.Conf.IsProduction(),
		maxAge: int(s.Sessions.Lifetime().Seconds()),
	}
}

func (s *server) Start() {
	if err := s.app.Start(s.Conf.Server.Address); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *server) Errors() <-chan error {
	return s.errors
}

func (s *server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

func (s *server) Shutdown(ctx context.Context) error {
	signal.Stop(s.shutdown)
	return s.app.Shutdown(ctx)
}

func (s *server) Close() error {
	return s.app.Close()
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to Learn-Scope API!")
}
