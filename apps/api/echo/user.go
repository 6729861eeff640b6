package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/TanishSen/Learn-Scope/core/expertise"
	"github.com/TanishSen/Learn-Scope/core/question"
)

type userApi struct {
	expertise *expertise.Service
	questions *question.Service
	s         *server
}

func registerUserAPI(g *echo.Group, auth echo.MiddlewareFunc, s *server) {
	api := userApi{expertise: s.ExpertiseSvc, questions: s.QuestionSvc, s: s}

	g.GET("/users/:userId/subjects", api.querySubjects)
	g.GET("/users/:userId/questions", api.queryQuestions)
	g.POST("/user/subjects", api.declareSubject, auth)
}

// Handlers

func (api *userApi) querySubjects(ctx echo.Context) error {
	userID, err := pathID(ctx, "userId")
	if err != nil {
		return err
	}
	uss, err := api.expertise.QueryByUser(ctx.Request().Context(), userID)
	if err != nil {
		return errors.Wrap(err, "querying user subjects")
	}
	return ctx.JSON(http.StatusOK, uss)
}

func (api *userApi) queryQuestions(ctx echo.Context) error {
	userID, err := pathID(ctx, "userId")
	if err != nil {
		return err
	}
	questions, err := api.questions.QueryByUser(ctx.Request().Context(), userID, 0 /* all */)
	if err != nil {
		return errors.Wrap(err, "querying user questions")
	}
	return ctx.JSON(http.StatusOK, questions)
}

func (api *userApi) declareSubject(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}

	var data expertise.NewUserSubject
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUserSubject")
	}
	if err = data.Validate(api.s.Validate); err != nil {
		return err
	}

	us, err := api.expertise.Declare(ctx.Request().Context(), usr.ID, data)
	if err != nil {
		return errors.Wrap(err, "declaring expertise")
	}
	return ctx.JSON(http.StatusCreated, us)
}
