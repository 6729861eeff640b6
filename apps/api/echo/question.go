package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/TanishSen/Learn-Scope/core/question"
	"github.com/TanishSen/Learn-Scope/services/metrics"
)

type questionApi struct {
	svc *question.Service
	s   *server
}

func registerQuestionAPI(g *echo.Group, auth echo.MiddlewareFunc, s *server) {
	api := questionApi{svc: s.QuestionSvc, s: s}

	qg := g.Group("/questions")
	qg.GET("", api.query)
	qg.POST("", api.create, auth)
	qg.GET("/subject/:subjectId", api.queryBySubject)
	qg.GET("/:id", api.retrieve)
	qg.PATCH("/:id", api.update, auth)
	qg.GET("/:id/answers", api.queryAnswers)
	qg.POST("/:id/answers", api.answer, auth)

	g.POST("/answers/:id/accept", api.accept, auth)
}

// Handlers

func (api *questionApi) query(ctx echo.Context) error {
	questions, err := api.svc.Query(ctx.Request().Context(), bindPagination(ctx))
	if err != nil {
		return errors.Wrap(err, "querying questions")
	}
	return ctx.JSON(http.StatusOK, questions)
}

func (api *questionApi) create(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}

	var data question.NewQuestion
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewQuestion")
	}
	if err = data.Validate(api.s.Validate); err != nil {
		return err
	}

	q, err := api.svc.Ask(ctx.Request().Context(), usr.ID, data)
	if err != nil {
		return errors.Wrap(err, "asking question")
	}
	api.s.Metrics.Event(metrics.EventQuestionAsked)
	return ctx.JSON(http.StatusCreated, q)
}

func (api *questionApi) queryBySubject(ctx echo.Context) error {
	subjectID, err := pathID(ctx, "subjectId")
	if err != nil {
		return err
	}
	questions, err := api.svc.QueryBySubject(ctx.Request().Context(), subjectID)
	if err != nil {
		return errors.Wrap(err, "querying questions by subject")
	}
	return ctx.JSON(http.StatusOK, questions)
}

func (api *questionApi) retrieve(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	q, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "getting question")
	}
	return ctx.JSON(http.StatusOK, q)
}

func (api *questionApi) update(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}

	var data question.QuestionUpdate
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to QuestionUpdate")
	}
	if err = data.Validate(api.s.Validate); err != nil {
		return err
	}

	q, err := api.svc.Update(ctx.Request().Context(), usr.ID, id, data)
	if err != nil {
		return errors.Wrap(err, "updating question")
	}
	return ctx.JSON(http.StatusOK, q)
}

func (api *questionApi) queryAnswers(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	answers, err := api.svc.QueryAnswers(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "querying answers")
	}
	return ctx.JSON(http.StatusOK, answers)
}

func (api *questionApi) answer(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}

	var data question.NewAnswer
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAnswer")
	}
	if err = data.Validate(api.s.Validate); err != nil {
		return err
	}

	a, err := api.svc.Answer(ctx.Request().Context(), usr.ID, id, data)
	if err != nil {
		return errors.Wrap(err, "answering question")
	}
	api.s.Metrics.Event(metrics.EventAnswerGiven)
	return ctx.JSON(http.StatusCreated, a)
}

func (api *questionApi) accept(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}

	a, err := api.svc.Accept(ctx.Request().Context(), usr.ID, id)
	if err != nil {
		return errors.Wrap(err, "accepting answer")
	}
	api.s.Metrics.Event(metrics.EventAnswerAccepted)
	return ctx.JSON(http.StatusOK, a)
}
