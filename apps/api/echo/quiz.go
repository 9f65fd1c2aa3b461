package echoapi

import (
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/nexclass/nexclass/core"
	"github.com/nexclass/nexclass/core/quiz"
)

type quizApi struct {
	svc      *quiz.Service
	ctrl     *quiz.Controller
	validate *validator.Validate
}

func registerQuizAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	session echo.MiddlewareFunc,
	svc *quiz.Service,
	ctrl *quiz.Controller,
	validate *validator.Validate,
) {
	api := quizApi{
		svc:      svc,
		ctrl:     ctrl,
		validate: validate,
	}

	qg := g.Group("/quizzes", jwt)
	qg.GET("", api.query)
	qg.POST("", api.create, teacherMiddleware())
	qg.GET("/:id", api.retrieve, teacherMiddleware())
	qg.POST("/:id/questions", api.createQuestion, teacherMiddleware())

	// playing
	qg.GET("/:id/play", api.play, studentMiddleware(), session)
	qg.POST("/:id/play", api.submit, studentMiddleware(), session)
	qg.GET("/:id/result", api.result, studentMiddleware())

	g.POST("/questions/:id/answers", api.createAnswer, jwt, teacherMiddleware())
	g.GET("/results", api.results, jwt, studentMiddleware())
}

func playPath(quizID string, index int) string {
	return fmt.Sprintf("/v1/quizzes/%s/play?%s=%d", quizID, questionParam, index)
}

func resultPath(quizID string) string {
	return fmt.Sprintf("/v1/quizzes/%s/result", quizID)
}

func attempt(ctx echo.Context) (quiz.Attempt, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return quiz.Attempt{}, errors.Wrap(err, "getting context claims")
	}
	return quiz.Attempt{StudentID: claims.Subject, SessionID: getContextSessionID(ctx)}, nil
}

// Handlers

func (api *quizApi) play(ctx echo.Context) error {
	a, err := attempt(ctx)
	if err != nil {
		return err
	}
	quizID := ctx.Param("id")

	step, err := api.ctrl.Resume(ctx.Request().Context(), a, quizID, bindQuestionIndex(ctx))
	if err != nil {
		return errors.Wrap(err, "resuming quiz")
	}
	if step.Complete {
		return ctx.Redirect(http.StatusSeeOther, resultPath(quizID))
	}
	return ctx.JSON(http.StatusOK, step.Question)
}

func (api *quizApi) submit(ctx echo.Context) error {
	var data SubmitAnswerRequest
	if err := bindValid(ctx, &data, api.validate); err != nil {
		return err
	}
	a, err := attempt(ctx)
	if err != nil {
		return err
	}
	quizID := ctx.Param("id")

	next, err := api.ctrl.SubmitAnswer(ctx.Request().Context(), a, quizID, data.Question, data.AnswerID)
	if err != nil {
		return errors.Wrap(err, "submitting answer")
	}
	return ctx.Redirect(http.StatusSeeOther, playPath(quizID, next))
}

func (api *quizApi) result(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	res, err := api.svc.GetStudentResult(ctx.Request().Context(), claims.Subject, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting result")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *quizApi) results(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	results, err := api.svc.GetCompletedQuizzes(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return errors.Wrap(err, "getting completed quizzes")
	}
	if results == nil {
		results = []quiz.Result{}
	}
	return ctx.JSON(http.StatusOK, results)
}

func (api *quizApi) query(ctx echo.Context) error {
	var filter quiz.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return ctx.JSON(http.StatusOK, []quiz.Quiz{})
	}
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx)

	quizzes, err := api.svc.ListQuizzes(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying quizzes")
	}
	if quizzes == nil {
		quizzes = []quiz.Quiz{}
	}
	return ctx.JSON(http.StatusOK, quizzes)
}

func (api *quizApi) create(ctx echo.Context) error {
	var data quiz.NewQuiz
	if err := bindValid(ctx, &data, api.validate); err != nil {
		return err
	}
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	qz, err := api.svc.CreateQuiz(ctx.Request().Context(), claims.Subject, data)
	if err != nil {
		return errors.Wrap(err, "creating quiz")
	}
	return ctx.JSON(http.StatusCreated, qz)
}

func (api *quizApi) retrieve(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	detail, err := api.svc.GetQuizDetail(ctx.Request().Context(), claims.Subject, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting quiz detail")
	}
	return ctx.JSON(http.StatusOK, detail)
}

func (api *quizApi) createQuestion(ctx echo.Context) error {
	var data quiz.NewQuestion
	if err := bindValid(ctx, &data, api.validate); err != nil {
		return err
	}
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	question, err := api.svc.CreateQuestion(ctx.Request().Context(), claims.Subject, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "creating question")
	}
	return ctx.JSON(http.StatusCreated, question)
}

func (api *quizApi) createAnswer(ctx echo.Context) error {
	var data quiz.NewAnswer
	if err := bindValid(ctx, &data, api.validate); err != nil {
		return err
	}
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	answer, err := api.svc.CreateAnswer(ctx.Request().Context(), claims.Subject, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "creating answer")
	}
	return ctx.JSON(http.StatusCreated, answer)
}

// SubmitAnswerRequest is the answer picked for the question at index Question.
type SubmitAnswerRequest struct {
	Question int    `json:"question" form:"question" validate:"min=0"`
	AnswerID string `json:"answer_id" form:"answer_id" validate:"required"`
}

func (sr *SubmitAnswerRequest) Validate(validate *validator.Validate) error {
	sr.AnswerID = core.CleanString(sr.AnswerID)
	return validate.Struct(sr)
}
