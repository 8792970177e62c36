package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/educode/core"
	"github.com/trezcool/educode/core/course"
	"github.com/trezcool/educode/core/store"
)

type submissionApi struct {
	store *store.Store
	ai    core.AIService
}

func registerSubmissionAPI(g *echo.Group, auth echo.MiddlewareFunc, st *store.Store, ai core.AIService) {
	api := submissionApi{store: st, ai: ai}

	sg := g.Group("/submissions", auth)
	sg.POST("", api.submit)
	sg.GET("", api.query)
	sg.GET("/status", api.status)
	sg.GET("/:id", api.retrieve)
	sg.PUT("/:id/grade", api.grade)
	sg.POST("/:id/auto-grade", api.autoGrade)
}

// Handlers

func (api *submissionApi) submit(ctx echo.Context) error {
	var data course.NewSubmission
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSubmission")
	}
	sess, err := getSession(ctx)
	if err != nil {
		return err
	}
	sub, err := sess.SubmitAssignment(data)
	if err != nil {
		return errors.Wrap(err, "submitting assignment")
	}
	return ctx.JSON(http.StatusCreated, sub)
}

func (api *submissionApi) query(ctx echo.Context) error {
	sess, err := getSession(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sess.MySubmissions())
}

func (api *submissionApi) status(ctx echo.Context) error {
	sess, err := getSession(ctx)
	if err != nil {
		return err
	}
	lessonID := ctx.QueryParam("lesson_id")
	return ctx.JSON(http.StatusOK, StatusResponse{LessonID: lessonID, Status: sess.SubmissionStatus(lessonID)})
}

// retrieve shows a submission to its author and to the staff; anyone else gets a 404.
func (api *submissionApi) retrieve(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	sub, err := api.store.Submission(ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding submission by ID")
	}
	if sub.StudentID != usr.ID && !usr.IsStaff() {
		return errHttpNotFound
	}
	return ctx.JSON(http.StatusOK, sub)
}

func (api *submissionApi) grade(ctx echo.Context) error {
	var data course.Grade
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Grade")
	}
	sess, err := getSession(ctx)
	if err != nil {
		return err
	}
	sub, err := sess.GradeAssignment(ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "grading assignment")
	}
	return ctx.JSON(http.StatusOK, sub)
}

func (api *submissionApi) autoGrade(ctx echo.Context) error {
	var data AutoGradeRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AutoGradeRequest")
	}
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	if !usr.IsStaff() {
		return errHttpForbidden
	}
	if err := api.store.ConsumeAIRequest(usr.ID); err != nil {
		return errors.Wrap(err, "consuming AI request")
	}
	sess, err := getSession(ctx)
	if err != nil {
		return err
	}
	sub, err := sess.AutoGradeAssignment(ctx.Request().Context(), api.ai, ctx.Param("id"), data.Task)
	if err != nil {
		return errors.Wrap(err, "auto-grading assignment")
	}
	return ctx.JSON(http.StatusOK, sub)
}

type (
	StatusResponse struct {
		LessonID string                  `json:"lesson_id"`
		Status   course.SubmissionStatus `json:"status"`
	}

	AutoGradeRequest struct {
		Task string `json:"task"`
	}
)
