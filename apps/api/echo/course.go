package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/educode/core/course"
	"github.com/trezcool/educode/core/store"
)

type courseApi struct {
	store *store.Store
}

func registerCourseAPI(g *echo.Group, auth echo.MiddlewareFunc, st *store.Store) {
	api := courseApi{store: st}

	cg := g.Group("/courses")

	// un-authed endpoints
	cg.GET("", api.query)
	cg.GET("/:id", api.retrieve)
	cg.GET("/:id/leaderboard", api.leaderboard)
	cg.GET("/:id/forum", api.forum)

	// authed endpoints
	cg.POST("", api.create, auth)
	cg.GET("/enrolled", api.enrolled, auth)
	cg.GET("/assignments", api.assignments, auth)
	cg.PATCH("/:id", api.update, auth)
	cg.PUT("/:id/status", api.updateStatus, auth)
	cg.PUT("/:id/level", api.updateLevel, auth)
	cg.POST("/:id/lessons", api.addLesson, auth)
	cg.POST("/:id/sessions", api.addLiveSession, auth)
	cg.POST("/:id/reviews", api.addReview, auth)
	cg.POST("/:id/enroll", api.enroll, auth)
	cg.GET("/:id/submissions", api.submissions, auth)
}

// Handlers

// query lists the catalog. Students and guests only ever see published courses.
func (api *courseApi) query(ctx echo.Context) error {
	var filter course.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return ctx.JSON(http.StatusOK, []course.Course{})
	}
	if usr, err := getContextUser(ctx); err != nil || !usr.IsStaff() {
		filter.Status = course.StatusPublished
	}
	var page Page
	page.Bind(ctx)

	courses := api.store.Courses(filter)
	lo, hi := page.Bounds(len(courses))
	return ctx.JSON(http.StatusOK, courses[lo:hi])
}

func (api *courseApi) retrieve(ctx echo.Context) error {
	c, err := api.store.Course(ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding course by ID")
	}
	if c.Status != course.StatusPublished {
		if usr, err := getContextUser(ctx); err != nil || !usr.IsStaff() {
			return errHttpNotFound
		}
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *courseApi) leaderboard(ctx echo.Context) error {
	board, err := api.store.Leaderboard(ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "computing leaderboard")
	}
	return ctx.JSON(http.StatusOK, board)
}

func (api *courseApi) forum(ctx echo.Context) error {
	if _, err := api.store.Course(ctx.Param("id")); err != nil {
		return errors.Wrap(err, "finding course by ID")
	}
	return ctx.JSON(http.StatusOK, api.store.ForumPosts(ctx.Param("id")))
}

func (api *courseApi) create(ctx echo.Context) error {
	var data course.NewCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourse")
	}
	sess, err := getSession(ctx)
	if err != nil {
		return err
	}
	c, err := sess.AddCourse(data)
	if err != nil {
		return errors.Wrap(err, "adding course")
	}
	return ctx.JSON(http.StatusCreated, c)
}

func (api *courseApi) enrolled(ctx echo.Context) error {
	sess, err := getSession(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sess.EnrolledCourses())
}

func (api *courseApi) assignments(ctx echo.Context) error {
	sess, err := getSession(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sess.MyAssignments())
}

func (api *courseApi) update(ctx echo.Context) error {
	var data course.UpdateCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateCourse")
	}
	sess, err := getSession(ctx)
	if err != nil {
		return err
	}
	c, err := sess.UpdateCourse(ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating course")
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *courseApi) updateStatus(ctx echo.Context) error {
	var data StatusRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to StatusRequest")
	}
	sess, err := getSession(ctx)
	if err != nil {
		return err
	}
	c, err := sess.UpdateCourseStatus(ctx.Param("id"), course.Status(data.Status))
	if err != nil {
		return errors.Wrap(err, "updating course status")
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *courseApi) updateLevel(ctx echo.Context) error {
	var data LevelRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LevelRequest")
	}
	sess, err := getSession(ctx)
	if err != nil {
		return err
	}
	c, err := sess.UpdateCourseLevel(ctx.Param("id"), course.Level(data.Level))
	if err != nil {
		return errors.Wrap(err, "updating course level")
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *courseApi) addLesson(ctx echo.Context) error {
	var data course.NewLesson
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewLesson")
	}
	sess, err := getSession(ctx)
	if err != nil {
		return err
	}
	lesson, err := sess.AddLessonToCourse(ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "adding lesson")
	}
	return ctx.JSON(http.StatusCreated, lesson)
}

func (api *courseApi) addLiveSession(ctx echo.Context) error {
	var data course.NewLiveSession
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewLiveSession")
	}
	sess, err := getSession(ctx)
	if err != nil {
		return err
	}
	ls, err := sess.AddLiveSessionToCourse(ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "adding live session")
	}
	return ctx.JSON(http.StatusCreated, ls)
}

func (api *courseApi) addReview(ctx echo.Context) error {
	var data course.NewReview
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewReview")
	}
	sess, err := getSession(ctx)
	if err != nil {
		return err
	}
	c, err := sess.AddReview(ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "adding review")
	}
	return ctx.JSON(http.StatusCreated, c)
}

// enroll takes the payment confirmation of priced courses in the optional `transaction` field.
func (api *courseApi) enroll(ctx echo.Context) error {
	var data EnrollRequest
	if ctx.Request().ContentLength != 0 {
		if err := ctx.Bind(&data); err != nil {
			return errors.Wrap(err, "binding to EnrollRequest")
		}
	}
	sess, err := getSession(ctx)
	if err != nil {
		return err
	}
	c, err := sess.EnrollCourse(ctx.Param("id"), data.Transaction)
	if err != nil {
		return errors.Wrap(err, "enrolling in course")
	}
	return ctx.JSON(http.StatusOK, c)
}

// submissions lists the submissions of a course to the staff.
func (api *courseApi) submissions(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	if !usr.IsStaff() {
		return errHttpForbidden
	}
	if _, err := api.store.Course(ctx.Param("id")); err != nil {
		return errors.Wrap(err, "finding course by ID")
	}
	return ctx.JSON(http.StatusOK, api.store.Submissions(ctx.Param("id")))
}

type (
	LevelRequest struct {
		Level string `json:"level"`
	}

	EnrollRequest struct {
		Transaction *course.Transaction `json:"transaction"`
	}
)
