package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/educode/core/social"
	"github.com/trezcool/educode/core/store"
)

type groupApi struct {
	store *store.Store
}

func registerGroupAPI(g *echo.Group, auth echo.MiddlewareFunc, st *store.Store) {
	api := groupApi{store: st}

	gg := g.Group("/groups")
	gg.GET("", api.query)
	gg.GET("/:id", api.retrieve)
	gg.GET("/:id/posts", api.posts)
	gg.POST("", api.create, auth)
	gg.POST("/:id/join", api.join, auth)
	gg.POST("/:id/posts", api.addPost, auth)

	fg := g.Group("/forum")
	fg.GET("", api.forum)
	fg.POST("", api.addForumPost, auth)
	fg.POST("/:id/replies", api.reply, auth)

	pg := g.Group("/projects")
	pg.GET("", api.projects)
	pg.POST("", api.addProject, auth)
}

// Handlers

func (api *groupApi) query(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.store.StudyGroups())
}

func (api *groupApi) retrieve(ctx echo.Context) error {
	grp, err := api.store.StudyGroup(ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding study group by ID")
	}
	return ctx.JSON(http.StatusOK, grp)
}

func (api *groupApi) posts(ctx echo.Context) error {
	posts, err := api.store.GroupPosts(ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "listing group posts")
	}
	return ctx.JSON(http.StatusOK, posts)
}

func (api *groupApi) create(ctx echo.Context) error {
	var data social.NewStudyGroup
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudyGroup")
	}
	sess, err := getSession(ctx)
	if err != nil {
		return err
	}
	grp, err := sess.CreateGroup(data)
	if err != nil {
		return errors.Wrap(err, "creating study group")
	}
	return ctx.JSON(http.StatusCreated, grp)
}

func (api *groupApi) join(ctx echo.Context) error {
	sess, err := getSession(ctx)
	if err != nil {
		return err
	}
	grp, err := sess.JoinGroup(ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "joining study group")
	}
	return ctx.JSON(http.StatusOK, grp)
}

func (api *groupApi) addPost(ctx echo.Context) error {
	var data social.MessageContent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to MessageContent")
	}
	return api.createPost(ctx, social.NewForumPost{GroupID: ctx.Param("id"), Content: data.Content})
}

func (api *groupApi) forum(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.store.ForumPosts(ctx.QueryParam("course_id")))
}

func (api *groupApi) addForumPost(ctx echo.Context) error {
	var data social.NewForumPost
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewForumPost")
	}
	return api.createPost(ctx, data)
}

func (api *groupApi) createPost(ctx echo.Context, np social.NewForumPost) error {
	sess, err := getSession(ctx)
	if err != nil {
		return err
	}
	post, err := sess.AddForumPost(np)
	if err != nil {
		return errors.Wrap(err, "adding forum post")
	}
	return ctx.JSON(http.StatusCreated, post)
}

func (api *groupApi) reply(ctx echo.Context) error {
	var data social.MessageContent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to MessageContent")
	}
	sess, err := getSession(ctx)
	if err != nil {
		return err
	}
	post, err := sess.AddForumReply(ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "replying to forum post")
	}
	return ctx.JSON(http.StatusCreated, post)
}

func (api *groupApi) projects(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.store.Projects(ctx.QueryParam("student_id")))
}

func (api *groupApi) addProject(ctx echo.Context) error {
	var data social.NewProject
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewProject")
	}
	sess, err := getSession(ctx)
	if err != nil {
		return err
	}
	p, err := sess.AddProject(data)
	if err != nil {
		return errors.Wrap(err, "adding project")
	}
	return ctx.JSON(http.StatusCreated, p)
}
