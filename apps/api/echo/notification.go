package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type notificationApi struct{}

func registerNotificationAPI(g *echo.Group, auth echo.MiddlewareFunc) {
	api := notificationApi{}

	ng := g.Group("/notifications", auth)
	ng.GET("", api.query)
	ng.POST("/read", api.markRead)
}

func (api *notificationApi) query(ctx echo.Context) error {
	sess, err := getSession(ctx)
	if err != nil {
		return err
	}
	ntfs := sess.Notifications()
	var page Page
	page.Bind(ctx)
	lo, hi := page.Bounds(len(ntfs))
	return ctx.JSON(http.StatusOK, ntfs[lo:hi])
}

func (api *notificationApi) markRead(ctx echo.Context) error {
	sess, err := getSession(ctx)
	if err != nil {
		return err
	}
	n, err := sess.MarkNotificationsRead()
	if err != nil {
		return errors.Wrap(err, "marking notifications read")
	}
	return ctx.JSON(http.StatusOK, MarkReadResponse{Updated: n})
}

type MarkReadResponse struct {
	Updated int `json:"updated"`
}
