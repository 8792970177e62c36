package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/educode/core/social"
	"github.com/trezcool/educode/core/store"
)

type messageApi struct {
	store *store.Store
}

func registerMessageAPI(g *echo.Group, auth echo.MiddlewareFunc, st *store.Store) {
	api := messageApi{store: st}

	mg := g.Group("/messages")

	// guests reach the support channel without an account
	mg.POST("/support", api.support)

	mg.POST("", api.send, auth)
	mg.GET("/conversations", api.conversations, auth)
	mg.GET("/conversations/:key", api.conversation, auth)
	mg.POST("/conversations/:key", api.reply, auth)
}

// Handlers

func (api *messageApi) support(ctx echo.Context) error {
	var data SupportRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SupportRequest")
	}
	sess, err := getSession(ctx)
	if err != nil {
		return err
	}
	msg, err := sess.SendSupportMessage(data.GuestID, social.MessageContent{Content: data.Content})
	if err != nil {
		return errors.Wrap(err, "sending support message")
	}
	return ctx.JSON(http.StatusCreated, msg)
}

func (api *messageApi) send(ctx echo.Context) error {
	var data social.NewPrivateMessage
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewPrivateMessage")
	}
	sess, err := getSession(ctx)
	if err != nil {
		return err
	}
	msg, err := sess.SendPrivateMessage(data)
	if err != nil {
		return errors.Wrap(err, "sending private message")
	}
	return ctx.JSON(http.StatusCreated, msg)
}

func (api *messageApi) conversations(ctx echo.Context) error {
	sess, err := getSession(ctx)
	if err != nil {
		return err
	}
	convs, err := sess.Conversations()
	if err != nil {
		return errors.Wrap(err, "listing conversations")
	}
	return ctx.JSON(http.StatusOK, convs)
}

func (api *messageApi) conversation(ctx echo.Context) error {
	sess, err := getSession(ctx)
	if err != nil {
		return err
	}
	msgs, err := sess.ConversationMessages(ctx.Param("key"))
	if err != nil {
		return errors.Wrap(err, "listing conversation messages")
	}
	return ctx.JSON(http.StatusOK, msgs)
}

func (api *messageApi) reply(ctx echo.Context) error {
	var data social.MessageContent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to MessageContent")
	}
	sess, err := getSession(ctx)
	if err != nil {
		return err
	}
	msg, err := sess.ReplyInConversation(ctx.Param("key"), data)
	if err != nil {
		return errors.Wrap(err, "replying in conversation")
	}
	return ctx.JSON(http.StatusCreated, msg)
}

type SupportRequest struct {
	GuestID string `json:"guest_id"`
	Content string `json:"content"`
}
