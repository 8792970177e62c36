package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/educode/core"
	"github.com/trezcool/educode/core/store"
)

// aiApi fronts the AI collaborator. Its answers are always usable, so upstream failures are
// logged and the fallback is returned with a 200.
type aiApi struct {
	store  *store.Store
	ai     core.AIService
	logger core.Logger
}

func registerAIAPI(g *echo.Group, st *store.Store, ai core.AIService, logger core.Logger) {
	api := aiApi{store: st, ai: ai, logger: logger}

	ag := g.Group("/ai", api.quotaMiddleware)
	ag.POST("/chat", api.chat)
	ag.POST("/grade", api.grade)
	ag.POST("/run", api.run)
	ag.POST("/intent", api.intent)
}

// quotaMiddleware counts the request against the caller's daily AI allowance; guests share one.
func (api *aiApi) quotaMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		var userID string
		if usr, err := getContextUser(ctx); err == nil {
			userID = usr.ID
		}
		if err := api.store.ConsumeAIRequest(userID); err != nil {
			return errors.Wrap(err, "consuming AI request")
		}
		return next(ctx)
	}
}

func (api *aiApi) logFailure(op string, err error) {
	if err != nil {
		api.logger.Warn("AI "+op+" failed", err)
	}
}

func (api *aiApi) chat(ctx echo.Context) error {
	var data ChatRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ChatRequest")
	}
	if err := core.ValidateStruct(&data); err != nil {
		return err
	}
	text, err := api.ai.Chat(ctx.Request().Context(), data.Prompt, data.History)
	api.logFailure("chat", err)
	return ctx.JSON(http.StatusOK, ChatResponse{Text: text})
}

func (api *aiApi) grade(ctx echo.Context) error {
	var data GradeRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to GradeRequest")
	}
	if err := core.ValidateStruct(&data); err != nil {
		return err
	}
	res, err := api.ai.GradeCode(ctx.Request().Context(), data.Code, data.Task)
	api.logFailure("grading", err)
	return ctx.JSON(http.StatusOK, res)
}

func (api *aiApi) run(ctx echo.Context) error {
	var data RunRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to RunRequest")
	}
	if err := core.ValidateStruct(&data); err != nil {
		return err
	}
	res, err := api.ai.RunCode(ctx.Request().Context(), data.Code, data.Language)
	api.logFailure("code run", err)
	return ctx.JSON(http.StatusOK, res)
}

func (api *aiApi) intent(ctx echo.Context) error {
	var data IntentRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to IntentRequest")
	}
	if err := core.ValidateStruct(&data); err != nil {
		return err
	}
	res, err := api.ai.ClassifyIntent(ctx.Request().Context(), data.Query)
	api.logFailure("intent classification", err)
	return ctx.JSON(http.StatusOK, res)
}

type (
	ChatRequest struct {
		Prompt  string          `json:"prompt" validate:"required,notblank"`
		History []core.ChatTurn `json:"history"`
	}

	ChatResponse struct {
		Text string `json:"text"`
	}

	GradeRequest struct {
		Code string `json:"code" validate:"required,notblank"`
		Task string `json:"task"`
	}

	RunRequest struct {
		Code     string `json:"code" validate:"required,notblank"`
		Language string `json:"language" validate:"required"`
	}

	IntentRequest struct {
		Query string `json:"query" validate:"required,notblank"`
	}
)
