package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/educode/core/admin"
	"github.com/trezcool/educode/core/store"
)

type adminApi struct {
	store *store.Store
}

func registerAdminAPI(g *echo.Group, auth echo.MiddlewareFunc, st *store.Store) {
	api := adminApi{store: st}

	ag := g.Group("/admin", auth)
	adm := adminMiddleware()

	// any user may file a report
	ag.POST("/reports", api.addReport)

	ag.GET("/reports", api.reports, adm)
	ag.PUT("/reports/:id/status", api.updateReportStatus, adm)
	ag.POST("/reports/:id/reply", api.replyToReport, adm)
	ag.GET("/backups", api.backups, adm)
	ag.POST("/backups", api.createBackup, adm)
	ag.POST("/backups/:id/restore", api.restore, adm)
	ag.GET("/restores/:id", api.restoreJob, adm)
	ag.DELETE("/restores/:id", api.cancelRestore, adm)
	ag.GET("/config", api.config, adm)
	ag.PUT("/config", api.updateConfig, adm)
	ag.GET("/transactions", api.transactions, adm)
	ag.GET("/notifications", api.notifications, adm)
}

// Handlers

func (api *adminApi) addReport(ctx echo.Context) error {
	var data admin.NewReport
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewReport")
	}
	sess, err := getSession(ctx)
	if err != nil {
		return err
	}
	r, err := sess.AddReport(data)
	if err != nil {
		return errors.Wrap(err, "adding report")
	}
	return ctx.JSON(http.StatusCreated, r)
}

func (api *adminApi) reports(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.store.Reports())
}

func (api *adminApi) updateReportStatus(ctx echo.Context) error {
	var data admin.ReportStatusUpdate
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ReportStatusUpdate")
	}
	sess, err := getSession(ctx)
	if err != nil {
		return err
	}
	r, err := sess.UpdateReportStatus(ctx.Param("id"), data.Status)
	if err != nil {
		return errors.Wrap(err, "updating report status")
	}
	return ctx.JSON(http.StatusOK, r)
}

func (api *adminApi) replyToReport(ctx echo.Context) error {
	var data admin.ReportReply
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ReportReply")
	}
	sess, err := getSession(ctx)
	if err != nil {
		return err
	}
	r, err := sess.ReplyToReport(ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "replying to report")
	}
	return ctx.JSON(http.StatusOK, r)
}

func (api *adminApi) backups(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.store.Backups())
}

func (api *adminApi) createBackup(ctx echo.Context) error {
	sess, err := getSession(ctx)
	if err != nil {
		return err
	}
	b, err := sess.CreateBackup()
	if err != nil {
		return errors.Wrap(err, "creating backup")
	}
	return ctx.JSON(http.StatusCreated, b)
}

func (api *adminApi) restore(ctx echo.Context) error {
	sess, err := getSession(ctx)
	if err != nil {
		return err
	}
	job, err := sess.RestoreBackup(ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "restoring backup")
	}
	return ctx.JSON(http.StatusAccepted, job)
}

func (api *adminApi) restoreJob(ctx echo.Context) error {
	job, err := api.store.RestoreJob(ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding restore job")
	}
	return ctx.JSON(http.StatusOK, job)
}

func (api *adminApi) cancelRestore(ctx echo.Context) error {
	sess, err := getSession(ctx)
	if err != nil {
		return err
	}
	job, err := sess.CancelRestore(ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "cancelling restore")
	}
	return ctx.JSON(http.StatusOK, job)
}

func (api *adminApi) config(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.store.SystemConfig())
}

func (api *adminApi) updateConfig(ctx echo.Context) error {
	var data admin.SystemConfig
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SystemConfig")
	}
	sess, err := getSession(ctx)
	if err != nil {
		return err
	}
	sc, err := sess.UpdateSystemConfig(data)
	if err != nil {
		return errors.Wrap(err, "updating system config")
	}
	return ctx.JSON(http.StatusOK, sc)
}

func (api *adminApi) transactions(ctx echo.Context) error {
	txns := api.store.Transactions()
	var page Page
	page.Bind(ctx)
	lo, hi := page.Bounds(len(txns))
	return ctx.JSON(http.StatusOK, txns[lo:hi])
}

func (api *adminApi) notifications(ctx echo.Context) error {
	ntfs := api.store.AllNotifications()
	var page Page
	page.Bind(ctx)
	lo, hi := page.Bounds(len(ntfs))
	return ctx.JSON(http.StatusOK, ntfs[lo:hi])
}
