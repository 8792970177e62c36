package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"

	dig_container "github.com/trezcool/educode/apps/api/di/dig"
	echoapi "github.com/trezcool/educode/apps/api/echo"
	"github.com/trezcool/educode/core"
	"github.com/trezcool/educode/core/store"
)

// app is everything the dig container builds for the API process.
type app struct {
	conf   *core.Config
	logger core.Logger
	store  *store.Store
	server *echoapi.Server
}

func startWithDig() {
	c := dig_container.New()

	err := c.Invoke(func(conf *core.Config, logger core.Logger, st *store.Store, server *echoapi.Server) {
		a := app{conf: conf, logger: logger, store: st, server: server}
		a.init()
		defer a.logger.Info("Application stopped")
		defer a.store.Close()

		a.serveDebug()
		go a.server.Start()
		a.waitForShutdown()
	})
	if err != nil {
		log.Fatal(err)
	}
}

func (a app) init() {
	a.logger.Info(fmt.Sprintf("Application initializing : version %q", a.conf.Build), map[string]interface{}{"env": a.conf.Env})

	if err := core.ParseEmailTemplates(a.conf, a.logger); err != nil {
		a.logger.Fatal("parsing email templates", err)
	}

	if err := ensureSuperAdmin(a.conf, a.store, readPassword); err != nil {
		a.logger.Fatal("provisioning super-admin", err)
	}
}

// serveDebug exposes /debug/vars (registered on the default mux by expvar) on the debug host.
func (a app) serveDebug() {
	expvar.NewString("build").Set(a.conf.Build)
	expvar.NewString("env").Set(a.conf.Env)
	expvar.Publish("store", expvar.Func(func() interface{} { return a.store.Stats() }))

	go func() {
		if err := http.ListenAndServe(a.conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			a.logger.Error("debug server closed", err)
		}
	}()
}

// waitForShutdown blocks until the server fails or a shutdown signal arrives,
// then drains in-flight requests within the shutdown timeout.
func (a app) waitForShutdown() {
	select {
	case err := <-a.server.Errors():
		a.logger.Fatal("server error", err)

	case sig := <-a.server.ShutdownSignal():
		a.logger.Info("start shutdown", map[string]interface{}{"signal": sig.String()})

		ctx, cancel := context.WithTimeout(context.Background(), a.conf.Server.ShutdownTimeout)
		defer cancel()

		if err := a.server.Shutdown(ctx); err != nil {
			a.logger.Error("could not stop server gracefully", err)
			if err = a.server.Close(); err != nil {
				a.logger.Fatal("could not force stop server", err)
			}
		}
	}
}
