package dig_container

import (
	"log"
	"os"

	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/trezcool/educode/apps/api/echo"
	"github.com/trezcool/educode/core"
	"github.com/trezcool/educode/core/store"
	aisvc "github.com/trezcool/educode/services/ai"
	emailsvc "github.com/trezcool/educode/services/email"
	logsvc "github.com/trezcool/educode/services/logger"
)

func newLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "API : ", log.LstdFlags)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	if conf.Debug {
		logger.Enable(false)
	}
	return logger
}

func newEmailService(conf *core.Config, logger core.Logger) core.EmailService {
	if conf.Debug {
		return emailsvc.NewConsoleService(conf, logger)
	}
	return emailsvc.NewSendgridService(conf, logger)
}

// newAIService talks to Gemini when an API key is configured and falls back to the offline dummy otherwise.
func newAIService(conf *core.Config, logger core.Logger) core.AIService {
	if conf.AI.APIKey == "" {
		logger.Warn("no AI API key configured: AI features answer with fallbacks")
		return aisvc.NewDummyService(logger)
	}
	return aisvc.NewGeminiService(conf, logger)
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newEmailService))
	must(c.Provide(newAIService))
	must(c.Provide(store.New))
	must(c.Provide(echoapi.NewServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
