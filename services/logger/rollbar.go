// Package logsvc implements core.Logger on top of the standard logger, reporting to Rollbar.
package logsvc

import (
	"fmt"
	"io/ioutil"
	"log"
	"sort"
	"strings"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"

	"github.com/trezcool/educode/core"
	"github.com/trezcool/educode/core/user"
)

const redacted = "[redacted]"

// sensitive field keys are never printed nor reported
var sensitive = []string{"password", "token", "secret", "apikey"}

type level struct {
	name    string
	rollbar string
	rank    int
}

var (
	levelDebug = level{"DEBUG", rollbar.DEBUG, 0}
	levelInfo  = level{"INFO", rollbar.INFO, 1}
	levelWarn  = level{"WARN", rollbar.WARN, 2}
	levelError = level{"ERROR", rollbar.ERR, 3}
	levelFatal = level{"FATAL", rollbar.CRIT, 4}
)

type RollbarLogger struct {
	std     *log.Logger
	minSent int // lowest level rank reported to Rollbar
}

var _ core.Logger = (*RollbarLogger)(nil)

func NewRollbarLogger(std *log.Logger, conf *core.Config) *RollbarLogger {
	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnvironment(conf.Env)
	rollbar.SetServerHost(conf.Server.Host)
	rollbar.SetCodeVersion(conf.Build)
	rollbar.SetStackTracer(errors.StackTracer)
	rollbar.SetEnabled(conf.RollbarToken != "" && !conf.TestMode)
	return &RollbarLogger{std: std, minSent: levelInfo.rank}
}

// NewDiscardLogger returns a logger that reports nowhere.
func NewDiscardLogger() *RollbarLogger {
	rollbar.SetEnabled(false)
	return &RollbarLogger{std: log.New(ioutil.Discard, "", 0), minSent: levelFatal.rank + 1}
}

func (l *RollbarLogger) Enable(enabled bool) {
	rollbar.SetEnabled(enabled)
}

// entry is the parsed form of the variadic logger args.
type entry struct {
	err    error
	fields map[string]interface{}
	usr    *user.User
	extra  []interface{}
}

func parse(args []interface{}) entry {
	var e entry
	for _, arg := range args {
		switch v := arg.(type) {
		case nil:
		case error:
			if e.err == nil {
				e.err = v
			} else {
				e.extra = append(e.extra, v)
			}
		case map[string]interface{}:
			if e.fields == nil {
				e.fields = make(map[string]interface{}, len(v))
			}
			for k, val := range v {
				e.fields[k] = redact(k, val)
			}
		case user.User:
			if e.usr == nil && v.ID != "" {
				usr := v
				e.usr = &usr
			}
		case *user.User:
			if e.usr == nil && v != nil && v.ID != "" {
				e.usr = v
			}
		default:
			e.extra = append(e.extra, v)
		}
	}
	return e
}

func redact(key string, val interface{}) interface{} {
	k := strings.ToLower(key)
	for _, s := range sensitive {
		if strings.Contains(k, s) {
			return redacted
		}
	}
	return val
}

func (e entry) format(lvl level, msg string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", lvl.name, msg)
	if e.err != nil {
		fmt.Fprintf(&b, " err=%q", e.err.Error())
	}
	if e.usr != nil {
		fmt.Fprintf(&b, " user=%s", e.usr.ID)
	}
	keys := make([]string, 0, len(e.fields))
	for k := range e.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, e.fields[k])
	}
	for _, x := range e.extra {
		fmt.Fprintf(&b, " %+v", x)
	}
	return b.String()
}

func (e entry) report(lvl level, msg string) {
	if e.usr != nil {
		rollbar.SetPerson(e.usr.ID, e.usr.Name, e.usr.Email)
	} else {
		rollbar.ClearPerson()
	}

	extras := make(map[string]interface{}, len(e.fields)+2)
	for k, v := range e.fields {
		extras[k] = v
	}
	if len(e.extra) > 0 {
		extras["extra"] = fmt.Sprintf("%+v", e.extra)
	}
	if e.err != nil {
		extras["message"] = msg
		rollbar.ErrorWithExtras(lvl.rollbar, e.err, extras)
		return
	}
	rollbar.MessageWithExtras(lvl.rollbar, msg, extras)
}

func (l *RollbarLogger) log(lvl level, msg string, args []interface{}) {
	e := parse(args)
	l.std.Println(e.format(lvl, msg))
	if lvl.rank >= l.minSent {
		e.report(lvl, msg)
	}
}

func (l *RollbarLogger) Debug(msg string, args ...interface{}) { l.log(levelDebug, msg, args) }
func (l *RollbarLogger) Info(msg string, args ...interface{})  { l.log(levelInfo, msg, args) }
func (l *RollbarLogger) Warn(msg string, args ...interface{})  { l.log(levelWarn, msg, args) }
func (l *RollbarLogger) Error(msg string, args ...interface{}) { l.log(levelError, msg, args) }

func (l *RollbarLogger) Fatal(msg string, args ...interface{}) {
	l.log(levelFatal, msg, args)
	rollbar.Wait()
	l.std.Fatal(msg)
}
