// Package emailsvc delivers the notification and report-reply emails queued by the store.
package emailsvc

import (
	"net/mail"
	"strings"

	"github.com/trezcool/educode/core"
)

func subjectPrefix(conf *core.Config) string {
	return "[" + conf.AppName + "] "
}

// render fills the contents of msg and reports whether it can be delivered.
func render(msg *core.EmailMessage, logger core.Logger) bool {
	if err := msg.Render(); err != nil {
		logger.Error("rendering email", err, map[string]interface{}{"template": msg.TemplateName})
		return false
	}
	return msg.Deliverable()
}

func joinAddresses(addrs []mail.Address) string {
	strs := make([]string, len(addrs))
	for i, a := range addrs {
		strs[i] = a.String()
	}
	return strings.Join(strs, ", ")
}
