package emailsvc

import (
	"net/http"

	"github.com/pkg/errors"
	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/trezcool/educode/core"
)

const (
	sendgridHost     = "https://api.sendgrid.com"
	sendgridEndpoint = "/v3/mail/send"
)

type sendgridService struct {
	key        string
	host       string
	from       *sgmail.Email
	replyTo    *sgmail.Email
	subjPrefix string
	sandbox    bool
	logger     core.Logger
}

var _ core.EmailService = (*sendgridService)(nil)

// NewSendgridService delivers emails through the SendGrid v3 API.
// Outside PROD, SendGrid validates messages in sandbox mode without sending them.
func NewSendgridService(conf *core.Config, logger core.Logger) core.EmailService {
	return newSendgridService(conf, logger, sendgridHost)
}

func newSendgridService(conf *core.Config, logger core.Logger, host string) *sendgridService {
	from := conf.DefaultFromEmail()
	svc := &sendgridService{
		key:        conf.SendgridApiKey,
		host:       host,
		from:       sgmail.NewEmail(from.Name, from.Address),
		subjPrefix: subjectPrefix(conf),
		sandbox:    conf.Env != "PROD",
		logger:     logger,
	}
	if conf.Site.SupportEmail != "" {
		svc.replyTo = sgmail.NewEmail(conf.AppName+" Support", conf.Site.SupportEmail)
	}
	return svc
}

func (svc *sendgridService) SendMessages(messages ...*core.EmailMessage) {
	for _, msg := range messages {
		msg := msg
		go func() { _ = svc.deliver(msg) }()
	}
}

func (svc *sendgridService) deliver(msg *core.EmailMessage) error {
	if !render(msg, svc.logger) {
		return nil
	}
	fields := map[string]interface{}{"template": msg.TemplateName, "to": joinAddresses(msg.To)}

	req := sendgrid.GetRequest(svc.key, sendgridEndpoint, svc.host)
	req.Method = rest.Post
	req.Body = sgmail.GetRequestBody(svc.build(msg))

	res, err := sendgrid.API(req)
	if err != nil {
		err = errors.Wrap(err, "calling SendGrid")
		svc.logger.Error("sending email", err, fields)
		return err
	}
	if res.StatusCode >= http.StatusBadRequest {
		err = errors.Errorf("SendGrid status: %d - body: %s", res.StatusCode, res.Body)
		svc.logger.Error("sending email", err, fields)
		return err
	}
	return nil
}

// build gives every recipient its own personalization so nobody sees the other addresses.
func (svc *sendgridService) build(msg *core.EmailMessage) *sgmail.SGMailV3 {
	m := sgmail.NewV3Mail()
	m.SetFrom(svc.from)
	if svc.replyTo != nil {
		m.SetReplyTo(svc.replyTo)
	}
	m.Subject = svc.subjPrefix + msg.Subject

	for _, to := range msg.To {
		p := sgmail.NewPersonalization()
		p.AddTos(sgmail.NewEmail(to.Name, to.Address))
		p.SetCustomArg("template", msg.TemplateName)
		m.AddPersonalizations(p)
	}

	// SendGrid wants text/plain before text/html
	if msg.TextContent != "" {
		m.AddContent(sgmail.NewContent("text/plain", msg.TextContent))
	}
	if msg.HTMLContent != "" {
		m.AddContent(sgmail.NewContent("text/html", msg.HTMLContent))
	}
	if msg.TemplateName != "" {
		m.AddCategories(msg.TemplateName)
	}
	if svc.sandbox {
		settings := sgmail.NewMailSettings()
		settings.SetSandboxMode(sgmail.NewSetting(true))
		m.SetMailSettings(settings)
	}
	return m
}
