package core

import (
	"bytes"
	"embed"
	htmltmpl "html/template"
	"io/fs"
	"net/mail"
	"path"
	"strings"
	"sync"
	texttmpl "text/template"

	"github.com/pkg/errors"
)

//go:embed templates/email/*
var emailTemplatesFS embed.FS

const emailTemplatesDir = "templates/email"

var ErrUnknownTemplate = errors.New("unknown email template")

type (
	// EmailMessage is a templated email. Render fills the text and html variants of TemplateName;
	// a template may ship only one of them.
	EmailMessage struct {
		To           []mail.Address
		Subject      string
		TemplateName string // file name under templates/email, without ext
		TemplateData interface{}

		TextContent string
		HTMLContent string
	}

	// EmailContext is the root object of every email template.
	EmailContext struct {
		FrontendBaseURL string
		Data            interface{}
	}

	// EmailService is any service that can deliver emails.
	EmailService interface {
		// SendMessages renders and delivers messages; delivery may happen in the background.
		SendMessages(messages ...*EmailMessage)
	}

	emailTemplates struct {
		text *texttmpl.Template
		html *htmltmpl.Template
	}
)

var emailTmpl struct {
	sync.RWMutex
	byName          map[string]*emailTemplates
	frontendBaseURL string
}

func (m *EmailMessage) Render() error {
	emailTmpl.RLock()
	tmpls, ok := emailTmpl.byName[m.TemplateName]
	data := EmailContext{FrontendBaseURL: emailTmpl.frontendBaseURL, Data: m.TemplateData}
	emailTmpl.RUnlock()
	if !ok {
		return errors.Wrap(ErrUnknownTemplate, m.TemplateName)
	}

	var buf bytes.Buffer
	if tmpls.text != nil {
		if err := tmpls.text.Execute(&buf, data); err != nil {
			return errors.Wrapf(err, "rendering %s.txt", m.TemplateName)
		}
		m.TextContent = buf.String()
	}
	if tmpls.html != nil {
		buf.Reset()
		if err := tmpls.html.Execute(&buf, data); err != nil {
			return errors.Wrapf(err, "rendering %s.gohtml", m.TemplateName)
		}
		m.HTMLContent = buf.String()
	}
	return nil
}

// Deliverable reports whether a rendered message has a recipient and a body.
func (m *EmailMessage) Deliverable() bool {
	return len(m.To) > 0 && (m.TextContent != "" || m.HTMLContent != "")
}

func templateName(fp string) string {
	fname := path.Base(fp)
	return strings.TrimSuffix(fname, path.Ext(fname))
}

// ParseEmailTemplates parses the embedded email templates once at start up.
// Files prefixed with "_" are the base layouts every template is parsed with.
// In debug and test mode a missing template key fails the rendering.
func ParseEmailTemplates(conf *Config, logger Logger) error {
	byName := make(map[string]*emailTemplates)
	entry := func(fp string) *emailTemplates {
		name := templateName(fp)
		if byName[name] == nil {
			byName[name] = new(emailTemplates)
		}
		return byName[name]
	}
	strict := conf.Debug || conf.TestMode

	textFiles, err := fs.Glob(emailTemplatesFS, path.Join(emailTemplatesDir, "[^_]*.txt"))
	if err != nil {
		return errors.Wrap(err, "listing text email templates")
	}
	for _, fp := range textFiles {
		tmpl, err := texttmpl.ParseFS(emailTemplatesFS, path.Join(emailTemplatesDir, "_base.txt"), fp)
		if err != nil {
			return errors.Wrapf(err, "parsing email template %s", fp)
		}
		if strict {
			tmpl = tmpl.Option("missingkey=error")
		}
		entry(fp).text = tmpl
	}

	htmlFiles, err := fs.Glob(emailTemplatesFS, path.Join(emailTemplatesDir, "[^_]*.gohtml"))
	if err != nil {
		return errors.Wrap(err, "listing html email templates")
	}
	for _, fp := range htmlFiles {
		tmpl, err := htmltmpl.ParseFS(emailTemplatesFS, path.Join(emailTemplatesDir, "_base.gohtml"), fp)
		if err != nil {
			return errors.Wrapf(err, "parsing email template %s", fp)
		}
		if strict {
			tmpl = tmpl.Option("missingkey=error")
		}
		entry(fp).html = tmpl
	}
	if len(byName) == 0 {
		return errors.Errorf("no email template found under %s", emailTemplatesDir)
	}

	emailTmpl.Lock()
	emailTmpl.byName = byName
	emailTmpl.frontendBaseURL = conf.FrontendBaseURL
	emailTmpl.Unlock()
	logger.Debug("email templates parsed", map[string]interface{}{"count": len(byName)})
	return nil
}
