package emailsvc

import (
	"fmt"
	"log"
	"net/mail"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/trezcool/educode/core"
)

// consoleService prints the text variant of emails instead of delivering them.
type consoleService struct {
	from       mail.Address
	subjPrefix string
	out        *log.Logger // nil discards
	logger     core.Logger
}

var _ core.EmailService = (*consoleService)(nil)

func NewConsoleService(conf *core.Config, logger core.Logger) core.EmailService {
	return &consoleService{
		from:       conf.DefaultFromEmail(),
		subjPrefix: subjectPrefix(conf),
		out:        log.New(os.Stdout, "EMAIL : ", log.LstdFlags),
		logger:     logger,
	}
}

func (svc *consoleService) SendMessages(messages ...*core.EmailMessage) {
	for _, msg := range messages {
		go svc.deliver(msg)
	}
}

// deliver reports whether msg was rendered into something deliverable.
func (svc *consoleService) deliver(msg *core.EmailMessage) bool {
	if !render(msg, svc.logger) {
		return false
	}
	if svc.out != nil {
		svc.out.Println(svc.format(msg))
	}
	return true
}

func (svc *consoleService) format(msg *core.EmailMessage) string {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\n", svc.from.String())
	fmt.Fprintf(&b, "To: %s\n", joinAddresses(msg.To))
	fmt.Fprintf(&b, "Date: %s\n", time.Now().Format(time.RFC1123Z))
	fmt.Fprintf(&b, "Subject: %s%s\n", svc.subjPrefix, msg.Subject)
	fmt.Fprintf(&b, "X-Template: %s\n\n", msg.TemplateName)
	b.WriteString(msg.TextContent)
	return b.String()
}

// ConsoleServiceMock renders messages synchronously and records the deliverable ones.
type ConsoleServiceMock struct {
	svc  consoleService
	mu   sync.Mutex
	sent []core.EmailMessage
}

var _ core.EmailService = (*ConsoleServiceMock)(nil)

func NewConsoleServiceMock(conf *core.Config, logger core.Logger) *ConsoleServiceMock {
	return &ConsoleServiceMock{
		svc: consoleService{
			from:       conf.DefaultFromEmail(),
			subjPrefix: subjectPrefix(conf),
			logger:     logger,
		},
	}
}

func (m *ConsoleServiceMock) SendMessages(messages ...*core.EmailMessage) {
	for _, msg := range messages {
		if m.svc.deliver(msg) {
			m.mu.Lock()
			m.sent = append(m.sent, *msg)
			m.mu.Unlock()
		}
	}
}

// SentMessages returns a copy of every message recorded so far.
func (m *ConsoleServiceMock) SentMessages() []core.EmailMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]core.EmailMessage{}, m.sent...)
}
