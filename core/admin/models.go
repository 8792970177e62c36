package admin

import (
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/educode/core"
)

var (
	ErrReportNotFound  = errors.New("report not found")
	ErrBackupNotFound  = errors.New("backup not found")
	ErrRestoreNotFound = errors.New("restore job not found")
	ErrRestoreFinished = errors.New("restore job already finished")
)

type ReportType string

const (
	ReportUI      ReportType = "ui"
	ReportContent ReportType = "content"
	ReportPayment ReportType = "payment"
	ReportOther   ReportType = "other"
)

type ReportStatus string

const (
	ReportNew        ReportStatus = "new"
	ReportInProgress ReportStatus = "in_progress"
	ReportResolved   ReportStatus = "resolved"
)

type Report struct {
	ID          string       `json:"id"`
	UserID      string       `json:"user_id"`
	Type        ReportType   `json:"type"`
	Description string       `json:"description"`
	Status      ReportStatus `json:"status"`
	Reply       string       `json:"reply,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
}

type NewReport struct {
	Type        ReportType `json:"type" validate:"required,oneof=ui content payment other"`
	Description string     `json:"description" validate:"required,notblank"`
}

func (nr *NewReport) Validate() error {
	nr.Description = core.CleanString(nr.Description)
	return core.ValidateStruct(nr)
}

type ReportStatusUpdate struct {
	Status ReportStatus `json:"status" validate:"required,oneof=new in_progress resolved"`
}

type ReportReply struct {
	Reply string `json:"reply" validate:"required,notblank"`
}

func (rr *ReportReply) Validate() error {
	rr.Reply = core.CleanString(rr.Reply)
	return core.ValidateStruct(rr)
}

type BackupType string

const (
	BackupFull     BackupType = "full"
	BackupDatabase BackupType = "database"
	BackupFiles    BackupType = "files"
)

type Backup struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Size      string     `json:"size"`
	Type      BackupType `json:"type"`
	CreatedAt time.Time  `json:"created_at"`
}

type RestoreState string

const (
	RestoreStarted   RestoreState = "started"
	RestoreCompleted RestoreState = "completed"
	RestoreCancelled RestoreState = "cancelled"
)

// RestoreJob tracks a simulated restore: started, then completed or cancelled.
// No state is rolled back.
type RestoreJob struct {
	ID         string       `json:"id"`
	BackupID   string       `json:"backup_id"`
	State      RestoreState `json:"state"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt *time.Time   `json:"finished_at,omitempty"`
}

func (j *RestoreJob) Finished() bool { return j.State != RestoreStarted }

type PaymentGateways struct {
	VNPay  bool `json:"vnpay"`
	MoMo   bool `json:"momo"`
	Stripe bool `json:"stripe"`
}

// SystemConfig is the process-wide runtime configuration, replaced wholesale on update.
type SystemConfig struct {
	SiteName        string          `json:"site_name" validate:"required,notblank"`
	SupportEmail    string          `json:"support_email" validate:"required,email"`
	AIEnabled       bool            `json:"ai_enabled"`
	AIRequestLimit  int             `json:"ai_request_limit" validate:"min=0"` // per user per day; 0 means unlimited
	SMTPHost        string          `json:"smtp_host"`
	SMSProvider     string          `json:"sms_provider"`
	PaymentGateways PaymentGateways `json:"payment_gateways"`
}

func (sc *SystemConfig) Validate() error {
	sc.SiteName = core.CleanString(sc.SiteName)
	sc.SupportEmail = core.CleanString(sc.SupportEmail, true /* lower */)
	return core.ValidateStruct(sc)
}

// GatewayEnabled reports whether the named payment gateway (vnpay, momo, stripe) is switched on.
func (sc *SystemConfig) GatewayEnabled(key string) bool {
	switch strings.ToLower(key) {
	case "vnpay":
		return sc.PaymentGateways.VNPay
	case "momo":
		return sc.PaymentGateways.MoMo
	case "stripe":
		return sc.PaymentGateways.Stripe
	}
	return false
}

// NewSystemConfig seeds the runtime config from the static site settings.
func NewSystemConfig(site core.SiteConfig) SystemConfig {
	return SystemConfig{
		SiteName:       site.Name,
		SupportEmail:   site.SupportEmail,
		AIEnabled:      site.AIEnabled,
		AIRequestLimit: site.AIRequestLimit,
		SMTPHost:       site.SMTPHost,
		SMSProvider:    site.SMSProvider,
		PaymentGateways: PaymentGateways{
			VNPay:  site.VNPayEnabled,
			MoMo:   site.MoMoEnabled,
			Stripe: site.StripeEnabled,
		},
	}
}
