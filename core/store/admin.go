package store

import (
	"fmt"
	"net/mail"

	"github.com/trezcool/educode/core"
	"github.com/trezcool/educode/core/admin"
	"github.com/trezcool/educode/core/notification"
	"github.com/trezcool/educode/core/social"
)

// AddReport files an issue on behalf of the session user.
func (sess *Session) AddReport(nr admin.NewReport) (admin.Report, error) {
	if err := nr.Validate(); err != nil {
		return admin.Report{}, err
	}

	s := sess.store
	s.mu.Lock()
	defer s.unlock()

	u, err := sess.requireUser()
	if err != nil {
		return admin.Report{}, err
	}
	r := &admin.Report{
		ID:          core.NewID("rpt"),
		UserID:      u.ID,
		Type:        nr.Type,
		Description: nr.Description,
		Status:      admin.ReportNew,
		CreatedAt:   s.now(),
	}
	s.reports = append([]*admin.Report{r}, s.reports...)
	sess.notify("Report submitted", notification.TypeSuccess)
	return *r, nil
}

func (sess *Session) UpdateReportStatus(id string, status admin.ReportStatus) (admin.Report, error) {
	if err := core.ValidateStruct(admin.ReportStatusUpdate{Status: status}); err != nil {
		return admin.Report{}, err
	}

	s := sess.store
	s.mu.Lock()
	defer s.unlock()

	if _, err := sess.requireAdmin(); err != nil {
		return admin.Report{}, err
	}
	r := s.reportByID(id)
	if r == nil {
		return admin.Report{}, admin.ErrReportNotFound
	}
	r.Status = status
	sess.notify(fmt.Sprintf("Report marked as %s", status), notification.TypeSuccess)
	return *r, nil
}

// ReplyToReport stores the reply and forces the report to resolved. The reporter is emailed the reply.
func (sess *Session) ReplyToReport(id string, rr admin.ReportReply) (admin.Report, error) {
	if err := rr.Validate(); err != nil {
		return admin.Report{}, err
	}

	s := sess.store
	s.mu.Lock()
	defer s.unlock()

	actor, err := sess.requireAdmin()
	if err != nil {
		return admin.Report{}, err
	}
	r := s.reportByID(id)
	if r == nil {
		return admin.Report{}, admin.ErrReportNotFound
	}
	r.Reply = rr.Reply
	r.Status = admin.ReportResolved
	sess.notify("Reply sent", notification.TypeSuccess)

	if reporter := s.userByID(r.UserID); reporter != nil && reporter.Email != "" {
		s.outbox = append(s.outbox, &core.EmailMessage{
			To:           []mail.Address{{Name: reporter.Name, Address: reporter.Email}},
			Subject:      "Your report has been resolved",
			TemplateName: "report_reply",
			TemplateData: map[string]interface{}{
				"Name":        reporter.Name,
				"Description": r.Description,
				"Reply":       r.Reply,
			},
		})
	}
	s.logger.Info("report resolved", map[string]interface{}{"report_id": r.ID, "by": actor.ID})
	return *r, nil
}

// CreateBackup records a new full backup descriptor.
func (sess *Session) CreateBackup() (admin.Backup, error) {
	s := sess.store
	s.mu.Lock()
	defer s.unlock()

	actor, err := sess.requireAdmin()
	if err != nil {
		return admin.Backup{}, err
	}
	now := s.now()
	b := admin.Backup{
		ID:        core.NewID("bkp"),
		Name:      "Backup-" + now.Format("2006-01-02"),
		Size:      "300 MB",
		Type:      admin.BackupFull,
		CreatedAt: now,
	}
	s.backups = append([]admin.Backup{b}, s.backups...)
	sess.notify("Backup created successfully", notification.TypeSuccess)
	s.logger.Info("backup created", map[string]interface{}{"backup_id": b.ID, "by": actor.ID})
	return b, nil
}

// UpdateSystemConfig replaces the system config wholesale; fields are never merged.
func (sess *Session) UpdateSystemConfig(sc admin.SystemConfig) (admin.SystemConfig, error) {
	if err := sc.Validate(); err != nil {
		return admin.SystemConfig{}, err
	}

	s := sess.store
	s.mu.Lock()
	defer s.unlock()

	actor, err := sess.requireAdmin()
	if err != nil {
		return admin.SystemConfig{}, err
	}
	s.sysConf = sc
	sess.notify("System configuration saved", notification.TypeSuccess)
	s.logger.Info("system config updated", map[string]interface{}{"by": actor.ID})
	return s.sysConf, nil
}

// AddProject adds a portfolio project of the session user.
func (sess *Session) AddProject(np social.NewProject) (social.PortfolioProject, error) {
	if err := np.Validate(); err != nil {
		return social.PortfolioProject{}, err
	}

	s := sess.store
	s.mu.Lock()
	defer s.unlock()

	u, err := sess.requireUser()
	if err != nil {
		return social.PortfolioProject{}, err
	}
	tags := np.Tags
	if tags == nil {
		tags = []string{}
	}
	p := social.PortfolioProject{
		ID:          core.NewID("prj"),
		StudentID:   u.ID,
		Title:       np.Title,
		Description: np.Description,
		ImageURL:    np.ImageURL,
		DemoURL:     np.DemoURL,
		Tags:        append([]string{}, tags...),
		CreatedAt:   s.now(),
	}
	s.projects = append([]social.PortfolioProject{p}, s.projects...)
	sess.notify("Project created successfully", notification.TypeSuccess)
	return p.Clone(), nil
}
