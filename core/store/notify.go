package store

import (
	"net/mail"

	"github.com/trezcool/educode/core"
	"github.com/trezcool/educode/core/notification"
)

// notify emits a notification to target, defaulting to the session user.
// Without a target the notification is dropped. Callers must hold store.mu for writing.
func (sess *Session) notify(msg string, typ notification.Type, target ...string) {
	userID := sess.userID
	if len(target) > 0 && target[0] != "" {
		userID = target[0]
	}
	sess.store.notify(userID, msg, typ)
}

func (s *Store) notify(userID, msg string, typ notification.Type) {
	if userID == "" {
		return
	}
	n := notification.Notification{
		ID:        core.NewID("ntf"),
		UserID:    userID,
		Title:     notification.DefaultTitle,
		Message:   msg,
		Type:      typ,
		CreatedAt: s.now(),
	}
	s.notifications = append([]notification.Notification{n}, s.notifications...)

	if u := s.userByID(userID); u != nil && u.Preferences.Notifications && u.Email != "" {
		s.outbox = append(s.outbox, &core.EmailMessage{
			To:           []mail.Address{{Name: u.Name, Address: u.Email}},
			Subject:      s.sysConf.SiteName + ": " + n.Title,
			TemplateName: "notification",
			TemplateData: map[string]interface{}{
				"Name":    u.Name,
				"Title":   n.Title,
				"Message": n.Message,
			},
		})
	}
}

// Notifications lists the session user's notifications, newest first.
func (sess *Session) Notifications() []notification.Notification {
	s := sess.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	ntfs := make([]notification.Notification, 0)
	if sess.userID == "" {
		return ntfs
	}
	for _, n := range s.notifications {
		if n.UserID == sess.userID {
			ntfs = append(ntfs, n)
		}
	}
	return ntfs
}

// MarkNotificationsRead flips the read flag of the session user's notifications only
// and returns how many were unread.
func (sess *Session) MarkNotificationsRead() (int, error) {
	s := sess.store
	s.mu.Lock()
	defer s.unlock()

	if _, err := sess.requireUser(); err != nil {
		return 0, err
	}
	marked := 0
	for i := range s.notifications {
		if s.notifications[i].UserID == sess.userID && !s.notifications[i].Read {
			s.notifications[i].Read = true
			marked++
		}
	}
	return marked, nil
}
