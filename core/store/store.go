// Package store is the single authoritative in-memory model of the platform.
// It owns every collection and exposes only the named operations that mutate them;
// each operation leaves all the collections it touches mutually consistent before returning.
// State is memory-only and is lost on restart.
package store

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/trezcool/educode/core"
	"github.com/trezcool/educode/core/admin"
	"github.com/trezcool/educode/core/course"
	"github.com/trezcool/educode/core/notification"
	"github.com/trezcool/educode/core/social"
	"github.com/trezcool/educode/core/user"
)

type (
	aiUsage struct {
		day   string
		count int
	}

	restoreJob struct {
		job    admin.RestoreJob
		timer  *time.Timer
		userID string // receives the completion notice
	}

	Store struct {
		conf   *core.Config
		logger core.Logger
		mailer core.EmailService
		now    func() time.Time

		mu            sync.RWMutex
		outbox        []*core.EmailMessage // flushed once mu is released
		users         []*user.User
		courses       []*course.Course
		submissions   []*course.Submission        // newest first
		transactions  []course.Transaction        // newest first
		notifications []notification.Notification // newest first
		messages      []social.PrivateMessage     // in send order
		posts         []*social.ForumPost         // course & global posts, newest first; group posts live in their group
		groups        []*social.StudyGroup
		projects      []social.PortfolioProject // newest first
		reports       []*admin.Report           // newest first
		backups       []admin.Backup            // newest first
		restores      map[string]*restoreJob
		sysConf       admin.SystemConfig
		aiUsage       map[string]*aiUsage // {userID: usage}
		closed        bool
	}
)

// New returns an empty store, seeded with the demo data set when the site config asks for it.
// mailer may be nil, in which case notifications are never emailed.
func New(conf *core.Config, logger core.Logger, mailer core.EmailService) *Store {
	s := &Store{
		conf:     conf,
		logger:   logger,
		mailer:   mailer,
		now:      func() time.Time { return time.Now().UTC() },
		restores: make(map[string]*restoreJob),
		sysConf:  admin.NewSystemConfig(conf.Site),
		aiUsage:  make(map[string]*aiUsage),
	}
	if conf.Site.SeedMockData {
		s.seed()
	}
	return s
}

// Close cancels pending restore timers. The store stays readable.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for _, r := range s.restores {
		if r.timer != nil {
			r.timer.Stop()
		}
	}
}

// Stats counts the main collections; published under /debug/vars.
func (s *Store) Stats() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return map[string]int{
		"users":         len(s.users),
		"courses":       len(s.courses),
		"submissions":   len(s.submissions),
		"transactions":  len(s.transactions),
		"notifications": len(s.notifications),
		"messages":      len(s.messages),
		"groups":        len(s.groups),
		"reports":       len(s.reports),
		"backups":       len(s.backups),
	}
}

// unlock releases the write lock, then hands queued notification emails to the mailer.
func (s *Store) unlock() {
	pending := s.outbox
	s.outbox = nil
	s.mu.Unlock()
	if len(pending) > 0 && s.mailer != nil {
		s.mailer.SendMessages(pending...)
	}
}

// finders; callers must hold mu

func (s *Store) userByID(id string) *user.User {
	if id == "" {
		return nil
	}
	for _, u := range s.users {
		if u.ID == id {
			return u
		}
	}
	return nil
}

func (s *Store) userByEmail(email string) *user.User {
	email = core.CleanString(email, true /* lower */)
	for _, u := range s.users {
		if strings.ToLower(u.Email) == email {
			return u
		}
	}
	return nil
}

func (s *Store) firstAdmin() *user.User {
	for _, u := range s.users {
		if u.IsAdmin() {
			return u
		}
	}
	return nil
}

func (s *Store) courseByID(id string) *course.Course {
	for _, c := range s.courses {
		if c.ID == id {
			return c
		}
	}
	return nil
}

func (s *Store) submissionByID(id string) *course.Submission {
	for _, sub := range s.submissions {
		if sub.ID == id {
			return sub
		}
	}
	return nil
}

func (s *Store) groupByID(id string) *social.StudyGroup {
	for _, g := range s.groups {
		if g.ID == id {
			return g
		}
	}
	return nil
}

func (s *Store) reportByID(id string) *admin.Report {
	for _, r := range s.reports {
		if r.ID == id {
			return r
		}
	}
	return nil
}

func (s *Store) backupByID(id string) (admin.Backup, bool) {
	for _, b := range s.backups {
		if b.ID == id {
			return b, true
		}
	}
	return admin.Backup{}, false
}

// Read accessors. Every accessor returns a snapshot the caller may freely modify.

func (s *Store) Config() *core.Config { return s.conf }

func (s *Store) User(id string) (user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if u := s.userByID(id); u != nil {
		return u.Clone(), nil
	}
	return user.User{}, user.ErrNotFound
}

// Users applies AND operation on the available filter fields.
// Search does a case-insensitive match on the name or the email.
func (s *Store) Users(filter user.QueryFilter) []user.User {
	filter.Clean()
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]user.User, 0, len(s.users))
	for _, u := range s.users {
		if filter.Search != "" &&
			!strings.Contains(strings.ToLower(u.Name), filter.Search) &&
			!strings.Contains(strings.ToLower(u.Email), filter.Search) {
			continue
		}
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		if filter.Status != "" && u.Status != filter.Status {
			continue
		}
		users = append(users, u.Clone())
	}
	return users
}

func (s *Store) Course(id string) (course.Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c := s.courseByID(id); c != nil {
		return c.Clone(), nil
	}
	return course.Course{}, course.ErrNotFound
}

func (s *Store) Courses(filter course.QueryFilter) []course.Course {
	filter.Clean()
	s.mu.RLock()
	defer s.mu.RUnlock()

	courses := make([]course.Course, 0, len(s.courses))
	for _, c := range s.courses {
		if filter.Search != "" && !courseMatches(c, filter.Search) {
			continue
		}
		if filter.Status != "" && c.Status != filter.Status {
			continue
		}
		if filter.Level != "" && c.Level != filter.Level {
			continue
		}
		courses = append(courses, c.Clone())
	}
	return courses
}

func courseMatches(c *course.Course, search string) bool {
	if strings.Contains(strings.ToLower(c.Title), search) || strings.Contains(strings.ToLower(c.Instructor), search) {
		return true
	}
	for _, tag := range c.Tags {
		if strings.ToLower(tag) == search {
			return true
		}
	}
	return false
}

func (s *Store) Submission(id string) (course.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if sub := s.submissionByID(id); sub != nil {
		return sub.Clone(), nil
	}
	return course.Submission{}, course.ErrSubmissionNotFound
}

// Submissions lists submissions newest first, optionally restricted to one course.
func (s *Store) Submissions(courseID string) []course.Submission {
	s.mu.RLock()
	defer s.mu.RUnlock()
	subs := make([]course.Submission, 0, len(s.submissions))
	for _, sub := range s.submissions {
		if courseID == "" || sub.CourseID == courseID {
			subs = append(subs, sub.Clone())
		}
	}
	return subs
}

func (s *Store) Transactions() []course.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]course.Transaction{}, s.transactions...)
}

func (s *Store) PrivateMessages() []social.PrivateMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]social.PrivateMessage{}, s.messages...)
}

func (s *Store) StudyGroups() []social.StudyGroup {
	s.mu.RLock()
	defer s.mu.RUnlock()
	groups := make([]social.StudyGroup, len(s.groups))
	for i, g := range s.groups {
		groups[i] = g.Clone()
	}
	return groups
}

func (s *Store) StudyGroup(id string) (social.StudyGroup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if g := s.groupByID(id); g != nil {
		return g.Clone(), nil
	}
	return social.StudyGroup{}, social.ErrGroupNotFound
}

// GroupPosts is the group-chat read path: it sources exclusively from the group's own posts.
func (s *Store) GroupPosts(groupID string) ([]social.ForumPost, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g := s.groupByID(groupID)
	if g == nil {
		return nil, social.ErrGroupNotFound
	}
	posts := make([]social.ForumPost, len(g.Posts))
	for i, p := range g.Posts {
		posts[i] = p.Clone()
	}
	return posts, nil
}

// ForumPosts is the global view: course posts joined with every group's posts, newest first.
// An optional courseID restricts the view to one course.
func (s *Store) ForumPosts(courseID string) []social.ForumPost {
	s.mu.RLock()
	defer s.mu.RUnlock()

	posts := make([]social.ForumPost, 0, len(s.posts))
	for _, p := range s.posts {
		if courseID == "" || p.CourseID == courseID {
			posts = append(posts, p.Clone())
		}
	}
	for _, g := range s.groups {
		for _, p := range g.Posts {
			if courseID == "" || p.CourseID == courseID {
				posts = append(posts, p.Clone())
			}
		}
	}
	sort.SliceStable(posts, func(i, j int) bool { return posts[i].CreatedAt.After(posts[j].CreatedAt) })
	return posts
}

func (s *Store) Projects(studentID string) []social.PortfolioProject {
	s.mu.RLock()
	defer s.mu.RUnlock()
	projects := make([]social.PortfolioProject, 0, len(s.projects))
	for _, p := range s.projects {
		if studentID == "" || p.StudentID == studentID {
			projects = append(projects, p.Clone())
		}
	}
	return projects
}

func (s *Store) Reports() []admin.Report {
	s.mu.RLock()
	defer s.mu.RUnlock()
	reports := make([]admin.Report, len(s.reports))
	for i, r := range s.reports {
		reports[i] = *r
	}
	return reports
}

func (s *Store) Backups() []admin.Backup {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]admin.Backup{}, s.backups...)
}

func (s *Store) SystemConfig() admin.SystemConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sysConf
}

// AllNotifications lists every notification of every user, newest first.
func (s *Store) AllNotifications() []notification.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]notification.Notification{}, s.notifications...)
}
