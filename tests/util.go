package testutil

import (
	"testing"

	"github.com/trezcool/educode/core"
	"github.com/trezcool/educode/core/course"
	"github.com/trezcool/educode/core/store"
	"github.com/trezcool/educode/core/user"
	emailsvc "github.com/trezcool/educode/services/email"
	logsvc "github.com/trezcool/educode/services/logger"
)

// Password satisfies the password policy for every fixture built by this package.
const Password = "Str0ng!Passw0rd"

// NewStore returns an empty store wired with the test config, a silent logger and the email mock.
func NewStore(t *testing.T) (*store.Store, *emailsvc.ConsoleServiceMock) {
	t.Helper()
	conf := core.NewTestConfig()
	logger := logsvc.NewDiscardLogger()
	if err := core.ParseEmailTemplates(conf, logger); err != nil {
		t.Fatalf("parseEmailTemplates() failed: %v", err)
	}
	mailer := emailsvc.NewConsoleServiceMock(conf, logger)
	st := store.New(conf, logger, mailer)
	t.Cleanup(st.Close)
	return st, mailer
}

func CreateUser(t *testing.T, st *store.Store, name, email string, role user.Role) user.User {
	t.Helper()
	usr, err := st.CreateUser(user.NewUser{Name: name, Email: email, Password: Password, Role: role})
	if err != nil {
		t.Fatalf("createUser() failed: %v", err)
	}
	return usr
}

// Login opens an authenticated session for email.
func Login(t *testing.T, st *store.Store, email string) *store.Session {
	t.Helper()
	sess := st.NewSession()
	if _, err := sess.Login(email, Password); err != nil {
		t.Fatalf("login() failed: %v", err)
	}
	return sess
}

// SuperAdmin creates the configured super-admin and returns its session.
func SuperAdmin(t *testing.T, st *store.Store) (user.User, *store.Session) {
	t.Helper()
	adm := CreateUser(t, st, "Root Admin", st.Config().SuperAdminEmail, user.RoleAdmin)
	return adm, Login(t, st, adm.Email)
}

// CreateCourse creates a published course owned by the teacher of sess.
func CreateCourse(t *testing.T, sess *store.Session, title string, price float64, lessons ...course.NewLesson) course.Course {
	t.Helper()
	c, err := sess.AddCourse(course.NewCourse{Title: title, Price: price, Level: course.LevelBeginner})
	if err != nil {
		t.Fatalf("addCourse() failed: %v", err)
	}
	for _, nl := range lessons {
		if _, err = sess.AddLessonToCourse(c.ID, nl); err != nil {
			t.Fatalf("addLessonToCourse() failed: %v", err)
		}
	}
	if c, err = sess.UpdateCourseStatus(c.ID, course.StatusPublished); err != nil {
		t.Fatalf("updateCourseStatus() failed: %v", err)
	}
	return c
}
