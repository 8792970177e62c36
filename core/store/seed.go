package store

import (
	"strings"
	"time"

	"github.com/trezcool/educode/core/admin"
	"github.com/trezcool/educode/core/course"
	"github.com/trezcool/educode/core/social"
	"github.com/trezcool/educode/core/user"
)

// DemoPassword is the password of every seeded demo account.
const DemoPassword = "educode123"

// DemoAdminEmail is the seeded administrator. It is never the configured super-admin.
const DemoAdminEmail = "demo-admin@educode.vn"

// seed loads the demo data set. Seeded counters respect the same invariants as live ones.
func (s *Store) seed() {
	now := s.now()
	mkUser := func(id, name, email string, role user.Role) *user.User {
		u, err := s.buildUser(user.NewUser{Name: name, Email: email, Password: DemoPassword, Role: role})
		if err != nil {
			s.logger.Error("seeding user", err)
			return nil
		}
		u.ID = id
		return u
	}

	if strings.EqualFold(s.conf.SuperAdminEmail, DemoAdminEmail) {
		s.logger.Warn("demo data not seeded: the super-admin uses the demo admin email")
		return
	}
	adm := mkUser("usr_1", "Demo Admin", DemoAdminEmail, user.RoleAdmin)
	teacher := mkUser("usr_2", "Dr. Angela Yu", "teacher@educode.vn", user.RoleTeacher)
	student := mkUser("usr_3", "Minh Tran", "student@educode.vn", user.RoleStudent)
	if adm == nil || teacher == nil || student == nil {
		return
	}
	teacher.Title = "Lead Instructor"
	student.LearningGoals = "Become a data scientist"
	student.CoursesEnrolled = []string{"crs_1"}
	student.StudyGroups = []string{"grp_1"}
	s.users = []*user.User{adm, teacher, student}

	s.courses = []*course.Course{
		{
			ID:            "crs_1",
			Title:         "Python for Data Science",
			Description:   "Learn Python from scratch and analyse real data sets with pandas and numpy.",
			Instructor:    teacher.Name,
			InstructorID:  teacher.ID,
			Thumbnail:     "https://picsum.photos/seed/python/400/225",
			Price:         49.99,
			Level:         course.LevelBeginner,
			Language:      "English",
			StudentsCount: 1,
			Status:        course.StatusPublished,
			Tags:          []string{"Python", "Data Science"},
			Lessons: []course.Lesson{
				{ID: "lsn_1", Title: "Introduction to Python", Type: course.LessonVideo, Content: "https://www.youtube.com/embed/rfscVS0vtbw", DurationMinutes: 15},
				{ID: "lsn_2", Title: "Variables and Types", Type: course.LessonReading, Content: "# Variables\nPython is dynamically typed.", DurationMinutes: 10},
				{
					ID: "lsn_3", Title: "Python Basics Quiz", Type: course.LessonQuiz, DurationMinutes: 5,
					Quiz: []course.QuizQuestion{
						{ID: "qz_1", Question: "Which keyword defines a function?", Options: []string{"func", "def", "function"}, CorrectIndex: 1},
					},
				},
				{ID: "lsn_4", Title: "Sum a List", Type: course.LessonCoding, Content: "def sum_list(xs):\n    pass", DurationMinutes: 20},
				{ID: "lsn_5", Title: "Data Analysis Project", Type: course.LessonProject, Content: "Analyse a public data set and publish your notebook.", DurationMinutes: 120},
			},
			Reviews:      []course.Review{},
			LiveSessions: []course.LiveSession{},
			CreatedAt:    now,
		},
		{
			ID:           "crs_2",
			Title:        "Web Development Bootcamp",
			Description:  "HTML, CSS and JavaScript for complete beginners.",
			Instructor:   teacher.Name,
			InstructorID: teacher.ID,
			Thumbnail:    "https://picsum.photos/seed/web/400/225",
			Level:        course.LevelBeginner,
			Language:     "English",
			Status:       course.StatusPublished,
			Tags:         []string{"Web", "JavaScript"},
			Lessons: []course.Lesson{
				{ID: "lsn_6", Title: "HTML Basics", Type: course.LessonVideo, Content: "https://www.youtube.com/embed/pQN-pnXPaVg", DurationMinutes: 30},
				{ID: "lsn_7", Title: "Build a Landing Page", Type: course.LessonCoding, Content: "<!-- your page -->", DurationMinutes: 60},
			},
			Reviews:      []course.Review{},
			LiveSessions: []course.LiveSession{},
			CreatedAt:    now,
		},
	}

	score, feedback := 90, "Clean and correct."
	s.submissions = []*course.Submission{
		{
			ID: "sub_1", StudentID: student.ID, StudentName: student.Name,
			CourseID: "crs_1", CourseTitle: "Python for Data Science",
			LessonID: "lsn_4", LessonTitle: "Sum a List", Type: course.SubmissionCoding,
			Code:  "def sum_list(xs):\n    return sum(xs)",
			Score: &score, Feedback: &feedback,
			SubmittedAt: now.Add(-24 * time.Hour), Status: course.SubmissionGraded,
		},
	}
	s.transactions = []course.Transaction{
		{ID: "txn_1", UserID: student.ID, CourseID: "crs_1", CourseTitle: "Python for Data Science", Amount: 49.99, Date: now.Add(-48 * time.Hour), Gateway: course.GatewayVNPay, Status: course.TransactionSuccess},
	}
	s.reports = []*admin.Report{
		{ID: "rpt_1", UserID: student.ID, Type: admin.ReportUI, Description: "Button overlaps on mobile", Status: admin.ReportNew, CreatedAt: now.Add(-6 * time.Hour)},
	}
	s.backups = []admin.Backup{
		{ID: "bkp_1", Name: "Auto Backup", Size: "256 MB", Type: admin.BackupFull, CreatedAt: now.Add(-72 * time.Hour)},
	}
	s.messages = []social.PrivateMessage{
		{ID: "msg_1", SenderID: teacher.ID, ReceiverID: student.ID, CourseID: "crs_1", Content: "Welcome to Python for Data Science! I am your instructor.", Timestamp: now.Add(-time.Hour)},
	}
	s.groups = []*social.StudyGroup{
		{
			ID: "grp_1", Name: "Pythonistas", Description: "Daily Python practice and code reviews.",
			CourseContext: "Python for Data Science",
			Members:       []string{student.ID}, MemberCount: 1,
			Posts: []social.ForumPost{},
		},
		{
			ID: "grp_2", Name: "Frontend Friends", Description: "Share your web projects.",
			Members: []string{}, MemberCount: 0,
			Posts: []social.ForumPost{},
		},
	}
	s.projects = []social.PortfolioProject{
		{ID: "prj_1", StudentID: student.ID, Title: "Covid Data Dashboard", Description: "Interactive dashboard built with pandas and plotly.", ImageURL: "https://picsum.photos/seed/dash/400/225", Tags: []string{"Python", "Data"}, CreatedAt: now.Add(-96 * time.Hour)},
	}
}
