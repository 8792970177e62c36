package course

import (
	"time"

	"github.com/trezcool/educode/core"
)

type SubmissionType string

const (
	SubmissionCoding  SubmissionType = "coding"
	SubmissionProject SubmissionType = "project"
	SubmissionQuiz    SubmissionType = "quiz"
	SubmissionFile    SubmissionType = "file"
)

type SubmissionStatus string

const (
	SubmissionOpen    SubmissionStatus = "open" // no submission yet; never stored
	SubmissionPending SubmissionStatus = "pending"
	SubmissionGraded  SubmissionStatus = "graded"
)

// CustomLessonID marks a free-form submission not tied to a lesson.
const CustomLessonID = "custom"

type Submission struct {
	ID              string           `json:"id"`
	StudentID       string           `json:"student_id"`
	StudentName     string           `json:"student_name"`
	CourseID        string           `json:"course_id"`
	CourseTitle     string           `json:"course_title"`
	LessonID        string           `json:"lesson_id"`
	LessonTitle     string           `json:"lesson_title"`
	Type            SubmissionType   `json:"type"`
	Code            string           `json:"code,omitempty"`
	RepoURL         string           `json:"repo_url,omitempty"`
	FileURL         string           `json:"file_url,omitempty"`
	Description     string           `json:"description,omitempty"`
	Score           *int             `json:"score"`
	Feedback        *string          `json:"feedback"`
	TestCasesPassed int              `json:"test_cases_passed,omitempty"`
	TotalTestCases  int              `json:"total_test_cases,omitempty"`
	SubmittedAt     time.Time        `json:"submitted_at"`
	Status          SubmissionStatus `json:"status"`
}

func (s *Submission) IsGraded() bool { return s.Status == SubmissionGraded }

// SetGrade sets score, feedback and the graded status in one step.
func (s *Submission) SetGrade(score int, feedback string) {
	s.Score = &score
	s.Feedback = &feedback
	s.Status = SubmissionGraded
}

func (s Submission) Clone() Submission {
	if s.Score != nil {
		score := *s.Score
		s.Score = &score
	}
	if s.Feedback != nil {
		feedback := *s.Feedback
		s.Feedback = &feedback
	}
	return s
}

// NewSubmission contains what a student sends for an assignment.
type NewSubmission struct {
	CourseID        string         `json:"course_id" validate:"required"`
	LessonID        string         `json:"lesson_id"`
	LessonTitle     string         `json:"lesson_title"`
	Type            SubmissionType `json:"type" validate:"required,oneof=coding project quiz file"`
	Code            string         `json:"code" validate:"required_if=Type coding"`
	RepoURL         string         `json:"repo_url" validate:"required_if=Type project,omitempty,url"`
	FileURL         string         `json:"file_url" validate:"required_if=Type file,omitempty,url"`
	Description     string         `json:"description"`
	TestCasesPassed int            `json:"test_cases_passed" validate:"min=0,ltefield=TotalTestCases"`
	TotalTestCases  int            `json:"total_test_cases" validate:"min=0"`
}

func (ns *NewSubmission) Validate() error {
	if ns.LessonID = core.CleanString(ns.LessonID); ns.LessonID == "" {
		ns.LessonID = CustomLessonID
	}
	ns.RepoURL = core.CleanString(ns.RepoURL)
	ns.FileURL = core.CleanString(ns.FileURL)
	ns.Description = core.CleanString(ns.Description)
	return core.ValidateStruct(ns)
}

type Grade struct {
	Score    int    `json:"score" validate:"min=0,max=100"`
	Feedback string `json:"feedback"`
}

func (g *Grade) Validate() error {
	g.Feedback = core.CleanString(g.Feedback)
	return core.ValidateStruct(g)
}

// LeaderboardEntry is one row of a course leaderboard.
type LeaderboardEntry struct {
	StudentID   string `json:"student_id"`
	StudentName string `json:"student_name"`
	AvatarURL   string `json:"avatar_url"`
	Score       int    `json:"score"`
}

// Assignment is a coding or project lesson of an enrolled course.
type Assignment struct {
	Lesson      Lesson           `json:"lesson"`
	CourseID    string           `json:"course_id"`
	CourseTitle string           `json:"course_title"`
	Status      SubmissionStatus `json:"status"`
}
