package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/educode/core"
	"github.com/trezcool/educode/core/course"
	"github.com/trezcool/educode/core/notification"
	"github.com/trezcool/educode/core/user"
)

// SubmitAssignment always records a new pending, ungraded submission of the session user.
// The student and the course instructor are notified.
func (sess *Session) SubmitAssignment(ns course.NewSubmission) (course.Submission, error) {
	if err := ns.Validate(); err != nil {
		return course.Submission{}, err
	}

	s := sess.store
	s.mu.Lock()
	defer s.unlock()

	u, err := sess.requireUser()
	if err != nil {
		return course.Submission{}, err
	}
	c := s.courseByID(ns.CourseID)
	if c == nil {
		return course.Submission{}, course.ErrNotFound
	}
	lessonTitle := ns.LessonTitle
	if ns.LessonID != course.CustomLessonID {
		lesson, ok := c.Lesson(ns.LessonID)
		if !ok {
			return course.Submission{}, course.ErrLessonNotFound
		}
		lessonTitle = lesson.Title
	} else if lessonTitle == "" {
		lessonTitle = "Custom submission"
	}

	sub := &course.Submission{
		ID:              core.NewID("sub"),
		StudentID:       u.ID,
		StudentName:     u.Name,
		CourseID:        c.ID,
		CourseTitle:     c.Title,
		LessonID:        ns.LessonID,
		LessonTitle:     lessonTitle,
		Type:            ns.Type,
		Code:            ns.Code,
		RepoURL:         ns.RepoURL,
		FileURL:         ns.FileURL,
		Description:     ns.Description,
		TestCasesPassed: ns.TestCasesPassed,
		TotalTestCases:  ns.TotalTestCases,
		SubmittedAt:     s.now(),
		Status:          course.SubmissionPending,
	}
	s.submissions = append([]*course.Submission{sub}, s.submissions...)

	sess.notify("Assignment submitted successfully", notification.TypeSuccess, sub.StudentID)
	if c.InstructorID != "" {
		sess.notify(fmt.Sprintf("New submission from %s in %s", sub.StudentName, c.Title), notification.TypeInfo, c.InstructorID)
	}
	return sub.Clone(), nil
}

// gradableSubmission resolves a submission the session user may grade: admins grade anything,
// teachers the submissions of the courses they instruct. Callers must hold store.mu.
func (sess *Session) gradableSubmission(id string) (*course.Submission, *user.User, error) {
	u, err := sess.requireStaff()
	if err != nil {
		return nil, nil, err
	}
	sub := sess.store.submissionByID(id)
	if sub == nil {
		return nil, nil, course.ErrSubmissionNotFound
	}
	if !u.IsAdmin() {
		if c := sess.store.courseByID(sub.CourseID); c == nil || c.InstructorID != u.ID {
			return nil, nil, core.ErrPermissionDenied
		}
	}
	return sub, u, nil
}

// grade sets score, feedback and the graded status at once and tells the student.
// Grading an already graded submission overwrites its score and feedback.
func (sess *Session) grade(sub *course.Submission, score int, feedback string) {
	sub.SetGrade(score, feedback)
	sess.notify(fmt.Sprintf("%s graded. Score: %d", sub.LessonTitle, score), notification.TypeInfo, sub.StudentID)
}

// GradeAssignment grades a submission; unknown ids fail with course.ErrSubmissionNotFound.
func (sess *Session) GradeAssignment(id string, g course.Grade) (course.Submission, error) {
	if err := g.Validate(); err != nil {
		return course.Submission{}, err
	}

	s := sess.store
	s.mu.Lock()
	defer s.unlock()

	sub, _, err := sess.gradableSubmission(id)
	if err != nil {
		return course.Submission{}, err
	}
	sess.grade(sub, g.Score, g.Feedback)
	return sub.Clone(), nil
}

// AutoGradeAssignment asks the AI grader for a score without holding the store lock.
// The grade is applied atomically on a usable answer only; a failed or cancelled call
// changes nothing and returns an error wrapping core.ErrExternalService.
func (sess *Session) AutoGradeAssignment(ctx context.Context, ai core.AIService, id, task string) (course.Submission, error) {
	s := sess.store

	s.mu.RLock()
	sub, _, err := sess.gradableSubmission(id)
	var snapshot course.Submission
	if err == nil {
		snapshot = sub.Clone()
	}
	s.mu.RUnlock()
	if err != nil {
		return course.Submission{}, err
	}

	code := snapshot.Code
	if code == "" {
		code = strings.TrimSpace(snapshot.Description + "\n" + snapshot.RepoURL + "\n" + snapshot.FileURL)
	}
	if task = core.CleanString(task); task == "" {
		task = snapshot.LessonTitle
	}

	res, err := ai.GradeCode(ctx, code, task)
	if err != nil {
		s.logger.Warn("auto-grading failed", err, map[string]interface{}{"submission_id": id})
		return snapshot, err
	}
	if ctx.Err() != nil {
		return snapshot, errors.Wrap(core.ErrExternalService, "auto-grading cancelled")
	}
	res = res.Clamped()

	s.mu.Lock()
	defer s.unlock()
	sub, _, err = sess.gradableSubmission(id)
	if err != nil {
		return snapshot, err
	}
	sess.grade(sub, res.Score, res.Feedback)
	return sub.Clone(), nil
}

// SubmissionStatus is the session user's status for a lesson: that of the most recently submitted
// matching submission, or open when there is none.
func (sess *Session) SubmissionStatus(lessonID string) course.SubmissionStatus {
	s := sess.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.submissionStatus(sess.userID, lessonID)
}

func (s *Store) submissionStatus(studentID, lessonID string) course.SubmissionStatus {
	var latest *course.Submission
	for _, sub := range s.submissions {
		if sub.StudentID != studentID || sub.LessonID != lessonID {
			continue
		}
		if latest == nil || sub.SubmittedAt.After(latest.SubmittedAt) {
			latest = sub
		}
	}
	if latest == nil {
		return course.SubmissionOpen
	}
	return latest.Status
}

// MySubmissions lists the session user's submissions, newest first.
func (sess *Session) MySubmissions() []course.Submission {
	s := sess.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	subs := make([]course.Submission, 0)
	if sess.userID == "" {
		return subs
	}
	for _, sub := range s.submissions {
		if sub.StudentID == sess.userID {
			subs = append(subs, sub.Clone())
		}
	}
	return subs
}
