package store

import (
	"fmt"

	"github.com/trezcool/educode/core"
	"github.com/trezcool/educode/core/course"
	"github.com/trezcool/educode/core/notification"
	"github.com/trezcool/educode/core/social"
)

// EnrollCourse enrolls the session user in a course.
// Free courses enroll directly; priced courses need the successful payment confirmation txn.
// Enrolling twice fails with course.ErrAlreadyEnrolled and changes nothing.
// On success, all at once: the course joins the user's enrollments, the course's student count
// grows by one, txn (if any) is recorded, the instructor sends a welcome message and the user
// gets a success notification.
func (sess *Session) EnrollCourse(courseID string, txn *course.Transaction) (course.Course, error) {
	s := sess.store
	s.mu.Lock()
	defer s.unlock()

	u, err := sess.requireUser()
	if err != nil {
		return course.Course{}, err
	}
	c := s.courseByID(courseID)
	if c == nil {
		return course.Course{}, course.ErrNotFound
	}
	if u.IsEnrolled(c.ID) {
		return course.Course{}, course.ErrAlreadyEnrolled
	}

	var record *course.Transaction
	if txn != nil {
		t := *txn
		t.ID = ""
		if err := t.Validate(u.ID, *c); err != nil {
			return course.Course{}, err
		}
		if !s.sysConf.GatewayEnabled(t.Gateway.Key()) {
			return course.Course{}, core.NewValidationError(nil, core.FieldError{
				Field: "gateway",
				Error: fmt.Sprintf("payment gateway %s is disabled", t.Gateway),
			})
		}
		record = &t
	}
	if !c.IsFree() && (record == nil || !record.Succeeded()) {
		s.logger.Warn("enrollment rejected: payment required", map[string]interface{}{"user_id": u.ID, "course_id": c.ID})
		return course.Course{}, course.ErrPaymentRequired
	}

	u.CoursesEnrolled = append(u.CoursesEnrolled, c.ID)
	c.StudentsCount++
	if record != nil {
		record.ID = core.NewID("txn")
		s.transactions = append([]course.Transaction{*record}, s.transactions...)
	}
	if c.InstructorID != "" {
		s.messages = append(s.messages, social.PrivateMessage{
			ID:         core.NewID("msg"),
			SenderID:   c.InstructorID,
			ReceiverID: u.ID,
			CourseID:   c.ID,
			Content:    fmt.Sprintf("Welcome to %s!", c.Title),
			Timestamp:  s.now(),
		})
	}
	sess.notify(fmt.Sprintf("Enrolled in %s successfully", c.Title), notification.TypeSuccess)
	return c.Clone(), nil
}

// EnrolledCourses lists the session user's courses in enrollment order.
func (sess *Session) EnrolledCourses() []course.Course {
	s := sess.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	courses := make([]course.Course, 0)
	u := sess.current()
	if u == nil {
		return courses
	}
	for _, id := range u.CoursesEnrolled {
		if c := s.courseByID(id); c != nil {
			courses = append(courses, c.Clone())
		}
	}
	return courses
}
