package store

import (
	"github.com/trezcool/educode/core"
	"github.com/trezcool/educode/core/course"
	"github.com/trezcool/educode/core/notification"
	"github.com/trezcool/educode/core/user"
)

// editableCourse resolves a course the session user may change: admins may change any course,
// teachers only the ones they instruct. Callers must hold store.mu.
func (sess *Session) editableCourse(id string) (*course.Course, *user.User, error) {
	u, err := sess.requireStaff()
	if err != nil {
		return nil, nil, err
	}
	c := sess.store.courseByID(id)
	if c == nil {
		return nil, nil, course.ErrNotFound
	}
	if !u.IsAdmin() && c.InstructorID != u.ID {
		return nil, nil, core.ErrPermissionDenied
	}
	return c, u, nil
}

// AddCourse creates a draft course instructed by the session user.
func (sess *Session) AddCourse(nc course.NewCourse) (course.Course, error) {
	if err := nc.Validate(); err != nil {
		return course.Course{}, err
	}

	s := sess.store
	s.mu.Lock()
	defer s.unlock()

	u, err := sess.requireStaff()
	if err != nil {
		return course.Course{}, err
	}
	tags := nc.Tags
	if tags == nil {
		tags = []string{}
	}
	c := &course.Course{
		ID:           core.NewID("crs"),
		Title:        nc.Title,
		Description:  nc.Description,
		Instructor:   u.Name,
		InstructorID: u.ID,
		Thumbnail:    nc.Thumbnail,
		Price:        nc.Price,
		Level:        nc.Level,
		Language:     nc.Language,
		Status:       course.StatusDraft,
		Lessons:      []course.Lesson{},
		Tags:         append([]string{}, tags...),
		Reviews:      []course.Review{},
		LiveSessions: []course.LiveSession{},
		CreatedAt:    s.now(),
	}
	s.courses = append(s.courses, c)
	sess.notify("Course created successfully", notification.TypeSuccess)
	return c.Clone(), nil
}

// UpdateCourse applies a field-level patch.
func (sess *Session) UpdateCourse(id string, uc course.UpdateCourse) (course.Course, error) {
	if err := uc.Validate(); err != nil {
		return course.Course{}, err
	}

	s := sess.store
	s.mu.Lock()
	defer s.unlock()

	c, _, err := sess.editableCourse(id)
	if err != nil {
		return course.Course{}, err
	}
	uc.Apply(c)
	sess.notify("Course updated successfully", notification.TypeSuccess)
	return c.Clone(), nil
}

// AddLessonToCourse appends a lesson; lessons are never reordered nor removed.
func (sess *Session) AddLessonToCourse(courseID string, nl course.NewLesson) (course.Lesson, error) {
	if err := nl.Validate(); err != nil {
		return course.Lesson{}, err
	}

	s := sess.store
	s.mu.Lock()
	defer s.unlock()

	c, _, err := sess.editableCourse(courseID)
	if err != nil {
		return course.Lesson{}, err
	}
	lesson := course.Lesson{
		ID:              core.NewID("lsn"),
		Title:           nl.Title,
		Type:            nl.Type,
		Content:         nl.Content,
		DurationMinutes: nl.DurationMinutes,
	}
	for _, q := range nl.Quiz {
		q.ID = core.NewID("qz")
		q.Options = append([]string{}, q.Options...)
		lesson.Quiz = append(lesson.Quiz, q)
	}
	c.Lessons = append(c.Lessons, lesson)
	sess.notify("Lesson added successfully", notification.TypeSuccess)
	return c.Clone().Lessons[len(c.Lessons)-1], nil
}

// AddLiveSessionToCourse schedules a live session; sessions are append only.
func (sess *Session) AddLiveSessionToCourse(courseID string, ns course.NewLiveSession) (course.LiveSession, error) {
	if err := ns.Validate(); err != nil {
		return course.LiveSession{}, err
	}

	s := sess.store
	s.mu.Lock()
	defer s.unlock()

	c, _, err := sess.editableCourse(courseID)
	if err != nil {
		return course.LiveSession{}, err
	}
	ls := course.LiveSession{
		ID:              core.NewID("live"),
		CourseID:        c.ID,
		Title:           ns.Title,
		MeetLink:        ns.MeetLink,
		StartTime:       ns.StartTime.UTC(),
		DurationMinutes: ns.DurationMinutes,
		InstructorName:  c.Instructor,
	}
	c.LiveSessions = append(c.LiveSessions, ls)
	sess.notify("Live session scheduled", notification.TypeSuccess)
	return ls, nil
}

// UpdateCourseStatus moves a course between draft, published and archived.
func (sess *Session) UpdateCourseStatus(id string, status course.Status) (course.Course, error) {
	switch status {
	case course.StatusDraft, course.StatusPublished, course.StatusArchived:
	default:
		return course.Course{}, core.NewValidationError(nil, core.FieldError{Field: "status", Error: "status must be one of [draft published archived]"})
	}

	s := sess.store
	s.mu.Lock()
	defer s.unlock()

	c, u, err := sess.editableCourse(id)
	if err != nil {
		return course.Course{}, err
	}
	c.Status = status
	sess.notify("Course updated successfully", notification.TypeSuccess)
	s.logger.Info("course status updated", map[string]interface{}{"course_id": c.ID, "status": status, "by": u.ID})
	return c.Clone(), nil
}

// UpdateCourseLevel changes the learning path level of a course.
func (sess *Session) UpdateCourseLevel(id string, level course.Level) (course.Course, error) {
	switch level {
	case course.LevelBeginner, course.LevelIntermediate, course.LevelAdvanced:
	default:
		return course.Course{}, core.NewValidationError(nil, core.FieldError{Field: "level", Error: "level must be one of [Beginner Intermediate Advanced]"})
	}

	s := sess.store
	s.mu.Lock()
	defer s.unlock()

	c, _, err := sess.editableCourse(id)
	if err != nil {
		return course.Course{}, err
	}
	c.Level = level
	sess.notify("Learning path updated", notification.TypeSuccess)
	return c.Clone(), nil
}

// AddReview records the session user's review and recomputes the course rating.
func (sess *Session) AddReview(courseID string, nr course.NewReview) (course.Course, error) {
	if err := nr.Validate(); err != nil {
		return course.Course{}, err
	}

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
	c.AddReview(course.Review{
		ID:        core.NewID("rev"),
		UserID:    u.ID,
		UserName:  u.Name,
		CourseID:  c.ID,
		Rating:    nr.Rating,
		Comment:   nr.Comment,
		CreatedAt: s.now(),
	})
	sess.notify("Review submitted", notification.TypeSuccess)
	return c.Clone(), nil
}
