package course

import (
	"math"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/educode/core"
)

var (
	// errors
	ErrNotFound           = errors.New("course not found")
	ErrLessonNotFound     = errors.New("lesson not found")
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrAlreadyEnrolled    = errors.New("already enrolled in this course")
	ErrPaymentRequired    = errors.New("a successful payment is required to enroll in this course")
)

type Level string

const (
	LevelBeginner     Level = "Beginner"
	LevelIntermediate Level = "Intermediate"
	LevelAdvanced     Level = "Advanced"
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
)

type LessonType string

const (
	LessonVideo   LessonType = "video"
	LessonReading LessonType = "reading"
	LessonQuiz    LessonType = "quiz"
	LessonCoding  LessonType = "coding"
	LessonProject LessonType = "project"
)

// IsAssignment reports whether lessons of this type expect a graded submission.
func (t LessonType) IsAssignment() bool {
	return t == LessonCoding || t == LessonProject
}

type (
	QuizQuestion struct {
		ID           string   `json:"id"`
		Question     string   `json:"question" validate:"required,notblank"`
		Options      []string `json:"options" validate:"min=2,dive,required"`
		CorrectIndex int      `json:"correct_index" validate:"min=0"`
	}

	Lesson struct {
		ID              string         `json:"id"`
		Title           string         `json:"title"`
		Type            LessonType     `json:"type"`
		Content         string         `json:"content"` // markdown, video URL, code template or project instructions
		DurationMinutes int            `json:"duration_minutes"`
		Quiz            []QuizQuestion `json:"quiz,omitempty"`
	}

	LiveSession struct {
		ID              string    `json:"id"`
		CourseID        string    `json:"course_id"`
		Title           string    `json:"title"`
		MeetLink        string    `json:"meet_link"`
		StartTime       time.Time `json:"start_time"`
		DurationMinutes int       `json:"duration_minutes"`
		InstructorName  string    `json:"instructor_name"`
	}

	Review struct {
		ID        string    `json:"id"`
		UserID    string    `json:"user_id"`
		UserName  string    `json:"user_name"`
		CourseID  string    `json:"course_id"`
		Rating    int       `json:"rating"` // 1-5
		Comment   string    `json:"comment"`
		CreatedAt time.Time `json:"created_at"`
	}

	Course struct {
		ID            string        `json:"id"`
		Title         string        `json:"title"`
		Description   string        `json:"description"`
		Instructor    string        `json:"instructor"`
		InstructorID  string        `json:"instructor_id,omitempty"`
		Thumbnail     string        `json:"thumbnail"`
		Price         float64       `json:"price"`
		Level         Level         `json:"level"`
		Language      string        `json:"language"`
		Rating        float64       `json:"rating"`
		StudentsCount int           `json:"students_count"`
		Lessons       []Lesson      `json:"lessons"`
		Status        Status        `json:"status"`
		Tags          []string      `json:"tags"`
		Reviews       []Review      `json:"reviews"`
		LiveSessions  []LiveSession `json:"live_sessions"`
		CreatedAt     time.Time     `json:"created_at"`
	}
)

func (c *Course) IsFree() bool { return c.Price <= 0 }

func (c *Course) Lesson(id string) (Lesson, bool) {
	for _, l := range c.Lessons {
		if l.ID == id {
			return l, true
		}
	}
	return Lesson{}, false
}

// AddReview appends r and recomputes Rating as the mean of all reviews, rounded to one decimal.
func (c *Course) AddReview(r Review) {
	c.Reviews = append(c.Reviews, r)
	sum := 0
	for _, rv := range c.Reviews {
		sum += rv.Rating
	}
	c.Rating = math.Round(float64(sum)/float64(len(c.Reviews))*10) / 10
}

// Clone returns a deep copy of c.
func (c Course) Clone() Course {
	lessons := make([]Lesson, len(c.Lessons))
	for i, l := range c.Lessons {
		if l.Quiz != nil {
			quiz := make([]QuizQuestion, len(l.Quiz))
			for j, q := range l.Quiz {
				q.Options = append([]string{}, q.Options...)
				quiz[j] = q
			}
			l.Quiz = quiz
		}
		lessons[i] = l
	}
	c.Lessons = lessons
	c.Tags = append([]string{}, c.Tags...)
	c.Reviews = append([]Review{}, c.Reviews...)
	c.LiveSessions = append([]LiveSession{}, c.LiveSessions...)
	return c
}

// NewCourse contains information needed to create a new Course.
type NewCourse struct {
	Title       string   `json:"title" validate:"required,notblank"`
	Description string   `json:"description"`
	Thumbnail   string   `json:"thumbnail" validate:"omitempty,url"`
	Price       float64  `json:"price" validate:"min=0"`
	Level       Level    `json:"level" validate:"required,oneof=Beginner Intermediate Advanced"`
	Language    string   `json:"language"`
	Tags        []string `json:"tags" validate:"dive,notblank"`
}

func (nc *NewCourse) Validate() error {
	nc.Title = core.CleanString(nc.Title)
	nc.Description = core.CleanString(nc.Description)
	nc.Thumbnail = core.CleanString(nc.Thumbnail)
	if nc.Language = core.CleanString(nc.Language); nc.Language == "" {
		nc.Language = "English"
	}
	return core.ValidateStruct(nc)
}

// UpdateCourse is a field-level patch: nil fields keep their current value.
type UpdateCourse struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Thumbnail   *string  `json:"thumbnail" validate:"omitempty,url"`
	Price       *float64 `json:"price" validate:"omitempty,min=0"`
	Language    *string  `json:"language"`
	Tags        []string `json:"tags" validate:"omitempty,dive,notblank"`
}

func (uc *UpdateCourse) Validate() error {
	var flds []core.FieldError
	if uc.Title != nil && core.CleanString(*uc.Title) == "" {
		flds = append(flds, core.FieldError{Field: "title", Error: "this field cannot be blank"})
	}
	if uc.Language != nil && core.CleanString(*uc.Language) == "" {
		flds = append(flds, core.FieldError{Field: "language", Error: "this field cannot be blank"})
	}
	if len(flds) > 0 {
		return core.NewValidationError(nil, flds...)
	}
	return core.ValidateStruct(uc)
}

// Apply patches c in place.
func (uc UpdateCourse) Apply(c *Course) {
	if uc.Title != nil {
		c.Title = core.CleanString(*uc.Title)
	}
	if uc.Description != nil {
		c.Description = core.CleanString(*uc.Description)
	}
	if uc.Thumbnail != nil {
		c.Thumbnail = core.CleanString(*uc.Thumbnail)
	}
	if uc.Price != nil {
		c.Price = *uc.Price
	}
	if uc.Language != nil {
		c.Language = core.CleanString(*uc.Language)
	}
	if uc.Tags != nil {
		c.Tags = append([]string{}, uc.Tags...)
	}
}

type NewLesson struct {
	Title           string         `json:"title" validate:"required,notblank"`
	Type            LessonType     `json:"type" validate:"required,oneof=video reading quiz coding project"`
	Content         string         `json:"content"`
	DurationMinutes int            `json:"duration_minutes" validate:"min=0"`
	Quiz            []QuizQuestion `json:"quiz" validate:"dive"`
}

func (nl *NewLesson) Validate() error {
	nl.Title = core.CleanString(nl.Title)
	return core.ValidateStruct(nl)
}

type NewLiveSession struct {
	Title           string    `json:"title" validate:"required,notblank"`
	MeetLink        string    `json:"meet_link" validate:"required,url"`
	StartTime       time.Time `json:"start_time" validate:"required"`
	DurationMinutes int       `json:"duration_minutes" validate:"min=1"`
}

func (ns *NewLiveSession) Validate() error {
	ns.Title = core.CleanString(ns.Title)
	ns.MeetLink = core.CleanString(ns.MeetLink)
	return core.ValidateStruct(ns)
}

type NewReview struct {
	Rating  int    `json:"rating" validate:"min=1,max=5"`
	Comment string `json:"comment"`
}

func (nr *NewReview) Validate() error {
	nr.Comment = core.CleanString(nr.Comment)
	return core.ValidateStruct(nr)
}

type QueryFilter struct {
	Search string `query:"search"`
	Status Status `query:"status"`
	Level  Level  `query:"level"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search, true /* lower */)
}
