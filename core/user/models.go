package user

import (
	"time"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/educode/core"
)

var (
	// errors
	ErrNotFound          = errors.New("user not found")
	ErrEmailExists       = errors.New("a user with this email already exists")
	ErrInvalidCredential = errors.New("invalid credentials")
	ErrAccountLocked     = errors.New("account locked")
)

type Role string

// Roles
const (
	RoleGuest   Role = "GUEST"
	RoleStudent Role = "STUDENT"
	RoleTeacher Role = "TEACHER"
	RoleAdmin   Role = "ADMIN"
)

var (
	// AllRoles are the roles a registered account may hold; GUEST is only ever a session state.
	AllRoles = []Role{RoleStudent, RoleTeacher, RoleAdmin}

	rolePriorities = map[Role]int{
		RoleAdmin:   30,
		RoleTeacher: 20,
		RoleStudent: 10,
		RoleGuest:   0,
	}
)

func RolePriority(role Role) int {
	return rolePriorities[role]
}

type Status string

const (
	StatusActive Status = "active"
	StatusLocked Status = "locked"
)

type Preferences struct {
	Language      string `json:"language" validate:"omitempty,oneof=en vn"`
	Notifications bool   `json:"notifications"`
}

func DefaultPreferences() Preferences {
	return Preferences{Language: "en", Notifications: true}
}

type User struct {
	ID                  string      `json:"id"`
	Name                string      `json:"name"`
	Email               string      `json:"email"`
	PasswordHash        []byte      `json:"-"`
	FailedLoginAttempts int         `json:"failed_login_attempts"`
	Role                Role        `json:"role"`
	Status              Status      `json:"status"`
	AvatarURL           string      `json:"avatar_url"`
	Bio                 string      `json:"bio,omitempty"`
	Title               string      `json:"title,omitempty"`
	LearningGoals       string      `json:"learning_goals,omitempty"`
	CoursesEnrolled     []string    `json:"courses_enrolled"`
	StudyGroups         []string    `json:"study_groups"`
	Preferences         Preferences `json:"preferences"`
	CreatedAt           time.Time   `json:"created_at"` // UTC
	UpdatedAt           time.Time   `json:"updated_at"` // UTC
}

// SetPassword stores a bcrypt hash of pwd; the clear text is never kept.
func (u *User) SetPassword(pwd string, cost int) error {
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), cost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u *User) IsAdmin() bool   { return u.Role == RoleAdmin }
func (u *User) IsTeacher() bool { return u.Role == RoleTeacher }
func (u *User) IsStudent() bool { return u.Role == RoleStudent }
func (u *User) IsStaff() bool   { return u.IsAdmin() || u.IsTeacher() }
func (u *User) IsLocked() bool  { return u.Status == StatusLocked }

func (u *User) IsEnrolled(courseID string) bool {
	return contains(u.CoursesEnrolled, courseID)
}

func (u *User) IsGroupMember(groupID string) bool {
	return contains(u.StudyGroups, groupID)
}

// Clone returns a copy of u that shares no slices with it.
func (u User) Clone() User {
	u.PasswordHash = append([]byte(nil), u.PasswordHash...)
	u.CoursesEnrolled = append([]string{}, u.CoursesEnrolled...)
	u.StudyGroups = append([]string{}, u.StudyGroups...)
	return u
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// NewUser contains information needed to create a new User.
type NewUser struct {
	Name     string `json:"name" validate:"required,notblank"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     Role   `json:"role" validate:"required,role"`
}

func (nu *NewUser) Validate() error {
	nu.Name = core.CleanString(nu.Name)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	return core.ValidateStruct(nu)
}

// UpdateProfile defines what information a user may change on their own account.
// Blank fields keep their current value.
type UpdateProfile struct {
	Name          string       `json:"name"`
	AvatarURL     string       `json:"avatar_url" validate:"omitempty,url"`
	Bio           string       `json:"bio"`
	Title         string       `json:"title"`
	LearningGoals string       `json:"learning_goals"`
	Preferences   *Preferences `json:"preferences"`
}

func (up *UpdateProfile) Validate(origUsr User) error {
	if name := core.CleanString(up.Name); name != "" {
		up.Name = name
	} else {
		up.Name = origUsr.Name
	}
	if up.AvatarURL = core.CleanString(up.AvatarURL); up.AvatarURL == "" {
		up.AvatarURL = origUsr.AvatarURL
	}
	if up.Bio = core.CleanString(up.Bio); up.Bio == "" {
		up.Bio = origUsr.Bio
	}
	if up.Title = core.CleanString(up.Title); up.Title == "" {
		up.Title = origUsr.Title
	}
	if up.LearningGoals = core.CleanString(up.LearningGoals); up.LearningGoals == "" {
		up.LearningGoals = origUsr.LearningGoals
	}
	if up.Preferences == nil {
		prefs := origUsr.Preferences
		up.Preferences = &prefs
	}
	return core.ValidateStruct(up)
}

type QueryFilter struct {
	Search string `query:"search"`
	Role   Role   `query:"role"`
	Status Status `query:"status"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search, true /* lower */)
}
