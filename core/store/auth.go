package store

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/educode/core"
	"github.com/trezcool/educode/core/notification"
	"github.com/trezcool/educode/core/user"
)

// MaxFailedLoginAttempts is the number of consecutive wrong passwords that locks an account.
const MaxFailedLoginAttempts = 5

// Login authenticates the session. Unknown emails fail with user.ErrNotFound and wrong passwords with
// user.ErrInvalidCredential; callers should show both as the same generic message.
// The 5th consecutive wrong password locks the account and every later attempt fails with
// user.ErrAccountLocked, even with the right password, until an admin unlocks it.
func (sess *Session) Login(email, password string) (user.User, error) {
	s := sess.store

	// compare outside the write lock
	s.mu.RLock()
	u := s.userByEmail(email)
	var hash []byte
	if u != nil {
		hash = append(hash, u.PasswordHash...)
	}
	s.mu.RUnlock()
	if u == nil {
		s.logger.Warn("login failed: unknown email", map[string]interface{}{"email": email})
		return user.User{}, user.ErrNotFound
	}
	probe := user.User{PasswordHash: hash}
	pwdErr := probe.CheckPassword(password)

	s.mu.Lock()
	defer s.unlock()

	u = s.userByEmail(email)
	if u == nil {
		return user.User{}, user.ErrNotFound
	}
	if u.IsLocked() {
		s.logger.Warn("login failed: account locked", map[string]interface{}{"user_id": u.ID})
		return user.User{}, user.ErrAccountLocked
	}
	if pwdErr != nil || !bytes.Equal(hash, u.PasswordHash) {
		u.FailedLoginAttempts++
		if u.FailedLoginAttempts >= MaxFailedLoginAttempts {
			u.Status = user.StatusLocked
			u.UpdatedAt = s.now()
			s.logger.Warn("account locked after too many failed logins", map[string]interface{}{"user_id": u.ID})
			return user.User{}, user.ErrAccountLocked
		}
		s.logger.Warn("login failed: invalid credentials", map[string]interface{}{"user_id": u.ID})
		return user.User{}, user.ErrInvalidCredential
	}

	u.FailedLoginAttempts = 0
	sess.userID = u.ID
	return u.Clone(), nil
}

// Logout clears the session identity and nothing else.
func (sess *Session) Logout() {
	sess.store.mu.Lock()
	defer sess.store.unlock()
	sess.userID = ""
}

func (s *Store) buildUser(nu user.NewUser) (*user.User, error) {
	now := s.now()
	usr := &user.User{
		ID:              core.NewID("usr"),
		Name:            nu.Name,
		Email:           nu.Email,
		Role:            nu.Role,
		Status:          user.StatusActive,
		AvatarURL:       "https://ui-avatars.com/api/?name=" + url.QueryEscape(nu.Name) + "&background=random",
		CoursesEnrolled: []string{},
		StudyGroups:     []string{},
		Preferences:     user.DefaultPreferences(),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if lang := s.conf.Site.DefaultLanguage; lang != "" {
		usr.Preferences.Language = lang
	}
	if err := usr.SetPassword(nu.Password, s.conf.PasswordHashCost); err != nil {
		return nil, errors.Wrap(err, "hashing password")
	}
	return usr, nil
}

func emailExistsErr() error {
	return core.NewValidationError(user.ErrEmailExists, core.FieldError{Field: "email", Error: user.ErrEmailExists.Error()})
}

// Register creates an active STUDENT or TEACHER account and makes it the session identity.
// On a duplicate email nothing is mutated.
func (sess *Session) Register(nu user.NewUser) (user.User, error) {
	if err := nu.Validate(); err != nil {
		return user.User{}, err
	}
	if nu.Role == user.RoleAdmin {
		return user.User{}, core.NewValidationError(nil, core.FieldError{Field: "role", Error: "invalid role"})
	}
	usr, err := sess.store.buildUser(nu)
	if err != nil {
		return user.User{}, err
	}

	s := sess.store
	s.mu.Lock()
	defer s.unlock()

	if s.userByEmail(usr.Email) != nil {
		s.logger.Warn("registration rejected: duplicate email", map[string]interface{}{"email": usr.Email})
		return user.User{}, emailExistsErr()
	}
	s.users = append(s.users, usr)
	sess.userID = usr.ID
	sess.notify("Account created successfully", notification.TypeSuccess)
	return usr.Clone(), nil
}

// AdminCreateUser creates an account without touching the session identity.
// Only the super-admin may create ADMIN accounts.
func (sess *Session) AdminCreateUser(nu user.NewUser) (user.User, error) {
	if err := nu.Validate(); err != nil {
		return user.User{}, err
	}
	usr, err := sess.store.buildUser(nu)
	if err != nil {
		return user.User{}, err
	}

	s := sess.store
	s.mu.Lock()
	defer s.unlock()

	actor, err := sess.requireAdmin()
	if err != nil {
		return user.User{}, err
	}
	if nu.Role == user.RoleAdmin && !strings.EqualFold(actor.Email, s.conf.SuperAdminEmail) {
		s.logger.Warn("admin creation rejected: not the super-admin", map[string]interface{}{"user_id": actor.ID})
		return user.User{}, core.ErrPermissionDenied
	}
	if s.userByEmail(usr.Email) != nil {
		sess.notify("Email already exists", notification.TypeError)
		return user.User{}, emailExistsErr()
	}
	s.users = append(s.users, usr)
	sess.notify(fmt.Sprintf("User %s (%s) created successfully.", usr.Name, usr.Role), notification.TypeSuccess)
	s.logger.Info("user created by admin", map[string]interface{}{"user_id": usr.ID, "role": usr.Role, "by": actor.ID})
	return usr.Clone(), nil
}

// ChangeOwnPassword replaces the session user's password once the current one is confirmed.
func (sess *Session) ChangeOwnPassword(current, newPwd string) error {
	s := sess.store

	s.mu.RLock()
	u, err := sess.requireUser()
	var probe user.User
	if err == nil {
		probe = u.Clone()
	}
	s.mu.RUnlock()
	if err != nil {
		return err
	}
	if err := probe.CheckPassword(current); err != nil {
		return core.NewValidationError(user.ErrInvalidCredential, core.FieldError{Field: "current_password", Error: "incorrect current password"})
	}
	if err := user.ValidatePassword(newPwd, probe); err != nil {
		return err
	}
	if err := probe.SetPassword(newPwd, s.conf.PasswordHashCost); err != nil {
		return errors.Wrap(err, "hashing password")
	}

	s.mu.Lock()
	defer s.unlock()
	if u, err = sess.requireUser(); err != nil {
		return err
	}
	u.PasswordHash = probe.PasswordHash
	u.UpdatedAt = s.now()
	sess.notify("Password changed successfully", notification.TypeSuccess)
	return nil
}

// UpdateProfile patches the session user's own profile and preferences.
func (sess *Session) UpdateProfile(up user.UpdateProfile) (user.User, error) {
	s := sess.store
	s.mu.Lock()
	defer s.unlock()

	u, err := sess.requireUser()
	if err != nil {
		return user.User{}, err
	}
	if err := up.Validate(*u); err != nil {
		return user.User{}, err
	}
	u.Name = up.Name
	u.AvatarURL = up.AvatarURL
	u.Bio = up.Bio
	u.Title = up.Title
	u.LearningGoals = up.LearningGoals
	u.Preferences = *up.Preferences
	u.UpdatedAt = s.now()
	sess.notify("Profile updated successfully", notification.TypeSuccess)
	return u.Clone(), nil
}

// UpdateUserStatus locks or unlocks an account. Unlocking also clears the failed login counter;
// locking leaves it untouched.
func (sess *Session) UpdateUserStatus(id string, status user.Status) (user.User, error) {
	if status != user.StatusActive && status != user.StatusLocked {
		return user.User{}, core.NewValidationError(nil, core.FieldError{Field: "status", Error: "status must be one of [active locked]"})
	}

	s := sess.store
	s.mu.Lock()
	defer s.unlock()

	actor, err := sess.requireAdmin()
	if err != nil {
		return user.User{}, err
	}
	u := s.userByID(id)
	if u == nil {
		return user.User{}, user.ErrNotFound
	}
	u.Status = status
	if status == user.StatusActive {
		u.FailedLoginAttempts = 0
	}
	u.UpdatedAt = s.now()
	sess.notify(fmt.Sprintf("Status: %s", status), notification.TypeInfo)
	s.logger.Info("user status updated", map[string]interface{}{"user_id": u.ID, "status": status, "by": actor.ID})
	return u.Clone(), nil
}

// CreateUser creates an account outside of any session: start-up provisioning of the super-admin
// and test fixtures. It applies the same validation and uniqueness rules as AdminCreateUser.
func (s *Store) CreateUser(nu user.NewUser) (user.User, error) {
	if err := nu.Validate(); err != nil {
		return user.User{}, err
	}
	usr, err := s.buildUser(nu)
	if err != nil {
		return user.User{}, err
	}

	s.mu.Lock()
	defer s.unlock()
	if s.userByEmail(usr.Email) != nil {
		return user.User{}, emailExistsErr()
	}
	s.users = append(s.users, usr)
	s.logger.Info("user created", map[string]interface{}{"user_id": usr.ID, "role": usr.Role})
	return usr.Clone(), nil
}
