package store_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/educode/core"
	"github.com/trezcool/educode/core/store"
	"github.com/trezcool/educode/core/user"
	testutil "github.com/trezcool/educode/tests"
)

func TestSession_Login(t *testing.T) {
	st, _ := testutil.NewStore(t)
	usr := testutil.CreateUser(t, st, "Jane Doe", "jane@test.vn", user.RoleStudent)

	tests := []struct {
		name    string
		email   string
		pwd     string
		wantErr error
	}{
		{name: "unknown email", email: "nobody@test.vn", pwd: testutil.Password, wantErr: user.ErrNotFound},
		{name: "wrong password", email: usr.Email, pwd: "wrong-password", wantErr: user.ErrInvalidCredential},
		{name: "email is case insensitive", email: "  JANE@test.VN ", pwd: testutil.Password},
		{name: "valid credentials", email: usr.Email, pwd: testutil.Password},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess := st.NewSession()
			got, err := sess.Login(tt.email, tt.pwd)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "Login() error = %v, wantErr %v", err, tt.wantErr)
				assert.False(t, sess.IsAuthenticated())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, usr.ID, got.ID)
			me, ok := sess.User()
			assert.True(t, ok)
			assert.Equal(t, usr.ID, me.ID)
		})
	}
}

func TestSession_Login_locksAfterFailures(t *testing.T) {
	st, _ := testutil.NewStore(t)
	_, admSess := testutil.SuperAdmin(t, st)
	usr := testutil.CreateUser(t, st, "Jane Doe", "jane@test.vn", user.RoleStudent)
	sess := st.NewSession()

	for i := 1; i < store.MaxFailedLoginAttempts; i++ {
		_, err := sess.Login(usr.Email, "wrong-password")
		assert.Equal(t, user.ErrInvalidCredential, err, "attempt %d", i)
	}
	got, _ := st.User(usr.ID)
	assert.Equal(t, store.MaxFailedLoginAttempts-1, got.FailedLoginAttempts)
	assert.Equal(t, user.StatusActive, got.Status)

	_, err := sess.Login(usr.Email, "wrong-password")
	assert.Equal(t, user.ErrAccountLocked, err)
	got, _ = st.User(usr.ID)
	assert.Equal(t, user.StatusLocked, got.Status)
	assert.Equal(t, store.MaxFailedLoginAttempts, got.FailedLoginAttempts)

	// the right password does not help anymore
	_, err = sess.Login(usr.Email, testutil.Password)
	assert.Equal(t, user.ErrAccountLocked, err)
	assert.False(t, sess.IsAuthenticated())
	got, _ = st.User(usr.ID)
	assert.Equal(t, store.MaxFailedLoginAttempts, got.FailedLoginAttempts)
	assert.Equal(t, user.StatusLocked, got.Status)
	_, err = st.SessionFor(usr.ID)
	assert.Equal(t, user.ErrAccountLocked, err)

	// unlocking resets the counter
	got, err = admSess.UpdateUserStatus(usr.ID, user.StatusActive)
	require.NoError(t, err)
	assert.Equal(t, user.StatusActive, got.Status)
	assert.Zero(t, got.FailedLoginAttempts)

	_, err = sess.Login(usr.Email, testutil.Password)
	assert.NoError(t, err)
}

func TestSession_Login_successResetsCounter(t *testing.T) {
	st, _ := testutil.NewStore(t)
	usr := testutil.CreateUser(t, st, "Jane Doe", "jane@test.vn", user.RoleStudent)
	sess := st.NewSession()

	for i := 0; i < store.MaxFailedLoginAttempts-1; i++ {
		_, _ = sess.Login(usr.Email, "wrong-password")
	}
	_, err := sess.Login(usr.Email, testutil.Password)
	require.NoError(t, err)
	got, _ := st.User(usr.ID)
	assert.Zero(t, got.FailedLoginAttempts)

	// a fresh streak is needed to lock the account again
	_, err = sess.Login(usr.Email, "wrong-password")
	assert.Equal(t, user.ErrInvalidCredential, err)
}

func TestSession_Logout(t *testing.T) {
	st, _ := testutil.NewStore(t)
	usr := testutil.CreateUser(t, st, "Jane Doe", "jane@test.vn", user.RoleStudent)
	sess := testutil.Login(t, st, usr.Email)

	sess.Logout()
	assert.False(t, sess.IsAuthenticated())
	_, err := st.User(usr.ID)
	assert.NoError(t, err, "logout must not touch the users collection")
}

func TestSession_Register(t *testing.T) {
	st, _ := testutil.NewStore(t)
	existing := testutil.CreateUser(t, st, "Jane Doe", "jane@test.vn", user.RoleStudent)

	tests := []struct {
		name      string
		nu        user.NewUser
		wantValid bool
		wantErr   error
	}{
		{name: "duplicate email", nu: user.NewUser{Name: "Other", Email: " JANE@test.vn", Password: testutil.Password, Role: user.RoleStudent}, wantErr: user.ErrEmailExists},
		{name: "admin role", nu: user.NewUser{Name: "Mallory", Email: "mallory@test.vn", Password: testutil.Password, Role: user.RoleAdmin}, wantValid: true},
		{name: "guest role", nu: user.NewUser{Name: "Ghost", Email: "ghost@test.vn", Password: testutil.Password, Role: user.RoleGuest}, wantValid: true},
		{name: "blank name", nu: user.NewUser{Name: "  ", Email: "blank@test.vn", Password: testutil.Password, Role: user.RoleStudent}, wantValid: true},
		{name: "short password", nu: user.NewUser{Name: "Short", Email: "short@test.vn", Password: "abc", Role: user.RoleStudent}, wantValid: true},
		{name: "password like email", nu: user.NewUser{Name: "Sam", Email: "samantha@test.vn", Password: "samantha1", Role: user.RoleStudent}, wantValid: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := len(st.Users(user.QueryFilter{}))
			sess := st.NewSession()
			_, err := sess.Register(tt.nu)
			require.Error(t, err)
			assert.True(t, core.IsValidationError(err))
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr))
			}
			assert.False(t, sess.IsAuthenticated())
			assert.Len(t, st.Users(user.QueryFilter{}), before)
		})
	}

	t.Run("success", func(t *testing.T) {
		sess := st.NewSession()
		usr, err := sess.Register(user.NewUser{Name: " New Teacher ", Email: "Teach@Test.vn", Password: testutil.Password, Role: user.RoleTeacher})
		require.NoError(t, err)
		assert.Equal(t, "New Teacher", usr.Name)
		assert.Equal(t, "teach@test.vn", usr.Email)
		assert.Equal(t, user.StatusActive, usr.Status)
		assert.Zero(t, usr.FailedLoginAttempts)
		assert.Empty(t, usr.CoursesEnrolled)
		assert.NotEqual(t, existing.ID, usr.ID)

		me, ok := sess.User()
		require.True(t, ok)
		assert.Equal(t, usr.ID, me.ID)
		ntfs := sess.Notifications()
		require.Len(t, ntfs, 1)
		assert.Equal(t, "Account created successfully", ntfs[0].Message)
	})
}

func TestSession_AdminCreateUser(t *testing.T) {
	st, _ := testutil.NewStore(t)
	_, rootSess := testutil.SuperAdmin(t, st)
	otherAdm := testutil.CreateUser(t, st, "Other Admin", "admin2@test.vn", user.RoleAdmin)
	otherSess := testutil.Login(t, st, otherAdm.Email)
	teacher := testutil.CreateUser(t, st, "Teacher", "teacher@test.vn", user.RoleTeacher)
	teacherSess := testutil.Login(t, st, teacher.Email)

	newUsr := func(email string, role user.Role) user.NewUser {
		return user.NewUser{Name: "Created User", Email: email, Password: testutil.Password, Role: role}
	}

	tests := []struct {
		name    string
		sess    *store.Session
		nu      user.NewUser
		wantErr error
	}{
		{name: "guest", sess: st.NewSession(), nu: newUsr("a@test.vn", user.RoleStudent), wantErr: core.ErrUnauthenticated},
		{name: "teacher", sess: teacherSess, nu: newUsr("b@test.vn", user.RoleStudent), wantErr: core.ErrPermissionDenied},
		{name: "admin creating admin", sess: otherSess, nu: newUsr("c@test.vn", user.RoleAdmin), wantErr: core.ErrPermissionDenied},
		{name: "duplicate email", sess: rootSess, nu: newUsr(teacher.Email, user.RoleStudent), wantErr: user.ErrEmailExists},
		{name: "admin creating teacher", sess: otherSess, nu: newUsr("d@test.vn", user.RoleTeacher)},
		{name: "super-admin creating admin", sess: rootSess, nu: newUsr("e@test.vn", user.RoleAdmin)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before, _ := tt.sess.User()
			got, err := tt.sess.AdminCreateUser(tt.nu)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "AdminCreateUser() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.nu.Role, got.Role)
			after, _ := tt.sess.User()
			assert.Equal(t, before.ID, after.ID, "the session identity must not change")

			_, ok := testutil.Login(t, st, got.Email).User()
			assert.True(t, ok)
		})
	}
}

func TestSession_ChangeOwnPassword(t *testing.T) {
	st, _ := testutil.NewStore(t)
	usr := testutil.CreateUser(t, st, "Jane Doe", "jane@test.vn", user.RoleStudent)
	sess := testutil.Login(t, st, usr.Email)

	err := st.NewSession().ChangeOwnPassword(testutil.Password, "N3w-Secret!")
	assert.Equal(t, core.ErrUnauthenticated, err)

	err = sess.ChangeOwnPassword("wrong-password", "N3w-Secret!")
	assert.True(t, errors.Is(err, user.ErrInvalidCredential))

	err = sess.ChangeOwnPassword(testutil.Password, "abc")
	assert.True(t, core.IsValidationError(err))

	err = sess.ChangeOwnPassword(testutil.Password, "jane.doe")
	assert.True(t, core.IsValidationError(err), "password similar to the name")

	require.NoError(t, sess.ChangeOwnPassword(testutil.Password, "N3w-Secret!"))
	_, err = st.NewSession().Login(usr.Email, testutil.Password)
	assert.Equal(t, user.ErrInvalidCredential, err)
	_, err = st.NewSession().Login(usr.Email, "N3w-Secret!")
	assert.NoError(t, err)
}

func TestSession_UpdateProfile(t *testing.T) {
	st, _ := testutil.NewStore(t)
	usr := testutil.CreateUser(t, st, "Jane Doe", "jane@test.vn", user.RoleStudent)
	sess := testutil.Login(t, st, usr.Email)

	_, err := sess.UpdateProfile(user.UpdateProfile{AvatarURL: "not a url"})
	assert.True(t, core.IsValidationError(err))
	_, err = sess.UpdateProfile(user.UpdateProfile{Preferences: &user.Preferences{Language: "fr"}})
	assert.True(t, core.IsValidationError(err))

	got, err := sess.UpdateProfile(user.UpdateProfile{Bio: " Loves Go ", Preferences: &user.Preferences{Language: "vn"}})
	require.NoError(t, err)
	assert.Equal(t, usr.Name, got.Name, "blank fields keep their value")
	assert.Equal(t, usr.AvatarURL, got.AvatarURL)
	assert.Equal(t, "Loves Go", got.Bio)
	assert.Equal(t, "vn", got.Preferences.Language)
	assert.False(t, got.Preferences.Notifications)

	stored, _ := st.User(usr.ID)
	assert.Equal(t, got, stored)
}

func TestSession_UpdateUserStatus(t *testing.T) {
	st, _ := testutil.NewStore(t)
	adm, admSess := testutil.SuperAdmin(t, st)
	usr := testutil.CreateUser(t, st, "Jane Doe", "jane@test.vn", user.RoleStudent)
	usrSess := testutil.Login(t, st, usr.Email)

	_, err := usrSess.UpdateUserStatus(usr.ID, user.StatusLocked)
	assert.Equal(t, core.ErrPermissionDenied, err)
	_, err = admSess.UpdateUserStatus("usr_unknown", user.StatusLocked)
	assert.Equal(t, user.ErrNotFound, err)
	_, err = admSess.UpdateUserStatus(usr.ID, "banned")
	assert.True(t, core.IsValidationError(err))

	_, _ = st.NewSession().Login(usr.Email, "wrong-password")
	got, err := admSess.UpdateUserStatus(usr.ID, user.StatusLocked)
	require.NoError(t, err)
	assert.Equal(t, user.StatusLocked, got.Status)
	assert.Equal(t, 1, got.FailedLoginAttempts, "locking keeps the counter")
	assert.False(t, usrSess.IsAuthenticated(), "a locked account loses its sessions")

	ntfs := admSess.Notifications()
	require.NotEmpty(t, ntfs)
	assert.Equal(t, "Status: locked", ntfs[0].Message)
	assert.Equal(t, adm.ID, ntfs[0].UserID)
}
