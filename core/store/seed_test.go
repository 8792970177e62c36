package store_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/educode/core"
	"github.com/trezcool/educode/core/course"
	"github.com/trezcool/educode/core/store"
	"github.com/trezcool/educode/core/user"
	logsvc "github.com/trezcool/educode/services/logger"
)

func TestNew_seed(t *testing.T) {
	conf := core.NewTestConfig()
	conf.Site.SeedMockData = true
	st := store.New(conf, logsvc.NewDiscardLogger(), nil)
	defer st.Close()

	users := st.Users(user.QueryFilter{})
	require.Len(t, users, 3)
	stats := st.Stats()
	assert.Equal(t, 3, stats["users"])
	assert.Equal(t, len(st.Courses(course.QueryFilter{})), stats["courses"])
	assert.Len(t, st.Users(user.QueryFilter{Role: user.RoleAdmin}), 1)
	assert.Len(t, st.Users(user.QueryFilter{Search: "STUDENT@"}), 1)

	for _, c := range st.Courses(course.QueryFilter{}) {
		enrolled := 0
		for _, u := range users {
			if u.IsEnrolled(c.ID) {
				enrolled++
			}
		}
		assert.Equal(t, enrolled, c.StudentsCount, "course %s", c.ID)
	}
	for _, g := range st.StudyGroups() {
		assert.Equal(t, len(g.Members), g.MemberCount, "group %s", g.ID)
	}

	t.Run("demo admin is not the super-admin", func(t *testing.T) {
		admins := st.Users(user.QueryFilter{Role: user.RoleAdmin})
		require.Len(t, admins, 1)
		assert.Equal(t, store.DemoAdminEmail, admins[0].Email)

		_, err := st.NewSession().Login(conf.SuperAdminEmail, store.DemoPassword)
		assert.Error(t, err)

		admSess := st.NewSession()
		_, err = admSess.Login(store.DemoAdminEmail, store.DemoPassword)
		require.NoError(t, err)
		_, err = admSess.AdminCreateUser(user.NewUser{Name: "Intruder", Email: "intruder@test.vn", Password: "Str0ng!Passw0rd", Role: user.RoleAdmin})
		assert.Equal(t, core.ErrPermissionDenied, err)
	})

	sess := st.NewSession()
	usr, err := sess.Login("student@educode.vn", store.DemoPassword)
	require.NoError(t, err)
	assert.Equal(t, user.RoleStudent, usr.Role)
	assert.Equal(t, course.SubmissionGraded, sess.SubmissionStatus("lsn_4"))
	assert.Equal(t, course.SubmissionOpen, sess.SubmissionStatus("lsn_5"))

	board, err := st.Leaderboard("crs_1")
	require.NoError(t, err)
	require.Len(t, board, 1)
	assert.Equal(t, 90, board[0].Score)
}

func TestNew_seedSkippedForSuperAdminEmail(t *testing.T) {
	conf := core.NewTestConfig()
	conf.Site.SeedMockData = true
	conf.SuperAdminEmail = store.DemoAdminEmail
	st := store.New(conf, logsvc.NewDiscardLogger(), nil)
	defer st.Close()

	assert.Empty(t, st.Users(user.QueryFilter{}))
}
