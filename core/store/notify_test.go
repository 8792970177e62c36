package store_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/educode/core"
	"github.com/trezcool/educode/core/notification"
	"github.com/trezcool/educode/core/user"
	testutil "github.com/trezcool/educode/tests"
)

func TestSession_MarkNotificationsRead(t *testing.T) {
	st, _ := testutil.NewStore(t)
	alice := testutil.CreateUser(t, st, "Alice", "alice@test.vn", user.RoleStudent)
	aliceSess := testutil.Login(t, st, alice.Email)
	bob := testutil.CreateUser(t, st, "Bobby", "bobby@test.vn", user.RoleStudent)
	bobSess := testutil.Login(t, st, bob.Email)

	_, _ = aliceSess.UpdateProfile(user.UpdateProfile{Bio: "one"})
	_, _ = aliceSess.UpdateProfile(user.UpdateProfile{Bio: "two"})
	_, _ = bobSess.UpdateProfile(user.UpdateProfile{Bio: "three"})

	_, err := st.NewSession().MarkNotificationsRead()
	assert.Equal(t, core.ErrUnauthenticated, err)

	marked, err := aliceSess.MarkNotificationsRead()
	require.NoError(t, err)
	assert.Equal(t, 2, marked)
	for _, n := range aliceSess.Notifications() {
		assert.True(t, n.Read)
	}
	for _, n := range bobSess.Notifications() {
		assert.False(t, n.Read, "other users' notifications stay unread")
	}

	marked, err = aliceSess.MarkNotificationsRead()
	require.NoError(t, err)
	assert.Zero(t, marked)
}

func TestSession_Notifications(t *testing.T) {
	st, mailer := testutil.NewStore(t)
	usr := testutil.CreateUser(t, st, "Alice", "alice@test.vn", user.RoleStudent)
	sess := testutil.Login(t, st, usr.Email)

	assert.Empty(t, st.NewSession().Notifications())

	_, err := sess.UpdateProfile(user.UpdateProfile{Bio: "one"})
	require.NoError(t, err)
	ntfs := sess.Notifications()
	require.Len(t, ntfs, 1)
	assert.Equal(t, usr.ID, ntfs[0].UserID)
	assert.Equal(t, notification.DefaultTitle, ntfs[0].Title)
	assert.Equal(t, notification.TypeSuccess, ntfs[0].Type)
	assert.False(t, ntfs[0].Read)

	t.Run("emailed to opted-in users", func(t *testing.T) {
		sent := mailer.SentMessages()
		require.Len(t, sent, 1)
		assert.Equal(t, usr.Email, sent[0].To[0].Address)
		assert.Equal(t, "notification", sent[0].TemplateName)
		assert.Contains(t, sent[0].TextContent, "Profile updated successfully")
	})

	t.Run("not emailed once opted out", func(t *testing.T) {
		_, err := sess.UpdateProfile(user.UpdateProfile{Preferences: &user.Preferences{Language: "en"}})
		require.NoError(t, err)
		assert.Len(t, mailer.SentMessages(), 1)
		assert.Len(t, sess.Notifications(), 2, "notifications are still recorded")
	})

	t.Run("newest first", func(t *testing.T) {
		all := st.AllNotifications()
		require.Len(t, all, 2)
		assert.False(t, all[0].CreatedAt.Before(all[1].CreatedAt))
	})
}
