package store_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/educode/core"
	"github.com/trezcool/educode/core/course"
	"github.com/trezcool/educode/core/social"
	"github.com/trezcool/educode/core/user"
	testutil "github.com/trezcool/educode/tests"
)

func TestSession_CreateAndJoinGroup(t *testing.T) {
	st, _ := testutil.NewStore(t)
	owner := testutil.CreateUser(t, st, "Owner", "owner@test.vn", user.RoleStudent)
	ownerSess := testutil.Login(t, st, owner.Email)
	member := testutil.CreateUser(t, st, "Member", "member@test.vn", user.RoleStudent)
	memberSess := testutil.Login(t, st, member.Email)

	_, err := ownerSess.CreateGroup(social.NewStudyGroup{Name: " "})
	assert.True(t, core.IsValidationError(err))

	grp, err := ownerSess.CreateGroup(social.NewStudyGroup{Name: "Gophers", Description: "Go study group"})
	require.NoError(t, err)
	assert.Equal(t, []string{owner.ID}, grp.Members)
	assert.Equal(t, 1, grp.MemberCount)

	_, err = memberSess.JoinGroup("grp_unknown")
	assert.Equal(t, social.ErrGroupNotFound, err)
	_, err = st.NewSession().JoinGroup(grp.ID)
	assert.Equal(t, core.ErrUnauthenticated, err)

	for i := 0; i < 2; i++ {
		got, err := memberSess.JoinGroup(grp.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{owner.ID, member.ID}, got.Members)
		assert.Equal(t, 2, got.MemberCount)
	}
	usr, _ := st.User(member.ID)
	assert.Equal(t, []string{grp.ID}, usr.StudyGroups)

	stored, err := st.StudyGroup(grp.ID)
	require.NoError(t, err)
	assert.Equal(t, len(stored.Members), stored.MemberCount)
	assert.Len(t, st.StudyGroups(), 1)
}

func TestSession_AddForumPost(t *testing.T) {
	st, _ := testutil.NewStore(t)
	teacher := testutil.CreateUser(t, st, "Teacher", "teacher@test.vn", user.RoleTeacher)
	crs := testutil.CreateCourse(t, testutil.Login(t, st, teacher.Email), "Go Basics", 0)
	usr := testutil.CreateUser(t, st, "Student", "student@test.vn", user.RoleStudent)
	sess := testutil.Login(t, st, usr.Email)
	grp, err := sess.CreateGroup(social.NewStudyGroup{Name: "Gophers"})
	require.NoError(t, err)

	_, err = sess.AddForumPost(social.NewForumPost{GroupID: "grp_unknown", Content: "hi"})
	assert.Equal(t, social.ErrGroupNotFound, err)
	_, err = sess.AddForumPost(social.NewForumPost{CourseID: "crs_unknown", Content: "hi"})
	assert.Equal(t, course.ErrNotFound, err)
	_, err = sess.AddForumPost(social.NewForumPost{Content: "  "})
	assert.True(t, core.IsValidationError(err))

	groupPost, err := sess.AddForumPost(social.NewForumPost{GroupID: grp.ID, Content: "Group hello"})
	require.NoError(t, err)
	coursePost, err := sess.AddForumPost(social.NewForumPost{CourseID: crs.ID, Content: "Course hello"})
	require.NoError(t, err)
	assert.Equal(t, usr.Name, coursePost.UserName)
	assert.Equal(t, usr.AvatarURL, coursePost.UserAvatar)

	t.Run("group posts are stored once", func(t *testing.T) {
		posts, err := st.GroupPosts(grp.ID)
		require.NoError(t, err)
		require.Len(t, posts, 1)
		assert.Equal(t, groupPost.ID, posts[0].ID)

		count := 0
		for _, p := range st.ForumPosts("") {
			if p.ID == groupPost.ID {
				count++
			}
		}
		assert.Equal(t, 1, count)
		assert.Len(t, st.ForumPosts(""), 2)
		assert.Len(t, st.ForumPosts(crs.ID), 1)
	})

	t.Run("replies", func(t *testing.T) {
		_, err := sess.AddForumReply("post_unknown", social.MessageContent{Content: "?"})
		assert.Equal(t, social.ErrPostNotFound, err)

		got, err := sess.AddForumReply(groupPost.ID, social.MessageContent{Content: "Reply in group"})
		require.NoError(t, err)
		require.Len(t, got.Replies, 1)
		assert.Equal(t, grp.ID, got.Replies[0].GroupID)

		got, err = sess.AddForumReply(coursePost.ID, social.MessageContent{Content: "Reply in course"})
		require.NoError(t, err)
		require.Len(t, got.Replies, 1)

		posts, _ := st.GroupPosts(grp.ID)
		assert.Len(t, posts[0].Replies, 1)
	})

	t.Run("members only", func(t *testing.T) {
		outsider := testutil.Login(t, st, testutil.CreateUser(t, st, "Outsider", "outsider@test.vn", user.RoleStudent).Email)

		_, err := outsider.AddForumPost(social.NewForumPost{GroupID: grp.ID, Content: "Let me in"})
		assert.Equal(t, social.ErrNotGroupMember, err)
		_, err = outsider.AddForumReply(groupPost.ID, social.MessageContent{Content: "Let me in"})
		assert.Equal(t, social.ErrNotGroupMember, err)
		_, err = outsider.AddForumReply(coursePost.ID, social.MessageContent{Content: "Open forum"})
		assert.NoError(t, err)

		posts, _ := st.GroupPosts(grp.ID)
		require.Len(t, posts, 1)
		assert.Len(t, posts[0].Replies, 1)

		_, err = outsider.JoinGroup(grp.ID)
		require.NoError(t, err)
		_, err = outsider.AddForumPost(social.NewForumPost{GroupID: grp.ID, Content: "Joined"})
		assert.NoError(t, err)
	})

	_, err = st.GroupPosts("grp_unknown")
	assert.Equal(t, social.ErrGroupNotFound, err)
}

func TestSession_AddProject(t *testing.T) {
	st, _ := testutil.NewStore(t)
	usr := testutil.CreateUser(t, st, "Student", "student@test.vn", user.RoleStudent)
	sess := testutil.Login(t, st, usr.Email)

	_, err := sess.AddProject(social.NewProject{Title: "Dashboard", DemoURL: "not a url"})
	assert.True(t, core.IsValidationError(err))

	prj, err := sess.AddProject(social.NewProject{Title: "Dashboard", DemoURL: "https://demo.test.vn", Tags: []string{"Go"}})
	require.NoError(t, err)
	assert.Equal(t, usr.ID, prj.StudentID)
	assert.Equal(t, []social.PortfolioProject{prj}, st.Projects(usr.ID))
	assert.Empty(t, st.Projects("usr_other"))
}
