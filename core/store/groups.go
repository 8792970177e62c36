package store

import (
	"github.com/trezcool/educode/core"
	"github.com/trezcool/educode/core/course"
	"github.com/trezcool/educode/core/notification"
	"github.com/trezcool/educode/core/social"
)

// AddForumPost publishes a post of the session user. A group post is stored once, in its group,
// and only members may post there; other posts go to the course/global list. ForumPosts joins both.
func (sess *Session) AddForumPost(np social.NewForumPost) (social.ForumPost, error) {
	if err := np.Validate(); err != nil {
		return social.ForumPost{}, err
	}

	s := sess.store
	s.mu.Lock()
	defer s.unlock()

	u, err := sess.requireUser()
	if err != nil {
		return social.ForumPost{}, err
	}
	var group *social.StudyGroup
	if np.GroupID != "" {
		if group = s.groupByID(np.GroupID); group == nil {
			return social.ForumPost{}, social.ErrGroupNotFound
		}
		if !group.HasMember(u.ID) {
			return social.ForumPost{}, social.ErrNotGroupMember
		}
	}
	if np.CourseID != "" && s.courseByID(np.CourseID) == nil {
		return social.ForumPost{}, course.ErrNotFound
	}

	post := social.ForumPost{
		ID:         core.NewID("post"),
		CourseID:   np.CourseID,
		GroupID:    np.GroupID,
		UserID:     u.ID,
		UserName:   u.Name,
		UserAvatar: u.AvatarURL,
		Content:    np.Content,
		CreatedAt:  s.now(),
		Replies:    []social.ForumPost{},
	}
	if group != nil {
		group.Posts = append([]social.ForumPost{post}, group.Posts...)
	} else {
		s.posts = append([]*social.ForumPost{&post}, s.posts...)
	}
	return post.Clone(), nil
}

// findPost looks a top-level post up in the global list, then in every group,
// also returning the group owning it. Callers must hold store.mu.
func (s *Store) findPost(id string) (*social.ForumPost, *social.StudyGroup) {
	for _, p := range s.posts {
		if p.ID == id {
			return p, nil
		}
	}
	for _, g := range s.groups {
		for i := range g.Posts {
			if g.Posts[i].ID == id {
				return &g.Posts[i], g
			}
		}
	}
	return nil, nil
}

// AddForumReply appends the session user's reply to a top-level post. Group posts take replies from members only.
func (sess *Session) AddForumReply(postID string, nm social.MessageContent) (social.ForumPost, error) {
	if err := nm.Validate(); err != nil {
		return social.ForumPost{}, err
	}

	s := sess.store
	s.mu.Lock()
	defer s.unlock()

	u, err := sess.requireUser()
	if err != nil {
		return social.ForumPost{}, err
	}
	parent, group := s.findPost(postID)
	if parent == nil {
		return social.ForumPost{}, social.ErrPostNotFound
	}
	if group != nil && !group.HasMember(u.ID) {
		return social.ForumPost{}, social.ErrNotGroupMember
	}
	parent.Replies = append(parent.Replies, social.ForumPost{
		ID:         core.NewID("post"),
		CourseID:   parent.CourseID,
		GroupID:    parent.GroupID,
		UserID:     u.ID,
		UserName:   u.Name,
		UserAvatar: u.AvatarURL,
		Content:    nm.Content,
		CreatedAt:  s.now(),
		Replies:    []social.ForumPost{},
	})
	return parent.Clone(), nil
}

// JoinGroup adds the session user to a group; both sides of the membership change together.
// Joining a group twice changes nothing.
func (sess *Session) JoinGroup(groupID string) (social.StudyGroup, error) {
	s := sess.store
	s.mu.Lock()
	defer s.unlock()

	u, err := sess.requireUser()
	if err != nil {
		return social.StudyGroup{}, err
	}
	g := s.groupByID(groupID)
	if g == nil {
		return social.StudyGroup{}, social.ErrGroupNotFound
	}
	if g.HasMember(u.ID) {
		return g.Clone(), nil
	}
	g.Members = append(g.Members, u.ID)
	g.MemberCount = len(g.Members)
	if !u.IsGroupMember(g.ID) {
		u.StudyGroups = append(u.StudyGroups, g.ID)
	}
	sess.notify("Joined group successfully", notification.TypeSuccess)
	return g.Clone(), nil
}

// CreateGroup creates a study group with the session user as its first member.
func (sess *Session) CreateGroup(ng social.NewStudyGroup) (social.StudyGroup, error) {
	if err := ng.Validate(); err != nil {
		return social.StudyGroup{}, err
	}

	s := sess.store
	s.mu.Lock()
	defer s.unlock()

	u, err := sess.requireUser()
	if err != nil {
		return social.StudyGroup{}, err
	}
	g := &social.StudyGroup{
		ID:            core.NewID("grp"),
		Name:          ng.Name,
		Description:   ng.Description,
		CourseContext: ng.CourseContext,
		Members:       []string{u.ID},
		MemberCount:   1,
		Posts:         []social.ForumPost{},
	}
	s.groups = append(s.groups, g)
	u.StudyGroups = append(u.StudyGroups, g.ID)
	sess.notify("Group created successfully", notification.TypeSuccess)
	return g.Clone(), nil
}
