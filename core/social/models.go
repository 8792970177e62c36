package social

import (
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/educode/core"
)

var (
	ErrGroupNotFound        = errors.New("study group not found")
	ErrPostNotFound         = errors.New("forum post not found")
	ErrConversationNotFound = errors.New("conversation not found")
	ErrNoSupportAgent       = errors.New("no administrator is available for support")
	ErrNotGroupMember       = errors.New("not a member of this study group")
)

const (
	// SupportChannelID is the reserved course id of the admin-support channel.
	SupportChannelID = "c_support"
	GuestIDPrefix    = "guest_"
	GuestTag         = "[GUEST] "

	supportKeyPrefix = "support-"
	keySep           = "-"
)

// NewGuestID synthesises the id of an unregistered visitor.
func NewGuestID() string {
	return core.NewID(strings.TrimSuffix(GuestIDPrefix, "_"))
}

func IsGuestID(id string) bool {
	return strings.HasPrefix(id, GuestIDPrefix)
}

type PrivateMessage struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"sender_id"`
	ReceiverID string    `json:"receiver_id"`
	CourseID   string    `json:"course_id,omitempty"`
	Content    string    `json:"content"`
	Timestamp  time.Time `json:"timestamp"`
	Read       bool      `json:"read"`
}

func (m *PrivateMessage) IsSupport() bool { return m.CourseID == SupportChannelID }

// Involves reports whether id is the sender or the receiver of m.
func (m *PrivateMessage) Involves(id string) bool {
	return m.SenderID == id || m.ReceiverID == id
}

type NewPrivateMessage struct {
	ReceiverID string `json:"receiver_id" validate:"required"`
	CourseID   string `json:"course_id"`
	Content    string `json:"content" validate:"required,notblank"`
}

func (nm *NewPrivateMessage) Validate() error {
	nm.Content = core.CleanString(nm.Content)
	return core.ValidateStruct(nm)
}

// MessageContent is the payload of support messages and conversation replies.
type MessageContent struct {
	Content string `json:"content" validate:"required,notblank"`
}

func (nm *MessageContent) Validate() error {
	nm.Content = core.CleanString(nm.Content)
	return core.ValidateStruct(nm)
}

// Conversation is a computed thread: it exists only through its messages.
type Conversation struct {
	Key         string    `json:"key"`
	CourseID    string    `json:"course_id"`
	CourseName  string    `json:"course_name"`
	StudentID   string    `json:"student_id"` // the guest id on the support channel
	StudentName string    `json:"student_name"`
	TeacherID   string    `json:"teacher_id"`
	LastMessage string    `json:"last_message"`
	Timestamp   time.Time `json:"timestamp"`
	IsGuest     bool      `json:"is_guest"`
}

// SupportConversationKey identifies the support thread of a guest.
func SupportConversationKey(guestID string) string {
	return supportKeyPrefix + guestID
}

// CourseConversationKey identifies the thread between a course's staff and one student.
func CourseConversationKey(courseID, studentID string) string {
	return courseID + keySep + studentID
}

// ParseConversationKey splits a key built by SupportConversationKey or CourseConversationKey.
func ParseConversationKey(key string) (courseID, participantID string, err error) {
	if strings.HasPrefix(key, supportKeyPrefix) {
		guestID := strings.TrimPrefix(key, supportKeyPrefix)
		if guestID == "" {
			return "", "", ErrConversationNotFound
		}
		return SupportChannelID, guestID, nil
	}
	parts := strings.SplitN(key, keySep, 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", ErrConversationNotFound
	}
	return parts[0], parts[1], nil
}

type ForumPost struct {
	ID         string      `json:"id"`
	CourseID   string      `json:"course_id,omitempty"`
	GroupID    string      `json:"group_id,omitempty"`
	UserID     string      `json:"user_id"`
	UserName   string      `json:"user_name"`
	UserAvatar string      `json:"user_avatar"`
	Content    string      `json:"content"`
	CreatedAt  time.Time   `json:"created_at"`
	Replies    []ForumPost `json:"replies"`
}

func (p ForumPost) Clone() ForumPost {
	replies := make([]ForumPost, len(p.Replies))
	for i, r := range p.Replies {
		replies[i] = r.Clone()
	}
	p.Replies = replies
	return p
}

type NewForumPost struct {
	CourseID string `json:"course_id"`
	GroupID  string `json:"group_id"`
	Content  string `json:"content" validate:"required,notblank"`
}

func (np *NewForumPost) Validate() error {
	np.Content = core.CleanString(np.Content)
	return core.ValidateStruct(np)
}

type StudyGroup struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	Description   string      `json:"description"`
	CourseContext string      `json:"course_context,omitempty"`
	Members       []string    `json:"members"`
	MemberCount   int         `json:"member_count"`
	Posts         []ForumPost `json:"posts"` // newest first
}

func (g *StudyGroup) HasMember(userID string) bool {
	for _, id := range g.Members {
		if id == userID {
			return true
		}
	}
	return false
}

func (g StudyGroup) Clone() StudyGroup {
	g.Members = append([]string{}, g.Members...)
	posts := make([]ForumPost, len(g.Posts))
	for i, p := range g.Posts {
		posts[i] = p.Clone()
	}
	g.Posts = posts
	return g
}

type NewStudyGroup struct {
	Name          string `json:"name" validate:"required,notblank"`
	Description   string `json:"description"`
	CourseContext string `json:"course_context"`
}

func (ng *NewStudyGroup) Validate() error {
	ng.Name = core.CleanString(ng.Name)
	ng.Description = core.CleanString(ng.Description)
	ng.CourseContext = core.CleanString(ng.CourseContext)
	return core.ValidateStruct(ng)
}

type PortfolioProject struct {
	ID          string    `json:"id"`
	StudentID   string    `json:"student_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ImageURL    string    `json:"image_url"`
	DemoURL     string    `json:"demo_url,omitempty"`
	Tags        []string  `json:"tags"`
	CreatedAt   time.Time `json:"created_at"`
}

func (p PortfolioProject) Clone() PortfolioProject {
	p.Tags = append([]string{}, p.Tags...)
	return p
}

type NewProject struct {
	Title       string   `json:"title" validate:"required,notblank"`
	Description string   `json:"description"`
	ImageURL    string   `json:"image_url" validate:"omitempty,url"`
	DemoURL     string   `json:"demo_url" validate:"omitempty,url"`
	Tags        []string `json:"tags" validate:"dive,notblank"`
}

func (np *NewProject) Validate() error {
	np.Title = core.CleanString(np.Title)
	np.Description = core.CleanString(np.Description)
	np.ImageURL = core.CleanString(np.ImageURL)
	np.DemoURL = core.CleanString(np.DemoURL)
	return core.ValidateStruct(np)
}
