package social

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseConversationKey(t *testing.T) {
	tests := []struct {
		name            string
		key             string
		wantCourse      string
		wantParticipant string
		wantErr         error
	}{
		{name: "course", key: CourseConversationKey("crs_1", "usr_3"), wantCourse: "crs_1", wantParticipant: "usr_3"},
		{name: "support", key: SupportConversationKey("guest_abc"), wantCourse: SupportChannelID, wantParticipant: "guest_abc"},
		{name: "empty", key: "", wantErr: ErrConversationNotFound},
		{name: "no separator", key: "crs_1", wantErr: ErrConversationNotFound},
		{name: "empty support", key: "support-", wantErr: ErrConversationNotFound},
		{name: "empty participant", key: "crs_1-", wantErr: ErrConversationNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			courseID, participantID, err := ParseConversationKey(tt.key)
			if err != tt.wantErr {
				t.Errorf("ParseConversationKey() error = %v, wantErr %v", err, tt.wantErr)
			}
			assert.Equal(t, tt.wantCourse, courseID)
			assert.Equal(t, tt.wantParticipant, participantID)
		})
	}
}

func TestGuestID(t *testing.T) {
	id := NewGuestID()
	assert.True(t, IsGuestID(id))
	assert.NotEqual(t, id, NewGuestID())
	assert.False(t, IsGuestID("usr_1"))
}

func TestPrivateMessage(t *testing.T) {
	msg := PrivateMessage{SenderID: "usr_1", ReceiverID: "usr_2", CourseID: SupportChannelID}
	assert.True(t, msg.IsSupport())
	assert.True(t, msg.Involves("usr_2"))
	assert.False(t, msg.Involves("usr_3"))
}

func TestStudyGroup_Clone(t *testing.T) {
	g := StudyGroup{Members: []string{"usr_1"}, Posts: []ForumPost{{ID: "post_1", Replies: []ForumPost{{ID: "post_2"}}}}}
	clone := g.Clone()
	clone.Members[0] = "usr_9"
	clone.Posts[0].Replies[0].ID = "post_9"
	assert.True(t, g.HasMember("usr_1"))
	assert.Equal(t, "post_2", g.Posts[0].Replies[0].ID)
}

func TestValidate(t *testing.T) {
	assert.Error(t, (&NewForumPost{Content: " "}).Validate())
	assert.Error(t, (&MessageContent{}).Validate())
	assert.Error(t, (&NewStudyGroup{}).Validate())
	assert.Error(t, (&NewProject{Title: "x", ImageURL: "nope"}).Validate())
	assert.Error(t, (&NewPrivateMessage{Content: "hi"}).Validate(), "receiver is required")
	assert.NoError(t, (&NewPrivateMessage{ReceiverID: "usr_1", Content: "hi"}).Validate())
}
