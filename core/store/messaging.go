package store

import (
	"sort"

	"github.com/trezcool/educode/core"
	"github.com/trezcool/educode/core/social"
	"github.com/trezcool/educode/core/user"
)

// SendPrivateMessage appends a message from the session user. There are no read receipts.
func (sess *Session) SendPrivateMessage(nm social.NewPrivateMessage) (social.PrivateMessage, error) {
	if err := nm.Validate(); err != nil {
		return social.PrivateMessage{}, err
	}

	s := sess.store
	s.mu.Lock()
	defer s.unlock()

	u, err := sess.requireUser()
	if err != nil {
		return social.PrivateMessage{}, err
	}
	if !social.IsGuestID(nm.ReceiverID) && s.userByID(nm.ReceiverID) == nil {
		return social.PrivateMessage{}, user.ErrNotFound
	}
	return s.appendMessage(u.ID, nm.ReceiverID, nm.CourseID, nm.Content), nil
}

func (s *Store) appendMessage(senderID, receiverID, courseID, content string) social.PrivateMessage {
	msg := social.PrivateMessage{
		ID:         core.NewID("msg"),
		SenderID:   senderID,
		ReceiverID: receiverID,
		CourseID:   courseID,
		Content:    content,
		Timestamp:  s.now(),
	}
	s.messages = append(s.messages, msg)
	return msg
}

// SendSupportMessage lets a visitor reach an administrator on the support channel.
// A guest id is synthesised unless guestID continues an existing thread.
func (sess *Session) SendSupportMessage(guestID string, nm social.MessageContent) (social.PrivateMessage, error) {
	if err := nm.Validate(); err != nil {
		return social.PrivateMessage{}, err
	}
	if guestID != "" && !social.IsGuestID(guestID) {
		return social.PrivateMessage{}, core.NewValidationError(nil, core.FieldError{Field: "guest_id", Error: "invalid guest id"})
	}

	s := sess.store
	s.mu.Lock()
	defer s.unlock()

	adm := s.firstAdmin()
	if adm == nil {
		s.logger.Warn("support message dropped: no administrator")
		return social.PrivateMessage{}, social.ErrNoSupportAgent
	}
	if guestID == "" {
		guestID = social.NewGuestID()
	}
	return s.appendMessage(guestID, adm.ID, social.SupportChannelID, social.GuestTag+nm.Content), nil
}

// conversations groups the messages visible to u by conversation key, keeping the latest message of each.
// Callers must hold store.mu.
func (s *Store) conversations(u *user.User) map[string]*social.Conversation {
	convs := make(map[string]*social.Conversation)
	for _, msg := range s.messages {
		if msg.IsSupport() {
			if !u.IsAdmin() {
				continue
			}
			guestID := msg.ReceiverID
			if social.IsGuestID(msg.SenderID) {
				guestID = msg.SenderID
			}
			key := social.SupportConversationKey(guestID)
			if existing, ok := convs[key]; !ok || !msg.Timestamp.Before(existing.Timestamp) {
				convs[key] = &social.Conversation{
					Key:         key,
					CourseID:    social.SupportChannelID,
					CourseName:  "Support Inquiries",
					StudentID:   guestID,
					StudentName: "Guest User",
					TeacherID:   u.ID,
					LastMessage: msg.Content,
					Timestamp:   msg.Timestamp,
					IsGuest:     true,
				}
			}
			continue
		}

		if msg.CourseID == "" {
			continue
		}
		c := s.courseByID(msg.CourseID)
		if c == nil {
			continue
		}
		var studentID string
		if r := s.userByID(msg.ReceiverID); r != nil && r.IsStudent() {
			studentID = r.ID
		}
		if sd := s.userByID(msg.SenderID); sd != nil && sd.IsStudent() {
			studentID = sd.ID
		}
		if studentID == "" {
			continue
		}

		visible := u.IsAdmin() ||
			(u.IsTeacher() && c.InstructorID == u.ID) ||
			(u.IsStudent() && studentID == u.ID)
		if !visible {
			continue
		}
		key := social.CourseConversationKey(c.ID, studentID)
		if existing, ok := convs[key]; !ok || !msg.Timestamp.Before(existing.Timestamp) {
			studentName := "Student"
			if st := s.userByID(studentID); st != nil {
				studentName = st.Name
			}
			convs[key] = &social.Conversation{
				Key:         key,
				CourseID:    c.ID,
				CourseName:  c.Title,
				StudentID:   studentID,
				StudentName: studentName,
				TeacherID:   c.InstructorID,
				LastMessage: msg.Content,
				Timestamp:   msg.Timestamp,
			}
		}
	}
	return convs
}

// Conversations lists the session user's conversations, most recently active first.
// Admins see every conversation including support threads, teachers those of the courses
// they instruct and students their own.
func (sess *Session) Conversations() ([]social.Conversation, error) {
	s := sess.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, err := sess.requireUser()
	if err != nil {
		return nil, err
	}
	convs := s.conversations(u)
	list := make([]social.Conversation, 0, len(convs))
	for _, c := range convs {
		list = append(list, *c)
	}
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].Timestamp.Equal(list[j].Timestamp) {
			return list[i].Key < list[j].Key
		}
		return list[i].Timestamp.After(list[j].Timestamp)
	})
	return list, nil
}

// ConversationMessages lists the messages of a visible conversation, oldest first.
func (sess *Session) ConversationMessages(key string) ([]social.PrivateMessage, error) {
	s := sess.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, err := sess.requireUser()
	if err != nil {
		return nil, err
	}
	if _, ok := s.conversations(u)[key]; !ok {
		return nil, social.ErrConversationNotFound
	}
	courseID, participantID, err := social.ParseConversationKey(key)
	if err != nil {
		return nil, err
	}
	msgs := make([]social.PrivateMessage, 0)
	for _, m := range s.messages {
		if m.CourseID == courseID && m.Involves(participantID) {
			msgs = append(msgs, m)
		}
	}
	sort.SliceStable(msgs, func(i, j int) bool { return msgs[i].Timestamp.Before(msgs[j].Timestamp) })
	return msgs, nil
}

// ReplyInConversation answers within a visible conversation. Staff reply to the student (or guest),
// students to the course instructor.
func (sess *Session) ReplyInConversation(key string, nm social.MessageContent) (social.PrivateMessage, error) {
	if err := nm.Validate(); err != nil {
		return social.PrivateMessage{}, err
	}

	s := sess.store
	s.mu.Lock()
	defer s.unlock()

	u, err := sess.requireUser()
	if err != nil {
		return social.PrivateMessage{}, err
	}
	conv, ok := s.conversations(u)[key]
	if !ok {
		return social.PrivateMessage{}, social.ErrConversationNotFound
	}

	receiverID := conv.TeacherID
	if u.IsStaff() {
		receiverID = conv.StudentID
	}
	if receiverID == "" {
		return social.PrivateMessage{}, core.NewValidationError(nil, core.FieldError{Field: "receiver_id", Error: "this course has no instructor"})
	}
	return s.appendMessage(u.ID, receiverID, conv.CourseID, nm.Content), nil
}
