package store

import (
	"sort"

	"github.com/trezcool/educode/core/course"
)

// LeaderboardSize caps a course leaderboard.
const LeaderboardSize = 5

// Leaderboard sums the graded scores of each registered student of a course, highest first.
func (s *Store) Leaderboard(courseID string) ([]course.LeaderboardEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.courseByID(courseID) == nil {
		return nil, course.ErrNotFound
	}
	scores := make(map[string]int)
	for _, sub := range s.submissions {
		if sub.CourseID == courseID && sub.IsGraded() && sub.Score != nil {
			scores[sub.StudentID] += *sub.Score
		}
	}

	board := make([]course.LeaderboardEntry, 0, len(scores))
	for studentID, score := range scores {
		u := s.userByID(studentID)
		if u == nil {
			continue
		}
		board = append(board, course.LeaderboardEntry{
			StudentID:   u.ID,
			StudentName: u.Name,
			AvatarURL:   u.AvatarURL,
			Score:       score,
		})
	}
	sort.Slice(board, func(i, j int) bool {
		if board[i].Score == board[j].Score {
			return board[i].StudentName < board[j].StudentName
		}
		return board[i].Score > board[j].Score
	})
	if len(board) > LeaderboardSize {
		board = board[:LeaderboardSize]
	}
	return board, nil
}

// MyAssignments lists the coding and project lessons of the session user's enrolled courses,
// each with the user's submission status.
func (sess *Session) MyAssignments() []course.Assignment {
	s := sess.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	assignments := make([]course.Assignment, 0)
	u := sess.current()
	if u == nil {
		return assignments
	}
	for _, id := range u.CoursesEnrolled {
		c := s.courseByID(id)
		if c == nil {
			continue
		}
		for _, l := range c.Clone().Lessons {
			if !l.Type.IsAssignment() {
				continue
			}
			assignments = append(assignments, course.Assignment{
				Lesson:      l,
				CourseID:    c.ID,
				CourseTitle: c.Title,
				Status:      s.submissionStatus(u.ID, l.ID),
			})
		}
	}
	return assignments
}
