package store

import (
	"github.com/pkg/errors"
)

var (
	ErrAIDisabled      = errors.New("AI features are disabled")
	ErrAIQuotaExceeded = errors.New("daily AI request limit reached")
)

const guestAIBucket = "guest"

// ConsumeAIRequest counts one AI request against the user's daily allowance.
// Guests (empty userID) share one allowance. A zero limit means unlimited.
func (s *Store) ConsumeAIRequest(userID string) error {
	s.mu.Lock()
	defer s.unlock()

	if !s.sysConf.AIEnabled {
		return ErrAIDisabled
	}
	if userID == "" {
		userID = guestAIBucket
	}
	today := s.now().Format("2006-01-02")
	usage, ok := s.aiUsage[userID]
	if !ok || usage.day != today {
		usage = &aiUsage{day: today}
		s.aiUsage[userID] = usage
	}
	if limit := s.sysConf.AIRequestLimit; limit > 0 && usage.count >= limit {
		s.logger.Warn("AI request rejected: daily limit reached", map[string]interface{}{"user_id": userID, "limit": limit})
		return ErrAIQuotaExceeded
	}
	usage.count++
	return nil
}
