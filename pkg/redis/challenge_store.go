package redis

import (
	"context"
	"strings"
	"time"
)

const challengePrefix = "auth:challenge:"

var (
	setChallengeValue  = Set
	takeChallengeValue = GetDel
)

// ChallengeStore keeps one pending sign-in message per wallet address
type ChallengeStore struct {
	ttl time.Duration
}

// NewChallengeStore creates a challenge store whose entries expire after ttl
func NewChallengeStore(ttl time.Duration) *ChallengeStore {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &ChallengeStore{ttl: ttl}
}

// TTL returns how long a challenge stays valid
func (s *ChallengeStore) TTL() time.Duration {
	return s.ttl
}

// Save stores message for address, replacing any earlier challenge
func (s *ChallengeStore) Save(ctx context.Context, address, message string) error {
	return setChallengeValue(ctx, challengeKey(address), message, s.ttl)
}

// Take returns and deletes the challenge for address. A missing key yields an empty string.
func (s *ChallengeStore) Take(ctx context.Context, address string) (string, error) {
	msg, err := takeChallengeValue(ctx, challengeKey(address))
	if IsNil(err) {
		return "", nil
	}
	return msg, err
}

func challengeKey(address string) string {
	return challengePrefix + strings.ToLower(address)
}
