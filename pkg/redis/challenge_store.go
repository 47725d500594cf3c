package redis

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrChallengeNotFound means the nonce expired or was already consumed.
var ErrChallengeNotFound = errors.New("challenge not found")

var (
	setChallengeValue  = Set
	takeChallengeValue = GetDel
)

// ChallengeStore keeps one-time login messages keyed by wallet address.
type ChallengeStore struct {
	ttl time.Duration
}

// NewChallengeStore creates a store whose challenges live for ttl.
func NewChallengeStore(ttl time.Duration) *ChallengeStore {
	return &ChallengeStore{ttl: ttl}
}

func challengeKey(address string) string {
	return "auth:challenge:" + strings.ToLower(address)
}

// Put replaces any pending challenge for address.
func (s *ChallengeStore) Put(ctx context.Context, address, message string) error {
	return setChallengeValue(ctx, challengeKey(address), message, s.ttl)
}

// Take returns the pending challenge and removes it so it cannot be replayed.
func (s *ChallengeStore) Take(ctx context.Context, address string) (string, error) {
	msg, err := takeChallengeValue(ctx, challengeKey(address))
	if errors.Is(err, redis.Nil) {
		return "", ErrChallengeNotFound
	}
	return msg, err
}
