package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrLockHeld is returned when another holder owns the lease.
var ErrLockHeld = errors.New("lock is held by another holder")

// releaseScript deletes the key only while it still carries our token.
const releaseScript = `if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`

var (
	acquireLease = SetNX
	evalScript   = Eval
)

// Lease is a single-holder lock backed by SET NX PX.
type Lease struct {
	Key   string
	Token string
}

// AcquireLease takes key for ttl or returns ErrLockHeld.
func AcquireLease(ctx context.Context, key, token string, ttl time.Duration) (*Lease, error) {
	ok, err := acquireLease(ctx, key, token, ttl)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrLockHeld
	}
	return &Lease{Key: key, Token: token}, nil
}

// Release drops the lease if it has not expired and been taken over.
func (l *Lease) Release(ctx context.Context) error {
	_, err := evalScript(ctx, releaseScript, []string{l.Key}, l.Token)
	if errors.Is(err, redis.Nil) {
		return nil
	}
	return err
}
