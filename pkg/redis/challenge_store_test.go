package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestChallengeStore_TakeIsOneShot(t *testing.T) {
	useMiniRedis(t)
	ctx := context.Background()
	store := NewChallengeStore(time.Minute)

	require.NoError(t, store.Put(ctx, "0xAbC", "sign me"))

	msg, err := store.Take(ctx, "0xabc")
	require.NoError(t, err)
	require.Equal(t, "sign me", msg)

	_, err = store.Take(ctx, "0xabc")
	require.ErrorIs(t, err, ErrChallengeNotFound)
}

func TestChallengeStore_Expires(t *testing.T) {
	srv := useMiniRedis(t)
	ctx := context.Background()
	store := NewChallengeStore(time.Second)

	require.NoError(t, store.Put(ctx, "0xabc", "sign me"))
	srv.FastForward(2 * time.Second)

	_, err := store.Take(ctx, "0xabc")
	require.ErrorIs(t, err, ErrChallengeNotFound)
}

func TestPublish_DeliversToSubscriber(t *testing.T) {
	useMiniRedis(t)
	ctx := context.Background()

	sub := GetClient().Subscribe(ctx, "swap:events")
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	require.NoError(t, Publish(ctx, "swap:events", `{"offerId":1}`))

	msg, err := sub.ReceiveMessage(ctx)
	require.NoError(t, err)
	require.Equal(t, `{"offerId":1}`, msg.Payload)
}
