package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type offerCounterStub struct {
	open       int64
	expired    int64
	openErr    error
	expiredErr error
	lastNow    time.Time
}

func (s *offerCounterStub) CountOpen(context.Context) (int64, error) {
	return s.open, s.openErr
}

func (s *offerCounterStub) CountOpenExpired(_ context.Context, now time.Time) (int64, error) {
	s.lastNow = now
	return s.expired, s.expiredErr
}

type gaugeSinkStub struct {
	mu      sync.Mutex
	calls   int
	open    int64
	expired int64
}

func (s *gaugeSinkStub) SetOfferGauges(open, expired int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.open = open
	s.expired = expired
}

func (s *gaugeSinkStub) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func TestRefresh_Success(t *testing.T) {
	repo := &offerCounterStub{open: 5, expired: 2}
	sink := &gaugeSinkStub{}
	fixed := time.Unix(1700000000, 0)
	job := NewOpenOfferGaugeJob(repo, sink, time.Millisecond)
	job.now = func() time.Time { return fixed }

	job.refresh(context.Background())
	require.Equal(t, 1, sink.calls)
	require.Equal(t, int64(5), sink.open)
	require.Equal(t, int64(2), sink.expired)
	require.Equal(t, fixed, repo.lastNow)
}

func TestRefresh_Errors(t *testing.T) {
	sink := &gaugeSinkStub{}
	job := NewOpenOfferGaugeJob(&offerCounterStub{openErr: errors.New("db down")}, sink, time.Millisecond)
	job.refresh(context.Background())
	require.Zero(t, sink.calls)

	job = NewOpenOfferGaugeJob(&offerCounterStub{expiredErr: errors.New("db down")}, sink, time.Millisecond)
	job.refresh(context.Background())
	require.Zero(t, sink.calls)
}

func TestNewOpenOfferGaugeJob_DefaultInterval(t *testing.T) {
	job := NewOpenOfferGaugeJob(&offerCounterStub{}, &gaugeSinkStub{}, 0)
	require.Equal(t, time.Minute, job.interval)
}

func TestStart_StopsOnStopAndCancel(t *testing.T) {
	sink := &gaugeSinkStub{}
	job := NewOpenOfferGaugeJob(&offerCounterStub{open: 1}, sink, time.Millisecond)
	done := make(chan struct{})
	go func() {
		job.Start(context.Background())
		close(done)
	}()
	require.Eventually(t, func() bool { return sink.count() >= 2 }, time.Second, time.Millisecond)
	job.Stop()
	<-done

	ctx, cancel := context.WithCancel(context.Background())
	job = NewOpenOfferGaugeJob(&offerCounterStub{}, sink, time.Hour)
	done = make(chan struct{})
	go func() {
		job.Start(ctx)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("job did not stop on cancel")
	}
}
