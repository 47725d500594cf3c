package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
	"nft-swapper.backend/pkg/logger"
)

// OpenOfferCounter is the read side the gauge job needs.
type OpenOfferCounter interface {
	CountOpen(ctx context.Context) (int64, error)
	CountOpenExpired(ctx context.Context, now time.Time) (int64, error)
}

// OfferGaugeSink receives the refreshed counts.
type OfferGaugeSink interface {
	SetOfferGauges(open, expiredOpen int64)
}

// OpenOfferGaugeJob periodically refreshes the open-offer gauges. It only
// reads: expired offers stay Created until their maker cancels them.
type OpenOfferGaugeJob struct {
	repo     OpenOfferCounter
	sink     OfferGaugeSink
	interval time.Duration
	now      func() time.Time
	stop     chan struct{}
}

func NewOpenOfferGaugeJob(repo OpenOfferCounter, sink OfferGaugeSink, interval time.Duration) *OpenOfferGaugeJob {
	if interval <= 0 {
		interval = time.Minute
	}
	return &OpenOfferGaugeJob{
		repo:     repo,
		sink:     sink,
		interval: interval,
		now:      time.Now,
		stop:     make(chan struct{}),
	}
}

func (j *OpenOfferGaugeJob) Start(ctx context.Context) {
	logger.Info(ctx, "Starting open offer gauge job", zap.Duration("interval", j.interval))

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.refresh(ctx)
	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "Open offer gauge job stopped (context cancelled)")
			return
		case <-j.stop:
			logger.Info(ctx, "Open offer gauge job stopped")
			return
		case <-ticker.C:
			j.refresh(ctx)
		}
	}
}

func (j *OpenOfferGaugeJob) Stop() {
	close(j.stop)
}

func (j *OpenOfferGaugeJob) refresh(ctx context.Context) {
	open, err := j.repo.CountOpen(ctx)
	if err != nil {
		logger.Error(ctx, "Error counting open offers", zap.Error(err))
		return
	}
	expired, err := j.repo.CountOpenExpired(ctx, j.now())
	if err != nil {
		logger.Error(ctx, "Error counting expired open offers", zap.Error(err))
		return
	}
	j.sink.SetOfferGauges(open, expired)
}
