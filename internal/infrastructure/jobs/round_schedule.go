package jobs

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"tontine.backend/pkg/logger"
)

// DefaultSweepInterval is used when no interval is configured
const DefaultSweepInterval = time.Minute

// RoundOpener opens rounds whose start date has been reached
type RoundOpener interface {
	OpenDueRounds(ctx context.Context, now time.Time) (int, error)
}

// ReminderSender notifies payers of contributions coming due
type ReminderSender interface {
	SendDueReminders(ctx context.Context, now time.Time) (int, error)
}

// RoundScheduleJob periodically opens due rounds and sends payment reminders
type RoundScheduleJob struct {
	rounds    RoundOpener
	reminders ReminderSender
	interval  time.Duration
	now       func() time.Time
	stop      chan struct{}
	stopOnce  sync.Once
}

func NewRoundScheduleJob(rounds RoundOpener, reminders ReminderSender, interval time.Duration) *RoundScheduleJob {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &RoundScheduleJob{
		rounds:    rounds,
		reminders: reminders,
		interval:  interval,
		now:       time.Now,
		stop:      make(chan struct{}),
	}
}

// Start blocks until ctx is cancelled or Stop is called. The first sweep runs immediately.
func (j *RoundScheduleJob) Start(ctx context.Context) {
	logger.Info(ctx, "Starting round schedule job", zap.Duration("interval", j.interval))

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			logger.Info(context.Background(), "Round schedule job stopped (context cancelled)")
			return
		case <-j.stop:
			logger.Info(ctx, "Round schedule job stopped")
			return
		case <-ticker.C:
			j.sweep(ctx)
		}
	}
}

func (j *RoundScheduleJob) Stop() {
	j.stopOnce.Do(func() { close(j.stop) })
}

func (j *RoundScheduleJob) sweep(ctx context.Context) {
	now := j.now()

	opened, err := j.rounds.OpenDueRounds(ctx, now)
	if err != nil {
		logger.Error(ctx, "Error opening due rounds", zap.Error(err))
	} else if opened > 0 {
		logger.Info(ctx, "Opened due rounds", zap.Int("count", opened))
	}

	sent, err := j.reminders.SendDueReminders(ctx, now)
	if err != nil {
		logger.Error(ctx, "Error sending payment reminders", zap.Error(err))
		return
	}
	if sent > 0 {
		logger.Info(ctx, "Sent payment reminders", zap.Int("count", sent))
	}
}
