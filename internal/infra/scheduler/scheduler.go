package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const digestTimeout = 5 * time.Minute

// DigestSender is the daily digest job.
type DigestSender interface {
	SendDailyDigest(ctx context.Context) error
}

type DigestScheduler struct {
	cronEngine    *cron.Cron
	digest        DigestSender
	logger        *logrus.Entry
	cronSpecDaily string
}

func NewDigestScheduler(digest DigestSender, logger *logrus.Entry, cronSpecDaily string) *DigestScheduler {
	return &DigestScheduler{
		cronEngine:    cron.New(cron.WithLocation(time.Local)), // Use server's local time for cron
		digest:        digest,
		logger:        logger,
		cronSpecDaily: cronSpecDaily, // e.g. "0 7 * * 1-6"
	}
}

// Start registers the jobs and starts the engine. An invalid spec is returned, not fatal.
func (s *DigestScheduler) Start() error {
	s.logger.Info("Starting digest scheduler...")

	_, err := s.cronEngine.AddFunc(s.cronSpecDaily, s.runDailyDigest)
	if err != nil {
		return fmt.Errorf("could not add daily digest cron job %q: %w", s.cronSpecDaily, err)
	}

	s.cronEngine.Start()
	s.logger.WithField("spec", s.cronSpecDaily).Info("Digest scheduler started")
	return nil
}

func (s *DigestScheduler) runDailyDigest() {
	s.logger.Info("Cron job triggered for daily digest")
	ctx, cancel := context.WithTimeout(context.Background(), digestTimeout)
	defer cancel()
	if err := s.digest.SendDailyDigest(ctx); err != nil {
		s.logger.WithError(err).Error("Error during daily digest")
	}
}

func (s *DigestScheduler) Stop() {
	s.logger.Info("Stopping digest scheduler...")
	ctx := s.cronEngine.Stop() // Stops the scheduler from adding new jobs, waits for running jobs.
	<-ctx.Done()
	s.logger.Info("Digest scheduler gracefully stopped")
}
