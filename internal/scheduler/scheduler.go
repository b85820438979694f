package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler triggers the digest sweep and the monthly report on their
// cron schedules, in the bot's reporting timezone.
type Scheduler struct {
	cron        *cron.Cron
	ctx         context.Context
	cancel      context.CancelFunc
	digestFunc  func(ctx context.Context) error
	monthlyFunc func(ctx context.Context) error
}

// New creates a scheduler pinned to loc.
func New(loc *time.Location) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		cron:   cron.New(cron.WithLocation(loc)),
		ctx:    ctx,
		cancel: cancel,
	}
}

// SetDigestFunc sets the digest-sweep job.
func (s *Scheduler) SetDigestFunc(f func(ctx context.Context) error) {
	s.digestFunc = f
}

// SetMonthlyFunc sets the monthly-report job.
func (s *Scheduler) SetMonthlyFunc(f func(ctx context.Context) error) {
	s.monthlyFunc = f
}

// Start registers the cron entries and starts the scheduler.
// digestSpecs usually holds the morning and evening sweep; the
// monthly spec fires on day 1 and the month-tag dedup guards restarts.
func (s *Scheduler) Start(digestSpecs []string, monthlySpec string) error {
	if s.digestFunc == nil && s.monthlyFunc == nil {
		log.Println("⚠️ No jobs set, scheduler will not run")
		return nil
	}

	if s.digestFunc != nil {
		for _, spec := range digestSpecs {
			spec := spec
			_, err := s.cron.AddFunc(spec, func() {
				log.Printf("🕘 Triggered digest sweep (%s)", spec)
				if err := s.digestFunc(s.ctx); err != nil {
					log.Printf("❌ Digest sweep failed: %v", err)
				}
			})
			if err != nil {
				return err
			}
		}
	}

	if s.monthlyFunc != nil {
		_, err := s.cron.AddFunc(monthlySpec, func() {
			log.Printf("🕘 Triggered monthly report (%s)", monthlySpec)
			if err := s.monthlyFunc(s.ctx); err != nil {
				log.Printf("❌ Monthly report failed: %v", err)
			}
		})
		if err != nil {
			return err
		}
	}

	s.cron.Start()
	log.Println("📅 Scheduler started")
	return nil
}

// Stop stops the scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
	}
	if s.cancel != nil {
		s.cancel()
	}
	log.Println("📅 Scheduler stopped")
}

// IsRunning reports whether any cron entries are registered.
func (s *Scheduler) IsRunning() bool {
	return s.cron != nil && len(s.cron.Entries()) > 0
}
