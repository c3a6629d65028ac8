// Package scheduler runs background maintenance on a cron cadence.
package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

type Scheduler struct {
	cron   *cron.Cron
	ctx    context.Context
	cancel context.CancelFunc
	spec   string
	job    func(ctx context.Context) error
}

// New builds a scheduler for the given cron spec (robfig syntax, UTC;
// "@every 10m" style descriptors work too).
func New(spec string) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:   cron.New(cron.WithLocation(time.UTC)),
		ctx:    ctx,
		cancel: cancel,
		spec:   spec,
	}
}

// SetJob installs the maintenance function to run on each tick.
func (s *Scheduler) SetJob(f func(ctx context.Context) error) {
	s.job = f
}

func (s *Scheduler) Start() error {
	if s.job == nil {
		log.Println("scheduler: no job set, nothing to run")
		return nil
	}
	_, err := s.cron.AddFunc(s.spec, func() {
		if err := s.job(s.ctx); err != nil {
			log.Printf("scheduled job failed: %v", err)
		}
	})
	if err != nil {
		return err
	}
	s.cron.Start()
	log.Printf("scheduler started (%s)", s.spec)
	return nil
}

func (s *Scheduler) Stop() {
	s.cancel()
	ctx := s.cron.Stop()
	<-ctx.Done()
}
