// Package jobs runs the background reconciliation schedule. Active quote
// sessions keep their totals incrementally; the periodic sweep repairs any
// drift against the record store.
package jobs

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/dmcsuite/quotebuilder/internal/timeline"
)

type Scheduler struct {
	cron      *cron.Cron
	timelines *timeline.Manager
}

func NewScheduler(timelines *timeline.Manager) *Scheduler {
	return &Scheduler{
		cron:      cron.New(),
		timelines: timelines,
	}
}

// Start schedules ReconcileAll on the given cron spec, e.g. "@every 5m".
func (s *Scheduler) Start(spec string) error {
	_, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		s.timelines.ReconcileAll(ctx)
		log.Printf("timeline reconciliation sweep done")
	})
	if err != nil {
		return fmt.Errorf("schedule reconcile job: %w", err)
	}
	s.cron.Start()
	return nil
}

// Stop halts the schedule and waits for a running sweep to finish.
func (s *Scheduler) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
}
