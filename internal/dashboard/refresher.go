package dashboard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Refresher re-fetches the current selection on a schedule, and once more a
// short while after each new forecast so freshly recorded errors show up.
type Refresher struct {
	cron     *cron.Cron
	interval time.Duration
	delay    time.Duration
	refresh  func(ctx context.Context)

	mu      sync.Mutex
	ctx     context.Context
	recheck *time.Timer
}

func NewRefresher(interval, delay time.Duration, refresh func(ctx context.Context)) *Refresher {
	return &Refresher{
		cron:     cron.New(),
		interval: interval,
		delay:    delay,
		refresh:  refresh,
		ctx:      context.Background(),
	}
}

// Start schedules the periodic refresh. A zero interval disables it.
func (r *Refresher) Start(ctx context.Context) error {
	r.mu.Lock()
	r.ctx = ctx
	r.mu.Unlock()

	if r.interval <= 0 {
		return nil
	}
	schedule := fmt.Sprintf("@every %s", r.interval)
	if _, err := r.cron.AddFunc(schedule, func() { r.run("scheduled") }); err != nil {
		return fmt.Errorf("register refresh task: %w", err)
	}
	r.cron.Start()
	log.Info().Dur("interval", r.interval).Msg("refresher started")
	return nil
}

// Stop halts the schedule, waits for a running refresh and cancels any
// pending re-check.
func (r *Refresher) Stop() {
	<-r.cron.Stop().Done()

	r.mu.Lock()
	if r.recheck != nil {
		r.recheck.Stop()
		r.recheck = nil
	}
	r.mu.Unlock()
	log.Info().Msg("refresher stopped")
}

// ScheduleRecheck runs one refresh after the configured delay. Calling it
// again before the delay elapses restarts the countdown.
func (r *Refresher) ScheduleRecheck() {
	if r.delay <= 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.recheck != nil {
		r.recheck.Stop()
	}
	r.recheck = time.AfterFunc(r.delay, func() { r.run("recheck") })
}

func (r *Refresher) run(reason string) {
	r.mu.Lock()
	ctx := r.ctx
	r.mu.Unlock()
	if ctx.Err() != nil {
		return
	}

	log.Debug().Str("reason", reason).Msg("refreshing dashboard views")
	r.refresh(ctx)
}
