// Package scheduler evaluates persisted day/time rules and triggers
// start/stop operations autonomously, exactly as a manual caller would.
package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/lzjever/mbos-wso/internal/core"
	"github.com/lzjever/mbos-wso/internal/lifecycle"
	"github.com/lzjever/mbos-wso/internal/meta"
	"github.com/lzjever/mbos-wso/internal/observability"
)

// DefaultInterval keeps evaluation finer than the one-minute rule
// granularity so an exact hour/minute match is never skipped.
const DefaultInterval = 30 * time.Second

type Engine struct {
	store    *meta.Store
	manager  *lifecycle.Manager
	interval time.Duration
	now      func() time.Time
	log      *zap.Logger
}

func NewEngine(store *meta.Store, manager *lifecycle.Manager, interval time.Duration, log *zap.Logger) *Engine {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Engine{
		store:    store,
		manager:  manager,
		interval: interval,
		now:      time.Now,
		log:      log,
	}
}

// Run evaluates schedules until the context is canceled. Missed ticks
// are not caught up; a rule firing twice within its minute is harmless
// because the underlying operations are idempotent.
func (e *Engine) Run(ctx context.Context) {
	e.log.Info("schedule engine started", zap.Duration("interval", e.interval))
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			e.log.Info("schedule engine stopping")
			return
		case <-ticker.C:
			e.tick(ctx)
		}
	}
}

func (e *Engine) tick(ctx context.Context) {
	start := time.Now()
	defer func() {
		observability.ScheduleTickDuration.Observe(time.Since(start).Seconds())
	}()

	schedules, err := e.store.Schedules(ctx)
	if err != nil {
		e.log.Warn("loading schedules failed", zap.Error(err))
		return
	}
	now := e.now().Local()
	for _, sched := range schedules {
		if !sched.Matches(now) {
			continue
		}
		e.fire(ctx, sched)
	}
}

func (e *Engine) fire(ctx context.Context, sched core.Schedule) {
	ref := sched.PodName
	if ref == "" {
		ref = sched.Workspace
	}
	log := e.log.With(
		zap.String("workspace", sched.Workspace),
		zap.String("action", string(sched.Action)),
	)

	var err error
	switch sched.Action {
	case core.ScheduleStart:
		err = e.manager.Start(ctx, ref)
	case core.ScheduleStop:
		err = e.manager.Stop(ctx, ref)
	}

	outcome := "ok"
	if err != nil {
		outcome = "error"
		log.Warn("scheduled action failed", zap.Error(err))
	} else {
		log.Info("scheduled action fired")
	}
	observability.ScheduleFiresTotal.WithLabelValues(string(sched.Action), outcome).Inc()
}
