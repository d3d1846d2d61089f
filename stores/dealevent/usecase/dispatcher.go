package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/viney-shih/goroutines"

	"github.com/x-xyz/dealexchange/base/backoff"
	"github.com/x-xyz/dealexchange/base/ctx"
	"github.com/x-xyz/dealexchange/base/goroutine"
	"github.com/x-xyz/dealexchange/base/log"
	"github.com/x-xyz/dealexchange/base/metrics"
	"github.com/x-xyz/dealexchange/domain"
	"github.com/x-xyz/dealexchange/domain/deal"
	"github.com/x-xyz/dealexchange/domain/dealevent"
)

const (
	defaultWorkers  = 8
	defaultAttempts = 5
	scheduleTimeout = 3 * time.Second
)

type DispatcherCfg struct {
	Sinks []dealevent.Sink
	// Repo serves archive queries, nil disables them
	Repo    dealevent.Repo
	Workers int
	// Attempts bounds the deliveries of one event to one sink
	Attempts     int
	BackoffStart time.Duration
	BackoffLimit time.Duration
	Metrics      metrics.Service
}

type dispatcher struct {
	sinks        []dealevent.Sink
	repo         dealevent.Repo
	pool         *goroutines.Pool
	wg           sync.WaitGroup
	attempts     int
	backoffStart time.Duration
	backoffLimit time.Duration
	met          metrics.Service
}

func New(cfg *DispatcherCfg) dealevent.UseCase {
	workers := cfg.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	attempts := cfg.Attempts
	if attempts <= 0 {
		attempts = defaultAttempts
	}
	start := cfg.BackoffStart
	if start <= 0 {
		start = 100 * time.Millisecond
	}
	limit := cfg.BackoffLimit
	if limit <= 0 {
		limit = 10 * time.Second
	}
	met := cfg.Metrics
	if met == nil {
		met = metrics.NewNop()
	}
	return &dispatcher{
		sinks:        cfg.Sinks,
		repo:         cfg.Repo,
		pool:         goroutines.NewPool(workers, goroutines.WithTaskQueueLength(workers*128), goroutines.WithPreAllocWorkers(workers)),
		attempts:     attempts,
		backoffStart: start,
		backoffLimit: limit,
		met:          met,
	}
}

func (im *dispatcher) PublishDeal(c ctx.Ctx, ev *deal.DealEvent) {
	record := dealevent.FromDeal(ev)
	for _, sink := range im.sinks {
		sink := sink
		im.schedule(c, sink.Name(), "deal", func(c ctx.Ctx) error {
			return sink.Deal(c, record)
		})
	}
}

func (im *dispatcher) PublishClaim(c ctx.Ctx, ev *deal.ClaimEvent) {
	record := dealevent.FromClaim(ev)
	for _, sink := range im.sinks {
		sink := sink
		im.schedule(c, sink.Name(), "claim", func(c ctx.Ctx) error {
			return sink.Claim(c, record)
		})
	}
}

func (im *dispatcher) schedule(c ctx.Ctx, sink, kind string, fn func(ctx.Ctx) error) {
	// deliveries outlive the request that produced them
	c = ctx.WithValues(ctx.From(c, context.Background()), map[string]interface{}{
		"sink": sink,
		"kind": kind,
	})

	im.wg.Add(1)
	err := im.pool.ScheduleWithTimeout(scheduleTimeout, func() {
		defer im.wg.Done()
		// a panicking sink must not take the worker down
		goroutine.Recoverable(
			func() { im.deliver(c, sink, kind, fn) },
			goroutine.WithAfterRecovered(func(p interface{}, _ []byte) {
				im.met.BumpSum("event.dropped", 1, "sink", sink, "kind", kind)
				c.WithField("panic", p).Error("sink panicked")
			}),
		)
	})
	if err != nil {
		im.wg.Done()
		im.met.BumpSum("event.dropped", 1, "sink", sink, "kind", kind)
		c.WithField("err", err).Error("pool.ScheduleWithTimeout failed")
	}
}

func (im *dispatcher) deliver(c ctx.Ctx, sink, kind string, fn func(ctx.Ctx) error) {
	defer im.met.BumpTime("event.deliver.time", "sink", sink).End()

	b := backoff.NewExponential(im.backoffStart, im.backoffLimit)
	err := b.Retry(c, im.attempts, func() error {
		err := fn(c)
		if err == domain.ErrConflict {
			// delivered by an earlier attempt
			return nil
		} else if err != nil {
			c.WithFields(log.Fields{
				"err":     err,
				"attempt": b.Count() + 1,
			}).Warn("event delivery failed")
		}
		return err
	})
	if err != nil {
		im.met.BumpSum("event.dropped", 1, "sink", sink, "kind", kind)
		c.WithField("err", err).Error("event dropped after retries")
	}
}

func (im *dispatcher) FindDeals(c ctx.Ctx, opts ...dealevent.FindAllOptionsFunc) ([]dealevent.DealRecord, error) {
	if im.repo == nil {
		return []dealevent.DealRecord{}, nil
	}
	res, err := im.repo.FindAllDeals(c, opts...)
	if err != nil {
		c.WithField("err", err).Error("repo.FindAllDeals failed")
		return nil, err
	}
	return res, nil
}

func (im *dispatcher) FindClaims(c ctx.Ctx, claimant domain.Address, offset, limit int32) ([]dealevent.ClaimRecord, error) {
	if im.repo == nil {
		return []dealevent.ClaimRecord{}, nil
	}
	res, err := im.repo.FindAllClaims(c, claimant, offset, limit)
	if err != nil {
		c.WithField("err", err).Error("repo.FindAllClaims failed")
		return nil, err
	}
	return res, nil
}

func (im *dispatcher) Close() {
	im.wg.Wait()
	im.pool.Release()
}
