// Package worker runs the fixed pool of DB-bound worker goroutines that
// pull queries off the bounded queue and execute them against a
// per-worker database session and statement cache (spec.md §4.4).
package worker

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tibia/querymanager/internal/dbops"
	"github.com/tibia/querymanager/internal/metrics"
	"github.com/tibia/querymanager/internal/protocol"
	"github.com/tibia/querymanager/internal/queryobj"
	"github.com/tibia/querymanager/internal/queryqueue"
	"github.com/tibia/querymanager/internal/session"
	"github.com/tibia/querymanager/internal/stmtcache"
)

// Handler executes one query's business logic against db, using tx as the
// scope for operations that must be transactional. It must set the
// query's status before returning; leaving it Pending signals an
// operational failure the worker should retry (spec.md §4.4 step 3).
type Handler func(ctx context.Context, q *queryobj.Query, db *dbops.Base) error

// Dispatcher resolves a query's opcode to the handler that executes it.
type Dispatcher interface {
	Handler(op protocol.Opcode) (Handler, bool)
}

// Config holds the pool's tunables, sourced from spec.md §7's
// configuration keys.
type Config struct {
	Threads     int // QueryWorkerThreads, clamped to the session's MaxConcurrency
	MaxAttempts int // QueryMaxAttempts
	CacheSize   int // MaxCachedStatements
}

// Pool is the fixed set of worker goroutines described in spec.md §4.4.
// Each worker owns one Session (and therefore one stmtcache.Cache) for its
// entire lifetime; workers never share a session.
type Pool struct {
	cfg    Config
	queue  *queryqueue.Queue
	disp   Dispatcher
	newDB  func(s session.Session) *dbops.Base
	newSess func() (session.Session, error)

	active atomic.Int64
	done   atomic.Int64
	busy   atomic.Int64
	wg     sync.WaitGroup
	mc     *metrics.Collector
}

// New builds a pool with n = min(cfg.Threads, DatabaseMaxConcurrency)
// workers, each opened via newSess and wired to a dbops.Base by newDB.
func New(cfg Config, queue *queryqueue.Queue, disp Dispatcher, newSess func() (session.Session, error), newDB func(s session.Session) *dbops.Base) *Pool {
	return &Pool{cfg: cfg, queue: queue, disp: disp, newSess: newSess, newDB: newDB}
}

// SetMetrics attaches a Collector that execute reports per-query outcomes,
// durations and retries to. Safe to leave unset.
func (p *Pool) SetMetrics(mc *metrics.Collector) { p.mc = mc }

// Start launches the worker goroutines and blocks until every one of them
// has reached Active or returns the first initialization error. Per
// spec.md §4.4, any worker that reaches Done before Active is a fatal
// initialization failure — Start treats that race as an error rather than
// silently continuing with fewer workers.
func (p *Pool) Start(ctx context.Context) error {
	probe, err := p.newSess()
	if err != nil {
		return err
	}
	maxConcurrency := probe.MaxConcurrency()
	probe.Close()

	n := p.cfg.Threads
	if n <= 0 || n > maxConcurrency {
		n = maxConcurrency
	}
	if n <= 0 {
		n = 1
	}

	readyCh := make(chan error, n)
	for i := 0; i < n; i++ {
		id := i
		p.wg.Add(1)
		go p.run(ctx, id, readyCh)
	}

	for i := 0; i < n; i++ {
		if err := <-readyCh; err != nil {
			return err
		}
	}
	return nil
}

// Wait blocks until every worker goroutine has exited (after Shutdown).
func (p *Pool) Wait() { p.wg.Wait() }

// Shutdown raises the queue's shutdown flag, waking every worker blocked
// in Dequeue, then waits for them all to exit (spec.md §4.4's
// cancellation rule: in-flight handlers complete naturally, enqueued but
// not-yet-taken queries are destroyed in bulk on teardown by the
// connection engine that owns them).
func (p *Pool) Shutdown() {
	p.queue.Shutdown()
	p.wg.Wait()
}

// Active reports how many workers successfully reached the running loop.
func (p *Pool) Active() int64 { return p.active.Load() }

func (p *Pool) run(ctx context.Context, id int, readyCh chan<- error) {
	defer p.wg.Done()

	sess, err := p.newSess()
	if err != nil {
		p.done.Add(1)
		readyCh <- err
		return
	}
	defer sess.Close()

	cache := stmtcache.New(sess, p.cfg.CacheSize)
	cache.SetMetrics(p.mc)
	db := p.newDB(sess)

	p.active.Add(1)
	readyCh <- nil

	slog.Info("worker started", "worker", id)

	for {
		q, err := p.queue.Dequeue()
		if err != nil {
			slog.Info("worker shutting down", "worker", id)
			return
		}
		p.execute(ctx, id, q, sess, cache, db)
	}
}

func (p *Pool) execute(ctx context.Context, id int, q *queryobj.Query, sess session.Session, cache *stmtcache.Cache, db *dbops.Base) {
	defer q.Release()

	started := time.Now()
	opcode := q.Opcode.Name()

	if p.mc != nil {
		p.busy.Add(1)
		p.mc.SetWorkersBusy(int(p.busy.Load()))
		defer func() {
			p.busy.Add(-1)
			p.mc.SetWorkersBusy(int(p.busy.Load()))
			p.mc.QueryDuration(opcode, time.Since(started).Seconds())
			p.mc.QueryHandled(opcode, q.Status().String())
		}()
	}

	handler, ok := p.disp.Handler(q.Opcode)
	if !ok {
		q.SetError(protocol.CodeNotImplemented)
		return
	}

	for attempt := 1; attempt <= p.cfg.MaxAttempts; attempt++ {
		if attempt > 1 && p.mc != nil {
			p.mc.RetryAttempt()
		}
		q.SetStatus(queryobj.StatusPending)

		if err := sess.Checkpoint(ctx); err != nil {
			slog.Warn("worker checkpoint failed", "worker", id, "opcode", q.Opcode.Name(), "attempt", attempt, "error", err)
			cache.Reset() // session may have reconnected; cached statements are gone server-side
			continue
		}

		if err := handler(ctx, q, db); err != nil {
			slog.Warn("worker handler error", "worker", id, "opcode", q.Opcode.Name(), "attempt", attempt, "error", err)
			continue
		}

		if q.Status() != queryobj.StatusPending {
			return // handler reached a terminal status
		}

		slog.Warn("worker retrying query", "worker", id, "opcode", q.Opcode.Name(), "attempt", attempt)
	}

	if p.mc != nil {
		p.mc.RetryExhausted()
	}
	q.SetStatus(queryobj.StatusFailed)
}
