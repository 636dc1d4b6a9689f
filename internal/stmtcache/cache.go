// Package stmtcache implements the per-worker prepared-statement LRU from
// spec.md §4.5: at most MaxCachedStatements entries, hash-assisted probe,
// eviction by oldest last-used timestamp.
package stmtcache

import (
	"context"
	"fmt"
	"hash/fnv"
	"log/slog"
	"time"

	"github.com/tibia/querymanager/internal/metrics"
	"github.com/tibia/querymanager/internal/session"
)

// hardCeiling is the hard cap spec.md §4.5 requires when configured
// absurdly high: "clamps to a hard ceiling (at least 9999)".
const hardCeiling = 9999

type entry struct {
	sql      string
	hash     uint64
	stmt     session.Stmt
	lastUsed int64 // monotonic nanoseconds
}

// Cache is a per-worker, per-session LRU of prepared statements keyed by
// SQL text.
type Cache struct {
	sess    session.Session
	cap     int
	entries []*entry // nil slot = never used
	clock   func() int64
	mc      *metrics.Collector
}

// SetMetrics attaches a Collector that Prepare/insert report hits, misses
// and evictions to. Safe to leave unset; every call site nil-checks it.
func (c *Cache) SetMetrics(mc *metrics.Collector) { c.mc = mc }

// New creates a cache bound to sess with the given capacity, clamping to
// hardCeiling and logging a warning if the configured value exceeds it.
func New(sess session.Session, capacity int) *Cache {
	if capacity <= 0 {
		capacity = 1
	}
	if capacity > hardCeiling {
		slog.Warn("statement cache capacity clamped", "configured", capacity, "ceiling", hardCeiling)
		capacity = hardCeiling
	}
	return &Cache{
		sess:    sess,
		cap:     capacity,
		entries: make([]*entry, capacity),
		clock:   func() int64 { return time.Now().UnixNano() },
	}
}

func hashText(sql string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(sql))
	return h.Sum64()
}

// Prepare returns a cached handle for sql, preparing and caching it on a
// miss. On hit, the entry's last-used timestamp is refreshed.
func (c *Cache) Prepare(ctx context.Context, sql string) (session.Stmt, error) {
	h := hashText(sql)

	for _, e := range c.entries {
		if e == nil {
			continue
		}
		// Hash skips the string compare on most probes; on collision the
		// full text comparison settles it (spec.md §4.5).
		if e.hash == h && e.sql == sql {
			e.lastUsed = c.clock()
			if err := c.sess.ResetStmt(e.stmt); err != nil {
				return nil, fmt.Errorf("resetting cached statement: %w", err)
			}
			if c.mc != nil {
				c.mc.StmtCacheHit()
			}
			return e.stmt, nil
		}
	}

	return c.insert(ctx, sql, h)
}

func (c *Cache) insert(ctx context.Context, sql string, h uint64) (session.Stmt, error) {
	victim := c.oldestSlot()

	if c.entries[victim] != nil {
		if err := c.sess.CloseStmt(c.entries[victim].stmt); err != nil {
			slog.Warn("closing evicted statement", "error", err)
		}
		if c.mc != nil {
			c.mc.StmtCacheEvicted()
		}
	}
	if c.mc != nil {
		c.mc.StmtCacheMiss()
	}

	stmt, err := c.sess.Prepare(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("preparing %q: %w", sql, err)
	}

	c.entries[victim] = &entry{sql: sql, hash: h, stmt: stmt, lastUsed: c.clock()}
	return stmt, nil
}

// oldestSlot finds an empty slot first, else the slot with the smallest
// lastUsed timestamp.
func (c *Cache) oldestSlot() int {
	oldest := 0
	var oldestAt int64
	for i, e := range c.entries {
		if e == nil {
			return i
		}
		if i == 0 || e.lastUsed < oldestAt {
			oldest = i
			oldestAt = e.lastUsed
		}
	}
	return oldest
}

// Len reports the number of live entries (test/metrics helper).
func (c *Cache) Len() int {
	n := 0
	for _, e := range c.entries {
		if e != nil {
			n++
		}
	}
	return n
}

// Reset discards the entire cache without closing statements on the
// server — used on session loss, where the server side is already gone
// (spec.md §4.5: "On session loss, the entire cache is discarded before
// reconnecting").
func (c *Cache) Reset() {
	for i := range c.entries {
		c.entries[i] = nil
	}
}

// Close releases every cached statement and issues the server-side
// equivalent of DEALLOCATE ALL, for graceful teardown while the
// connection is still alive (spec.md §4.5).
func (c *Cache) Close(ctx context.Context) error {
	for i, e := range c.entries {
		if e == nil {
			continue
		}
		if err := c.sess.CloseStmt(e.stmt); err != nil {
			slog.Warn("closing statement on cache teardown", "error", err)
		}
		c.entries[i] = nil
	}
	return c.sess.DeallocateAll(ctx)
}
