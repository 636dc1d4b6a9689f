package connio

import (
	"net"
	"sync/atomic"

	"github.com/tibia/querymanager/internal/protocol"
	"github.com/tibia/querymanager/internal/queryobj"
)

// State is a connection's position in the Free→Reading→RequestReady→
// Responding→Writing→Reading cycle from spec.md §4.2.
type State int32

const (
	StateFree State = iota
	StateReading
	StateRequestReady
	StateResponding
	StateWriting
)

func (s State) String() string {
	switch s {
	case StateFree:
		return "Free"
	case StateReading:
		return "Reading"
	case StateRequestReady:
		return "RequestReady"
	case StateResponding:
		return "Responding"
	case StateWriting:
		return "Writing"
	default:
		return "Unknown"
	}
}

// Conn is one accepted socket plus the protocol state the spec attaches
// to it. Exactly one goroutine (serveConn) ever touches the socket or
// mutates non-atomic fields; State, lastActivity, authorized, role and
// worldID are atomic so metrics and idle-timeout logic can read them from
// outside that goroutine.
type Conn struct {
	netConn net.Conn
	remote  string
	buf     []byte

	State State32

	lastActivity atomic.Int64 // monotonic ms, per spec.md §3
	authorized   atomic.Bool
	role         atomic.Int32 // protocol.Role
	worldID      atomic.Int32

	query *queryobj.Query
}

// State32 wraps atomic.Int32 with the connio.State type, mirroring the
// teacher's GameClient.state atomic.Int32 lock-free pattern.
type State32 struct{ v atomic.Int32 }

func (s *State32) Load() State      { return State(s.v.Load()) }
func (s *State32) Store(v State)    { s.v.Store(int32(v)) }
func (s *State32) CAS(old, new State) bool {
	return s.v.CompareAndSwap(int32(old), int32(new))
}

func newConn(nc net.Conn, buf []byte) *Conn {
	c := &Conn{netConn: nc, remote: nc.RemoteAddr().String(), buf: buf}
	c.State.Store(StateReading)
	return c
}

// Role returns the connection's authenticated application role.
func (c *Conn) Role() protocol.Role { return protocol.Role(c.role.Load()) }

// WorldID returns the world a Game-role connection authorized against.
func (c *Conn) WorldID() int32 { return c.worldID.Load() }

// Authorized reports whether the Login handshake has completed.
func (c *Conn) Authorized() bool { return c.authorized.Load() }

// Remote returns the connection's remote address string.
func (c *Conn) Remote() string { return c.remote }

func (c *Conn) touch(nowMS int64) { c.lastActivity.Store(nowMS) }

func (c *Conn) authorize(role protocol.Role, worldID int32) {
	c.role.Store(int32(role))
	c.worldID.Store(worldID)
	c.authorized.Store(true)
}
