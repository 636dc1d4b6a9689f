// Package connio is the connection engine from spec.md §4.2: one
// goroutine per accepted connection, grounded on the teacher's
// internal/login.Server (acceptLoop/handleConnection/handlePacket split),
// generalized from the login protocol's Blowfish/RSA handshake to this
// protocol's plaintext length-framed opcodes.
package connio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/tibia/querymanager/internal/dbops"
	"github.com/tibia/querymanager/internal/frame"
	"github.com/tibia/querymanager/internal/metrics"
	"github.com/tibia/querymanager/internal/protocol"
	"github.com/tibia/querymanager/internal/queryobj"
	"github.com/tibia/querymanager/internal/queryqueue"
)

// Config holds the engine's tunables, sourced from spec.md §7.
type Config struct {
	Port                  int
	Password              string
	MaxConnections        int
	MaxConnectionIdleTime time.Duration
	QueryBufferSize       int
}

// Server accepts connections on a loopback-only listener and drives each
// one through the read-authorize-enqueue-respond cycle.
type Server struct {
	cfg     Config
	queue   *queryqueue.Queue
	authDB  *dbops.Base
	metrics *metrics.Collector
	bufPool *BufPool

	listener net.Listener
	mu       sync.Mutex

	connSem chan struct{} // bounds MaxConnections
}

// NewServer builds a Server. authDB is used only for the Login bootstrap
// frame's world-name lookup; it is never touched by query handlers, which
// go through the worker pool's own per-worker sessions.
func NewServer(cfg Config, queue *queryqueue.Queue, authDB *dbops.Base, m *metrics.Collector) *Server {
	maxConns := cfg.MaxConnections
	if maxConns <= 0 {
		maxConns = 1
	}
	return &Server{
		cfg:     cfg,
		queue:   queue,
		authDB:  authDB,
		metrics: m,
		bufPool: NewBufPool(cfg.QueryBufferSize),
		connSem: make(chan struct{}, maxConns),
	}
}

// Addr returns the bound address, or nil if Run/Serve has not started.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Close closes the listener, ending the accept loop.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Close()
	}
	return nil
}

// Run binds the loopback-only listener and serves until ctx is canceled.
// Backlog is left to the OS default: Go's net package exposes no portable
// backlog knob, and the platforms this runs on default well above the
// spec's nominal 128.
func (s *Server) Run(ctx context.Context) error {
	addr := fmt.Sprintf("127.0.0.1:%d", s.cfg.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}

	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	return s.Serve(ctx, ln)
}

// Serve accepts on ln until ctx is canceled or the listener is closed.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	var wg sync.WaitGroup
	wg.Go(func() {
		slog.Info("query manager listening", "address", ln.Addr())
		s.acceptLoop(ctx, &wg, ln)
	})
	wg.Wait()
	return nil
}

func (s *Server) acceptLoop(ctx context.Context, wg *sync.WaitGroup, ln net.Listener) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		nc, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			slog.Error("accept failed", "error", err)
			continue
		}

		if !s.acceptable(nc) {
			nc.Close()
			continue
		}

		select {
		case s.connSem <- struct{}{}:
		default:
			if s.metrics != nil {
				s.metrics.ConnectionRejected()
			}
			nc.Close()
			continue
		}

		if s.metrics != nil {
			s.metrics.ConnectionAccepted()
		}
		wg.Go(func() {
			defer func() { <-s.connSem }()
			s.handleConnection(ctx, nc)
		})
	}
}

// acceptable rejects any remote whose address is not loopback, per
// spec.md §4.2's loopback-only binding intent extended to the accepted
// peer as well as the listening address.
func (s *Server) acceptable(nc net.Conn) bool {
	host, _, err := net.SplitHostPort(nc.RemoteAddr().String())
	if err != nil {
		return false
	}
	ip := net.ParseIP(host)
	if ip == nil || !ip.IsLoopback() {
		if s.metrics != nil {
			s.metrics.LoopbackRejected()
		}
		slog.Warn("rejected non-loopback connection", "remote", nc.RemoteAddr())
		return false
	}
	return true
}

func (s *Server) handleConnection(ctx context.Context, nc net.Conn) {
	defer nc.Close()
	if s.metrics != nil {
		defer s.metrics.ConnectionClosed()
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			nc.Close()
		case <-done:
		}
	}()

	buf := s.bufPool.Get(s.cfg.QueryBufferSize)
	defer s.bufPool.Put(buf)
	c := newConn(nc, buf)

	slog.Info("connection accepted", "remote", c.remote)

	for {
		if s.cfg.MaxConnectionIdleTime > 0 {
			nc.SetReadDeadline(time.Now().Add(s.cfg.MaxConnectionIdleTime))
		}

		ok, err := s.serveOne(ctx, c)
		if err != nil {
			slog.Debug("connection closing", "remote", c.remote, "error", err)
		}
		if !ok {
			return
		}
	}
}

// serveOne reads one frame, advances the state machine, and either
// replies immediately (Login bootstrap, whitelist rejection) or enqueues
// the query and waits for a worker to finish it before replying. It
// returns false when the connection should close.
func (s *Server) serveOne(ctx context.Context, c *Conn) (bool, error) {
	c.State.Store(StateReading)
	payload, err := frame.ReadFrame(c.netConn, c.buf)
	if err != nil {
		return false, err
	}
	c.touch(time.Now().UnixMilli())
	c.State.Store(StateRequestReady)

	if len(payload) == 0 {
		return false, errors.New("connio: empty frame")
	}
	op := protocol.Opcode(payload[0])
	body := payload[1:]

	if !c.Authorized() {
		return s.handleAuth(c, op, body)
	}

	if op == protocol.OpLogin {
		// Re-authorizing an already-authorized connection is a protocol
		// violation, not a retry.
		return false, errors.New("connio: Login opcode on authorized connection")
	}

	if !protocol.Allowed(c.Role(), op) {
		s.reply(c, []byte{byte(protocol.StatusFailed)})
		if c.Role() == protocol.RoleGame {
			return true, nil
		}
		return false, nil
	}

	return s.runQuery(ctx, c, op, body)
}

// handleAuth implements spec.md §4.2's authorization gate: the first
// frame on a connection must be Login(role, password[, worldName]).
func (s *Server) handleAuth(c *Conn, op protocol.Opcode, body []byte) (bool, error) {
	if op != protocol.OpLogin {
		s.reply(c, []byte{byte(protocol.StatusFailed)})
		return false, errors.New("connio: first frame was not Login")
	}

	r := frame.NewReader(body)
	role := protocol.Role(r.ReadUint8())
	password := r.ReadString()
	var worldName string
	if role == protocol.RoleGame {
		worldName = r.ReadString()
	}
	if r.Overflow() {
		s.reply(c, []byte{byte(protocol.StatusFailed)})
		return false, errors.New("connio: malformed Login frame")
	}

	if !subtleCompare(password, s.cfg.Password) {
		s.reply(c, []byte{byte(protocol.StatusFailed)})
		return false, nil
	}

	var worldID int32
	if role == protocol.RoleGame {
		ok, found, world := s.authDB.LoadWorldConfig(context.Background(), worldName)
		if !ok || !found {
			s.reply(c, []byte{byte(protocol.StatusFailed)})
			return false, nil
		}
		worldID = world.ID
	}

	c.authorize(role, worldID)
	s.reply(c, []byte{byte(protocol.StatusOk)})
	return true, nil
}

func (s *Server) runQuery(ctx context.Context, c *Conn, op protocol.Opcode, body []byte) (bool, error) {
	c.State.Store(StateResponding)

	q := queryobj.New(s.cfg.QueryBufferSize, nil)
	q.Opcode = op
	q.WorldID = c.WorldID()
	q.ReqLen = copy(q.Buf, body)
	c.query = q

	if err := s.queue.Enqueue(q); err != nil {
		return false, fmt.Errorf("enqueue: %w", err)
	}

	select {
	case <-q.Done():
	case <-ctx.Done():
		return false, ctx.Err()
	}

	c.State.Store(StateWriting)
	resp := make([]byte, 2+q.RespLen)
	resp[0] = byte(q.WireStatus())
	resp[1] = byte(q.Code())
	copy(resp[2:], q.Buf[:q.RespLen])
	q.Release()
	c.query = nil

	err := s.writeFrame(c, resp)
	return err == nil, err
}

func (s *Server) reply(c *Conn, payload []byte) {
	c.State.Store(StateWriting)
	if err := s.writeFrame(c, payload); err != nil {
		slog.Debug("write reply failed", "remote", c.remote, "error", err)
	}
}

func (s *Server) writeFrame(c *Conn, payload []byte) error {
	hdr := frame.AppendHeader(make([]byte, 0, 6), len(payload))
	if _, err := c.netConn.Write(hdr); err != nil {
		return err
	}
	_, err := c.netConn.Write(payload)
	return err
}

// subtleCompare is a plain == check of the whole shared secret (never a
// prefix match). It is not constant-time and may return at the first
// differing byte, since the secret is not a signed credential whose
// timing leak matters against a loopback-only peer.
func subtleCompare(a, b string) bool { return a == b }
