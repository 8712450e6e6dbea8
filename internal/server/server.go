// Package server owns the listener and the single-threaded readiness
// loop: one listener, N connections, and a periodic snapshot dispatch,
// all driven from one goroutine.
package server

import (
	"context"
	"fmt"
	"net"
	"time"

	"golang.org/x/sys/unix"
	"golang.org/x/time/rate"

	"redisd/internal/config"
	"redisd/internal/connection"
	"redisd/internal/keyspace"
	"redisd/internal/logger"
	"redisd/internal/metrics"
	"redisd/internal/netfd"
)

// Server drives the event loop described by the component design: each
// iteration records how many connections existed before accepting new
// ones, polls exactly that many plus the listener, dispatches readable
// connections, then appends newly accepted connections to the tail.
type Server struct {
	cfg      *config.Config
	store    *keyspace.Store
	listener *net.TCPListener
	listenFD int
	conns    []*connection.Connection

	metrics      *metrics.Counters
	acceptLimit  *rate.Limiter
	lastSnapshot time.Time
}

// New binds the listener and prepares the loop; it does not start
// serving until Run is called.
func New(cfg *config.Config, store *keyspace.Store) (*Server, error) {
	addr, err := net.ResolveTCPAddr("tcp", cfg.ListenAddr())
	if err != nil {
		return nil, fmt.Errorf("server: resolve %s: %w", cfg.ListenAddr(), err)
	}
	ln, err := net.ListenTCP("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("server: listen on %s: %w", cfg.ListenAddr(), err)
	}
	fd, err := netfd.FD(ln)
	if err != nil {
		ln.Close()
		return nil, fmt.Errorf("server: listener fd: %w", err)
	}

	m := &metrics.Counters{}
	store.OnExpire = m.IncKeysExpired

	return &Server{
		cfg:          cfg,
		store:        store,
		listener:     ln,
		listenFD:     fd,
		metrics:      m,
		acceptLimit:  rate.NewLimiter(rate.Limit(2000), 2000),
		lastSnapshot: time.Now(),
	}, nil
}

// Addr returns the bound listen address (useful when port 0 was
// requested and the kernel picked one).
func (s *Server) Addr() net.Addr { return s.listener.Addr() }

// Metrics exposes the server's lifetime counters.
func (s *Server) Metrics() *metrics.Counters { return s.metrics }

// Close releases the listener and every live connection.
func (s *Server) Close() error {
	for _, c := range s.conns {
		c.Close()
	}
	return s.listener.Close()
}

// Run drives the loop until ctx is canceled or a fatal error occurs.
func (s *Server) Run(ctx context.Context) error {
	logger.Info("serving on %s", s.Addr())
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		if err := s.runOnce(); err != nil {
			return err
		}
	}
}

// runOnce executes exactly one iteration of the loop described by the
// component design's seven numbered steps.
func (s *Server) runOnce() error {
	// Step 1: connections accepted this iteration must not be polled
	// this iteration.
	polledCount := len(s.conns)

	// Step 2: build the readiness vector.
	fds := make([]unix.PollFd, 1+polledCount)
	fds[0] = unix.PollFd{Fd: int32(s.listenFD), Events: unix.POLLIN}
	for i := 0; i < polledCount; i++ {
		fds[i+1] = unix.PollFd{Fd: int32(s.conns[i].FD), Events: unix.POLLIN}
	}

	// Step 3: block up to the poll timeout.
	if _, err := netfd.Wait(fds, netfd.PollTimeoutMillis); err != nil {
		return err
	}
	s.metrics.IncPollIterations()

	// Step 4: drain accepts if the listener is readable.
	if fds[0].Revents&unix.POLLIN != 0 {
		s.acceptNew()
	}

	// Step 5 & 6: dispatch the polled connections, retaining survivors,
	// then append them ahead of the newly accepted tail so arrival order
	// is preserved.
	survivors := make([]*connection.Connection, 0, polledCount)
	for i := 0; i < polledCount; i++ {
		c := s.conns[i]
		if fds[i+1].Revents&unix.POLLIN != 0 {
			if err := c.HandleReadable(); err != nil {
				c.Close()
				s.metrics.IncConnectionsClosed()
				continue
			}
		}
		survivors = append(survivors, c)
	}
	s.conns = append(survivors, s.conns[polledCount:]...)

	// Step 7: snapshot dispatch on interval boundaries.
	interval := time.Duration(s.cfg.SnapshotIntervalSeconds) * time.Second
	if interval > 0 && time.Since(s.lastSnapshot) >= interval {
		s.dispatchSnapshot()
		s.lastSnapshot = time.Now()
	}

	return nil
}

// acceptNew drains the accept queue until it would block, pushing each
// new connection to the end of the list so it is first polled on the
// next iteration, never this one.
func (s *Server) acceptNew() {
	for {
		if !s.acceptLimit.Allow() {
			logger.Warn("accept rate limit reached, deferring remaining connections to the next iteration")
			return
		}
		fd, err := netfd.AcceptNonblock(s.listenFD)
		if err != nil {
			if netfd.WouldBlock(err) {
				return
			}
			logger.Warn("accept error: %v", err)
			return
		}
		const acceptedRecvBuffer = 256 * 1024
		if err := netfd.SetReceiveBuffer(fd, acceptedRecvBuffer); err != nil {
			logger.Debug("could not raise SO_RCVBUF on accepted socket: %v", err)
		}

		addr := peerAddrString(fd)
		conn := connection.New(fd, addr, s.store, s.cfg, wallClockMillis, s.metrics)
		s.conns = append(s.conns, conn)
		s.metrics.IncConnectionsAccepted()
		logger.Debug("accepted connection from %s", addr)
	}
}

func wallClockMillis() int64 { return time.Now().UnixMilli() }

func peerAddrString(fd int) string {
	sa, err := unix.Getpeername(fd)
	if err != nil {
		return "unknown"
	}
	switch v := sa.(type) {
	case *unix.SockaddrInet4:
		return fmt.Sprintf("%d.%d.%d.%d:%d", v.Addr[0], v.Addr[1], v.Addr[2], v.Addr[3], v.Port)
	case *unix.SockaddrInet6:
		return fmt.Sprintf("[ipv6]:%d", v.Port)
	default:
		return "unknown"
	}
}
