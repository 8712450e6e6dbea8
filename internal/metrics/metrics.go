// Package metrics tracks small in-process counters the event loop updates
// as it runs. They are readable in process through Server.Metrics; nothing
// logs them, and the command surface has no INFO/metrics command.
package metrics

import "sync/atomic"

// Counters holds the server's lifetime counters. All fields are updated
// with atomic operations so other goroutines can read them without
// coordinating with the main loop.
type Counters struct {
	ConnectionsAccepted uint64
	ConnectionsClosed   uint64
	CommandsProcessed   uint64
	KeysExpired         uint64
	SnapshotsStarted    uint64
	PollIterations      uint64
}

func (c *Counters) IncConnectionsAccepted() { atomic.AddUint64(&c.ConnectionsAccepted, 1) }
func (c *Counters) IncConnectionsClosed()   { atomic.AddUint64(&c.ConnectionsClosed, 1) }
func (c *Counters) IncCommandsProcessed()   { atomic.AddUint64(&c.CommandsProcessed, 1) }
func (c *Counters) IncKeysExpired()         { atomic.AddUint64(&c.KeysExpired, 1) }
func (c *Counters) IncSnapshotsStarted()    { atomic.AddUint64(&c.SnapshotsStarted, 1) }
func (c *Counters) IncPollIterations()      { atomic.AddUint64(&c.PollIterations, 1) }

// Snapshot returns a consistent-enough point-in-time copy for logging.
func (c *Counters) Snapshot() Counters {
	return Counters{
		ConnectionsAccepted: atomic.LoadUint64(&c.ConnectionsAccepted),
		ConnectionsClosed:   atomic.LoadUint64(&c.ConnectionsClosed),
		CommandsProcessed:   atomic.LoadUint64(&c.CommandsProcessed),
		KeysExpired:         atomic.LoadUint64(&c.KeysExpired),
		SnapshotsStarted:    atomic.LoadUint64(&c.SnapshotsStarted),
		PollIterations:      atomic.LoadUint64(&c.PollIterations),
	}
}
