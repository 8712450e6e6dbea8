package server

import (
	"redisd/internal/keyspace"
	"redisd/internal/logger"
)

// dispatchSnapshot is the portable substitute for the reference's
// fork_and_save: instead of forking the process, it takes a shallow,
// point-in-time copy of every database (Store.Snapshot, a copy-on-write
// shadow map) and hands it to a short-lived goroutine. The main loop
// never waits on that goroutine.
//
// Snapshot *writing* is a deliberate blank, same as the reference: the
// goroutine below is where a real implementation would invert the
// decoder's grammar and serialize dbs to the configured path. Nothing
// calls this path to completion; it only demonstrates that the interval
// boundary is honored and the keyspace clone is taken at the right time.
func (s *Server) dispatchSnapshot() {
	dbs := s.store.Snapshot()
	s.metrics.IncSnapshotsStarted()
	path := s.cfg.SnapshotPath()
	go runSnapshot(path, dbs)
}

func runSnapshot(path string, dbs [keyspace.NumDatabases]map[string]keyspace.SnapshotEntry) {
	total := 0
	for _, db := range dbs {
		total += len(db)
	}
	logger.Info("snapshot boundary reached: would write %d keys to %s (write unimplemented)", total, path)
}
