// Package bootstrap loads the configured snapshot file into a keyspace at
// process start.
package bootstrap

import (
	"errors"
	"fmt"
	"io"
	"os"

	"redisd/internal/config"
	"redisd/internal/keyspace"
	"redisd/internal/logger"
	"redisd/internal/rdb"
)

// Load decodes the configured snapshot file, if one exists, and replaces
// every database's contents with it. A missing file is not an error: the
// server simply starts with an empty keyspace. A malformed existing file
// is fatal; the server declines to start rather than serve a torn
// keyspace.
func Load(cfg *config.Config, store *keyspace.Store) error {
	path := cfg.SnapshotPath()
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Info("no snapshot at %s, starting with an empty keyspace", path)
			return nil
		}
		return fmt.Errorf("bootstrap: open snapshot: %w", err)
	}
	defer f.Close()

	r, cleanup, err := mmapOrFallback(f)
	if err != nil {
		return fmt.Errorf("bootstrap: map snapshot: %w", err)
	}
	defer cleanup()

	dec := rdb.NewDecoder(r)
	if err := dec.ParseHeader(); err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}

	store.Clear()
	count := 0
	for {
		entry, err := dec.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("bootstrap: %w", err)
		}
		store.LoadEntry(entry.DB, entry.Key, entry.Value, entry.HasExpire, entry.ExpireMs)
		count++
	}
	logger.Info("loaded %d keys from %s", count, path)
	return nil
}
