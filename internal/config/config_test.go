package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestApplyDefaults(t *testing.T) {
	var c Config
	c.ApplyDefaults()
	if c.Dir != "/tmp/redis-data" || c.DBFilename != "dump.rdb" || c.Host != "127.0.0.1" || c.Port != 6379 {
		t.Fatalf("unexpected defaults: %+v", c)
	}
	if c.SnapshotIntervalSeconds != 60 {
		t.Fatalf("expected default snapshot interval 60, got %d", c.SnapshotIntervalSeconds)
	}
}

func TestValidateCollectsAllProblems(t *testing.T) {
	c := Config{LogLevel: "loud"}
	err := c.Validate()
	if err == nil {
		t.Fatal("expected validation to fail")
	}
	ve, ok := err.(*ValidationError)
	if !ok {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if len(ve.Problems) < 2 {
		t.Fatalf("expected multiple collected problems, got %v", ve.Problems)
	}
}

func TestLoadYAMLOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := "dir: /var/lib/redisd\nport: 7000\n"
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	c := Config{Host: "0.0.0.0"}
	if err := LoadYAMLOverlay(path, &c); err != nil {
		t.Fatal(err)
	}
	if c.Dir != "/var/lib/redisd" || c.Port != 7000 {
		t.Fatalf("overlay did not apply: %+v", c)
	}
	if c.Host != "0.0.0.0" {
		t.Fatalf("overlay should not clobber fields it doesn't mention: %+v", c)
	}
}

func TestSnapshotPathAndListenAddr(t *testing.T) {
	c := Config{Dir: "/data", DBFilename: "dump.rdb", Host: "127.0.0.1", Port: 6380}
	if got := c.SnapshotPath(); got != "/data/dump.rdb" {
		t.Fatalf("got %q", got)
	}
	if got := c.ListenAddr(); got != "127.0.0.1:6380" {
		t.Fatalf("got %q", got)
	}
}
