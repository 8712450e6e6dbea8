package server

import (
	"context"
	"net"
	"testing"
	"time"

	"redisd/internal/config"
	"redisd/internal/keyspace"
)

func startTestServer(t *testing.T) (*Server, func()) {
	t.Helper()
	cfg := &config.Config{
		Host:                    "127.0.0.1",
		Port:                    0,
		Dir:                     t.TempDir(),
		DBFilename:              "dump.rdb",
		SnapshotIntervalSeconds: 0,
	}
	store := keyspace.New()
	srv, err := New(cfg, store)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	go srv.Run(ctx)

	return srv, func() {
		cancel()
		srv.Close()
	}
}

func TestServerPingPongOverRealSocket(t *testing.T) {
	srv, stop := startTestServer(t)
	defer stop()

	conn, err := net.DialTimeout("tcp", srv.Addr().String(), 2*time.Second)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	if _, err := conn.Write([]byte("*1\r\n$4\r\nPING\r\n")); err != nil {
		t.Fatal(err)
	}
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	buf := make([]byte, 64)
	n, err := conn.Read(buf)
	if err != nil {
		t.Fatal(err)
	}
	if string(buf[:n]) != "+PONG\r\n" {
		t.Fatalf("got %q, want +PONG\\r\\n", buf[:n])
	}
}

func TestServerPipelinedSetGet(t *testing.T) {
	srv, stop := startTestServer(t)
	defer stop()

	conn, err := net.DialTimeout("tcp", srv.Addr().String(), 2*time.Second)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	req := "*3\r\n$3\r\nSET\r\n$2\r\nk1\r\n$3\r\nval\r\n*2\r\n$3\r\nGET\r\n$2\r\nk1\r\n"
	if _, err := conn.Write([]byte(req)); err != nil {
		t.Fatal(err)
	}
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	buf := make([]byte, 256)
	n, err := conn.Read(buf)
	if err != nil {
		t.Fatal(err)
	}
	if string(buf[:n]) != "+OK\r\n$3\r\nval\r\n" {
		t.Fatalf("got %q", buf[:n])
	}
}

func TestServerAcceptsMultipleConnections(t *testing.T) {
	srv, stop := startTestServer(t)
	defer stop()

	var conns []net.Conn
	for i := 0; i < 3; i++ {
		c, err := net.DialTimeout("tcp", srv.Addr().String(), 2*time.Second)
		if err != nil {
			t.Fatal(err)
		}
		defer c.Close()
		conns = append(conns, c)
	}

	for _, c := range conns {
		if _, err := c.Write([]byte("*1\r\n$4\r\nPING\r\n")); err != nil {
			t.Fatal(err)
		}
	}
	for _, c := range conns {
		c.SetReadDeadline(time.Now().Add(3 * time.Second))
		buf := make([]byte, 64)
		n, err := c.Read(buf)
		if err != nil {
			t.Fatal(err)
		}
		if string(buf[:n]) != "+PONG\r\n" {
			t.Fatalf("got %q", buf[:n])
		}
	}
}
