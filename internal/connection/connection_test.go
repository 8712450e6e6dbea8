package connection

import (
	"testing"

	"redisd/internal/config"
	"redisd/internal/keyspace"
	"redisd/internal/resp"
)

func newTestConnection(nowMs int64) *Connection {
	cfg := &config.Config{Dir: "./data", DBFilename: "dump.rdb"}
	return &Connection{
		store: keyspace.New(),
		cfg:   cfg,
		now:   func() int64 { return nowMs },
		enc:   resp.NewEncoder(nil),
	}
}

func array(elems ...resp.Term) resp.Term {
	return resp.Term{Kind: resp.Array, Elems: elems}
}

func bulk(s string) resp.Term {
	return resp.Term{Kind: resp.BulkString, Bytes: []byte(s)}
}

func TestDispatchPing(t *testing.T) {
	c := newTestConnection(0)
	if err := c.dispatch(array(bulk("PING"))); err != nil {
		t.Fatal(err)
	}
	if string(c.enc.Bytes()) != "+PONG\r\n" {
		t.Fatalf("got %q", c.enc.Bytes())
	}
}

func TestDispatchInlinePing(t *testing.T) {
	c := newTestConnection(0)
	if err := c.dispatch(resp.Term{Kind: resp.SimpleString, Bytes: []byte("ping")}); err != nil {
		t.Fatal(err)
	}
	if string(c.enc.Bytes()) != "+PONG\r\n" {
		t.Fatalf("got %q", c.enc.Bytes())
	}
}

func TestDispatchEcho(t *testing.T) {
	c := newTestConnection(0)
	if err := c.dispatch(array(bulk("ECHO"), bulk("hello"))); err != nil {
		t.Fatal(err)
	}
	if string(c.enc.Bytes()) != "+hello\r\n" {
		t.Fatalf("got %q", c.enc.Bytes())
	}
}

func TestDispatchSetGet(t *testing.T) {
	c := newTestConnection(0)
	if err := c.dispatch(array(bulk("SET"), bulk("k1"), bulk("val"))); err != nil {
		t.Fatal(err)
	}
	if string(c.enc.Bytes()) != "+OK\r\n" {
		t.Fatalf("got %q", c.enc.Bytes())
	}
	c.enc.Reset()
	if err := c.dispatch(array(bulk("GET"), bulk("k1"))); err != nil {
		t.Fatal(err)
	}
	if string(c.enc.Bytes()) != "$3\r\nval\r\n" {
		t.Fatalf("got %q", c.enc.Bytes())
	}
}

func TestDispatchSetPXExpiry(t *testing.T) {
	c := newTestConnection(1000)
	if err := c.dispatch(array(bulk("SET"), bulk("k"), bulk("v"), bulk("PX"), bulk("50"))); err != nil {
		t.Fatal(err)
	}
	c.enc.Reset()
	if err := c.dispatch(array(bulk("GET"), bulk("k"))); err != nil {
		t.Fatal(err)
	}
	if string(c.enc.Bytes()) != "$1\r\nv\r\n" {
		t.Fatalf("got %q", c.enc.Bytes())
	}

	c2 := newTestConnection(1000)
	c2.store = c.store
	c2.now = func() int64 { return 1300 }
	c2.enc.Reset()
	if err := c2.dispatch(array(bulk("GET"), bulk("k"))); err != nil {
		t.Fatal(err)
	}
	if string(c2.enc.Bytes()) != "$-1\r\n" {
		t.Fatalf("got %q, want null bulk after expiry", c2.enc.Bytes())
	}
}

func TestDispatchSetNXMiss(t *testing.T) {
	c := newTestConnection(0)
	if err := c.dispatch(array(bulk("SET"), bulk("k"), bulk("v1"))); err != nil {
		t.Fatal(err)
	}
	c.enc.Reset()
	if err := c.dispatch(array(bulk("SET"), bulk("k"), bulk("v2"), bulk("NX"))); err != nil {
		t.Fatal(err)
	}
	if string(c.enc.Bytes()) != "$-1\r\n" {
		t.Fatalf("got %q, want null bulk on NX miss", c.enc.Bytes())
	}
	c.enc.Reset()
	c.dispatch(array(bulk("GET"), bulk("k")))
	if string(c.enc.Bytes()) != "$2\r\nv1\r\n" {
		t.Fatalf("got %q, want original value preserved", c.enc.Bytes())
	}
}

func TestDispatchSetNXAndXXIsSyntaxError(t *testing.T) {
	c := newTestConnection(0)
	err := c.dispatch(array(bulk("SET"), bulk("k"), bulk("v"), bulk("NX"), bulk("XX")))
	if err == nil {
		t.Fatal("expected a syntax error when NX and XX are both given")
	}
	if _, ok := err.(*ClientError); !ok {
		t.Fatalf("expected a *ClientError, got %T", err)
	}
}

func TestDispatchConfigGetDir(t *testing.T) {
	c := newTestConnection(0)
	if err := c.dispatch(array(bulk("CONFIG"), bulk("GET"), bulk("dir"))); err != nil {
		t.Fatal(err)
	}
	want := "*2\r\n$3\r\ndir\r\n$6\r\n./data\r\n"
	if string(c.enc.Bytes()) != want {
		t.Fatalf("got %q, want %q", c.enc.Bytes(), want)
	}
}

func TestDispatchConfigGetUnknownNameIsEmptyArray(t *testing.T) {
	c := newTestConnection(0)
	if err := c.dispatch(array(bulk("CONFIG"), bulk("GET"), bulk("maxmemory"))); err != nil {
		t.Fatal(err)
	}
	if string(c.enc.Bytes()) != "*0\r\n" {
		t.Fatalf("got %q", c.enc.Bytes())
	}
}

func TestDispatchUnknownCommand(t *testing.T) {
	c := newTestConnection(0)
	err := c.dispatch(array(bulk("NOPE")))
	if _, ok := err.(*ClientError); !ok {
		t.Fatalf("expected a *ClientError for an unknown command, got %v", err)
	}
}
