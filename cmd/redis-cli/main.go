// Command redis-cli is a minimal operator tool for talking to redisd:
// either one shot ("redis-cli -h 127.0.0.1 -p 6379 get foo") or an
// interactive line-at-a-time REPL when no command arguments are given.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"time"

	"redisd/internal/resp"
)

const dialTimeout = 5 * time.Second

func main() {
	host := flag.String("h", "127.0.0.1", "server host")
	port := flag.Int("p", 6379, "server port")
	flag.Parse()

	addr := fmt.Sprintf("%s:%d", *host, *port)
	conn, err := net.DialTimeout("tcp", addr, dialTimeout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not connect to redisd at %s: %v\n", addr, err)
		os.Exit(1)
	}
	defer conn.Close()
	if tc, ok := conn.(*net.TCPConn); ok {
		_ = tc.SetKeepAlive(true)
		_ = tc.SetKeepAlivePeriod(30 * time.Second)
	}

	args := flag.Args()
	if len(args) > 0 {
		reply, err := roundTrip(conn, args)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
		fmt.Println(render(reply))
		return
	}

	runRepl(conn, addr)
}

func runRepl(conn net.Conn, addr string) {
	fmt.Printf("connected to %s\n", addr)
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Printf("%s> ", addr)
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			return
		}
		reply, err := roundTrip(conn, strings.Fields(line))
		if err != nil {
			fmt.Println(err)
			return
		}
		fmt.Println(render(reply))
	}
}

// roundTrip encodes args as a RESP array of bulk strings, sends it, and
// reads back exactly one reply term.
func roundTrip(conn net.Conn, args []string) (resp.Term, error) {
	enc := resp.NewEncoder(nil)
	enc.ArrayHeader(len(args))
	for _, a := range args {
		enc.BulkString([]byte(a))
	}
	if _, err := conn.Write(enc.Bytes()); err != nil {
		return resp.Term{}, fmt.Errorf("write: %w", err)
	}
	return readReply(conn)
}

// readReply reads from conn, growing the buffer as needed, until a single
// complete top-level term can be parsed.
func readReply(conn net.Conn) (resp.Term, error) {
	buf := make([]byte, 0, 4096)
	tmp := make([]byte, 4096)
	for {
		n, err := conn.Read(tmp)
		if n > 0 {
			buf = append(buf, tmp[:n]...)
			terms, _, perr := resp.Parse(buf)
			if perr == nil && len(terms) > 0 {
				return terms[0], nil
			}
		}
		if err != nil {
			if err == io.EOF {
				return resp.Term{}, fmt.Errorf("server closed the connection")
			}
			return resp.Term{}, fmt.Errorf("read: %w", err)
		}
	}
}

func render(t resp.Term) string {
	switch t.Kind {
	case resp.SimpleString:
		return string(t.Bytes)
	case resp.SimpleError:
		return "(error) " + string(t.Bytes)
	case resp.BulkString:
		return fmt.Sprintf("%q", t.Bytes)
	case resp.NullBulk:
		return "(nil)"
	case resp.Array:
		var sb strings.Builder
		for i, e := range t.Elems {
			fmt.Fprintf(&sb, "%d) %s\n", i+1, render(e))
		}
		return strings.TrimRight(sb.String(), "\n")
	default:
		return "(unknown reply)"
	}
}
