// Package cli dispatches the process's subcommands.
package cli

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"redisd/internal/bootstrap"
	"redisd/internal/config"
	"redisd/internal/keyspace"
	"redisd/internal/logger"
	"redisd/internal/rdb"
	"redisd/internal/server"
)

// Execute dispatches subcommands and returns a process exit code.
func Execute(args []string) int {
	log.SetFlags(log.LstdFlags | log.Lmsgprefix)
	log.SetPrefix("[redisd] ")

	if len(args) == 0 {
		return runServe(nil)
	}

	switch args[0] {
	case "serve":
		return runServe(args[1:])
	case "dump-rdb":
		return runDumpRDB(args[1:])
	case "help", "-h", "--help":
		printUsage()
		return 0
	case "version", "--version", "-v":
		fmt.Println("redisd 0.1.0-dev")
		return 0
	default:
		// A bare flag like --port without a subcommand is treated as an
		// implicit "serve".
		if len(args[0]) > 0 && args[0][0] == '-' {
			return runServe(args)
		}
		log.Printf("unknown subcommand: %s", args[0])
		printUsage()
		return 1
	}
}

func printUsage() {
	fmt.Println(`redisd - a small RESP/RDB compatible key-value server

Usage:
  redisd serve [flags]        start the event loop (default if no subcommand given)
  redisd dump-rdb <path>      decode a snapshot file and print its records
  redisd version              print the version and exit
  redisd help                 print this message

Flags (serve):
  --dir <path>                      default /tmp/redis-data
  --dbfilename <name>                default dump.rdb
  --host <addr>                     default 127.0.0.1
  --port <u16>                      default 6379
  --snapshot-interval-seconds <u64>  default 60
  --config <path>                   optional YAML overlay
  --log-dir <path>                  default: console only
  --log-level <debug|info|warn|error>  default info`)
}

func parseServeFlags(args []string) (*config.Config, error) {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(os.Stdout)

	var cfg config.Config
	var configPath string
	var port int

	fs.StringVar(&configPath, "config", "", "optional YAML configuration overlay")
	fs.StringVar(&cfg.Dir, "dir", "", "snapshot directory")
	fs.StringVar(&cfg.DBFilename, "dbfilename", "", "snapshot file name")
	fs.StringVar(&cfg.Host, "host", "", "listen host")
	fs.IntVar(&port, "port", 0, "listen port")
	fs.Uint64Var(&cfg.SnapshotIntervalSeconds, "snapshot-interval-seconds", 0, "snapshot interval in seconds")
	fs.StringVar(&cfg.LogDir, "log-dir", "", "log file directory (console only if unset)")
	fs.StringVar(&cfg.LogLevel, "log-level", "", "log level: debug, info, warn, error")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if configPath != "" {
		if err := config.LoadYAMLOverlay(configPath, &cfg); err != nil {
			return nil, err
		}
		// Apply the command-line flags again so they win over the file.
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
	}
	if port != 0 {
		cfg.Port = uint16(port)
	}
	cfg.ApplyDefaults()
	return &cfg, nil
}

func runServe(args []string) int {
	cfg, err := parseServeFlags(args)
	if err == flag.ErrHelp {
		return 0
	}
	if err != nil {
		log.Printf("failed to parse flags: %v", err)
		return 1
	}
	if err := cfg.Validate(); err != nil {
		log.Printf("%v", err)
		return 2
	}

	level, _ := logger.ParseLevel(cfg.LogLevel)
	if err := logger.Init(cfg.LogDir, level, "redisd"); err != nil {
		log.Printf("failed to initialize logging: %v", err)
		return 1
	}
	defer logger.Close()

	logger.Info("starting with %s", cfg.Summary())

	store := keyspace.New()
	if err := bootstrap.Load(cfg, store); err != nil {
		logger.Error("snapshot load failed: %v", err)
		return 1
	}

	srv, err := server.New(cfg, store)
	if err != nil {
		logger.Error("failed to start server: %v", err)
		return 1
	}
	defer srv.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		logger.Error("server loop exited with error: %v", err)
		return 1
	}
	return 0
}

func runDumpRDB(args []string) int {
	if len(args) != 1 {
		fmt.Println("usage: redisd dump-rdb <path>")
		return 2
	}
	f, err := os.Open(args[0])
	if err != nil {
		log.Printf("failed to open %s: %v", args[0], err)
		return 1
	}
	defer f.Close()

	dec := rdb.NewDecoder(f)
	if err := dec.ParseHeader(); err != nil {
		log.Printf("failed to parse header: %v", err)
		return 1
	}

	count := 0
	for {
		entry, err := dec.Next()
		if err != nil {
			break
		}
		fmt.Printf("db=%d key=%q value=%q has_expire=%v expire_ms=%d\n",
			entry.DB, entry.Key, entry.Value, entry.HasExpire, entry.ExpireMs)
		count++
	}
	fmt.Printf("%d records\n", count)
	return 0
}
