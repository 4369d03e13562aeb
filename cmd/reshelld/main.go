// Command reshelld is the process entry point: it brings up process-wide
// state, the signal handlers, the HTTP/WebSocket listener, and the local
// interactive prompt loop, in the order spec.md §4.2 describes.
package main

import (
	"log"
	"os"
	"strconv"

	"reshell/internal/httpd"
	"reshell/internal/procstate"
	"reshell/internal/prompt"
	"reshell/internal/session"
	"reshell/internal/shell"
	"reshell/internal/signals"
	"reshell/internal/workerpool"
)

// DefaultPort is used when argv[1] is absent or not a parseable, nonzero
// 16-bit unsigned integer (spec.md §6).
const DefaultPort = 8000

func main() {
	logger := log.New(os.Stderr, "", log.LstdFlags)

	if f, err := os.OpenFile("reshelld.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644); err == nil {
		logger.SetOutput(f)
	}

	env, err := procstate.NewEnvironment()
	if err != nil {
		logger.Fatalf("reshelld: environment table: %v", err)
	}
	env.Seed()

	registry := procstate.NewThreadRegistry()
	shutdown := &procstate.ShutdownFlag{}

	handler := signals.Install(shutdown)
	defer handler.Stop()

	workers, err := workerpool.New()
	if err != nil {
		logger.Fatalf("reshelld: worker pool: %v", err)
	}
	sessions, err := session.New()
	if err != nil {
		logger.Fatalf("reshelld: session pool: %v", err)
	}

	server := &httpd.Server{
		Port:     port(os.Args),
		Env:      env,
		Shutdown: shutdown,
		Workers:  workers,
		Registry: registry,
		Sessions: sessions,
		Logger:   logger,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil {
			logger.Printf("reshelld: listener exited: %v", err)
		}
	}()

	loop := &prompt.Loop{
		Env:      env,
		Shutdown: shutdown,
		Interp: &shell.Interpreter{
			Env:            env,
			Workers:        workers,
			WorkerCapacity: workerpool.Capacity,
		},
		In:   os.Stdin,
		Out:  os.Stdout,
		InFD: int(os.Stdin.Fd()),
	}
	loop.Run()

	shutdown.Request()
	registry.Cleanup(9 /* SIGKILL */)
}

// port parses argv[1] as an unsigned 16-bit integer greater than 0,
// falling back to DefaultPort otherwise (spec.md §6).
func port(argv []string) uint16 {
	if len(argv) < 2 {
		return DefaultPort
	}
	n, err := strconv.ParseUint(argv[1], 10, 16)
	if err != nil || n == 0 {
		return DefaultPort
	}
	return uint16(n)
}
