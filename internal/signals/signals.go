// Package signals installs the process's signal handlers: spec.md §4.4
// wants SIGINT/SIGTERM to set the shutdown flag and SIGPIPE ignored so a
// write to a closed peer surfaces as EPIPE instead of killing the process.
//
// §4.4 frames this around a raw rt_sigaction handler that must be
// async-signal-safe because it runs on an arbitrary signal stack with the
// rest of the runtime frozen mid-instruction. Go's os/signal delivers
// signals to a dedicated goroutine instead of running arbitrary code on the
// interrupted stack, so the safety argument is moot — but the handler body
// this package runs is still exactly what §4.4 asks for: a single atomic
// store and nothing else.
package signals

import (
	"os"
	"os/signal"

	"golang.org/x/sys/unix"

	"reshell/internal/procstate"
)

// Handler owns the signal channel installed by Install. Call Stop to
// release it; cmd/reshelld defers Stop until main returns.
type Handler struct {
	ch chan os.Signal
}

// Install registers SIGINT/SIGTERM to set flag and ignores SIGPIPE. It
// returns no error: the os/signal registration calls it makes do not
// report failure.
func Install(flag *procstate.ShutdownFlag) *Handler {
	signal.Ignore(unix.SIGPIPE)

	ch := make(chan os.Signal, 2)
	signal.Notify(ch, os.Interrupt, unix.SIGTERM)

	h := &Handler{ch: ch}
	go func() {
		for range ch {
			flag.Request()
		}
	}()
	return h
}

// Stop stops signal delivery to this handler.
func (h *Handler) Stop() {
	signal.Stop(h.ch)
}
