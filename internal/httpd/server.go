// Package httpd implements spec.md §4.5's HTTP listener (HL): a raw
// accept loop over a socket built from internal/sysx, tolerant request
// parsing, and routing to either the static terminal asset or the
// WebSocket upgrade path.
package httpd

import (
	"log"

	"reshell/internal/procstate"
	"reshell/internal/session"
	"reshell/internal/shell"
	"reshell/internal/sysx"
	"reshell/internal/workerpool"
)

// AcceptPollMillis is the poll timeout HL uses before re-checking the
// shutdown flag, the same 50ms bound §5 requires of every suspension point.
const AcceptPollMillis = 50

// RequestReadLimit is the largest request HL reads before parsing (spec.md
// §4.5: "reads up to 4 KiB of request").
const RequestReadLimit = 4096

// Server owns the listening socket and the shared state every connection
// worker needs.
type Server struct {
	Port     uint16
	Env      *procstate.Environment
	Shutdown *procstate.ShutdownFlag
	Workers  *workerpool.Pool
	Registry *procstate.ThreadRegistry
	Sessions *session.Pool
	Logger   *log.Logger

	listenFD int
}

func (s *Server) logf(format string, args ...any) {
	if s.Logger != nil {
		s.Logger.Printf(format, args...)
	}
}

// ListenAndServe creates the listening socket and runs the accept loop
// until the shutdown flag is set. It never returns an error once the
// socket is up; per-connection failures are logged and skipped.
func (s *Server) ListenAndServe() error {
	fd, err := sysx.Socket()
	if err != nil {
		return err
	}
	s.listenFD = fd

	if err := sysx.SetReuseAddr(fd); err != nil {
		return err
	}
	if err := sysx.Bind(fd, s.Port); err != nil {
		sysx.Close(fd)
		return err
	}
	if err := sysx.Listen(fd, 10); err != nil {
		sysx.Close(fd)
		return err
	}

	s.logf("reshelld: listening on port %d", s.Port)

	for {
		if s.Shutdown.ShouldShutdown() {
			sysx.Close(fd)
			return nil
		}

		revents, err := sysx.Poll(fd, 0x0001 /* POLLIN */, AcceptPollMillis)
		if err != nil || revents == 0 {
			continue
		}

		clientFD, err := sysx.Accept(fd)
		if err != nil {
			continue
		}

		s.dispatch(clientFD)
	}
}

// dispatch allocates a worker slot for clientFD and spawns the connection
// worker. A full pool closes the socket and logs one line, per spec.md §7's
// resource-exhaustion policy.
func (s *Server) dispatch(clientFD int) {
	slot, ok := s.Workers.Allocate(clientFD)
	if !ok {
		s.logf("reshelld: no free worker slot, dropping connection")
		sysx.Close(clientFD)
		return
	}

	workerpool.Spawn(s.Workers, slot, s.Registry, func(slot *workerpool.Slot) {
		w := &connWorker{
			fd:       slot.FD(),
			shutdown: s.Shutdown,
			sessions: s.Sessions,
			interp: &shell.Interpreter{
				Env:            s.Env,
				Workers:        s.Workers,
				WorkerCapacity: workerpool.Capacity,
			},
			logger: s.Logger,
		}
		w.serve()
	})
}
