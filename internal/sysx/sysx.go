// Package sysx is the typed syscall surface the rest of reshell is built on.
// spec.md §4.1 describes a freestanding process exposing "a safe wrapper
// around ≈25 system calls", entered directly by register-level convention.
// That literal shape isn't reachable from Go: the runtime already owns
// thread creation, scheduling, and signal delivery. What's preserved here is
// the spirit of §4.1 — every syscall this program issues goes through one
// narrow, typed, explicitly-erroring package, and nothing reaches for a
// heap-allocating convenience API where a direct syscall will do.
//
// Process control (fork/execve/waitpid) is deliberately not wrapped here:
// its only spec.md caller is the local-prompt external-command path, which
// §1 names as an out-of-scope collaborator. A wrapper with no caller would
// be exactly the dead weight this codebase is trying not to carry.
package sysx

import (
	"runtime"
	"time"

	"golang.org/x/sys/unix"
)

// Errno mirrors the syscall surface's contract in spec.md §4.1: wrappers
// return a signed result where failure carries the underlying errno. Go's
// idiom is an error value, not a negative int, but the meaning is the same:
// callers must inspect and branch, and no panic crosses a syscall boundary.
type Errno = unix.Errno

// Signal is the signal-number type Tgkill and the signal-handling package
// pass around.
type Signal = unix.Signal

// Mmap maps size bytes of anonymous, private, read-write memory. This is
// the backing store for anything spec.md says should come from a mapped
// region rather than the allocator (§3, §9): session output rings, input
// buffers, and worker-slot scratch space.
func Mmap(size int) ([]byte, error) {
	return unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
}

// Munmap releases a region obtained from Mmap.
func Munmap(b []byte) error {
	return unix.Munmap(b)
}

// Open, Close, Read, Write, Access, Stat and Getdents wrap the byte-granular
// and filesystem-navigation syscalls §4.1 names. Open and Getdents back the
// ls built-in and prompt completion, Read and Write back httpd's fdConn;
// Access and Stat have no caller in this repository.

func Open(path string, flags int, mode uint32) (int, error) {
	return unix.Open(path, flags, mode)
}

func Close(fd int) error {
	return unix.Close(fd)
}

func Read(fd int, p []byte) (int, error) {
	return unix.Read(fd, p)
}

func Write(fd int, p []byte) (int, error) {
	return unix.Write(fd, p)
}

func Chdir(path string) error {
	return unix.Chdir(path)
}

func Getcwd() (string, error) {
	buf := make([]byte, 4096)
	n, err := unix.Getcwd(buf)
	if err != nil {
		return "", err
	}
	// unix.Getcwd on Linux returns the length including the trailing NUL.
	for n > 0 && buf[n-1] == 0 {
		n--
	}
	return string(buf[:n]), nil
}

func Access(path string, mode uint32) error {
	return unix.Access(path, mode)
}

func Stat(path string) (unix.Stat_t, error) {
	var st unix.Stat_t
	err := unix.Stat(path, &st)
	return st, err
}

// Getdents reads raw linux_dirent64 records from an open directory fd into
// buf, returning the number of bytes filled. internal/shell decodes the
// records per spec.md §4.8.
func Getdents(fd int, buf []byte) (int, error) {
	return unix.Getdents(fd, buf)
}

// Socket, Bind, Listen, Accept and SetReuseAddr wrap the listener's socket
// setup per spec.md §4.5.

func Socket() (int, error) {
	return unix.Socket(unix.AF_INET, unix.SOCK_STREAM, 0)
}

func SetReuseAddr(fd int) error {
	return unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
}

func Bind(fd int, port uint16) error {
	return unix.Bind(fd, &unix.SockaddrInet4{Port: int(port)})
}

func Listen(fd, backlog int) error {
	return unix.Listen(fd, backlog)
}

func Accept(fd int) (int, error) {
	nfd, _, err := unix.Accept(fd)
	return nfd, err
}

// Poll wraps poll(2) with a single fd and the 50ms timeout spec.md §5
// requires of every frame-loop suspension point, so shutdown is observed
// within that bound.
func Poll(fd int, events int16, timeoutMillis int) (int16, error) {
	fds := []unix.PollFd{{Fd: int32(fd), Events: events}}
	n, err := unix.Poll(fds, timeoutMillis)
	if n == 0 || err != nil {
		return 0, err
	}
	return fds[0].Revents, nil
}

// Nanosleep is the 50ms/100ms-grained sleep spec.md §4.1 names. time.Sleep
// is the idiomatic Go surface over the same underlying nanosleep(2) syscall
// (see DESIGN.md); wrapping it here keeps every blocking primitive behind
// one package boundary.
func Nanosleep(d time.Duration) {
	time.Sleep(d)
}

// Gettid returns the calling goroutine's kernel thread ID. Only meaningful
// after LockOSThread, since otherwise the goroutine may migrate between OS
// threads between the call and its use.
func Gettid() int {
	return unix.Gettid()
}

// LockOSThread pins the calling goroutine to its current OS thread for the
// rest of its lifetime — the Go-idiomatic substitute for "this function
// runs as its own kernel thread" (spec.md §4.3's clone_with_func contract).
func LockOSThread() {
	runtime.LockOSThread()
}

// Tgkill sends signal sig to thread tid within thread group tgid. Used only
// at shutdown (spec.md §4.1, §5 cleanup_threads) to signal each registered
// worker thread.
func Tgkill(tgid, tid int, sig unix.Signal) error {
	return unix.Tgkill(tgid, tid, sig)
}

// Getpid returns the process's thread-group ID, the tgid Tgkill needs.
func Getpid() int {
	return unix.Getpid()
}

// Exit terminates the process immediately with the given status, the way
// spec.md §4.2's trampoline invokes exit() with main's return code.
func Exit(code int) {
	unix.Exit(code)
}
