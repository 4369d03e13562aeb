package shell

import (
	"bytes"
	"fmt"

	"reshell/internal/procstate"
	"reshell/internal/sysx"
)

// ThreadsReporter is the subset of the worker pool the `threads` built-in
// needs: how many slots are active, out of a fixed total.
type ThreadsReporter interface {
	ActiveCount() int
}

// Interpreter dispatches built-in commands and expands environment
// variables, per spec.md §4.8. All output is written to the Writer passed
// to Execute — never to the process's own stdout.
type Interpreter struct {
	Env     *procstate.Environment
	Workers ThreadsReporter
	// WorkerCapacity is the "T" in "Active threads: A / T".
	WorkerCapacity int
}

// Execute parses one command line, dispatches it, and writes all output to
// out. It returns true if the session should close (the `exit` built-in).
// Input is stripped of trailing CR/LF; empty lines are skipped.
func (in *Interpreter) Execute(line string, out writer) bool {
	line = trimCRLF(line)
	if line == "" {
		return false
	}

	prog, args := splitProgramArgs(line)

	switch prog {
	case "pwd":
		in.builtinPwd(out)
	case "cd":
		in.builtinCd(args, out)
	case "ls":
		in.builtinLs(args, out)
	case "echo":
		in.builtinEcho(args, out)
	case "export":
		in.builtinExport(args, out)
	case "env":
		in.builtinExport("", out)
	case "threads":
		in.builtinThreads(out)
	case "exit":
		fmt.Fprint(out, "Session closed\n")
		return true
	default:
		fmt.Fprint(out, "External commands not yet supported in session mode\n")
	}
	return false
}

// writer is the minimal sink built-ins write to — satisfied by
// *session.Session via a small adapter in the httpd package, and by
// *bytes.Buffer in tests.
type writer interface {
	Write(p []byte) (int, error)
}

func trimCRLF(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\r' || s[len(s)-1] == '\n') {
		s = s[:len(s)-1]
	}
	return s
}

func splitProgramArgs(line string) (prog, args string) {
	idx := bytes.IndexByte([]byte(line), ' ')
	if idx < 0 {
		return line, ""
	}
	return line[:idx], line[idx+1:]
}

func (in *Interpreter) builtinPwd(out writer) {
	cwd, err := sysx.Getcwd()
	if err != nil {
		fmt.Fprintf(out, "pwd: %v\n", err)
		return
	}
	fmt.Fprintf(out, "%s\n", cwd)
}

func (in *Interpreter) builtinCd(args string, out writer) {
	path := ExpandVars(args, in.Env)
	if path == "" {
		if home, ok := in.Env.Get("HOME"); ok && home != "" {
			path = home
		} else {
			path = "/"
		}
	}
	if err := sysx.Chdir(path); err != nil {
		fmt.Fprintf(out, "cd: %s: No such directory\n", path)
	}
}

func (in *Interpreter) builtinLs(args string, out writer) {
	path := ExpandVars(args, in.Env)
	if path == "" {
		path = "."
	}

	fd, err := sysx.Open(path, 0 /* O_RDONLY */, 0)
	if err != nil {
		fmt.Fprintf(out, "ls: %s: No such directory\n", path)
		return
	}
	defer sysx.Close(fd)

	var all []string
	buf := make([]byte, 4096)
	for {
		n, err := sysx.Getdents(fd, buf)
		if err != nil || n <= 0 {
			break
		}
		for _, name := range ParseDirents(buf[:n]) {
			if name == "." || name == ".." {
				continue
			}
			if len(all) < 64 {
				all = append(all, name)
			}
		}
	}

	BubbleSort(all)
	fmt.Fprintf(out, "%s\n", join(all, "  "))
}

func join(items []string, sep string) string {
	var b bytes.Buffer
	for i, it := range items {
		if i > 0 {
			b.WriteString(sep)
		}
		b.WriteString(it)
	}
	return b.String()
}

func (in *Interpreter) builtinEcho(args string, out writer) {
	fmt.Fprintf(out, "%s\n", ExpandVars(args, in.Env))
}

func (in *Interpreter) builtinExport(args string, out writer) {
	if args == "" {
		in.Env.Each(func(name, value string) {
			fmt.Fprintf(out, "%s=%s\n", name, value)
		})
		return
	}

	idx := bytes.IndexByte([]byte(args), '=')
	if idx < 0 {
		return
	}
	name, value := args[:idx], args[idx+1:]
	in.Env.Set(name, value)
}

func (in *Interpreter) builtinThreads(out writer) {
	active := 0
	if in.Workers != nil {
		active = in.Workers.ActiveCount()
	}
	fmt.Fprintf(out, "Active threads: %d / %d\n", active, in.WorkerCapacity)
}
