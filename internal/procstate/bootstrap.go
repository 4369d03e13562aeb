package procstate

import "os"

// DefaultPath is the compiled-in fallback used when the process's own
// envp carries no PATH entry (spec.md §4.2).
const DefaultPath = "/usr/local/sbin:/usr/local/bin:/usr/sbin:/usr/bin:/sbin:/bin"

// DefaultHome and DefaultUser seed HOME/USER when envp doesn't supply them.
const (
	DefaultHome = "/root"
	DefaultUser = "reshell"
)

// Seed walks the process's inherited environment (spec.md §4.2: "walk envp
// to find a PATH= entry") and populates the table with PATH, HOME, and
// USER, falling back to compiled-in defaults for any that are absent. It
// must run before any worker is spawned — after this call the table has
// exactly one reader-only steady state until `export` mutates it.
func (e *Environment) Seed() {
	path, ok := lookupOSEnv("PATH")
	if !ok || path == "" {
		path = DefaultPath
	}
	e.Set("PATH", path)

	if home, ok := lookupOSEnv("HOME"); ok && home != "" {
		e.Set("HOME", home)
	} else {
		e.Set("HOME", DefaultHome)
	}

	if user, ok := lookupOSEnv("USER"); ok && user != "" {
		e.Set("USER", user)
	} else {
		e.Set("USER", DefaultUser)
	}
}

func lookupOSEnv(name string) (string, bool) {
	return os.LookupEnv(name)
}
