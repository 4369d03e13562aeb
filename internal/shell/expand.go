// Package shell implements spec.md §4.8's session shell interpreter: a
// small built-in dispatcher whose output always lands in the owning
// session's output ring, never on the shared process stdout.
package shell

import "reshell/internal/procstate"

func isIdentByte(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z') || (b >= '0' && b <= '9') || b == '_'
}

// ExpandVars walks input, substituting `$IDENT` (IDENT matching
// [A-Za-z0-9_]+) with its value from env, or nothing if the name isn't
// found. Non-dollar bytes are copied verbatim (spec.md §4.8).
func ExpandVars(input string, env *procstate.Environment) string {
	out := make([]byte, 0, len(input))
	i := 0
	for i < len(input) {
		if input[i] != '$' {
			out = append(out, input[i])
			i++
			continue
		}
		j := i + 1
		for j < len(input) && isIdentByte(input[j]) {
			j++
		}
		if j == i+1 {
			// lone '$' with no identifier following: copy verbatim
			out = append(out, input[i])
			i++
			continue
		}
		name := input[i+1 : j]
		if v, ok := env.Get(name); ok {
			out = append(out, v...)
		}
		i = j
	}
	return string(out)
}
