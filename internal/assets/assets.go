// Package assets embeds the static terminal page HL serves for a
// non-upgrade GET of Path (spec.md §4.5); other paths get 404 and other
// methods 405.
package assets

import _ "embed"

//go:embed terminal.html
var TerminalHTML []byte

// Path is the route the terminal page is served from.
const Path = "/"
