// Package display holds console presentation helpers: the startup banner
// and human-readable number formatting.
package display

import (
	"fmt"
	"io"

	"github.com/backmassage/labplot/internal/term"
)

// PrintBanner prints the ASCII art banner; uses Magenta if colors are enabled.
func PrintBanner(w io.Writer, version string) {
	if term.Enabled() {
		fmt.Fprint(w, term.Magenta)
	}
	fmt.Fprint(w, ` _       _           _       _
| | __ _| |__  _ __ | | ___ | |_
| |/ _`+"`"+` | '_ \| '_ \| |/ _ \| __|
| | (_| | |_) | |_) | | (_) | |_
|_|\__,_|_.__/| .__/|_|\___/ \__|
              |_|`)
	fmt.Fprintln(w, term.NC+"  v"+version)
}
