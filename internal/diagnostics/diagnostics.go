// Package diagnostics holds the process-wide warning stream: a
// mutex-guarded writer that recoverable errors (chunking failures,
// structural-only-capture warnings) are reported to, distinct from the
// primary result stream.
package diagnostics

import (
	"fmt"
	"io"
	"os"
	"sync"
)

var mu sync.Mutex
var out io.Writer = os.Stderr

// SetOutput redirects the warning stream. Intended for tests and for a CLI
// that wants to route warnings somewhere other than stderr.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	out = w
}

// Warnf writes a formatted warning line to the current output.
func Warnf(format string, args ...interface{}) {
	mu.Lock()
	defer mu.Unlock()
	fmt.Fprintf(out, "warning: "+format+"\n", args...)
}
