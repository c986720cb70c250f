package config

import (
	"fmt"
	"os"
)

// Exitf reports a fatal startup error on stderr and exits with code 1.
// Only binary entry points call this; library code returns errors instead.
func Exitf(format string, args ...any) {
	fmt.Fprintln(os.Stderr, fmt.Sprintf(format, args...))
	os.Exit(1)
}
