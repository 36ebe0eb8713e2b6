package cli

import (
	"bytes"
	"io"
	"log"
	"os"
)

// levelFilter drops [DEBUG] lines unless verbose output was requested.
type levelFilter struct {
	out     io.Writer
	verbose bool
}

func (f *levelFilter) Write(p []byte) (int, error) {
	if !f.verbose && bytes.Contains(p, []byte("[DEBUG]")) {
		return len(p), nil
	}
	return f.out.Write(p)
}

func setupLogging(verbose bool) {
	flags := log.LstdFlags
	if verbose {
		flags |= log.Lmicroseconds
	}
	log.SetFlags(flags)
	log.SetOutput(&levelFilter{out: os.Stderr, verbose: verbose})
}
