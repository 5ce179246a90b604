// Package logging constructs the hclog loggers used across postersort.
package logging

import (
	"io"
	"os"

	"github.com/hashicorp/go-hclog"
)

// Options selects logger verbosity and destination.
type Options struct {
	Verbose bool
	Quiet   bool
	// Output defaults to stderr.
	Output io.Writer
	// JSON switches to machine-readable output.
	JSON bool
}

// Level returns the hclog level implied by the options. Quiet wins over Verbose.
func (o Options) Level() hclog.Level {
	switch {
	case o.Quiet:
		return hclog.Error
	case o.Verbose:
		return hclog.Debug
	default:
		return hclog.Info
	}
}

// New returns the root "postersort" logger.
func New(opts Options) hclog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:       "postersort",
		Output:     out,
		Level:      opts.Level(),
		JSONFormat: opts.JSON,
	})
}
