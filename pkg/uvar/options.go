package uvar

import (
	"io"
	"log/slog"

	"github.com/joshuapare/reasset/pkg/types"
)

// Options configures Decode and Encode.
type Options struct {
	// Limits bounds variable counts, encode buffer growth and embed nesting.
	// Zero fields take their defaults.
	Limits types.Limits

	// Logger receives debug traces of decode and encode phases.
	// Default: discard
	Logger *slog.Logger
}

// DefaultOptions returns the options used when nil is passed.
func DefaultOptions() *Options {
	return &Options{Limits: types.DefaultLimits()}
}

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func (o *Options) normalize() *Options {
	out := DefaultOptions()
	if o != nil {
		*out = *o
	}
	out.Limits = out.Limits.WithDefaults()
	if out.Logger == nil {
		out.Logger = discard
	}
	return out
}
