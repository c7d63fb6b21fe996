package mdf

import (
	"io"
	"log/slog"

	"github.com/joshuapare/reasset/pkg/types"
)

// Options configures Decode and Encode.
type Options struct {
	// Limits bounds encode buffer growth (MaxBufferSize). Other fields are
	// unused by this package.
	Limits types.Limits

	// Logger receives per-material debug traces.
	// Default: discard
	Logger *slog.Logger
}

// DefaultOptions returns the options used when nil is passed.
func DefaultOptions() *Options {
	return &Options{Limits: types.DefaultLimits()}
}

func (o *Options) normalize() *Options {
	out := DefaultOptions()
	if o != nil {
		*out = *o
	}
	out.Limits = out.Limits.WithDefaults()
	if out.Logger == nil {
		out.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return out
}
