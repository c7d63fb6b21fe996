// Package asset detects, loads and saves variable containers and material
// files by content and file name.
package asset

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/joshuapare/reasset/internal/buf"
	"github.com/joshuapare/reasset/internal/mmfile"
	"github.com/joshuapare/reasset/internal/writer"
	"github.com/joshuapare/reasset/pkg/mdf"
	"github.com/joshuapare/reasset/pkg/types"
	"github.com/joshuapare/reasset/pkg/uvar"
)

// Kind identifies an asset format.
type Kind int

const (
	KindUnknown Kind = iota
	KindUVar
	KindMDF
)

func (k Kind) String() string {
	switch k {
	case KindUVar:
		return "uvar"
	case KindMDF:
		return "mdf"
	default:
		return "unknown"
	}
}

// Options configures Load, Decode and Save.
type Options struct {
	Limits types.Limits
	Logger *slog.Logger
	// Revision forces the material revision. Zero takes it from the file
	// name, then from plausibility checks.
	Revision int
}

func (o *Options) normalize() Options {
	var out Options
	if o != nil {
		out = *o
	}
	out.Limits = out.Limits.WithDefaults()
	if out.Logger == nil {
		out.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return out
}

// Asset is a decoded file of either kind.
type Asset struct {
	Kind Kind
	Path string
	UVar *uvar.Container
	MDF  *mdf.File
}

// Detect sniffs the format of data. path is only used to tell material
// files apart when the content is ambiguous.
func Detect(data []byte, path string) Kind {
	if m, ok := buf.PeekU32(data, 4); ok && m == uvar.Magic {
		return KindUVar
	}
	if m, ok := buf.PeekU32(data, 0); ok && m == mdf.Magic {
		return KindMDF
	}
	lower := strings.ToLower(path)
	switch {
	case strings.Contains(lower, ".user.") || strings.Contains(lower, ".uvar"):
		return KindUVar
	case strings.Contains(lower, ".mdf2."):
		return KindMDF
	}
	return KindUnknown
}

// ErrUnknownFormat is returned for data neither codec recognizes.
var ErrUnknownFormat = errors.New("asset: unknown format")

// Decode detects and decodes data.
func Decode(data []byte, path string, opts *Options) (*Asset, error) {
	o := opts.normalize()
	a := &Asset{Kind: Detect(data, path), Path: path}
	log := o.Logger.With("path", path, "kind", a.Kind)

	var err error
	switch a.Kind {
	case KindUVar:
		a.UVar, err = uvar.Decode(data, &uvar.Options{Limits: o.Limits, Logger: o.Logger})
	case KindMDF:
		rev, rerr := revision(data, path, o.Revision)
		if rerr != nil {
			return nil, rerr
		}
		log.Debug("material revision", "revision", rev)
		a.MDF, err = mdf.Decode(data, rev, &mdf.Options{Limits: o.Limits, Logger: o.Logger})
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
	if err != nil {
		return nil, err
	}
	log.Debug("asset decoded", "size", len(data))
	return a, nil
}

func revision(data []byte, path string, forced int) (int, error) {
	if forced > 0 {
		return forced, nil
	}
	if rev, ok := mdf.RevisionFromPath(path); ok {
		return rev, nil
	}
	if rev, ok := mdf.GuessRevision(data); ok {
		return rev, nil
	}
	return 0, fmt.Errorf("asset: cannot determine material revision of %q (expected .mdf2.<rev>)", path)
}

// Load maps the file at path and decodes it. The mapping is released
// before Load returns.
func Load(path string, opts *Options) (a *Asset, err error) {
	data, release, err := mmfile.Map(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if rerr := release(); rerr != nil && err == nil {
			err = rerr
		}
	}()
	return Decode(data, path, opts)
}

// Encode serializes a.
func (a *Asset) Encode(opts *Options) ([]byte, error) {
	o := opts.normalize()
	switch a.Kind {
	case KindUVar:
		if a.UVar == nil {
			return nil, errors.New("asset: no variable container")
		}
		return uvar.Encode(a.UVar, &uvar.Options{Limits: o.Limits, Logger: o.Logger})
	case KindMDF:
		if a.MDF == nil {
			return nil, errors.New("asset: no material file")
		}
		return mdf.Encode(a.MDF, &mdf.Options{Limits: o.Limits, Logger: o.Logger})
	}
	return nil, ErrUnknownFormat
}

// Save encodes a and replaces the file at path atomically.
func Save(a *Asset, path string, opts *Options) error {
	return saveTo(a, &writer.FileWriter{Path: path}, opts)
}

func saveTo(a *Asset, sink writer.Sink, opts *Options) error {
	data, err := a.Encode(opts)
	if err != nil {
		return err
	}
	return sink.WriteAsset(data)
}
