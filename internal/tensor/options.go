package tensor

import (
	"log/slog"
	"sync/atomic"

	"github.com/born-ml/tensorbuf/internal/parallel"
)

// Options controls how host values are converted to and from tensors.
type Options struct {
	Parallel parallel.Config // Worker configuration for per-row copies.
	Pad      bool            // Zero-fill short rows when densifying ragged input.
	Copy     bool            // Always copy into an engine-owned buffer, never borrow.
	Jagged   bool            // Extract rank >= 2 tensors as nested slices.
}

// Option configures Options.
type Option func(*Options)

// DefaultOptions returns the conversion defaults: parallel copies sized to
// the machine, ragged input rejected, zero-copy borrowing where possible and
// rectangular extraction.
func DefaultOptions() Options {
	return Options{Parallel: parallel.DefaultConfig()}
}

func buildOptions(opts []Option) Options {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithParallel sets the worker configuration used when densifying jagged input.
func WithParallel(cfg parallel.Config) Option {
	return func(o *Options) { o.Parallel = cfg }
}

// WithPadding enables or disables zero-fill of ragged rows.
func WithPadding(pad bool) Option {
	return func(o *Options) { o.Pad = pad }
}

// WithCopy forces an engine-owned copy even when the input could be borrowed.
func WithCopy() Option {
	return func(o *Options) { o.Copy = true }
}

// WithJagged makes extraction return nested slices instead of arrays.
func WithJagged() Option {
	return func(o *Options) { o.Jagged = true }
}

var logger atomic.Pointer[slog.Logger]

// SetLogger sets the logger used for allocation and release events.
// A nil logger restores slog.Default().
func SetLogger(l *slog.Logger) {
	logger.Store(l)
}

// Logger returns the logger set by SetLogger, or slog.Default().
func Logger() *slog.Logger {
	if l := logger.Load(); l != nil {
		return l
	}
	return slog.Default()
}

// Stats is a snapshot of engine-wide buffer accounting.
type Stats struct {
	LiveTensors int64 // Tensors constructed and not yet released.
	OwnedBytes  int64 // Bytes held by live engine-owned buffers.
}

var (
	liveTensors atomic.Int64
	ownedBytes  atomic.Int64
)

// ReadStats returns the current buffer accounting.
func ReadStats() Stats {
	return Stats{
		LiveTensors: liveTensors.Load(),
		OwnedBytes:  ownedBytes.Load(),
	}
}
