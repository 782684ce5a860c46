// Package parallel splits index ranges across worker goroutines for the
// tensor buffer engine's bulk copies.
package parallel

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Config controls parallel execution behavior.
type Config struct {
	Enabled      bool // Whether parallel execution is enabled.
	NumWorkers   int  // Number of worker goroutines to use.
	MinChunkSize int  // Minimum items per goroutine to avoid overhead.
}

// DefaultConfig returns sensible defaults based on CPU count.
func DefaultConfig() Config {
	n := runtime.NumCPU()
	return Config{
		Enabled:      n > 1,
		NumWorkers:   n,
		MinChunkSize: 64,
	}
}

// sequential reports whether n items should be processed on the caller's
// goroutine.
func (cfg Config) sequential(n int) bool {
	return !cfg.Enabled || cfg.NumWorkers < 2 || n < cfg.MinChunkSize
}

// chunkSize returns the number of items given to each goroutine.
func (cfg Config) chunkSize(n int) int {
	return max((n+cfg.NumWorkers-1)/cfg.NumWorkers, cfg.MinChunkSize, 1)
}

// For runs f(i) for every i in [0, n), splitting the range into chunks that
// run on separate goroutines unless cfg or n call for the caller's goroutine.
// Each index is visited exactly once.
func For(n int, f func(i int), cfg Config) {
	_ = ForErr(n, func(i int) error {
		f(i)
		return nil
	}, cfg)
}

// ForErr executes f(i) for i in [0, n) in chunks and returns the first error.
// Once a chunk fails, the remaining items of that chunk are skipped; other
// chunks run to completion.
func ForErr(n int, f func(i int) error, cfg Config) error {
	if cfg.sequential(n) {
		for i := 0; i < n; i++ {
			if err := f(i); err != nil {
				return err
			}
		}
		return nil
	}

	var g errgroup.Group
	chunk := cfg.chunkSize(n)
	for start := 0; start < n; start += chunk {
		s, e := start, min(start+chunk, n)
		g.Go(func() error {
			for i := s; i < e; i++ {
				if err := f(i); err != nil {
					return err
				}
			}
			return nil
		})
	}
	return g.Wait()
}
