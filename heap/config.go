package heap

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/nzioki/gencgc/heap/alloc"
	"github.com/nzioki/gencgc/heap/pagetable"
	"github.com/nzioki/gencgc/internal/layout"
	"github.com/nzioki/gencgc/internal/vmem"
)

// ErrInvalidConfig wraps every configuration validation failure.
var ErrInvalidConfig = errors.New("heap: invalid config")

// Default sizes.
const (
	DefaultDynamicSpaceBytes = 64 << 20
	DefaultStaticSpaceBytes  = 1 << 20
)

// Config configures a Heap.
type Config struct {
	DynamicSpaceBytes int  // Size of the paged dynamic space. Page multiple.
	StaticSpaceBytes  int  // Size of the static space. Page multiple.
	RequireGCInhibit  bool // Code allocation with GC enabled is fatal.

	// ScanStartMax is the clamp sentinel of the scan-start codec. Must be odd.
	ScanStartMax uint32

	LargeObjectPages int // Allocations this many pages or larger get their own block.
	RegionPages      int // Minimum pages claimed for a new region.

	// Provider maps memory. Default: the OS provider.
	Provider vmem.Provider
	// Logger receives diagnostics. Default: discard.
	Logger *slog.Logger
}

// DefaultConfig returns the configuration used when no options are given.
func DefaultConfig() Config {
	return Config{
		DynamicSpaceBytes: DefaultDynamicSpaceBytes,
		StaticSpaceBytes:  DefaultStaticSpaceBytes,
		RequireGCInhibit:  true,
		ScanStartMax:      pagetable.DefaultScanStartMax,
		LargeObjectPages:  alloc.DefaultLargeObjectPages,
		RegionPages:       alloc.DefaultRegionPages,
	}
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	switch {
	case c.DynamicSpaceBytes <= 0 || c.DynamicSpaceBytes%layout.PageBytes != 0:
		return fmt.Errorf("%w: dynamic space of %d bytes is not a positive page multiple",
			ErrInvalidConfig, c.DynamicSpaceBytes)
	case c.StaticSpaceBytes <= 0 || c.StaticSpaceBytes%layout.PageBytes != 0:
		return fmt.Errorf("%w: static space of %d bytes is not a positive page multiple",
			ErrInvalidConfig, c.StaticSpaceBytes)
	case c.ScanStartMax&1 == 0 || c.ScanStartMax < 3:
		return fmt.Errorf("%w: scan-start max %#x must be odd and at least 3",
			ErrInvalidConfig, c.ScanStartMax)
	case c.LargeObjectPages < 1:
		return fmt.Errorf("%w: large object pages %d", ErrInvalidConfig, c.LargeObjectPages)
	case c.RegionPages < 1:
		return fmt.Errorf("%w: region pages %d", ErrInvalidConfig, c.RegionPages)
	}
	return nil
}

// Pages returns the number of dynamic-space pages.
func (c Config) Pages() int { return c.DynamicSpaceBytes / layout.PageBytes }
