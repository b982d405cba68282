package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/nzioki/gencgc/heap"
)

var (
	// Global flags
	verbose bool
	quiet   bool
	jsonOut bool

	// Heap flags
	dynamicBytes   int
	staticBytes    int
	regionPages    int
	largePages     int
	noInhibitCheck bool
)

var rootCmd = &cobra.Command{
	Use:   "heapctl",
	Short: "Exercise and inspect the generational heap allocator",
	Long: `heapctl spins up a heap, drives synthetic allocation workloads against it
and prints the resulting page table, scan-start encodings and allocation
profiles. Every run verifies the page-table invariants before reporting.`,
	Version: "0.1.0",
}

func init() {
	defaults := heap.DefaultConfig()

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output and debug logging")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")

	rootCmd.PersistentFlags().IntVar(&dynamicBytes, "dynamic-bytes", defaults.DynamicSpaceBytes, "Dynamic space size in bytes")
	rootCmd.PersistentFlags().IntVar(&staticBytes, "static-bytes", defaults.StaticSpaceBytes, "Static space size in bytes")
	rootCmd.PersistentFlags().IntVar(&regionPages, "region-pages", defaults.RegionPages, "Minimum pages per allocation region")
	rootCmd.PersistentFlags().IntVar(&largePages, "large-pages", defaults.LargeObjectPages, "Pages from which an object gets its own block")
	rootCmd.PersistentFlags().BoolVar(&noInhibitCheck, "no-inhibit-check", false, "Allow code allocation with GC enabled")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newLogger returns the stderr logger selected by the global flags.
func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// newHeap builds a heap from the heap flags.
func newHeap() (*heap.Heap, error) {
	cfg := heap.DefaultConfig()
	cfg.DynamicSpaceBytes = dynamicBytes
	cfg.StaticSpaceBytes = staticBytes
	cfg.RegionPages = regionPages
	cfg.LargeObjectPages = largePages
	cfg.RequireGCInhibit = !noInhibitCheck
	cfg.Logger = newLogger()

	h, err := heap.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create heap: %w", err)
	}
	printVerbose("Heap %s: %d pages\n", h.ID(), h.PageCount())
	return h, nil
}

// Helper functions for output

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...any) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...any) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
