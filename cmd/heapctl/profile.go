package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nzioki/gencgc/heap/allocprof"
)

var (
	profSites   int
	profWorkers int
	profObjects int
	profOut     string
)

func init() {
	cmd := newProfileCmd()
	cmd.Flags().IntVar(&profSites, "sites", 8, "Number of profiled allocation sites")
	cmd.Flags().IntVar(&profWorkers, "workers", 4, "Number of mutator goroutines")
	cmd.Flags().IntVar(&profObjects, "objects", 200, "Code objects allocated per worker")
	cmd.Flags().StringVar(&profOut, "out", "", "Write a CBOR snapshot to this file")
	rootCmd.AddCommand(cmd)
}

func newProfileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profile",
		Short: "Run a profiled workload and print allocation counters",
		Long: `The profile command starts the allocation profiler with room for the
requested number of variable-size sites, runs a code-allocation workload
charged to those sites and prints hit and byte counts per site.

Example:
  heapctl profile
  heapctl profile --sites 32 --out profile.cbor
  heapctl profile --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProfile()
		},
	}
}

func runProfile() error {
	h, err := newHeap()
	if err != nil {
		return err
	}
	defer h.Close()

	h.SetProfileMetadata(make([]uintptr, 2*(allocprof.FirstSite+2*profSites)))
	h.ProfilerStart()
	sites := make([]int, 0, profSites)
	for range profSites {
		if s := h.Profiler().AssignSite(true); s != allocprof.NoSite {
			sites = append(sites, s)
		}
	}

	res, err := runWorkload(h, workload{Workers: profWorkers, Objects: profObjects, MaxWords: 64, Sites: sites, Seed: 1})
	h.ProfilerStop()
	if err != nil {
		return fmt.Errorf("workload failed: %w", err)
	}
	snap := h.ProfileSnapshot()

	if profOut != "" {
		b, err := snap.MarshalCBOR()
		if err != nil {
			return err
		}
		if err := os.WriteFile(profOut, b, 0o644); err != nil {
			return fmt.Errorf("failed to write snapshot: %w", err)
		}
		printVerbose("Wrote %d byte snapshot to %s\n", len(b), profOut)
	}

	if jsonOut {
		return printJSON(snap)
	}
	printInfo("Session %s, generation %d, %d code objects\n", snap.Session, snap.Generation, res.CodeObjects)
	printInfo("%-8s %10s %12s\n", "SITE", "HITS", "BYTES")
	for _, s := range sites {
		printInfo("%-8d %10d %12d\n", s, snap.Counters[s], snap.Counters[s+1])
	}
	printInfo("%-8s %10d %12d\n", "overflow", snap.Counters[allocprof.OverflowHits], snap.Counters[allocprof.OverflowBytes])
	return nil
}
