package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/nzioki/gencgc/heap"
)

var (
	pagesWorkers int
	pagesObjects int
	pagesAll     bool
)

func init() {
	cmd := newPagesCmd()
	cmd.Flags().IntVar(&pagesWorkers, "workers", 2, "Number of mutator goroutines")
	cmd.Flags().IntVar(&pagesObjects, "objects", 100, "Code objects allocated per worker")
	cmd.Flags().BoolVar(&pagesAll, "all", false, "Include free pages below the cursor")
	rootCmd.AddCommand(cmd)
}

func newPagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pages",
		Short: "Print the page table after a workload",
		Long: `The pages command runs a small code-allocation workload and prints one row
per page below the allocation cursor: generation, type, words used, the
decoded scan-start offset and the block boundary predicates.

Example:
  heapctl pages
  heapctl pages --objects 1000 --region-pages 4
  heapctl pages --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPages()
		},
	}
}

type pageRow struct {
	Page       int    `json:"page"`
	Generation uint8  `json:"generation"`
	Type       string `json:"type"`
	WordsUsed  int    `json:"words_used"`
	ScanStart  uint64 `json:"scan_start"`
	Starts     bool   `json:"starts_block"`
	Ends       bool   `json:"ends_block"`
	Zerofill   bool   `json:"need_zerofill"`
}

func runPages() error {
	h, err := newHeap()
	if err != nil {
		return err
	}
	defer h.Close()

	if _, err := runWorkload(h, workload{Workers: pagesWorkers, Objects: pagesObjects, MaxWords: 64, Seed: 1}); err != nil {
		return fmt.Errorf("workload failed: %w", err)
	}
	rows := pageRows(h, pagesAll)

	if jsonOut {
		return printJSON(rows)
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PAGE\tGEN\tTYPE\tWORDS\tSCAN START\tSTARTS\tENDS\tZEROFILL")
	for _, r := range rows {
		fmt.Fprintf(w, "%d\t%d\t%s\t%d\t%#x\t%t\t%t\t%t\n",
			r.Page, r.Generation, r.Type, r.WordsUsed, r.ScanStart, r.Starts, r.Ends, r.Zerofill)
	}
	return w.Flush()
}

func pageRows(h *heap.Heap, all bool) []pageRow {
	tbl := h.Space().Table()
	var rows []pageRow
	for p := range h.Space().NextFreePage() {
		if !all && tbl.IsFree(p) {
			continue
		}
		gen := h.PageGeneration(p)
		rows = append(rows, pageRow{
			Page:       p,
			Generation: uint8(gen),
			Type:       h.PageType(p).String(),
			WordsUsed:  h.WordsUsed(p),
			ScanStart:  uint64(h.ScanStartOffset(p)),
			Starts:     h.StartsBlock(p),
			Ends:       h.EndsBlock(p, gen),
			Zerofill:   h.NeedsZerofill(p),
		})
	}
	return rows
}
