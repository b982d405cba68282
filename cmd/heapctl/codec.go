package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/nzioki/gencgc/heap/pagetable"
	"github.com/nzioki/gencgc/internal/layout"
)

// maxChainPages bounds the table built to demonstrate a clamped chain.
const maxChainPages = 1 << 20

var codecMax uint32

func init() {
	cmd := newCodecCmd()
	cmd.Flags().Uint32Var(&codecMax, "max", pagetable.DefaultScanStartMax, "Clamp sentinel (must be odd)")
	rootCmd.AddCommand(cmd)
}

func newCodecCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "codec <offset>",
		Short: "Show how a scan-start offset is encoded",
		Long: `The codec command encodes a byte offset the way a page-table entry stores it
and decodes it again. Page multiples use the page-scaled form; other offsets
must be object aligned. When the encoded value clamps, the command lays out
a block of that length and decodes the offset through the chain.

Example:
  heapctl codec 4096
  heapctl codec 0x30
  heapctl codec 0x100000 --max 0x3f`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCodec(args)
		},
	}
}

type codecResult struct {
	Offset  uint64 `json:"offset"`
	Raw     uint32 `json:"raw"`
	Scaled  bool   `json:"page_scaled"`
	Clamped bool   `json:"clamped"`
	Decoded uint64 `json:"decoded"`
}

func runCodec(args []string) error {
	v, err := strconv.ParseUint(args[0], 0, 64)
	if err != nil {
		return fmt.Errorf("invalid offset %q: %w", args[0], err)
	}
	if codecMax&1 == 0 || codecMax < 3 {
		return fmt.Errorf("max %#x must be odd and at least 3", codecMax)
	}
	offset := uintptr(v)
	pageAligned := offset&layout.PageMask == 0
	if !pageAligned && !layout.IsAligned(offset, layout.ObjectAlignBytes) {
		return fmt.Errorf("offset %#x is neither a page multiple nor object aligned", offset)
	}
	if !pageAligned && uint64(offset>>layout.WordShift) > uint64(codecMax) {
		return fmt.Errorf("offset %#x exceeds max %#x and is not a page multiple", offset, codecMax)
	}

	res := codecResult{Offset: v, Raw: pagetable.EncodeScanStart(offset, codecMax)}
	res.Scaled = res.Raw&1 == 1
	res.Clamped = res.Raw == codecMax
	res.Decoded = uint64(pagetable.DecodeScanStart(res.Raw))
	if res.Clamped {
		pages := int(offset >> layout.PageShift)
		if pages >= maxChainPages {
			return fmt.Errorf("offset %#x clamps and spans too many pages to demonstrate", offset)
		}
		tbl := pagetable.New(pages+1, codecMax)
		for p := 1; p <= pages; p++ {
			tbl.SetScanStart(p, uintptr(p)<<layout.PageShift)
		}
		res.Decoded = uint64(tbl.ScanStartOffset(pages))
	}

	if jsonOut {
		return printJSON(res)
	}
	printInfo("offset:  %#x\n", res.Offset)
	printInfo("raw:     %#x (page scaled: %t, clamped: %t)\n", res.Raw, res.Scaled, res.Clamped)
	printInfo("decoded: %#x\n", res.Decoded)
	return nil
}
