package main

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"

	"github.com/nzioki/gencgc/heap"
	"github.com/nzioki/gencgc/internal/layout"
)

// captureOutput captures stdout while running a function
func captureOutput(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	origStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	os.Stdout = w

	done := make(chan []byte)
	go func() {
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(r)
		done <- buf.Bytes()
	}()

	fnErr := fn()

	w.Close()
	os.Stdout = origStdout
	return string(<-done), fnErr
}

// assertJSON checks that output is valid JSON and decodes it into v
func assertJSON(t *testing.T, output string, v any) {
	t.Helper()
	if err := json.Unmarshal([]byte(output), v); err != nil {
		t.Fatalf("output is not valid JSON: %v\nOutput: %s", err, output)
	}
}

// useSmallHeap points the heap flags at a small heap for the duration of the test
func useSmallHeap(t *testing.T) {
	t.Helper()
	defaults := heap.DefaultConfig()
	dynamicBytes = 256 * layout.PageBytes
	staticBytes = 4 * layout.PageBytes
	regionPages = defaults.RegionPages
	largePages = defaults.LargeObjectPages
	noInhibitCheck = false
	jsonOut = false
	quiet = false
	verbose = false
	t.Cleanup(func() {
		dynamicBytes = defaults.DynamicSpaceBytes
		staticBytes = defaults.StaticSpaceBytes
		jsonOut = false
	})
}
