package allocprof

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// Snapshot is a point-in-time copy of the profiler's counters.
type Snapshot struct {
	Session    string   `cbor:"1,keyasint" json:"session"`
	Generation uint64   `cbor:"2,keyasint" json:"generation"`
	Running    bool     `cbor:"3,keyasint" json:"running"`
	Sites      int      `cbor:"4,keyasint" json:"sites_assigned"`
	Counters   []uint64 `cbor:"5,keyasint" json:"counters"`
}

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	if encMode, err = cbor.CoreDetEncOptions().EncMode(); err != nil {
		panic(err)
	}
	if decMode, err = (cbor.DecOptions{}).DecMode(); err != nil {
		panic(err)
	}
}

// Snapshot copies the current counters. It is empty before the first Start.
func (p *Profiler) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := Snapshot{Running: p.running, Generation: p.generation}
	if p.buffer == nil {
		return s
	}
	s.Session = p.session.String()
	s.Sites = p.nextCounter - FirstSite
	s.Counters = p.buffer.Counters()
	return s
}

// MarshalCBOR encodes the snapshot deterministically.
func (s Snapshot) MarshalCBOR() ([]byte, error) {
	type plain Snapshot
	b, err := encMode.Marshal(plain(s))
	if err != nil {
		return nil, fmt.Errorf("allocprof: encode snapshot: %w", err)
	}
	return b, nil
}

// DecodeSnapshot decodes a snapshot produced by MarshalCBOR.
func DecodeSnapshot(b []byte) (Snapshot, error) {
	var s Snapshot
	if err := decMode.Unmarshal(b, &s); err != nil {
		return Snapshot{}, fmt.Errorf("allocprof: decode snapshot: %w", err)
	}
	return s, nil
}
