// Package canonical normalizes scientific names with gnparser.
// This is a pure package: parsing is computation, not I/O.
package canonical

import (
	"runtime"

	"github.com/gnames/gnlib/ent/nomcode"
	"github.com/gnames/gnparser"
	"github.com/gnames/gnparser/ent/parsed"
)

// Normalizer reduces scientific names to their simple canonical form,
// so "Salmo trutta Linnaeus, 1758" and "Salmo trutta" resolve to the
// same taxon.
type Normalizer interface {
	// Canonical returns the simple canonical form of a name. The second
	// value is false when the name cannot be parsed.
	Canonical(name string) (string, bool)

	// Parse returns the full parsing result.
	Parse(name string) parsed.Parsed

	// Close releases the parsers. The Normalizer must not be used after.
	Close()
}

type normalizer struct {
	ch chan gnparser.GNparser
}

// New creates a Normalizer backed by a pool of zoological parsers.
// If jobsNum is 0, the pool size is runtime.NumCPU().
func New(jobsNum int) Normalizer {
	if jobsNum <= 0 {
		jobsNum = runtime.NumCPU()
	}
	// freshwater fauna follows the zoological code
	cfg := gnparser.NewConfig(
		gnparser.OptCode(nomcode.Zoological),
		gnparser.OptWithDetails(true),
	)
	return &normalizer{ch: gnparser.NewPool(cfg, jobsNum)}
}

func (n *normalizer) Parse(name string) parsed.Parsed {
	p := <-n.ch
	res := p.ParseName(name)
	n.ch <- p
	return res
}

func (n *normalizer) Canonical(name string) (string, bool) {
	res := n.Parse(name)
	if !res.Parsed || res.Canonical == nil || res.Canonical.Simple == "" {
		return "", false
	}
	return res.Canonical.Simple, true
}

func (n *normalizer) Close() {
	if n.ch == nil {
		return
	}
	close(n.ch)
	for range n.ch {
	}
	n.ch = nil
}
