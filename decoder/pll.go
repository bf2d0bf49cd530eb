package decoder

import (
	"github.com/sergev/flux2hfe/bitcell"
	"github.com/sergev/flux2hfe/pll"
)

// PLL decodes with a phase-locked loop.
type PLL struct {
	name   string
	params pll.Params
}

// NewPLL creates a named PLL strategy with the given loop coefficients.
func NewPLL(name string, params pll.Params) PLL {
	return PLL{name: name, params: params}
}

// Name implements Strategy.
func (p PLL) Name() string {
	return p.name
}

// Params returns the loop coefficients.
func (p PLL) Params() pll.Params {
	return p.params
}

// Decode implements Strategy.
func (p PLL) Decode(period uint16, samples []uint16, buf *bitcell.Buffer) uint64 {
	w := bitcell.NewWriter(buf)
	state := pll.NewState(period, p.params)
	source := pll.NewSampleIterator(samples)
	for {
		bit, ok := state.NextBit(source)
		if !ok {
			break
		}
		w.WriteBit(bit)
	}
	return w.Count()
}

// Built-in PLL tunings, named after the firmware revisions they model.
var pllVariants = []PLL{
	NewPLL("ff_v341", pll.Params{ClockMaxAdj: 10, PeriodAdjPct: 0, PhaseAdjPct: 100, SyncZeros: 3}),
	NewPLL("ff_master", pll.Params{ClockMaxAdj: 10, PeriodAdjPct: 2, PhaseAdjPct: 50, SyncZeros: 3}),
	NewPLL("ff_master_greaseweazle_default_pll", pll.DefaultParams),
	NewPLL("ff_master_greaseweazle_fallback_pll", pll.Params{ClockMaxAdj: 5, PeriodAdjPct: 1, PhaseAdjPct: 10, SyncZeros: 3}),
	// Digital data separator: no frequency tracking, half-window phase snap
	NewPLL("fdc9216", pll.Params{ClockMaxAdj: 0, PeriodAdjPct: 0, PhaseAdjPct: 50, SyncZeros: 0}),
}
