// Package pll implements a phase-locked loop that recovers a bitcell clock
// from flux transition intervals.
package pll

// Params are the loop coefficients.
type Params struct {
	ClockMaxAdj  float64 // +/- adjustment range of the period, in percent of the ideal
	PeriodAdjPct float64 // period correction, in percent of the phase mismatch
	PhaseAdjPct  float64 // phase correction, in percent of the phase mismatch
	SyncZeros    int     // longest run of clocked zeros still considered in sync
}

// DefaultParams are the SCP/Greaseweazle default coefficients.
var DefaultParams = Params{
	ClockMaxAdj:  10,
	PeriodAdjPct: 5,
	PhaseAdjPct:  60,
	SyncZeros:    3,
}

// FluxSource provides flux intervals for the PLL algorithm.
type FluxSource interface {
	// NextFlux returns the next flux interval in sample ticks.
	// Returns false when no more transitions are available.
	NextFlux() (uint16, bool)
}

// SampleIterator provides flux intervals from a slice of samples.
// It implements the FluxSource interface.
type SampleIterator struct {
	samples []uint16
	index   int
}

// NewSampleIterator creates a new SampleIterator over samples.
func NewSampleIterator(samples []uint16) *SampleIterator {
	return &SampleIterator{samples: samples}
}

// NextFlux returns the next flux interval.
// Implements the FluxSource interface.
func (it *SampleIterator) NextFlux() (uint16, bool) {
	if it.index >= len(it.samples) {
		return 0, false
	}
	s := it.samples[it.index]
	it.index++
	return s, true
}

// State represents the state of the Phase-Locked Loop.
type State struct {
	Params       Params
	PeriodIdeal  float64 // Expected clock period in ticks
	Period       float64 // Current clock period in ticks
	Flux         float64 // Accumulated flux time in ticks
	Time         float64 // Total time elapsed in ticks
	ClockedZeros int     // Count of consecutive clocked zeros
}

// NewState creates a PLL locked to the ideal period.
func NewState(periodTicks uint16, params Params) *State {
	return &State{
		Params:      params,
		PeriodIdeal: float64(periodTicks),
		Period:      float64(periodTicks),
	}
}

// NextBit decodes the next bitcell from the flux input stream.
// Returns false for a clocked zero and true for a transition.
// The second result is false once the source is exhausted and the
// remaining flux is shorter than half a period.
func (pll *State) NextBit(source FluxSource) (bit bool, ok bool) {
	// Accumulate flux until it exceeds period/2
	for pll.Flux < pll.Period/2 {
		fluxInterval, more := source.NextFlux()
		if !more {
			return false, false
		}
		pll.Flux += float64(fluxInterval)
	}

	// Advance time by one clock period
	pll.Time += pll.Period
	pll.Flux -= pll.Period

	if pll.Flux >= pll.Period/2 {
		pll.ClockedZeros++
		return false, true
	}

	p := pll.Params

	// Adjust clock period according to phase mismatch
	if pll.ClockedZeros <= p.SyncZeros {
		// In sync: adjust base clock by a fraction of phase mismatch
		pll.Period += pll.Flux * p.PeriodAdjPct / 100
	} else {
		// Out of sync: adjust base clock towards centre
		pll.Period += (pll.PeriodIdeal - pll.Period) * p.PeriodAdjPct / 100
	}

	pMin := (pll.PeriodIdeal * (100 - p.ClockMaxAdj)) / 100
	if pll.Period < pMin {
		pll.Period = pMin
	}
	pMax := (pll.PeriodIdeal * (100 + p.ClockMaxAdj)) / 100
	if pll.Period > pMax {
		pll.Period = pMax
	}

	// PhaseAdjPct=100% -> timing window snaps to observed flux
	newFlux := pll.Flux * (100 - p.PhaseAdjPct) / 100
	pll.Time += pll.Flux - newFlux
	pll.Flux = newFlux

	pll.ClockedZeros = 0
	return true, true
}
