package decoder

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sergev/flux2hfe/bitcell"
)

// ncoFracBits is the number of fractional bits of the phase accumulator.
const ncoFracBits = 16

// NCO decodes with a numerically-controlled oscillator.
//
// The oscillator step starts at the nominal period. At every transition the
// phase error against the nearest clock edge, spread over the cells of the
// interval and divided by IntegralDiv, feeds an integrator that retunes the
// step. The phase itself is pulled towards the transition by the error
// divided by ErrorDiv.
type NCO struct {
	name        string
	IntegralDiv int
	ErrorDiv    int
}

// NewNCO creates a named NCO strategy.
func NewNCO(name string, integralDiv, errorDiv int) NCO {
	return NCO{name: name, IntegralDiv: integralDiv, ErrorDiv: errorDiv}
}

// ParseNCO builds an NCO strategy from a name like "nco[4,8]".
// The first integer ends at the first non-digit; the second starts one
// character later. Anything after the second integer is ignored.
func ParseNCO(name string) (NCO, error) {
	rest, ok := strings.CutPrefix(name, NCOPrefix)
	if !ok {
		return NCO{}, fmt.Errorf("%w: %s", ErrUnknownAlgorithm, name)
	}

	integralDiv, n, err := parseLeadingInt(rest)
	if err != nil {
		return NCO{}, fmt.Errorf("%w: %s: bad integral divisor: %w", ErrUnknownAlgorithm, name, err)
	}
	rest = rest[n:]
	if rest == "" {
		return NCO{}, fmt.Errorf("%w: %s: missing error divisor", ErrUnknownAlgorithm, name)
	}

	errorDiv, _, err := parseLeadingInt(rest[1:])
	if err != nil {
		return NCO{}, fmt.Errorf("%w: %s: bad error divisor: %w", ErrUnknownAlgorithm, name, err)
	}

	if integralDiv <= 0 || errorDiv <= 0 {
		return NCO{}, fmt.Errorf("%w: %s: divisors must be positive", ErrUnknownAlgorithm, name)
	}
	return NCO{IntegralDiv: integralDiv, ErrorDiv: errorDiv}, nil
}

// parseLeadingInt parses an optionally signed decimal integer at the start
// of s, after optional blanks. Returns the value and the number of bytes used.
func parseLeadingInt(s string) (int, int, error) {
	i := 0
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	start := i
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	digits := i
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == digits {
		return 0, 0, fmt.Errorf("no digits in %q", s)
	}

	v, err := strconv.Atoi(s[start:i])
	if err != nil {
		return 0, 0, err
	}
	return v, i, nil
}

// Name implements Strategy.
func (n NCO) Name() string {
	if n.name != "" {
		return n.name
	}
	return fmt.Sprintf("%s%d,%d]", NCOPrefix, n.IntegralDiv, n.ErrorDiv)
}

// Decode implements Strategy.
func (n NCO) Decode(period uint16, samples []uint16, buf *bitcell.Buffer) uint64 {
	w := bitcell.NewWriter(buf)

	nominal := int64(period) << ncoFracBits
	maxIntegral := nominal / 8
	step := nominal
	var integral, phase int64

	for _, s := range samples {
		phase += int64(s) << ncoFracBits
		cells := (phase + step/2) / step
		if cells < 1 {
			// Too early for a clock edge: merge with the next interval
			continue
		}
		w.WriteCell(int(cells))

		e := phase - cells*step
		integral += e / (cells * int64(n.IntegralDiv))
		if integral > maxIntegral {
			integral = maxIntegral
		} else if integral < -maxIntegral {
			integral = -maxIntegral
		}
		step = nominal + integral
		phase = e - e/int64(n.ErrorDiv)
	}
	return w.Count()
}

// Built-in NCO tunings. The name gives the loop bandwidth and damping;
// each maps to an integral/error divisor pair.
var ncoVariants = []NCO{
	NewNCO("nco_715k", 8, 4),
	NewNCO("nco_358k", 16, 6),
	NewNCO("nco_178k", 32, 8),
	NewNCO("nco_1440k_0p2", 4, 6),
	NewNCO("nco_1440k_0p25", 4, 4),
	NewNCO("nco_2160k_0p1", 2, 6),
	NewNCO("nco_2160k_0p2", 2, 4),
	NewNCO("nco_2160k_0p25", 2, 3),
	NewNCO("nco_2160k_0p5", 2, 2),
	NewNCO("nco_2160k_1p0", 2, 1),
}
