package flux

import (
	"errors"
	"fmt"
)

// ErrInvalidBitRate is returned for bit rates that give no usable bitcell period.
var ErrInvalidBitRate = errors.New("invalid bit rate")

const (
	// SampleClockMHz is the flux sampling clock of the capture device.
	SampleClockMHz = 72

	// periodScale is the tick count of 500 bitcells at SampleClockMHz, in kbps units.
	periodScale = 500 * SampleClockMHz
)

// BitcellTicks returns the number of sample ticks one output bitcell occupies
// at the given rate. The division truncates.
// Rates above 36000 kbps would give a zero period and are rejected.
func BitcellTicks(bitRateKbps uint) (uint16, error) {
	if bitRateKbps == 0 {
		return 0, fmt.Errorf("%w: rate must be positive", ErrInvalidBitRate)
	}
	period := periodScale / bitRateKbps
	if period == 0 {
		return 0, fmt.Errorf("%w: %d kbps exceeds maximum of %d kbps", ErrInvalidBitRate, bitRateKbps, periodScale)
	}
	return uint16(period), nil
}
