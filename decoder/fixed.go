package decoder

import "github.com/sergev/flux2hfe/bitcell"

// Fixed decodes each sample independently by dividing it by the
// bitcell period, rounding to the nearest whole number of cells.
// There is no clock recovery: drift accumulates into rounding errors.
type Fixed struct{}

// Name implements Strategy.
func (Fixed) Name() string {
	return "fixed"
}

// Decode implements Strategy.
func (Fixed) Decode(period uint16, samples []uint16, buf *bitcell.Buffer) uint64 {
	w := bitcell.NewWriter(buf)
	p := int(period)
	for _, s := range samples {
		cells := (int(s) + p/2) / p
		if cells < 1 {
			// A transition closer than half a cell still ends a cell
			cells = 1
		}
		w.WriteCell(cells)
	}
	return w.Count()
}
