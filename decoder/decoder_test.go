package decoder

import (
	"testing"

	"github.com/sergev/flux2hfe/bitcell"
	"github.com/stretchr/testify/require"
)

const testPeriod = 72 // 500 kbps

// decodeBits runs a strategy and returns the produced bitcells as a string of '0' and '1'.
func decodeBits(t *testing.T, s Strategy, period uint16, samples []uint16) string {
	t.Helper()
	buf, err := bitcell.New(4096)
	require.NoError(t, err)

	count := s.Decode(period, samples, buf)
	require.NoError(t, buf.CheckCount(count))

	out := make([]byte, count)
	for i := range out {
		if buf.Bit(uint64(i)) {
			out[i] = '1'
		} else {
			out[i] = '0'
		}
	}
	return string(out)
}

// cellSamples converts cell lengths into ideal samples at period, with optional jitter.
func cellSamples(period uint16, cells []int, jitter []int) []uint16 {
	samples := make([]uint16, len(cells))
	for i, c := range cells {
		v := c * int(period)
		if len(jitter) > 0 {
			v += jitter[i%len(jitter)]
		}
		samples[i] = uint16(v)
	}
	return samples
}

// cellBits returns the expected bitcell string for cell lengths.
func cellBits(cells []int) string {
	var out []byte
	for _, c := range cells {
		for i := 1; i < c; i++ {
			out = append(out, '0')
		}
		out = append(out, '1')
	}
	return string(out)
}

func TestResolveNCO(t *testing.T) {
	r := Default()

	s, err := r.Resolve("nco[4,8]")
	require.NoError(t, err)
	nco, ok := s.(NCO)
	require.True(t, ok)
	require.Equal(t, 4, nco.IntegralDiv)
	require.Equal(t, 8, nco.ErrorDiv)
	require.Equal(t, "nco[4,8]", nco.Name())

	// The delimiter is positional and trailing text is ignored
	s, err = r.Resolve("nco[16;3")
	require.NoError(t, err)
	require.Equal(t, NCO{IntegralDiv: 16, ErrorDiv: 3}, s)

	s, err = r.Resolve("nco[ 2, 64]xyz")
	require.NoError(t, err)
	require.Equal(t, NCO{IntegralDiv: 2, ErrorDiv: 64}, s)
}

func TestResolveNCOErrors(t *testing.T) {
	r := Default()
	for _, name := range []string{
		"nco[",
		"nco[]",
		"nco[4]",
		"nco[4,",
		"nco[,8]",
		"nco[0,8]",
		"nco[4,0]",
		"nco[-4,8]",
		"nco[99999999999999999999,1]",
	} {
		_, err := r.Resolve(name)
		require.ErrorIs(t, err, ErrUnknownAlgorithm, "name %q", name)
	}
}

func TestResolveByName(t *testing.T) {
	r := Default()
	for _, name := range r.Names() {
		s, err := r.Resolve(name)
		require.NoError(t, err)
		require.Equal(t, name, s.Name())
	}

	_, err := r.Resolve("FF_MASTER")
	require.ErrorIs(t, err, ErrUnknownAlgorithm)
	_, err = r.Resolve("ff_master ")
	require.ErrorIs(t, err, ErrUnknownAlgorithm)
	_, err = r.Resolve("nco")
	require.ErrorIs(t, err, ErrUnknownAlgorithm)
	_, err = r.Resolve("")
	require.ErrorIs(t, err, ErrUnknownAlgorithm)
}

func TestDefaultNames(t *testing.T) {
	expected := []string{
		"fixed",
		"ff_v341",
		"ff_master",
		"ff_master_greaseweazle_default_pll",
		"ff_master_greaseweazle_fallback_pll",
		"fdc9216",
		"nco_715k",
		"nco_358k",
		"nco_178k",
		"nco_1440k_0p2",
		"nco_1440k_0p25",
		"nco_2160k_0p1",
		"nco_2160k_0p2",
		"nco_2160k_0p25",
		"nco_2160k_0p5",
		"nco_2160k_1p0",
	}
	require.Equal(t, expected, Default().Names())
	require.Len(t, Default().Strategies(), len(expected))
}

type stubStrategy struct{ bits uint64 }

func (s stubStrategy) Name() string { return "stub" }

func (s stubStrategy) Decode(period uint16, samples []uint16, buf *bitcell.Buffer) uint64 {
	return s.bits
}

func TestRegister(t *testing.T) {
	r := NewRegistry()
	_, err := r.Resolve("stub")
	require.ErrorIs(t, err, ErrUnknownAlgorithm)

	r.Register(stubStrategy{bits: 64})
	s, err := r.Resolve("stub")
	require.NoError(t, err)
	require.Equal(t, uint64(64), s.Decode(1, nil, nil))
}

func TestIdealSamples(t *testing.T) {
	cells := []int{2, 3, 4, 2, 2, 3, 4, 4, 2, 3, 2, 2, 2, 4, 3, 2}
	samples := cellSamples(testPeriod, cells, nil)
	expected := cellBits(cells)

	for _, s := range Default().Strategies() {
		t.Run(s.Name(), func(t *testing.T) {
			require.Equal(t, expected, decodeBits(t, s, testPeriod, samples))
		})
	}
}

func TestJitteredSamples(t *testing.T) {
	cells := make([]int, 0, 300)
	for i := 0; i < 100; i++ {
		cells = append(cells, 2, 3, 4)
	}
	samples := cellSamples(testPeriod, cells, []int{4, -3, 0, -4, 2, 3})
	expected := cellBits(cells)

	for _, s := range Default().Strategies() {
		t.Run(s.Name(), func(t *testing.T) {
			require.Equal(t, expected, decodeBits(t, s, testPeriod, samples))
		})
	}
}

func TestFixedCellCount(t *testing.T) {
	// Every sample is exactly three cells long
	samples := make([]uint16, 1000)
	for i := range samples {
		samples[i] = 3 * 144
	}
	buf, err := bitcell.New(1024)
	require.NoError(t, err)
	require.Equal(t, uint64(3000), Fixed{}.Decode(144, samples, buf))
}

func TestFixedShortSample(t *testing.T) {
	require.Equal(t, "1101", decodeBits(t, Fixed{}, testPeriod, []uint16{0, 10, 120}))
}

func TestEmptyInput(t *testing.T) {
	for _, s := range Default().Strategies() {
		require.Equal(t, "", decodeBits(t, s, testPeriod, nil), s.Name())
	}
}
