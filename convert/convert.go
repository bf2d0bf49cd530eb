// Package convert runs the flux-to-HFE pipeline: load samples, decode them
// with one strategy into a bitcell buffer, and serialize the buffer as an
// HFE image.
package convert

import (
	"fmt"
	"log/slog"

	"github.com/cespare/xxhash/v2"
	"github.com/dustin/go-humanize"

	"github.com/sergev/flux2hfe/bitcell"
	"github.com/sergev/flux2hfe/decoder"
	"github.com/sergev/flux2hfe/flux"
	"github.com/sergev/flux2hfe/hfe"
)

// Options describes one conversion.
type Options struct {
	SamplesPath string
	OutputPath  string
	BitRateKbps uint
	Algorithm   string
	BufferSize  int                // bitcell buffer capacity in bytes, bitcell.DefaultSize if zero
	Registry    *decoder.Registry // decoder.Default() if nil
	Logger      *slog.Logger      // slog.Default() if nil
}

// Result summarizes a conversion.
type Result struct {
	Algorithm   string
	PeriodTicks uint16
	Samples     int
	Bitcells    uint64
	TrackLen    int    // declared track length in bytes
	ImageSize   int    // bytes written
	Checksum    uint64 // xxhash64 of the image
}

// Run performs a conversion from file to file.
// The rate and algorithm are validated before the input is read;
// the output is written only when every earlier step succeeded.
func Run(opts Options) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	registry := opts.Registry
	if registry == nil {
		registry = decoder.Default()
	}

	period, err := flux.BitcellTicks(opts.BitRateKbps)
	if err != nil {
		return nil, err
	}
	strategy, err := registry.Resolve(opts.Algorithm)
	if err != nil {
		return nil, err
	}

	samples, err := flux.Load(opts.SamplesPath)
	if err != nil {
		return nil, err
	}
	logger.Info("loaded flux samples",
		"path", opts.SamplesPath,
		"samples", len(samples),
		"compression", flux.DetectCompression(opts.SamplesPath).String())

	image, result, err := Convert(samples, uint16(opts.BitRateKbps), period, strategy, opts.BufferSize, logger)
	if err != nil {
		return nil, err
	}

	if err := hfe.WriteFile(opts.OutputPath, image); err != nil {
		return nil, fmt.Errorf("%s: %w", opts.OutputPath, err)
	}
	logger.Info("wrote HFE image",
		"path", opts.OutputPath,
		"size", humanize.Bytes(uint64(len(image))),
		"xxhash", fmt.Sprintf("%016x", result.Checksum))
	return result, nil
}

// Convert decodes samples with strategy and returns the HFE image.
// bufferSize is the bitcell buffer capacity in bytes, bitcell.DefaultSize if zero.
func Convert(samples []uint16, bitRateKbps uint16, period uint16, strategy decoder.Strategy,
	bufferSize int, logger *slog.Logger) ([]byte, *Result, error) {

	if logger == nil {
		logger = slog.Default()
	}
	if bufferSize == 0 {
		bufferSize = bitcell.DefaultSize
	}
	buf, err := bitcell.New(bufferSize)
	if err != nil {
		return nil, nil, err
	}

	logger.Info("starting to process flux to bitcells")
	if nco, ok := strategy.(decoder.NCO); ok {
		logger.Info("NCO coefficients", "integral_div", nco.IntegralDiv, "error_div", nco.ErrorDiv)
	}
	logger.Info("running decoder", "algorithm", strategy.Name(), "write_bc_ticks", period)

	bitCount := strategy.Decode(period, samples, buf)
	logger.Info("decoded bitcells", "count", bitCount)

	if err := buf.CheckCount(bitCount); err != nil {
		return nil, nil, err
	}

	image, err := hfe.EncodeTrack(buf, bitCount, bitRateKbps)
	if err != nil {
		return nil, nil, err
	}

	result := &Result{
		Algorithm:   strategy.Name(),
		PeriodTicks: period,
		Samples:     len(samples),
		Bitcells:    bitCount,
		TrackLen:    int((bitCount+7)/8) * 2,
		ImageSize:   len(image),
		Checksum:    xxhash.Sum64(image),
	}
	logger.Debug("encoded HFE image",
		"track_len", result.TrackLen,
		"size", humanize.Bytes(uint64(result.ImageSize)))
	return image, result, nil
}
