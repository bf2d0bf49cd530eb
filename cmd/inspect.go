package cmd

import (
	"fmt"
	"math/bits"
	"os"

	"github.com/cespare/xxhash/v2"
	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/sergev/flux2hfe/hfe"
)

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect FILE.hfe",
		Short: "Show the header and first track of an HFE image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := renderInspect(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
}

// renderInspect returns a summary of an HFE image.
func renderInspect(filename string) (string, error) {
	track, err := hfe.ReadTrack(filename)
	if err != nil {
		return "", fmt.Errorf("%s: %w", filename, err)
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	transitions := 0
	for _, b := range track.Bits {
		transitions += bits.OnesCount8(b)
	}

	h := track.Header
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendRows([]table.Row{
		{"File", filename},
		{"Size", fmt.Sprintf("%s (%d bytes)", humanize.Bytes(uint64(len(data))), len(data))},
		{"xxhash64", fmt.Sprintf("%016x", xxhash.Sum64(data))},
		{"Signature", string(h.HeaderSignature[:])},
		{"Revision", h.FormatRevision},
		{"Tracks", h.NumberOfTrack},
		{"Sides", h.NumberOfSide},
		{"Encoding", encodingName(h.TrackEncoding)},
		{"Bit rate field", fmt.Sprintf("0x%04X (%d kbps low byte)", h.BitRate, h.BitRate&0xFF)},
		{"Interface mode", fmt.Sprintf("0x%02X", h.FloppyInterfaceMode)},
		{"Track list", fmt.Sprintf("block %d", h.TrackListOffset)},
		{"Track data", fmt.Sprintf("block %d", track.Entry.Offset)},
		{"Track length", fmt.Sprintf("%d bytes, both sides (at most %d bytes)", track.Entry.TrackLen, hfe.MaxTrackLen)},
		{"Bitcells", humanize.Comma(int64(len(track.Bits)) * 8)},
		{"Flux transitions", humanize.Comma(int64(transitions))},
	})
	return tw.Render(), nil
}

func encodingName(enc uint8) string {
	switch enc {
	case hfe.ENC_ISOIBM_MFM:
		return "ISO/IBM MFM"
	case hfe.ENC_Amiga_MFM:
		return "Amiga MFM"
	case hfe.ENC_ISOIBM_FM:
		return "ISO/IBM FM"
	case hfe.ENC_Emu_FM:
		return "EMU FM"
	case hfe.ENC_Unknown:
		return "unknown"
	default:
		return fmt.Sprintf("0x%02X", enc)
	}
}
