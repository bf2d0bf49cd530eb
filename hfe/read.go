package hfe

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

// Track is side 0 of track 0 of an HFE image, as produced by EncodeTrack.
type Track struct {
	Header Header
	Entry  TrackHeader
	Bits   []byte // bitcells of side 0, MSB-first
}

// ReadTrack reads an HFE v1 file and returns its first track.
// Images may end right after the last data byte; missing bytes read as zero.
func ReadTrack(filename string) (*Track, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	track := &Track{}

	// Read header
	if err := binary.Read(file, binary.LittleEndian, &track.Header); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	sig := string(track.Header.HeaderSignature[:])
	switch sig {
	case HFEv1Signature:
	case HFEv3Signature:
		return nil, errors.New("HFE v3 format is not supported, only v1 is supported")
	default:
		return nil, fmt.Errorf("invalid HFE signature: %q (expected %s)", sig, HFEv1Signature)
	}

	// v2 (revision 1) is not supported
	if track.Header.FormatRevision == 1 {
		return nil, errors.New("HFE v2 format (revision 1) is not supported, only v1 is supported")
	}
	if track.Header.FormatRevision != 0 {
		return nil, fmt.Errorf("invalid HFE v1 format revision: %d (expected 0)", track.Header.FormatRevision)
	}

	// Validate basic fields
	if track.Header.BitRate == 0 {
		return nil, errors.New("invalid bit rate")
	}
	if track.Header.NumberOfTrack == 0 {
		return nil, errors.New("invalid number of tracks")
	}
	if track.Header.NumberOfSide == 0 {
		return nil, errors.New("invalid number of sides")
	}

	// Read track offset list
	trackListOffset := int64(track.Header.TrackListOffset) * BlockSize
	if _, err := file.Seek(trackListOffset, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to seek to track list: %w", err)
	}
	if err := binary.Read(file, binary.LittleEndian, &track.Entry); err != nil {
		return nil, fmt.Errorf("failed to read track header: %w", err)
	}

	// Calculate track length (rounded up to 512-byte boundary)
	trackLen := int(track.Entry.TrackLen)
	if trackLen&0x1FF != 0 {
		trackLen = (trackLen &^ 0x1FF) + 0x200
	}

	// Seek to track data
	trackOffset := int64(track.Entry.Offset) * BlockSize
	if _, err := file.Seek(trackOffset, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to seek to track data: %w", err)
	}

	trackBuf := make([]byte, trackLen)
	if _, err := io.ReadFull(file, trackBuf); err != nil &&
		!errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read track data: %w", err)
	}

	// Side 0 is bytes 0-255 of each 512-byte block.
	// Apply byteBitsInverter during demuxing (convert from LSB-first to MSB-first)
	track.Bits = make([]byte, int(track.Entry.TrackLen)/2)
	for i := range track.Bits {
		track.Bits[i] = byteBitsInverter[trackBuf[(i/HalfBlockSize)*BlockSize+i%HalfBlockSize]]
	}

	return track, nil
}
