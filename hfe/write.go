package hfe

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sergev/flux2hfe/bitcell"
)

// NewHeader returns the header of a single-track, single-sided image
// with unknown track encoding.
func NewHeader(bitRateKbps uint16) Header {
	header := Header{
		FormatRevision: 0,
		NumberOfTrack:  1,
		NumberOfSide:   1,
		TrackEncoding:  ENC_Unknown,
		// Only the low byte of the rate is kept, the high byte is always 0x01
		BitRate:             0x0100 | bitRateKbps&0xFF,
		FloppyRPM:           0,
		FloppyInterfaceMode: IFM_GenericShugart_DD,
		TrackListOffset:     TrackListOffset / BlockSize,
	}
	copy(header.HeaderSignature[:], HFEv1Signature)
	return header
}

// encode stores the header into the first HeaderSize bytes of dst
func (header *Header) encode(dst []byte) {
	copy(dst[0:8], header.HeaderSignature[:])
	dst[8] = header.FormatRevision
	dst[9] = header.NumberOfTrack
	dst[10] = header.NumberOfSide
	dst[11] = header.TrackEncoding
	binary.LittleEndian.PutUint16(dst[12:14], header.BitRate)
	binary.LittleEndian.PutUint16(dst[14:16], header.FloppyRPM)
	dst[16] = header.FloppyInterfaceMode
	dst[17] = header.Reserved
	binary.LittleEndian.PutUint16(dst[18:20], header.TrackListOffset)
}

// EncodeTrack builds a complete HFE image holding the first bitCount
// bitcells of buf as track 0, side 0.
//
// The bitcell count is rounded up to bytes and then to 32-bit words.
// The track list declares twice the byte count, covering both sides,
// while only side 0 is filled. The image ends right after the last word.
func EncodeTrack(buf *bitcell.Buffer, bitCount uint64, bitRateKbps uint16) ([]byte, error) {
	if err := buf.CheckCount(bitCount); err != nil {
		return nil, err
	}

	numBytes := (bitCount + 7) / 8
	trackLen := numBytes * 2
	if trackLen > MaxTrackLen {
		return nil, fmt.Errorf("%w: %d bytes, maximum is %d", ErrTrackTooLong, trackLen, MaxTrackLen)
	}
	numWords := int((numBytes + 3) / 4)

	size := int64(TrackListOffset + 4)
	if numWords > 0 {
		size = DataOffset(numWords-1) + 4
	}
	image := make([]byte, size)

	header := NewHeader(bitRateKbps)
	header.encode(image[:HeaderSize])

	th := TrackHeader{
		Offset:   TrackDataOffset / BlockSize,
		TrackLen: uint16(trackLen),
	}
	binary.LittleEndian.PutUint16(image[TrackListOffset:], th.Offset)
	binary.LittleEndian.PutUint16(image[TrackListOffset+2:], th.TrackLen)

	// Bitcells go out in stream order, each byte LSB-first
	var word [4]byte
	for i := 0; i < numWords; i++ {
		binary.BigEndian.PutUint32(word[:], buf.Word(uint32(i)))
		offset := DataOffset(i)
		for k, b := range word {
			image[offset+int64(k)] = byteBitsInverter[b]
		}
	}
	return image, nil
}

// WriteFile stores an image. Data goes to a temporary file in the same
// directory which is renamed over filename once complete, so a failed
// write leaves nothing behind.
func WriteFile(filename string, data []byte) (err error) {
	file, err := os.CreateTemp(filepath.Dir(filename), "."+filepath.Base(filename)+".*")
	if err != nil {
		return fmt.Errorf("%w: failed to create file: %w", ErrOutput, err)
	}
	tmpName := file.Name()
	defer func() {
		if err != nil {
			file.Close()
			os.Remove(tmpName)
		}
	}()

	if _, err = file.Write(data); err != nil {
		return fmt.Errorf("%w: failed to write data: %w", ErrOutput, err)
	}
	if err = file.Close(); err != nil {
		return fmt.Errorf("%w: failed to close file: %w", ErrOutput, err)
	}
	if err = os.Chmod(tmpName, 0644); err != nil {
		return fmt.Errorf("%w: failed to set permissions: %w", ErrOutput, err)
	}
	if err = os.Rename(tmpName, filename); err != nil {
		return fmt.Errorf("%w: failed to rename %s: %w", ErrOutput, tmpName, err)
	}
	return nil
}
