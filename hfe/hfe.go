package hfe

import "errors"

// Constants for HFE format signatures
const (
	// Signature for HFE v1 format
	HFEv1Signature = "HXCPICFE"

	// Signature for HFE v3 format (recognized, not supported)
	HFEv3Signature = "HXCHFEV3"

	// Block size in bytes
	BlockSize = 512

	// Each block carries 256 bytes of side 0 followed by 256 bytes of side 1
	HalfBlockSize = BlockSize / 2
)

// Layout of a single-track image
const (
	HeaderSize      = 20     // bytes of header actually written
	TrackListOffset = 0x200  // absolute offset of the track list
	TrackDataOffset = 0x400  // absolute offset of the first track
	MaxTrackLen     = 0xFFFF // track length field is 16 bits
)

// Track encoding types
const (
	ENC_ISOIBM_MFM = iota
	ENC_Amiga_MFM
	ENC_ISOIBM_FM
	ENC_Emu_FM
	ENC_Unknown = 0xff
)

// Interface mode types
const (
	IFM_IBMPC_DD = iota
	IFM_IBMPC_HD
	IFM_AtariST_DD
	IFM_AtariST_HD
	IFM_Amiga_DD
	IFM_Amiga_HD
	IFM_CPC_DD
	IFM_GenericShugart_DD
	IFM_IBMPC_ED
	IFM_MSX2_DD
	IFM_C64_DD
	IFM_EmuShugart_DD
)

var (
	// ErrOutput is returned when the image cannot be stored.
	ErrOutput = errors.New("failed to write HFE image")

	// ErrTrackTooLong is returned when a track does not fit the 16-bit length field.
	ErrTrackTooLong = errors.New("track too long for HFE track list")
)

// Header represents the leading 20 bytes of the HFE v1 file header
type Header struct {
	HeaderSignature     [8]byte
	FormatRevision      uint8
	NumberOfTrack       uint8
	NumberOfSide        uint8
	TrackEncoding       uint8
	BitRate             uint16 // in kB/s
	FloppyRPM           uint16
	FloppyInterfaceMode uint8
	Reserved            uint8
	TrackListOffset     uint16 // in 512-byte blocks
}

// TrackHeader represents a track offset entry in the track list
type TrackHeader struct {
	Offset   uint16 // in 512-byte blocks
	TrackLen uint16 // in bytes, both sides
}

// byteBitsInverter inverts bits in a byte (for PIC EUSART compatibility)
var byteBitsInverter [256]byte

func init() {
	for i := range byteBitsInverter {
		byteBitsInverter[i] = bitReverse(byte(i))
	}
}

// bitReverse reverses the bit order in a byte (LSB-first <-> MSB-first)
func bitReverse(b byte) byte {
	var result byte
	for i := 0; i < 8; i++ {
		result <<= 1
		result |= b & 1
		b >>= 1
	}
	return result
}

// DataOffset returns the absolute file offset of the 32-bit data word at
// index i. Words fill the first half of each block: after 64 words the
// offset skips the 256-byte half reserved for side 1.
func DataOffset(i int) int64 {
	byteNumber := int64(i) * 4
	blockNumber := byteNumber / HalfBlockSize
	return TrackDataOffset + blockNumber*BlockSize + byteNumber%HalfBlockSize
}
