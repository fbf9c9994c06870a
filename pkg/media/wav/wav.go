// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// Package wav implements the fixed 46 byte RIFF/WAVE PCM header shared by
// wavwriter and wavreader.
package wav

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

const (
	// HeaderSize is the size of the header preceding the payload.
	HeaderSize = 46

	// FormatTagPCM is the only sample encoding accepted.
	FormatTagPCM uint16 = 1

	// riffChunkOffset is added to the data size to obtain the RIFF chunk
	// size: everything after the chunk id and size fields.
	riffChunkOffset = HeaderSize - 8

	// fmtChunkSize is the size of the fmt body (WAVEFORMATEX, byte aligned).
	fmtChunkSize = 18
)

var (
	riffID = [4]byte{'R', 'I', 'F', 'F'}
	waveID = [4]byte{'W', 'A', 'V', 'E'}
	fmtID  = [4]byte{'f', 'm', 't', ' '}
	dataID = [4]byte{'d', 'a', 't', 'a'}
)

var (
	// ErrPrecondition is the class of errors caused by invalid arguments.
	ErrPrecondition = errors.New("precondition violated")

	// ErrInvalidFormat is returned for any sample encoding other than PCM.
	ErrInvalidFormat = fmt.Errorf("%w: sample encoding must be PCM", ErrPrecondition)
	// ErrUnsupportedBitDepth is returned when bits per sample is not 8 or 16.
	ErrUnsupportedBitDepth = fmt.Errorf("%w: bits per sample must be 8 or 16", ErrPrecondition)
	// ErrInvalidDuration is returned for a non-positive duration.
	ErrInvalidDuration = fmt.Errorf("%w: duration must be positive", ErrPrecondition)
	// ErrZeroCapacity is returned when the format declares no bytes per second.
	ErrZeroCapacity = fmt.Errorf("%w: average bytes per second must be positive", ErrPrecondition)
	// ErrCapacityOverflow is returned when the payload does not fit the 32 bit size fields.
	ErrCapacityOverflow = fmt.Errorf("%w: payload exceeds 32 bit size fields", ErrPrecondition)

	errShortHeader      = errors.New("not enough data for wav header")
	errBadRIFFSignature = errors.New("bad RIFF signature")
	errBadWAVESignature = errors.New("bad WAVE signature")
	errBadFmtSignature  = errors.New("bad fmt signature")
	errBadFmtSize       = errors.New("fmt chunk must be 18 bytes")
	errBadDataSignature = errors.New("bad data signature")
	errSizeMismatch     = errors.New("RIFF chunk size does not match data size")
)

// Format describes the PCM layout declared in the header.
type Format struct {
	FormatTag      uint16
	Channels       uint16
	SampleRate     uint32
	AvgBytesPerSec uint32
	BlockAlign     uint16
	BitsPerSample  uint16
	// ExtensionSize is always zero for plain PCM.
	ExtensionSize uint16
}

// NewPCMFormat builds a PCM Format, deriving block alignment and byte rate.
// Values that do not fit the header fields are left zero and rejected by
// Validate.
func NewPCMFormat(channels uint16, sampleRate uint32, bitsPerSample uint16) Format {
	format := Format{
		FormatTag:     FormatTagPCM,
		Channels:      channels,
		SampleRate:    sampleRate,
		BitsPerSample: bitsPerSample,
	}

	blockAlign := uint64(channels) * uint64(bitsPerSample/8)
	if blockAlign > math.MaxUint16 {
		return format
	}
	format.BlockAlign = uint16(blockAlign)

	if byteRate := uint64(sampleRate) * blockAlign; byteRate <= math.MaxUint32 {
		format.AvgBytesPerSec = uint32(byteRate)
	}

	return format
}

// Validate reports whether f can be written.
func (f Format) Validate() error {
	if f.FormatTag != FormatTagPCM || f.ExtensionSize != 0 {
		return ErrInvalidFormat
	}
	if f.BitsPerSample != 8 && f.BitsPerSample != 16 {
		return ErrUnsupportedBitDepth
	}
	if f.Channels == 0 {
		return ErrInvalidFormat
	}

	blockAlign := uint64(f.Channels) * uint64(f.BitsPerSample/8)
	if uint64(f.BlockAlign) != blockAlign || uint64(f.AvgBytesPerSec) != uint64(f.SampleRate)*blockAlign {
		return ErrInvalidFormat
	}
	if f.AvgBytesPerSec == 0 {
		return ErrZeroCapacity
	}

	return nil
}

// Capacity returns the payload size for durationSeconds of audio in format f.
func Capacity(f Format, durationSeconds int) (uint32, error) {
	if err := f.Validate(); err != nil {
		return 0, err
	}
	if durationSeconds <= 0 {
		return 0, ErrInvalidDuration
	}

	capacity := uint64(durationSeconds) * uint64(f.AvgBytesPerSec)
	if capacity > math.MaxUint32-riffChunkOffset {
		return 0, ErrCapacityOverflow
	}

	return uint32(capacity), nil
}

// Header is the fixed-layout header written before the payload.
type Header struct {
	Format   Format
	DataSize uint32
}

// ChunkSize is the RIFF chunk size declared for h.
func (h Header) ChunkSize() uint32 {
	return h.DataSize + riffChunkOffset
}

// Marshal encodes h into its HeaderSize bytes, little-endian.
func (h Header) Marshal() []byte {
	buf := make([]byte, HeaderSize)
	copy(buf[0:], riffID[:])
	binary.LittleEndian.PutUint32(buf[4:], h.ChunkSize())
	copy(buf[8:], waveID[:])
	copy(buf[12:], fmtID[:])
	binary.LittleEndian.PutUint32(buf[16:], fmtChunkSize)
	binary.LittleEndian.PutUint16(buf[20:], h.Format.FormatTag)
	binary.LittleEndian.PutUint16(buf[22:], h.Format.Channels)
	binary.LittleEndian.PutUint32(buf[24:], h.Format.SampleRate)
	binary.LittleEndian.PutUint32(buf[28:], h.Format.AvgBytesPerSec)
	binary.LittleEndian.PutUint16(buf[32:], h.Format.BlockAlign)
	binary.LittleEndian.PutUint16(buf[34:], h.Format.BitsPerSample)
	binary.LittleEndian.PutUint16(buf[36:], 0) // extension size
	copy(buf[38:], dataID[:])
	binary.LittleEndian.PutUint32(buf[42:], h.DataSize)

	return buf
}

// Unmarshal decodes a header produced by Marshal.
func (h *Header) Unmarshal(buf []byte) error {
	if len(buf) < HeaderSize {
		return errShortHeader
	}

	switch {
	case [4]byte(buf[0:4]) != riffID:
		return errBadRIFFSignature
	case [4]byte(buf[8:12]) != waveID:
		return errBadWAVESignature
	case [4]byte(buf[12:16]) != fmtID:
		return errBadFmtSignature
	case binary.LittleEndian.Uint32(buf[16:]) != fmtChunkSize:
		return errBadFmtSize
	case [4]byte(buf[38:42]) != dataID:
		return errBadDataSignature
	}

	h.Format = Format{
		FormatTag:      binary.LittleEndian.Uint16(buf[20:]),
		Channels:       binary.LittleEndian.Uint16(buf[22:]),
		SampleRate:     binary.LittleEndian.Uint32(buf[24:]),
		AvgBytesPerSec: binary.LittleEndian.Uint32(buf[28:]),
		BlockAlign:     binary.LittleEndian.Uint16(buf[32:]),
		BitsPerSample:  binary.LittleEndian.Uint16(buf[34:]),
		ExtensionSize:  binary.LittleEndian.Uint16(buf[36:]),
	}
	h.DataSize = binary.LittleEndian.Uint32(buf[42:])

	if binary.LittleEndian.Uint32(buf[4:]) != h.ChunkSize() {
		return errSizeMismatch
	}

	return nil
}
