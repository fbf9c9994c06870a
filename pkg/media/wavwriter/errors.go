// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package wavwriter

import (
	"errors"
	"fmt"

	"github.com/pion/wavesaver/pkg/media/wav"
)

// Error classes. Every error returned by a WavWriter matches exactly one of
// them with errors.Is.
var (
	// ErrPrecondition is returned by Open for arguments the caller must not pass.
	ErrPrecondition = wav.ErrPrecondition
	// ErrIO is returned when the sink cannot be opened, written or closed.
	ErrIO = errors.New("wav sink failure")
	// ErrRejectedWrite is returned by Write when no data can be accepted. It
	// is a normal boundary condition, not a fault.
	ErrRejectedWrite = errors.New("write rejected")
)

// Precondition errors, re-exported from package wav.
var (
	ErrInvalidFormat       = wav.ErrInvalidFormat
	ErrUnsupportedBitDepth = wav.ErrUnsupportedBitDepth
	ErrInvalidDuration     = wav.ErrInvalidDuration
	ErrZeroCapacity        = wav.ErrZeroCapacity
	ErrCapacityOverflow    = wav.ErrCapacityOverflow
)

var (
	// ErrFileNotOpened is returned when writing without an open session.
	ErrFileNotOpened = fmt.Errorf("%w: file not opened", ErrRejectedWrite)
	// ErrEmptyPayload is returned when writing an empty buffer.
	ErrEmptyPayload = fmt.Errorf("%w: empty payload", ErrRejectedWrite)
	// ErrCapacityExhausted is returned once the declared length has been written.
	ErrCapacityExhausted = fmt.Errorf("%w: capacity exhausted", ErrRejectedWrite)

	errNilSink          = fmt.Errorf("%w: nil sink", ErrIO)
	errInvalidNilPacket = fmt.Errorf("%w: invalid nil packet", ErrRejectedWrite)
	errCodecBitDepth    = fmt.Errorf("%w: payload codec requires 16 bits per sample", ErrPrecondition)
)

func ioError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrIO, op, err)
}
