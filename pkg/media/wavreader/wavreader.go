// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// Package wavreader implements a reader for WAV files produced by wavwriter
package wavreader

import (
	"errors"
	"io"
	"time"

	"github.com/pion/wavesaver/pkg/media/wav"
)

var (
	errNilStream = errors.New("stream is nil")
	errNilBuffer = errors.New("buffer is nil")
)

// WavReader reads the PCM payload following a WAV header.
type WavReader struct {
	stream    io.Reader
	remaining uint32
}

// NewWith parses the header from in and returns a reader positioned at the
// start of the payload.
func NewWith(in io.Reader) (*WavReader, *wav.Header, error) {
	if in == nil {
		return nil, nil, errNilStream
	}

	buf := make([]byte, wav.HeaderSize)
	if _, err := io.ReadFull(in, buf); err != nil {
		return nil, nil, err
	}

	header := &wav.Header{}
	if err := header.Unmarshal(buf); err != nil {
		return nil, nil, err
	}

	return &WavReader{stream: in, remaining: header.DataSize}, header, nil
}

// Read reads payload bytes. It returns io.EOF once the declared data size
// has been read and io.ErrUnexpectedEOF if the stream ends before that.
func (r *WavReader) Read(p []byte) (int, error) {
	if p == nil {
		return 0, errNilBuffer
	}
	if r.remaining == 0 {
		return 0, io.EOF
	}
	if uint64(len(p)) > uint64(r.remaining) {
		p = p[:r.remaining]
	}

	n, err := r.stream.Read(p)
	r.remaining -= uint32(n)
	if errors.Is(err, io.EOF) && r.remaining > 0 {
		return n, io.ErrUnexpectedEOF
	}
	if errors.Is(err, io.EOF) && n > 0 {
		err = nil
	}

	return n, err
}

// Remaining returns the payload bytes not read yet.
func (r *WavReader) Remaining() uint32 {
	return r.remaining
}

// Blocks returns the payload length in whole blocks (one sample per channel).
func Blocks(h *wav.Header) uint32 {
	if h.Format.BlockAlign == 0 {
		return 0
	}

	return h.DataSize / uint32(h.Format.BlockAlign)
}

// Duration returns the playback time the payload declared in h covers.
func Duration(h *wav.Header) time.Duration {
	if h.Format.AvgBytesPerSec == 0 {
		return 0
	}

	return time.Duration(h.DataSize) * time.Second / time.Duration(h.Format.AvgBytesPerSec)
}
