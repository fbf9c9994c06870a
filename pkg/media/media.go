// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// Package media provides media writers and sample sources
package media

import (
	"errors"
	"io"
	"time"

	"github.com/pion/rtp"
)

// ErrNotReady is returned by a SampleSource that has nothing to produce yet
// but has not terminated.
var ErrNotReady = errors.New("sample not ready")

// Sample contains media, and the duration it covers
type Sample struct {
	Data     []byte
	Duration time.Duration
}

// Writer defines an interface to handle
// the creation of media files
type Writer interface {
	// Add the content of an RTP packet to the media
	WriteRTP(packet *rtp.Packet) error
	// Close the media
	// Note: Close implementation must be idempotent
	Close() error
}

// SampleSource produces samples on demand. NextSample has three outcomes:
// a sample, ErrNotReady when the caller should come back later, or io.EOF
// once the source has terminated. Any other error is fatal.
type SampleSource interface {
	NextSample() (Sample, error)
}

// NSamples calculates the number of samples in a duration at the given clock rate
func NSamples(d time.Duration, clockRate int) uint32 {
	return uint32(time.Duration(clockRate) * d / time.Second)
}

// Drain writes every sample src can currently produce to dst and returns
// the number of bytes accepted by dst. The error is nil when src is merely
// not ready, io.EOF when it has terminated, or the first failure of either
// side.
func Drain(src SampleSource, dst io.Writer) (int64, error) {
	var total int64
	for {
		sample, err := src.NextSample()
		switch {
		case errors.Is(err, ErrNotReady):
			return total, nil
		case err != nil:
			return total, err
		}

		if len(sample.Data) == 0 {
			continue
		}

		n, err := dst.Write(sample.Data)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
}
