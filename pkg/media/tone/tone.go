// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// Package tone generates a sine test signal as interleaved 16-bit PCM
package tone

import (
	"encoding/binary"
	"errors"
	"io"
	"math"
	"time"

	"github.com/pion/wavesaver/pkg/media"
)

const (
	// DefaultFrequency is the pitch of the generated tone in Hz.
	DefaultFrequency = 440.0
	// DefaultAmplitude is the peak sample value.
	DefaultAmplitude = 10000
	// DefaultFrameSize is the number of samples per channel in each frame.
	DefaultFrameSize = 1152

	bytesPerSample = 2
)

var (
	errInvalidSampleRate = errors.New("sample rate must be positive")
	errInvalidChannels   = errors.New("channel count must be positive")
	errInvalidFrameSize  = errors.New("frame size must be positive")
	errInvalidAmplitude  = errors.New("amplitude must be within 0 and 32767")
	errInvalidFrameCount = errors.New("frame count must not be negative")
)

var _ media.SampleSource = (*Generator)(nil)

// Option configures a Generator.
type Option func(*Generator) error

// WithFrequency sets the tone frequency in Hz.
func WithFrequency(hz float64) Option {
	return func(g *Generator) error {
		g.frequency = hz

		return nil
	}
}

// WithAmplitude sets the peak sample value.
func WithAmplitude(amplitude int) Option {
	return func(g *Generator) error {
		if amplitude < 0 || amplitude > math.MaxInt16 {
			return errInvalidAmplitude
		}
		g.amplitude = float64(amplitude)

		return nil
	}
}

// WithFrameSize sets the number of samples per channel in each frame.
func WithFrameSize(samples int) Option {
	return func(g *Generator) error {
		if samples <= 0 {
			return errInvalidFrameSize
		}
		g.frameSize = samples

		return nil
	}
}

// WithFrameCount stops the generator after n frames. Zero means endless.
func WithFrameCount(n int) Option {
	return func(g *Generator) error {
		if n < 0 {
			return errInvalidFrameCount
		}
		g.frames = n

		return nil
	}
}

// Generator produces a sine tone frame by frame. Every channel carries the
// same sample.
type Generator struct {
	sampleRate int
	channels   int
	frequency  float64
	amplitude  float64
	frameSize  int
	frames     int
	produced   int

	t, tincr float64
	pending  []byte
}

// New builds a Generator for the given sample rate and channel count.
func New(sampleRate, channels int, opts ...Option) (*Generator, error) {
	if sampleRate <= 0 {
		return nil, errInvalidSampleRate
	}
	if channels <= 0 {
		return nil, errInvalidChannels
	}

	g := &Generator{
		sampleRate: sampleRate,
		channels:   channels,
		frequency:  DefaultFrequency,
		amplitude:  DefaultAmplitude,
		frameSize:  DefaultFrameSize,
	}
	for _, opt := range opts {
		if err := opt(g); err != nil {
			return nil, err
		}
	}
	g.tincr = 2 * math.Pi * g.frequency / float64(sampleRate)

	return g, nil
}

// NextSample returns the next frame, or io.EOF once the frame count is reached.
func (g *Generator) NextSample() (media.Sample, error) {
	if g.frames > 0 && g.produced >= g.frames {
		return media.Sample{}, io.EOF
	}

	data := make([]byte, g.frameSize*g.channels*bytesPerSample)
	for i := 0; i < g.frameSize; i++ {
		value := uint16(int16(math.Sin(g.t) * g.amplitude))
		for c := 0; c < g.channels; c++ {
			binary.LittleEndian.PutUint16(data[(i*g.channels+c)*bytesPerSample:], value)
		}
		g.t += g.tincr
	}
	g.produced++

	return media.Sample{
		Data:     data,
		Duration: time.Duration(g.frameSize) * time.Second / time.Duration(g.sampleRate),
	}, nil
}

// Read fills p with PCM, generating frames as needed.
func (g *Generator) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		if len(g.pending) == 0 {
			sample, err := g.NextSample()
			if err != nil {
				if n > 0 {
					return n, nil
				}

				return 0, err
			}
			g.pending = sample.Data
		}

		copied := copy(p[n:], g.pending)
		g.pending = g.pending[copied:]
		n += copied
	}

	return n, nil
}
