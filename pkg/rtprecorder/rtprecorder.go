// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// Package rtprecorder records an RTP audio stream received over UDP into a
// media.Writer.
package rtprecorder

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/pion/logging"
	"github.com/pion/rtp"
	"github.com/pion/wavesaver/pkg/media"
)

const receiveMTU = 1500

var (
	errNilConn   = errors.New("packet conn is nil")
	errNilWriter = errors.New("writer is nil")
)

// Option configures a Recorder.
type Option func(*Recorder) error

// WithLoggerFactory sets the factory the recorder's logger is created from.
func WithLoggerFactory(factory logging.LoggerFactory) Option {
	return func(r *Recorder) error {
		r.log = factory.NewLogger("rtprecorder")

		return nil
	}
}

// WithPayloadTypes restricts recording to packets of the given payload types.
func WithPayloadTypes(payloadTypes ...uint8) Option {
	return func(r *Recorder) error {
		for _, pt := range payloadTypes {
			r.payloadTypes[pt] = struct{}{}
		}

		return nil
	}
}

// Stats counts what a Recorder did with the packets it received.
type Stats struct {
	Written   uint64
	Malformed uint64
	Filtered  uint64
	Late      uint64
}

// Recorder reads RTP packets from a PacketConn and writes them in order.
// It locks onto the first SSRC it sees and drops duplicate or late packets.
type Recorder struct {
	conn         net.PacketConn
	writer       media.Writer
	payloadTypes map[uint8]struct{}
	log          logging.LeveledLogger

	ssrc    uint32
	lastSeq uint16
	started bool
	stats   Stats
}

// New builds a Recorder reading from conn into writer.
func New(conn net.PacketConn, writer media.Writer, opts ...Option) (*Recorder, error) {
	if conn == nil {
		return nil, errNilConn
	}
	if writer == nil {
		return nil, errNilWriter
	}

	r := &Recorder{
		conn:         conn,
		writer:       writer,
		payloadTypes: map[uint8]struct{}{},
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	if r.log == nil {
		r.log = logging.NewDefaultLoggerFactory().NewLogger("rtprecorder")
	}

	return r, nil
}

// Run records until the writer is full, ctx is done or conn is closed. It
// returns nil when the writer filled up or conn was closed, and ctx.Err()
// on cancellation. Run does not close the writer or conn.
func (r *Recorder) Run(ctx context.Context) error {
	done := make(chan struct{})
	defer close(done)

	go func() {
		select {
		case <-ctx.Done():
			// unblock ReadFrom
			_ = r.conn.SetReadDeadline(time.Now())
		case <-done:
		}
	}()

	buf := make([]byte, receiveMTU)
	for {
		n, _, err := r.conn.ReadFrom(buf)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if errors.Is(err, net.ErrClosed) {
				return nil
			}

			return err
		}

		packet := &rtp.Packet{}
		if err := packet.Unmarshal(buf[:n]); err != nil {
			r.stats.Malformed++
			r.log.Warnf("dropping malformed packet: %v", err)

			continue
		}
		if !r.accept(packet) {
			continue
		}

		if err := r.writer.WriteRTP(packet); err != nil {
			return err
		}
		r.stats.Written++

		if o, ok := r.writer.(interface{ IsOpen() bool }); ok && !o.IsOpen() {
			r.log.Infof("writer is full after %d packets", r.stats.Written)

			return nil
		}
	}
}

func (r *Recorder) accept(packet *rtp.Packet) bool {
	if len(r.payloadTypes) > 0 {
		if _, ok := r.payloadTypes[packet.PayloadType]; !ok {
			r.stats.Filtered++

			return false
		}
	}

	if !r.started {
		r.started = true
		r.ssrc = packet.SSRC
		r.lastSeq = packet.SequenceNumber
		r.log.Debugf("recording SSRC %d, payload type %d", packet.SSRC, packet.PayloadType)

		return true
	}

	if packet.SSRC != r.ssrc {
		r.stats.Filtered++

		return false
	}

	if diff := int16(packet.SequenceNumber - r.lastSeq); diff <= 0 {
		r.stats.Late++
		r.log.Tracef("dropping late packet %d", packet.SequenceNumber)

		return false
	}
	r.lastSeq = packet.SequenceNumber

	return true
}

// Stats returns the recorder's packet counters. It must not be called
// concurrently with Run.
func (r *Recorder) Stats() Stats {
	return r.stats
}
