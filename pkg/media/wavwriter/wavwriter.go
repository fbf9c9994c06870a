// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// Package wavwriter implements a bounded WAV (RIFF PCM) writer.
//
// The total payload length is declared when a session is opened and the
// header is written immediately; it is never patched. Writes past the
// declared length are truncated, and closing a session early pads the
// payload with silence, so the emitted stream always matches its header.
// The sink is only ever appended to.
//
// A WavWriter is not safe for concurrent use.
package wavwriter

import (
	"errors"
	"io"
	"os"

	"github.com/pion/logging"
	"github.com/pion/rtp"
	"github.com/pion/wavesaver/pkg/media"
	"github.com/pion/wavesaver/pkg/media/wav"
)

var (
	_ media.Writer   = (*WavWriter)(nil)
	_ io.WriteCloser = (*WavWriter)(nil)
)

// silence is the zero buffer padding is written from.
var silence [4096]byte

type flusher interface {
	Flush() error
}

// Stats describes the current session, or the last one once it is closed.
type Stats struct {
	// Capacity is the payload length declared in the header.
	Capacity uint32
	// Supplied counts every byte passed to Write, truncated or not.
	Supplied uint64
	// Written counts payload bytes that reached the sink, excluding padding.
	Written uint32
	// Truncated counts supplied bytes dropped because capacity was reached.
	Truncated uint64
	// Padded counts silence bytes appended on close.
	Padded uint32
	// AutoClosed is set when the session closed because capacity was reached.
	AutoClosed bool
}

// WavWriter writes PCM samples to a WAV container of fixed length.
type WavWriter struct {
	stream   io.Writer
	closer   io.Closer
	format   wav.Format
	capacity uint32
	written  uint32
	codec    PayloadCodec
	stats    Stats
	log      logging.LeveledLogger
}

// NewWriter builds a WavWriter with no open session.
func NewWriter(opts ...Option) (*WavWriter, error) {
	writer := &WavWriter{}
	for _, opt := range opts {
		if err := opt(writer); err != nil {
			return nil, err
		}
	}
	if writer.log == nil {
		writer.log = logging.NewDefaultLoggerFactory().NewLogger("wavwriter")
	}

	return writer, nil
}

// New builds a WavWriter and opens a session on fileName.
func New(fileName string, format wav.Format, durationSeconds int, opts ...Option) (*WavWriter, error) {
	writer, err := NewWriter(opts...)
	if err != nil {
		return nil, err
	}
	if err := writer.Open(fileName, format, durationSeconds); err != nil {
		return nil, err
	}

	return writer, nil
}

// NewWith builds a WavWriter and opens a session on out.
func NewWith(out io.Writer, format wav.Format, durationSeconds int, opts ...Option) (*WavWriter, error) {
	writer, err := NewWriter(opts...)
	if err != nil {
		return nil, err
	}
	if err := writer.OpenWith(out, format, durationSeconds); err != nil {
		return nil, err
	}

	return writer, nil
}

// Open closes the current session, if any, then creates fileName and writes
// a header declaring durationSeconds of audio in format.
func (w *WavWriter) Open(fileName string, format wav.Format, durationSeconds int) error {
	if err := w.Close(); err != nil {
		return err
	}

	capacity, err := w.prepare(format, durationSeconds)
	if err != nil {
		return err
	}

	f, err := os.Create(fileName) //nolint:gosec
	if err != nil {
		return ioError("create", err)
	}

	return w.begin(f, f, format, capacity)
}

// OpenWith closes the current session, if any, then starts a new one on out.
// If out is an io.Closer it is closed together with the session.
func (w *WavWriter) OpenWith(out io.Writer, format wav.Format, durationSeconds int) error {
	if err := w.Close(); err != nil {
		return err
	}
	if out == nil {
		return errNilSink
	}

	capacity, err := w.prepare(format, durationSeconds)
	if err != nil {
		return err
	}

	closer, _ := out.(io.Closer)

	return w.begin(out, closer, format, capacity)
}

func (w *WavWriter) prepare(format wav.Format, durationSeconds int) (uint32, error) {
	if w.log == nil {
		w.log = logging.NewDefaultLoggerFactory().NewLogger("wavwriter")
	}
	if w.codec != PayloadCodecRaw && format.BitsPerSample != 16 {
		return 0, errCodecBitDepth
	}

	return wav.Capacity(format, durationSeconds)
}

func (w *WavWriter) begin(stream io.Writer, closer io.Closer, format wav.Format, capacity uint32) error {
	header := wav.Header{Format: format, DataSize: capacity}
	if _, err := stream.Write(header.Marshal()); err != nil {
		if closer != nil {
			_ = closer.Close()
		}

		return ioError("write header", err)
	}

	w.stream = stream
	w.closer = closer
	w.format = format
	w.capacity = capacity
	w.written = 0
	w.stats = Stats{Capacity: capacity}

	w.log.Debugf("opened session: %d bytes, %d Hz, %d channel(s), %d bit",
		capacity, format.SampleRate, format.Channels, format.BitsPerSample)

	return nil
}

// Write appends PCM bytes to the payload. Data beyond the declared capacity
// is dropped and the session closes once capacity is reached. The full
// len(p) is reported as written whenever any of it was accepted.
func (w *WavWriter) Write(p []byte) (int, error) {
	if w.stream == nil {
		return 0, ErrFileNotOpened
	}
	if len(p) == 0 {
		return 0, ErrEmptyPayload
	}

	remaining := w.capacity - w.written
	if remaining == 0 {
		return 0, ErrCapacityExhausted
	}

	n := len(p)
	if uint64(n) > uint64(remaining) {
		n = int(remaining)
	}

	if _, err := w.stream.Write(p[:n]); err != nil {
		w.abort()

		return 0, ioError("write", err)
	}

	w.written += uint32(n)
	w.stats.Supplied += uint64(len(p))
	w.stats.Written = w.written
	if dropped := len(p) - n; dropped > 0 {
		w.stats.Truncated += uint64(dropped)
		w.log.Warnf("capacity reached, dropping %d bytes", dropped)
	}

	if w.written >= w.capacity {
		w.stats.AutoClosed = true
		if err := w.Close(); err != nil {
			return len(p), err
		}
	}

	return len(p), nil
}

// WriteRTP decodes the packet payload with the configured PayloadCodec and
// writes it. Empty payloads are ignored.
func (w *WavWriter) WriteRTP(packet *rtp.Packet) error {
	if w.stream == nil {
		return ErrFileNotOpened
	}
	if packet == nil {
		return errInvalidNilPacket
	}

	pcm := w.codec.decode(packet.Payload)
	if len(pcm) == 0 {
		return nil
	}

	_, err := w.Write(pcm)

	return err
}

// Close pads the payload with silence up to the declared length and releases
// the sink. Closing a closed writer is a no-op.
func (w *WavWriter) Close() error {
	if w.stream == nil {
		// Returns no error as it may be convenient to call
		// Close() multiple times
		return nil
	}
	defer w.reset()

	var errs []error
	if shortfall := w.capacity - w.written; shortfall > 0 {
		if err := writeSilence(w.stream, shortfall); err != nil {
			errs = append(errs, ioError("pad", err))
		} else {
			w.stats.Padded = shortfall
			w.log.Debugf("padded %d bytes of silence", shortfall)
		}
	}
	if f, ok := w.stream.(flusher); ok {
		if err := f.Flush(); err != nil {
			errs = append(errs, ioError("flush", err))
		}
	}
	if w.closer != nil {
		if err := w.closer.Close(); err != nil {
			errs = append(errs, ioError("close", err))
		}
	}

	err := errors.Join(errs...)
	if err != nil {
		w.log.Errorf("failed to finalize session: %v", err)
	}

	return err
}

// abort releases the sink without padding after a failed write.
func (w *WavWriter) abort() {
	if w.closer != nil {
		if err := w.closer.Close(); err != nil {
			w.log.Errorf("failed to close sink: %v", err)
		}
	}
	w.reset()
}

func (w *WavWriter) reset() {
	w.stream = nil
	w.closer = nil
	w.capacity = 0
	w.written = 0
}

func writeSilence(out io.Writer, n uint32) error {
	for n > 0 {
		chunk := uint32(len(silence))
		if n < chunk {
			chunk = n
		}
		if _, err := out.Write(silence[:chunk]); err != nil {
			return err
		}
		n -= chunk
	}

	return nil
}

// IsOpen reports whether a session is open.
func (w *WavWriter) IsOpen() bool {
	return w.stream != nil
}

// Format returns the format of the current or last session.
func (w *WavWriter) Format() wav.Format {
	return w.format
}

// Capacity returns the declared payload length, zero when closed.
func (w *WavWriter) Capacity() uint32 {
	return w.capacity
}

// Written returns the payload bytes written so far, zero when closed.
func (w *WavWriter) Written() uint32 {
	return w.written
}

// Remaining returns how many payload bytes can still be written.
func (w *WavWriter) Remaining() uint32 {
	return w.capacity - w.written
}

// Stats returns a snapshot of the current or last session.
func (w *WavWriter) Stats() Stats {
	return w.stats
}
