// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package wavwriter

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/pion/randutil"
	"github.com/pion/rtp"
	"github.com/pion/wavesaver/pkg/media/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errSinkFailure = errors.New("sink failure")

// monoFormat is 8 kHz mono 16 bit, 16000 bytes per second.
func monoFormat() wav.Format {
	return wav.NewPCMFormat(1, 8000, 16)
}

func payload(n int, value byte) []byte {
	return bytes.Repeat([]byte{value}, n)
}

type closingBuffer struct {
	bytes.Buffer
	closed int
}

func (c *closingBuffer) Close() error {
	c.closed++

	return nil
}

// failingSink accepts `budget` bytes and then fails every write.
type failingSink struct {
	budget int
}

func (f *failingSink) Write(p []byte) (int, error) {
	if len(p) > f.budget {
		return 0, errSinkFailure
	}
	f.budget -= len(p)

	return len(p), nil
}

func TestWavWriter_Header(t *testing.T) {
	buf := &bytes.Buffer{}
	writer, err := NewWith(buf, monoFormat(), 1)
	require.NoError(t, err)

	assert.True(t, writer.IsOpen())
	assert.EqualValues(t, 16000, writer.Capacity())
	assert.EqualValues(t, 0, writer.Written())
	assert.Equal(t, wav.HeaderSize, buf.Len(), "only the header must be written on open")

	var header wav.Header
	require.NoError(t, header.Unmarshal(buf.Bytes()))
	assert.Equal(t, monoFormat(), header.Format)
	assert.EqualValues(t, 16000, header.DataSize)
	assert.EqualValues(t, 16038, header.ChunkSize())
	assert.Equal(t, []byte("fmt "), buf.Bytes()[12:16])
}

func TestWavWriter_TruncateAndAutoClose(t *testing.T) {
	buf := &bytes.Buffer{}
	writer, err := NewWith(buf, monoFormat(), 1)
	require.NoError(t, err)

	n, err := writer.Write(payload(20000, 0x11))
	assert.NoError(t, err, "truncation is not an error")
	assert.Equal(t, 20000, n)

	assert.False(t, writer.IsOpen(), "reaching capacity must close the session")
	assert.Equal(t, wav.HeaderSize+16000, buf.Len())
	assert.Equal(t, payload(16000, 0x11), buf.Bytes()[wav.HeaderSize:])

	stats := writer.Stats()
	assert.True(t, stats.AutoClosed)
	assert.EqualValues(t, 4000, stats.Truncated)
	assert.EqualValues(t, 0, stats.Padded)

	_, err = writer.Write(payload(10, 0x11))
	assert.ErrorIs(t, err, ErrFileNotOpened)
	assert.Equal(t, wav.HeaderSize+16000, buf.Len())
}

func TestWavWriter_PadOnClose(t *testing.T) {
	buf := &bytes.Buffer{}
	writer, err := NewWith(buf, monoFormat(), 1)
	require.NoError(t, err)

	_, err = writer.Write(payload(4000, 0x22))
	assert.NoError(t, err)
	assert.EqualValues(t, 4000, writer.Written())
	assert.EqualValues(t, 12000, writer.Remaining())
	assert.NoError(t, writer.Close())

	assert.Equal(t, wav.HeaderSize+16000, buf.Len())
	assert.Equal(t, payload(4000, 0x22), buf.Bytes()[wav.HeaderSize:wav.HeaderSize+4000])
	assert.Equal(t, make([]byte, 12000), buf.Bytes()[wav.HeaderSize+4000:])

	stats := writer.Stats()
	assert.False(t, stats.AutoClosed)
	assert.EqualValues(t, 12000, stats.Padded)
	assert.EqualValues(t, 4000, stats.Written)
}

func TestWavWriter_CloseWithoutData(t *testing.T) {
	buf := &bytes.Buffer{}
	writer, err := NewWith(buf, wav.NewPCMFormat(2, 11025, 8), 2)
	require.NoError(t, err)
	assert.NoError(t, writer.Close())

	assert.Equal(t, wav.HeaderSize+44100, buf.Len())
	assert.Equal(t, make([]byte, 44100), buf.Bytes()[wav.HeaderSize:])
}

func TestWavWriter_Rejections(t *testing.T) {
	closed, err := NewWriter()
	require.NoError(t, err)

	for _, test := range []struct {
		message string
		writer  func(*testing.T) *WavWriter
		data    []byte
		err     error
	}{
		{
			message: "WavWriter shouldn't be able to write without a session",
			writer:  func(*testing.T) *WavWriter { return closed },
			data:    payload(4, 1),
			err:     ErrFileNotOpened,
		},
		{
			message: "WavWriter shouldn't be able to write a nil buffer",
			writer:  openMono,
			data:    nil,
			err:     ErrEmptyPayload,
		},
		{
			message: "WavWriter shouldn't be able to write an empty buffer",
			writer:  openMono,
			data:    []byte{},
			err:     ErrEmptyPayload,
		},
		{
			message: "WavWriter shouldn't be able to write past capacity",
			writer: func(t *testing.T) *WavWriter {
				t.Helper()
				writer := openMono(t)
				writer.written = writer.capacity

				return writer
			},
			data: payload(4, 1),
			err:  ErrCapacityExhausted,
		},
	} {
		writer := test.writer(t)
		written := writer.Written()

		n, err := writer.Write(test.data)
		assert.ErrorIs(t, err, test.err, test.message)
		assert.ErrorIs(t, err, ErrRejectedWrite, test.message)
		assert.Zero(t, n, test.message)
		assert.Equal(t, written, writer.Written(), test.message)
	}
}

func openMono(t *testing.T) *WavWriter {
	t.Helper()

	writer, err := NewWith(&bytes.Buffer{}, monoFormat(), 1)
	require.NoError(t, err)

	return writer
}

func TestWavWriter_CloseIdempotent(t *testing.T) {
	buf := &closingBuffer{}
	writer, err := NewWith(buf, monoFormat(), 1)
	require.NoError(t, err)

	_, err = writer.Write(payload(100, 1))
	require.NoError(t, err)

	assert.NoError(t, writer.Close())
	snapshot := append([]byte(nil), buf.Bytes()...)
	stats := writer.Stats()

	assert.NoError(t, writer.Close(), "WavWriter should be able to close an already closed writer")
	assert.Equal(t, snapshot, buf.Bytes())
	assert.Equal(t, stats, writer.Stats())
	assert.Equal(t, 1, buf.closed, "sink must be released exactly once")
	assert.False(t, writer.IsOpen())
	assert.Zero(t, writer.Capacity())
	assert.Zero(t, writer.Written())
}

func TestWavWriter_ReopenFinalizesPrevious(t *testing.T) {
	first := &closingBuffer{}
	writer, err := NewWith(first, monoFormat(), 1)
	require.NoError(t, err)

	_, err = writer.Write(payload(10, 7))
	require.NoError(t, err)

	second := &closingBuffer{}
	require.NoError(t, writer.OpenWith(second, wav.NewPCMFormat(1, 8000, 8), 3))

	assert.Equal(t, 1, first.closed)
	assert.Equal(t, wav.HeaderSize+16000, first.Len())
	assert.Equal(t, make([]byte, 15990), first.Bytes()[wav.HeaderSize+10:])

	assert.Equal(t, 0, second.closed)
	assert.Equal(t, wav.HeaderSize, second.Len())
	assert.EqualValues(t, 24000, writer.Capacity())
	assert.EqualValues(t, 24000, writer.Stats().Capacity)
}

func TestWavWriter_Preconditions(t *testing.T) {
	for _, test := range []struct {
		name    string
		format  wav.Format
		seconds int
		err     error
	}{
		{"non PCM", wav.Format{FormatTag: 3, Channels: 1, SampleRate: 8000, AvgBytesPerSec: 32000, BlockAlign: 4, BitsPerSample: 32}, 1, ErrInvalidFormat},
		{"24 bit", wav.NewPCMFormat(1, 8000, 24), 1, ErrUnsupportedBitDepth},
		{"zero seconds", monoFormat(), 0, ErrInvalidDuration},
		{"negative seconds", monoFormat(), -1, ErrInvalidDuration},
		{"zero byte rate", wav.NewPCMFormat(1, 0, 16), 1, ErrZeroCapacity},
		{"block align overflow", wav.NewPCMFormat(65535, 100000, 16), 1, ErrInvalidFormat},
	} {
		test := test
		t.Run(test.name, func(t *testing.T) {
			previous := &closingBuffer{}
			writer, err := NewWith(previous, monoFormat(), 1)
			require.NoError(t, err)

			err = writer.OpenWith(&bytes.Buffer{}, test.format, test.seconds)
			assert.ErrorIs(t, err, test.err)
			assert.ErrorIs(t, err, ErrPrecondition)
			assert.False(t, writer.IsOpen(), "a failed open leaves the writer closed")
			assert.Equal(t, 1, previous.closed)
			assert.Equal(t, wav.HeaderSize+16000, previous.Len())

			_, err = NewWith(&bytes.Buffer{}, test.format, test.seconds)
			assert.ErrorIs(t, err, test.err)
		})
	}
}

func TestWavWriter_IOErrors(t *testing.T) {
	_, err := NewWith(nil, monoFormat(), 1)
	assert.ErrorIs(t, err, ErrIO)

	_, err = NewWith(&failingSink{budget: 10}, monoFormat(), 1)
	assert.ErrorIs(t, err, ErrIO)
	assert.ErrorIs(t, err, errSinkFailure)

	writer, err := NewWith(&failingSink{budget: wav.HeaderSize}, monoFormat(), 1)
	require.NoError(t, err)

	n, err := writer.Write(payload(10, 1))
	assert.ErrorIs(t, err, ErrIO)
	assert.Zero(t, n)
	assert.False(t, writer.IsOpen(), "a failed write releases the sink")

	writer, err = NewWith(&failingSink{budget: wav.HeaderSize + 10}, monoFormat(), 1)
	require.NoError(t, err)
	_, err = writer.Write(payload(10, 1))
	require.NoError(t, err)
	assert.ErrorIs(t, writer.Close(), ErrIO, "padding failure must be reported")
	assert.False(t, writer.IsOpen())

	_, err = New(filepath.Join(t.TempDir(), "missing", "out.wav"), monoFormat(), 1)
	assert.ErrorIs(t, err, ErrIO)
}

func TestWavWriter_File(t *testing.T) {
	fileName := filepath.Join(t.TempDir(), "out.wav")

	writer, err := New(fileName, monoFormat(), 2)
	require.NoError(t, err)

	// The header and every accepted write reach the file immediately.
	info, err := os.Stat(fileName)
	require.NoError(t, err)
	assert.EqualValues(t, wav.HeaderSize, info.Size())

	_, err = writer.Write(payload(1000, 3))
	require.NoError(t, err)

	info, err = os.Stat(fileName)
	require.NoError(t, err)
	assert.EqualValues(t, wav.HeaderSize+1000, info.Size())
	require.NoError(t, writer.Close())

	data, err := os.ReadFile(fileName) //nolint:gosec
	require.NoError(t, err)
	assert.Len(t, data, wav.HeaderSize+32000)
	assert.Equal(t, payload(1000, 3), data[wav.HeaderSize:wav.HeaderSize+1000])

	// Reopening the same writer on a second file leaves the first untouched.
	second := filepath.Join(t.TempDir(), "second.wav")
	require.NoError(t, writer.Open(second, monoFormat(), 1))
	require.NoError(t, writer.Close())

	info, err = os.Stat(second)
	require.NoError(t, err)
	assert.EqualValues(t, wav.HeaderSize+16000, info.Size())
}

// The write cursor is clamped to the bytes that reached the sink. A write
// that is truncated always fills the payload, so the session closes in the
// same call and the requested overshoot only shows up in Stats.Truncated.
func TestWavWriter_CursorClampedOnTruncation(t *testing.T) {
	buf := &bytes.Buffer{}
	writer, err := NewWith(buf, monoFormat(), 1)
	require.NoError(t, err)

	_, err = writer.Write(payload(15000, 1))
	require.NoError(t, err)
	assert.EqualValues(t, 15000, writer.Written())

	_, err = writer.Write(payload(3000, 2))
	require.NoError(t, err)

	stats := writer.Stats()
	assert.EqualValues(t, 16000, stats.Written, "cursor never exceeds capacity")
	assert.EqualValues(t, 18000, stats.Supplied)
	assert.EqualValues(t, 2000, stats.Truncated)
	assert.True(t, stats.AutoClosed)
	assert.Equal(t, wav.HeaderSize+16000, buf.Len())
	assert.Equal(t, payload(1000, 2), buf.Bytes()[wav.HeaderSize+15000:])
}

func TestWavWriter_ExactLengthProperty(t *testing.T) {
	rng := randutil.NewMathRandomGenerator()
	format := wav.NewPCMFormat(1, 4000, 8)

	for i := 0; i < 50; i++ {
		buf := &bytes.Buffer{}
		writer, err := NewWith(buf, format, 1+rng.Intn(3))
		require.NoError(t, err)
		capacity := int(writer.Capacity())

		supplied := rng.Intn(2 * capacity)
		for supplied > 0 && writer.IsOpen() {
			chunk := 1 + rng.Intn(1500)
			if chunk > supplied {
				chunk = supplied
			}
			_, err = writer.Write(payload(chunk, 0x7f))
			require.NoError(t, err)
			supplied -= chunk
		}
		require.NoError(t, writer.Close())

		assert.Equal(t, wav.HeaderSize+capacity, buf.Len())
		stats := writer.Stats()
		assert.EqualValues(t, capacity, int(stats.Written)+int(stats.Padded))
	}
}

func TestWavWriter_CopyFrom(t *testing.T) {
	buf := &bytes.Buffer{}
	writer, err := NewWith(buf, monoFormat(), 1)
	require.NoError(t, err)

	n, err := io.Copy(writer, bytes.NewReader(payload(64000, 5)))
	assert.NoError(t, err)
	assert.EqualValues(t, 64000, n)
	assert.Equal(t, wav.HeaderSize+16000, buf.Len())
}

func TestWavWriter_FlushesBufferedSink(t *testing.T) {
	buf := &bytes.Buffer{}
	sink := bufio.NewWriter(buf)

	writer, err := NewWith(sink, monoFormat(), 1)
	require.NoError(t, err)
	_, err = writer.Write(payload(100, 1))
	require.NoError(t, err)
	assert.Zero(t, buf.Len(), "a caller supplied buffer is only flushed on close")

	require.NoError(t, writer.Close())
	assert.Equal(t, wav.HeaderSize+16000, buf.Len())
}

func TestWavWriter_WriteRTP(t *testing.T) {
	for _, test := range []struct {
		codec    PayloadCodec
		payload  []byte
		expected []byte
	}{
		{PayloadCodecRaw, []byte{0x01, 0x02}, []byte{0x01, 0x02}},
		{PayloadCodecL16, []byte{0x01, 0x02, 0x03, 0x04, 0x05}, []byte{0x02, 0x01, 0x04, 0x03}},
		{PayloadCodecPCMU, []byte{0xff, 0x80}, []byte{0x00, 0x00, 0x7c, 0x7d}},
		{PayloadCodecPCMA, []byte{0xd5}, []byte{0x08, 0x00}},
	} {
		buf := &bytes.Buffer{}
		writer, err := NewWith(buf, monoFormat(), 1, WithPayloadCodec(test.codec))
		require.NoError(t, err)

		assert.NoError(t, writer.WriteRTP(&rtp.Packet{Payload: test.payload}), test.codec.String())
		assert.Equal(t, test.expected, buf.Bytes()[wav.HeaderSize:], test.codec.String())

		assert.NoError(t, writer.WriteRTP(&rtp.Packet{}), "empty payloads are ignored")
		assert.Equal(t, errInvalidNilPacket, writer.WriteRTP(nil))
		assert.NoError(t, writer.Close())
		assert.ErrorIs(t, writer.WriteRTP(&rtp.Packet{Payload: test.payload}), ErrFileNotOpened)
	}
}

func TestWavWriter_CodecRequires16Bit(t *testing.T) {
	_, err := NewWith(&bytes.Buffer{}, wav.NewPCMFormat(1, 8000, 8), 1, WithPayloadCodec(PayloadCodecPCMU))
	assert.ErrorIs(t, err, errCodecBitDepth)
	assert.ErrorIs(t, err, ErrPrecondition)
}
