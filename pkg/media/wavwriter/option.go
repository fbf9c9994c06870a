// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package wavwriter

import (
	"encoding/binary"

	"github.com/pion/logging"
	"github.com/pion/wavesaver/pkg/media/g711"
)

// Option configures a WavWriter.
type Option func(*WavWriter) error

// WithLoggerFactory sets the factory the writer's logger is created from.
func WithLoggerFactory(factory logging.LoggerFactory) Option {
	return func(w *WavWriter) error {
		w.log = factory.NewLogger("wavwriter")

		return nil
	}
}

// PayloadCodec selects how WriteRTP turns a packet payload into PCM.
type PayloadCodec int

const (
	// PayloadCodecRaw writes payloads unchanged; they must already be
	// little-endian PCM in the session's format.
	PayloadCodecRaw PayloadCodec = iota
	// PayloadCodecL16 converts RFC 3551 big-endian 16-bit samples.
	PayloadCodecL16
	// PayloadCodecPCMU expands G.711 µ-law to 16-bit PCM.
	PayloadCodecPCMU
	// PayloadCodecPCMA expands G.711 A-law to 16-bit PCM.
	PayloadCodecPCMA
)

func (c PayloadCodec) String() string {
	switch c {
	case PayloadCodecRaw:
		return "raw"
	case PayloadCodecL16:
		return "L16"
	case PayloadCodecPCMU:
		return "PCMU"
	case PayloadCodecPCMA:
		return "PCMA"
	default:
		return "unknown"
	}
}

func (c PayloadCodec) decode(payload []byte) []byte {
	switch c {
	case PayloadCodecL16:
		out := make([]byte, len(payload)&^1)
		for i := 0; i+1 < len(payload); i += 2 {
			binary.LittleEndian.PutUint16(out[i:], binary.BigEndian.Uint16(payload[i:]))
		}

		return out
	case PayloadCodecPCMU:
		return g711.DecodeUlaw(payload)
	case PayloadCodecPCMA:
		return g711.DecodeAlaw(payload)
	default:
		return payload
	}
}

// WithPayloadCodec sets the payload codec used by WriteRTP.
func WithPayloadCodec(codec PayloadCodec) Option {
	return func(w *WavWriter) error {
		w.codec = codec

		return nil
	}
}
