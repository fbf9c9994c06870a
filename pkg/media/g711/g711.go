// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// Package g711 expands ITU-T G.711 µ-law and A-law samples to 16-bit linear PCM
package g711

import "encoding/binary"

const (
	ulawBias = 0x84
	alawMask = 0x55
	signBit  = 0x80
)

// UlawToLinear expands a single µ-law byte.
func UlawToLinear(u byte) int16 {
	u = ^u
	t := (int32(u&0x0f) << 3) + ulawBias
	t <<= (u & 0x70) >> 4

	if u&signBit != 0 {
		return int16(ulawBias - t)
	}

	return int16(t - ulawBias)
}

// AlawToLinear expands a single A-law byte.
func AlawToLinear(a byte) int16 {
	a ^= alawMask
	t := int32(a&0x0f) << 4

	switch seg := (a & 0x70) >> 4; seg {
	case 0:
		t += 8
	case 1:
		t += 0x108
	default:
		t += 0x108
		t <<= seg - 1
	}

	// A-law stores positive values with the sign bit set
	if a&signBit != 0 {
		return int16(t)
	}

	return int16(-t)
}

// DecodeUlaw expands src into little-endian 16-bit PCM, two bytes per input byte.
func DecodeUlaw(src []byte) []byte {
	return decode(src, UlawToLinear)
}

// DecodeAlaw expands src into little-endian 16-bit PCM, two bytes per input byte.
func DecodeAlaw(src []byte) []byte {
	return decode(src, AlawToLinear)
}

func decode(src []byte, expand func(byte) int16) []byte {
	out := make([]byte, len(src)*2)
	for i, b := range src {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(expand(b)))
	}

	return out
}
