package dht

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"
)

// ExtractBits converts a capture window into bits. The handshake edges are
// dropped; then every pair of consecutive edges ending on a falling edge
// measures one high pulse, which is a 1 if it lasted longer than threshold
// and a 0 otherwise. Pairs ending on a rising edge are skipped.
func ExtractBits(w CaptureWindow, threshold time.Duration) []int {
	if len(w) <= HandshakeEdges {
		return nil
	}
	data := w[HandshakeEdges:]
	bits := make([]int, 0, DataBits)
	for i := 1; i < len(data); i++ {
		if data[i].Edge != gpio.FallingEdge {
			continue
		}
		if data[i].Time.Sub(data[i-1].Time) > threshold {
			bits = append(bits, 1)
		} else {
			bits = append(bits, 0)
		}
	}
	return bits
}

// PackNibbles groups bits by four, most significant first. A short trailing
// group keeps the weights of the positions it has.
func PackNibbles(bits []int) []int {
	nibbles := make([]int, 0, (len(bits)+3)/4)
	for i := 0; i < len(bits); i += 4 {
		var n int
		for j := 0; j < 4 && i+j < len(bits); j++ {
			n += bits[i+j] << (3 - j)
		}
		nibbles = append(nibbles, n)
	}
	return nibbles
}

// PackBytes combines nibble pairs as high*16 + low. A lone trailing nibble is
// kept as its own value.
func PackBytes(nibbles []int) []int {
	values := make([]int, 0, (len(nibbles)+1)/2)
	for i := 0; i < len(nibbles); i += 2 {
		if i+1 == len(nibbles) {
			values = append(values, nibbles[i])
			break
		}
		values = append(values, nibbles[i]<<4+nibbles[i+1])
	}
	return values
}

// Decode turns a capture window into byte values. When the window does not
// hold a whole number of bytes the packed values are still returned, along
// with ErrFrameLength.
func Decode(w CaptureWindow, threshold time.Duration) ([]int, error) {
	if len(w) < HandshakeEdges {
		return nil, fmt.Errorf("%w: %d edges, handshake incomplete", ErrFrameLength, len(w))
	}
	bits := ExtractBits(w, threshold)
	values := PackBytes(PackNibbles(bits))
	if len(bits)%8 != 0 {
		return values, fmt.Errorf("%w: %d bits is not a whole number of bytes", ErrFrameLength, len(bits))
	}
	return values, nil
}
