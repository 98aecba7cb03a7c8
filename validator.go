package dht

import "fmt"

// Checksum is the low 8 bits of the sum of the four data bytes.
func Checksum(hHigh, hLow, tHigh, tLow int) int {
	return (hHigh + hLow + tHigh + tLow) & 0xff
}

// Validate checks a decoded frame and, when it is sound, returns the reading
// it carries. fields must be humidity high and low, temperature high and low,
// then the checksum.
func Validate(fields []int) (Reading, error) {
	if len(fields) != FrameBytes {
		return Reading{}, fmt.Errorf("%w: got %d fields, want %d", ErrFrameLength, len(fields), FrameBytes)
	}
	for i, f := range fields {
		if f < 0 || f > 0xff {
			return Reading{}, fmt.Errorf("%w: field %d is %d, not a byte", ErrFrameLength, i, f)
		}
	}
	sum := Checksum(fields[0], fields[1], fields[2], fields[3])
	if fields[4] != sum {
		return Reading{}, fmt.Errorf("%w: frame %v carries %d, computed %d", ErrChecksum, fields, fields[4], sum)
	}
	return Reading{
		Humidity:    Deci(fields[0]*256 + fields[1]),
		Temperature: Deci(fields[2]*256 + fields[3]),
	}, nil
}
