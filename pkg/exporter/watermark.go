package exporter

import (
	"fmt"
	"strings"
)

// Zero-width markers carrying one watermark bit each. Invisible in
// normal rendering.
const (
	markerZero = '​' // zero-width space
	markerOne  = '‍' // zero-width joiner
)

// WatermarkHexLen is the number of leading hex digits of the dataset
// hash embedded by Watermark: 16 digits, a 64-bit aligned prefix.
const WatermarkHexLen = 16

// Watermark interleaves one invisible marker after each visible
// character of text, spelling out the 4-bit binary expansion of each
// hex digit in watermarkHex. Once the bitstream is exhausted the
// remaining characters are emitted unmarked. This is a steganographic
// provenance tag; texts shorter than the bitstream carry a truncated
// tag.
func Watermark(text, watermarkHex string) string {
	var bits strings.Builder
	for _, ch := range watermarkHex {
		var v int
		if _, err := fmt.Sscanf(string(ch), "%x", &v); err != nil {
			continue
		}
		bits.WriteString(fmt.Sprintf("%04b", v))
	}
	bitstream := bits.String()

	var out strings.Builder
	out.Grow(len(text) + len(bitstream)*3)
	i := 0
	for _, ch := range text {
		out.WriteRune(ch)
		if i < len(bitstream) {
			if bitstream[i] == '0' {
				out.WriteRune(markerZero)
			} else {
				out.WriteRune(markerOne)
			}
			i++
		}
	}
	return out.String()
}

// ExtractWatermark recovers the embedded hex prefix from a watermarked
// text. It returns the recovered digits, which may be fewer than
// WatermarkHexLen when the text was too short to carry the full tag.
func ExtractWatermark(text string) string {
	var bits []byte
	for _, ch := range text {
		switch ch {
		case markerZero:
			bits = append(bits, '0')
		case markerOne:
			bits = append(bits, '1')
		}
	}

	var hexOut strings.Builder
	for i := 0; i+4 <= len(bits) && hexOut.Len() < WatermarkHexLen; i += 4 {
		v := 0
		for _, b := range bits[i : i+4] {
			v <<= 1
			if b == '1' {
				v |= 1
			}
		}
		fmt.Fprintf(&hexOut, "%x", v)
	}
	return hexOut.String()
}

// StripWatermark removes all marker characters, restoring the visible
// text.
func StripWatermark(text string) string {
	return strings.Map(func(r rune) rune {
		if r == markerZero || r == markerOne {
			return -1
		}
		return r
	}, text)
}
