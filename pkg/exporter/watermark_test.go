package exporter

import (
	"strings"
	"testing"
)

func TestWatermarkRoundTrip(t *testing.T) {
	hexPrefix := "deadbeef01234567"
	// 64 bits need 64 visible characters.
	text := strings.Repeat("abcdefgh", 8)

	marked := Watermark(text, hexPrefix)
	if got := ExtractWatermark(marked); got != hexPrefix {
		t.Errorf("ExtractWatermark = %q, want %q", got, hexPrefix)
	}
	if got := StripWatermark(marked); got != text {
		t.Errorf("StripWatermark = %q, want original text", got)
	}
}

func TestWatermarkLongTextTailUnmarked(t *testing.T) {
	hexPrefix := "0123456789abcdef"
	text := strings.Repeat("x", 100)

	marked := Watermark(text, hexPrefix)
	// 64 marker runes exactly, no more.
	markers := 0
	for _, r := range marked {
		if r == markerZero || r == markerOne {
			markers++
		}
	}
	if markers != 64 {
		t.Errorf("marker count = %d, want 64", markers)
	}
	if got := ExtractWatermark(marked); got != hexPrefix {
		t.Errorf("ExtractWatermark = %q, want %q", got, hexPrefix)
	}
}

func TestWatermarkShortTextTruncates(t *testing.T) {
	marked := Watermark("abcd", "ffff000000000000")
	// Only 4 bits fit; they are the leading 1111 of the first digit.
	if got := ExtractWatermark(marked); got != "f" {
		t.Errorf("ExtractWatermark = %q, want truncated %q", got, "f")
	}
}

func TestWatermarkInvisibleInVisibleOrder(t *testing.T) {
	text := "hello world this text is long enough to carry some bits ok!"
	marked := Watermark(text, "00ff00ff00ff00ff")
	if StripWatermark(marked) != text {
		t.Error("visible character sequence changed by watermarking")
	}
}
