package utils

import (
	"image/color"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUtils_Math(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(2, Min(2, 5))
	assert.Equal(2, Min(5, 2))
	assert.Equal(5.5, Max(1.0, 5.5))
	assert.Equal(10, Clamp(12, 0, 10))
	assert.Equal(0, Clamp(-1, 0, 10))
	assert.Equal(1, NextPowerOfTwo(0))
	assert.Equal(64, NextPowerOfTwo(64))
	assert.Equal(128, NextPowerOfTwo(65))
	assert.Equal(3, CeilDiv(7, 3))
	assert.Equal(2, CeilDiv(6, 3))
}

func TestUtils_Names(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("arrow_left_2", SanitizeName("arrow left.2"))
	assert.Equal("uni0041", SanitizeName("uni0041"))
	assert.Equal("icon", Stem("/a/b/icon.svg"))
	assert.True(HasExtension("a/B.SVG", []string{".svg"}))
	assert.False(HasExtension("a/b.png", []string{".svg"}))
	assert.True(Contains([]string{"a", "b"}, "b"))
}

func TestUtils_HexToRGBA(t *testing.T) {
	testCases := []struct {
		in   string
		want color.NRGBA
	}{
		{"#fff", color.NRGBA{255, 255, 255, 255}},
		{"#2196f3", color.NRGBA{0x21, 0x96, 0xf3, 0xff}},
		{"2196f380", color.NRGBA{0x21, 0x96, 0xf3, 0x80}},
	}
	for _, tc := range testCases {
		got, err := HexToRGBA(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}

	_, err := HexToRGBA("#12")
	assert.Error(t, err)
	_, err = HexToRGBA("#zzzzzz")
	assert.Error(t, err)
}

func TestUtils_FormatTime(t *testing.T) {
	assert.Equal(t, "1.50s", FormatTime(1500*time.Millisecond))
	assert.Equal(t, "2m 3.00s", FormatTime(2*time.Minute+3*time.Second))
	assert.Equal(t, "1h 1m 0.00s", FormatTime(time.Hour+time.Minute))
	assert.Equal(t, "1 file", Plural(1, "file"))
	assert.Equal(t, "3 files", Plural(3, "file"))
}
