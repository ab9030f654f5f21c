package bytesize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input string
		want  Size
	}{
		{"0", 0},
		{"1024", 1024},
		{"512B", 512},
		{"1KB", KB},
		{"1kb", KB},
		{"1KiB", KB},
		{"10MB", 10 * MB},
		{"10 MB", 10 * MB},
		{"  2gb  ", 2 * GB},
		{"1.5GB", Size(1.5 * float64(GB))},
		{"0.5m", 512 * KB},
		{"3T", 3 * TB},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, input := range []string{"", "   ", "MB", "ten MB", "10XB", "1..5GB", "-"} {
		t.Run(input, func(t *testing.T) {
			_, err := Parse(input)
			assert.Error(t, err)
		})
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		size Size
		want string
	}{
		{0, "0B"},
		{512, "512B"},
		{KB, "1KB"},
		{10 * MB, "10MB"},
		{Size(1.5 * float64(GB)), "1.5GB"},
		{-2 * MB, "-2MB"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, Format(tt.size))
			assert.Equal(t, tt.want, tt.size.String())
		})
	}
}

func TestParseFormatRoundTrip(t *testing.T) {
	sizes := []Size{512, 4 * KB, 25 * MB, 3 * GB}
	for _, size := range sizes {
		parsed, err := Parse(Format(size))
		require.NoError(t, err)
		assert.Equal(t, size, parsed)
	}
}

func TestBytes(t *testing.T) {
	assert.Equal(t, int64(10485760), (10 * MB).Bytes())
	assert.Equal(t, int64(1024), KB.Int64())
}
