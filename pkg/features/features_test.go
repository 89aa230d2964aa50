package features

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtract_SinglePixel(t *testing.T) {
	require.Equal(t, []uint32{1}, Extract([]byte{0x00, 0x00, 0x01}))
}

func TestExtract_PacksChannels(t *testing.T) {
	got := Extract([]byte{0xff, 0x00, 0x10, 0x12, 0x34, 0x56})
	require.Equal(t, []uint32{0xff0010, 0x123456}, got)
}

func TestExtract_LengthIsOneThird(t *testing.T) {
	for _, n := range []int{0, 3, 30, 3 * 96 * 96} {
		buf := make([]byte, n)
		for i := range buf {
			buf[i] = byte(i)
		}
		require.Len(t, Extract(buf), n/3, "buffer of %d bytes", n)
	}
}

func TestExtract_TrailingPartialPixel(t *testing.T) {
	got := Extract([]byte{0x00, 0x00, 0x02, 0x01, 0x02})
	require.Equal(t, []uint32{2, 0x0102}, got)

	got = Extract([]byte{0xab})
	require.Equal(t, []uint32{0xab}, got)
}

func TestAsFloat32(t *testing.T) {
	got := AsFloat32([]uint32{0, 1, 0xffffff})
	require.Equal(t, []float32{0, 1, 16777215}, got)
}
