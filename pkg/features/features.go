// Package features turns raw RGB image bytes into the flat vector the person
// classifier was trained on.
package features

import (
	"encoding/hex"
	"strconv"
)

const (
	BytesPerPixel = 3
	hexPerPixel   = BytesPerPixel * 2
)

// Extract packs every three consecutive bytes into one integer by reading
// their hex rendering as a single base-16 number, so 0x00 0x00 0x01 becomes 1.
// A trailing partial pixel is parsed from its shorter hex string.
func Extract(image []byte) []uint32 {
	encoded := hex.EncodeToString(image)
	out := make([]uint32, 0, (len(encoded)+hexPerPixel-1)/hexPerPixel)

	for i := 0; i < len(encoded); i += hexPerPixel {
		end := i + hexPerPixel
		if end > len(encoded) {
			end = len(encoded)
		}

		// hex.EncodeToString only emits [0-9a-f] and at most six digits
		// fit in 24 bits, so the parse cannot fail.
		v, _ := strconv.ParseUint(encoded[i:end], 16, 32)
		out = append(out, uint32(v))
	}

	return out
}

// AsFloat32 widens a feature vector into the float layout the inference
// runtime consumes. Every 24-bit value is exactly representable.
func AsFloat32(vector []uint32) []float32 {
	out := make([]float32, len(vector))
	for i, v := range vector {
		out[i] = float32(v)
	}
	return out
}
