// SPDX-License-Identifier: EPL-2.0

package utils

import "math"

// fullScale returns 2^(bitDepth-1), the magnitude of the most negative sample.
func fullScale(bitDepth int) float64 {
	return float64(int64(1) << (bitDepth - 1))
}

// Float32ToInt16 quantizes x in [-1,1] to a 16-bit sample.
func Float32ToInt16(x float32) int16 {
	return int16(Float32ToInt(x, 16))
}

// Float32ToInt quantizes x in [-1,1] to a signed sample of bitDepth bits (1..32).
// Out of range input is clamped.
func Float32ToInt(x float32, bitDepth int) int32 {
	scale := fullScale(bitDepth)
	v := math.Round(float64(x) * scale)

	if v > scale-1 {
		return int32(scale - 1)
	} else if v < -scale {
		return int32(-scale)
	}
	return int32(v)
}

// IntToFloat32 is the inverse of Float32ToInt: integer samples are exactly
// recovered for bit depths up to 24.
func IntToFloat32(v int32, bitDepth int) float32 {
	return float32(float64(v) / fullScale(bitDepth))
}

// Float32ToUint8 quantizes x to unsigned 8-bit PCM, where 128 is silence.
func Float32ToUint8(x float32) uint8 {
	return uint8(Float32ToInt(x, 8) + 128)
}

func Uint8ToFloat32(v uint8) float32 {
	return IntToFloat32(int32(v)-128, 8)
}

// Clamp limits x to [-1,1].
func Clamp(x float32) float32 {
	if x > 1 {
		return 1
	} else if x < -1 {
		return -1
	}
	return x
}
