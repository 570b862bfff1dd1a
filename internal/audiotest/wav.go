// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/ik5/audpipe/utils"
)

// WAV formats accepted by WAVBytes.
const (
	WAVFormatPCM   = 1
	WAVFormatFloat = 3
)

// WAVBytes builds a canonical 44-byte-header WAV file in memory.
// samples are interleaved integers of bitsPerSample bits (unsigned for 8 bit),
// or math.Float32bits values when format is WAVFormatFloat.
func WAVBytes(format, sampleRate, channels, bitsPerSample int, samples []int32) []byte {
	bytesPerSample := bitsPerSample / 8
	byteRate := uint32(sampleRate * channels * bytesPerSample)
	blockAlign := uint16(channels * bytesPerSample)
	dataSize := uint32(len(samples) * bytesPerSample)
	riffSize := 36 + dataSize

	header := make([]byte, 44)

	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], riffSize)
	copy(header[8:12], "WAVE")

	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], 16)
	binary.LittleEndian.PutUint16(header[20:22], uint16(format))
	binary.LittleEndian.PutUint16(header[22:24], uint16(channels))
	binary.LittleEndian.PutUint32(header[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(header[28:32], byteRate)
	binary.LittleEndian.PutUint16(header[32:34], blockAlign)
	binary.LittleEndian.PutUint16(header[34:36], uint16(bitsPerSample))

	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], dataSize)

	buf := bytes.NewBuffer(header)
	sample := make([]byte, 4)
	for _, s := range samples {
		binary.LittleEndian.PutUint32(sample, uint32(s))
		buf.Write(sample[:bytesPerSample])
	}

	return buf.Bytes()
}

// WAV16 builds a 16-bit PCM WAV file from interleaved samples.
func WAV16(sampleRate, channels int, samples []int16) []byte {
	wide := make([]int32, len(samples))
	for i, s := range samples {
		wide[i] = int32(s)
	}
	return WAVBytes(WAVFormatPCM, sampleRate, channels, 16, wide)
}

// SineWAV16 builds a 16-bit WAV holding n samples per channel of a half-scale sine.
func SineWAV16(sampleRate, channels, n int, frequency float64) []byte {
	return WAV16(sampleRate, channels, Sine16(sampleRate, channels, n, frequency))
}

// Sine16 returns n interleaved frames of a half-scale sine wave.
func Sine16(sampleRate, channels, n int, frequency float64) []int16 {
	out := make([]int16, 0, n*channels)
	for i := range n {
		v := utils.Float32ToInt16(float32(0.5 * math.Sin(2*math.Pi*frequency*float64(i)/float64(sampleRate))))
		for range channels {
			out = append(out, v)
		}
	}
	return out
}

// FloatWAV builds a 32-bit IEEE float WAV file from interleaved samples.
func FloatWAV(sampleRate, channels int, samples []float32) []byte {
	bits := make([]int32, len(samples))
	for i, s := range samples {
		bits[i] = int32(math.Float32bits(s))
	}
	return WAVBytes(WAVFormatFloat, sampleRate, channels, 32, bits)
}
