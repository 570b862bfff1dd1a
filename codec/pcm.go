// SPDX-License-Identifier: EPL-2.0

package codec

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/ik5/audpipe/audio"
	"github.com/ik5/audpipe/utils"
)

// unpackFunc appends the normalized samples held in data to dst.
type unpackFunc func(dst []float32, data []byte) []float32

// packFunc appends the payload encoding of samples to dst.
type packFunc func(dst []byte, samples []float32) []byte

// sampleCodec is the byte level layout of one codec's payload.
type sampleCodec struct {
	bytes  int
	unpack unpackFunc
	pack   packFunc
}

func lookupSampleCodec(p audio.CodecParameters) (sampleCodec, error) {
	if p.ID == audio.CodecFLAC {
		bits := p.BitsPerSample
		if bits <= 0 || bits > 32 {
			return sampleCodec{}, fmt.Errorf("invalid flac bit depth %d", bits)
		}
		return sampleCodec{
			bytes:  4,
			unpack: unpackInt(4, bits, binary.LittleEndian),
			pack:   packInt(4, bits, binary.LittleEndian),
		}, nil
	}

	format, order, ok := p.ID.PCM()
	if !ok {
		return sampleCodec{}, fmt.Errorf("no codec for %q", p.ID)
	}

	switch format {
	case audio.SampleFormatU8:
		return sampleCodec{bytes: 1, unpack: unpackU8, pack: packU8}, nil
	case audio.SampleFormatF32:
		return sampleCodec{bytes: 4, unpack: unpackF32(order), pack: packF32(order)}, nil
	}

	n := format.BytesPerSample()
	return sampleCodec{
		bytes:  n,
		unpack: unpackInt(n, format.BitDepth(), order),
		pack:   packInt(n, format.BitDepth(), order),
	}, nil
}

func unpackU8(dst []float32, data []byte) []float32 {
	for _, b := range data {
		dst = append(dst, utils.Uint8ToFloat32(b))
	}
	return dst
}

func packU8(dst []byte, samples []float32) []byte {
	for _, s := range samples {
		dst = append(dst, utils.Float32ToUint8(s))
	}
	return dst
}

func unpackF32(order binary.ByteOrder) unpackFunc {
	return func(dst []float32, data []byte) []float32 {
		for i := 0; i+4 <= len(data); i += 4 {
			dst = append(dst, math.Float32frombits(order.Uint32(data[i:])))
		}
		return dst
	}
}

func packF32(order binary.ByteOrder) packFunc {
	return func(dst []byte, samples []float32) []byte {
		var b [4]byte
		for _, s := range samples {
			order.PutUint32(b[:], math.Float32bits(s))
			dst = append(dst, b[:]...)
		}
		return dst
	}
}

// readInt sign-extends an n byte integer.
func readInt(b []byte, n int, order binary.ByteOrder) int32 {
	var u uint32
	if order == binary.BigEndian {
		for i := range n {
			u = u<<8 | uint32(b[i])
		}
	} else {
		for i := n - 1; i >= 0; i-- {
			u = u<<8 | uint32(b[i])
		}
	}
	shift := 32 - 8*n
	return int32(u<<shift) >> shift
}

func writeInt(dst []byte, v int32, n int, order binary.ByteOrder) []byte {
	u := uint32(v)
	if order == binary.BigEndian {
		for i := n - 1; i >= 0; i-- {
			dst = append(dst, byte(u>>(8*i)))
		}
		return dst
	}
	for i := range n {
		dst = append(dst, byte(u>>(8*i)))
	}
	return dst
}

// unpackInt reads n byte integers holding bits significant bits.
func unpackInt(n, bits int, order binary.ByteOrder) unpackFunc {
	return func(dst []float32, data []byte) []float32 {
		for i := 0; i+n <= len(data); i += n {
			dst = append(dst, utils.IntToFloat32(readInt(data[i:], n, order), bits))
		}
		return dst
	}
}

func packInt(n, bits int, order binary.ByteOrder) packFunc {
	return func(dst []byte, samples []float32) []byte {
		for _, s := range samples {
			dst = writeInt(dst, utils.Float32ToInt(s, bits), n, order)
		}
		return dst
	}
}
