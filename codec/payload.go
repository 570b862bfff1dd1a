// SPDX-License-Identifier: EPL-2.0

package codec

import (
	"encoding/binary"
	"fmt"

	"github.com/ik5/audpipe/audio"
)

// intLayout returns the byte width and order of an integer payload.
func intLayout(p audio.CodecParameters) (int, binary.ByteOrder, error) {
	if p.ID == audio.CodecFLAC {
		return 4, binary.LittleEndian, nil
	}
	format, order, ok := p.ID.PCM()
	if !ok || format == audio.SampleFormatU8 || format.IsFloat() {
		return 0, nil, fmt.Errorf("%w: %q is not a signed integer payload", audio.ErrUnsupportedFormatConversion, p.ID)
	}
	return format.BytesPerSample(), order, nil
}

// PayloadInts appends the raw integer samples held in data to dst. Only
// signed integer PCM and FLAC payloads are accepted.
func PayloadInts(dst []int, p audio.CodecParameters, data []byte) ([]int, error) {
	n, order, err := intLayout(p)
	if err != nil {
		return dst, err
	}
	if len(data)%n != 0 {
		return dst, fmt.Errorf("%w: %d bytes is not a whole number of %d byte samples",
			audio.ErrEncodeRejected, len(data), n)
	}
	for i := 0; i < len(data); i += n {
		dst = append(dst, int(readInt(data[i:], n, order)))
	}
	return dst, nil
}

// IntsPayload appends the payload encoding of raw integer samples to dst.
func IntsPayload(dst []byte, p audio.CodecParameters, samples []int) ([]byte, error) {
	n, order, err := intLayout(p)
	if err != nil {
		return dst, err
	}
	for _, s := range samples {
		dst = writeInt(dst, int32(s), n, order)
	}
	return dst, nil
}

// FloatsPayload appends the payload encoding of normalized samples to dst.
func FloatsPayload(dst []byte, p audio.CodecParameters, samples []float32) ([]byte, error) {
	sc, err := lookupSampleCodec(p)
	if err != nil {
		return dst, fmt.Errorf("%w: %w", audio.ErrUnsupportedFormatConversion, err)
	}
	return sc.pack(dst, samples), nil
}
