// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"math/bits"
	"strings"
)

// SampleFormat is the precision samples are stored with once they leave a frame.
// All formats are interleaved.
type SampleFormat int

const (
	SampleFormatNone SampleFormat = iota
	SampleFormatU8
	SampleFormatS16
	SampleFormatS24
	SampleFormatS32
	SampleFormatF32
)

var sampleFormatNames = map[SampleFormat]string{
	SampleFormatNone: "none",
	SampleFormatU8:   "u8",
	SampleFormatS16:  "s16",
	SampleFormatS24:  "s24",
	SampleFormatS32:  "s32",
	SampleFormatF32:  "flt",
}

func (f SampleFormat) String() string {
	if name, ok := sampleFormatNames[f]; ok {
		return name
	}
	return fmt.Sprintf("SampleFormat(%d)", int(f))
}

// BitDepth is the number of bits one sample occupies.
func (f SampleFormat) BitDepth() int {
	switch f {
	case SampleFormatU8:
		return 8
	case SampleFormatS16:
		return 16
	case SampleFormatS24:
		return 24
	case SampleFormatS32, SampleFormatF32:
		return 32
	}
	return 0
}

func (f SampleFormat) BytesPerSample() int { return f.BitDepth() / 8 }

func (f SampleFormat) IsFloat() bool { return f == SampleFormatF32 }

// ParseSampleFormat accepts the names printed by SampleFormat.String,
// plus "f32" and "float" for SampleFormatF32.
func ParseSampleFormat(s string) (SampleFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "u8":
		return SampleFormatU8, nil
	case "s16":
		return SampleFormatS16, nil
	case "s24":
		return SampleFormatS24, nil
	case "s32":
		return SampleFormatS32, nil
	case "flt", "f32", "float":
		return SampleFormatF32, nil
	}
	return SampleFormatNone, fmt.Errorf("%w: %q", ErrUnknownSampleFormat, s)
}

// IntegerFormatForDepth maps a bit depth to the signed format that holds it.
func IntegerFormatForDepth(depth int) SampleFormat {
	switch {
	case depth <= 0:
		return SampleFormatNone
	case depth <= 8:
		return SampleFormatU8
	case depth <= 16:
		return SampleFormatS16
	case depth <= 24:
		return SampleFormatS24
	case depth <= 32:
		return SampleFormatS32
	}
	return SampleFormatNone
}

// ChannelLayout is a bit mask of speaker positions.
type ChannelLayout uint64

const (
	ChannelFrontLeft ChannelLayout = 1 << iota
	ChannelFrontRight
	ChannelFrontCenter
	ChannelLowFrequency
	ChannelBackLeft
	ChannelBackRight
	ChannelBackCenter
	ChannelSideLeft
	ChannelSideRight
)

// Interleaved channels follow the bit order of their layout, lowest bit first.
const (
	LayoutMono    = ChannelFrontCenter
	LayoutStereo  = ChannelFrontLeft | ChannelFrontRight
	Layout2Point1 = LayoutStereo | ChannelLowFrequency
	Layout3Point0 = LayoutStereo | ChannelFrontCenter
	LayoutQuad    = LayoutStereo | ChannelBackLeft | ChannelBackRight
	Layout5Point0 = LayoutQuad | ChannelFrontCenter
	Layout5Point1 = Layout5Point0 | ChannelLowFrequency
	Layout6Point1 = Layout3Point0 | ChannelLowFrequency | ChannelBackCenter | ChannelSideLeft | ChannelSideRight
	Layout7Point1 = Layout5Point1 | ChannelSideLeft | ChannelSideRight
)

var layoutNames = []struct {
	layout ChannelLayout
	name   string
}{
	{LayoutMono, "mono"},
	{LayoutStereo, "stereo"},
	{Layout3Point0, "3.0"},
	{Layout2Point1, "2.1"},
	{LayoutQuad, "quad"},
	{Layout5Point0, "5.0"},
	{Layout5Point1, "5.1"},
	{Layout6Point1, "6.1"},
	{Layout7Point1, "7.1"},
}

// Channels is the number of speaker positions in the layout.
func (l ChannelLayout) Channels() int { return bits.OnesCount64(uint64(l)) }

func (l ChannelLayout) String() string {
	for _, n := range layoutNames {
		if n.layout == l {
			return n.name
		}
	}
	return fmt.Sprintf("%d channels (0x%x)", l.Channels(), uint64(l))
}

// ParseChannelLayout accepts the named layouts ("mono", "stereo", "5.1" and so on).
func ParseChannelLayout(s string) (ChannelLayout, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, n := range layoutNames {
		if n.name == s {
			return n.layout, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownChannelLayout, s)
}

// DefaultLayout returns the conventional layout for a channel count, the
// first named one with that many channels. Counts without a named layout get
// the first n speaker positions.
func DefaultLayout(channels int) ChannelLayout {
	for _, n := range layoutNames {
		if n.layout.Channels() == channels {
			return n.layout
		}
	}
	if channels <= 0 {
		return 0
	}
	if channels >= 64 {
		return ^ChannelLayout(0)
	}
	return ChannelLayout(1)<<channels - 1
}

// NamedLayouts lists every named layout, narrowest first.
func NamedLayouts() []ChannelLayout {
	out := make([]ChannelLayout, len(layoutNames))
	for i, n := range layoutNames {
		out[i] = n.layout
	}
	return out
}
