// SPDX-License-Identifier: EPL-2.0

package codec

import (
	"fmt"
	"slices"

	"github.com/ik5/audpipe/audio"
)

// Overrides replace values Configure would otherwise take from the input stream.
// Zero values mean "no override".
type Overrides struct {
	SampleRate   int
	SampleFormat audio.SampleFormat
	Layout       audio.ChannelLayout
}

// Configure picks the encoder parameters for info given the decoded input:
//   - sample format: the first one info supports
//   - channel layout: see SelectLayout
//   - sample rate: the input rate, or the nearest one info supports
//   - bit rate limits: copied when info accepts them
//   - time base: 1/sample_rate
func Configure(info audio.CodecInfo, in audio.StreamDescriptor, o Overrides) (audio.StreamDescriptor, error) {
	if len(info.SampleFormats) == 0 {
		return audio.StreamDescriptor{}, fmt.Errorf("%w: %s advertises no sample format",
			audio.ErrUnsupportedFormatConversion, info.Name)
	}
	if in.Channels() == 0 {
		return audio.StreamDescriptor{}, fmt.Errorf("%w: input has no channels",
			audio.ErrUnsupportedFormatConversion)
	}

	format := info.SampleFormats[0]
	if o.SampleFormat != audio.SampleFormatNone {
		if !slices.Contains(info.SampleFormats, o.SampleFormat) {
			return audio.StreamDescriptor{}, fmt.Errorf("%w: %s does not accept %s samples",
				audio.ErrUnsupportedFormatConversion, info.Name, o.SampleFormat)
		}
		format = o.SampleFormat
	}

	layout := SelectLayout(info.ChannelLayouts, in.Channels())
	if o.Layout != 0 {
		if len(info.ChannelLayouts) > 0 && !slices.Contains(info.ChannelLayouts, o.Layout) {
			return audio.StreamDescriptor{}, fmt.Errorf("%w: %s does not accept %s",
				audio.ErrUnsupportedFormatConversion, info.Name, o.Layout)
		}
		layout = o.Layout
	}

	rate := in.SampleRate
	if o.SampleRate > 0 {
		rate = o.SampleRate
	}
	rate = nearestRate(info.SampleRates, rate)
	if rate <= 0 {
		return audio.StreamDescriptor{}, fmt.Errorf("%w: no usable sample rate",
			audio.ErrUnsupportedFormatConversion)
	}

	id, err := info.CodecFor(format)
	if err != nil {
		return audio.StreamDescriptor{}, err
	}

	out := audio.StreamDescriptor{
		Index:        0,
		MediaType:    audio.MediaTypeAudio,
		TimeBase:     audio.SampleTimeBase(rate),
		SampleRate:   rate,
		SampleFormat: format,
		Layout:       layout,
		Codec: audio.CodecParameters{
			ID:            id,
			BitsPerSample: format.BitDepth(),
		},
	}
	if !info.VariableFrameSize {
		out.Codec.FrameSize = info.FrameSize
	}
	if info.SupportsBitRate {
		out.BitRate = in.BitRate
		out.MaxBitRate = in.MaxBitRate
	}
	if in.Duration > 0 && in.TimeBase.IsValid() {
		out.Duration = audio.Rescale(in.Duration, in.TimeBase, out.TimeBase)
	}

	return out, nil
}

// SelectLayout chooses the output layout for an input with the given channel count:
// the first advertised layout with exactly that many channels, else the widest
// one not exceeding it, else the first advertised. Stereo when none is advertised.
func SelectLayout(layouts []audio.ChannelLayout, channels int) audio.ChannelLayout {
	if len(layouts) == 0 {
		return audio.LayoutStereo
	}

	for _, l := range layouts {
		if l.Channels() == channels {
			return l
		}
	}

	var best audio.ChannelLayout
	for _, l := range layouts {
		if l.Channels() < channels && l.Channels() > best.Channels() {
			best = l
		}
	}
	if best != 0 {
		return best
	}
	return layouts[0]
}

func nearestRate(rates []int, want int) int {
	if len(rates) == 0 || slices.Contains(rates, want) {
		return want
	}
	best := rates[0]
	for _, r := range rates[1:] {
		if abs(r-want) < abs(best-want) {
			best = r
		}
	}
	return best
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
