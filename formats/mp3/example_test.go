// SPDX-License-Identifier: EPL-2.0

package mp3_test

import (
	"fmt"

	"github.com/ik5/audpipe/audio"
	"github.com/ik5/audpipe/formats/mp3"
)

// Example_timeBase shows that packet timestamps are exact for every MPEG rate.
func Example_timeBase() {
	for _, rate := range []int{44100, 48000, 32000, 22050} {
		ticks := audio.Rescale(mp3.PacketSamples, audio.SampleTimeBase(rate), mp3.TimeBase)
		fmt.Printf("%5d Hz: %d ticks per packet\n", rate, ticks)
	}
	// Output:
	// 44100 Hz: 368640 ticks per packet
	// 48000 Hz: 338688 ticks per packet
	// 32000 Hz: 508032 ticks per packet
	// 22050 Hz: 737280 ticks per packet
}
