// SPDX-License-Identifier: EPL-2.0

// Package filter implements the filter stage: a linear graph that takes
// decoded frames at the source parameters and yields frames at the sink
// parameters of the encoder.
//
// A graph is described by a comma separated spec. Supported filters are
// anull, volume=<gain|NdB> and aresample=<rate>. After the user filters the
// graph appends whatever conversion the sink needs: sample rate, channel
// layout, sample format and, for fixed frame size encoders, regrouping into
// frames of exactly FrameSize samples.
//
//	g, err := filter.NewGraph("volume=-3dB", src, sink)
//	...
//	g.Push(frame)
//	for f, ok := g.Pull(); ok; f, ok = g.Pull() {
//		...
//	}
//	g.Flush()
package filter
