// SPDX-License-Identifier: EPL-2.0

package audio

// Packet is one unit of compressed or packed data belonging to a stream.
// PTS and Duration are expressed in TimeBase ticks.
type Packet struct {
	StreamIndex int
	PTS         int64
	Duration    int64
	TimeBase    Rational
	Data        []byte
}

// RescaleTS moves the packet timestamps into time base to.
func (p *Packet) RescaleTS(to Rational) {
	if p.TimeBase == to {
		return
	}
	p.PTS = Rescale(p.PTS, p.TimeBase, to)
	if p.Duration > 0 {
		p.Duration = Rescale(p.Duration, p.TimeBase, to)
	}
	p.TimeBase = to
}

// End returns the timestamp right after the packet, or NoPTS.
func (p *Packet) End() int64 {
	if p.PTS == NoPTS {
		return NoPTS
	}
	return p.PTS + p.Duration
}
