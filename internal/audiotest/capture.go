// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"encoding/binary"
	"io"
	"sync"

	"github.com/ik5/audpipe/audio"
)

// Capture records what a muxer was asked to write.
type Capture struct {
	mtx       sync.Mutex
	Header    *audio.Header
	Packets   []*audio.Packet
	Trailer   bool
	HeaderErr error
}

// CaptureFormat returns an output format named name whose muxers record into
// the returned Capture. codec describes what the fake encoder accepts.
func CaptureFormat(name string, codec audio.CodecInfo) (*audio.OutputFormat, *Capture) {
	c := &Capture{}
	if codec.Order == nil && codec.ID == "" {
		codec.Order = binary.LittleEndian
	}
	return &audio.OutputFormat{
		Name:        name,
		Extensions:  []string{name},
		Codec:       codec,
		Attachments: true,
		New: func(w io.WriteSeeker) audio.Muxer {
			return &captureMuxer{c: c, w: w}
		},
	}, c
}

// Samples returns the number of samples per channel over all packets.
func (c *Capture) Samples() int {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	if c.Header == nil {
		return 0
	}
	st := c.Header.Stream
	frameBytes := st.Channels() * st.SampleFormat.BytesPerSample()
	if st.Codec.ID == audio.CodecFLAC {
		frameBytes = st.Channels() * 4
	}
	if frameBytes == 0 {
		return 0
	}
	total := 0
	for _, p := range c.Packets {
		total += len(p.Data) / frameBytes
	}
	return total
}

type captureMuxer struct {
	c *Capture
	w io.WriteSeeker
}

func (m *captureMuxer) WriteHeader(h audio.Header) error {
	m.c.mtx.Lock()
	defer m.c.mtx.Unlock()

	if m.c.HeaderErr != nil {
		return m.c.HeaderErr
	}
	m.c.Header = &h
	return nil
}

func (m *captureMuxer) WritePacket(pkt *audio.Packet) error {
	m.c.mtx.Lock()
	defer m.c.mtx.Unlock()

	cp := *pkt
	cp.Data = append([]byte(nil), pkt.Data...)
	m.c.Packets = append(m.c.Packets, &cp)
	_, err := m.w.Write(pkt.Data)
	return err
}

func (m *captureMuxer) WriteTrailer() error {
	m.c.mtx.Lock()
	defer m.c.mtx.Unlock()

	m.c.Trailer = true
	return nil
}
