// SPDX-License-Identifier: EPL-2.0

// Package container opens input containers and writes output containers.
//
// A Reader probes the first bytes of its input against the registered input
// formats, exposes the streams, tags and embedded pictures it finds, and
// hands out packets until io.EOF:
//
//	r, err := container.OpenFile("song.flac")
//	if err != nil {
//	    // errors.Is(err, audio.ErrUnreadableContainer)
//	}
//	defer r.Close()
//
//	st, err := r.BestAudioStream()
//	for pkt, err := range r.Packets() {
//	    ...
//	}
//
// A Writer holds one audio stream and enforces the call order
// AddStream, WriteHeader, WritePacket, WriteTrailer:
//
//	w, err := container.Create("out.wav", "")
//	defer w.Close()
//	w.AddStream(desc)
//	w.SetMetadata(md)
//	w.WriteHeader()
//	w.WritePacket(pkt)
//	w.WriteTrailer()
//
// The built-in formats are registered once by Init. Options can swap in a
// different registry.
package container
