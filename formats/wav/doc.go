// SPDX-License-Identifier: EPL-2.0

// Package wav provides the WAV container: a demuxer and a muxer.
//
// Both sides use github.com/go-audio/wav. The demuxer reads PCM data of 8,
// 16, 24 or 32 bits and 32-bit IEEE float data, and hands it out unchanged
// in packets of PacketSamples samples per channel. RIFF INFO entries become
// container tags.
//
// # Demuxing
//
//	d, err := wav.Open(file)
//	if err != nil {
//	    // Handle error
//	}
//	st := d.Streams()[0]
//	pkt, err := d.ReadPacket() // io.EOF at the end
//
// # Muxing
//
// The muxer writes little-endian PCM of 16, 24 or 32 bits. Tags that RIFF
// INFO can hold (title, artist, album, genre, date, comment, copyright,
// track, encoder and a few more) are written when the trailer is; other
// tags are dropped. Cover art is not supported.
//
//	m := wav.NewMuxer(file)
//	m.WriteHeader(audio.Header{Stream: desc, Metadata: md})
//	m.WritePacket(pkt)
//	m.WriteTrailer()
//
// The formats are registered with Register, or used directly through
// InputFormat and OutputFormat.
package wav
