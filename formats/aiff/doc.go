// SPDX-License-Identifier: EPL-2.0

// Package aiff provides the AIFF (Audio Interchange File Format) container.
//
// This package uses github.com/go-audio/aiff on both sides. AIFF is Apple's
// standard audio file format, commonly used on macOS.
//
// # Demuxing
//
//	d, err := aiff.Open(file)
//	if err != nil {
//	    // Handle error
//	}
//	pkt, err := d.ReadPacket()
//
// Packets hold big-endian PCM (pcm_s16be, pcm_s24be or pcm_s32be) of
// PacketSamples samples per channel, timestamped in 1/sample_rate.
//
// # Muxing
//
// NewMuxer writes 16, 24 or 32 bit PCM. The encoder patches the chunk sizes
// in WriteTrailer, so the destination must be seekable. AIFF output carries
// neither tags nor cover art.
//
// # AIFF vs. WAV
//
// AIFF is similar to WAV but:
//   - Uses big-endian byte order (WAV uses little-endian)
//   - Stores sample rate as 80-bit float (WAV uses 32-bit int)
//
// # File Extensions
//
// AIFF files typically use .aif or .aiff. AIFF-C (.aifc) is recognized by
// Probe but compressed variants fail to open.
package aiff
