// SPDX-License-Identifier: EPL-2.0

// Package mp3 provides an MP3 demuxer.
//
// This package uses github.com/hajimehoshi/go-mp3 to decode MP3 files.
// go-mp3 does not expose the compressed frames, so the demuxer hands out
// packets of decoded PCM instead: PacketSamples stereo pcm_s16le samples
// per packet, mono files included.
//
// Packet timestamps use TimeBase (1/14112000), which every MPEG audio sample
// rate divides, the way common MP3 demuxers do. The bit rate is estimated
// from the file size and the decoded length.
//
// ID3 tags are skipped by the decoder and not reported. Output is not
// supported.
package mp3
