// SPDX-License-Identifier: EPL-2.0

// Package flac provides the FLAC container on top of github.com/mewkiz/flac.
//
// The demuxer returns one packet per FLAC frame. Packets carry interleaved
// little-endian int32 samples (codec "flac") so the decode stage never sees
// the FLAC bitstream. Vorbis comments become container tags and PICTURE
// blocks become attachment streams.
//
// The muxer writes fixed BlockSize frames of verbatim subframes, every tag
// as a Vorbis comment and each attachment as a front cover picture.
package flac
