// SPDX-License-Identifier: EPL-2.0

// Package picture recognizes PNG, JPEG and GIF images.
//
// An image opened as a container has one attachment stream and no audio
// stream, so asking it for the best audio stream fails with
// audio.ErrNoAudioStream. Inspect reads the image dimensions of cover art
// before it is embedded.
package picture
