// SPDX-License-Identifier: EPL-2.0

package flac

import "errors"

var (
	ErrNotFlacFile         = errors.New("not a FLAC file")
	ErrUnsupportedBitDepth = errors.New("FLAC output supports 16 and 24 bit samples")
	ErrUnsupportedChannels = errors.New("FLAC supports 1 to 8 channels")
	ErrBlockTooLarge       = errors.New("packet exceeds the FLAC block size")
)
