// SPDX-License-Identifier: EPL-2.0

package wav

import "errors"

var (
	ErrNotWavFile            = errors.New("not a WAV file")
	ErrUnsupportedWavLayout  = errors.New("unsupported WAV layout")
	ErrUnsupportedWavFormat  = errors.New("unsupported WAV sample format")
	ErrMissingWavData        = errors.New("WAV file has no data chunk")
	ErrUnsupportedOutputBits = errors.New("WAV output supports 16, 24 and 32 bit samples")
)
