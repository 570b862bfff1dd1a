// SPDX-License-Identifier: EPL-2.0

package pipeline

import (
	"errors"
	"fmt"
)

var ErrPipelineDone = errors.New("pipeline already ran")

// Stage names the part of the pipeline an error came from.
type Stage string

const (
	StageOpen   Stage = "open"
	StageDemux  Stage = "demux"
	StageDecode Stage = "decode"
	StageFilter Stage = "filter"
	StageEncode Stage = "encode"
	StageMux    Stage = "mux"
)

// NoStream is the stream index of errors raised before a stream was chosen.
const NoStream = -1

// Error is returned by every failing pipeline operation. Err wraps one of the
// audio error kinds, so errors.Is works through it.
type Error struct {
	Stage  Stage
	Stream int
	Err    error
}

func (e *Error) Error() string {
	if e.Stream == NoStream {
		return fmt.Sprintf("%s: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("%s stream %d: %v", e.Stage, e.Stream, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
