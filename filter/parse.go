// SPDX-License-Identifier: EPL-2.0

package filter

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ik5/audpipe/audio"
)

// DefaultSpec passes frames through unchanged.
const DefaultSpec = "anull"

// step is one parsed element of a filter spec.
type step struct {
	name string
	arg  string
}

// parseSpec splits "volume=0.5,aresample=22050" into steps. An empty spec
// is the same as DefaultSpec.
func parseSpec(spec string) ([]step, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		spec = DefaultSpec
	}

	var steps []step
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil, fmt.Errorf("%w: empty filter in %q", audio.ErrFilterConfigInvalid, spec)
		}
		name, arg, _ := strings.Cut(part, "=")
		steps = append(steps, step{name: strings.TrimSpace(name), arg: strings.TrimSpace(arg)})
	}
	return steps, nil
}

// parseGain accepts a linear factor ("0.5") or decibels ("-6dB").
func parseGain(arg string) (float32, error) {
	if db, ok := strings.CutSuffix(strings.ToLower(arg), "db"); ok {
		v, err := strconv.ParseFloat(strings.TrimSpace(db), 64)
		if err != nil {
			return 0, err
		}
		return float32(math.Pow(10, v/20)), nil
	}

	v, err := strconv.ParseFloat(arg, 64)
	if err != nil {
		return 0, err
	}
	if v < 0 || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, fmt.Errorf("gain %v out of range", v)
	}
	return float32(v), nil
}
