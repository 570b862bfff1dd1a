// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"math"
	"math/big"
)

// NoPTS marks a packet or frame without a presentation timestamp.
const NoPTS int64 = math.MinInt64

// Rational is a time base: one tick lasts Num/Den seconds.
type Rational struct {
	Num int
	Den int
}

// NewRational returns num/den.
func NewRational(num, den int) Rational {
	return Rational{Num: num, Den: den}
}

// SampleTimeBase returns 1/rate, the natural time base of a PCM stream.
func SampleTimeBase(rate int) Rational {
	return Rational{Num: 1, Den: rate}
}

func (r Rational) IsValid() bool { return r.Num > 0 && r.Den > 0 }

func (r Rational) Float64() float64 {
	if r.Den == 0 {
		return 0
	}
	return float64(r.Num) / float64(r.Den)
}

func (r Rational) String() string {
	return fmt.Sprintf("%d/%d", r.Num, r.Den)
}

// Rescale converts ts from one time base to another.
// The result is rounded to the nearest tick, halves away from zero.
// NoPTS is returned untouched, and so is ts when either base is invalid.
func Rescale(ts int64, from, to Rational) int64 {
	if ts == NoPTS || !from.IsValid() || !to.IsValid() {
		return ts
	}
	if from == to {
		return ts
	}

	// ts * from.Num * to.Den / (from.Den * to.Num)
	n := new(big.Int).SetInt64(ts)
	n.Mul(n, big.NewInt(int64(from.Num)))
	n.Mul(n, big.NewInt(int64(to.Den)))

	d := big.NewInt(int64(from.Den))
	d.Mul(d, big.NewInt(int64(to.Num)))

	neg := n.Sign() < 0
	n.Abs(n)

	// (2|n| + d) / 2d
	n.Lsh(n, 1)
	n.Add(n, d)
	d.Lsh(d, 1)
	n.Quo(n, d)

	if neg {
		n.Neg(n)
	}
	if !n.IsInt64() {
		if neg {
			return math.MinInt64 + 1
		}
		return math.MaxInt64
	}
	return n.Int64()
}
