package psychology

import (
	"fmt"
	"math"
	"math/big"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/montanaflynn/stats"
)

// roundFixed rounds x to the given number of decimals the way a decimal
// fixed-point formatter does: the exact binary value is rounded with ties
// away from zero and the decimal result is read back as the nearest float64.
func roundFixed(x float64, digits int) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}

	r := new(big.Rat).SetFloat64(x)
	negative := r.Sign() < 0
	if negative {
		r.Neg(r)
	}

	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(digits)), nil)
	r.Mul(r, new(big.Rat).SetInt(scale))

	denom := new(big.Int).Set(r.Denom())
	q, rem := new(big.Int).QuoRem(r.Num(), denom, new(big.Int))
	if rem.Lsh(rem, 1).Cmp(denom) >= 0 {
		q.Add(q, big.NewInt(1))
	}

	out, _ := new(big.Rat).SetFrac(q, scale).Float64()
	if negative && out != 0 {
		out = -out
	}
	return out
}

// sum adds values left to right.
func sum(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	s, _ := stats.Sum(values)
	return s
}

// ratio returns the smaller of a and b divided by the larger.
func ratio(a, b float64) float64 {
	if a < b {
		return a / b
	}
	return b / a
}

func invalidArgument(field, msg string) error {
	errorMap := errbuilder.ErrorMap{}
	errorMap.Set(field, fmt.Errorf("%s", msg))

	return errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(msg).
		WithDetails(errbuilder.NewErrDetails(errorMap))
}
