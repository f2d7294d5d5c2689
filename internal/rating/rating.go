// Package rating holds the 1-5 star rules shared by supplier accounts and
// catalog products.
package rating

import "bazaar-be/internal/apperr"

const (
	Min = 1
	Max = 5

	MaxReviewLength = 500
)

var ErrOutOfRange = apperr.Validation("rating must be between 1 and 5")

// Validate rejects values outside [Min, Max].
func Validate(r int) error {
	if r < Min || r > Max {
		return ErrOutOfRange
	}
	return nil
}

// Aggregate is a running mean recomputed from the exact sum.
type Aggregate struct {
	Sum   int
	Count int
}

// Add folds r into the aggregate and returns the new mean.
func (a *Aggregate) Add(r int) float64 {
	a.Sum += r
	a.Count++
	return a.Mean()
}

func (a Aggregate) Mean() float64 {
	return Mean(a.Sum, a.Count)
}

// Mean returns sum/count, or 0 when nothing was rated yet.
func Mean(sum, count int) float64 {
	if count <= 0 {
		return 0
	}
	return float64(sum) / float64(count)
}
