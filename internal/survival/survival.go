// Package survival provides the exponential-model survival quantities:
// survival probability, failure density and CDF, hazard and cumulative
// hazard. All functions are pure and reject out-of-domain inputs instead
// of clamping them.
package survival

import (
	"errors"
	"fmt"
	"math"
)

// ErrDomain reports an out-of-domain rate or time
var ErrDomain = errors.New("survival: parameter outside domain")

// checkDomain validates rate > 0 and t >= 0
func checkDomain(rate, t float64) error {
	if !(rate > 0) || math.IsInf(rate, 0) {
		return fmt.Errorf("%w: rate %g (must be positive and finite)", ErrDomain, rate)
	}
	if !(t >= 0) {
		return fmt.Errorf("%w: time %g (must be non-negative)", ErrDomain, t)
	}
	return nil
}

// Survival returns S(t) = exp(-rate*t), the probability that the event
// occurs after time t. S(0) = 1 and S is non-increasing in t.
func Survival(rate, t float64) (float64, error) {
	if err := checkDomain(rate, t); err != nil {
		return 0, err
	}
	return math.Exp(-rate * t), nil
}

// CDF returns F(t) = 1 - S(t), the probability that the event occurs by t
func CDF(rate, t float64) (float64, error) {
	s, err := Survival(rate, t)
	if err != nil {
		return 0, err
	}
	return 1 - s, nil
}

// Density returns the failure density f(t) = rate * exp(-rate*t)
func Density(rate, t float64) (float64, error) {
	s, err := Survival(rate, t)
	if err != nil {
		return 0, err
	}
	return rate * s, nil
}

// Hazard returns the instantaneous event rate at t. For the exponential
// model this is the rate itself, independent of t.
func Hazard(rate, t float64) (float64, error) {
	if err := checkDomain(rate, t); err != nil {
		return 0, err
	}
	return rate, nil
}

// CumulativeHazard returns Λ(t) = rate * t, which equals -ln S(t)
func CumulativeHazard(rate, t float64) (float64, error) {
	if err := checkDomain(rate, t); err != nil {
		return 0, err
	}
	return rate * t, nil
}

// Curve evaluates S over a grid of times. The grid must be non-negative;
// it is typically shared across many posterior draws.
func Curve(rate float64, grid []float64) ([]float64, error) {
	out := make([]float64, len(grid))
	for i, t := range grid {
		s, err := Survival(rate, t)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}
