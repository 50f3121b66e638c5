package analysis

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"github.com/san-kum/partsim/internal/dynamo"
)

// Spectrum is the one-sided power spectrum of a uniformly sampled series.
type Spectrum struct {
	Freq  []float64
	Power []float64
}

// PowerSpectrum removes the mean of series and returns its power spectrum,
// with frequencies in cycles per unit time for sample spacing dt.
func PowerSpectrum(series []float64, dt float64) (*Spectrum, error) {
	n := len(series)
	if n < 4 {
		return nil, fmt.Errorf("spectrum needs at least 4 samples, got %d: %w", n, dynamo.ErrInvalidParameter)
	}
	if dt <= 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		return nil, fmt.Errorf("spectrum sample spacing %v: %w", dt, dynamo.ErrInvalidParameter)
	}

	mean := 0.0
	for _, v := range series {
		mean += v
	}
	mean /= float64(n)

	centered := make([]float64, n)
	for i, v := range series {
		centered[i] = v - mean
	}

	coeffs := fft.FFTReal(centered)
	half := n/2 + 1
	s := &Spectrum{
		Freq:  make([]float64, half),
		Power: make([]float64, half),
	}
	for k := 0; k < half; k++ {
		a := cmplx.Abs(coeffs[k])
		s.Freq[k] = float64(k) / (float64(n) * dt)
		s.Power[k] = a * a / float64(n)
	}
	return s, nil
}

// Dominant returns the frequency with the most power, ignoring the DC bin.
func (s *Spectrum) Dominant() float64 {
	best := 0
	for k := 1; k < len(s.Power); k++ {
		if best == 0 || s.Power[k] > s.Power[best] {
			best = k
		}
	}
	return s.Freq[best]
}

// DominantFrequency is a shorthand for PowerSpectrum followed by Dominant.
func DominantFrequency(series []float64, dt float64) (float64, error) {
	s, err := PowerSpectrum(series, dt)
	if err != nil {
		return 0, err
	}
	return s.Dominant(), nil
}
