// Package analysis post-processes simulation runs.
//
//   - [PowerSpectrum]: FFT power spectrum of a diagnostic series
//   - [TrackParticle]: phase portrait of one particle along an axis
//   - [Sweep]: reruns a scenario across a parameter range
//
// A pendulum's swing frequency can be read off its kinetic energy:
//
//	ke := result.Series(func(s dynamo.Snapshot) float64 { return s.KineticEnergy })
//	f, err := analysis.DominantFrequency(ke, cfg.Dt)
//
// Kinetic energy peaks twice per swing, so f is twice the pendulum frequency.
package analysis
