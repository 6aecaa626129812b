// Package analysis turns recorded trajectories into numbers and pictures.
//
//   - [DominantFrequency]: strongest oscillation frequency of a sampled series
//   - [Summary]: mean, spread and range of a series
//   - [Divergence]: finite-time growth rate of a perturbation between two worlds
//   - [BifurcationDiagram]: peak amplitudes across a swept scene parameter
//   - [PhasePortrait] and [Poincare]: 2D views of a trajectory
//
// # Frequencies
//
// A mass on a spring tied to an anchor oscillates at sqrt(k/m)/2π:
//
//	xs := result.Series(id, 0)
//	f := analysis.DominantFrequency(xs, cfg.Dt*float64(cfg.RecordEvery))
package analysis
