// Package dynamics provides envelope detectors for level-dependent effects.
//
// Included detectors:
//   - LevelDetector: peak follower with separate attack and release times.
//   - Follower: rectifier into a one-pole lowpass with a smoothed cutoff.
package dynamics
