// Package correction detects and corrects discontinuities in discrete
// time-series samples from fixed-position Seatek sensors.
//
// Three kinds of discontinuity are handled, each by a detector/corrector
// pair run in fixed order by the Pipeline:
//
//  1. Gaps: missing-time intervals, found by comparing consecutive time
//     deltas against a multiple of the median delta and filled by inserting
//     interpolated rows (gaps.go).
//  2. Outliers: single-sample deviations, found by a modified z-score over
//     centered rolling median/MAD windows and replaced by a configurable
//     strategy (outliers.go).
//  3. Jumps: sustained level shifts, found by a CUSUM of normalized
//     deviations from the trailing rolling mean and removed by additive
//     offset (jumps.go).
//
// The package operates on a complete, finite, in-memory Table (table.go) and
// performs no I/O. All computation is synchronous and deterministic, so
// independent tables may be processed concurrently by callers without
// coordination. Rolling statistics are implemented as explicit windowed
// utilities (rolling.go) that yield NaN at boundary positions lacking a full
// window.
package correction
