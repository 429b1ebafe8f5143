package correction

import "fmt"

// GapMethod selects how values are interpolated across filled gaps.
type GapMethod int

const (
	// GapMethodUnknown is the invalid zero value.
	GapMethodUnknown GapMethod = iota
	// GapMethodTime interpolates weighted by the time axis.
	GapMethodTime
	// GapMethodLinear interpolates positionally, ignoring timestamps.
	GapMethodLinear
)

// String returns the configuration name of the method.
func (m GapMethod) String() string {
	switch m {
	case GapMethodTime:
		return "time"
	case GapMethodLinear:
		return "linear"
	default:
		return "unknown"
	}
}

// ParseGapMethod converts a configuration string to a GapMethod.
func ParseGapMethod(s string) (GapMethod, error) {
	switch s {
	case "time":
		return GapMethodTime, nil
	case "linear":
		return GapMethodLinear, nil
	default:
		return GapMethodUnknown, fmt.Errorf("unknown gap method %q", s)
	}
}

// OutlierMethod selects how flagged outliers are replaced.
type OutlierMethod int

const (
	// OutlierMethodUnknown is the invalid zero value.
	OutlierMethodUnknown OutlierMethod = iota
	// OutlierMethodMedian replaces an outlier with the median of its window.
	OutlierMethodMedian
	// OutlierMethodMean replaces an outlier with the mean of its window.
	OutlierMethodMean
	// OutlierMethodInterpolate blanks outliers and linearly interpolates.
	OutlierMethodInterpolate
	// OutlierMethodRemove blanks outliers and leaves them missing.
	OutlierMethodRemove
)

// String returns the configuration name of the method.
func (m OutlierMethod) String() string {
	switch m {
	case OutlierMethodMedian:
		return "median"
	case OutlierMethodMean:
		return "mean"
	case OutlierMethodInterpolate:
		return "interpolate"
	case OutlierMethodRemove:
		return "remove"
	default:
		return "unknown"
	}
}

// ParseOutlierMethod converts a configuration string to an OutlierMethod.
func ParseOutlierMethod(s string) (OutlierMethod, error) {
	switch s {
	case "median":
		return OutlierMethodMedian, nil
	case "mean":
		return OutlierMethodMean, nil
	case "interpolate":
		return OutlierMethodInterpolate, nil
	case "remove":
		return OutlierMethodRemove, nil
	default:
		return OutlierMethodUnknown, fmt.Errorf("unknown outlier method %q", s)
	}
}

// JumpMethod tags the level-shift correction strategy. Only additive offset
// correction is implemented; the tag is carried for configuration parity.
type JumpMethod int

const (
	// JumpMethodUnknown is the invalid zero value.
	JumpMethodUnknown JumpMethod = iota
	// JumpMethodOffset removes level shifts by additive offset.
	JumpMethodOffset
)

// String returns the configuration name of the method.
func (m JumpMethod) String() string {
	if m == JumpMethodOffset {
		return "offset"
	}
	return "unknown"
}

// ParseJumpMethod converts a configuration string to a JumpMethod.
func ParseJumpMethod(s string) (JumpMethod, error) {
	if s == "offset" {
		return JumpMethodOffset, nil
	}
	return JumpMethodUnknown, fmt.Errorf("unknown jump method %q", s)
}
