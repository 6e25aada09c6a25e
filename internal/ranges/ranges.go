// Package ranges parses "min:max" range specifications as used on the
// command line, e.g. "-12:6", "150:" or ":2000.5".
package ranges

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
)

// ErrRangeSpec is returned when a range is malformed or the lower bound
// exceeds the upper bound
var ErrRangeSpec = errors.New("invalid range specified")

var (
	intRangeRe   = regexp.MustCompile(`^\s*(\-?\d*):(\-?\d*)\s*$`)
	floatRangeRe = regexp.MustCompile(`^\s*([-+]?[0-9]*\.?[0-9]*(?:[eE][-+]?[0-9]+)?):([-+]?[0-9]*\.?[0-9]*(?:[eE][-+]?[0-9]+)?)\s*$`)
)

// ParseInt parses a string like "-12:6" into 2 values, -12 and 6.
// Parameters min and max are the "default" min/max values,
// when a value is not specified (e.g. "-12:"), the default is assigned.
// An empty string selects the whole default range.
// Values outside [min, max] are clamped.
func ParseInt(r string, min int, max int) (int, int, error) {
	if strings.TrimSpace(r) == "" {
		return min, max, nil
	}
	m := intRangeRe.FindStringSubmatch(r)
	if m == nil {
		return min, max, ErrRangeSpec
	}
	minOut := min
	maxOut := max
	var err error
	if m[1] != "" {
		if minOut, err = strconv.Atoi(m[1]); err != nil {
			return min, max, ErrRangeSpec
		}
		if minOut < min {
			minOut = min
		}
	}
	if m[2] != "" {
		if maxOut, err = strconv.Atoi(m[2]); err != nil {
			return min, max, ErrRangeSpec
		}
		if maxOut > max {
			maxOut = max
		}
	}
	if minOut > maxOut {
		err = ErrRangeSpec
		minOut = maxOut
	}
	return minOut, maxOut, err
}

// ParseFloat64 parses a string like "-12.01e1:+6" into 2 values, -120.1
// and 6.0, with the same defaulting and clamping rules as ParseInt
func ParseFloat64(r string, min float64, max float64) (float64, float64, error) {
	if strings.TrimSpace(r) == "" {
		return min, max, nil
	}
	m := floatRangeRe.FindStringSubmatch(r)
	if m == nil {
		return min, max, ErrRangeSpec
	}
	minOut := min
	maxOut := max
	var err error
	if m[1] != "" {
		if minOut, err = strconv.ParseFloat(m[1], 64); err != nil {
			return min, max, ErrRangeSpec
		}
		if minOut < min {
			minOut = min
		}
	}
	if m[2] != "" {
		if maxOut, err = strconv.ParseFloat(m[2], 64); err != nil {
			return min, max, ErrRangeSpec
		}
		if maxOut > max {
			maxOut = max
		}
	}
	if minOut > maxOut {
		err = ErrRangeSpec
		minOut = maxOut
	}
	return minOut, maxOut, err
}
