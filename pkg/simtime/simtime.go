// Package simtime is the simulation clock used to key reception intervals:
// an int64 count of picoseconds, with parsing and formatting helpers.
package simtime

import (
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Time is a point (or span) of simulation time in picoseconds.
type Time int64

const (
	Picosecond  Time = 1
	Nanosecond       = 1000 * Picosecond
	Microsecond      = 1000 * Nanosecond
	Millisecond      = 1000 * Microsecond
	Second           = 1000 * Millisecond
)

const (
	// Min is below every representable instant.
	Min Time = math.MinInt64
	// Max is above every representable instant.
	Max Time = math.MaxInt64
)

var units = []struct {
	suffix string
	unit   Time
}{
	// Longest suffixes first so "ms" is not read as "s".
	{"ps", Picosecond},
	{"ns", Nanosecond},
	{"us", Microsecond},
	{"ms", Millisecond},
	{"s", Second},
}

// Parse converts strings like "1.5s", "250ms", "10us", "3ns" or "7ps" to a
// Time. A bare number is read as seconds.
func Parse(s string) (Time, error) {
	str := strings.TrimSpace(s)
	if str == "" {
		return 0, errors.New("empty time")
	}

	unit := Second
	for _, u := range units {
		if strings.HasSuffix(str, u.suffix) {
			str = strings.TrimSpace(strings.TrimSuffix(str, u.suffix))
			unit = u.unit
			break
		}
	}

	if n, err := strconv.ParseInt(str, 10, 64); err == nil {
		if n > int64(Max/unit) || n < int64(Min/unit) {
			return 0, errors.Errorf("time out of range: %q", s)
		}
		return Time(n) * unit, nil
	}

	f, err := strconv.ParseFloat(str, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "could not parse time %q", s)
	}
	v := math.Round(f * float64(unit))
	if math.IsNaN(v) || v >= math.MaxInt64 || v < math.MinInt64 {
		return 0, errors.Errorf("time out of range: %q", s)
	}
	return Time(v), nil
}

// MustParse is like Parse but panics on error. For tests and constants.
func MustParse(s string) Time {
	t, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return t
}

// Seconds returns t as a floating point number of seconds.
func (t Time) Seconds() float64 {
	return float64(t) / float64(Second)
}

// String formats t with the largest unit that represents it exactly.
func (t Time) String() string {
	if t == 0 {
		return "0s"
	}
	for i := len(units) - 1; i >= 0; i-- {
		u := units[i]
		if t%u.unit == 0 {
			return strconv.FormatInt(int64(t/u.unit), 10) + u.suffix
		}
	}
	return strconv.FormatInt(int64(t), 10) + "ps"
}
