// Package swimtime converts between swim time text ("MM:SS.cc") and seconds.
package swimtime

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// NoTime is the "did not finish" value returned for missing or malformed times.
// Anything at or above Threshold is treated as no time.
const (
	NoTime    = 999.0
	Threshold = 900.0
	// NoTimeMark is printed in place of a time that was not swum
	NoTimeMark = "S/T"
)

// Parse converts "M:SS.cc", "SS.cc" or "SS" into seconds. "." and ":" are
// interchangeable separators. It never fails: bad input yields NoTime.
func Parse(text string) float64 {
	s := strings.TrimSpace(text)
	if s == "" {
		return NoTime
	}
	s = strings.ReplaceAll(s, ":", ".")
	s = strings.ReplaceAll(s, ",", ".")
	parts := strings.Split(s, ".")
	if len(parts) > 3 {
		return NoTime
	}

	var minutes, seconds, hundredths int
	var ok bool
	switch len(parts) {
	case 3:
		if minutes, ok = atoi(parts[0], 3); !ok {
			return NoTime
		}
		if seconds, ok = atoi(parts[1], 2); !ok || seconds >= 60 {
			return NoTime
		}
		if hundredths, ok = centis(parts[2]); !ok {
			return NoTime
		}
	case 2:
		if seconds, ok = atoi(parts[0], 3); !ok {
			return NoTime
		}
		if hundredths, ok = centis(parts[1]); !ok {
			return NoTime
		}
	default:
		if seconds, ok = atoi(parts[0], 3); !ok {
			return NoTime
		}
	}

	total := float64(minutes*6000+seconds*100+hundredths) / 100
	if total >= Threshold {
		return NoTime
	}
	return total
}

// Format renders seconds as "MM:SS.cc", or NoTimeMark for values at or above Threshold.
func Format(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		return NoTimeMark
	}
	c := int(math.Round(seconds * 100))
	if c >= Threshold*100 {
		return NoTimeMark
	}
	return fmt.Sprintf("%02d:%02d.%02d", c/6000, (c/100)%60, c%100)
}

// IsNoTime reports whether seconds is the did-not-finish sentinel
func IsNoTime(seconds float64) bool {
	return seconds >= Threshold
}

func atoi(s string, maxDigits int) (int, bool) {
	if s == "" || len(s) > maxDigits {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	return n, err == nil
}

// centis reads the fractional part; a single digit means tenths.
func centis(s string) (int, bool) {
	n, ok := atoi(s, 2)
	if !ok {
		return 0, false
	}
	if len(s) == 1 {
		n *= 10
	}
	return n, true
}
