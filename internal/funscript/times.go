// internal/funscript/times.go
package funscript

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// TimeValue is a point in time in seconds. Funscript metadata encodes
// times either as numbers or as "HH:MM:SS.mmm" / "MM:SS.mmm" strings;
// both decode to fractional seconds.
type TimeValue float64

// Seconds returns the value as a plain float64.
func (t TimeValue) Seconds() float64 {
	return float64(t)
}

// UnmarshalJSON accepts a JSON number or a clock-style time string.
func (t *TimeValue) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		secs, err := ParseTimeString(s)
		if err != nil {
			return err
		}
		*t = TimeValue(secs)
		return nil
	}

	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("time value must be a number or time string: %w", err)
	}
	*t = TimeValue(n)
	return nil
}

// MarshalJSON always emits seconds as a number.
func (t TimeValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(float64(t))
}

// ParseTimeString converts "HH:MM:SS.mmm" or "MM:SS.mmm" (fractional part
// optional) to seconds.
func ParseTimeString(s string) (float64, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid time string %q", s)
	}

	var total float64
	for _, part := range parts {
		v, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid time string %q: %w", s, err)
		}
		if v < 0 {
			return 0, fmt.Errorf("invalid time string %q: negative component", s)
		}
		total = total*60 + v
	}
	return total, nil
}
