package employee

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

const (
	MinScore     = 1
	MaxScore     = 100
	DefaultScore = 70
)

// ClampScore bounds a performance score to [MinScore, MaxScore].
func ClampScore(n int) int {
	if n < MinScore {
		return MinScore
	}
	if n > MaxScore {
		return MaxScore
	}
	return n
}

// ParseScore coerces a loosely typed score (form input, JSON number or
// numeric string) to an int. Fractional values are rounded.
func ParseScore(v any) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case int32:
		return int(t), true
	case int64:
		return int(t), true
	case float32:
		return roundScore(float64(t))
	case float64:
		return roundScore(t)
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0, false
		}
		return roundScore(f)
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return roundScore(f)
	default:
		return 0, false
	}
}

// NormalizeScore parses and clamps v. Values that cannot be parsed fall back
// to DefaultScore.
func NormalizeScore(v any) int {
	n, ok := ParseScore(v)
	if !ok {
		return DefaultScore
	}
	return ClampScore(n)
}

func roundScore(f float64) (int, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int(math.Round(f)), true
}
