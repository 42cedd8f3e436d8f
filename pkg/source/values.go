package source

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// nullMarkers are the cell contents read as a missing value, besides blank.
var nullMarkers = map[string]struct{}{
	"NA": {}, "N/A": {}, "n/a": {}, "NaN": {}, "nan": {},
	"NULL": {}, "null": {}, "None": {}, "nil": {}, "NIL": {},
	"#N/A": {}, "<NA>": {},
}

// IsNull reports whether a raw cell should be treated as missing.
func IsNull(v string) bool {
	v = strings.TrimSpace(v)
	if v == "" {
		return true
	}
	_, ok := nullMarkers[v]
	return ok
}

// ParseInt reads an integer cell. Integral floats such as "5.0", which
// spreadsheet exports produce for integer columns with gaps, are accepted.
func ParseInt(v string) (int64, error) {
	cleaned := strings.TrimSpace(v)
	if cleaned == "" {
		return 0, errors.New("empty string")
	}
	if i, err := strconv.ParseInt(cleaned, 10, 64); err == nil {
		return i, nil
	}
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("cannot parse %q as integer", cleaned)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, fmt.Errorf("%q is not a whole number", cleaned)
	}
	// float64(math.MaxInt64) rounds up to 2^63, so compare against 2^63 itself.
	if f >= 1<<63 || f < -1<<63 {
		return 0, fmt.Errorf("%q overflows int64", cleaned)
	}
	return int64(f), nil
}
