package model

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseEpochSeconds converts the server's fractional-epoch-seconds
// float into the same float64 representation; the split-and-rescale
// here is the same trick the FloatTime serde helper in the original
// PocketOption source uses to avoid rounding a nanosecond-precision
// timestamp through an intermediate whole/fraction split, except here
// we keep it as a single float64 throughout rather than lifting it into
// a calendar type, since nothing downstream needs calendar fields. It
// is what Tick.UnmarshalJSON uses to decode the tuple's time element.
func ParseEpochSeconds(raw float64) (float64, error) {
	s := strconv.FormatFloat(raw, 'f', -1, 64)
	whole, frac, hasFrac := strings.Cut(s, ".")
	wholeSecs, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing epoch seconds %q: %w", s, err)
	}
	if !hasFrac || frac == "" {
		return float64(wholeSecs), nil
	}
	if len(frac) > 9 {
		frac = frac[:9]
	}
	nanos, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing epoch fraction %q: %w", frac, err)
	}
	scale := 1
	for i := 0; i < 9-len(frac); i++ {
		scale *= 10
	}
	nanos *= int64(scale)
	return float64(wholeSecs) + float64(nanos)/1e9, nil
}
