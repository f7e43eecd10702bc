package job

import (
	"errors"
	"fmt"
	"path/filepath"

	"recast/internal/convert"
)

// Phase boundaries of the progress scale. 100 is reserved for a finished run.
const (
	warmUpCeiling     = 80
	conversionSpan    = 19
	conversionCeiling = 99
	complete          = 100
)

// Status texts shown while a job runs.
const (
	WarmUpStatus         = "Wait for a moment..."
	CancelRejectedStatus = "Cancel not valid now"
	paddingStatus        = "Your images are preparing"
)

var paddingDots = []string{"", ".", "..", "..."}

// WarmUpPercent is the progress of warm-up tick (0-based) out of ticks.
func WarmUpPercent(tick, ticks int) int {
	if ticks <= 0 {
		return 0
	}
	return clamp(tick*warmUpCeiling/ticks, 0, warmUpCeiling)
}

// ConversionPercent is the progress after file index (1-based) out of total.
func ConversionPercent(index, total int) int {
	if total <= 0 {
		return warmUpCeiling
	}
	return clamp(warmUpCeiling+index*conversionSpan/total, warmUpCeiling, conversionCeiling)
}

// PaddingPercent is the progress after padding step (1-based) out of steps,
// starting from the last conversion percent.
func PaddingPercent(start, step, steps int) int {
	start = max(start, 1)
	if steps <= 0 {
		return clamp(start, 0, conversionCeiling)
	}
	return clamp(start+(complete-start)*step/steps, 0, conversionCeiling)
}

// PaddingStatus is the status of padding step (1-based), with a rotating ellipsis.
func PaddingStatus(step int) string {
	return paddingStatus + paddingDots[(max(step, 1)-1)%len(paddingDots)]
}

// FailureStatus describes a file that could not be converted.
func FailureStatus(path string, err error) string {
	name := filepath.Base(path)
	switch convert.KindOf(err) {
	case convert.KindUnreadable:
		return fmt.Sprintf("Skipped: %s. Unidentified or corrupted file format.", name)
	case convert.KindIOFailure:
		cause := err
		var cerr *convert.Error
		if errors.As(err, &cerr) && cerr.Err != nil {
			cause = cerr.Err
		}
		return fmt.Sprintf("Skipped: %s. File read/write error (%v).", name, cause)
	default:
		return fmt.Sprintf("Error converting %s. See console for details.", name)
	}
}

// Reporter turns phase positions into a non-decreasing percent sequence.
type Reporter struct {
	last int
}

// Next returns the percent to emit for p, never lower than the previous value.
func (r *Reporter) Next(p int) int {
	p = clamp(p, 0, complete)
	if p < r.last {
		return r.last
	}
	r.last = p
	return p
}

// Last is the most recently returned percent.
func (r *Reporter) Last() int {
	return r.last
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}
