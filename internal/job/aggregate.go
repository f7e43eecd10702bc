package job

import "fmt"

// Completion messages.
const (
	MessageAllSucceeded = "All conversions completed successfully."
	MessageAllFailed    = "Conversion failed for all files. Check file integrity or permissions."
	MessageNoFormat     = "Error: No output format selected."
	MessageCritical     = "Critical error during batch process. See console."
	MessageCancelled    = "Conversion canceled."
)

// PartialMessage reports a run where only some files converted.
func PartialMessage(succeeded, total int) string {
	return fmt.Sprintf("Conversion finished. Successfully converted %d of %d files.", succeeded, total)
}

// Aggregator accumulates file outcomes into a Summary.
type Aggregator struct {
	summary Summary
}

// Record appends an outcome.
func (a *Aggregator) Record(o FileOutcome) {
	a.summary.Total++
	switch o.Status {
	case OutcomeSuccess:
		a.summary.Succeeded++
	case OutcomeSkipped:
		a.summary.Skipped++
	default:
		a.summary.Failed++
	}
	a.summary.Outcomes = append(a.summary.Outcomes, o)
}

// Finalize derives the job-level success flag and message.
func (a *Aggregator) Finalize() (bool, string) {
	s := a.summary
	switch {
	case s.Total > 0 && s.Succeeded == s.Total:
		return true, MessageAllSucceeded
	case s.Succeeded > 0:
		return true, PartialMessage(s.Succeeded, s.Total)
	default:
		return false, MessageAllFailed
	}
}

// Summary returns a copy of the current summary.
func (a *Aggregator) Summary() Summary {
	s := a.summary
	s.Outcomes = make([]FileOutcome, len(a.summary.Outcomes))
	copy(s.Outcomes, a.summary.Outcomes)
	return s
}
