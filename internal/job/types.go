package job

import (
	"context"
	"errors"
	"time"

	"recast/internal/convert"
)

var (
	// ErrNoFiles is returned when a job is started without input files.
	ErrNoFiles = errors.New("job has no files")
	// ErrInvalidQuality is returned when the quality is outside [1,100].
	ErrInvalidQuality = errors.New("quality must be between 1 and 100")
	// ErrInvalidFormat is returned when the output format is set but not supported.
	ErrInvalidFormat = errors.New("unsupported output format")
	// ErrBusy is returned when a controller already runs a job.
	ErrBusy = errors.New("a job is already running")
	// ErrNotCancellable is returned when cancellation is requested during warm-up.
	ErrNotCancellable = errors.New("job cannot be cancelled yet")
	// ErrFinished is returned when cancellation arrives after the run completed.
	ErrFinished = errors.New("job already finished")
)

// Quality bounds and the default used when none is configured.
const (
	MinQuality     = 1
	MaxQuality     = 100
	DefaultQuality = 95
)

// Job is one batch conversion request.
type Job struct {
	// ID is assigned on start when empty.
	ID          string
	Files       []string
	Format      convert.Format
	Destination string
	Quality     int
}

// Converter converts a single file. convert.Engine satisfies it.
type Converter interface {
	Convert(ctx context.Context, path string, format convert.Format, destination string, quality int) (string, error)
}

// ConverterFunc adapts a function to Converter.
type ConverterFunc func(ctx context.Context, path string, format convert.Format, destination string, quality int) (string, error)

func (f ConverterFunc) Convert(ctx context.Context, path string, format convert.Format, destination string, quality int) (string, error) {
	return f(ctx, path, format, destination, quality)
}

// State is the lifecycle position of a job.
type State int32

const (
	StateIdle State = iota
	StateWarmUp
	StateConverting
	StateTailPadding
	StateDone
	StateFailed
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateWarmUp:
		return "warm-up"
	case StateConverting:
		return "converting"
	case StateTailPadding:
		return "tail-padding"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition can happen.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed || s == StateCancelled
}

// Cancellable reports whether a cancellation request is honoured in s.
func (s State) Cancellable() bool {
	return s == StateConverting || s == StateTailPadding
}

// OutcomeStatus is the per-file result class.
type OutcomeStatus int

const (
	OutcomeSuccess OutcomeStatus = iota
	OutcomeSkipped
	OutcomeFailed
)

func (s OutcomeStatus) String() string {
	switch s {
	case OutcomeSuccess:
		return "success"
	case OutcomeSkipped:
		return "skipped"
	default:
		return "failed"
	}
}

// FileOutcome is the result of converting one input path.
type FileOutcome struct {
	Path   string
	Output string
	Status OutcomeStatus
	// Reason is only meaningful when Status is not OutcomeSuccess.
	Reason convert.ErrorKind
	Err    error
}

// NewOutcome classifies the result of a Converter call.
func NewOutcome(path, output string, err error) FileOutcome {
	if err == nil {
		return FileOutcome{Path: path, Output: output, Status: OutcomeSuccess}
	}

	kind := convert.KindOf(err)
	status := OutcomeFailed
	if kind == convert.KindUnreadable || kind == convert.KindIOFailure {
		status = OutcomeSkipped
	}
	return FileOutcome{Path: path, Status: status, Reason: kind, Err: err}
}

// Summary aggregates the outcomes of a run.
type Summary struct {
	Total     int
	Succeeded int
	Skipped   int
	Failed    int
	Outcomes  []FileOutcome
}

// Result is the terminal state of a run.
type Result struct {
	JobID      string
	State      State
	Success    bool
	Message    string
	Summary    Summary
	StartedAt  time.Time
	FinishedAt time.Time
}
