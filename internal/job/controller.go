package job

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"

	"recast/internal/convert"
	"recast/internal/log"
)

const defaultEventBuffer = 64

// ControllerConfig is the configuration for the job controller.
type ControllerConfig struct {
	Converter Converter
	Pacing    Pacing
	Logger    log.Logger
	// EventBuffer is the capacity of the event channel of each run.
	EventBuffer int
}

func (c *ControllerConfig) defaults() error {
	if c.Converter == nil {
		return fmt.Errorf("converter is required")
	}

	pacing, err := c.Pacing.withDefaults()
	if err != nil {
		return fmt.Errorf("invalid pacing: %w", err)
	}
	c.Pacing = pacing

	if c.EventBuffer < 0 {
		return fmt.Errorf("event buffer can't be negative")
	}
	if c.EventBuffer == 0 {
		c.EventBuffer = defaultEventBuffer
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "job.Controller"})

	return nil
}

// Controller runs conversion jobs, one at a time, on a background goroutine.
type Controller struct {
	converter Converter
	pacing    Pacing
	logger    log.Logger
	buffer    int
	active    atomic.Bool
}

// NewController creates a new job controller.
func NewController(cfg ControllerConfig) (*Controller, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Controller{
		converter: cfg.Converter,
		pacing:    cfg.Pacing,
		logger:    cfg.Logger,
		buffer:    cfg.EventBuffer,
	}, nil
}

// Start validates job and runs it in the background. The returned Handle streams
// events and accepts cancellation. Cancelling ctx stops the run in any phase.
//
// An unset job.Format is not a start error: the run fails after warm-up.
func (c *Controller) Start(ctx context.Context, job Job) (*Handle, error) {
	if len(job.Files) == 0 {
		return nil, ErrNoFiles
	}
	if job.Quality < MinQuality || job.Quality > MaxQuality {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidQuality, job.Quality)
	}
	if job.Format != convert.FormatNone && !job.Format.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidFormat, string(job.Format))
	}

	if !c.active.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}

	job.Files = append([]string(nil), job.Files...)
	if job.ID == "" {
		job.ID = ulid.Make().String()
	}

	runCtx, cancel := context.WithCancel(ctx)
	h := newHandle(job.ID, c.buffer, cancel)
	h.setState(StateWarmUp)

	r := &run{
		job:       job,
		pacing:    c.pacing,
		converter: c.converter,
		handle:    h,
		logger:    c.logger.WithValues(log.Kv{"job": job.ID}),
	}

	go func() {
		defer cancel()

		res := r.execute(runCtx)
		h.complete(res)
		c.active.Store(false)
		close(h.done)
	}()

	return h, nil
}

// run holds the mutable state of one job execution. Only its goroutine touches it.
type run struct {
	job       Job
	pacing    Pacing
	converter Converter
	handle    *Handle
	logger    log.Logger

	reporter   Reporter
	aggregator Aggregator
	startedAt  time.Time
}

func (r *run) execute(ctx context.Context) (res Result) {
	r.startedAt = time.Now()
	res = Result{JobID: r.job.ID, StartedAt: r.startedAt}
	defer func() {
		res.FinishedAt = time.Now()
		res.Summary = r.aggregator.Summary()
	}()

	r.logger.Infof("starting job: %d files to %s", len(r.job.Files), r.job.Format)

	if err := r.warmUp(ctx); err != nil {
		return r.cancelled(res)
	}

	if r.job.Format == convert.FormatNone {
		r.logger.Errorf("no output format selected")
		r.endWarmUp(ctx, StateFailed)
		res.State = StateFailed
		res.Message = MessageNoFormat
		return res
	}

	r.endWarmUp(ctx, StateConverting)

	if err := r.convertAll(ctx); err != nil {
		if errors.Is(err, errCritical) {
			res.State = StateFailed
			res.Message = MessageCritical
			return res
		}
		return r.cancelled(res)
	}

	r.handle.setState(StateTailPadding)
	if err := r.pad(ctx); err != nil {
		return r.cancelled(res)
	}

	if !r.progress(ctx, complete) || !r.handle.settle(ctx, StateDone) {
		return r.cancelled(res)
	}

	res.State = StateDone
	res.Success, res.Message = r.aggregator.Finalize()
	summary := r.aggregator.Summary()
	r.logger.Infof("job finished: %d/%d converted, %d skipped, %d failed", summary.Succeeded, summary.Total, summary.Skipped, summary.Failed)
	return res
}

func (r *run) cancelled(res Result) Result {
	r.logger.Warningf("job cancelled")
	res.State = StateCancelled
	res.Message = MessageCancelled
	return res
}

// warmUp ticks before any work. Cancellation requests are refused here; only the
// parent context can stop it.
func (r *run) warmUp(ctx context.Context) error {
	for tick := 0; tick < r.pacing.WarmUpTicks; tick++ {
		r.status(ctx, WarmUpStatus)
		r.progress(ctx, WarmUpPercent(tick, r.pacing.WarmUpTicks))
		if err := r.warmUpWait(ctx, r.pacing.TickInterval); err != nil {
			return err
		}
	}
	return ctx.Err()
}

// endWarmUp moves the run to next, then answers a request that arrived after the
// last warm-up tick. Later requests see next.
func (r *run) endWarmUp(ctx context.Context, next State) {
	r.handle.setState(next)
	select {
	case <-r.handle.rejections:
		r.rejectCancel(ctx)
	default:
	}
}

func (r *run) warmUpWait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	for {
		select {
		case <-timer.C:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		case <-r.handle.rejections:
			r.rejectCancel(ctx)
		}
	}
}

func (r *run) rejectCancel(ctx context.Context) {
	r.logger.Infof("cancellation refused during warm-up")
	r.handle.emit(ctx, Event{Kind: EventCancelRejected, Status: CancelRejectedStatus})
}

var errCritical = errors.New("critical batch failure")

// convertAll converts every file, isolating per-file failures. A panic escaping the
// per-file boundary is reported as errCritical, cancellation as the context error.
func (r *run) convertAll(ctx context.Context) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Errorf("fatal worker error: %v\n%s", rec, debug.Stack())
			err = errCritical
		}
	}()

	total := len(r.job.Files)
	for i, path := range r.job.Files {
		if err := ctx.Err(); err != nil {
			return err
		}

		out, convErr := r.convertOne(ctx, path)
		if ctxErr := ctx.Err(); convErr != nil && ctxErr != nil && errors.Is(convErr, ctxErr) {
			// Interrupted mid-file: no outcome for it.
			return ctxErr
		}

		outcome := NewOutcome(path, out, convErr)
		r.aggregator.Record(outcome)
		if convErr != nil {
			r.logger.Errorf("could not convert %s (%s): %v", path, outcome.Reason, convErr)
			r.status(ctx, FailureStatus(path, convErr))
		} else {
			r.logger.Debugf("converted %s -> %s", path, out)
		}

		r.progress(ctx, ConversionPercent(i+1, total))
		if err := sleep(ctx, r.pacing.FileDelay); err != nil {
			return err
		}
	}

	return nil
}

// convertOne calls the converter, turning a panic into an unknown conversion error.
func (r *run) convertOne(ctx context.Context, path string) (out string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Errorf("panic converting %s: %v\n%s", path, rec, debug.Stack())
			out = ""
			err = &convert.Error{Kind: convert.KindUnknown, Path: path, Err: fmt.Errorf("panic: %v", rec)}
		}
	}()

	return r.converter.Convert(ctx, path, r.job.Format, r.job.Destination, r.job.Quality)
}

// pad stretches the run to the pacing MinDuration, measured from job start.
func (r *run) pad(ctx context.Context) error {
	remaining := r.pacing.MinDuration - time.Since(r.startedAt)
	steps := r.pacing.PaddingSteps
	if remaining <= 0 || steps <= 0 {
		return ctx.Err()
	}

	start := r.reporter.Last()
	stepDelay := remaining / time.Duration(steps)
	for step := 1; step <= steps; step++ {
		if err := sleep(ctx, stepDelay); err != nil {
			return err
		}
		r.status(ctx, PaddingStatus(step))
		r.progress(ctx, PaddingPercent(start, step, steps))
	}
	return ctx.Err()
}

func (r *run) status(ctx context.Context, text string) bool {
	return r.handle.emit(ctx, Event{Kind: EventStatus, Status: text})
}

func (r *run) progress(ctx context.Context, percent int) bool {
	return r.handle.emit(ctx, Event{Kind: EventProgress, Percent: r.reporter.Next(percent)})
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
