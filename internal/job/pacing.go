package job

import (
	"fmt"
	"time"
)

// Pacing holds the artificial delays of a run: a warm-up before any work, a small
// delay after each file and a tail that stretches short runs to MinDuration.
type Pacing struct {
	// Disabled turns every delay off. The phases still happen, without ticks or padding.
	Disabled bool

	WarmUpTicks  int
	TickInterval time.Duration
	FileDelay    time.Duration
	MinDuration  time.Duration
	PaddingSteps int
}

// DefaultPacing is used for every zero field of an enabled Pacing.
var DefaultPacing = Pacing{
	WarmUpTicks:  8,
	TickInterval: time.Second,
	FileDelay:    10 * time.Millisecond,
	MinDuration:  10 * time.Second,
	PaddingSteps: 30,
}

// NoPacing runs jobs as fast as the conversions allow.
var NoPacing = Pacing{Disabled: true}

func (p Pacing) withDefaults() (Pacing, error) {
	if p.WarmUpTicks < 0 || p.PaddingSteps < 0 || p.TickInterval < 0 || p.FileDelay < 0 || p.MinDuration < 0 {
		return p, fmt.Errorf("pacing values can't be negative")
	}
	if p.Disabled {
		return Pacing{Disabled: true}, nil
	}

	if p.WarmUpTicks == 0 {
		p.WarmUpTicks = DefaultPacing.WarmUpTicks
	}
	if p.TickInterval == 0 {
		p.TickInterval = DefaultPacing.TickInterval
	}
	if p.FileDelay == 0 {
		p.FileDelay = DefaultPacing.FileDelay
	}
	if p.MinDuration == 0 {
		p.MinDuration = DefaultPacing.MinDuration
	}
	if p.PaddingSteps == 0 {
		p.PaddingSteps = DefaultPacing.PaddingSteps
	}
	return p, nil
}
