package job_test

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"recast/internal/convert"
	"recast/internal/job"
)

func TestWarmUpPercent(t *testing.T) {
	var got []int
	for tick := 0; tick < 8; tick++ {
		got = append(got, job.WarmUpPercent(tick, 8))
	}
	assert.Equal(t, []int{0, 10, 20, 30, 40, 50, 60, 70}, got)
	assert.Equal(t, 0, job.WarmUpPercent(3, 0))
}

func TestConversionPercent(t *testing.T) {
	tests := map[string]struct {
		index, total int
		exp          int
	}{
		"first of three":         {index: 1, total: 3, exp: 86},
		"second of three":        {index: 2, total: 3, exp: 92},
		"last is capped at 99":   {index: 3, total: 3, exp: 99},
		"single file":            {index: 1, total: 1, exp: 99},
		"first of many floors":   {index: 1, total: 100, exp: 80},
		"half of many":           {index: 50, total: 100, exp: 89},
		"no files stays at base": {index: 0, total: 0, exp: 80},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, test.exp, job.ConversionPercent(test.index, test.total))
		})
	}
}

func TestPaddingPercent(t *testing.T) {
	tests := map[string]struct {
		start, step, steps int
		exp                int
	}{
		"first step":               {start: 86, step: 1, steps: 30, exp: 86},
		"half way":                 {start: 80, step: 15, steps: 30, exp: 90},
		"last step is capped":      {start: 86, step: 30, steps: 30, exp: 99},
		"zero start counts from 1": {start: 0, step: 15, steps: 30, exp: 50},
		"no steps":                 {start: 90, step: 1, steps: 0, exp: 90},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, test.exp, job.PaddingPercent(test.start, test.step, test.steps))
		})
	}
}

func TestPaddingStatusRotates(t *testing.T) {
	assert.Equal(t, "Your images are preparing", job.PaddingStatus(1))
	assert.Equal(t, "Your images are preparing.", job.PaddingStatus(2))
	assert.Equal(t, "Your images are preparing..", job.PaddingStatus(3))
	assert.Equal(t, "Your images are preparing...", job.PaddingStatus(4))
	assert.Equal(t, "Your images are preparing", job.PaddingStatus(5))
}

func TestFailureStatus(t *testing.T) {
	tests := map[string]struct {
		err error
		exp string
	}{
		"unreadable": {
			err: &convert.Error{Kind: convert.KindUnreadable, Path: "/in/a.png", Err: errors.New("bad data")},
			exp: "Skipped: a.png. Unidentified or corrupted file format.",
		},
		"io failure shows the cause": {
			err: &convert.Error{Kind: convert.KindIOFailure, Path: "/in/a.png", Err: os.ErrPermission},
			exp: "Skipped: a.png. File read/write error (permission denied).",
		},
		"unknown": {
			err: &convert.Error{Kind: convert.KindUnknown, Path: "/in/a.png", Err: errors.New("boom")},
			exp: "Error converting a.png. See console for details.",
		},
		"foreign errors are unknown": {
			err: errors.New("boom"),
			exp: "Error converting a.png. See console for details.",
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, test.exp, job.FailureStatus("/in/a.png", test.err))
		})
	}
}

func TestReporterIsMonotonic(t *testing.T) {
	var r job.Reporter

	var got []int
	for _, p := range []int{0, 40, 30, 80, 120, 99, -5} {
		got = append(got, r.Next(p))
	}

	assert.Equal(t, []int{0, 40, 40, 80, 100, 100, 100}, got)
	assert.Equal(t, 100, r.Last())
}
