package job_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"recast/internal/convert"
	"recast/internal/job"
)

func TestNewOutcome(t *testing.T) {
	tests := map[string]struct {
		err       error
		expStatus job.OutcomeStatus
		expReason convert.ErrorKind
	}{
		"success": {
			expStatus: job.OutcomeSuccess,
		},
		"unreadable is skipped": {
			err:       &convert.Error{Kind: convert.KindUnreadable},
			expStatus: job.OutcomeSkipped,
			expReason: convert.KindUnreadable,
		},
		"io failure is skipped": {
			err:       &convert.Error{Kind: convert.KindIOFailure},
			expStatus: job.OutcomeSkipped,
			expReason: convert.KindIOFailure,
		},
		"unknown fails": {
			err:       &convert.Error{Kind: convert.KindUnknown},
			expStatus: job.OutcomeFailed,
			expReason: convert.KindUnknown,
		},
		"unclassified error fails": {
			err:       errors.New("boom"),
			expStatus: job.OutcomeFailed,
			expReason: convert.KindUnknown,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			o := job.NewOutcome("in.png", "out.jpg", test.err)
			assert.Equal(t, test.expStatus, o.Status)
			assert.Equal(t, test.expReason, o.Reason)
			if test.err == nil {
				assert.Equal(t, "out.jpg", o.Output)
			} else {
				assert.Empty(t, o.Output)
			}
		})
	}
}

func TestAggregatorFinalize(t *testing.T) {
	ok := job.FileOutcome{Status: job.OutcomeSuccess}
	skipped := job.FileOutcome{Status: job.OutcomeSkipped, Reason: convert.KindUnreadable}
	failed := job.FileOutcome{Status: job.OutcomeFailed}

	tests := map[string]struct {
		outcomes   []job.FileOutcome
		expSuccess bool
		expMessage string
	}{
		"all succeeded": {
			outcomes:   []job.FileOutcome{ok, ok, ok},
			expSuccess: true,
			expMessage: "All conversions completed successfully.",
		},
		"partial": {
			outcomes:   []job.FileOutcome{ok, skipped},
			expSuccess: true,
			expMessage: "Conversion finished. Successfully converted 1 of 2 files.",
		},
		"partial with failures": {
			outcomes:   []job.FileOutcome{failed, ok, ok, skipped},
			expSuccess: true,
			expMessage: "Conversion finished. Successfully converted 2 of 4 files.",
		},
		"all failed": {
			outcomes:   []job.FileOutcome{skipped, failed},
			expSuccess: false,
			expMessage: "Conversion failed for all files. Check file integrity or permissions.",
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			var a job.Aggregator
			for _, o := range test.outcomes {
				a.Record(o)
			}

			success, msg := a.Finalize()
			assert.Equal(t, test.expSuccess, success)
			assert.Equal(t, test.expMessage, msg)

			s := a.Summary()
			assert.Equal(t, len(test.outcomes), s.Total)
			assert.Len(t, s.Outcomes, s.Total)
			assert.Equal(t, s.Total, s.Succeeded+s.Skipped+s.Failed)
			assert.LessOrEqual(t, s.Succeeded, s.Total)
		})
	}
}

func TestAggregatorSummaryIsACopy(t *testing.T) {
	var a job.Aggregator
	a.Record(job.FileOutcome{Path: "a.png"})

	s := a.Summary()
	s.Outcomes[0].Path = "changed"

	assert.Equal(t, "a.png", a.Summary().Outcomes[0].Path)
}
