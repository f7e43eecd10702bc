package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"recast/internal/job"
)

type SummaryRow struct {
	Label string
	Value string
}

// ResultRows describes a finished job.
func ResultRows(res job.Result) []SummaryRow {
	s := res.Summary
	return []SummaryRow{
		{Label: "Job", Value: res.JobID},
		{Label: "State", Value: res.State.String()},
		{Label: "Files converted", Value: fmt.Sprintf("%d/%d", s.Succeeded, s.Total)},
		{Label: "Skipped", Value: fmt.Sprintf("%d", s.Skipped)},
		{Label: "Failed", Value: fmt.Sprintf("%d", s.Failed)},
		{Label: "Duration", Value: res.FinishedAt.Sub(res.StartedAt).Round(time.Millisecond).String()},
	}
}

func RenderSummary(rows []SummaryRow) string {
	table := make([][]string, 0, len(rows))
	for _, row := range rows {
		table = append(table, []string{row.Label, row.Value})
	}
	return RenderTable(nil, table)
}

// RenderTable aligns rows in columns. The first column is rendered as a label. header
// is optional.
func RenderTable(header []string, rows [][]string) string {
	var widths []int
	measure := func(cells []string) {
		for i, cell := range cells {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}
	measure(header)
	for _, row := range rows {
		measure(row)
	}

	total := 0
	for _, w := range widths {
		total += w
	}
	hline := strings.Repeat("-", total+3*max(len(widths)-1, 0))

	render := func(cells []string, first, rest lipgloss.Style) string {
		parts := make([]string, len(cells))
		for i, cell := range cells {
			style := rest
			if i == 0 {
				style = first
			}
			parts[i] = style.Render(padRight(cell, widths[i]))
		}
		return strings.Join(parts, " | ")
	}

	lines := []string{hline}
	if len(header) > 0 {
		lines = append(lines, render(header, headerStyle, headerStyle), hline)
	}
	for _, row := range rows {
		lines = append(lines, render(row, labelStyle, valueStyle))
	}
	lines = append(lines, hline)
	return strings.Join(lines, "\n")
}

// RenderMessage renders the completion message of a job.
func RenderMessage(success bool, msg string) string {
	if success {
		return successStyle.Render(msg)
	}
	return warnStyle.Render(msg)
}

// RenderOutcomes lists the files that did not convert, or "" when all did.
func RenderOutcomes(outcomes []job.FileOutcome) string {
	var lines []string
	for _, o := range outcomes {
		if o.Status == job.OutcomeSuccess {
			continue
		}
		lines = append(lines, fmt.Sprintf("  %s %s %s",
			warnStyle.Render(padRight(o.Status.String(), 7)),
			labelStyle.Render(o.Path),
			dimStyle.Render("("+o.Reason.String()+")"),
		))
	}
	return strings.Join(lines, "\n")
}

func padRight(s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}

var (
	valueStyle   = lipgloss.NewStyle().Foreground(ColorInk).Bold(true)
	headerStyle  = lipgloss.NewStyle().Foreground(ColorAccentAlt).Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(ColorSuccess)
)
