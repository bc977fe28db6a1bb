package reports

import (
	"fmt"
	"strings"
)

// FormatMarkdown renders a report as Markdown.
func FormatMarkdown(report *RangeReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Tally report: %s to %s\n\n", report.Start, report.End)
	scope := "active tasks"
	if report.ShowArchived {
		scope = "all tasks, archived included"
	}
	fmt.Fprintf(&b, "%d days, %s.\n\n", report.Days, scope)

	b.WriteString("## Summary\n\n")
	fmt.Fprintf(&b, "- **Today:** %d\n", report.Totals.Today)
	fmt.Fprintf(&b, "- **In range:** %d\n", report.RangeTotal)
	fmt.Fprintf(&b, "- **All time:** %d\n\n", report.Totals.Total)

	b.WriteString("## Tasks\n\n")
	if len(report.Tasks) == 0 {
		b.WriteString("_No tasks._\n\n")
	} else {
		b.WriteString("| Task | Today | Range | Avg/day | Best day | Streak | All time |\n")
		b.WriteString("| --- | ---: | ---: | ---: | --- | ---: | ---: |\n")
		for _, t := range report.Tasks {
			name := escapeCell(t.Name)
			if t.Archived {
				name += " _(archived)_"
			}
			best := "-"
			if t.BestDay != "" {
				best = fmt.Sprintf("%s (%d)", t.BestDay, t.BestDayQty)
			}
			fmt.Fprintf(&b, "| %s | %d | %d | %.1f | %s | %d | %d |\n",
				name, t.Today, t.InRange, t.DailyAverage, best, t.Streak, t.Total)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Daily\n\n")
	b.WriteString("| Date | Day | Total |\n| --- | --- | ---: |\n")
	for _, d := range report.Daily {
		fmt.Fprintf(&b, "| %s | %s | %d |\n", d.Date, d.DayOfWeek, d.Total)
	}
	b.WriteString("\n")

	if len(report.Recent) > 0 {
		b.WriteString("## Recent activity\n\n")
		for _, a := range report.Recent {
			qty := ""
			if a.Qty > 1 {
				qty = fmt.Sprintf(" ×%d", a.Qty)
			}
			fmt.Fprintf(&b, "- %s **%s**%s\n", a.At.Local().Format("2006-01-02 15:04"), escapeCell(a.Name), qty)
		}
	}

	return b.String()
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
