package reports

import (
	"fmt"
	"time"

	"tally/internal/tally"
)

// TaskSource supplies the list a report is computed from.
type TaskSource interface {
	Tasks() []tally.Task
}

// Generator creates reports from store data.
type Generator struct {
	source TaskSource
	now    func() time.Time
}

// NewGenerator creates a new report generator.
func NewGenerator(source TaskSource) *Generator {
	return &Generator{source: source, now: time.Now}
}

// SetNowFunc overrides the clock stamped into GeneratedAt.
func (g *Generator) SetNowFunc(now func() time.Time) {
	if now == nil {
		now = time.Now
	}
	g.now = now
}

// Options select the window and what it includes.
type Options struct {
	End          time.Time // calendar day the window ends on; zero means today
	Days         int
	ShowArchived bool
	RecentLimit  int
}

// GenerateRange builds the report for opts.
func (g *Generator) GenerateRange(opts Options) (*RangeReport, error) {
	if opts.Days <= 0 {
		return nil, fmt.Errorf("range must be at least one day, got %d", opts.Days)
	}
	end := opts.End
	if end.IsZero() {
		end = g.now()
	}

	all := g.source.Tasks()
	visible := tally.VisibleTasks(all, opts.ShowArchived)
	series := tally.DailySeries(visible, opts.Days, end)

	report := &RangeReport{
		Start:        series[0].Date,
		End:          series[len(series)-1].Date,
		Days:         opts.Days,
		ShowArchived: opts.ShowArchived,
		Totals:       tally.ComputeTotals(visible, end),
		Recent:       tally.RecentActivity(all, opts.RecentLimit),
		GeneratedAt:  g.now(),
	}

	for _, row := range series {
		day := DaySummary{Date: row.Date, ByTask: row.Counts}
		if d, err := time.ParseInLocation(tally.DateKeyLayout, row.Date, end.Location()); err == nil {
			day.DayOfWeek = d.Weekday().String()[:3]
		}
		for _, n := range row.Counts {
			day.Total += n
		}
		report.RangeTotal += day.Total
		report.Daily = append(report.Daily, day)
	}

	for _, t := range visible {
		summary := TaskSummary{
			ID:       t.ID,
			Name:     t.Name,
			Color:    t.Color,
			Archived: t.Archived,
			Today:    tally.ComputeTotals([]tally.Task{t}, end).Today,
			Total:    t.Total(),
			Streak:   streak(t, end),
		}
		for _, row := range series {
			n := row.Counts[t.ID]
			if n == 0 {
				continue
			}
			summary.InRange += n
			summary.ActiveDays++
			if n > summary.BestDayQty {
				summary.BestDay, summary.BestDayQty = row.Date, n
			}
		}
		summary.DailyAverage = float64(summary.InRange) / float64(opts.Days)
		report.Tasks = append(report.Tasks, summary)
	}

	return report, nil
}

// streak counts consecutive active days ending today. A day without
// activity yet today does not break a streak that ran through yesterday.
func streak(t tally.Task, now time.Time) int {
	days := make(map[string]bool)
	for _, ev := range t.Events {
		if at, ok := ev.Instant(); ok {
			days[tally.DayKeyIn(at, now.Location())] = true
		}
	}

	day := tally.StartOfDay(now)
	if !days[tally.DateKey(day)] {
		day = day.AddDate(0, 0, -1)
	}
	n := 0
	for days[tally.DateKey(day)] {
		n++
		day = day.AddDate(0, 0, -1)
	}
	return n
}
