package tally

import (
	"sort"
	"time"
)

// DefaultRecentLimit caps the recent-activity feed.
const DefaultRecentLimit = 100

// RangeOptions lists the selectable chart windows, in days.
var RangeOptions = []int{7, 14, 30, 60, 90}

// Totals holds the summary counters.
type Totals struct {
	Today int `json:"today"`
	Total int `json:"total"`
}

// SeriesRow is one calendar day of the chart.
type SeriesRow struct {
	Label  string         `json:"dateLabel"` // MM-DD
	Date   string         `json:"fullDate"`  // YYYY-MM-DD
	Counts map[string]int `json:"counts"`    // task id -> sum
}

// Activity is one entry of the recent-activity feed.
type Activity struct {
	TaskID string    `json:"taskId"`
	Name   string    `json:"name"`
	ISO    string    `json:"iso"`
	Qty    int       `json:"qty"`
	At     time.Time `json:"-"`
}

// VisibleTasks filters out archived tasks unless showArchived is set.
func VisibleTasks(tasks []Task, showArchived bool) []Task {
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if showArchived || !t.Archived {
			out = append(out, t)
		}
	}
	return out
}

// ComputeTotals sums every event of the given tasks, and separately those
// whose calendar day in now's location is today.
func ComputeTotals(tasks []Task, now time.Time) Totals {
	today := DateKey(now)
	loc := now.Location()
	var tot Totals
	for _, t := range tasks {
		for _, ev := range t.Events {
			tot.Total += ev.Qty
			if at, ok := ev.Instant(); ok && DayKeyIn(at, loc) == today {
				tot.Today += ev.Qty
			}
		}
	}
	return tot
}

// DailySeries builds rangeDays consecutive day rows ending on end's calendar
// day, oldest first, with a per-task sum on every row.
func DailySeries(tasks []Task, rangeDays int, end time.Time) []SeriesRow {
	if rangeDays <= 0 {
		return []SeriesRow{}
	}
	loc := end.Location()

	buckets := make(map[string]map[string]int)
	for _, t := range tasks {
		for _, ev := range t.Events {
			at, ok := ev.Instant()
			if !ok {
				continue
			}
			day := DayKeyIn(at, loc)
			m := buckets[day]
			if m == nil {
				m = make(map[string]int)
				buckets[day] = m
			}
			m[t.ID] += ev.Qty
		}
	}

	last := StartOfDay(end)
	rows := make([]SeriesRow, 0, rangeDays)
	for i := rangeDays - 1; i >= 0; i-- {
		day := last.AddDate(0, 0, -i)
		key := DateKey(day)
		counts := make(map[string]int, len(tasks))
		for _, t := range tasks {
			counts[t.ID] = buckets[key][t.ID]
		}
		rows = append(rows, SeriesRow{Label: key[5:], Date: key, Counts: counts})
	}
	return rows
}

// SeriesFor extracts one task's values from the rows, in order.
func SeriesFor(rows []SeriesRow, taskID string) []float64 {
	out := make([]float64, len(rows))
	for i, r := range rows {
		out[i] = float64(r.Counts[taskID])
	}
	return out
}

// RecentActivity flattens the events of all tasks, archived ones included,
// newest first. Events whose timestamp does not parse are skipped. A limit
// of zero or less means DefaultRecentLimit.
func RecentActivity(tasks []Task, limit int) []Activity {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	var out []Activity
	for _, t := range tasks {
		for _, ev := range t.Events {
			at, ok := ev.Instant()
			if !ok {
				continue
			}
			out = append(out, Activity{TaskID: t.ID, Name: t.Name, ISO: ev.ISO, Qty: ev.Qty, At: at})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].At.After(out[j].At)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	if out == nil {
		out = []Activity{}
	}
	return out
}

// NextRange returns the range option after current, wrapping around. An
// unknown current value snaps to the nearest larger option.
func NextRange(current int, step int) int {
	idx := -1
	for i, r := range RangeOptions {
		if r == current {
			idx = i
			break
		}
	}
	if idx < 0 {
		for _, r := range RangeOptions {
			if r >= current {
				return r
			}
		}
		return RangeOptions[len(RangeOptions)-1]
	}
	n := len(RangeOptions)
	return RangeOptions[((idx+step)%n+n)%n]
}
