// Package reports summarizes a window of days for the report command.
package reports

import (
	"time"

	"tally/internal/tally"
)

// RangeReport covers Days calendar days ending on End.
type RangeReport struct {
	Start        string           `json:"start"` // YYYY-MM-DD
	End          string           `json:"end"`
	Days         int              `json:"days"`
	ShowArchived bool             `json:"show_archived"`
	Totals       tally.Totals     `json:"totals"`
	RangeTotal   int              `json:"range_total"`
	Tasks        []TaskSummary    `json:"tasks"`
	Daily        []DaySummary     `json:"daily"`
	Recent       []tally.Activity `json:"recent"`
	GeneratedAt  time.Time        `json:"generated_at"`
}

// TaskSummary contains one task's statistics for the window.
type TaskSummary struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Color        string  `json:"color"`
	Archived     bool    `json:"archived"`
	Today        int     `json:"today"`
	Total        int     `json:"total"`    // all time
	InRange      int     `json:"in_range"` // inside the window
	ActiveDays   int     `json:"active_days"`
	DailyAverage float64 `json:"daily_average"`
	BestDay      string  `json:"best_day,omitempty"`
	BestDayQty   int     `json:"best_day_qty"`
	Streak       int     `json:"streak"` // consecutive days with activity up to today
}

// DaySummary is one row of the window.
type DaySummary struct {
	Date      string         `json:"date"`
	DayOfWeek string         `json:"day_of_week"`
	Total     int            `json:"total"`
	ByTask    map[string]int `json:"by_task"`
}
