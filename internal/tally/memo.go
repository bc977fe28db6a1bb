package tally

import "time"

// Inputs are the declared inputs of every derived view.
type Inputs struct {
	Tasks        []Task
	Revision     uint64
	ShowArchived bool
	RangeDays    int
	RecentLimit  int
	Now          time.Time
}

// Derived is everything the presentation layer reads.
type Derived struct {
	Visible []Task
	Totals  Totals
	Series  []SeriesRow
	Recent  []Activity
}

type visibleKey struct {
	rev          uint64
	showArchived bool
}

type totalsKey struct {
	visibleKey
	today string
	loc   *time.Location
}

type seriesKey struct {
	totalsKey
	days int
}

type recentKey struct {
	rev   uint64
	limit int
}

// Deriver caches each aggregate and recomputes it only when one of its own
// inputs changes. Callers must bump Revision whenever Tasks is replaced.
// A Deriver is not safe for concurrent use.
type Deriver struct {
	visKey   *visibleKey
	visible  []Task
	totKey   *totalsKey
	totals   Totals
	serKey   *seriesKey
	series   []SeriesRow
	recKey   *recentKey
	recent   []Activity
	computed int
}

// Computations reports how many aggregates have been computed so far.
func (d *Deriver) Computations() int { return d.computed }

// Derive returns the aggregates for in.
func (d *Deriver) Derive(in Inputs) Derived {
	vk := visibleKey{rev: in.Revision, showArchived: in.ShowArchived}
	if d.visKey == nil || *d.visKey != vk {
		d.visible = VisibleTasks(in.Tasks, in.ShowArchived)
		d.visKey = &vk
		d.computed++
	}

	tk := totalsKey{visibleKey: vk, today: DateKey(in.Now), loc: in.Now.Location()}
	if d.totKey == nil || *d.totKey != tk {
		d.totals = ComputeTotals(d.visible, in.Now)
		d.totKey = &tk
		d.computed++
	}

	sk := seriesKey{totalsKey: tk, days: in.RangeDays}
	if d.serKey == nil || *d.serKey != sk {
		d.series = DailySeries(d.visible, in.RangeDays, in.Now)
		d.serKey = &sk
		d.computed++
	}

	rk := recentKey{rev: in.Revision, limit: in.RecentLimit}
	if d.recKey == nil || *d.recKey != rk {
		d.recent = RecentActivity(in.Tasks, in.RecentLimit)
		d.recKey = &rk
		d.computed++
	}

	return Derived{Visible: d.visible, Totals: d.totals, Series: d.series, Recent: d.recent}
}
