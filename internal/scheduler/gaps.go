package scheduler

import (
	"sort"
	"time"

	"github.com/julianstephens/studyplan/internal/models"
	"github.com/julianstephens/studyplan/internal/utils"
)

// Gap is a half-open [Start, End) stretch of free, eligible time.
type Gap struct {
	Start time.Time
	End   time.Time
}

func (g Gap) Minutes() int {
	return int(g.End.Sub(g.Start) / time.Minute)
}

// FindGaps returns the free time inside [windowStart, windowEnd) that is not covered by
// busy, clipped to each day's [DayStartHour, DayEndHour) in the configured location and
// aligned to whole minutes. Pieces shorter than MinGapMinutes are dropped. A fully busy
// window yields an empty slice.
func FindGaps(windowStart, windowEnd time.Time, busy []models.BusyInterval, cfg Config) []Gap {
	gaps := []Gap{}
	if !windowEnd.After(windowStart) {
		return gaps
	}

	for _, free := range complement(windowStart, windowEnd, mergeBusy(busy)) {
		for _, piece := range clipToDays(free, cfg) {
			piece.Start = ceilMinute(piece.Start)
			piece.End = piece.End.Truncate(time.Minute)
			if !piece.End.After(piece.Start) || piece.Minutes() < cfg.MinGapMinutes {
				continue
			}
			gaps = append(gaps, piece)
		}
	}
	return gaps
}

// mergeBusy sorts intervals by start and merges overlapping or touching ones.
func mergeBusy(busy []models.BusyInterval) []Gap {
	intervals := make([]Gap, 0, len(busy))
	for _, b := range busy {
		if b.End.After(b.Start) {
			intervals = append(intervals, Gap{Start: b.Start, End: b.End})
		}
	}
	sort.Slice(intervals, func(i, j int) bool {
		if !intervals[i].Start.Equal(intervals[j].Start) {
			return intervals[i].Start.Before(intervals[j].Start)
		}
		return intervals[i].End.Before(intervals[j].End)
	})

	merged := make([]Gap, 0, len(intervals))
	for _, iv := range intervals {
		if n := len(merged); n > 0 && !iv.Start.After(merged[n-1].End) {
			if iv.End.After(merged[n-1].End) {
				merged[n-1].End = iv.End
			}
			continue
		}
		merged = append(merged, iv)
	}
	return merged
}

// complement returns the parts of [start, end) not covered by the sorted, merged busy list.
func complement(start, end time.Time, merged []Gap) []Gap {
	var free []Gap
	cursor := start
	for _, b := range merged {
		if !b.End.After(cursor) {
			continue
		}
		if !b.Start.Before(end) {
			break
		}
		if b.Start.After(cursor) {
			free = append(free, Gap{Start: cursor, End: b.Start})
		}
		cursor = b.End
	}
	if cursor.Before(end) {
		free = append(free, Gap{Start: cursor, End: end})
	}
	return free
}

// clipToDays intersects g with each day's eligible hours, splitting it at day boundaries.
func clipToDays(g Gap, cfg Config) []Gap {
	loc := cfg.location()
	var pieces []Gap
	for day := utils.StartOfDay(g.Start, loc); day.Before(g.End); day = day.AddDate(0, 0, 1) {
		open := time.Date(day.Year(), day.Month(), day.Day(), cfg.DayStartHour, 0, 0, 0, loc)
		closing := time.Date(day.Year(), day.Month(), day.Day(), cfg.DayEndHour, 0, 0, 0, loc)

		start := latest(g.Start, open)
		end := earliest(g.End, closing)
		if end.After(start) {
			pieces = append(pieces, Gap{Start: start, End: end})
		}
	}
	return pieces
}

func ceilMinute(t time.Time) time.Time {
	if tr := t.Truncate(time.Minute); !tr.Equal(t) {
		return tr.Add(time.Minute)
	}
	return t
}

func latest(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func earliest(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
