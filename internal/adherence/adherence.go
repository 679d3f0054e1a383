// Package adherence turns stored session records into completion and
// check-in trend metrics. Everything here is a pure function of its input.
package adherence

import (
	"math"
	"sort"
	"time"

	"github.com/julianstephens/studyplan/internal/constants"
	"github.com/julianstephens/studyplan/internal/models"
)

// DefaultWindow returns the trailing adherence window ending at now.
func DefaultWindow(now time.Time) (time.Time, time.Time) {
	return now.AddDate(0, 0, -constants.DefaultAdherenceWindowDays), now
}

// NoteLimit clamps a requested recent-notes count.
func NoteLimit(n int) int {
	switch {
	case n <= 0:
		return constants.DefaultRecentNotes
	case n > constants.MaxRecentNotes:
		return constants.MaxRecentNotes
	default:
		return n
	}
}

// dayRatings accumulates one local day's ratings.
type dayRatings struct {
	energySum, energyN int
	focusSum, focusN   int
}

// Compute aggregates the records whose start time falls in [start, end).
// Records outside the window are ignored, so callers may pass a superset.
// Sessions are assigned to days by their start time in loc; nil means UTC.
func Compute(records []models.StudyPlanSessionRecord, start, end time.Time, loc *time.Location, noteLimit int) models.StudyPlanAdherenceMetrics {
	if loc == nil {
		loc = time.UTC
	}
	m := models.StudyPlanAdherenceMetrics{
		WindowStart: start.UTC(),
		WindowEnd:   end.UTC(),
		CheckInTrends: models.CheckInTrends{
			RecentNotes: []models.CheckInNote{},
		},
	}

	var energySum, focusSum int
	var notes []models.CheckInNote
	seen := make(map[string]bool, len(records))
	days := make(map[string]*dayRatings)

	for _, r := range records {
		if r.StartTime.Before(start) || !r.StartTime.Before(end) {
			continue
		}
		// A read racing a write may return the same id twice; count it once.
		if seen[r.ID] {
			continue
		}
		seen[r.ID] = true

		m.SessionsPlanned++
		m.MinutesPlanned += r.DurationMinutes

		switch r.Status {
		case models.SessionStatusDone:
			m.SessionsDone++
			m.MinutesDone += r.DurationMinutes
		case models.SessionStatusSkipped:
			m.SessionsSkipped++
			m.MinutesSkipped += r.DurationMinutes
		default:
			m.SessionsPending++
			m.MinutesPending += r.DurationMinutes
		}

		if !r.Status.Checked() {
			continue
		}

		t := &m.CheckInTrends
		t.CheckedCount++
		if r.EnergyLevel != nil || r.FocusLevel != nil {
			key := r.StartTime.In(loc).Format(constants.DateFormat)
			day := days[key]
			if day == nil {
				day = &dayRatings{}
				days[key] = day
			}
			if r.EnergyLevel != nil {
				t.EnergySamples++
				energySum += *r.EnergyLevel
				day.energySum += *r.EnergyLevel
				day.energyN++
			}
			if r.FocusLevel != nil {
				t.FocusSamples++
				focusSum += *r.FocusLevel
				day.focusSum += *r.FocusLevel
				day.focusN++
			}
		}
		if r.CheckInNote != "" {
			note := models.CheckInNote{
				SessionID: r.ID,
				Course:    r.Course,
				Task:      r.Task,
				Status:    r.Status,
				Note:      r.CheckInNote,
			}
			if r.CheckedAt != nil {
				note.CheckedAt = r.CheckedAt.UTC()
			}
			notes = append(notes, note)
		}
	}

	m.CompletionRate = ratio(m.SessionsDone, m.SessionsPlanned)
	m.AdherenceRate = ratio(m.SessionsDone, m.SessionsDone+m.SessionsSkipped)
	m.CheckInTrends.AverageEnergy = average(energySum, m.CheckInTrends.EnergySamples)
	m.CheckInTrends.AverageFocus = average(focusSum, m.CheckInTrends.FocusSamples)
	for _, day := range days {
		t := &m.CheckInTrends
		if day.energyN > 0 {
			avg := float64(day.energySum) / float64(day.energyN)
			t.LowEnergyCount += countIf(avg <= constants.LowLevelThreshold)
			t.HighEnergyCount += countIf(avg >= constants.HighLevelThreshold)
		}
		if day.focusN > 0 {
			avg := float64(day.focusSum) / float64(day.focusN)
			t.LowFocusCount += countIf(avg <= constants.LowLevelThreshold)
			t.HighFocusCount += countIf(avg >= constants.HighLevelThreshold)
		}
	}

	sort.SliceStable(notes, func(i, j int) bool {
		if !notes[i].CheckedAt.Equal(notes[j].CheckedAt) {
			return notes[i].CheckedAt.After(notes[j].CheckedAt)
		}
		return notes[i].SessionID < notes[j].SessionID
	})
	if limit := NoteLimit(noteLimit); len(notes) > limit {
		notes = notes[:limit]
	}
	if notes != nil {
		m.CheckInTrends.RecentNotes = notes
	}

	return m
}

func countIf(ok bool) int {
	if ok {
		return 1
	}
	return 0
}

// ratio returns num/den rounded to 4 places, or 0 when den is 0.
func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return round(float64(num)/float64(den), 4)
}

func average(sum, n int) float64 {
	if n == 0 {
		return 0
	}
	return round(float64(sum)/float64(n), 2)
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
