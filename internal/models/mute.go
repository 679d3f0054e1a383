package models

import (
	"fmt"
	"time"
)

type MuteScope string

const (
	MuteScopeAllDay    MuteScope = "all_day"
	MuteScopeMorning   MuteScope = "morning"
	MuteScopeAfternoon MuteScope = "afternoon"
	MuteScopeEvening   MuteScope = "evening"
)

// Hours returns the [start, end) hour range covered by the scope.
func (s MuteScope) Hours() (int, int, error) {
	switch s {
	case MuteScopeAllDay:
		return 0, 24, nil
	case MuteScopeMorning:
		return 0, 12, nil
	case MuteScopeAfternoon:
		return 12, 17, nil
	case MuteScopeEvening:
		return 17, 24, nil
	default:
		return 0, 0, fmt.Errorf("unknown mute scope: %q", s)
	}
}

// ScheduleSuggestionMute suppresses session suggestions for part or all of a day.
type ScheduleSuggestionMute struct {
	Day       string    `json:"day"` // YYYY-MM-DD format
	Scope     MuteScope `json:"scope"`
	CreatedAt time.Time `json:"createdAt"`
}

// Interval resolves the mute to absolute time in loc.
func (m ScheduleSuggestionMute) Interval(loc *time.Location) (time.Time, time.Time, error) {
	day, err := time.ParseInLocation("2006-01-02", m.Day, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid mute day %q: %w", m.Day, err)
	}
	from, to, err := m.Scope.Hours()
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	start := time.Date(day.Year(), day.Month(), day.Day(), from, 0, 0, 0, loc)
	end := time.Date(day.Year(), day.Month(), day.Day(), to, 0, 0, 0, loc)
	return start, end, nil
}
