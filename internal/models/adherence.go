package models

import "time"

type CheckInNote struct {
	SessionID string        `json:"sessionId"`
	Course    string        `json:"course"`
	Task      string        `json:"task"`
	Status    SessionStatus `json:"status"`
	CheckedAt time.Time     `json:"checkedAt"`
	Note      string        `json:"note"`
}

// CheckInTrends summarizes check-in ratings. The low and high counts are local
// days whose average rating was at most 2 or at least 4.
type CheckInTrends struct {
	CheckedCount   int           `json:"checkedCount"`
	AverageEnergy  float64       `json:"averageEnergy"`
	AverageFocus   float64       `json:"averageFocus"`
	EnergySamples  int           `json:"energySamples"`
	FocusSamples   int           `json:"focusSamples"`
	LowEnergyCount  int           `json:"lowEnergyCount"`
	HighEnergyCount int           `json:"highEnergyCount"`
	LowFocusCount   int           `json:"lowFocusCount"`
	HighFocusCount  int           `json:"highFocusCount"`
	RecentNotes    []CheckInNote `json:"recentNotes"`
}

// StudyPlanAdherenceMetrics is derived on demand from session records and never stored.
type StudyPlanAdherenceMetrics struct {
	WindowStart     time.Time     `json:"windowStart"`
	WindowEnd       time.Time     `json:"windowEnd"`
	SessionsPlanned int           `json:"sessionsPlanned"`
	SessionsDone    int           `json:"sessionsDone"`
	SessionsSkipped int           `json:"sessionsSkipped"`
	SessionsPending int           `json:"sessionsPending"`
	MinutesPlanned  int           `json:"minutesPlanned"`
	MinutesDone     int           `json:"minutesDone"`
	MinutesSkipped  int           `json:"minutesSkipped"`
	MinutesPending  int           `json:"minutesPending"`
	CompletionRate  float64       `json:"completionRate"`
	AdherenceRate   float64       `json:"adherenceRate"`
	CheckInTrends   CheckInTrends `json:"checkInTrends"`
}
