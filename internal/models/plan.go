package models

import "time"

type UnallocatedReason string

const (
	ReasonNoCapacity          UnallocatedReason = "no_capacity"
	ReasonPastDue             UnallocatedReason = "past_due"
	ReasonMuted               UnallocatedReason = "muted"
	ReasonBelowMinimumSession UnallocatedReason = "below_minimum_session"
)

type StudyPlanSession struct {
	ID              string    `json:"id"`
	DeadlineID      string    `json:"deadlineId"`
	Course          string    `json:"course"`
	Task            string    `json:"task"`
	Priority        Priority  `json:"priority"`
	StartTime       time.Time `json:"startTime"`
	EndTime         time.Time `json:"endTime"`
	DurationMinutes int       `json:"durationMinutes"`
	Score           float64   `json:"score"`
	GapQualityScore float64   `json:"gapQualityScore"`
	PriorityScore   float64   `json:"priorityScore"`
	Rationale       string    `json:"rationale"`
}

type StudyPlanUnallocatedItem struct {
	DeadlineID       string            `json:"deadlineId"`
	Course           string            `json:"course"`
	Task             string            `json:"task"`
	Priority         Priority          `json:"priority"`
	DueDate          time.Time         `json:"dueDate"`
	RemainingMinutes int               `json:"remainingMinutes"`
	Reason           UnallocatedReason `json:"reason"`
}

// StudyPlan is the immutable result of one generation request.
type StudyPlan struct {
	GeneratedAt time.Time                  `json:"generatedAt"`
	WindowStart time.Time                  `json:"windowStart"`
	WindowEnd   time.Time                  `json:"windowEnd"`
	Summary     string                     `json:"summary"`
	Sessions    []StudyPlanSession         `json:"sessions"`
	Unallocated []StudyPlanUnallocatedItem `json:"unallocated"`
}

// TotalMinutes returns the minutes scheduled across all sessions.
func (p StudyPlan) TotalMinutes() int {
	total := 0
	for _, s := range p.Sessions {
		total += s.DurationMinutes
	}
	return total
}
