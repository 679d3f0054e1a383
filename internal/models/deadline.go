package models

import (
	"math"
	"time"
)

type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// Rank orders priorities from 1 (low) to 4 (critical). Unknown values rank 0.
func (p Priority) Rank() int {
	switch p {
	case PriorityLow:
		return 1
	case PriorityMedium:
		return 2
	case PriorityHigh:
		return 3
	case PriorityCritical:
		return 4
	default:
		return 0
	}
}

func (p Priority) Valid() bool {
	return p.Rank() > 0
}

// Deadline is an academic task owned by the deadline store. The scheduler only reads it.
type Deadline struct {
	ID                   string    `json:"id" validate:"required"`
	Course               string    `json:"course" validate:"required"`
	Task                 string    `json:"task" validate:"required"`
	DueDate              time.Time `json:"dueDate" validate:"required"`
	Priority             Priority  `json:"priority" validate:"required,oneof=low medium high critical"`
	Completed            bool      `json:"completed"`
	EffortHoursRemaining *float64  `json:"effortHoursRemaining,omitempty" validate:"omitempty,gte=0"`
	EffortConfidence     *float64  `json:"effortConfidence,omitempty" validate:"omitempty,gte=0,lte=1"`
}

// EffortMinutes returns the remaining effort rounded to whole minutes.
func (d Deadline) EffortMinutes() int {
	if d.EffortHoursRemaining == nil || *d.EffortHoursRemaining <= 0 {
		return 0
	}
	return int(math.Round(*d.EffortHoursRemaining * 60))
}

// NeedsScheduling reports whether the deadline still has work the scheduler should place.
func (d Deadline) NeedsScheduling() bool {
	return !d.Completed && d.EffortMinutes() > 0
}
