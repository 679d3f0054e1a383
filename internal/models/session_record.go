package models

import "time"

type SessionStatus string

const (
	SessionStatusPending SessionStatus = "pending"
	SessionStatusDone    SessionStatus = "done"
	SessionStatusSkipped SessionStatus = "skipped"
)

func (s SessionStatus) Valid() bool {
	switch s {
	case SessionStatusPending, SessionStatusDone, SessionStatusSkipped:
		return true
	}
	return false
}

// Checked reports whether the status is terminal.
func (s SessionStatus) Checked() bool {
	return s == SessionStatusDone || s == SessionStatusSkipped
}

// StudyPlanSessionRecord is a persisted session plus its check-in lifecycle.
type StudyPlanSessionRecord struct {
	StudyPlanSession
	GeneratedAt time.Time     `json:"generatedAt"`
	Status      SessionStatus `json:"status"`
	CheckedAt   *time.Time    `json:"checkedAt,omitempty"`
	EnergyLevel *int          `json:"energyLevel,omitempty"`
	FocusLevel  *int          `json:"focusLevel,omitempty"`
	CheckInNote string        `json:"checkInNote,omitempty"`
}

// NewSessionRecord turns a planned session into a pending record.
func NewSessionRecord(session StudyPlanSession, generatedAt time.Time) StudyPlanSessionRecord {
	return StudyPlanSessionRecord{
		StudyPlanSession: session,
		GeneratedAt:      generatedAt,
		Status:           SessionStatusPending,
	}
}

// BusyInterval converts the record into calendar load for a later generation run.
func (r StudyPlanSessionRecord) BusyInterval() BusyInterval {
	return BusyInterval{Start: r.StartTime, End: r.EndTime, Course: r.Course}
}

// CheckIn is the mutation applied by the check-in recorder.
type CheckIn struct {
	Status      SessionStatus
	CheckedAt   time.Time
	EnergyLevel *int
	FocusLevel  *int
	Note        string
}
