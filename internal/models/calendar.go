package models

import "time"

// LectureEvent is a fixed calendar commitment supplied by the calendar collaborator.
type LectureEvent struct {
	ID        string    `json:"id"`
	Course    string    `json:"course"`
	Title     string    `json:"title"`
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
}

// BusyInterval is a half-open [Start, End) block of committed time. Course is empty when
// the commitment is not tied to a course.
type BusyInterval struct {
	Start  time.Time
	End    time.Time
	Course string
}

func (b BusyInterval) Duration() time.Duration {
	return b.End.Sub(b.Start)
}

// Overlaps reports whether two half-open intervals share any instant.
func (b BusyInterval) Overlaps(start, end time.Time) bool {
	return b.Start.Before(end) && start.Before(b.End)
}
