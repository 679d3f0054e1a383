package storage

import (
	"context"
	"time"

	"github.com/julianstephens/studyplan/internal/models"
)

// SessionFilter narrows ListSessions. Start and End select records whose interval
// overlaps [Start, End); a zero Limit means no limit.
type SessionFilter struct {
	Start      *time.Time
	End        *time.Time
	Status     models.SessionStatus
	DeadlineID string
	Limit      int
}

type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Settings
	GetSettings(ctx context.Context) (models.Settings, error)
	SaveSettings(ctx context.Context, settings models.Settings) error

	// Deadlines
	AddDeadline(ctx context.Context, d models.Deadline) error
	GetDeadline(ctx context.Context, id string) (models.Deadline, error)
	ListDeadlines(ctx context.Context, includeCompleted bool) ([]models.Deadline, error)
	UpdateDeadline(ctx context.Context, d models.Deadline) error
	// DeleteDeadline removes the deadline and its session records together.
	DeleteDeadline(ctx context.Context, id string) error

	// Lectures
	AddLecture(ctx context.Context, l models.LectureEvent) error
	ListLectures(ctx context.Context, start, end time.Time) ([]models.LectureEvent, error)
	DeleteLecture(ctx context.Context, id string) error

	// Session records
	// SaveSessions inserts pending records, ignoring ids that already exist, and
	// returns how many were new.
	SaveSessions(ctx context.Context, records []models.StudyPlanSessionRecord) (int, error)
	GetSession(ctx context.Context, id string) (models.StudyPlanSessionRecord, error)
	ListSessions(ctx context.Context, filter SessionFilter) ([]models.StudyPlanSessionRecord, error)
	// CheckInSession moves a pending record to a terminal status in one conditional
	// update. It fails with ErrNotFound for unknown ids and ErrInvalidStateTransition
	// when the record is no longer pending.
	CheckInSession(ctx context.Context, id string, checkIn models.CheckIn) (models.StudyPlanSessionRecord, error)

	// Suggestion mutes
	AddMute(ctx context.Context, m models.ScheduleSuggestionMute) error
	ListMutes(ctx context.Context, fromDay, toDay string) ([]models.ScheduleSuggestionMute, error)
	DeleteMute(ctx context.Context, day string, scope models.MuteScope) error

	// Utils
	GetConfigPath() string
}
