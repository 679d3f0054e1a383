package planner

import (
	"context"
	"fmt"
	"time"

	"github.com/julianstephens/studyplan/internal/errors"
	"github.com/julianstephens/studyplan/internal/logger"
	"github.com/julianstephens/studyplan/internal/models"
)

// CheckInRequest records what happened to one planned session.
type CheckInRequest struct {
	SessionID   string               `json:"sessionId" validate:"required"`
	Status      models.SessionStatus `json:"status"`
	CheckedAt   *time.Time           `json:"checkedAt,omitempty"`
	EnergyLevel *int                 `json:"energyLevel,omitempty" validate:"omitempty,min=1,max=5"`
	FocusLevel  *int                 `json:"focusLevel,omitempty" validate:"omitempty,min=1,max=5"`
	Note        string               `json:"note,omitempty" validate:"max=2000"`
}

// CheckIn moves a pending session to done or skipped. The transition is one-way:
// a second check-in fails with ErrInvalidStateTransition and leaves the first intact.
func (s *Service) CheckIn(ctx context.Context, req CheckInRequest) (models.StudyPlanSessionRecord, error) {
	record, err := s.checkIn(ctx, req)
	if err != nil {
		s.metrics.RecordCheckInRejected(errors.Code(err))
		return models.StudyPlanSessionRecord{}, err
	}
	s.metrics.RecordCheckIn(record.Status)
	logger.Info("Checked in session", "id", record.ID, "status", record.Status)
	return record, nil
}

func (s *Service) checkIn(ctx context.Context, req CheckInRequest) (models.StudyPlanSessionRecord, error) {
	switch {
	case req.Status == models.SessionStatusPending:
		return models.StudyPlanSessionRecord{}, fmt.Errorf("%w: cannot check a session in as pending", errors.ErrInvalidStateTransition)
	case !req.Status.Valid():
		return models.StudyPlanSessionRecord{}, fmt.Errorf("%w: status must be done or skipped (got %q)", errors.ErrInvalidCheckIn, req.Status)
	}

	if err := s.validator.Struct(req); err != nil {
		return models.StudyPlanSessionRecord{}, fmt.Errorf("%w: %v", errors.ErrInvalidCheckIn, err)
	}

	checkedAt := s.clock.Now()
	if req.CheckedAt != nil {
		checkedAt = *req.CheckedAt
	}

	return s.store.CheckInSession(ctx, req.SessionID, models.CheckIn{
		Status:      req.Status,
		CheckedAt:   checkedAt.UTC(),
		EnergyLevel: req.EnergyLevel,
		FocusLevel:  req.FocusLevel,
		Note:        req.Note,
	})
}
