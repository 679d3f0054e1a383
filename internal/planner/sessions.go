package planner

import (
	"context"
	"fmt"

	"github.com/julianstephens/studyplan/internal/constants"
	"github.com/julianstephens/studyplan/internal/errors"
	"github.com/julianstephens/studyplan/internal/models"
	"github.com/julianstephens/studyplan/internal/storage"
)

// NormalizeLimit applies the default and ceiling to a requested page size.
func NormalizeLimit(limit int) int {
	switch {
	case limit <= 0:
		return constants.DefaultSessionListLimit
	case limit > constants.MaxSessionListLimit:
		return constants.MaxSessionListLimit
	default:
		return limit
	}
}

// ListSessions returns stored sessions ordered by start time.
func (s *Service) ListSessions(ctx context.Context, filter storage.SessionFilter) ([]models.StudyPlanSessionRecord, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", errors.ErrInvalidWindow, filter.Status)
	}
	if filter.Start != nil && filter.End != nil && !filter.End.After(*filter.Start) {
		return nil, fmt.Errorf("%w: window end is not after start", errors.ErrInvalidWindow)
	}
	filter.Limit = NormalizeLimit(filter.Limit)
	return s.store.ListSessions(ctx, filter)
}

func (s *Service) GetSession(ctx context.Context, id string) (models.StudyPlanSessionRecord, error) {
	return s.store.GetSession(ctx, id)
}
