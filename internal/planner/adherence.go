package planner

import (
	"context"
	"fmt"
	"time"

	"github.com/julianstephens/studyplan/internal/adherence"
	"github.com/julianstephens/studyplan/internal/errors"
	"github.com/julianstephens/studyplan/internal/models"
	"github.com/julianstephens/studyplan/internal/storage"
)

// Adherence aggregates the sessions starting in [start, end). A nil bound falls
// back to the trailing seven-day window ending now.
func (s *Service) Adherence(ctx context.Context, start, end *time.Time) (models.StudyPlanAdherenceMetrics, error) {
	defStart, defEnd := adherence.DefaultWindow(s.clock.Now())
	from, to := defStart, defEnd
	if end != nil {
		to = *end
		if start == nil {
			from = to.Add(defStart.Sub(defEnd))
		}
	}
	if start != nil {
		from = *start
	}
	if !to.After(from) {
		return models.StudyPlanAdherenceMetrics{}, fmt.Errorf("%w: adherence window end %s is not after start %s",
			errors.ErrInvalidWindow, to.Format(time.RFC3339), from.Format(time.RFC3339))
	}

	// Overlap filtering may return records that start before the window; Compute drops them.
	records, err := s.store.ListSessions(ctx, storage.SessionFilter{Start: &from, End: &to})
	if err != nil {
		return models.StudyPlanAdherenceMetrics{}, fmt.Errorf("failed to list sessions: %w", err)
	}

	loc, err := s.location(ctx)
	if err != nil {
		return models.StudyPlanAdherenceMetrics{}, err
	}

	m := adherence.Compute(records, from, to, loc, adherence.NoteLimit(0))
	s.metrics.RecordAdherence(m)
	return m, nil
}
