package planner

import (
	"context"
	"fmt"

	"github.com/julianstephens/studyplan/internal/logger"
	"github.com/julianstephens/studyplan/internal/models"
	"github.com/julianstephens/studyplan/internal/storage"
)

// AcceptPlan persists every session of plan as a pending record. Accepting the
// same plan twice is harmless: existing ids are left untouched. A plan whose
// sessions overlap previously committed ones is rejected with ErrInvalidPlan.
func (s *Service) AcceptPlan(ctx context.Context, plan models.StudyPlan) ([]models.StudyPlanSessionRecord, error) {
	if len(plan.Sessions) == 0 {
		return []models.StudyPlanSessionRecord{}, nil
	}

	result := s.validator.ValidatePlan(plan)
	if err := result.Err(); err != nil {
		return nil, err
	}

	if err := s.checkCommitted(ctx, plan); err != nil {
		return nil, err
	}

	if s.backups != nil {
		if path, err := s.backups.Create(); err != nil {
			logger.Warn("Automatic backup before accepting plan failed", "error", err)
		} else {
			logger.Debug("Backed up database before accepting plan", "path", path)
		}
	}

	generatedAt := plan.GeneratedAt
	if generatedAt.IsZero() {
		generatedAt = s.clock.Now()
	}

	records := make([]models.StudyPlanSessionRecord, 0, len(plan.Sessions))
	for _, session := range plan.Sessions {
		records = append(records, models.NewSessionRecord(session, generatedAt))
	}

	inserted, err := s.store.SaveSessions(ctx, records)
	if err != nil {
		return nil, fmt.Errorf("failed to save sessions: %w", err)
	}
	s.metrics.RecordAccepted(inserted)
	logger.Info("Accepted plan", "sessions", len(records), "new", inserted)

	// Re-read so callers see the stored state of sessions that already existed.
	stored := make([]models.StudyPlanSessionRecord, 0, len(records))
	for _, r := range records {
		got, err := s.store.GetSession(ctx, r.ID)
		if err != nil {
			return nil, err
		}
		stored = append(stored, got)
	}
	return stored, nil
}

// checkCommitted rejects plans that collide with records already in the store.
func (s *Service) checkCommitted(ctx context.Context, plan models.StudyPlan) error {
	start, end := plan.Sessions[0].StartTime, plan.Sessions[0].EndTime
	ids := make(map[string]bool, len(plan.Sessions))
	for _, session := range plan.Sessions {
		ids[session.ID] = true
		if session.StartTime.Before(start) {
			start = session.StartTime
		}
		if session.EndTime.After(end) {
			end = session.EndTime
		}
	}

	existing, err := s.store.ListSessions(ctx, storage.SessionFilter{Start: &start, End: &end})
	if err != nil {
		return fmt.Errorf("failed to list committed sessions: %w", err)
	}

	combined := make([]models.StudyPlanSessionRecord, 0, len(existing)+len(plan.Sessions))
	for _, r := range existing {
		if !ids[r.ID] {
			combined = append(combined, r)
		}
	}
	for _, session := range plan.Sessions {
		combined = append(combined, models.NewSessionRecord(session, plan.GeneratedAt))
	}

	result := s.validator.ValidateRecords(combined)
	return result.Err()
}
