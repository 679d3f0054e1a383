package planner

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/julianstephens/studyplan/internal/errors"
	"github.com/julianstephens/studyplan/internal/logger"
	"github.com/julianstephens/studyplan/internal/models"
	"github.com/julianstephens/studyplan/internal/optimizer"
	"github.com/julianstephens/studyplan/internal/storage"
)

// AddDeadline stores a new deadline, assigning an id when none is given.
func (s *Service) AddDeadline(ctx context.Context, d models.Deadline) (models.Deadline, error) {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	if err := s.validator.ValidateDeadline(d); err != nil {
		return models.Deadline{}, err
	}
	d.DueDate = d.DueDate.UTC()
	if err := s.store.AddDeadline(ctx, d); err != nil {
		return models.Deadline{}, fmt.Errorf("failed to add deadline: %w", err)
	}
	return d, nil
}

func (s *Service) ListDeadlines(ctx context.Context, includeCompleted bool) ([]models.Deadline, error) {
	return s.store.ListDeadlines(ctx, includeCompleted)
}

// CompleteDeadline marks the deadline done so it is no longer scheduled.
func (s *Service) CompleteDeadline(ctx context.Context, id string) (models.Deadline, error) {
	d, err := s.store.GetDeadline(ctx, id)
	if err != nil {
		return models.Deadline{}, err
	}
	d.Completed = true
	if err := s.store.UpdateDeadline(ctx, d); err != nil {
		return models.Deadline{}, fmt.Errorf("failed to update deadline: %w", err)
	}
	return d, nil
}

// DeleteDeadline removes the deadline together with its session records.
func (s *Service) DeleteDeadline(ctx context.Context, id string) error {
	if err := s.store.DeleteDeadline(ctx, id); err != nil {
		return err
	}
	logger.Info("Deleted deadline", "id", id)
	return nil
}

func (s *Service) AddLecture(ctx context.Context, l models.LectureEvent) (models.LectureEvent, error) {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	if l.StartTime.IsZero() || !l.EndTime.After(l.StartTime) {
		return models.LectureEvent{}, fmt.Errorf("%w: lecture must end after it starts", errors.ErrInvalidWindow)
	}
	l.StartTime, l.EndTime = l.StartTime.UTC(), l.EndTime.UTC()
	if err := s.store.AddLecture(ctx, l); err != nil {
		return models.LectureEvent{}, fmt.Errorf("failed to add lecture: %w", err)
	}
	return l, nil
}

// ListLectures returns lectures overlapping the next days days.
func (s *Service) ListLectures(ctx context.Context, days int) ([]models.LectureEvent, error) {
	if days <= 0 {
		days = 7
	}
	now := s.clock.Now()
	return s.store.ListLectures(ctx, now, now.AddDate(0, 0, days))
}

func (s *Service) DeleteLecture(ctx context.Context, id string) error {
	return s.store.DeleteLecture(ctx, id)
}

func (s *Service) GetSettings(ctx context.Context) (models.Settings, error) {
	return s.store.GetSettings(ctx)
}

// Optimize suggests settings changes from the check-ins of the last lookbackDays.
func (s *Service) Optimize(ctx context.Context, lookbackDays int) ([]optimizer.Optimization, error) {
	if lookbackDays <= 0 {
		lookbackDays = 30
	}
	end := s.clock.Now()
	start := end.AddDate(0, 0, -lookbackDays)
	return optimizer.NewWeightTuner(s.store).Suggest(ctx, storage.SessionFilter{Start: &start, End: &end})
}

// ApplyOptimizations writes the chosen suggestions into the persisted settings.
func (s *Service) ApplyOptimizations(ctx context.Context, opts []optimizer.Optimization) (models.Settings, error) {
	return optimizer.NewWeightTuner(s.store).Apply(ctx, opts)
}
