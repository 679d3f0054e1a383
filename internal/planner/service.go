// Package planner is the study plan service: it gathers collaborator data from
// storage, runs the scheduler, persists accepted plans and records check-ins.
package planner

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/julianstephens/studyplan/internal/backup"
	"github.com/julianstephens/studyplan/internal/errors"
	"github.com/julianstephens/studyplan/internal/logger"
	"github.com/julianstephens/studyplan/internal/metrics"
	"github.com/julianstephens/studyplan/internal/models"
	"github.com/julianstephens/studyplan/internal/scheduler"
	"github.com/julianstephens/studyplan/internal/storage"
	"github.com/julianstephens/studyplan/internal/utils"
	"github.com/julianstephens/studyplan/internal/validation"
)

type Service struct {
	store     storage.Provider
	clock     utils.Clock
	metrics   *metrics.Collector
	backups   *backup.Manager
	validator *validation.Validator
}

type Option func(*Service)

// WithClock replaces the system clock. Tests use utils.FixedClock.
func WithClock(c utils.Clock) Option {
	return func(s *Service) { s.clock = c }
}

func WithMetrics(m *metrics.Collector) Option {
	return func(s *Service) { s.metrics = m }
}

// WithBackups enables a database snapshot before each accepted plan is written.
func WithBackups(b *backup.Manager) Option {
	return func(s *Service) { s.backups = b }
}

func New(store storage.Provider, opts ...Option) *Service {
	s := &Service{
		store:     store,
		clock:     utils.SystemClock{},
		validator: validation.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now returns the service clock's current time.
func (s *Service) Now() time.Time {
	return s.clock.Now()
}

// GenerateRequest is the input to Generate. A zero window (both ends unset)
// starts now and spans the horizon.
type GenerateRequest struct {
	WindowStart time.Time                 `json:"windowStart"`
	WindowEnd   time.Time                 `json:"windowEnd"`
	HorizonDays int                       `json:"horizonDays,omitempty"`
	Weights     *scheduler.ScoringWeights `json:"weights,omitempty"`
}

// inputs is what one generation reads from storage.
type inputs struct {
	deadlines []models.Deadline
	lectures  []models.LectureEvent
	committed []models.StudyPlanSessionRecord
	mutes     []models.ScheduleSuggestionMute
}

// Generate builds a plan from the current deadlines, lectures, committed sessions
// and mutes. Nothing is persisted; pass the result to AcceptPlan to keep it.
func (s *Service) Generate(ctx context.Context, req GenerateRequest) (models.StudyPlan, error) {
	started := time.Now()

	plan, err := s.generate(ctx, req)
	if err != nil {
		s.metrics.RecordPlanFailure(errors.Code(err))
		return models.StudyPlan{}, err
	}

	s.metrics.RecordPlan(plan, time.Since(started))
	logger.Debug("Generated plan", "sessions", len(plan.Sessions), "unallocated", len(plan.Unallocated))
	return plan, nil
}

func (s *Service) generate(ctx context.Context, req GenerateRequest) (models.StudyPlan, error) {
	sched, err := s.scheduler(ctx)
	if err != nil {
		return models.StudyPlan{}, err
	}
	cfg := sched.Config()

	now := s.clock.Now()
	if req.WindowStart.IsZero() && req.WindowEnd.IsZero() {
		days := req.HorizonDays
		if days == 0 {
			days = cfg.DefaultHorizonDays
		}
		req.WindowStart = now
		req.WindowEnd = now.AddDate(0, 0, days)
	}
	if req.WindowStart.IsZero() || req.WindowEnd.IsZero() || !req.WindowEnd.After(req.WindowStart) {
		// Let the scheduler produce the canonical invalid-window error before touching storage.
		return sched.Generate(scheduler.Request{WindowStart: req.WindowStart, WindowEnd: req.WindowEnd})
	}

	in, err := s.loadInputs(ctx, req.WindowStart, req.WindowEnd, cfg.Location)
	if err != nil {
		return models.StudyPlan{}, err
	}

	busy := make([]models.BusyInterval, 0, len(in.lectures)+len(in.committed))
	for _, l := range in.lectures {
		busy = append(busy, models.BusyInterval{Start: l.StartTime, End: l.EndTime, Course: l.Course})
	}
	for _, r := range in.committed {
		// Skipped sessions free their time again.
		if r.Status == models.SessionStatusSkipped {
			continue
		}
		busy = append(busy, r.BusyInterval())
	}

	return sched.Generate(scheduler.Request{
		WindowStart: req.WindowStart,
		WindowEnd:   req.WindowEnd,
		Now:         now,
		HorizonDays: req.HorizonDays,
		Weights:     req.Weights,
		Deadlines:   in.deadlines,
		Busy:        busy,
		Mutes:       in.mutes,
	})
}

// location is the timezone from the persisted settings.
func (s *Service) location(ctx context.Context) (*time.Location, error) {
	settings, err := s.store.GetSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	loc, err := utils.LocationFromSettings(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrInvalidConfig, err)
	}
	return loc, nil
}

// scheduler builds a scheduler from the persisted settings.
func (s *Service) scheduler(ctx context.Context) (*scheduler.Scheduler, error) {
	settings, err := s.store.GetSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	cfg, err := scheduler.ConfigFromSettings(settings)
	if err != nil {
		return nil, err
	}
	return scheduler.New(cfg)
}

// loadInputs reads the four collaborator inputs concurrently.
func (s *Service) loadInputs(ctx context.Context, start, end time.Time, loc *time.Location) (inputs, error) {
	var in inputs
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		deadlines, err := s.store.ListDeadlines(gctx, false)
		if err != nil {
			return fmt.Errorf("failed to list deadlines: %w", err)
		}
		in.deadlines = deadlines
		return nil
	})
	g.Go(func() error {
		lectures, err := s.store.ListLectures(gctx, start, end)
		if err != nil {
			return fmt.Errorf("failed to list lectures: %w", err)
		}
		in.lectures = lectures
		return nil
	})
	g.Go(func() error {
		records, err := s.store.ListSessions(gctx, storage.SessionFilter{Start: &start, End: &end})
		if err != nil {
			return fmt.Errorf("failed to list committed sessions: %w", err)
		}
		in.committed = records
		return nil
	})
	g.Go(func() error {
		if loc == nil {
			loc = time.UTC
		}
		days := utils.DaysInRange(start, end, loc)
		if len(days) == 0 {
			return nil
		}
		mutes, err := s.store.ListMutes(gctx, days[0], days[len(days)-1])
		if err != nil {
			return fmt.Errorf("failed to list mutes: %w", err)
		}
		in.mutes = mutes
		return nil
	})

	if err := g.Wait(); err != nil {
		return inputs{}, err
	}
	return in, nil
}
