package scheduler

import (
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/studyplan/internal/errors"
	"github.com/julianstephens/studyplan/internal/models"
	"github.com/julianstephens/studyplan/internal/validation"
)

type Scheduler struct {
	cfg       Config
	validator *validation.Validator
}

func New(cfg Config) (*Scheduler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Scheduler{cfg: cfg, validator: validation.New()}, nil
}

func (s *Scheduler) Config() Config {
	return s.cfg
}

// Request is everything one plan generation reads. Now comes from the caller's clock;
// HorizonDays of 0 selects the configured default.
type Request struct {
	WindowStart time.Time
	WindowEnd   time.Time
	Now         time.Time
	HorizonDays int
	Weights     *ScoringWeights
	Deadlines   []models.Deadline
	Busy        []models.BusyInterval
	Mutes       []models.ScheduleSuggestionMute
}

// Generate builds a plan for the request. It does not touch storage or the clock, so
// identical requests produce identical plans.
func (s *Scheduler) Generate(req Request) (models.StudyPlan, error) {
	if req.WindowStart.IsZero() || req.WindowEnd.IsZero() {
		return models.StudyPlan{}, fmt.Errorf("%w: window start and end are required", errors.ErrInvalidWindow)
	}
	if !req.WindowEnd.After(req.WindowStart) {
		return models.StudyPlan{}, fmt.Errorf("%w: window end %s is not after start %s",
			errors.ErrInvalidWindow, req.WindowEnd.Format(time.RFC3339), req.WindowStart.Format(time.RFC3339))
	}

	horizonDays := req.HorizonDays
	if horizonDays == 0 {
		horizonDays = s.cfg.DefaultHorizonDays
	}
	if horizonDays < 0 || horizonDays > s.cfg.MaxHorizonDays {
		return models.StudyPlan{}, fmt.Errorf("%w: horizon must be between 1 and %d days (got %d)",
			errors.ErrInvalidWindow, s.cfg.MaxHorizonDays, req.HorizonDays)
	}

	cfg := s.cfg
	if req.Weights != nil {
		if err := req.Weights.Validate(); err != nil {
			return models.StudyPlan{}, err
		}
		cfg.Weights = *req.Weights
	}

	if err := s.validator.ValidateDeadlines(req.Deadlines); err != nil {
		return models.StudyPlan{}, err
	}

	mutes := make([]Gap, 0, len(req.Mutes))
	for _, m := range req.Mutes {
		start, end, err := m.Interval(cfg.location())
		if err != nil {
			return models.StudyPlan{}, fmt.Errorf("%w: %v", errors.ErrInvalidConfig, err)
		}
		mutes = append(mutes, Gap{Start: start, End: end})
	}

	now := req.Now
	if now.IsZero() {
		now = req.WindowStart
	}
	effectiveStart := latest(req.WindowStart, now)
	horizon := time.Duration(horizonDays) * 24 * time.Hour

	alloc := allocate(cfg, effectiveStart, req.WindowEnd, horizon, req.Deadlines, req.Busy, mutes)

	return models.StudyPlan{
		GeneratedAt: now.UTC(),
		WindowStart: req.WindowStart.UTC(),
		WindowEnd:   req.WindowEnd.UTC(),
		Summary:     summarize(alloc),
		Sessions:    alloc.sessions,
		Unallocated: alloc.unallocated,
	}, nil
}

func summarize(a allocation) string {
	deadlines := make(map[string]bool)
	minutes := 0
	for _, s := range a.sessions {
		deadlines[s.DeadlineID] = true
		minutes += s.DurationMinutes
	}

	summary := fmt.Sprintf("Scheduled %s (%s) for %s",
		plural(len(a.sessions), "session"), formatMinutes(minutes), plural(len(deadlines), "deadline"))
	if len(a.unallocated) == 0 {
		return summary + "; all deadlines covered"
	}

	counts := make(map[models.UnallocatedReason]int)
	for _, u := range a.unallocated {
		counts[u.Reason]++
	}
	var reasons []string
	for _, r := range []models.UnallocatedReason{
		models.ReasonPastDue, models.ReasonMuted, models.ReasonBelowMinimumSession, models.ReasonNoCapacity,
	} {
		if counts[r] > 0 {
			reasons = append(reasons, fmt.Sprintf("%d %s", counts[r], r))
		}
	}
	return fmt.Sprintf("%s; %s unallocated (%s)", summary, plural(len(a.unallocated), "deadline"), strings.Join(reasons, ", "))
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

func formatMinutes(m int) string {
	return fmt.Sprintf("%dh%02dm", m/60, m%60)
}
