package validation

import (
	stderrors "errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/julianstephens/studyplan/internal/errors"
	"github.com/julianstephens/studyplan/internal/models"
)

// ConflictType represents the type of validation conflict
type ConflictType string

const (
	ConflictOverlappingSessions ConflictType = "overlapping_sessions"
	ConflictInvalidInterval     ConflictType = "invalid_interval"
	ConflictDurationMismatch    ConflictType = "duration_mismatch"
	ConflictScoreOutOfRange     ConflictType = "score_out_of_range"
	ConflictMissingDeadlineID   ConflictType = "missing_deadline_id"
	ConflictDuplicateSessionID  ConflictType = "duplicate_session_id"
)

// Conflict represents a detected problem in a plan or a set of session records
type Conflict struct {
	Type        ConflictType
	Description string
	SessionIDs  []string
}

// ValidationResult contains all detected conflicts
type ValidationResult struct {
	Conflicts []Conflict
}

// HasConflicts returns true if there are any conflicts
func (vr *ValidationResult) HasConflicts() bool {
	return len(vr.Conflicts) > 0
}

// FormatReport returns a human-readable report of all conflicts
func (vr *ValidationResult) FormatReport() string {
	if !vr.HasConflicts() {
		return "No conflicts detected."
	}

	var b strings.Builder
	b.WriteString("Conflicts detected:\n")
	for _, conflict := range vr.Conflicts {
		fmt.Fprintf(&b, "- %s\n", conflict.Description)
	}
	return b.String()
}

// Err returns nil when there are no conflicts, otherwise an ErrInvalidPlan wrapping the report.
func (vr *ValidationResult) Err() error {
	if !vr.HasConflicts() {
		return nil
	}
	descs := make([]string, 0, len(vr.Conflicts))
	for _, c := range vr.Conflicts {
		descs = append(descs, c.Description)
	}
	return fmt.Errorf("%w: %s", errors.ErrInvalidPlan, strings.Join(descs, "; "))
}

// Validator validates deadlines, request payloads and plans
type Validator struct {
	validate *validator.Validate
}

// New creates a new Validator
func New() *Validator {
	return &Validator{validate: validator.New(validator.WithRequiredStructEnabled())}
}

// Struct runs the struct-tag rules on s and returns a readable error listing every
// failing field.
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s failed %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
		}
	}
	return stderrors.New(strings.Join(msgs, ", "))
}

// ValidateDeadline rejects a malformed deadline with ErrInvalidDeadline.
func (v *Validator) ValidateDeadline(d models.Deadline) error {
	if err := v.Struct(d); err != nil {
		return fmt.Errorf("%w: deadline %q: %v", errors.ErrInvalidDeadline, d.ID, err)
	}
	return nil
}

// ValidateDeadlines validates each deadline and rejects duplicate ids.
func (v *Validator) ValidateDeadlines(deadlines []models.Deadline) error {
	seen := make(map[string]bool, len(deadlines))
	for _, d := range deadlines {
		if err := v.ValidateDeadline(d); err != nil {
			return err
		}
		if seen[d.ID] {
			return fmt.Errorf("%w: duplicate deadline id %q", errors.ErrInvalidDeadline, d.ID)
		}
		seen[d.ID] = true
	}
	return nil
}

// ValidateSessions checks a set of sessions for structural problems and overlaps.
func (v *Validator) ValidateSessions(sessions []models.StudyPlanSession) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}

	ids := make(map[string]bool, len(sessions))
	for _, s := range sessions {
		if ids[s.ID] {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictDuplicateSessionID,
				Description: fmt.Sprintf("Duplicate session id %s", s.ID),
				SessionIDs:  []string{s.ID},
			})
		}
		ids[s.ID] = true

		if s.DeadlineID == "" {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictMissingDeadlineID,
				Description: fmt.Sprintf("Session %s has no deadline", s.ID),
				SessionIDs:  []string{s.ID},
			})
		}

		if !s.StartTime.Before(s.EndTime) {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictInvalidInterval,
				Description: fmt.Sprintf("Session %s ends (%s) before it starts (%s)", s.ID, s.EndTime.Format("2006-01-02 15:04"), s.StartTime.Format("2006-01-02 15:04")),
				SessionIDs:  []string{s.ID},
			})
			continue
		}

		if minutes := int(s.EndTime.Sub(s.StartTime).Minutes()); minutes != s.DurationMinutes {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictDurationMismatch,
				Description: fmt.Sprintf("Session %s lasts %d minutes but reports %d", s.ID, minutes, s.DurationMinutes),
				SessionIDs:  []string{s.ID},
			})
		}

		for _, score := range []float64{s.Score, s.GapQualityScore, s.PriorityScore} {
			if score < 0 || score > 1 {
				result.Conflicts = append(result.Conflicts, Conflict{
					Type:        ConflictScoreOutOfRange,
					Description: fmt.Sprintf("Session %s has score %.3f outside [0,1]", s.ID, score),
					SessionIDs:  []string{s.ID},
				})
				break
			}
		}
	}

	sorted := make([]models.StudyPlanSession, len(sessions))
	copy(sorted, sessions)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].StartTime.Before(sorted[j].StartTime)
	})

	// Sorted by start, so each session only needs checking against the ones
	// that start before it ends.
	for i := 0; i < len(sorted); i++ {
		for j := i + 1; j < len(sorted) && sorted[j].StartTime.Before(sorted[i].EndTime); j++ {
			a, b := sorted[i], sorted[j]
			result.Conflicts = append(result.Conflicts, Conflict{
				Type: ConflictOverlappingSessions,
				Description: fmt.Sprintf("Sessions overlap: %s (%s-%s) and %s (%s-%s)",
					a.ID, a.StartTime.Format("15:04"), a.EndTime.Format("15:04"),
					b.ID, b.StartTime.Format("15:04"), b.EndTime.Format("15:04")),
				SessionIDs: []string{a.ID, b.ID},
			})
		}
	}

	return result
}

// ValidatePlan checks the sessions of a generated plan.
func (v *Validator) ValidatePlan(plan models.StudyPlan) ValidationResult {
	return v.ValidateSessions(plan.Sessions)
}

// ValidateRecords checks persisted records, ignoring skipped ones since they no
// longer occupy calendar time.
func (v *Validator) ValidateRecords(records []models.StudyPlanSessionRecord) ValidationResult {
	sessions := make([]models.StudyPlanSession, 0, len(records))
	for _, r := range records {
		if r.Status == models.SessionStatusSkipped {
			continue
		}
		sessions = append(sessions, r.StudyPlanSession)
	}
	return v.ValidateSessions(sessions)
}
