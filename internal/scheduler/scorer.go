package scheduler

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/julianstephens/studyplan/internal/models"
)

// Gap quality blend
const (
	headroomWeight  = 0.5
	timeOfDayWeight = 0.3
	spacingWeight   = 0.2

	// Gaps with this much slack beyond the session get full headroom credit.
	headroomReference = 3 * time.Hour

	// Before the preferred hour the time-of-day score falls at this fraction of the
	// afternoon slope.
	earlyDecay = 0.5
)

// Candidate is a possible placement of a session inside a gap.
type Candidate struct {
	Start time.Time
	End   time.Time
	Gap   Gap
}

func (c Candidate) Minutes() int {
	return int(c.End.Sub(c.Start) / time.Minute)
}

// Candidates slides a DefaultSessionMinutes window across the part of gap that ends by
// due, in StepMinutes steps. A gap too short for a default session but at least
// MinSessionMinutes long yields a single candidate spanning all of it.
func Candidates(gap Gap, due time.Time, cfg Config) []Candidate {
	usable := Gap{Start: gap.Start, End: earliest(gap.End, due.Truncate(time.Minute))}
	if !usable.End.After(usable.Start) {
		return nil
	}

	length := time.Duration(cfg.DefaultSessionMinutes) * time.Minute
	step := time.Duration(cfg.StepMinutes) * time.Minute

	var out []Candidate
	if usable.End.Sub(usable.Start) < length {
		if usable.Minutes() >= cfg.MinSessionMinutes {
			out = append(out, Candidate{Start: usable.Start, End: usable.End, Gap: usable})
		}
		return out
	}
	for start := usable.Start; !start.Add(length).After(usable.End); start = start.Add(step) {
		out = append(out, Candidate{Start: start, End: start.Add(length), Gap: usable})
	}
	return out
}

// Score is the breakdown for one (deadline, candidate) pair. All values are in [0,1].
type Score struct {
	GapQuality float64
	Priority   float64
	Overall    float64
	Rationale  string
}

// Scorer rates candidates against the calendar that produced them plus any sessions
// reserved since.
type Scorer struct {
	cfg  Config
	busy []models.BusyInterval
}

func NewScorer(cfg Config, busy []models.BusyInterval) *Scorer {
	return &Scorer{cfg: cfg, busy: append([]models.BusyInterval(nil), busy...)}
}

// Reserve counts [start, end) as scheduled work for course in later scores.
func (s *Scorer) Reserve(course string, start, end time.Time) {
	s.busy = append(s.busy, models.BusyInterval{Start: start, End: end, Course: course})
}

// Score rates placing d at c. effectiveStart is the instant hours-until-due is measured from.
func (s *Scorer) Score(d models.Deadline, c Candidate, effectiveStart time.Time) Score {
	headroom := s.headroom(c)
	tod := s.timeOfDay(c.Start)
	spacing := s.spacing(d.Course, c)
	gapQuality := clamp01(headroomWeight*headroom + timeOfDayWeight*tod + spacingWeight*spacing)

	hoursUntilDue := d.DueDate.Sub(effectiveStart).Hours()
	effortHours := float64(d.EffortMinutes()) / 60
	priority := clamp01(0.5*priorityLevel(d.Priority) + 0.5*urgency(effortHours, hoursUntilDue))

	w := s.cfg.Weights
	overall := clamp01((w.GapWeight*gapQuality + w.PriorityWeight*priority) / (w.GapWeight + w.PriorityWeight))

	gapFirst := w.GapWeight*gapQuality >= w.PriorityWeight*priority
	return Score{
		GapQuality: round4(gapQuality),
		Priority:   round4(priority),
		Overall:    round4(overall),
		Rationale:  s.rationale(d, c, hoursUntilDue, effortHours, gapFirst),
	}
}

func (s *Scorer) headroom(c Candidate) float64 {
	slack := c.Gap.End.Sub(c.Gap.Start) - c.End.Sub(c.Start)
	return clamp01(float64(slack) / float64(headroomReference))
}

// timeOfDay peaks at the preferred start hour and falls linearly to 0 at the end of
// the day. Earlier starts fall off more gently.
func (s *Scorer) timeOfDay(start time.Time) float64 {
	local := start.In(s.cfg.location())
	h := float64(local.Hour()) + float64(local.Minute())/60
	pref := float64(s.cfg.PreferredStartHour)
	span := math.Max(float64(s.cfg.DayEndHour)-pref, 1)

	if h >= pref {
		return clamp01(1 - (h-pref)/span)
	}
	return clamp01(1 - earlyDecay*(pref-h)/span)
}

// spacing is 0 when the candidate sits within the buffer of busy or reserved time for
// the same course on the same day.
func (s *Scorer) spacing(course string, c Candidate) float64 {
	if course == "" {
		return 1
	}
	loc := s.cfg.location()
	buffer := time.Duration(s.cfg.SpacingBufferMinutes) * time.Minute
	y, m, d := c.Start.In(loc).Date()
	for _, b := range s.busy {
		if b.Course != course {
			continue
		}
		by, bm, bd := b.Start.In(loc).Date()
		if by != y || bm != m || bd != d {
			continue
		}
		if b.End.Add(buffer).After(c.Start) && b.Start.Before(c.End.Add(buffer)) {
			return 0
		}
	}
	return 1
}

func priorityLevel(p models.Priority) float64 {
	return float64(p.Rank()) / 4
}

func urgency(effortHours, hoursUntilDue float64) float64 {
	if hoursUntilDue <= 0 {
		return 1
	}
	return clamp01(effortHours / hoursUntilDue)
}

func (s *Scorer) rationale(d models.Deadline, c Candidate, hoursUntilDue, effortHours float64, gapFirst bool) string {
	gapPart := fmt.Sprintf("%s %s gap", gapSize(c.Gap), partOfDay(c.Start.In(s.cfg.location())))
	duePart := fmt.Sprintf("due in %s with %sh remaining", formatHorizon(hoursUntilDue), formatHours(effortHours))

	if gapFirst {
		return capitalize(gapPart) + "; " + duePart
	}
	return capitalize(string(d.Priority)) + " priority " + duePart + "; " + gapPart
}

func gapSize(g Gap) string {
	switch m := g.Minutes(); {
	case m >= 150:
		return "large"
	case m >= 75:
		return "medium"
	default:
		return "short"
	}
}

func partOfDay(t time.Time) string {
	switch h := t.Hour(); {
	case h < 12:
		return "morning"
	case h < 17:
		return "afternoon"
	default:
		return "evening"
	}
}

func formatHorizon(hours float64) string {
	if hours < 48 {
		return fmt.Sprintf("%dh", int(math.Round(hours)))
	}
	return fmt.Sprintf("%dd", int(math.Round(hours/24)))
}

func formatHours(h float64) string {
	return strconv.FormatFloat(math.Round(h*10)/10, 'f', -1, 64)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}
