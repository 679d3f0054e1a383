package scheduler

import (
	"container/heap"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/studyplan/internal/models"
)

// deadlineState tracks one deadline through a single allocation run.
type deadlineState struct {
	deadline   models.Deadline
	remaining  int
	candidates int
	muted      int
}

type scoredCandidate struct {
	state *deadlineState
	cand  Candidate
	score Score
}

// rankedBefore orders candidates by score, then earlier due date, then earlier start,
// then deadline id. The order is total, so the walk does not depend on input order.
func rankedBefore(a, b *scoredCandidate) bool {
	if a.score.Overall != b.score.Overall {
		return a.score.Overall > b.score.Overall
	}
	if !a.state.deadline.DueDate.Equal(b.state.deadline.DueDate) {
		return a.state.deadline.DueDate.Before(b.state.deadline.DueDate)
	}
	if !a.cand.Start.Equal(b.cand.Start) {
		return a.cand.Start.Before(b.cand.Start)
	}
	return a.state.deadline.ID < b.state.deadline.ID
}

// candidateQueue is a max-heap of candidates under rankedBefore.
type candidateQueue []*scoredCandidate

func (q candidateQueue) Len() int           { return len(q) }
func (q candidateQueue) Less(i, j int) bool { return rankedBefore(q[i], q[j]) }
func (q candidateQueue) Swap(i, j int)      { q[i], q[j] = q[j], q[i] }

func (q *candidateQueue) Push(x any) { *q = append(*q, x.(*scoredCandidate)) }

func (q *candidateQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return item
}

type allocation struct {
	sessions    []models.StudyPlanSession
	unallocated []models.StudyPlanUnallocatedItem
}

// allocate runs the greedy walk for deadlines that still need time. The returned
// sessions never overlap each other, busy time or a mute.
func allocate(cfg Config, effectiveStart, windowEnd time.Time, horizon time.Duration,
	deadlines []models.Deadline, busy []models.BusyInterval, mutes []Gap) allocation {

	result := allocation{
		sessions:    []models.StudyPlanSession{},
		unallocated: []models.StudyPlanUnallocatedItem{},
	}

	sorted := make([]models.Deadline, len(deadlines))
	copy(sorted, deadlines)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	var active []*deadlineState
	for _, d := range sorted {
		if !d.NeedsScheduling() {
			continue
		}
		if !d.DueDate.After(effectiveStart) {
			result.unallocated = append(result.unallocated, unallocatedItem(d, d.EffortMinutes(), models.ReasonPastDue))
			continue
		}
		if !d.DueDate.Before(effectiveStart.Add(horizon)) {
			continue
		}
		active = append(active, &deadlineState{deadline: d, remaining: d.EffortMinutes()})
	}

	gaps := FindGaps(effectiveStart, windowEnd, busy, cfg)
	scorer := NewScorer(cfg, busy)

	queue := candidateQueue{}
	for _, st := range active {
		for _, gap := range gaps {
			for _, c := range Candidates(gap, st.deadline.DueDate, cfg) {
				st.candidates++
				if overlapsAny(c.Start, c.End, mutes) {
					st.muted++
					continue
				}
				queue = append(queue, &scoredCandidate{
					state: st,
					cand:  c,
					score: scorer.Score(st.deadline, c, effectiveStart),
				})
			}
		}
	}
	heap.Init(&queue)

	// Scores go stale as sessions are placed: fragments shrink and same-course work
	// appears nearby. A popped candidate is rescored on its actual placement and goes
	// back into the queue when that rates lower than the score it was queued with.
	free := subtract(gaps, mutes)
	for queue.Len() > 0 {
		sc := heap.Pop(&queue).(*scoredCandidate)
		st := sc.state
		if st.remaining == 0 {
			continue
		}
		i, final, ok := place(free, sc.cand, st, cfg)
		if !ok {
			continue
		}
		score := scorer.Score(st.deadline, final, effectiveStart)
		if score.Overall < sc.score.Overall {
			sc.score = score
			heap.Push(&queue, sc)
			continue
		}

		free = splitFragment(free, i, final.Start, final.End)
		st.remaining -= final.Minutes()
		scorer.Reserve(st.deadline.Course, final.Start, final.End)
		result.sessions = append(result.sessions, newSession(st.deadline, final, score))
	}

	for _, st := range active {
		if st.remaining == 0 {
			continue
		}
		reason := models.ReasonNoCapacity
		switch {
		case st.candidates > 0 && st.muted == st.candidates:
			reason = models.ReasonMuted
		case st.remaining < cfg.MinSessionMinutes:
			reason = models.ReasonBelowMinimumSession
		}
		result.unallocated = append(result.unallocated, unallocatedItem(st.deadline, st.remaining, reason))
	}

	sort.Slice(result.sessions, func(i, j int) bool {
		a, b := result.sessions[i], result.sessions[j]
		if !a.StartTime.Equal(b.StartTime) {
			return a.StartTime.Before(b.StartTime)
		}
		return a.ID < b.ID
	})
	sort.Slice(result.unallocated, func(i, j int) bool {
		a, b := result.unallocated[i], result.unallocated[j]
		if !a.DueDate.Equal(b.DueDate) {
			return a.DueDate.Before(b.DueDate)
		}
		return a.DeadlineID < b.DeadlineID
	})
	return result
}

// place finds the first free fragment the candidate can use and returns its index and
// the resulting session. The session's gap is the fragment as it stands now.
func place(free []Gap, c Candidate, st *deadlineState, cfg Config) (int, Candidate, bool) {
	due := st.deadline.DueDate
	for i, frag := range free {
		if !frag.End.After(c.Start) {
			continue
		}
		if !frag.Start.Before(c.End) {
			break
		}
		start, length, ok := fit(frag, c, st.remaining, due, cfg)
		if !ok {
			continue
		}
		return i, Candidate{
			Start: start,
			End:   start.Add(time.Duration(length) * time.Minute),
			Gap:   Gap{Start: frag.Start, End: earliest(frag.End, due.Truncate(time.Minute))},
		}, true
	}
	return 0, Candidate{}, false
}

// fit places up to remaining minutes inside frag, anchored at the candidate start and
// shifted earlier when the fragment runs out before the session does. It avoids leaving
// a remainder shorter than the minimum session when the work can be split differently.
func fit(frag Gap, c Candidate, remaining int, due time.Time, cfg Config) (time.Time, int, bool) {
	limit := earliest(frag.End, due.Truncate(time.Minute))
	avail := int(limit.Sub(frag.Start) / time.Minute)
	if avail <= 0 {
		return time.Time{}, 0, false
	}

	minLen := cfg.MinSessionMinutes
	length := min(remaining, cfg.MaxSessionMinutes, avail)
	if rest := remaining - length; rest > 0 && rest < minLen && remaining-minLen >= minLen {
		length = remaining - minLen
	}
	if length < minLen {
		// A short remainder only goes into a fragment it fills exactly.
		if remaining >= minLen || length != remaining || avail != remaining {
			return time.Time{}, 0, false
		}
	}

	start := latest(c.Start, frag.Start)
	if end := start.Add(time.Duration(length) * time.Minute); end.After(limit) {
		start = limit.Add(-time.Duration(length) * time.Minute)
	}
	return start, length, true
}

// splitFragment replaces free[i] with whatever is left of it around [start, end).
func splitFragment(free []Gap, i int, start, end time.Time) []Gap {
	frag := free[i]
	var pieces []Gap
	if start.After(frag.Start) {
		pieces = append(pieces, Gap{Start: frag.Start, End: start})
	}
	if frag.End.After(end) {
		pieces = append(pieces, Gap{Start: end, End: frag.End})
	}

	out := make([]Gap, 0, len(free)+1)
	out = append(out, free[:i]...)
	out = append(out, pieces...)
	return append(out, free[i+1:]...)
}

// subtract removes the blocked intervals from gaps, preserving order.
func subtract(gaps []Gap, blocked []Gap) []Gap {
	out := make([]Gap, 0, len(gaps))
	for _, g := range gaps {
		pieces := []Gap{g}
		for _, b := range blocked {
			var next []Gap
			for _, p := range pieces {
				if !b.Start.Before(p.End) || !p.Start.Before(b.End) {
					next = append(next, p)
					continue
				}
				if b.Start.After(p.Start) {
					next = append(next, Gap{Start: p.Start, End: b.Start})
				}
				if p.End.After(b.End) {
					next = append(next, Gap{Start: b.End, End: p.End})
				}
			}
			pieces = next
		}
		out = append(out, pieces...)
	}
	return out
}

func overlapsAny(start, end time.Time, intervals []Gap) bool {
	for _, iv := range intervals {
		if iv.Start.Before(end) && start.Before(iv.End) {
			return true
		}
	}
	return false
}

// sessionID is stable for a given deadline and interval.
func sessionID(deadlineID string, start, end time.Time) string {
	name := deadlineID + "|" + start.UTC().Format(time.RFC3339) + "|" + end.UTC().Format(time.RFC3339)
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("studyplan:session:"+name)).String()
}

func newSession(d models.Deadline, c Candidate, score Score) models.StudyPlanSession {
	return models.StudyPlanSession{
		ID:              sessionID(d.ID, c.Start, c.End),
		DeadlineID:      d.ID,
		Course:          d.Course,
		Task:            d.Task,
		Priority:        d.Priority,
		StartTime:       c.Start.UTC(),
		EndTime:         c.End.UTC(),
		DurationMinutes: c.Minutes(),
		Score:           score.Overall,
		GapQualityScore: score.GapQuality,
		PriorityScore:   score.Priority,
		Rationale:       score.Rationale,
	}
}

func unallocatedItem(d models.Deadline, remaining int, reason models.UnallocatedReason) models.StudyPlanUnallocatedItem {
	return models.StudyPlanUnallocatedItem{
		DeadlineID:       d.ID,
		Course:           d.Course,
		Task:             d.Task,
		Priority:         d.Priority,
		DueDate:          d.DueDate.UTC(),
		RemainingMinutes: remaining,
		Reason:           reason,
	}
}
