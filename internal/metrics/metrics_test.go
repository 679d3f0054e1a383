package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/studyplan/internal/models"
)

func newTestCollector(t *testing.T) *Collector {
	t.Helper()
	return NewCollector(prometheus.NewRegistry())
}

func TestNewCollector(t *testing.T) {
	c := newTestCollector(t)
	assert.NotNil(t, c.plansGenerated)
	assert.NotNil(t, c.checkIns)
	assert.NotNil(t, c.gatherer)
}

func TestNewCollector_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewCollector(reg)
	assert.Panics(t, func() { NewCollector(reg) })
}

func TestRecordPlan(t *testing.T) {
	c := newTestCollector(t)
	plan := models.StudyPlan{
		Sessions: []models.StudyPlanSession{
			{ID: "a", DurationMinutes: 50},
			{ID: "b", DurationMinutes: 25},
		},
		Unallocated: []models.StudyPlanUnallocatedItem{
			{DeadlineID: "d1", Reason: models.ReasonPastDue},
			{DeadlineID: "d2", Reason: models.ReasonNoCapacity},
			{DeadlineID: "d3", Reason: models.ReasonNoCapacity},
		},
	}

	c.RecordPlan(plan, 15*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.plansGenerated))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.sessionsPlanned))
	assert.Equal(t, 75.0, testutil.ToFloat64(c.minutesPlanned))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.unallocated.WithLabelValues("no_capacity")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.unallocated.WithLabelValues("past_due")))
}

func TestRecordCheckIns(t *testing.T) {
	c := newTestCollector(t)

	c.RecordCheckIn(models.SessionStatusDone)
	c.RecordCheckIn(models.SessionStatusDone)
	c.RecordCheckIn(models.SessionStatusSkipped)
	c.RecordCheckInRejected("invalid_state_transition")
	c.RecordAccepted(4)
	c.RecordPlanFailure("invalid_window")

	assert.Equal(t, 2.0, testutil.ToFloat64(c.checkIns.WithLabelValues("done")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.checkIns.WithLabelValues("skipped")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.checkInRejected.WithLabelValues("invalid_state_transition")))
	assert.Equal(t, 4.0, testutil.ToFloat64(c.sessionsAccepted))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.planFailures.WithLabelValues("invalid_window")))
}

func TestRecordAdherence(t *testing.T) {
	c := newTestCollector(t)
	c.RecordAdherence(models.StudyPlanAdherenceMetrics{AdherenceRate: 0.75, CompletionRate: 0.5})

	assert.Equal(t, 0.75, testutil.ToFloat64(c.adherenceRate))
	assert.Equal(t, 0.5, testutil.ToFloat64(c.completionRate))
}

func TestNilCollector(t *testing.T) {
	var c *Collector
	assert.NotPanics(t, func() {
		c.RecordPlan(models.StudyPlan{}, time.Second)
		c.RecordPlanFailure("internal")
		c.RecordAccepted(1)
		c.RecordCheckIn(models.SessionStatusDone)
		c.RecordCheckInRejected("not_found")
		c.RecordAdherence(models.StudyPlanAdherenceMetrics{})
	})
}

func TestHandler(t *testing.T) {
	c := newTestCollector(t)
	c.RecordCheckIn(models.SessionStatusDone)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `studyplan_checkins_total{status="done"} 1`)
}
