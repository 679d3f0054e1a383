package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/studyplan/internal/config"
	"github.com/julianstephens/studyplan/internal/errors"
	"github.com/julianstephens/studyplan/internal/metrics"
	"github.com/julianstephens/studyplan/internal/models"
	"github.com/julianstephens/studyplan/internal/planner"
	"github.com/julianstephens/studyplan/internal/storage/sqlite"
	"github.com/julianstephens/studyplan/internal/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func at(day, hour, minute int) time.Time {
	return time.Date(2026, 3, day, hour, minute, 0, 0, time.UTC)
}

func ptr[T any](v T) *T { return &v }

func setupRouter(t *testing.T, cfg config.ServerConfig) (*gin.Engine, *planner.Service) {
	t.Helper()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "studyplan.db"))
	require.NoError(t, store.Init())
	t.Cleanup(func() { store.Close() })

	settings := models.DefaultSettings()
	settings.Timezone = "UTC"
	require.NoError(t, store.SaveSettings(context.Background(), settings))

	collector := metrics.NewCollector(prometheus.NewRegistry())
	svc := planner.New(store, planner.WithClock(utils.FixedClock{T: at(2, 9, 0)}), planner.WithMetrics(collector))
	return NewRouter(svc, collector, cfg), svc
}

func request(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func addDeadline(t *testing.T, svc *planner.Service) {
	t.Helper()
	_, err := svc.AddDeadline(context.Background(), models.Deadline{
		ID:                   "essay",
		Course:               "HIST 110",
		Task:                 "Essay",
		DueDate:              at(3, 3, 0),
		Priority:             models.PriorityCritical,
		EffortHoursRemaining: ptr(1.5),
	})
	require.NoError(t, err)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{errors.CodeInvalidWindow, http.StatusBadRequest},
		{errors.CodeInvalidDeadline, http.StatusBadRequest},
		{errors.CodeInvalidConfig, http.StatusBadRequest},
		{errors.CodeInvalidCheckIn, http.StatusBadRequest},
		{errors.CodeInvalidPlan, http.StatusBadRequest},
		{errors.CodeNotFound, http.StatusNotFound},
		{errors.CodeInvalidStateTransition, http.StatusConflict},
		{errors.CodeInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.code))
		})
	}
}

func TestHealth(t *testing.T) {
	r, _ := setupRouter(t, config.ServerConfig{})
	w := request(t, r, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestGenerateAcceptCheckIn(t *testing.T) {
	r, svc := setupRouter(t, config.ServerConfig{})
	addDeadline(t, svc)

	w := request(t, r, http.MethodPost, "/api/plans/generate", gin.H{
		"windowStart": at(2, 9, 0),
		"windowEnd":   at(2, 12, 0),
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	plan := decode[models.StudyPlan](t, w)
	require.NotEmpty(t, plan.Sessions)

	w = request(t, r, http.MethodPost, "/api/plans/accept", plan)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	accepted := decode[struct {
		Sessions []models.StudyPlanSessionRecord `json:"sessions"`
	}](t, w)
	require.Len(t, accepted.Sessions, len(plan.Sessions))
	id := accepted.Sessions[0].ID

	w = request(t, r, http.MethodPost, "/api/sessions/"+id+"/checkin", gin.H{"status": "done", "energyLevel": 4})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	record := decode[models.StudyPlanSessionRecord](t, w)
	assert.Equal(t, models.SessionStatusDone, record.Status)

	w = request(t, r, http.MethodPost, "/api/sessions/"+id+"/checkin", gin.H{"status": "skipped"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, errors.CodeInvalidStateTransition, decode[errorResponse](t, w).Code)

	w = request(t, r, http.MethodGet, "/api/sessions?status=done", nil)
	require.Equal(t, http.StatusOK, w.Code)
	listed := decode[struct {
		Sessions []models.StudyPlanSessionRecord `json:"sessions"`
	}](t, w)
	require.Len(t, listed.Sessions, 1)
	assert.Equal(t, id, listed.Sessions[0].ID)
}

func TestGeneratePlan_EmptyBodyUsesDefaultWindow(t *testing.T) {
	r, _ := setupRouter(t, config.ServerConfig{})

	req := httptest.NewRequest(http.MethodPost, "/api/plans/generate", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	plan := decode[models.StudyPlan](t, w)
	assert.True(t, plan.WindowStart.Equal(at(2, 9, 0)))
}

func TestErrorResponses(t *testing.T) {
	r, _ := setupRouter(t, config.ServerConfig{})

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		code   string
	}{
		{"inverted window", http.MethodPost, "/api/plans/generate", gin.H{"windowStart": at(2, 12, 0), "windowEnd": at(2, 9, 0)}, http.StatusBadRequest, errors.CodeInvalidWindow},
		{"unknown session", http.MethodPost, "/api/sessions/nope/checkin", gin.H{"status": "done"}, http.StatusNotFound, errors.CodeNotFound},
		{"bad level", http.MethodPost, "/api/sessions/nope/checkin", gin.H{"status": "done", "focusLevel": 9}, http.StatusBadRequest, errors.CodeInvalidCheckIn},
		{"pending target", http.MethodPost, "/api/sessions/nope/checkin", gin.H{"status": "pending"}, http.StatusConflict, errors.CodeInvalidStateTransition},
		{"bad query time", http.MethodGet, "/api/adherence?start=yesterday", nil, http.StatusBadRequest, errors.CodeInvalidWindow},
		{"bad limit", http.MethodGet, "/api/sessions?limit=lots", nil, http.StatusBadRequest, errors.CodeInvalidWindow},
		{"bad mute scope", http.MethodPost, "/api/mutes", gin.H{"day": "2026-03-04", "scope": "night"}, http.StatusBadRequest, errors.CodeInvalidWindow},
		{"unknown session get", http.MethodGet, "/api/sessions/nope", nil, http.StatusNotFound, errors.CodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := request(t, r, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			resp := decode[errorResponse](t, w)
			assert.Equal(t, tt.code, resp.Code)
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestAdherenceEndpoint(t *testing.T) {
	r, _ := setupRouter(t, config.ServerConfig{})

	w := request(t, r, http.MethodGet, "/api/adherence", nil)
	require.Equal(t, http.StatusOK, w.Code)
	m := decode[models.StudyPlanAdherenceMetrics](t, w)
	assert.Equal(t, 0, m.SessionsPlanned)
	assert.Equal(t, 0.0, m.AdherenceRate)
	assert.True(t, m.WindowEnd.Equal(at(2, 9, 0)))
	assert.NotNil(t, m.CheckInTrends.RecentNotes)
}

func TestMutesEndpoints(t *testing.T) {
	r, _ := setupRouter(t, config.ServerConfig{})

	w := request(t, r, http.MethodPost, "/api/mutes", gin.H{"day": "2026-03-04"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, models.MuteScopeAllDay, decode[models.ScheduleSuggestionMute](t, w).Scope)

	w = request(t, r, http.MethodGet, "/api/mutes?from=2026-03-01&to=2026-03-07", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"2026-03-04"`)

	w = request(t, r, http.MethodDelete, "/api/mutes/2026-03-04/all_day", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = request(t, r, http.MethodDelete, "/api/mutes/2026-03-04/all_day", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReadCacheFlushedOnWrite(t *testing.T) {
	r, svc := setupRouter(t, config.ServerConfig{CacheTTLSeconds: 60})

	w := request(t, r, http.MethodGet, "/api/deadlines", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"deadlines":[]}`, w.Body.String())

	// A write through the service alone is not seen until the cache expires.
	addDeadline(t, svc)
	w = request(t, r, http.MethodGet, "/api/deadlines", nil)
	assert.Equal(t, "HIT", w.Header().Get("X-Cache"))
	assert.JSONEq(t, `{"deadlines":[]}`, w.Body.String())

	// Any successful API write flushes it.
	w = request(t, r, http.MethodPost, "/api/mutes", gin.H{"day": "2026-03-04"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = request(t, r, http.MethodGet, "/api/deadlines", nil)
	assert.Empty(t, w.Header().Get("X-Cache"))
	assert.True(t, strings.Contains(w.Body.String(), `"essay"`))
}

func TestRateLimit(t *testing.T) {
	r, _ := setupRouter(t, config.ServerConfig{RateLimitPerSec: 1, RateLimitBurst: 1})

	assert.Equal(t, http.StatusOK, request(t, r, http.MethodGet, "/api/deadlines", nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, request(t, r, http.MethodGet, "/api/deadlines", nil).Code)
	// Health checks are outside the limited group.
	assert.Equal(t, http.StatusOK, request(t, r, http.MethodGet, "/healthz", nil).Code)
}

func TestMetricsEndpoint(t *testing.T) {
	r, _ := setupRouter(t, config.ServerConfig{})
	request(t, r, http.MethodPost, "/api/plans/generate", gin.H{"windowStart": at(2, 12, 0), "windowEnd": at(2, 9, 0)})

	w := request(t, r, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `studyplan_plan_failures_total{code="invalid_window"} 1`)
}
