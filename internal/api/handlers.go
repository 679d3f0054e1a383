package api

import (
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/julianstephens/studyplan/internal/constants"
	"github.com/julianstephens/studyplan/internal/errors"
	"github.com/julianstephens/studyplan/internal/models"
	"github.com/julianstephens/studyplan/internal/planner"
	"github.com/julianstephens/studyplan/internal/storage"
	"github.com/julianstephens/studyplan/internal/utils"
)

// Health handles GET /healthz.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": constants.Version})
}

// GeneratePlan handles POST /api/plans/generate. An empty body plans the
// default horizon from now.
func (h *Handler) GeneratePlan(c *gin.Context) {
	var req planner.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil && !stderrors.Is(err, io.EOF) {
		badRequest(c, errors.CodeInvalidWindow, err)
		return
	}

	plan, err := h.svc.Generate(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

// AcceptPlan handles POST /api/plans/accept with a previously generated plan.
func (h *Handler) AcceptPlan(c *gin.Context) {
	var plan models.StudyPlan
	if err := c.ShouldBindJSON(&plan); err != nil {
		badRequest(c, errors.CodeInvalidPlan, err)
		return
	}

	records, err := h.svc.AcceptPlan(c.Request.Context(), plan)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"sessions": records})
}

// ListSessions handles GET /api/sessions?start=&end=&status=&deadlineId=&limit=.
func (h *Handler) ListSessions(c *gin.Context) {
	start, end, err := queryWindow(c)
	if err != nil {
		badRequest(c, errors.CodeInvalidWindow, err)
		return
	}

	filter := storage.SessionFilter{
		Start:      start,
		End:        end,
		Status:     models.SessionStatus(c.Query("status")),
		DeadlineID: c.Query("deadlineId"),
	}
	if v := c.Query("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			badRequest(c, errors.CodeInvalidWindow, fmt.Errorf("invalid limit %q", v))
			return
		}
		filter.Limit = limit
	}

	records, err := h.svc.ListSessions(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": records})
}

// GetSession handles GET /api/sessions/:id.
func (h *Handler) GetSession(c *gin.Context) {
	record, err := h.svc.GetSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

type checkInBody struct {
	Status      models.SessionStatus `json:"status"`
	CheckedAt   *time.Time           `json:"checkedAt"`
	EnergyLevel *int                 `json:"energyLevel"`
	FocusLevel  *int                 `json:"focusLevel"`
	Note        string               `json:"note"`
}

// CheckIn handles POST /api/sessions/:id/checkin.
func (h *Handler) CheckIn(c *gin.Context) {
	var body checkInBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, errors.CodeInvalidCheckIn, err)
		return
	}

	record, err := h.svc.CheckIn(c.Request.Context(), planner.CheckInRequest{
		SessionID:   c.Param("id"),
		Status:      body.Status,
		CheckedAt:   body.CheckedAt,
		EnergyLevel: body.EnergyLevel,
		FocusLevel:  body.FocusLevel,
		Note:        body.Note,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// Adherence handles GET /api/adherence?start=&end=.
func (h *Handler) Adherence(c *gin.Context) {
	start, end, err := queryWindow(c)
	if err != nil {
		badRequest(c, errors.CodeInvalidWindow, err)
		return
	}

	m, err := h.svc.Adherence(c.Request.Context(), start, end)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

// ListMutes handles GET /api/mutes?from=&to=.
func (h *Handler) ListMutes(c *gin.Context) {
	mutes, err := h.svc.ListMutes(c.Request.Context(), c.Query("from"), c.Query("to"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"mutes": mutes})
}

type addMuteBody struct {
	Day   string           `json:"day" binding:"required"`
	Scope models.MuteScope `json:"scope"`
}

// AddMute handles POST /api/mutes. The scope defaults to all_day.
func (h *Handler) AddMute(c *gin.Context) {
	var body addMuteBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, errors.CodeInvalidWindow, err)
		return
	}
	if body.Scope == "" {
		body.Scope = models.MuteScopeAllDay
	}

	mute, err := h.svc.AddMute(c.Request.Context(), body.Day, body.Scope)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, mute)
}

// DeleteMute handles DELETE /api/mutes/:day/:scope.
func (h *Handler) DeleteMute(c *gin.Context) {
	if err := h.svc.DeleteMute(c.Request.Context(), c.Param("day"), models.MuteScope(c.Param("scope"))); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListDeadlines handles GET /api/deadlines?all=true.
func (h *Handler) ListDeadlines(c *gin.Context) {
	all, _ := strconv.ParseBool(c.Query("all"))
	deadlines, err := h.svc.ListDeadlines(c.Request.Context(), all)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deadlines": deadlines})
}

// queryWindow parses the optional start and end query parameters.
func queryWindow(c *gin.Context) (*time.Time, *time.Time, error) {
	parse := func(key string) (*time.Time, error) {
		v := c.Query(key)
		if v == "" {
			return nil, nil
		}
		t, err := utils.ParseInstant(v, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		return &t, nil
	}

	start, err := parse("start")
	if err != nil {
		return nil, nil, err
	}
	end, err := parse("end")
	if err != nil {
		return nil, nil, err
	}
	return start, end, nil
}
