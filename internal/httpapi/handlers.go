package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"coaching-platform/internal/auth"
	"coaching-platform/internal/calls"
	"coaching-platform/internal/coaching"
	"coaching-platform/internal/reporting"
	"coaching-platform/internal/schedule"
	"coaching-platform/internal/session"
	"coaching-platform/internal/users"
	"coaching-platform/internal/vapi"
	"coaching-platform/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, return JSON.
type Handlers struct {
	Auth      *auth.Manager
	Users     *users.Service
	Schedules *schedule.Service
	Sessions  *session.Service
	Records   calls.Store
	Coaching  *coaching.Service
	Reports   *reporting.Service
	Trigger   *vapi.Trigger
}

func currentUser(c *gin.Context) (string, bool) {
	uid, err := auth.UserID(c.Request.Context())
	if err != nil || uid == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return "", false
	}
	return uid, true
}

func queryInt(c *gin.Context, name string, def int) int {
	raw := c.Query(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

/* ===================== auth ===================== */

type registerRequest struct {
	Phone    string `json:"phone"`
	Timezone string `json:"timezone"`
}

func (h Handlers) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	u, err := h.Users.Register(c.Request.Context(), req.Phone, req.Timezone)
	if errors.Is(err, users.ErrPhoneTaken) {
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "phone already registered"})
		return
	}
	if errors.Is(err, users.ErrInvalidArgument) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "registration failed"})
		return
	}
	pair, err := h.Auth.IssuePair(time.Now(), u.ID)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "token issuance failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"user":          u,
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
	})
}

type loginRequest struct {
	Phone string `json:"phone"`
}

// Login issues a token pair for a known phone number.
//
// NOTE: phone possession is not verified here; an SMS OTP step belongs
// in front of this endpoint before any real deployment.
func (h Handlers) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Phone == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "phone required"})
		return
	}
	u, found, err := h.Users.FindByPhone(c.Request.Context(), req.Phone)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	if !found {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unknown phone"})
		return
	}
	pair, err := h.Auth.IssuePair(time.Now(), u.ID)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "token issuance failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": pair.AccessToken, "refresh_token": pair.RefreshToken})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (h Handlers) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.RefreshToken == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "refresh_token required"})
		return
	}
	claims, err := h.Auth.Verify(req.RefreshToken, auth.TokenTypeRefresh, time.Now())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}
	pair, err := h.Auth.IssuePair(time.Now(), claims.UserID)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "token issuance failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": pair.AccessToken, "refresh_token": pair.RefreshToken})
}

/* ===================== me ===================== */

func (h Handlers) Me(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	u, err := h.Users.Get(c.Request.Context(), uid)
	if errors.Is(err, users.ErrNotFound) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h Handlers) UpdateMe(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	var upd users.SettingsUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if err := h.Users.UpdateSettings(c.Request.Context(), uid, upd); err != nil {
		if errors.Is(err, users.ErrInvalidArgument) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	h.Me(c)
}

/* ===================== schedule ===================== */

func (h Handlers) GetSchedule(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	s, err := h.Schedules.Get(c.Request.Context(), uid)
	if errors.Is(err, schedule.ErrNotFound) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "no schedule"})
		return
	}
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h Handlers) UpdateSchedule(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	var upd schedule.Update
	if err := c.ShouldBindJSON(&upd); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if err := h.Schedules.Update(c.Request.Context(), uid, upd); err != nil {
		if errors.Is(err, schedule.ErrInvalidArgument) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if errors.Is(err, schedule.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "no schedule"})
			return
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	h.GetSchedule(c)
}

func (h Handlers) NextCall(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	next, found, err := h.Schedules.NextCall(c.Request.Context(), uid)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	if !found {
		c.JSON(http.StatusOK, gin.H{"next_call": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"next_call": next})
}

/* ===================== calls ===================== */

type triggerRequest struct {
	Type  string `json:"type"`
	Phone string `json:"phone,omitempty"`
}

// TriggerCall places an outbound call right now. Provider failures
// surface to the caller; the session row is already marked failed by
// the trigger, so retrying is just pressing the button again.
func (h Handlers) TriggerCall(c *gin.Context) {
	log := logger.FromGin(c)

	uid, ok := currentUser(c)
	if !ok {
		return
	}
	var req triggerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	ct, valid := session.NormalizeCallType(req.Type)
	if !valid {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "unknown call type"})
		return
	}
	phone := req.Phone
	if phone == "" {
		u, err := h.Users.Get(c.Request.Context(), uid)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
			return
		}
		phone = u.Phone
	}

	call, err := h.Trigger.Trigger(c.Request.Context(), uid, phone, ct)
	if errors.Is(err, vapi.ErrNotConfigured) {
		log.Warn("call type not configured", "call_type", ct)
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		log.Error("outbound call trigger failed", "call_type", ct, "err", err)
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"call_id": call.ID, "status": call.Status})
}

func (h Handlers) ListSessions(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	limit := queryInt(c, "limit", 20)
	offset := queryInt(c, "offset", 0)
	out, err := h.Sessions.History(c.Request.Context(), uid, limit, offset)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": out})
}

func (h Handlers) UpcomingSessions(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	out, err := h.Sessions.Upcoming(c.Request.Context(), uid, queryInt(c, "limit", 10))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": out})
}

func (h Handlers) GetSession(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	s, err := h.Sessions.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, session.ErrNotFound) || (err == nil && s.UserID != uid) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h Handlers) ListCalls(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	limit := queryInt(c, "limit", 20)
	offset := queryInt(c, "offset", 0)
	out, err := h.Records.ListByUser(c.Request.Context(), uid, limit, offset)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"calls": out})
}

func (h Handlers) GetCall(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	rec, err := h.Records.GetByID(c.Request.Context(), c.Param("id"))
	if errors.Is(err, calls.ErrNotFound) || (err == nil && rec.UserID != uid) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "call not found"})
		return
	}
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	c.JSON(http.StatusOK, rec)
}

/* ===================== summaries ===================== */

func (h Handlers) ListSummaries(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	out, err := h.Coaching.Summaries(c.Request.Context(), uid, queryInt(c, "limit", 20))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"summaries": out})
}

func (h Handlers) LatestSummary(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	out, err := h.Coaching.Summaries(c.Request.Context(), uid, 1)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	if len(out) == 0 {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "no summaries"})
		return
	}
	c.JSON(http.StatusOK, out[0])
}

func (h Handlers) SessionSummary(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	sum, found, err := h.Coaching.SummaryForSession(c.Request.Context(), uid, c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	if !found {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "no summary for session"})
		return
	}
	c.JSON(http.StatusOK, sum)
}

type summaryEditRequest struct {
	UserEditsText string `json:"user_edits_text"`
	Lock          bool   `json:"lock"`
}

func (h Handlers) EditSummary(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	var req summaryEditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	err := h.Coaching.EditSummary(c.Request.Context(), uid, c.Param("id"), req.UserEditsText, req.Lock)
	if errors.Is(err, coaching.ErrNotFound) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "summary not found"})
		return
	}
	if errors.Is(err, coaching.ErrSummaryLocked) {
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "summary is locked"})
		return
	}
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

/* ===================== coaching artifacts ===================== */

func (h Handlers) GetVision(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	v, err := h.Coaching.Vision(c.Request.Context(), uid)
	if errors.Is(err, coaching.ErrNotFound) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "no vision profile"})
		return
	}
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h Handlers) CurrentObjective(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	o, err := h.Coaching.CurrentWeekly(c.Request.Context(), uid)
	if errors.Is(err, coaching.ErrNotFound) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "no objective this week"})
		return
	}
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	c.JSON(http.StatusOK, o)
}

func (h Handlers) ListObjectives(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	out, err := h.Coaching.ListWeekly(c.Request.Context(), uid, queryInt(c, "limit", 10))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"objectives": out})
}

func (h Handlers) planForDate(c *gin.Context, date string) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	p, err := h.Coaching.DailyForDate(c.Request.Context(), uid, date)
	if errors.Is(err, coaching.ErrNotFound) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "no plan for " + date})
		return
	}
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h Handlers) TodayPlan(c *gin.Context) {
	h.planForDate(c, time.Now().UTC().Format("2006-01-02"))
}

func (h Handlers) TomorrowPlan(c *gin.Context) {
	h.planForDate(c, coaching.TomorrowDate(time.Now()))
}

func (h Handlers) ListPlans(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	out, err := h.Coaching.ListDaily(c.Request.Context(), uid, c.Query("start"), c.Query("end"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"plans": out})
}

func (h Handlers) PlanStats(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	stats, err := h.Coaching.Stats(c.Request.Context(), uid, queryInt(c, "window", 30))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h Handlers) ToggleAction(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid action index"})
		return
	}

	// Ownership before mutation.
	if _, err := h.Coaching.PlanByID(c.Request.Context(), uid, c.Param("id")); err != nil {
		if errors.Is(err, coaching.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "plan not found"})
			return
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}

	p, err := h.Coaching.ToggleAction(c.Request.Context(), c.Param("id"), index)
	if errors.Is(err, coaching.ErrNotFound) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "plan not found"})
		return
	}
	if errors.Is(err, coaching.ErrInvalidArgument) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid action index"})
		return
	}
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, p)
}

func statsRange(c *gin.Context) reporting.TimeRange {
	days := queryInt(c, "days", 30)
	if days <= 0 {
		days = 30
	}
	now := time.Now().UTC()
	return reporting.TimeRange{From: now.AddDate(0, 0, -days), To: now.Add(time.Minute)}
}

func (h Handlers) CallStats(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	out, err := h.Reports.CallsSummary(c.Request.Context(), reporting.CallsSummaryRequest{
		UserID: uid,
		Range:  statsRange(c),
	})
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h Handlers) AttendanceStats(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	out, err := h.Reports.Attendance(c.Request.Context(), reporting.AttendanceRequest{
		UserID:   uid,
		CallType: c.Query("type"),
		Range:    statsRange(c),
	})
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h Handlers) ListCommitments(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	out, err := h.Coaching.Commitments(c.Request.Context(), uid, queryInt(c, "limit", 30))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"commitments": out})
}
