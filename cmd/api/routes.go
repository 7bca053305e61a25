package main

import (
	"log/slog"

	"coaching-platform/internal/auth"
	"coaching-platform/internal/calls"
	"coaching-platform/internal/coaching"
	"coaching-platform/internal/httpapi"
	"coaching-platform/internal/reporting"
	"coaching-platform/internal/schedule"
	"coaching-platform/internal/session"
	"coaching-platform/internal/users"
	"coaching-platform/internal/vapi"
	"coaching-platform/internal/webhook"

	"github.com/gin-gonic/gin"
)

type deps struct {
	auth       *auth.Manager
	users      *users.Service
	schedules  *schedule.Service
	sessions   *session.Service
	records    calls.Store
	coaching   *coaching.Service
	reports    *reporting.Service
	trigger    *vapi.Trigger
	reconciler *webhook.Reconciler
	log        *slog.Logger
}

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers should delegate to internal modules.
func registerRoutes(r *gin.Engine, d deps) {
	// public
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Provider webhooks (public).
	// NOTE: These should sit behind a provider secret check (shared
	// header token) in production.
	wh := webhook.Handlers{Reconciler: d.reconciler, Log: d.log}
	r.POST("/vapi/webhook", wh.Webhook)
	r.POST("/vapi/action", wh.Action)

	h := httpapi.Handlers{
		Auth:      d.auth,
		Users:     d.users,
		Schedules: d.schedules,
		Sessions:  d.sessions,
		Records:   d.records,
		Coaching:  d.coaching,
		Reports:   d.reports,
		Trigger:   d.trigger,
	}

	// auth (public)
	authGroup := r.Group("/v1/auth")
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
		authGroup.POST("/refresh", h.Refresh)
	}

	// protected API group
	v1 := r.Group("/v1")
	v1.Use(auth.RequireAccessToken(d.auth))
	{
		v1.GET("/me", h.Me)
		v1.PATCH("/me", h.UpdateMe)

		v1.GET("/schedule", h.GetSchedule)
		v1.PATCH("/schedule", h.UpdateSchedule)
		v1.GET("/schedule/next-call", h.NextCall)

		v1.POST("/calls/trigger", h.TriggerCall)
		v1.GET("/calls", h.ListCalls)
		v1.GET("/calls/:id", h.GetCall)

		v1.GET("/sessions", h.ListSessions)
		v1.GET("/sessions/upcoming", h.UpcomingSessions)
		v1.GET("/sessions/:id", h.GetSession)
		v1.GET("/sessions/:id/summary", h.SessionSummary)

		v1.GET("/summaries", h.ListSummaries)
		v1.GET("/summaries/latest", h.LatestSummary)
		v1.PATCH("/summaries/:id", h.EditSummary)

		v1.GET("/vision", h.GetVision)
		v1.GET("/objectives", h.ListObjectives)
		v1.GET("/objectives/current", h.CurrentObjective)

		v1.GET("/plans", h.ListPlans)
		v1.GET("/plans/today", h.TodayPlan)
		v1.GET("/plans/tomorrow", h.TomorrowPlan)
		v1.GET("/plans/stats", h.PlanStats)
		v1.PATCH("/plans/:id/actions/:index", h.ToggleAction)

		v1.GET("/commitments", h.ListCommitments)

		v1.GET("/stats/calls", h.CallStats)
		v1.GET("/stats/attendance", h.AttendanceStats)
	}
}
