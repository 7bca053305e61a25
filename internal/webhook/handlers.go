package webhook

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Handlers exposes the two provider-facing endpoints. Both must stay
// permissive: the provider treats any non-2xx as a delivery failure
// and retries, so malformed or unhandled messages are acknowledged,
// not rejected.
type Handlers struct {
	Reconciler *Reconciler
	Log        *slog.Logger
}

// Webhook handles POST /vapi/webhook (end-of-call reports and the
// status noise around them). Always answers 200 {"success": true}
// unless reconciliation itself broke unexpectedly.
func (h Handlers) Webhook(c *gin.Context) {
	var env Envelope
	if err := c.ShouldBindJSON(&env); err != nil {
		h.Log.Warn("unparseable webhook body", "error", err)
		c.JSON(http.StatusOK, gin.H{"success": true})
		return
	}

	switch env.Message.Type {
	case MessageEndOfCallReport:
		if err := h.Reconciler.HandleEndOfCall(c.Request.Context(), env.Message); err != nil {
			h.Log.Error("end-of-call reconciliation failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}
	default:
		// status-update, hang, speech-update and friends.
		h.Log.Debug("ignoring webhook message", "type", env.Message.Type)
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Action handles POST /vapi/action, the synchronous tool-call channel
// the assistant uses to persist partial data mid-call.
func (h Handlers) Action(c *gin.Context) {
	var env Envelope
	if err := c.ShouldBindJSON(&env); err != nil {
		h.Log.Warn("unparseable tool-call body", "error", err)
		c.JSON(http.StatusOK, gin.H{"results": []ToolResult{}})
		return
	}
	if env.Message.Type != MessageToolCalls || len(env.Message.ToolCalls) == 0 {
		c.JSON(http.StatusOK, gin.H{"results": []ToolResult{}})
		return
	}
	results := h.Reconciler.HandleToolCalls(c.Request.Context(), env.Message)
	c.JSON(http.StatusOK, gin.H{"results": results})
}
