package webhook

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func newTestRouter(t *testing.T) (*gin.Engine, *recFixture) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	f := newRecFixture(t)
	h := Handlers{Reconciler: f.rec, Log: slog.New(slog.NewTextHandler(io.Discard, nil))}
	r := gin.New()
	r.POST("/vapi/webhook", h.Webhook)
	r.POST("/vapi/action", h.Action)
	return r, f
}

func postJSON(t *testing.T, r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestWebhookMalformedBodyIsAcknowledged(t *testing.T) {
	r, _ := newTestRouter(t)

	w := postJSON(t, r, "/vapi/webhook", `{not json`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"success":true`) {
		t.Fatalf("body = %s", w.Body.String())
	}
}

func TestWebhookIgnoresOtherMessageTypes(t *testing.T) {
	r, _ := newTestRouter(t)

	w := postJSON(t, r, "/vapi/webhook", `{"message":{"type":"status-update"}}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
}

func TestWebhookEndOfCallFlow(t *testing.T) {
	r, f := newTestRouter(t)
	ctx := context.Background()
	uid := f.addUser(t, "+15551234567")
	sid := f.addSession(t, uid, "daily", "call-h1")

	body := `{"message":{
		"type":"end-of-call-report",
		"call":{"id":"call-h1","type":"outboundPhoneCall"},
		"endedReason":"customer-ended-call",
		"startedAt":"2026-01-07T17:00:00Z",
		"endedAt":"2026-01-07T17:08:00Z",
		"analysis":{"summary":"good session","structuredData":{"actions":[{"text":"write"}],"startTime":"09:00"}}
	}}`

	w := postJSON(t, r, "/vapi/webhook", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	s, err := f.sessionSv.Get(ctx, sid)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if s.Status != "completed" {
		t.Fatalf("status = %s", s.Status)
	}
	rec, found, _ := f.records.GetByProviderCallID(ctx, "call-h1")
	if !found || rec.DurationSeconds != 480 {
		t.Fatalf("record: found=%v %+v", found, rec)
	}
}

func TestActionUnknownTypeReturnsEmptyResults(t *testing.T) {
	r, _ := newTestRouter(t)

	w := postJSON(t, r, "/vapi/action", `{"message":{"type":"status-update"}}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var body struct {
		Results []ToolResult `json:"results"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Results) != 0 {
		t.Fatalf("results = %+v", body.Results)
	}
}

func TestActionToolCalls(t *testing.T) {
	r, f := newTestRouter(t)
	ctx := context.Background()
	uid := f.addUser(t, "+15551234567")
	f.addSession(t, uid, "weekly", "call-h2")

	body := `{"message":{
		"type":"tool-calls",
		"call":{"id":"call-h2"},
		"toolCalls":[{"id":"tc-1","function":{"name":"saveWeeklyData","arguments":"{\"objective\":\"ship it\"}"}}]
	}}`

	w := postJSON(t, r, "/vapi/action", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var resp struct {
		Results []ToolResult `json:"results"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Results) != 1 || resp.Results[0].ToolCallID != "tc-1" {
		t.Fatalf("results = %+v", resp.Results)
	}

	obj, err := f.coaching.CurrentWeekly(ctx, uid)
	if err != nil {
		t.Fatalf("weekly: %v", err)
	}
	if obj.Objective != "ship it" {
		t.Fatalf("objective = %q", obj.Objective)
	}
}
