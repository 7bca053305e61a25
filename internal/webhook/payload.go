package webhook

import (
	"encoding/json"
	"time"
)

// Provider webhook bodies wrap everything in a message object tagged
// by type. Only end-of-call-report and tool-calls are acted on; other
// types (status-update, hang, speech-update) are acknowledged and
// ignored.
const (
	MessageEndOfCallReport = "end-of-call-report"
	MessageToolCalls       = "tool-calls"
)

type Envelope struct {
	Message Message `json:"message"`
}

type Message struct {
	Type string `json:"type"`

	Call     *CallInfo `json:"call,omitempty"`
	Customer *Customer `json:"customer,omitempty"`
	Analysis *Analysis `json:"analysis,omitempty"`

	RecordingURL string     `json:"recordingUrl,omitempty"`
	Transcript   string     `json:"transcript,omitempty"`
	Summary      string     `json:"summary,omitempty"`
	StartedAt    *time.Time `json:"startedAt,omitempty"`
	EndedAt      *time.Time `json:"endedAt,omitempty"`
	EndedReason  string     `json:"endedReason,omitempty"`

	ToolCalls []ToolCall `json:"toolCalls,omitempty"`
}

// CallInfo is the provider's call object. Type distinguishes
// inboundPhoneCall from outboundPhoneCall.
type CallInfo struct {
	ID       string    `json:"id"`
	Type     string    `json:"type,omitempty"`
	Customer *Customer `json:"customer,omitempty"`
}

type Customer struct {
	Number string `json:"number"`
}

// Analysis carries the provider's post-call analysis: a prose summary
// plus the structured data the assistant extracted during the call.
type Analysis struct {
	Summary        string          `json:"summary,omitempty"`
	StructuredData json.RawMessage `json:"structuredData,omitempty"`
}

type ToolCall struct {
	ID       string           `json:"id"`
	Function ToolCallFunction `json:"function"`
}

type ToolCallFunction struct {
	Name string `json:"name"`
	// Arguments is a JSON object serialized as a string, per the
	// OpenAI function-call convention.
	Arguments string `json:"arguments"`
}

// ToolResult is one entry of the synchronous tool-call response. The
// provider matches results to calls by tool call id.
type ToolResult struct {
	ToolCallID string `json:"toolCallId"`
	Result     string `json:"result"`
}

// CustomerNumber returns the customer phone from whichever location
// the provider put it in.
func (m Message) CustomerNumber() string {
	if m.Customer != nil && m.Customer.Number != "" {
		return m.Customer.Number
	}
	if m.Call != nil && m.Call.Customer != nil {
		return m.Call.Customer.Number
	}
	return ""
}

// Extracted payload shapes, one per call type, matching the tool
// parameter schemas the assistants are configured with.

type onboardingData struct {
	VisionSummary         string   `json:"visionSummary"`
	Motivations           []string `json:"motivations"`
	CostOfInaction        string   `json:"costOfInaction"`
	CommitmentDeclaration string   `json:"commitmentDeclaration"`
}

type weeklyData struct {
	Objective       string   `json:"objective"`
	Bottlenecks     []string `json:"bottlenecks"`
	Actions         []string `json:"actions"`
	StopList        []string `json:"stopList"`
	StartList       []string `json:"startList"`
	ContinueList    []string `json:"continueList"`
	CommitmentLevel int      `json:"commitmentLevel"`
}

type dailyAction struct {
	Text string `json:"text"`
	Why  string `json:"why"`
}

type dailyData struct {
	Wins      []string      `json:"wins"`
	Misses    []string      `json:"misses"`
	Blockers  string        `json:"blockers"`
	Actions   []dailyAction `json:"actions"`
	StartTime string        `json:"startTime"`
}
