package vapi

import "coaching-platform/internal/session"

// Tool function names as the provider reports them back in tool-call
// webhooks.
const (
	ToolSaveOnboardingData = "saveOnboardingData"
	ToolSaveWeeklyData     = "saveWeeklyData"
	ToolSaveDailyData      = "saveDailyData"
)

// ToolDef is a provider tool definition in OpenAI function-call shape.
type ToolDef struct {
	Type     string       `json:"type"`
	Function ToolFunction `json:"function"`
}

type ToolFunction struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  ToolParameters `json:"parameters"`
}

type ToolParameters struct {
	Type       string         `json:"type"`
	Properties map[string]any `json:"properties"`
	Required   []string       `json:"required,omitempty"`
}

func toolDef(name, description string, properties map[string]any, required []string) ToolDef {
	return ToolDef{
		Type: "function",
		Function: ToolFunction{
			Name:        name,
			Description: description,
			Parameters: ToolParameters{
				Type:       "object",
				Properties: properties,
				Required:   required,
			},
		},
	}
}

func stringProp(description string) map[string]any {
	return map[string]any{"type": "string", "description": description}
}

func stringListProp(description string) map[string]any {
	return map[string]any{
		"type":        "array",
		"items":       map[string]any{"type": "string"},
		"description": description,
	}
}

var saveOnboardingDataTool = toolDef(
	ToolSaveOnboardingData,
	"Save the user's vision, motivations, cost of inaction, and commitment declaration from the onboarding call.",
	map[string]any{
		"visionSummary":         stringProp("One clear sentence describing what the user is building or focused on for the next 12 months."),
		"motivations":           stringListProp("List of reasons why this matters to the user (the 'real' reasons)."),
		"costOfInaction":        stringProp("Description of what life looks like in 12 months if nothing changes (the pain point)."),
		"commitmentDeclaration": stringProp("The short commitment sentence spoken by the user to fix their execution."),
	},
	[]string{"visionSummary", "motivations", "costOfInaction", "commitmentDeclaration"},
)

var saveWeeklyDataTool = toolDef(
	ToolSaveWeeklyData,
	"Save the structured weekly plan including objective, bottlenecks, actions, and behavioral changes.",
	map[string]any{
		"objective":    stringProp("The single most important objective to complete this week."),
		"bottlenecks":  stringListProp("The three biggest bottlenecks that could stop the user."),
		"actions":      stringListProp("The three concrete actions that guarantee completion of the objective."),
		"stopList":     stringListProp("List of things the user needs to STOP doing this week."),
		"startList":    stringListProp("List of things the user needs to START doing this week."),
		"continueList": stringListProp("List of things the user should CONTINUE doing."),
		"commitmentLevel": map[string]any{
			"type":        "number",
			"description": "User's self-rated commitment level (1-10).",
		},
	},
	[]string{"objective", "bottlenecks", "actions", "stopList", "startList", "continueList", "commitmentLevel"},
)

var saveDailyDataTool = toolDef(
	ToolSaveDailyData,
	"Save the daily closeout review (wins/misses) and the plan for tomorrow.",
	map[string]any{
		"wins":     stringListProp("List of 1-3 wins from today."),
		"misses":   stringListProp("List of top 1-3 things that didn't happen today."),
		"blockers": stringProp("The real blocker underneath the misses (time, energy, avoidance, etc.)."),
		"actions": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"text": stringProp("The action to take."),
					"why":  stringProp("Why this action matters tomorrow (one sentence)."),
				},
				"required": []string{"text", "why"},
			},
			"description": "Exactly 3 actions for tomorrow.",
		},
		"startTime": stringProp("The specific time the user commits to starting action #1 tomorrow."),
	},
	[]string{"wins", "misses", "blockers", "actions", "startTime"},
)

// ToolsFor returns the tool set injected into the assistant override
// for a call type.
func ToolsFor(t session.CallType) []ToolDef {
	switch t {
	case session.CallTypeOnboarding:
		return []ToolDef{saveOnboardingDataTool}
	case session.CallTypeWeekly:
		return []ToolDef{saveWeeklyDataTool}
	case session.CallTypeDaily:
		return []ToolDef{saveDailyDataTool}
	}
	return nil
}
