package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mansaraysaheedalpha/neuralaunch-sub006/internal/agent"
	"github.com/mansaraysaheedalpha/neuralaunch-sub006/pkg/models"
)

// LLMRunner executes a single agent role against the Claude API.
// One runner is registered per agent kind; the role only changes the
// system prompt, the request/response contract is shared.
type LLMRunner struct {
	client *Client
	kind   models.AgentKind
}

// NewLLMRunner creates a runner for the given agent kind.
func NewLLMRunner(client *Client, kind models.AgentKind) *LLMRunner {
	return &LLMRunner{client: client, kind: kind}
}

// Kind returns the agent role this runner serves.
func (r *LLMRunner) Kind() models.AgentKind {
	return r.kind
}

// agentResponse is the JSON contract every agent role responds with.
type agentResponse struct {
	Success bool                  `json:"success"`
	Summary string                `json:"summary"`
	Files   []agent.GeneratedFile `json:"files,omitempty"`
	Issues  []models.Issue        `json:"issues,omitempty"`
	Error   string                `json:"error,omitempty"`
}

// Execute runs one agent invocation. API transport failures are returned
// as a Result with a transient error kind so the caller can decide whether
// to retry; only context cancellation surfaces as a Go error.
func (r *LLMRunner) Execute(ctx context.Context, req agent.Request) (agent.Result, error) {
	userPrompt := buildUserPrompt(req)

	raw, err := r.client.Complete(ctx, systemPromptFor(r.kind), userPrompt)
	if err != nil {
		if ctx.Err() != nil {
			return agent.Result{}, ctx.Err()
		}
		return agent.Result{
			Success:   false,
			ErrorKind: models.ErrorKindTransient,
			Error:     err.Error(),
		}, nil
	}

	var resp agentResponse
	if err := parseJSON(raw, &resp); err != nil {
		return agent.Result{
			Success:   false,
			ErrorKind: models.ErrorKindVerification,
			Error:     fmt.Sprintf("malformed agent response: %v", err),
		}, nil
	}

	result := agent.Result{
		Success: resp.Success,
		Output:  resp.Summary,
		Files:   resp.Files,
		Issues:  resp.Issues,
	}
	if !resp.Success {
		result.ErrorKind = models.ErrorKindVerification
		result.Error = resp.Error
		if result.Error == "" {
			result.Error = "agent reported failure without detail"
		}
	}
	return result, nil
}

func buildUserPrompt(req agent.Request) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Project: %s\n", req.ProjectID)
	if req.Blueprint != "" {
		fmt.Fprintf(&b, "\nBlueprint:\n%s\n", req.Blueprint)
	}
	fmt.Fprintf(&b, "\nPhase: %s\n", req.Phase)

	if req.Task != nil {
		fmt.Fprintf(&b, "\nTask %d: %s\n", req.Task.Index, req.Task.Description)
		if len(req.Task.Files) > 0 {
			fmt.Fprintf(&b, "Files in scope: %s\n", strings.Join(req.Task.Files, ", "))
		}
		if req.Task.Rationale != "" {
			fmt.Fprintf(&b, "Rationale: %s\n", req.Task.Rationale)
		}
		if req.Task.SuccessCriteria != "" {
			fmt.Fprintf(&b, "Success criteria: %s\n", req.Task.SuccessCriteria)
		}
	}

	if req.FixMode {
		fmt.Fprintf(&b, "\nFIX MODE (attempt %d). The previous output had issues. Resolve every issue below without regressing working code:\n", req.Attempt)
		for _, issue := range req.Issues {
			fmt.Fprintf(&b, "- [%s] %s: %s", issue.Severity, issue.File, issue.Message)
			if issue.SuggestedFix != "" {
				fmt.Fprintf(&b, " (suggested: %s)", issue.SuggestedFix)
			}
			b.WriteString("\n")
		}
	}

	if len(req.FileContents) > 0 {
		b.WriteString("\nCurrent file contents:\n")
		for path, content := range req.FileContents {
			fmt.Fprintf(&b, "--- %s ---\n%s\n", path, content)
		}
	}

	b.WriteString("\nRespond with a single JSON object: {\"success\": bool, \"summary\": string, \"files\": [{\"path\": string, \"content\": string}], \"issues\": [{\"file\": string, \"severity\": string, \"message\": string, \"suggested_fix\": string, \"auto_fixable\": bool}], \"error\": string}.")
	return b.String()
}

// parseJSON extracts the first JSON object or array from a model response,
// tolerating prose or markdown fences around it.
func parseJSON(response string, target interface{}) error {
	jsonStart := strings.Index(response, "{")
	if jsonStart == -1 {
		jsonStart = strings.Index(response, "[")
	}
	jsonEnd := strings.LastIndex(response, "}")
	if jsonEnd == -1 {
		jsonEnd = strings.LastIndex(response, "]")
	}

	if jsonStart == -1 || jsonEnd == -1 || jsonEnd <= jsonStart {
		return fmt.Errorf("no valid JSON found in response: %s", truncate(response, 200))
	}

	jsonStr := response[jsonStart : jsonEnd+1]
	if err := json.Unmarshal([]byte(jsonStr), target); err != nil {
		return fmt.Errorf("parse JSON: %w (response: %s)", err, truncate(jsonStr, 200))
	}
	return nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
