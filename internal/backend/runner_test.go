package backend

import (
	"strings"
	"testing"

	"github.com/mansaraysaheedalpha/neuralaunch-sub006/internal/agent"
	"github.com/mansaraysaheedalpha/neuralaunch-sub006/pkg/models"
)

func TestParseJSONWithSurroundingProse(t *testing.T) {
	raw := "Here is the result:\n```json\n{\"success\": true, \"summary\": \"done\"}\n```\nLet me know if you need more."

	var resp agentResponse
	if err := parseJSON(raw, &resp); err != nil {
		t.Fatalf("parseJSON: %v", err)
	}
	if !resp.Success {
		t.Error("expected success=true")
	}
	if resp.Summary != "done" {
		t.Errorf("summary = %q, want done", resp.Summary)
	}
}

func TestParseJSONNoJSON(t *testing.T) {
	var resp agentResponse
	if err := parseJSON("I could not complete the task.", &resp); err == nil {
		t.Fatal("expected error for response without JSON")
	}
}

func TestBuildUserPromptFixMode(t *testing.T) {
	task := &models.Task{Index: 3, Description: "add login handler"}
	req := agent.Request{
		ProjectID: "proj-1",
		Phase:     models.PhaseWaveExecution,
		Task:      task,
		FixMode:   true,
		Attempt:   2,
		Issues: []models.Issue{
			{File: "auth.go", Severity: models.SeverityError, Message: "nil deref", SuggestedFix: "check token"},
		},
	}

	prompt := buildUserPrompt(req)
	if !strings.Contains(prompt, "FIX MODE (attempt 2)") {
		t.Errorf("prompt missing fix mode marker:\n%s", prompt)
	}
	if !strings.Contains(prompt, "auth.go") || !strings.Contains(prompt, "nil deref") {
		t.Errorf("prompt missing issue detail:\n%s", prompt)
	}
	if !strings.Contains(prompt, "Task 3: add login handler") {
		t.Errorf("prompt missing task line:\n%s", prompt)
	}
}

func TestBuildUserPromptIncludesFileContents(t *testing.T) {
	req := agent.Request{
		ProjectID:    "proj-1",
		Phase:        models.PhaseWaveExecution,
		FileContents: map[string]string{"main.go": "package main"},
	}

	prompt := buildUserPrompt(req)
	if !strings.Contains(prompt, "--- main.go ---") {
		t.Errorf("prompt missing file section:\n%s", prompt)
	}
}

func TestSystemPromptCoversAllKinds(t *testing.T) {
	for _, kind := range models.AllAgentKinds() {
		p := systemPromptFor(kind)
		if p == "" {
			t.Errorf("empty system prompt for %s", kind)
		}
		if !strings.Contains(p, "JSON") {
			t.Errorf("prompt for %s does not pin the JSON contract", kind)
		}
	}
}
