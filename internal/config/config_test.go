package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFromPathDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("anthropic:\n  api_key: test-key\n"), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}

	if cfg.Anthropic.APIKey != "test-key" {
		t.Errorf("api key = %q, want test-key", cfg.Anthropic.APIKey)
	}
	if cfg.Engine.AgentCap != 3 {
		t.Errorf("agent_cap = %d, want default 3", cfg.Engine.AgentCap)
	}
	if cfg.Engine.MaxFixAttempts != 2 {
		t.Errorf("max_fix_attempts = %d, want default 2", cfg.Engine.MaxFixAttempts)
	}
	if cfg.Engine.GlobalConcurrency != 10 {
		t.Errorf("global_concurrency = %d, want default 10", cfg.Engine.GlobalConcurrency)
	}
	if cfg.Engine.TaskTimeout != 10*time.Minute {
		t.Errorf("task_timeout = %v, want 10m", cfg.Engine.TaskTimeout)
	}
	if cfg.Git.Push {
		t.Error("git.push should default to false")
	}
}

func TestLoadFromPathOverrides(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	content := `anthropic:
  api_key: k
  use_bedrock: true
  aws_region: us-west-2
engine:
  agent_cap: 5
  max_fix_attempts: 1
  task_timeout: 2m
git:
  push: true
  branch_prefix: launch/
`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}

	if !cfg.Anthropic.UseBedrock {
		t.Error("expected use_bedrock true")
	}
	if cfg.Anthropic.AWSRegion != "us-west-2" {
		t.Errorf("aws_region = %q", cfg.Anthropic.AWSRegion)
	}
	if cfg.Engine.AgentCap != 5 {
		t.Errorf("agent_cap = %d, want 5", cfg.Engine.AgentCap)
	}
	if cfg.Engine.MaxFixAttempts != 1 {
		t.Errorf("max_fix_attempts = %d, want 1", cfg.Engine.MaxFixAttempts)
	}
	if cfg.Engine.TaskTimeout != 2*time.Minute {
		t.Errorf("task_timeout = %v, want 2m", cfg.Engine.TaskTimeout)
	}
	if cfg.Git.BranchPrefix != "launch/" {
		t.Errorf("branch_prefix = %q", cfg.Git.BranchPrefix)
	}
}

func TestLoadFromPathRejectsInvalidEngineValues(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("engine:\n  agent_cap: 0\n"), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := LoadFromPath(configPath); err == nil {
		t.Fatal("expected validation error for agent_cap 0")
	}
}

func TestExpandEnvAPIKey(t *testing.T) {
	t.Setenv("NL_TEST_KEY", "secret-from-env")

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("anthropic:\n  api_key: ${NL_TEST_KEY}\n"), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if cfg.Anthropic.APIKey != "secret-from-env" {
		t.Errorf("api key = %q, want expanded env value", cfg.Anthropic.APIKey)
	}
}
