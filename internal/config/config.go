// Package config handles configuration loading for NeuraLaunch.
// It supports XDG config paths, project-level overrides, and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for NeuraLaunch.
type Config struct {
	Anthropic AnthropicConfig `mapstructure:"anthropic"`
	Engine    EngineConfig    `mapstructure:"engine"`
	Git       GitConfig       `mapstructure:"git"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	// APIKey is the Anthropic API key. Supports ${VAR} expansion.
	APIKey string `mapstructure:"api_key"`
	// Model is the Claude model used for all agent roles.
	Model string `mapstructure:"model"`
	// UseBedrock routes API calls through AWS Bedrock instead of the direct API.
	UseBedrock bool `mapstructure:"use_bedrock"`
	// AWSRegion is the Bedrock region, e.g. "us-west-2".
	AWSRegion string `mapstructure:"aws_region"`
	// AWSProfile is the optional AWS shared config profile.
	AWSProfile string `mapstructure:"aws_profile"`
}

// EngineConfig holds orchestration engine settings.
type EngineConfig struct {
	// AgentCap is the maximum number of tasks of one agent kind per wave.
	AgentCap int `mapstructure:"agent_cap"`
	// MaxFixAttempts bounds the fix/retry loop per wave.
	MaxFixAttempts int `mapstructure:"max_fix_attempts"`
	// GlobalConcurrency caps agent invocations running at once across kinds.
	GlobalConcurrency int `mapstructure:"global_concurrency"`
	// TaskTimeout is the per-agent-invocation deadline.
	TaskTimeout time.Duration `mapstructure:"task_timeout"`
	// AuditRetention is how long agent execution records are kept.
	AuditRetention time.Duration `mapstructure:"audit_retention"`
}

// GitConfig holds workspace git settings.
type GitConfig struct {
	// Push enables pushing wave branches to origin after commit.
	Push bool `mapstructure:"push"`
	// BranchPrefix is prepended to generated wave branch names.
	BranchPrefix string `mapstructure:"branch_prefix"`
}

// Load loads configuration from XDG paths, project overrides, and environment variables.
// Precedence (highest to lowest):
// 1. Environment variables (ANTHROPIC_API_KEY)
// 2. Project config (.neuralaunch.yaml in current directory or parent)
// 3. User config (~/.config/neuralaunch/config.yaml)
// 4. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	userConfigDir := getUserConfigDir()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(userConfigDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	projectConfig := findProjectConfig()
	if projectConfig != "" {
		projectViper := viper.New()
		projectViper.SetConfigFile(projectConfig)
		if err := projectViper.ReadInConfig(); err == nil {
			if err := v.MergeConfigMap(projectViper.AllSettings()); err != nil {
				return nil, fmt.Errorf("merging project config: %w", err)
			}
		}
	}

	v.AutomaticEnv()
	v.BindEnv("anthropic.api_key", "ANTHROPIC_API_KEY")
	v.BindEnv("anthropic.aws_region", "AWS_REGION")

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Anthropic.APIKey = expandEnv(cfg.Anthropic.APIKey)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromPath loads configuration from a specific path (for testing).
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Anthropic.APIKey = expandEnv(cfg.Anthropic.APIKey)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Engine.AgentCap < 1 {
		return fmt.Errorf("engine.agent_cap must be at least 1, got %d", c.Engine.AgentCap)
	}
	if c.Engine.MaxFixAttempts < 0 {
		return fmt.Errorf("engine.max_fix_attempts must not be negative, got %d", c.Engine.MaxFixAttempts)
	}
	if c.Engine.GlobalConcurrency < 1 {
		return fmt.Errorf("engine.global_concurrency must be at least 1, got %d", c.Engine.GlobalConcurrency)
	}
	return nil
}

// GetUserConfigPath returns the path to the user config file.
func GetUserConfigPath() string {
	return filepath.Join(getUserConfigDir(), "config.yaml")
}

// setDefaults configures default values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("anthropic.api_key", "")
	v.SetDefault("anthropic.model", "")
	v.SetDefault("anthropic.use_bedrock", false)

	v.SetDefault("engine.agent_cap", 3)
	v.SetDefault("engine.max_fix_attempts", 2)
	v.SetDefault("engine.global_concurrency", 10)
	v.SetDefault("engine.task_timeout", "10m")
	v.SetDefault("engine.audit_retention", "720h")

	v.SetDefault("git.push", false)
	v.SetDefault("git.branch_prefix", "neuralaunch/")
}

// getUserConfigDir returns the XDG config directory for NeuraLaunch.
func getUserConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "neuralaunch")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "neuralaunch")
	}
	return filepath.Join(home, ".config", "neuralaunch")
}

// findProjectConfig searches for .neuralaunch.yaml in the current directory and parents.
func findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(cwd, ".neuralaunch.yaml")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(cwd)
		if parent == cwd {
			break
		}
		cwd = parent
	}

	return ""
}

// expandEnv expands ${VAR} references in a config value.
func expandEnv(s string) string {
	if strings.Contains(s, "${") {
		return os.ExpandEnv(s)
	}
	return s
}
