// Package models defines the core domain types shared across the engine.
package models

// TaskStatus represents the current state of a task.
type TaskStatus string

const (
	// TaskStatusPending indicates the task has not been assigned to a wave.
	TaskStatusPending TaskStatus = "pending"
	// TaskStatusAssigned indicates the task is part of the current wave.
	TaskStatusAssigned TaskStatus = "assigned"
	// TaskStatusInProgress indicates an agent is working on the task.
	TaskStatusInProgress TaskStatus = "in_progress"
	// TaskStatusComplete indicates the task finished successfully.
	TaskStatusComplete TaskStatus = "complete"
	// TaskStatusFailed indicates the task failed.
	TaskStatusFailed TaskStatus = "failed"
)

// Valid returns true if the status is a known value.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusPending, TaskStatusAssigned, TaskStatusInProgress, TaskStatusComplete, TaskStatusFailed:
		return true
	default:
		return false
	}
}

// AgentKind identifies the specialized worker category a task is assigned to.
type AgentKind string

const (
	// AgentPlanner handles analysis, research, validation, and planning.
	AgentPlanner AgentKind = "planner"
	// AgentCoder generates application code.
	AgentCoder AgentKind = "coder"
	// AgentInfra generates infrastructure and build configuration.
	AgentInfra AgentKind = "infra"
	// AgentCritic reviews generated work and reports issues.
	AgentCritic AgentKind = "critic"
	// AgentDeploy performs deployment work.
	AgentDeploy AgentKind = "deploy"
	// AgentMonitor performs post-deployment monitoring work.
	AgentMonitor AgentKind = "monitor"
)

// AllAgentKinds returns every known agent kind.
func AllAgentKinds() []AgentKind {
	return []AgentKind{AgentPlanner, AgentCoder, AgentInfra, AgentCritic, AgentDeploy, AgentMonitor}
}

// Valid returns true if the agent kind is a known value.
func (k AgentKind) Valid() bool {
	switch k {
	case AgentPlanner, AgentCoder, AgentInfra, AgentCritic, AgentDeploy, AgentMonitor:
		return true
	default:
		return false
	}
}

// Task is an atomic unit of work inside a plan phase. Tasks are immutable
// once the plan is approved; only Status and Error change during execution.
type Task struct {
	// Index is the task's zero-based position within its plan phase.
	// Dependency references use these indices.
	Index int `json:"index"`
	// Description is what the task should accomplish.
	Description string `json:"description"`
	// Files lists the target file paths the task writes.
	Files []string `json:"files,omitempty"`
	// Rationale is the implementation pattern or reasoning. Free text,
	// never used for control flow.
	Rationale string `json:"rationale,omitempty"`
	// DependsOn lists zero-based indices of tasks in the same phase that
	// must complete first.
	DependsOn []int `json:"depends_on,omitempty"`
	// Agent is the worker category assigned to this task.
	Agent AgentKind `json:"agent"`
	// VerifyCommands are commands run to verify the task's output.
	VerifyCommands []string `json:"verify_commands,omitempty"`
	// SuccessCriteria describes what verification must show.
	SuccessCriteria string `json:"success_criteria,omitempty"`
	// Complexity is a rough effort estimate (1-5).
	Complexity int `json:"complexity,omitempty"`
	// Details carries the agent-specific payload, validated at plan acceptance.
	Details *TaskDetails `json:"details,omitempty"`
	// Status is the current execution state of the task.
	Status TaskStatus `json:"status"`
	// Error contains the error message if the task failed.
	Error string `json:"error,omitempty"`
}

// TaskDetails is a tagged union of agent-specific task payloads.
// Exactly one variant may be set, and it must match the task's agent kind;
// plan acceptance rejects mismatches before execution starts.
type TaskDetails struct {
	Planner *PlannerDetails `json:"planner,omitempty"`
	Coder   *CoderDetails   `json:"coder,omitempty"`
	Infra   *InfraDetails   `json:"infra,omitempty"`
	Critic  *CriticDetails  `json:"critic,omitempty"`
	Deploy  *DeployDetails  `json:"deploy,omitempty"`
	Monitor *MonitorDetails `json:"monitor,omitempty"`
}

// PlannerDetails holds the payload for planner tasks.
type PlannerDetails struct {
	// Scope narrows what part of the blueprint the task covers.
	Scope string `json:"scope,omitempty"`
}

// CoderDetails holds the payload for coder tasks.
type CoderDetails struct {
	// Language is the implementation language for the generated files.
	Language string `json:"language"`
	// Framework is the framework the generated code targets, if any.
	Framework string `json:"framework,omitempty"`
}

// InfraDetails holds the payload for infra tasks.
type InfraDetails struct {
	// Provider names the infrastructure target (e.g. docker, vercel).
	Provider string `json:"provider"`
}

// CriticDetails holds the payload for critic tasks.
type CriticDetails struct {
	// Checks lists the review dimensions the critic applies.
	Checks []string `json:"checks,omitempty"`
}

// DeployDetails holds the payload for deploy tasks.
type DeployDetails struct {
	// Environment is the deployment target environment.
	Environment string `json:"environment"`
}

// MonitorDetails holds the payload for monitor tasks.
type MonitorDetails struct {
	// Probes lists the health probes to configure.
	Probes []string `json:"probes,omitempty"`
}
