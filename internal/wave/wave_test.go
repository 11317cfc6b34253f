package wave

import (
	"errors"
	"reflect"
	"testing"

	"github.com/mansaraysaheedalpha/neuralaunch-sub006/pkg/models"
)

func pendingTasks(n int, agent models.AgentKind) []models.Task {
	tasks := make([]models.Task, n)
	for i := range tasks {
		tasks[i] = models.Task{Index: i, Agent: agent, Status: models.TaskStatusPending}
	}
	return tasks
}

func TestBuildSelectsRootsFirst(t *testing.T) {
	// Tasks 2 and 3 depend on 0, task 4 depends on 2 and 3.
	tasks := pendingTasks(5, models.AgentCoder)
	tasks[2].DependsOn = []int{0}
	tasks[3].DependsOn = []int{0}
	tasks[4].DependsOn = []int{2, 3}

	set, err := Build(tasks, map[int]bool{}, 3)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if !reflect.DeepEqual(set.TaskIndexes, []int{0, 1}) {
		t.Errorf("expected wave {0,1}, got %v", set.TaskIndexes)
	}
	if set.Remaining != 3 {
		t.Errorf("expected 3 remaining, got %d", set.Remaining)
	}
}

func TestPartitionProducesOrderedWaves(t *testing.T) {
	// The scenario: wave 1 = {0,1}, wave 2 = {2,3}, wave 3 = {4}.
	tasks := pendingTasks(5, models.AgentCoder)
	tasks[2].DependsOn = []int{0}
	tasks[3].DependsOn = []int{0}
	tasks[4].DependsOn = []int{2, 3}

	waves, err := Partition(tasks, 3)
	if err != nil {
		t.Fatalf("partition: %v", err)
	}

	want := [][]int{{0, 1}, {2, 3}, {4}}
	if !reflect.DeepEqual(waves, want) {
		t.Errorf("expected waves %v, got %v", want, waves)
	}
}

func TestPartitionDependenciesInEarlierWaves(t *testing.T) {
	tasks := pendingTasks(8, models.AgentCoder)
	tasks[1].DependsOn = []int{0}
	tasks[3].DependsOn = []int{1, 2}
	tasks[5].DependsOn = []int{4}
	tasks[6].DependsOn = []int{3, 5}
	tasks[7].DependsOn = []int{6}

	waves, err := Partition(tasks, 10)
	if err != nil {
		t.Fatalf("partition: %v", err)
	}

	waveOf := make(map[int]int)
	for w, idxs := range waves {
		for _, i := range idxs {
			waveOf[i] = w
		}
	}
	for i := range tasks {
		for _, dep := range tasks[i].DependsOn {
			if waveOf[dep] >= waveOf[i] {
				t.Errorf("task %d (wave %d) depends on %d (wave %d)", i, waveOf[i], dep, waveOf[dep])
			}
		}
	}
}

func TestBuildRespectsAgentCap(t *testing.T) {
	// 7 eligible tasks for one agent with a cap of 3: exactly 3 selected.
	tasks := pendingTasks(7, models.AgentCoder)

	set, err := Build(tasks, map[int]bool{}, 3)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(set.TaskIndexes) != 3 {
		t.Fatalf("expected 3 selected tasks, got %d", len(set.TaskIndexes))
	}
	if !reflect.DeepEqual(set.TaskIndexes, []int{0, 1, 2}) {
		t.Errorf("expected first three tasks to win, got %v", set.TaskIndexes)
	}
	if set.Deferred != 4 {
		t.Errorf("expected 4 deferred, got %d", set.Deferred)
	}
}

func TestBuildCapIsPerAgent(t *testing.T) {
	tasks := pendingTasks(4, models.AgentCoder)
	tasks = append(tasks, models.Task{Index: 4, Agent: models.AgentInfra, Status: models.TaskStatusPending})
	tasks = append(tasks, models.Task{Index: 5, Agent: models.AgentInfra, Status: models.TaskStatusPending})

	set, err := Build(tasks, map[int]bool{}, 3)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if got := len(set.ByAgent[models.AgentCoder]); got != 3 {
		t.Errorf("expected 3 coder tasks, got %d", got)
	}
	if got := len(set.ByAgent[models.AgentInfra]); got != 2 {
		t.Errorf("expected 2 infra tasks, got %d", got)
	}
}

func TestBuildPhaseDone(t *testing.T) {
	tasks := pendingTasks(2, models.AgentCoder)
	tasks[0].Status = models.TaskStatusComplete
	tasks[1].Status = models.TaskStatusComplete

	set, err := Build(tasks, map[int]bool{0: true, 1: true}, 3)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if !set.PhaseDone {
		t.Error("expected phase done")
	}
	if !set.Empty() {
		t.Errorf("expected empty set, got %v", set.TaskIndexes)
	}
}

func TestBuildDeadlock(t *testing.T) {
	// Both tasks depend on each other; only reachable if validation was bypassed.
	tasks := pendingTasks(2, models.AgentCoder)
	tasks[0].DependsOn = []int{1}
	tasks[1].DependsOn = []int{0}

	_, err := Build(tasks, map[int]bool{}, 3)
	if !errors.Is(err, ErrDeadlock) {
		t.Fatalf("expected ErrDeadlock, got %v", err)
	}
}

func TestBuildSkipsAssignedAndFailed(t *testing.T) {
	tasks := pendingTasks(3, models.AgentCoder)
	tasks[0].Status = models.TaskStatusAssigned
	tasks[1].Status = models.TaskStatusFailed

	set, err := Build(tasks, map[int]bool{}, 3)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if !reflect.DeepEqual(set.TaskIndexes, []int{2}) {
		t.Errorf("expected only task 2, got %v", set.TaskIndexes)
	}
}

func TestBuildDefaultCap(t *testing.T) {
	tasks := pendingTasks(5, models.AgentCoder)

	set, err := Build(tasks, map[int]bool{}, 0)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(set.TaskIndexes) != DefaultAgentCap {
		t.Errorf("expected %d tasks with default cap, got %d", DefaultAgentCap, len(set.TaskIndexes))
	}
}
