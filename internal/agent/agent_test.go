package agent

import (
	"context"
	"testing"
	"time"

	"github.com/mansaraysaheedalpha/neuralaunch-sub006/pkg/models"
)

// stubRunner is a Runner whose behavior is scripted per test.
type stubRunner struct {
	kind  models.AgentKind
	delay time.Duration
	res   Result
	err   error
}

func (s *stubRunner) Kind() models.AgentKind { return s.kind }

func (s *stubRunner) Execute(ctx context.Context, req Request) (Result, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return Result{}, ctx.Err()
		}
	}
	return s.res, s.err
}

func TestRegistryRegisterAndGet(t *testing.T) {
	reg := NewRegistry()
	reg.Register(&stubRunner{kind: models.AgentCoder, res: Result{Success: true}})

	runner, err := reg.Get(models.AgentCoder)
	if err != nil {
		t.Fatalf("get runner: %v", err)
	}
	if runner.Kind() != models.AgentCoder {
		t.Errorf("expected coder, got %s", runner.Kind())
	}
}

func TestRegistryGetMissing(t *testing.T) {
	reg := NewRegistry()
	if _, err := reg.Get(models.AgentDeploy); err == nil {
		t.Fatal("expected error for unregistered kind")
	}
}

func TestRegistryReplace(t *testing.T) {
	reg := NewRegistry()
	reg.Register(&stubRunner{kind: models.AgentCoder, res: Result{Output: "first"}})
	reg.Register(&stubRunner{kind: models.AgentCoder, res: Result{Output: "second"}})

	runner, err := reg.Get(models.AgentCoder)
	if err != nil {
		t.Fatalf("get runner: %v", err)
	}
	res, _ := runner.Execute(context.Background(), Request{})
	if res.Output != "second" {
		t.Errorf("expected replacement runner, got %q", res.Output)
	}
}

func TestExecuteWithTimeoutCompletes(t *testing.T) {
	runner := &stubRunner{kind: models.AgentCoder, res: Result{Success: true, Output: "ok"}}

	res, err := ExecuteWithTimeout(context.Background(), runner, Request{}, time.Second)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !res.Success || res.Output != "ok" {
		t.Errorf("unexpected result: %+v", res)
	}
}

func TestExecuteWithTimeoutExpires(t *testing.T) {
	runner := &stubRunner{kind: models.AgentCoder, delay: 200 * time.Millisecond, res: Result{Success: true}}

	res, err := ExecuteWithTimeout(context.Background(), runner, Request{}, 20*time.Millisecond)
	if err != nil {
		t.Fatalf("timeout should resolve as a failed result, got error: %v", err)
	}
	if res.Success {
		t.Error("expected failure")
	}
	if res.ErrorKind != models.ErrorKindTimeout {
		t.Errorf("expected timeout error kind, got %q", res.ErrorKind)
	}
}

func TestExecuteWithTimeoutZeroMeansNoDeadline(t *testing.T) {
	runner := &stubRunner{kind: models.AgentCoder, delay: 30 * time.Millisecond, res: Result{Success: true}}

	res, err := ExecuteWithTimeout(context.Background(), runner, Request{}, 0)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !res.Success {
		t.Error("expected success without deadline")
	}
}
