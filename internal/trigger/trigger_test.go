package trigger

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestParseValidTrigger(t *testing.T) {
	tr, err := Parse([]byte(`{"project_id":"p1","action":"advance"}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if tr.ProjectID != "p1" || tr.Action != ActionAdvance {
		t.Errorf("trigger = %+v", tr)
	}
}

func TestParseRejectsBadPayloads(t *testing.T) {
	cases := []string{
		`not json`,
		`{"action":"advance"}`,
		`{"project_id":"p1","action":"launch_missiles"}`,
		`{"project_id":"p1"}`,
	}
	for _, c := range cases {
		if _, err := Parse([]byte(c)); err == nil {
			t.Errorf("Parse(%q) accepted invalid trigger", c)
		}
	}
}

func TestWatcherDispatchesDroppedTrigger(t *testing.T) {
	root := t.TempDir()

	received := make(chan *Trigger, 10)
	w, err := NewWatcher(root, func(tr *Trigger) error {
		received <- tr
		return nil
	}, nil)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()

	path, err := Drop(root, &Trigger{ProjectID: "p1", Action: ActionApprove, ApprovedBy: "tester"})
	if err != nil {
		t.Fatalf("Drop: %v", err)
	}

	select {
	case tr := <-received:
		if tr.ProjectID != "p1" || tr.Action != ActionApprove || tr.ApprovedBy != "tester" {
			t.Errorf("trigger = %+v", tr)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("trigger never dispatched")
	}

	// The handled file is removed.
	deadline := time.Now().Add(2 * time.Second)
	for {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("trigger file not removed after handling")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestWatcherSweepsPreexistingTriggers(t *testing.T) {
	root := t.TempDir()
	if _, err := Drop(root, &Trigger{ProjectID: "p2", Action: ActionAdvance}); err != nil {
		t.Fatalf("Drop: %v", err)
	}

	received := make(chan *Trigger, 10)
	w, err := NewWatcher(root, func(tr *Trigger) error {
		received <- tr
		return nil
	}, nil)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()

	select {
	case tr := <-received:
		if tr.ProjectID != "p2" {
			t.Errorf("trigger = %+v", tr)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("preexisting trigger never dispatched")
	}
}

func TestWatcherIgnoresNonJSONAndInvalidFiles(t *testing.T) {
	root := t.TempDir()

	var mu sync.Mutex
	var count int
	w, err := NewWatcher(root, func(*Trigger) error {
		mu.Lock()
		count++
		mu.Unlock()
		return nil
	}, nil)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()

	dir := TriggersDir(root)
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hi"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "bad.json"), []byte("{"), 0644); err != nil {
		t.Fatal(err)
	}

	time.Sleep(300 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	if count != 0 {
		t.Errorf("handler invoked %d times for garbage files", count)
	}
}
