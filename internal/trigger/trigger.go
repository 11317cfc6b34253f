// Package trigger ingests engine triggers dropped as JSON files into the
// project's .neuralaunch/triggers directory. Each file is one trigger; the
// watcher parses it, hands it to the handler, and removes it. Duplicate
// deliveries are expected and harmless: the engine is idempotent.
package trigger

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Action is the operation a trigger requests.
type Action string

const (
	// ActionAdvance asks the engine to perform one lifecycle transition.
	ActionAdvance Action = "advance"
	// ActionRetryWave asks for a fresh wave after a terminal wave failure.
	ActionRetryWave Action = "retry_wave"
	// ActionApprove records plan approval and then advances.
	ActionApprove Action = "approve"
	// ActionCancel marks the project cancelled.
	ActionCancel Action = "cancel"
)

// Valid returns true if the action is a known value.
func (a Action) Valid() bool {
	switch a {
	case ActionAdvance, ActionRetryWave, ActionApprove, ActionCancel:
		return true
	default:
		return false
	}
}

// Trigger is one dropped trigger file's payload.
type Trigger struct {
	// ProjectID is the target project.
	ProjectID string `json:"project_id"`
	// Action is the requested operation.
	Action Action `json:"action"`
	// ApprovedBy names the approver, approve action only.
	ApprovedBy string `json:"approved_by,omitempty"`
}

// Parse decodes and validates one trigger payload.
func Parse(data []byte) (*Trigger, error) {
	var t Trigger
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("decode trigger: %w", err)
	}
	if t.ProjectID == "" {
		return nil, fmt.Errorf("trigger missing project_id")
	}
	if !t.Action.Valid() {
		return nil, fmt.Errorf("unknown trigger action %q", t.Action)
	}
	return &t, nil
}

// Handler processes one trigger. Errors are logged, not retried; the sender
// re-drops the trigger if it wants another attempt.
type Handler func(t *Trigger) error

// TriggersDir returns the drop directory for a project root.
func TriggersDir(projectRoot string) string {
	return filepath.Join(projectRoot, ".neuralaunch", "triggers")
}

// Watcher monitors the triggers directory and dispatches dropped files.
type Watcher struct {
	dir     string
	handler Handler
	logf    func(format string, args ...interface{})

	watcher *fsnotify.Watcher
	done    chan struct{}

	mu   sync.Mutex
	seen map[string]bool
}

// NewWatcher creates a watcher over the project's triggers directory.
// logf may be nil.
func NewWatcher(projectRoot string, handler Handler, logf func(string, ...interface{})) (*Watcher, error) {
	dir := TriggersDir(projectRoot)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create triggers directory: %w", err)
	}
	if logf == nil {
		logf = func(string, ...interface{}) {}
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	w := &Watcher{
		dir:     dir,
		handler: handler,
		logf:    logf,
		watcher: fw,
		done:    make(chan struct{}),
		seen:    make(map[string]bool),
	}
	go w.loop()

	// Pick up triggers dropped before the watch started.
	w.sweep()

	return w, nil
}

func (w *Watcher) loop() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&fsnotify.Create == 0 && event.Op&fsnotify.Write == 0 {
				continue
			}
			w.process(event.Name)
		case <-w.watcher.Errors:
			// Keep watching; the sweep on Close catches anything missed.
		}
	}
}

// sweep processes any trigger files already present in the directory.
func (w *Watcher) sweep() {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		w.process(filepath.Join(w.dir, entry.Name()))
	}
}

// process parses and dispatches one trigger file, then removes it. Files
// still being written parse as invalid and are retried on their next write
// event. Each file is handled at most once per watcher.
func (w *Watcher) process(path string) {
	if !strings.HasSuffix(path, ".json") {
		return
	}

	w.mu.Lock()
	if w.seen[path] {
		w.mu.Unlock()
		return
	}
	w.seen[path] = true
	w.mu.Unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		w.unsee(path)
		return
	}

	t, err := Parse(data)
	if err != nil {
		w.logf("trigger %s: %v", filepath.Base(path), err)
		w.unsee(path)
		return
	}

	if err := w.handler(t); err != nil {
		w.logf("trigger %s (%s %s): %v", filepath.Base(path), t.Action, t.ProjectID, err)
	}
	os.Remove(path)
}

func (w *Watcher) unsee(path string) {
	w.mu.Lock()
	delete(w.seen, path)
	w.mu.Unlock()
}

// Close stops the watcher after a final sweep of the drop directory.
func (w *Watcher) Close() error {
	close(w.done)
	err := w.watcher.Close()
	w.sweep()
	return err
}

// Drop writes a trigger file into the project's drop directory. Used by the
// CLI to hand work to a running watcher.
func Drop(projectRoot string, t *Trigger) (string, error) {
	dir := TriggersDir(projectRoot)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create triggers directory: %w", err)
	}

	data, err := json.Marshal(t)
	if err != nil {
		return "", fmt.Errorf("encode trigger: %w", err)
	}

	name := fmt.Sprintf("%s-%s-%d.json", t.Action, t.ProjectID, time.Now().UnixNano())
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write trigger: %w", err)
	}
	return path, nil
}
