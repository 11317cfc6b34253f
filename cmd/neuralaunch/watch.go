package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mansaraysaheedalpha/neuralaunch-sub006/internal/config"
	"github.com/mansaraysaheedalpha/neuralaunch-sub006/internal/engine"
	"github.com/mansaraysaheedalpha/neuralaunch-sub006/internal/store"
	"github.com/mansaraysaheedalpha/neuralaunch-sub006/internal/trigger"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch for trigger files and run them",
	Long: `Run the trigger ingress: watch .neuralaunch/triggers for dropped JSON
trigger files and feed each one to the engine. External systems (webhooks,
schedulers, humans) drop files like:

  {"project_id": "<id>", "action": "advance"}
  {"project_id": "<id>", "action": "approve", "approved_by": "alice"}
  {"project_id": "<id>", "action": "retry_wave"}
  {"project_id": "<id>", "action": "cancel"}

Duplicate drops are harmless; the engine is idempotent. Ctrl-C stops the
watcher.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	db, root, err := openProjectStore()
	if err != nil {
		return err
	}
	defer db.Close()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	emitter := engine.NewEventEmitter(256)
	e, err := buildEngine(db, root, cfg, emitter)
	if err != nil {
		return err
	}

	logger := engine.NewDebugLoggerForProject(root)
	defer logger.Close()

	go printEvents(emitter)

	handler := func(t *trigger.Trigger) error {
		return handleTrigger(e, db, t)
	}
	w, err := trigger.NewWatcher(root, handler, logger.Log)
	if err != nil {
		return err
	}
	defer w.Close()

	fmt.Printf("Watching %s (Ctrl-C to stop)\n", trigger.TriggersDir(root))

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	fmt.Println("\nStopping watcher.")
	return nil
}

// handleTrigger maps one trigger to engine operations.
func handleTrigger(e *engine.Engine, db *store.DB, t *trigger.Trigger) error {
	ctx := context.Background()

	switch t.Action {
	case trigger.ActionAdvance:
		_, err := e.Advance(ctx, t.ProjectID, false)
		return err

	case trigger.ActionRetryWave:
		_, err := e.Advance(ctx, t.ProjectID, true)
		return err

	case trigger.ActionApprove:
		if err := db.RecordApproval(t.ProjectID, t.ApprovedBy); err != nil {
			return err
		}
		_, err := e.Advance(ctx, t.ProjectID, false)
		return err

	case trigger.ActionCancel:
		p, err := db.GetProject(t.ProjectID)
		if err != nil {
			return err
		}
		if p.Cancelled {
			return nil
		}
		p.Cancelled = true
		p.UpdatedAt = time.Now().UTC()
		return db.UpdateProject(p)

	default:
		return fmt.Errorf("unhandled action %q", t.Action)
	}
}

// printEvents renders engine events as they arrive.
func printEvents(emitter *engine.EventEmitter) {
	for ev := range emitter.Events() {
		ts := ev.Timestamp.Format("15:04:05")
		switch ev.Type {
		case engine.EventTaskFailed, engine.EventWaveFailed:
			color.Red("[%s] %-18s %s", ts, ev.Type, ev.Message)
		case engine.EventWaveCompleted, engine.EventTaskCompleted, engine.EventPhaseAdvanced:
			color.Green("[%s] %-18s %s", ts, ev.Type, ev.Message)
		default:
			fmt.Printf("[%s] %-18s %s\n", ts, ev.Type, ev.Message)
		}
	}
}
