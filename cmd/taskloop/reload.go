package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/tailored-agentic-units/taskloop/kernel"
	"github.com/tailored-agentic-units/taskloop/observability"
	"github.com/tailored-agentic-units/taskloop/tools"
	"github.com/tailored-agentic-units/taskloop/tools/builtin"
)

const (
	EventReload      observability.EventType = "cli.reload"
	EventReloadError observability.EventType = "cli.reload.error"

	reloadDebounce = 200 * time.Millisecond
)

// reloader rebuilds the enabled capability set from the config file. The
// kernel picks the new set up on its next turn.
type reloader struct {
	path     string
	registry *tools.Registry
	ws       *builtin.Workspace
	observer observability.Observer
}

func newReloader(path string, k *kernel.Kernel, observer observability.Observer) (*reloader, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	return &reloader{path: abs, registry: k.Tools(), ws: k.Workspace(), observer: observer}, nil
}

func (r *reloader) reload(ctx context.Context) {
	err := r.apply()
	event := observability.Event{
		Type:      EventReload,
		Level:     observability.LevelInfo,
		Timestamp: time.Now(),
		Source:    "cli.reloader",
		Data:      map[string]any{"config": r.path, "capabilities": r.registry.Len()},
	}
	if err != nil {
		event.Type = EventReloadError
		event.Level = observability.LevelWarning
		event.Data["error"] = err.Error()
	}
	r.observer.OnEvent(ctx, event)
}

func (r *reloader) apply() error {
	cfg, err := kernel.LoadConfig(r.path)
	if err != nil {
		return err
	}
	caps, err := builtin.Named(r.ws, cfg.Capabilities.Enabled...)
	if err != nil {
		return fmt.Errorf("failed to load capabilities: %w", err)
	}
	return r.registry.Reload(caps...)
}

// watch reloads on SIGHUP and whenever the config file is written. The
// parent directory is watched so editors that replace the file on save are
// still seen. Watcher setup failures leave SIGHUP as the only trigger.
func (r *reloader) watch(ctx context.Context, hup <-chan os.Signal) error {
	var events <-chan fsnotify.Event
	var errs <-chan error

	w, err := fsnotify.NewWatcher()
	if err == nil {
		defer w.Close()
		err = w.Add(filepath.Dir(r.path))
	}
	if err != nil {
		r.observer.OnEvent(ctx, observability.Event{
			Type:      EventReloadError,
			Level:     observability.LevelWarning,
			Timestamp: time.Now(),
			Source:    "cli.reloader",
			Data:      map[string]any{"config": r.path, "error": err.Error()},
		})
	} else {
		events, errs = w.Events, w.Errors
	}

	debounce := time.NewTimer(reloadDebounce)
	debounce.Stop()
	defer debounce.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-hup:
			r.reload(ctx)
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if filepath.Clean(ev.Name) != r.path || !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			debounce.Reset(reloadDebounce)
		case <-debounce.C:
			r.reload(ctx)
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			r.observer.OnEvent(ctx, observability.Event{
				Type:      EventReloadError,
				Level:     observability.LevelWarning,
				Timestamp: time.Now(),
				Source:    "cli.reloader",
				Data:      map[string]any{"config": r.path, "error": err.Error()},
			})
		}
	}
}
