package packager

import (
	"context"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// TemplateWatcher observes the state folder and invalidates the
// packager's cached template checks when templates change on disk.
// Events are debounced so an editor save burst causes one invalidation.
type TemplateWatcher struct {
	packager *Packager
	fsw      *fsnotify.Watcher
	window   time.Duration

	mu     sync.Mutex
	timer  *time.Timer
	cancel context.CancelFunc
}

func NewTemplateWatcher(p *Packager, window time.Duration) (*TemplateWatcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &TemplateWatcher{
		packager: p,
		fsw:      fsw,
		window:   window,
	}, nil
}

func (w *TemplateWatcher) Start(ctx context.Context) error {
	if err := w.fsw.Add(w.packager.StateDir()); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	go w.handleEvents(ctx)

	log.Info("template watcher started", "path", w.packager.StateDir())
	return nil
}

func (w *TemplateWatcher) Close() error {
	if w.cancel != nil {
		w.cancel()
	}
	return w.fsw.Close()
}

func (w *TemplateWatcher) handleEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			log.Debug("template event", "path", event.Name, "op", event.Op.String())
			w.scheduleFlush()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			log.Warn("template watcher error", "error", err)
		}
	}
}

func (w *TemplateWatcher) scheduleFlush() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.window, func() {
		log.Info("templates changed, dropping cached checks")
		w.packager.InvalidateTemplates()
	})
}
