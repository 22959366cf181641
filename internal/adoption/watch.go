package adoption

import (
	"context"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"sessiondeck/internal/system"
)

const watchDebounce = 100 * time.Millisecond

// Watch signals on the returned channel, debounced, whenever a marker file
// in dir is created, written or removed. The channel closes when ctx ends.
func Watch(ctx context.Context, dir, ext string) (<-chan struct{}, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return nil, err
	}
	out := make(chan struct{}, 1)
	go func() {
		defer close(out)
		defer w.Close()

		var timer *time.Timer
		var fire <-chan time.Time
		for {
			select {
			case <-ctx.Done():
				if timer != nil {
					timer.Stop()
				}
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if !strings.HasSuffix(ev.Name, ext) {
					continue
				}
				if timer != nil {
					timer.Stop()
				}
				timer = time.NewTimer(watchDebounce)
				fire = timer.C
			case <-fire:
				fire = nil
				select {
				case out <- struct{}{}:
				default:
					// a signal is already pending
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				system.Logger.Debug("session-state watcher", "err", err)
			}
		}
	}()
	return out, nil
}
