package watcher

import (
	"log/slog"
	"sync"
	"time"
)

const defaultDebounce = 500 * time.Millisecond

type debouncer struct {
	delay    time.Duration
	log      *slog.Logger
	changed  map[string]struct{}
	timer    *time.Timer
	mutex    sync.Mutex
	stopChan chan struct{}
}

func newDebouncer(delay time.Duration, log *slog.Logger) *debouncer {
	return &debouncer{
		delay:    delay,
		log:      log,
		changed:  make(map[string]struct{}),
		stopChan: make(chan struct{}),
	}
}

func (d *debouncer) add(path string, handler ChangeHandler) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.changed[path] = struct{}{}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() {
		d.flush(handler)
	})
}

func (d *debouncer) flush(handler ChangeHandler) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	if len(d.changed) == 0 {
		return
	}
	paths := make([]string, 0, len(d.changed))
	for path := range d.changed {
		paths = append(paths, path)
	}
	d.changed = make(map[string]struct{})
	if err := handler(paths); err != nil {
		d.log.Error("re-analysis failed", "err", err)
	}
}

func (d *debouncer) stop() {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	close(d.stopChan)
}
