package config

import (
	"context"
	"os"
	"time"
)

// Watcher polls file modification times and calls onChange when a file is
// rewritten. Missing files are skipped until they appear.
type Watcher struct {
	Paths    []string
	Interval time.Duration

	onChange  func(string)
	lastMTime map[string]time.Time
}

// NewWatcher creates a watcher for the given paths.
func NewWatcher(paths []string, interval time.Duration, onChange func(string)) *Watcher {
	return &Watcher{
		Paths:     paths,
		Interval:  interval,
		onChange:  onChange,
		lastMTime: make(map[string]time.Time),
	}
}

// Run polls until ctx is done.
func (w *Watcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()
	w.scan(true)
	for {
		select {
		case <-ticker.C:
			w.scan(false)
		case <-ctx.Done():
			return
		}
	}
}

// scan records mtimes and reports files changed since the last scan. The
// priming pass only records.
func (w *Watcher) scan(prime bool) {
	for _, p := range w.Paths {
		fi, err := os.Stat(p)
		if err != nil {
			continue
		}
		mt := fi.ModTime()
		last, ok := w.lastMTime[p]
		w.lastMTime[p] = mt
		if !ok || prime {
			continue
		}
		if mt.After(last) && w.onChange != nil {
			w.onChange(p)
		}
	}
}
