package project

import (
	"context"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/scopemux/scopemux/internal/logr"
)

// Watcher drives an optional, externally-triggered re-index loop on top of
// a Project (SPEC_FULL.md §2.11). Each debounced fire is a fresh, serial
// ParseAllFiles + ResolveAll pass; it introduces no concurrency within a
// single project's pass, only a trigger external to the engine call graph.
type Watcher struct {
	project *Project
	fsw     *fsnotify.Watcher
	done    chan struct{}
}

// WatchDirs starts watching dirs for filesystem changes, debounced per
// Config.WatchDebounce, re-running ParseAllFiles/ResolveAll on settle. The
// returned Watcher must be stopped with Close.
func WatchDirs(ctx context.Context, p *Project, dirs []string, onReindex func(Stats)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	for _, d := range dirs {
		if err := fsw.Add(p.normalizePath(d)); err != nil {
			logr.Warnf("watch: could not watch %s: %v", d, err)
		}
	}

	w := &Watcher{project: p, fsw: fsw, done: make(chan struct{})}
	go w.loop(ctx, onReindex)
	return w, nil
}

func (w *Watcher) loop(ctx context.Context, onReindex func(Stats)) {
	debounce := w.project.Config.watchDebounce()
	var timer *time.Timer
	var timerC <-chan time.Time

	reset := func() {
		if timer == nil {
			timer = time.NewTimer(debounce)
		} else {
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(debounce)
		}
		timerC = timer.C
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case _, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			reset()
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			logr.Warnf("watch: %v", err)
		case <-timerC:
			if err := w.project.ParseAllFiles(ctx); err != nil {
				logr.Warnf("watch: reindex failed: %v", err)
				continue
			}
			w.project.ResolveAll()
			if onReindex != nil {
				onReindex(w.project.GetStats())
			}
		}
	}
}

// Close stops the watcher and releases its underlying fsnotify handle.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fsw.Close()
}
