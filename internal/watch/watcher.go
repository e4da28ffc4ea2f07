// Package watch turns a burst-prone filesystem notification stream into a
// bounded refresh signal. Host writers append transcripts in bursts; events
// are coalesced after a quiet period so consumers re-scan at most once per
// burst, and nothing about event granularity leaks through.
package watch

import (
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher watches a directory tree of transcripts and delivers one signal on
// C per quiet period, no matter how many underlying events arrived.
type Watcher struct {
	C <-chan struct{}

	fsw    *fsnotify.Watcher
	events chan struct{}
	done   chan struct{}
}

// New starts watching dir. quiet is the debounce window; bursts of writes
// separated by less than quiet produce a single signal.
func New(dir string, quiet time.Duration) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %q: %w", dir, err)
	}

	events := make(chan struct{}, 1)
	w := &Watcher{
		C:      events,
		fsw:    fsw,
		events: events,
		done:   make(chan struct{}),
	}
	go w.run(quiet)
	return w, nil
}

func (w *Watcher) run(quiet time.Duration) {
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return
		case _, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if timer == nil {
				timer = time.NewTimer(quiet)
				fire = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(quiet)
			}
		case _, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			// Watch errors are not actionable here; a later event or a
			// manual refresh recovers.
		case <-fire:
			timer = nil
			fire = nil
			select {
			case w.events <- struct{}{}:
			default:
			}
		}
	}
}

// Close releases the filesystem subscription. C is not closed; pending
// receives simply never fire again.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fsw.Close()
}
