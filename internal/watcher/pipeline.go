package watcher

import (
	"path/filepath"
	"strings"
	"time"
)

// Filter drops changes whose path matches an ignore pattern. Patterns match
// any path segment, either exactly or as a glob.
func Filter(inCh <-chan Change, ignoreList []string) <-chan Change {
	outCh := make(chan Change, cap(inCh))

	go func() {
		defer close(outCh)

		for change := range inCh {
			if !ignored(change.Path, ignoreList) {
				outCh <- change
			}
		}
	}()

	return outCh
}

func ignored(path string, ignoreList []string) bool {
	segments := strings.Split(filepath.ToSlash(path), "/")

	for _, pattern := range ignoreList {
		for _, segment := range segments {
			if segment == pattern {
				return true
			}
			if ok, _ := filepath.Match(pattern, segment); ok {
				return true
			}
		}
	}

	return false
}

// Debounce coalesces change bursts per path, emitting only after the path
// has been quiet for delay. A single goroutine owns all state, so emission
// needs no locking and nothing can fire after the output channel closes.
func Debounce(inCh <-chan Change, delay time.Duration) <-chan Change {
	outCh := make(chan Change, cap(inCh))

	go func() {
		defer close(outCh)

		pending := make(map[string]Change)
		due := make(map[string]time.Time)

		timer := time.NewTimer(delay)
		if !timer.Stop() {
			<-timer.C
		}
		defer timer.Stop()

		flush := func(now time.Time) {
			for path, at := range due {
				if at.After(now) {
					continue
				}
				outCh <- pending[path]
				delete(pending, path)
				delete(due, path)
			}
		}

		rearm := func() {
			var next time.Time
			for _, at := range due {
				if next.IsZero() || at.Before(next) {
					next = at
				}
			}
			if !next.IsZero() {
				timer.Reset(time.Until(next))
			}
		}

		for {
			select {
			case change, ok := <-inCh:
				if !ok {
					for path := range pending {
						outCh <- pending[path]
					}
					return
				}

				pending[change.Path] = change
				due[change.Path] = time.Now().Add(delay)
				rearm()

			case now := <-timer.C:
				flush(now)
				rearm()
			}
		}
	}()

	return outCh
}
