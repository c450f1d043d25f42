package watcher

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterDropsIgnoredPaths(t *testing.T) {
	in := make(chan Change, 4)
	out := Filter(in, []string{".git", "*.tmp"})

	in <- Change{Path: "/p/team/doc.md"}
	in <- Change{Path: "/p/.git/index"}
	in <- Change{Path: "/p/team/draft.tmp"}
	in <- Change{Path: "/p/team/plan.md"}
	close(in)

	var kept []string
	for c := range out {
		kept = append(kept, c.Path)
	}

	assert.Equal(t, []string{"/p/team/doc.md", "/p/team/plan.md"}, kept)
}

func TestDebounceCoalescesBursts(t *testing.T) {
	in := make(chan Change, 8)
	out := Debounce(in, 20*time.Millisecond)

	for i := 0; i < 5; i++ {
		in <- Change{Path: "/p/team/doc.md", At: time.Now()}
	}
	in <- Change{Path: "/p/team/plan.md", At: time.Now()}
	close(in)

	seen := map[string]int{}
	timeout := time.After(time.Second)
	for len(seen) < 2 {
		select {
		case c, ok := <-out:
			if !ok {
				break
			}
			seen[c.Path]++
		case <-timeout:
			t.Fatal("timed out waiting for debounced changes")
		}
	}

	require.Equal(t, 1, seen["/p/team/doc.md"])
	require.Equal(t, 1, seen["/p/team/plan.md"])
}

func TestDebounceEmitsEveryPathUnderLoad(t *testing.T) {
	const paths = 50

	in := make(chan Change, 16)
	out := Debounce(in, 5*time.Millisecond)

	go func() {
		defer close(in)
		for i := 0; i < 500; i++ {
			in <- Change{Path: "/p/team/" + string(rune('a'+i%paths)) + ".md", At: time.Now()}
		}
	}()

	seen := map[string]int{}
	done := time.After(5 * time.Second)
	for {
		select {
		case c, ok := <-out:
			if !ok {
				require.Len(t, seen, paths)
				return
			}
			seen[c.Path]++
		case <-done:
			t.Fatal("timed out draining debounced changes")
		}
	}
}

func TestDebounceFlushesPendingOnClose(t *testing.T) {
	in := make(chan Change, 4)
	out := Debounce(in, time.Hour)

	in <- Change{Path: "/p/team/doc.md", At: time.Now()}
	in <- Change{Path: "/p/team/plan.md", At: time.Now()}
	close(in)

	var flushed []string
	for c := range out {
		flushed = append(flushed, c.Path)
	}

	assert.ElementsMatch(t, []string{"/p/team/doc.md", "/p/team/plan.md"}, flushed)
}
