package stats

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	r := NewRegistry("openlibrary", "gutenberg")
	r.now = func() time.Time { return at }

	r.RecordSuccess("gutenberg", 120*time.Millisecond)
	r.RecordFailure("gutenberg", 2*time.Second, errors.New("timeout"))
	r.RecordSuccess("googlebooks", time.Second)

	snap := r.Snapshot()
	require.Len(t, snap, 3)
	assert.Equal(t, "googlebooks", snap[0].Name)
	assert.Equal(t, "gutenberg", snap[1].Name)
	assert.Equal(t, "openlibrary", snap[2].Name)

	g := snap[1]
	assert.Equal(t, int64(2), g.Requests)
	assert.Equal(t, int64(1), g.Failures)
	assert.Equal(t, "timeout", g.LastError)
	assert.Equal(t, at, g.LastFailure)
	assert.Equal(t, at, g.LastSuccess)
	assert.Equal(t, "2s", g.LastDuration)

	assert.Equal(t, int64(0), snap[2].Requests)
}

func TestRegistry_Concurrent(t *testing.T) {
	r := NewRegistry("openlibrary")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.RecordSuccess("openlibrary", time.Millisecond)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(50), r.Snapshot()[0].Requests)
}
