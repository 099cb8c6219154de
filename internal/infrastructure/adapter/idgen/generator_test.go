package idgen

import (
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratorFormat(t *testing.T) {
	g := NewGenerator()

	for i := 0; i < 1000; i++ {
		id := g.Next()
		require.Len(t, id, Digits)
		assert.NotEqual(t, byte('0'), id[0])

		_, err := strconv.ParseInt(id, 10, 64)
		require.NoError(t, err, "id %s must fit int64", id)
	}
}

func TestGeneratorUniqueness(t *testing.T) {
	g := NewGenerator()
	seen := make(map[string]struct{}, 10000)

	for i := 0; i < 10000; i++ {
		seen[g.Next()] = struct{}{}
	}

	assert.Len(t, seen, 10000)
}

func TestGeneratorConcurrentUniqueness(t *testing.T) {
	g := NewGenerator()
	const workers, perWorker = 8, 1000

	var mu sync.Mutex
	var wg sync.WaitGroup
	seen := make(map[string]struct{}, workers*perWorker)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := make([]string, 0, perWorker)
			for i := 0; i < perWorker; i++ {
				local = append(local, g.Next())
			}
			mu.Lock()
			for _, id := range local {
				seen[id] = struct{}{}
			}
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, seen, workers*perWorker)
}
