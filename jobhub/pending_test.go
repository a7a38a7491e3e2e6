package jobhub

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPendingRequests(t *testing.T) {
	p := NewPendingRequests()

	assert.False(t, p.Has("u1"))
	assert.True(t, p.TryAcquire("u1"))
	assert.True(t, p.Has("u1"))
	assert.False(t, p.TryAcquire("u1"))
	assert.Equal(t, 1, p.Len())

	p.Release("u1")
	assert.False(t, p.Has("u1"))
	assert.Equal(t, 0, p.Len())

	// release is idempotent
	p.Release("u1")
	assert.Equal(t, 0, p.Len())

	assert.True(t, p.TryAcquire("u1"))
}

func TestPendingRequestsConcurrentAcquire(t *testing.T) {
	p := NewPendingRequests()

	const attempts = 50
	acquired := make(chan bool, attempts)

	wg := &sync.WaitGroup{}
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			acquired <- p.TryAcquire("u1")
		}()
	}
	wg.Wait()
	close(acquired)

	wins := 0
	for ok := range acquired {
		if ok {
			wins++
		}
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, 1, p.Len())
}
