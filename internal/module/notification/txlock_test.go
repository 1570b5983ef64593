package notification

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLockerSerializesSameKey(t *testing.T) {
	locker := NewMemoryLocker()

	var mu sync.Mutex
	inCritical := 0
	maxInCritical := 0

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := locker.Acquire(context.Background(), "tx1")
			require.NoError(t, err)
			defer release()

			mu.Lock()
			inCritical++
			if inCritical > maxInCritical {
				maxInCritical = inCritical
			}
			mu.Unlock()

			mu.Lock()
			inCritical--
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxInCritical)
}

func TestMemoryLockerIndependentKeys(t *testing.T) {
	locker := NewMemoryLocker()

	releaseA, err := locker.Acquire(context.Background(), "tx-a")
	require.NoError(t, err)
	defer releaseA()

	// A held lease on one key must not block another key.
	done := make(chan struct{})
	go func() {
		releaseB, err := locker.Acquire(context.Background(), "tx-b")
		assert.NoError(t, err)
		releaseB()
		close(done)
	}()

	<-done
}

func TestMemoryLockerReacquireAfterRelease(t *testing.T) {
	locker := NewMemoryLocker()

	release, err := locker.Acquire(context.Background(), "tx1")
	require.NoError(t, err)
	release()

	release, err = locker.Acquire(context.Background(), "tx1")
	require.NoError(t, err)
	release()
}
