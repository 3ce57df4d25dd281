package keylock

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyLock_SerializesSameKey(t *testing.T) {
	kl := New()

	const workers = 50
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			kl.Lock("user:1:file:2")
			counter++
			kl.Unlock("user:1:file:2")
		}()
	}
	wg.Wait()

	assert.Equal(t, workers, counter)
}

func TestKeyLock_IndependentKeys(t *testing.T) {
	kl := New()

	kl.Lock("a")
	done := make(chan struct{})
	go func() {
		kl.Lock("b")
		kl.Unlock("b")
		close(done)
	}()
	<-done // lock on "b" must not block behind "a"
	kl.Unlock("a")
}

func TestKeyLock_EntriesReleased(t *testing.T) {
	kl := New()

	kl.Lock("x")
	kl.Unlock("x")

	kl.mu.Lock()
	defer kl.mu.Unlock()
	assert.Empty(t, kl.entries, "lock table should not retain released keys")
}

func TestKeyLock_WithLock(t *testing.T) {
	kl := New()

	ran := false
	err := kl.WithLock("k", func() error {
		ran = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, ran)
}

func TestKeyLock_UnlockUnheldPanics(t *testing.T) {
	kl := New()
	assert.Panics(t, func() { kl.Unlock("never-locked") })
}
