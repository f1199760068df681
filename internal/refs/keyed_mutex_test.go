package refs

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKeyedMutexReleasesEntries(t *testing.T) {
	locks := newKeyedMutex()

	unlockFirst := locks.Lock("pr-1")
	unlockSecond := locks.Lock("pr-2")
	require.Equal(t, 2, locks.size())

	unlockFirst()
	unlockSecond()
	require.Equal(t, 0, locks.size())
}

func TestKeyedMutexExcludesSameKey(t *testing.T) {
	locks := newKeyedMutex()

	var counterMutex sync.Mutex
	active := 0
	maximumActive := 0

	var waitGroup sync.WaitGroup
	for workerIndex := 0; workerIndex < 16; workerIndex++ {
		waitGroup.Add(1)
		go func() {
			defer waitGroup.Done()
			unlock := locks.Lock("pr-3")
			defer unlock()

			counterMutex.Lock()
			active++
			if active > maximumActive {
				maximumActive = active
			}
			counterMutex.Unlock()

			counterMutex.Lock()
			active--
			counterMutex.Unlock()
		}()
	}
	waitGroup.Wait()

	require.Equal(t, 1, maximumActive)
	require.Equal(t, 0, locks.size())
}
