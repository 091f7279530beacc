package service

import (
	"sync"
	"testing"
)

func TestKeyedMutexSerializesPerKey(t *testing.T) {
	km := newKeyedMutex()

	const workers = 16
	counter := 0

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			unlock := km.Lock("user|2026-09-14")
			counter++
			unlock()
		}()
	}
	wg.Wait()

	if counter != workers {
		t.Errorf("counter = %d, want %d", counter, workers)
	}
	if len(km.entries) != 0 {
		t.Errorf("%d entries left after all unlocks, want 0", len(km.entries))
	}
}

func TestKeyedMutexIndependentKeys(t *testing.T) {
	km := newKeyedMutex()

	unlockA := km.Lock("a|2026-09-14")
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlockB := km.Lock("b|2026-09-14")
		unlockB()
		close(done)
	}()

	<-done // would deadlock if keys shared one mutex
}

func TestAdvisoryLockKeyIsStable(t *testing.T) {
	a := advisoryLockKey("user|2026-09-14")
	b := advisoryLockKey("user|2026-09-14")
	if a != b {
		t.Errorf("same key hashed to %d and %d", a, b)
	}
	if advisoryLockKey("user|2026-09-15") == a {
		t.Error("different keys produced the same lock id")
	}
}
