package guard

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestMemoryDeduplicator(t *testing.T) {
	d := NewMemoryDeduplicator(time.Minute)
	now := time.Date(2026, 10, 12, 9, 0, 0, 0, time.UTC)
	d.now = func() time.Time { return now }

	ctx := context.Background()
	if ok, _ := d.Claim(ctx, "SM1"); !ok {
		t.Fatal("first claim should succeed")
	}
	if ok, _ := d.Claim(ctx, "SM1"); ok {
		t.Fatal("second claim within ttl should fail")
	}
	if ok, _ := d.Claim(ctx, "SM2"); !ok {
		t.Fatal("other key should succeed")
	}

	now = now.Add(2 * time.Minute)
	if ok, _ := d.Claim(ctx, "SM1"); !ok {
		t.Fatal("claim after ttl should succeed")
	}
}

func TestMemoryDeduplicatorConcurrentClaims(t *testing.T) {
	d := NewMemoryDeduplicator(time.Minute)
	var wins int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := d.Claim(context.Background(), "wamid.X"); ok {
				atomic.AddInt32(&wins, 1)
			}
		}()
	}
	wg.Wait()
	if wins != 1 {
		t.Fatalf("expected exactly one winner, got %d", wins)
	}
}

func TestKeyedMutexSerialisesSameKey(t *testing.T) {
	km := NewKeyedMutex()
	var active, maxActive int32
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := km.Lock("bot:+62811")
			defer unlock()

			n := atomic.AddInt32(&active, 1)
			for {
				m := atomic.LoadInt32(&maxActive)
				if n <= m || atomic.CompareAndSwapInt32(&maxActive, m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&active, -1)
		}()
	}
	wg.Wait()

	if maxActive != 1 {
		t.Fatalf("expected at most one holder, saw %d", maxActive)
	}
	if km.Len() != 0 {
		t.Fatalf("expected lock table to be empty, got %d", km.Len())
	}
}

func TestKeyedMutexDifferentKeysDoNotBlock(t *testing.T) {
	km := NewKeyedMutex()
	unlockA := km.Lock("a")
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlock := km.Lock("b")
		unlock()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on a different key blocked")
	}
}
