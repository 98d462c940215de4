// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"testing"
	"time"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func TestFakeAfter(t *testing.T) {
	t.Parallel()
	fake := Fake(epoch)

	channel := fake.After(5 * time.Second)
	fake.Advance(4 * time.Second)
	select {
	case <-channel:
		t.Fatal("After fired early")
	default:
	}

	fake.Advance(time.Second)
	select {
	case fired := <-channel:
		if !fired.Equal(epoch.Add(5 * time.Second)) {
			t.Errorf("fired at %v", fired)
		}
	default:
		t.Fatal("After did not fire at its deadline")
	}
	if fake.PendingCount() != 0 {
		t.Errorf("PendingCount = %d after firing, want 0", fake.PendingCount())
	}
}

func TestFakeTicker(t *testing.T) {
	t.Parallel()
	fake := Fake(epoch)

	ticker := fake.NewTicker(time.Second)
	for tick := 1; tick <= 3; tick++ {
		fake.Advance(time.Second)
		select {
		case <-ticker.C:
		default:
			t.Fatalf("tick %d missing", tick)
		}
	}

	ticker.Stop()
	fake.Advance(time.Second)
	select {
	case <-ticker.C:
		t.Fatal("stopped ticker fired")
	default:
	}
}

func TestFakeWaitForTimers(t *testing.T) {
	t.Parallel()
	fake := Fake(epoch)

	registered := make(chan struct{})
	go func() {
		ticker := fake.NewTicker(time.Minute)
		defer ticker.Stop()
		close(registered)
		<-ticker.C
	}()

	fake.WaitForTimers(1)
	<-registered
	if fake.PendingCount() != 1 {
		t.Errorf("PendingCount = %d, want 1", fake.PendingCount())
	}
	fake.Advance(time.Minute)
}
