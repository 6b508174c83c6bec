package ratelimit

import (
	"testing"
	"time"
)

func TestAllowUnderLimit(t *testing.T) {
	l := New(5, time.Minute)
	for i := 0; i < 5; i++ {
		if !l.Allow("1.2.3.4") {
			t.Fatalf("request %d rejected under limit", i+1)
		}
	}
}

func TestRejectOverLimit(t *testing.T) {
	l := New(3, time.Minute)
	for i := 0; i < 3; i++ {
		l.Allow("1.2.3.4")
	}
	if l.Allow("1.2.3.4") {
		t.Error("request over limit allowed")
	}
}

func TestKeysIndependent(t *testing.T) {
	l := New(1, time.Minute)
	l.Allow("1.2.3.4")
	if !l.Allow("5.6.7.8") {
		t.Error("second key blocked by first key's usage")
	}
}

func TestReset(t *testing.T) {
	l := New(1, time.Minute)
	l.Allow("1.2.3.4")
	if l.Allow("1.2.3.4") {
		t.Fatal("expected limit reached")
	}
	l.Reset("1.2.3.4")
	if !l.Allow("1.2.3.4") {
		t.Error("request rejected after reset")
	}
}

func TestWindowRollsOver(t *testing.T) {
	l := New(2, 50*time.Millisecond)
	l.Allow("k")
	l.Allow("k")
	if l.Allow("k") {
		t.Fatal("expected limit reached")
	}
	time.Sleep(120 * time.Millisecond)
	if !l.Allow("k") {
		t.Error("request rejected after window passed")
	}
}
