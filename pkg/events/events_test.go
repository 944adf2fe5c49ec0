package events

import (
	"testing"
	"time"

	"github.com/cuemby/vortex/pkg/types"
)

func TestIsCritical(t *testing.T) {
	tests := []struct {
		kind Kind
		want bool
	}{
		{KindStarted, false},
		{KindCpuThrottled, false},
		{KindMemoryPressure, true},
		{KindStatsUpdate, false},
		{KindExiting, false},
		{KindError, true},
	}

	for _, tt := range tests {
		e := ContainerEvent{Kind: tt.kind}
		if got := e.IsCritical(); got != tt.want {
			t.Errorf("ContainerEvent{Kind: %s}.IsCritical() = %v, want %v", tt.kind, got, tt.want)
		}
	}
}

func TestNewStartedHasID(t *testing.T) {
	e := NewStarted("c1")
	if e.ID == "" {
		t.Error("NewStarted should assign a non-empty ID")
	}
	if e.ContainerID != "c1" {
		t.Errorf("ContainerID = %q, want c1", e.ContainerID)
	}
	if e.Timestamp.IsZero() {
		t.Error("Timestamp should be set")
	}
}

func TestBrokerPublishSubscribe(t *testing.T) {
	b := NewBroker()
	b.Start()
	defer b.Stop()

	sub := b.Subscribe()
	defer b.Unsubscribe(sub)

	b.Publish(NewStarted("c1"))

	select {
	case event := <-sub:
		if event.Kind != KindStarted {
			t.Errorf("Kind = %s, want started", event.Kind)
		}
	case <-time.After(time.Second):
		t.Fatal("did not receive published event")
	}
}

func TestBrokerDropsNonCriticalWhenFull(t *testing.T) {
	b := NewBroker()
	b.Start()
	defer b.Stop()

	sub := b.Subscribe()
	defer b.Unsubscribe(sub)

	// Fill the subscriber's buffer (capacity 50) without draining it.
	for i := 0; i < 60; i++ {
		b.Publish(NewStatsUpdate("c1", types.ResourceStats{}))
	}

	time.Sleep(50 * time.Millisecond)
	if len(sub) != cap(sub) {
		t.Errorf("expected subscriber buffer to be full (%d), got %d", cap(sub), len(sub))
	}
}

func TestBrokerSubscriberCount(t *testing.T) {
	b := NewBroker()
	b.Start()
	defer b.Stop()

	if b.SubscriberCount() != 0 {
		t.Fatalf("SubscriberCount() = %d, want 0", b.SubscriberCount())
	}

	sub := b.Subscribe()
	if b.SubscriberCount() != 1 {
		t.Errorf("SubscriberCount() = %d, want 1", b.SubscriberCount())
	}

	b.Unsubscribe(sub)
	if b.SubscriberCount() != 0 {
		t.Errorf("SubscriberCount() = %d, want 0 after unsubscribe", b.SubscriberCount())
	}
}
