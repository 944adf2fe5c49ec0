package events

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cuemby/vortex/pkg/metrics"
	"github.com/cuemby/vortex/pkg/types"
)

// Kind identifies the lifecycle stage or condition a ContainerEvent
// reports.
type Kind string

const (
	KindStarted        Kind = "started"
	KindCpuThrottled   Kind = "cpu_throttled"
	KindMemoryPressure Kind = "memory_pressure"
	KindStatsUpdate    Kind = "stats_update"
	KindExiting        Kind = "exiting"
	KindError          Kind = "error"
)

// ContainerEvent is a single lifecycle notification for a container.
// Only the fields relevant to Kind are populated; this flattens the
// original tagged-union shape into one struct, which is the idiomatic
// Go rendering of a sum type.
type ContainerEvent struct {
	ID          string
	Kind        Kind
	ContainerID string
	Timestamp   time.Time

	// CpuThrottled
	ThrottledFor time.Duration

	// MemoryPressure
	MemoryCurrent types.MemorySize
	MemoryLimit   types.MemorySize
	Percentage    float64

	// StatsUpdate
	Stats types.ResourceStats

	// Exiting
	ExitCode int

	// Error
	Message string
}

// IsCritical reports whether the event is one the broker delivers with
// a short blocking send instead of dropping on a full subscriber buffer.
func (e ContainerEvent) IsCritical() bool {
	return e.Kind == KindMemoryPressure || e.Kind == KindError
}

func newEvent(containerID string, kind Kind) ContainerEvent {
	return ContainerEvent{
		ID:          uuid.New().String(),
		Kind:        kind,
		ContainerID: containerID,
		Timestamp:   time.Now(),
	}
}

// NewStarted reports that monitoring of a container began.
func NewStarted(containerID string) ContainerEvent {
	return newEvent(containerID, KindStarted)
}

// NewCpuThrottled reports that cumulative CPU throttling grew by duration
// since the last sample.
func NewCpuThrottled(containerID string, duration time.Duration) ContainerEvent {
	e := newEvent(containerID, KindCpuThrottled)
	e.ThrottledFor = duration
	return e
}

// NewMemoryPressure reports that memory usage crossed the configured
// threshold of limit.
func NewMemoryPressure(containerID string, current, limit types.MemorySize, percentage float64) ContainerEvent {
	e := newEvent(containerID, KindMemoryPressure)
	e.MemoryCurrent = current
	e.MemoryLimit = limit
	e.Percentage = percentage
	return e
}

// NewStatsUpdate reports a periodic resource usage snapshot.
func NewStatsUpdate(containerID string, stats types.ResourceStats) ContainerEvent {
	e := newEvent(containerID, KindStatsUpdate)
	e.Stats = stats
	return e
}

// NewExiting reports that the container's command exited with exitCode.
func NewExiting(containerID string, exitCode int) ContainerEvent {
	e := newEvent(containerID, KindExiting)
	e.ExitCode = exitCode
	return e
}

// NewError reports a monitor failure, such as a stats read error.
func NewError(containerID string, message string) ContainerEvent {
	e := newEvent(containerID, KindError)
	e.Message = message
	return e
}

// Subscriber is a channel that receives events
type Subscriber chan ContainerEvent

// criticalSendTimeout bounds the blocking send given to critical events
// so one stuck subscriber can never wedge the broadcast loop.
const criticalSendTimeout = 50 * time.Millisecond

// Broker manages event subscriptions and distribution
type Broker struct {
	subscribers map[Subscriber]bool
	mu          sync.RWMutex
	eventCh     chan ContainerEvent
	stopCh      chan struct{}
}

// NewBroker creates a new event broker
func NewBroker() *Broker {
	return &Broker{
		subscribers: make(map[Subscriber]bool),
		eventCh:     make(chan ContainerEvent, 100), // Buffer up to 100 events
		stopCh:      make(chan struct{}),
	}
}

// Start begins the broker's event distribution loop
func (b *Broker) Start() {
	go b.run()
}

// Stop stops the broker
func (b *Broker) Stop() {
	close(b.stopCh)
}

// Subscribe creates a new subscription and returns a channel
func (b *Broker) Subscribe() Subscriber {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub := make(Subscriber, 50) // Buffer per subscriber
	b.subscribers[sub] = true
	return sub
}

// Unsubscribe removes a subscription
func (b *Broker) Unsubscribe(sub Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.subscribers, sub)
	close(sub)
}

// Publish publishes an event to all subscribers
func (b *Broker) Publish(event ContainerEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	select {
	case b.eventCh <- event:
	case <-b.stopCh:
	}
}

func (b *Broker) run() {
	for {
		select {
		case event := <-b.eventCh:
			b.broadcast(event)
		case <-b.stopCh:
			return
		}
	}
}

func (b *Broker) broadcast(event ContainerEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for sub := range b.subscribers {
		if event.IsCritical() {
			select {
			case sub <- event:
			case <-time.After(criticalSendTimeout):
				// Subscriber still stuck past the grace window; skip
				// rather than wedge the whole broadcast loop.
				metrics.EventsDroppedTotal.WithLabelValues(string(event.Kind)).Inc()
			}
			continue
		}

		select {
		case sub <- event:
		default:
			// Subscriber buffer full, skip
			metrics.EventsDroppedTotal.WithLabelValues(string(event.Kind)).Inc()
		}
	}
}

// SubscriberCount returns the number of active subscribers
func (b *Broker) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}
