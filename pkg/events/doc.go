/*
Package events provides an in-memory event bus for container lifecycle
notifications.

The events package implements a lightweight broadcast bus so the
resource monitor, runner, and CLI can observe a
container's lifecycle without polling. It is topic-agnostic: every
subscriber receives every event and filters locally by Kind.

# Architecture

	┌──────────────── EVENT BROKER ────────────────────┐
	│                                                    │
	│  Publisher → Event Channel (buffer: 100)          │
	│       ↓                                            │
	│  Broadcast Loop                                    │
	│       ↓                                            │
	│  Subscriber Channels (buffer: 50 each)            │
	└────────────────────────────────────────────────────┘

# Event Kinds

Started: the first event from any monitor instance, always published
before any other event for that container.

CpuThrottled: cumulative CPU throttled time grew by more than the
monitor's threshold since the last sample.

MemoryPressure: memory usage crossed the configured percentage of the
container's limit. Critical.

StatsUpdate: the periodic resource snapshot; the highest-volume, lowest
urgency event kind.

Exiting: published by the runner once the supervisor has returned,
carrying the child's exit code (-1 when the supervisor failed).

Error: a failure in the monitor, such as a stats read error; the monitor
keeps sampling afterwards. Critical.

# Critical events and delivery guarantees

Publish to a subscriber is normally non-blocking: a full subscriber
buffer causes that subscriber to miss the event rather than stall the
broadcast loop. MemoryPressure and Error are the exception — Broker
gives these a short blocking send (IsCritical reports which kinds
qualify) so a slow consumer does not silently swallow the two event
kinds an operator is most likely to act on. The blocking window is
bounded; a subscriber that is stuck for longer than that still gets
skipped, since the broker must not be wedged by one bad subscriber.

# Usage

	broker := events.NewBroker()
	broker.Start()
	defer broker.Stop()

	sub := broker.Subscribe()
	defer broker.Unsubscribe(sub)

	go func() {
		for event := range sub {
			if event.IsCritical() {
				log.Warn().Str("container_id", event.ContainerID).Msg(string(event.Kind))
			}
		}
	}()

	broker.Publish(events.NewStarted(containerID))

# Limitations

In-memory only: no persistence, no replay, no delivery guarantee beyond
the critical-event exception above. A process restart loses all
in-flight events.
*/
package events
