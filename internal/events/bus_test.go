package events

import "testing"

func TestPublishReachesSubscriber(t *testing.T) {
	bus := NewBus()
	sub := bus.Subscribe(EventMeetingCreated)

	bus.Publish(EventMeetingCreated, Payload{"name": "Alice"})

	select {
	case p := <-sub:
		if p["name"] != "Alice" {
			t.Fatalf("unexpected payload %v", p)
		}
	default:
		t.Fatal("expected a buffered payload")
	}
}

func TestPublishSkipsOtherEventTypes(t *testing.T) {
	bus := NewBus()
	sub := bus.Subscribe(EventMeetingCreated)

	bus.Publish(EventNameRemoved, Payload{})

	select {
	case p := <-sub:
		t.Fatalf("unexpected delivery %v", p)
	default:
	}
}

func TestUnsubscribeLeavesChannelOpenForStalePublishers(t *testing.T) {
	bus := NewBus()
	sub := bus.Subscribe(EventMeetingSweep)

	bus.Unsubscribe(EventMeetingSweep, sub)

	bus.Publish(EventMeetingSweep, Payload{})
	select {
	case p := <-sub:
		t.Fatalf("unexpected delivery after unsubscribe: %v", p)
	default:
	}

	// A publisher that copied the subscriber list before the unsubscribe
	// may still send; this must not panic on a closed channel.
	sub <- Payload{"late": true}
	if p := <-sub; p["late"] != true {
		t.Fatalf("unexpected payload %v", p)
	}
}

func TestPublishDropsWhenBufferFull(t *testing.T) {
	bus := NewBus()
	sub := bus.Subscribe(EventIntervalChanged)

	for i := 0; i < 20; i++ {
		bus.Publish(EventIntervalChanged, Payload{"i": i})
	}

	if got := len(sub); got != cap(sub) {
		t.Fatalf("expected a full buffer of %d, got %d", cap(sub), got)
	}
}
