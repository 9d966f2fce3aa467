package event

import "testing"

func TestTopicMatch(t *testing.T) {
	tests := []struct {
		topic   Topic
		pattern Topic
		want    bool
	}{
		{"block.changed", "block.changed", true},
		{"block.changed", "block.*", true},
		{"editor.readonly.toggled", "editor.*", true},
		{"block.changed", "editor.*", false},
		{"block.changed", "block.removed", false},
		{"block", "block.*", false},
	}

	for _, tt := range tests {
		if got := tt.topic.Match(tt.pattern); got != tt.want {
			t.Errorf("Topic(%q).Match(%q) = %v, want %v", tt.topic, tt.pattern, got, tt.want)
		}
	}
}

func TestPublishDeliversToMatchingSubscribers(t *testing.T) {
	bus := NewBus()

	var gotBlock, gotAll int
	bus.Subscribe(TopicBlockChanged, func(Event) { gotBlock++ })
	bus.Subscribe("block.*", func(Event) { gotAll++ })
	bus.Subscribe(TopicReadOnlyToggled, func(Event) {
		t.Error("unrelated subscriber must not be invoked")
	})

	bus.Publish(Event{Topic: TopicBlockChanged, BlockID: "b1"})

	if gotBlock != 1 || gotAll != 1 {
		t.Errorf("deliveries = (%d, %d), want (1, 1)", gotBlock, gotAll)
	}
}

func TestCancelStopsDelivery(t *testing.T) {
	bus := NewBus()

	var got int
	sub := bus.Subscribe(TopicBlockChanged, func(Event) { got++ })

	bus.Publish(Event{Topic: TopicBlockChanged})
	sub.Cancel()
	bus.Publish(Event{Topic: TopicBlockChanged})

	if got != 1 {
		t.Errorf("expected 1 delivery, got %d", got)
	}
	if bus.SubscriberCount() != 0 {
		t.Errorf("expected 0 subscribers, got %d", bus.SubscriberCount())
	}
}

func TestHandlerPanicDoesNotStopSiblings(t *testing.T) {
	bus := NewBus()

	var got int
	bus.Subscribe(TopicBlockChanged, func(Event) { panic("bad handler") })
	bus.Subscribe(TopicBlockChanged, func(Event) { got++ })

	bus.Publish(Event{Topic: TopicBlockChanged})

	if got != 1 {
		t.Errorf("sibling handler should still run, got %d deliveries", got)
	}
}

func TestNilHandlerIgnored(t *testing.T) {
	bus := NewBus()
	sub := bus.Subscribe(TopicBlockChanged, nil)
	sub.Cancel() // must not panic
	if bus.SubscriberCount() != 0 {
		t.Error("nil handler must not register")
	}
}
