package status

import (
	"sync"
	"testing"
)

func TestReporter_FanOut(t *testing.T) {
	r := NewReporter()

	first, cancelFirst := r.Subscribe(4)
	defer cancelFirst()
	second, cancelSecond := r.Subscribe(4)
	defer cancelSecond()

	Message(r, LevelInfo, "added %d item(s)", 2)

	for _, ch := range []<-chan Event{first, second} {
		ev := <-ch
		if ev.Kind != KindMessage || ev.Message != "added 2 item(s)" {
			t.Errorf("unexpected event %+v", ev)
		}
		if ev.Time.IsZero() {
			t.Error("event time should be stamped")
		}
	}
}

func TestReporter_FullSubscriberDoesNotBlock(t *testing.T) {
	r := NewReporter()
	events, cancel := r.Subscribe(1)
	defer cancel()

	for i := 0; i < 10; i++ {
		r.Publish(Event{Kind: KindProgress, Completed: i + 1, Total: 10})
	}

	ev := <-events
	if ev.Completed != 1 {
		t.Errorf("first buffered event Completed = %d, want 1", ev.Completed)
	}
}

func TestReporter_SubscribeFuncIsLossless(t *testing.T) {
	r := NewReporter()

	var mu sync.Mutex
	var seen []int
	cancel := r.SubscribeFunc(func(ev Event) {
		mu.Lock()
		seen = append(seen, ev.Completed)
		mu.Unlock()
	})
	defer cancel()

	for i := 1; i <= 100; i++ {
		r.Publish(Event{Kind: KindProgress, Completed: i, Total: 100})
	}

	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 100 {
		t.Fatalf("got %d events, want 100", len(seen))
	}
}

func TestReporter_UnsubscribeClosesChannel(t *testing.T) {
	r := NewReporter()
	events, cancel := r.Subscribe(1)
	cancel()
	cancel()

	if _, ok := <-events; ok {
		t.Error("channel should be closed after unsubscribe")
	}
	r.Publish(Event{Kind: KindMessage})
}

func TestNilReporterPublish(t *testing.T) {
	var r *Reporter
	r.Publish(Event{Kind: KindMessage})
	Message(nil, LevelInfo, "ignored")
	Discard.Publish(Event{})
}
