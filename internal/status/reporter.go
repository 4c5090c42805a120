package status

import (
	"fmt"
	"sync"
	"time"

	"github.com/handiism/skylark-downloader/internal/model"
)

// Level indicates the severity/type of an event.
type Level int

const (
	LevelInfo Level = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

// String returns a lower-case label for the level.
func (l Level) String() string {
	switch l {
	case LevelInfo:
		return "info"
	case LevelVerbose:
		return "verbose"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	case LevelSuccess:
		return "success"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// Kind identifies what an event describes.
type Kind int

const (
	// KindMessage is a free-form status line.
	KindMessage Kind = iota
	// KindItemAdded carries a newly queued item.
	KindItemAdded
	// KindItemUpdated carries an item after a detail or thumbnail fetch.
	KindItemUpdated
	// KindItemRemoved carries the URL of a removed item in Message.
	KindItemRemoved
	// KindQueueCleared reports that the queue was emptied.
	KindQueueCleared
	// KindResolved reports the outcome of one Add: Completed holds the
	// number of queued records and Total the number of records seen.
	KindResolved
	// KindBatchStarted reports a batch start; Total is the job count.
	KindBatchStarted
	// KindJobResult carries one job result.
	KindJobResult
	// KindProgress carries (Completed, Total) after each job result.
	KindProgress
	// KindBatchCompleted reports that every job of the batch has a result.
	KindBatchCompleted
)

// Event is one status notification.
type Event struct {
	Kind      Kind
	Level     Level
	Message   string
	BatchID   string
	Item      *model.QueueItem
	Result    *model.JobResult
	Completed int
	Total     int
	Time      time.Time
}

// Sink receives events. Components depend on Sink rather than on Reporter.
type Sink interface {
	Publish(Event)
}

// Discard is a Sink that drops every event.
var Discard Sink = discard{}

type discard struct{}

func (discard) Publish(Event) {}

type subscriber struct {
	ch chan Event
	fn func(Event)
}

// Reporter is a fan-out Sink.
type Reporter struct {
	mu   sync.RWMutex
	subs map[*subscriber]struct{}
}

// NewReporter creates a Reporter with no subscribers.
func NewReporter() *Reporter {
	return &Reporter{subs: make(map[*subscriber]struct{})}
}

// Subscribe registers a buffered channel subscriber. The returned function
// unsubscribes and closes the channel.
func (r *Reporter) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer < 1 {
		buffer = 1
	}
	sub := &subscriber{ch: make(chan Event, buffer)}
	r.add(sub)
	return sub.ch, func() { r.remove(sub) }
}

// SubscribeFunc registers a callback invoked synchronously for every event,
// from the publishing goroutine. Callbacks must be fast and must not publish.
func (r *Reporter) SubscribeFunc(fn func(Event)) func() {
	sub := &subscriber{fn: fn}
	r.add(sub)
	return func() { r.remove(sub) }
}

func (r *Reporter) add(sub *subscriber) {
	r.mu.Lock()
	r.subs[sub] = struct{}{}
	r.mu.Unlock()
}

func (r *Reporter) remove(sub *subscriber) {
	r.mu.Lock()
	if _, ok := r.subs[sub]; ok {
		delete(r.subs, sub)
		if sub.ch != nil {
			close(sub.ch)
		}
	}
	r.mu.Unlock()
}

// Publish delivers ev to every subscriber.
func (r *Reporter) Publish(ev Event) {
	if r == nil {
		return
	}
	if ev.Time.IsZero() {
		ev.Time = time.Now()
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	for sub := range r.subs {
		if sub.fn != nil {
			sub.fn(ev)
			continue
		}
		select {
		case sub.ch <- ev:
		default:
		}
	}
}

// Message publishes a free-form status line at the given level.
func Message(sink Sink, level Level, format string, args ...any) {
	if sink == nil {
		return
	}
	sink.Publish(Event{Kind: KindMessage, Level: level, Message: fmt.Sprintf(format, args...)})
}
