package queue

import (
	"log/slog"
	"regexp"
	"strings"
	"sync"

	"github.com/handiism/skylark-downloader/internal/logging"
	"github.com/handiism/skylark-downloader/internal/model"
	"github.com/handiism/skylark-downloader/internal/status"
)

// DefaultURLPattern accepts video, playlist, music and channel URLs of the
// hosts the resolver is used with by default.
var DefaultURLPattern = regexp.MustCompile(`^(https?://)?(www\.)?((music\.)?youtube\.com|youtu\.be)/.+$`)

// Entry is the data needed to insert an item.
type Entry struct {
	URL           string
	Title         string
	PlaylistTitle string

	// Details, when non-nil, means the entry already carries full metadata
	// and the item is inserted as resolved.
	Details *model.Details
}

// Store is the ordered, de-duplicated queue.
type Store struct {
	mu      sync.Mutex
	items   []*model.QueueItem
	index   map[string]*model.QueueItem
	staged  map[string]struct{}
	nextPos int

	pattern *regexp.Regexp
	sink    status.Sink
	logger  *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithURLPattern replaces DefaultURLPattern. A nil pattern accepts any
// non-empty URL.
func WithURLPattern(re *regexp.Regexp) Option {
	return func(s *Store) {
		s.pattern = re
	}
}

// WithSink sets the sink item events are published to.
func WithSink(sink status.Sink) Option {
	return func(s *Store) {
		if sink != nil {
			s.sink = sink
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates an empty Store.
func New(opts ...Option) *Store {
	s := &Store{
		index:   make(map[string]*model.QueueItem),
		staged:  make(map[string]struct{}),
		pattern: DefaultURLPattern,
		sink:    status.Discard,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Validate checks URL shape and rejects URLs that are already queued or
// currently being resolved. It returns the trimmed URL and never changes state.
func (s *Store) Validate(raw string) (string, error) {
	url := strings.TrimSpace(raw)
	if err := s.checkShape(url); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isTakenLocked(url) {
		return "", model.Wrap(model.ErrDuplicate, "add", url, nil)
	}
	return url, nil
}

func (s *Store) checkShape(url string) error {
	if url == "" {
		return model.Wrap(model.ErrInvalidURL, "add", "empty url", nil)
	}
	if s.pattern != nil && !s.pattern.MatchString(url) {
		return model.Wrap(model.ErrInvalidURL, "add", url, nil)
	}
	return nil
}

func (s *Store) isTakenLocked(url string) bool {
	if _, ok := s.index[url]; ok {
		return true
	}
	_, ok := s.staged[url]
	return ok
}

// Stage validates url and reserves it while the resolver lists it, so the
// same submission cannot be resolved twice concurrently. The returned release
// function drops the reservation and is safe to call more than once.
func (s *Store) Stage(raw string) (string, func(), error) {
	url := strings.TrimSpace(raw)
	if err := s.checkShape(url); err != nil {
		return "", nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isTakenLocked(url) {
		return "", nil, model.Wrap(model.ErrDuplicate, "add", url, nil)
	}
	s.staged[url] = struct{}{}

	var once sync.Once
	release := func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.staged, url)
			s.mu.Unlock()
		})
	}
	return url, release, nil
}

// Add validates url and queues it with default metadata.
func (s *Store) Add(raw string) (*model.QueueItem, error) {
	url := strings.TrimSpace(raw)
	if err := s.checkShape(url); err != nil {
		return nil, err
	}
	return s.Insert(Entry{URL: url})
}

// Insert queues a resolver record. Only duplicates are rejected; URL shape
// is not checked because resolver records may use any form the resolver
// understands. It returns a copy of the inserted item.
func (s *Store) Insert(e Entry) (*model.QueueItem, error) {
	url := strings.TrimSpace(e.URL)
	if url == "" {
		return nil, model.Wrap(model.ErrInvalidURL, "insert", "empty url", nil)
	}

	s.mu.Lock()
	if _, ok := s.index[url]; ok {
		s.mu.Unlock()
		return nil, model.Wrap(model.ErrDuplicate, "insert", url, nil)
	}
	s.nextPos++
	item := model.NewQueueItem(url, e.Title, e.PlaylistTitle, s.nextPos)
	if e.Details != nil {
		item.ApplyDetails(*e.Details)
	}
	s.items = append(s.items, item)
	s.index[url] = item
	out := item.Clone()
	s.mu.Unlock()

	s.sink.Publish(status.Event{Kind: status.KindItemAdded, Level: status.LevelVerbose, Item: out.Clone()})
	return out, nil
}

// Remove deletes the item with the given URL. Removing an absent URL is a no-op.
func (s *Store) Remove(url string) {
	s.mu.Lock()
	item, ok := s.index[url]
	if ok {
		delete(s.index, url)
		for i, it := range s.items {
			if it == item {
				s.items = append(s.items[:i], s.items[i+1:]...)
				break
			}
		}
	}
	s.mu.Unlock()

	if ok {
		s.sink.Publish(status.Event{Kind: status.KindItemRemoved, Level: status.LevelVerbose, Message: url})
	}
}

// Clear empties the store. Detail fetches still in flight for the removed
// items are discarded when they complete. Positions keep counting up.
func (s *Store) Clear() {
	s.mu.Lock()
	n := len(s.items)
	s.items = nil
	s.index = make(map[string]*model.QueueItem)
	s.mu.Unlock()

	s.sink.Publish(status.Event{Kind: status.KindQueueCleared, Level: status.LevelInfo, Message: "Queue cleared.", Total: n})
}

// Update applies fn to the live item identified by url and position.
//
// It returns false, without calling fn, when that item is no longer queued;
// callers treat that as a discarded late result.
func (s *Store) Update(url string, position int, fn func(*model.QueueItem)) bool {
	s.mu.Lock()
	item, ok := s.index[url]
	if !ok || item.Position != position {
		s.mu.Unlock()
		s.logger.Debug("discarding update for removed item", slog.String("url", url), slog.Int("position", position))
		return false
	}
	fn(item)
	out := item.Clone()
	s.mu.Unlock()

	s.sink.Publish(status.Event{Kind: status.KindItemUpdated, Level: status.LevelVerbose, Item: out})
	return true
}

// Get returns a copy of the item with the given URL.
func (s *Store) Get(url string) (*model.QueueItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.index[url]
	if !ok {
		return nil, false
	}
	return item.Clone(), true
}

// Contains reports whether url is queued.
func (s *Store) Contains(url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.index[url]
	return ok
}

// Len returns the number of queued items.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Snapshot returns copies of all items in insertion order.
func (s *Store) Snapshot() []*model.QueueItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*model.QueueItem, len(s.items))
	for i, item := range s.items {
		out[i] = item.Clone()
	}
	return out
}
