package queue

import (
	"errors"
	"fmt"
	"regexp"
	"sync"
	"testing"

	"github.com/handiism/skylark-downloader/internal/model"
	"github.com/handiism/skylark-downloader/internal/status"
)

func TestAddValidatesURL(t *testing.T) {
	tests := []struct {
		url     string
		wantErr error
	}{
		{"https://www.youtube.com/watch?v=abc", nil},
		{"youtu.be/abc", nil},
		{"https://music.youtube.com/playlist?list=PL1", nil},
		{"  https://youtu.be/trimmed  ", nil},
		{"", model.ErrInvalidURL},
		{"   ", model.ErrInvalidURL},
		{"https://example.com/video", model.ErrInvalidURL},
		{"https://youtube.com/", model.ErrInvalidURL},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			s := New()
			_, err := s.Add(tt.url)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Add(%q) error = %v", tt.url, err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Add(%q) error = %v, want %v", tt.url, err, tt.wantErr)
			}
			if !errors.Is(err, model.ErrValidation) {
				t.Errorf("Add(%q) error is not a validation error", tt.url)
			}
			if s.Len() != 0 {
				t.Errorf("Len() = %d after rejected add, want 0", s.Len())
			}
		})
	}
}

func TestAddRejectsDuplicate(t *testing.T) {
	s := New()
	if _, err := s.Add("https://youtu.be/a"); err != nil {
		t.Fatalf("Add error = %v", err)
	}

	_, err := s.Add("https://youtu.be/a")
	if !errors.Is(err, model.ErrDuplicate) {
		t.Fatalf("second Add error = %v, want ErrDuplicate", err)
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}

	// Exact string match only.
	if _, err := s.Add("https://youtu.be/a?t=1"); err != nil {
		t.Errorf("Add of distinct URL error = %v", err)
	}
}

func TestCustomURLPattern(t *testing.T) {
	s := New(WithURLPattern(regexp.MustCompile(`^https://media\.test/`)))
	if _, err := s.Add("https://media.test/v/1"); err != nil {
		t.Fatalf("Add error = %v", err)
	}
	if _, err := s.Add("https://youtu.be/a"); !errors.Is(err, model.ErrInvalidURL) {
		t.Fatalf("Add error = %v, want ErrInvalidURL", err)
	}

	open := New(WithURLPattern(nil))
	if _, err := open.Add("anything"); err != nil {
		t.Fatalf("Add with nil pattern error = %v", err)
	}
}

func TestPositionsAndSnapshotOrder(t *testing.T) {
	s := New()
	for i := range 4 {
		if _, err := s.Insert(Entry{URL: fmt.Sprintf("u%d", i), Title: fmt.Sprintf("t%d", i)}); err != nil {
			t.Fatalf("Insert error = %v", err)
		}
	}
	s.Remove("u1")

	snap := s.Snapshot()
	wantURLs := []string{"u0", "u2", "u3"}
	wantPos := []int{1, 3, 4}
	if len(snap) != len(wantURLs) {
		t.Fatalf("Snapshot len = %d, want %d", len(snap), len(wantURLs))
	}
	for i, item := range snap {
		if item.URL != wantURLs[i] || item.Position != wantPos[i] {
			t.Errorf("snap[%d] = (%s, %d), want (%s, %d)", i, item.URL, item.Position, wantURLs[i], wantPos[i])
		}
	}

	snap[0].Title = "changed"
	if got, _ := s.Get("u0"); got.Title != "t0" {
		t.Errorf("snapshot mutation leaked into store: title = %q", got.Title)
	}
}

func TestInsertWithDetails(t *testing.T) {
	s := New()
	item, err := s.Insert(Entry{
		URL:   "u",
		Title: "Song",
		Details: &model.Details{
			UploaderName:    "Channel",
			DurationSeconds: 30,
			ThumbnailURL:    "https://img/1.jpg",
		},
	})
	if err != nil {
		t.Fatalf("Insert error = %v", err)
	}
	if item.DetailStatus != model.DetailResolved {
		t.Errorf("DetailStatus = %v, want resolved", item.DetailStatus)
	}
	if item.ThumbnailState != model.ThumbnailPending {
		t.Errorf("ThumbnailState = %v, want pending", item.ThumbnailState)
	}
}

func TestRemoveIsIdempotent(t *testing.T) {
	r := status.NewReporter()
	var removed int
	r.SubscribeFunc(func(ev status.Event) {
		if ev.Kind == status.KindItemRemoved {
			removed++
		}
	})

	s := New(WithSink(r))
	s.Add("https://youtu.be/a")
	s.Remove("https://youtu.be/a")
	s.Remove("https://youtu.be/a")
	s.Remove("https://youtu.be/never")

	if s.Len() != 0 {
		t.Errorf("Len() = %d, want 0", s.Len())
	}
	if removed != 1 {
		t.Errorf("removed events = %d, want 1", removed)
	}
}

func TestUpdateDiscardsLateResults(t *testing.T) {
	s := New()
	item, _ := s.Insert(Entry{URL: "u", Title: "first"})

	s.Clear()
	applied := s.Update(item.URL, item.Position, func(q *model.QueueItem) {
		q.UploaderName = "late"
	})
	if applied {
		t.Fatal("Update applied to a cleared item")
	}
	if s.Contains("u") {
		t.Fatal("late update re-inserted the item")
	}

	// Same URL queued again is a different item; the stale update must not touch it.
	again, _ := s.Insert(Entry{URL: "u", Title: "second"})
	if s.Update(item.URL, item.Position, func(q *model.QueueItem) { q.UploaderName = "late" }) {
		t.Fatal("stale update applied to re-queued item")
	}
	got, _ := s.Get("u")
	if got.UploaderName != model.UnknownUploader {
		t.Errorf("UploaderName = %q, want %q", got.UploaderName, model.UnknownUploader)
	}

	if !s.Update(again.URL, again.Position, func(q *model.QueueItem) { q.UploaderName = "fresh" }) {
		t.Fatal("Update of live item returned false")
	}
	got, _ = s.Get("u")
	if got.UploaderName != "fresh" {
		t.Errorf("UploaderName = %q, want fresh", got.UploaderName)
	}
}

func TestStageReservesURL(t *testing.T) {
	s := New()
	url, release, err := s.Stage("https://youtu.be/list")
	if err != nil {
		t.Fatalf("Stage error = %v", err)
	}
	if _, _, err := s.Stage(url); !errors.Is(err, model.ErrDuplicate) {
		t.Fatalf("second Stage error = %v, want ErrDuplicate", err)
	}
	if _, err := s.Validate(url); !errors.Is(err, model.ErrDuplicate) {
		t.Fatalf("Validate error = %v, want ErrDuplicate", err)
	}

	release()
	release()
	if _, err := s.Validate(url); err != nil {
		t.Fatalf("Validate after release error = %v", err)
	}
}

func TestConcurrentMutation(t *testing.T) {
	s := New()
	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			url := fmt.Sprintf("u%d", i%25)
			item, err := s.Insert(Entry{URL: url})
			if err == nil {
				s.Update(item.URL, item.Position, func(q *model.QueueItem) { q.ViewCount++ })
			}
			if i%10 == 0 {
				s.Remove(url)
			}
		}()
	}
	wg.Wait()

	seen := make(map[string]bool)
	for _, item := range s.Snapshot() {
		if seen[item.URL] {
			t.Fatalf("duplicate URL %s in snapshot", item.URL)
		}
		seen[item.URL] = true
	}
}
