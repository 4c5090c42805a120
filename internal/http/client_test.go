package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestGet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != "SkylarkDownloader" {
			t.Errorf("User-Agent = %q", got)
		}
		switch r.URL.Path {
		case "/ok":
			w.Write([]byte("image bytes"))
		case "/slow":
			time.Sleep(500 * time.Millisecond)
			w.Write([]byte("late"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	client := NewClient(100 * time.Millisecond)

	data, err := client.Get(context.Background(), srv.URL+"/ok")
	if err != nil {
		t.Fatalf("Get(/ok) error = %v", err)
	}
	if string(data) != "image bytes" {
		t.Errorf("Get(/ok) = %q", data)
	}

	if _, err := client.Get(context.Background(), srv.URL+"/missing"); err == nil {
		t.Error("Get(/missing) returned nil error")
	}
	if _, err := client.Get(context.Background(), srv.URL+"/slow"); err == nil {
		t.Error("Get(/slow) did not time out")
	}
}
