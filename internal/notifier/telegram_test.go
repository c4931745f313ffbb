package notifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

type fakeTelegram struct {
	mu       sync.Mutex
	messages []string
	failures int
}

func (f *fakeTelegram) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/bottoken/sendMessage") {
			http.NotFound(w, r)
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.failures > 0 {
			f.failures--
			http.Error(w, "busy", http.StatusTooManyRequests)
			return
		}
		var payload map[string]string
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		if payload["parse_mode"] != "HTML" || payload["chat_id"] != "42" {
			t.Errorf("unexpected payload %v", payload)
		}
		f.messages = append(f.messages, payload["text"])
		w.Write([]byte(`{"ok":true}`))
	}
}

func newTestNotifier(srv *httptest.Server) *TelegramNotifier {
	n := NewTelegramNotifier("token", "42", "")
	n.APIBase = srv.URL
	return n
}

func TestSend_SplitsLongMessages(t *testing.T) {
	fake := &fakeTelegram{}
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()

	line := strings.Repeat("x", 99) + "\n"
	text := strings.Repeat(line, 100)
	if err := newTestNotifier(srv).Send(text); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fake.messages) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(fake.messages))
	}
	if strings.Join(fake.messages, "") != text {
		t.Error("chunks do not reassemble to the original text")
	}
}

func TestSendWithRetry(t *testing.T) {
	fake := &fakeTelegram{failures: 1}
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()

	if err := newTestNotifier(srv).SendWithRetry(context.Background(), "hello", 1); err != nil {
		t.Fatalf("expected success after retry, got %v", err)
	}
	if len(fake.messages) != 1 || fake.messages[0] != "hello" {
		t.Errorf("unexpected messages %v", fake.messages)
	}
}

func TestSendWithRetry_Exhausted(t *testing.T) {
	fake := &fakeTelegram{failures: 5}
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()

	if err := newTestNotifier(srv).SendWithRetry(context.Background(), "hello", 0); err == nil {
		t.Error("expected error")
	}
}

func TestSendWithRetry_ContextCancelled(t *testing.T) {
	fake := &fakeTelegram{failures: 5}
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := newTestNotifier(srv).SendWithRetry(ctx, "hello", 3); err != context.DeadlineExceeded {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
}

func TestSplitMessage(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		limit int
		want  []string
	}{
		{"short", "abc", 10, []string{"abc"}},
		{"lines", "aaa\nbbb\nccc\n", 8, []string{"aaa\nbbb\n", "ccc\n"}},
		{"hard split", "abcdefghij", 4, []string{"abcd", "efgh", "ij"}},
		{"rune boundary", "ééé", 3, []string{"é", "é", "é"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitMessage(tt.text, tt.limit)
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStartPolling(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls int
	var mu sync.Mutex
	var replies []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		switch {
		case strings.HasSuffix(r.URL.Path, "/getUpdates"):
			calls++
			if calls == 1 {
				w.Write([]byte(`{"ok":true,"result":[{"update_id":7,"message":{"text":" /cycles "}},{"update_id":8}]}`))
				return
			}
			if r.URL.Query().Get("offset") != "9" {
				t.Errorf("expected offset 9, got %s", r.URL.Query().Get("offset"))
			}
			cancel()
			w.Write([]byte(`{"ok":true,"result":[]}`))
		case strings.HasSuffix(r.URL.Path, "/sendMessage"):
			var payload map[string]string
			json.NewDecoder(r.Body).Decode(&payload)
			replies = append(replies, payload["text"])
			w.Write([]byte(`{"ok":true}`))
		}
	}))
	defer srv.Close()

	var got []string
	done := make(chan struct{})
	go func() {
		newTestNotifier(srv).StartPolling(ctx, func(_ context.Context, cmd string) string {
			got = append(got, cmd)
			return "reply:" + cmd
		})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("polling did not stop after cancel")
	}
	if len(got) != 1 || got[0] != "/cycles" {
		t.Errorf("unexpected commands %v", got)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(replies) != 1 || replies[0] != "reply:/cycles" {
		t.Errorf("unexpected replies %v", replies)
	}
}
