package mail

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestSubscribe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("topic"); got != "/accounts/acct-1" {
			t.Errorf("topic: got %q", got)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok-1" {
			t.Errorf("authorization: got %q", got)
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		flusher := w.(http.Flusher)

		// account update first, which must be ignored
		fmt.Fprint(w, "data: {\"@type\":\"Account\",\"id\":\"acct-1\",\"used\":1024}\n\n")
		fmt.Fprint(w, "data: {\"@type\":\"Message\",\"id\":\"m9\",\"subject\":\"Sign in\",\"intro\":\"code 551177\"}\n\n")
		flusher.Flush()

		<-r.Context().Done()
	}))
	t.Cleanup(srv.Close)

	c := NewClient(Config{EventsURL: srv.URL + "/.well-known/mercure"})
	s := &Session{Account: Account{ID: "acct-1"}, Token: "tok-1"}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var got []Message
	err := c.Subscribe(ctx, s, func(m Message) {
		got = append(got, m)
		cancel()
	})
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	if len(got) != 1 {
		t.Fatalf("got %d messages, want 1", len(got))
	}
	if got[0].ID != "m9" || got[0].Subject != "Sign in" {
		t.Errorf("message: got %+v", got[0])
	}
}

func TestDecodeEvent(t *testing.T) {
	tests := []struct {
		name string
		data string
		ok   bool
	}{
		{"message", `{"@type":"Message","id":"m1"}`, true},
		{"account update", `{"@type":"Account","id":"a1"}`, false},
		{"message without id", `{"@type":"Message"}`, false},
		{"not json", `hello`, false},
		{"empty", ``, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := decodeEvent([]byte(tt.data))
			if ok != tt.ok {
				t.Errorf("got %v, want %v", ok, tt.ok)
			}
		})
	}
}
