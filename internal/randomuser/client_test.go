package randomuser

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL + "/api/"})
}

func TestFetchUser(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("method: got %s, want GET", r.Method)
		}
		if got := r.URL.Query().Get("nat"); got != "gb" {
			t.Errorf("nat: got %q, want gb", got)
		}
		if got := r.URL.Query().Get("inc"); got != "name,phone,id" {
			t.Errorf("inc: got %q", got)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{{
				"name":  map[string]string{"title": "Ms", "first": "Ava", "last": "Hughes"},
				"phone": "016977 0513",
				"id":    map[string]any{"name": "NINO", "value": "AB 12 34 56 C"},
			}},
		})
	}))

	id, err := c.FetchUser(context.Background(), "UK")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}

	if id.Name.First != "Ava" || id.Name.Last != "Hughes" {
		t.Errorf("name: got %+v", id.Name)
	}
	if id.Phone != "016977 0513" {
		t.Errorf("phone: got %q", id.Phone)
	}
	if id.NationalID.Label != "NINO" || id.NationalID.Value != "AB 12 34 56 C" {
		t.Errorf("national id: got %+v", id.NationalID)
	}
	if id.Enhanced() {
		t.Error("provider identity must not be enhanced")
	}
}

func TestFetchUserNullIDValue(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"results":[{"name":{"first":"A","last":"B"},"phone":"1","id":{"name":"","value":null}}]}`))
	}))

	id, err := c.FetchUser(context.Background(), "US")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if id.NationalID.Value != "" {
		t.Errorf("null id value should decode empty, got %q", id.NationalID.Value)
	}
}

func TestFetchUserUnsupportedCountry(t *testing.T) {
	called := false
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called = true
	}))

	for _, code := range []string{"JP", "KR", "CN", "ZZ"} {
		_, err := c.FetchUser(context.Background(), code)
		if !errors.Is(err, ErrUnsupportedCountry) {
			t.Errorf("%s: got %v, want ErrUnsupportedCountry", code, err)
		}
	}
	if called {
		t.Error("unsupported countries must not hit the API")
	}
}

func TestFetchUserAPIError(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error":"Uh oh, something has gone wrong."}`))
	}))

	_, err := c.FetchUser(context.Background(), "US")
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *Error, got %T: %v", err, err)
	}
	if apiErr.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status: got %d", apiErr.StatusCode)
	}
	if apiErr.Message != "Uh oh, something has gone wrong." {
		t.Errorf("message: got %q", apiErr.Message)
	}
}

func TestFetchUserNonJSONError(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte("slow down"))
	}))

	_, err := c.FetchUser(context.Background(), "US")
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if apiErr.Message != "Too Many Requests" {
		t.Errorf("message: got %q", apiErr.Message)
	}
}

func TestFetchUserEmptyResults(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"results":[]}`))
	}))

	if _, err := c.FetchUser(context.Background(), "US"); err == nil {
		t.Fatal("expected error for empty results")
	}
}

func TestFetchUserBadJSON(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{not json`))
	}))

	if _, err := c.FetchUser(context.Background(), "US"); err == nil {
		t.Fatal("expected unmarshal error")
	}
}

func TestFetchUserContextCanceled(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"results":[]}`))
	}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := c.FetchUser(ctx, "US"); !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v, want context.Canceled", err)
	}
}
