package mail

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"slices"
	"strings"
	"testing"

	"github.com/zarlcorp/zpersona/internal/identity"
)

func TestGeneratorEmail(t *testing.T) {
	g := NewGenerator(identity.NewSeededRand(3))
	re := regexp.MustCompile(`^[a-z]{2,3}@[a-z0-9.]+$`)

	for range 200 {
		e := g.Email()
		if !re.MatchString(e) {
			t.Fatalf("email %q has unexpected shape", e)
		}
		local, domain, _ := strings.Cut(e, "@")
		if !slices.Contains(words, local) {
			t.Fatalf("local part %q not from word pool", local)
		}
		if !slices.Contains(g.Domains(), domain) {
			t.Fatalf("domain %q not from pool", domain)
		}
	}
}

func TestGeneratorDomainsCopy(t *testing.T) {
	g := NewGenerator(nil)
	d := g.Domains()
	if len(d) != 6 {
		t.Fatalf("got %d domains, want 6", len(d))
	}
	d[0] = "example.com"
	if g.Domains()[0] != "139.run" {
		t.Error("Domains must return a copy")
	}
}

// fakeMailTM is an in-memory stand-in for the mail.tm REST API.
type fakeMailTM struct {
	t        *testing.T
	accounts map[string]string // address -> password
	deleted  []string
}

func (f *fakeMailTM) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/ld+json")

	auth := r.Header.Get("Authorization")
	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/domains":
		w.Write([]byte(`{"hydra:member":[{"id":"d0","domain":"old.test","isActive":false},{"id":"d1","domain":"inbox.test","isActive":true}]}`))

	case r.Method == http.MethodPost && r.URL.Path == "/accounts":
		var body credentialsJSON
		json.NewDecoder(r.Body).Decode(&body)
		if _, ok := f.accounts[body.Address]; ok {
			w.WriteHeader(http.StatusUnprocessableEntity)
			w.Write([]byte(`{"hydra:description":"address: This value is already used."}`))
			return
		}
		f.accounts[body.Address] = body.Password
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{"id": "acct-1", "address": body.Address})

	case r.Method == http.MethodPost && r.URL.Path == "/token":
		var body credentialsJSON
		json.NewDecoder(r.Body).Decode(&body)
		if pw, ok := f.accounts[body.Address]; !ok || pw != body.Password {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"code":401,"message":"Invalid credentials."}`))
			return
		}
		w.Write([]byte(`{"id":"acct-1","token":"tok-1"}`))

	case r.Method == http.MethodGet && r.URL.Path == "/messages":
		if auth != "Bearer tok-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"hydra:member":[{"@type":"Message","id":"m1","from":{"name":"Shop","address":"no-reply@shop.test"},"to":[{"name":"","address":"x@inbox.test"}],"subject":"Welcome","intro":"Your code is 482913","seen":false,"createdAt":"2026-03-01T10:00:00+00:00"}]}`))

	case r.Method == http.MethodGet && r.URL.Path == "/messages/m1":
		if auth != "Bearer tok-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"@type":"Message","id":"m1","from":{"name":"Shop","address":"no-reply@shop.test"},"subject":"Welcome","text":"","html":["<p>Your verification code is <b>482913</b></p>"],"createdAt":"2026-03-01T10:00:00+00:00"}`))

	case r.Method == http.MethodDelete && strings.HasPrefix(r.URL.Path, "/accounts/"):
		if auth != "Bearer tok-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		f.deleted = append(f.deleted, strings.TrimPrefix(r.URL.Path, "/accounts/"))
		w.WriteHeader(http.StatusNoContent)

	default:
		f.t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		w.WriteHeader(http.StatusNotFound)
	}
}

func testClient(t *testing.T) (*Client, *fakeMailTM) {
	t.Helper()
	fake := &fakeMailTM{t: t, accounts: make(map[string]string)}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL}, WithRand(identity.NewSeededRand(1))), fake
}

func TestOpenSession(t *testing.T) {
	c, fake := testClient(t)

	s, err := c.Open(context.Background())
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	if !strings.HasSuffix(s.Account.Address, "@inbox.test") {
		t.Errorf("address should use the active domain, got %q", s.Account.Address)
	}
	if s.Account.ID != "acct-1" || s.Token != "tok-1" {
		t.Errorf("session: got %+v", s)
	}
	if len(s.Password) != passwordLength {
		t.Errorf("password length: got %d, want %d", len(s.Password), passwordLength)
	}
	if fake.accounts[s.Account.Address] != s.Password {
		t.Error("server did not receive the session password")
	}
}

func TestOpenNoActiveDomain(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"hydra:member":[{"id":"d0","domain":"old.test","isActive":false}]}`))
	}))
	t.Cleanup(srv.Close)

	c := NewClient(Config{BaseURL: srv.URL})
	if _, err := c.Open(context.Background()); !errors.Is(err, ErrNoDomain) {
		t.Fatalf("got %v, want ErrNoDomain", err)
	}
}

func TestCreateAccountConflict(t *testing.T) {
	c, fake := testClient(t)
	fake.accounts["taken@inbox.test"] = "pw"

	_, err := c.CreateAccount(context.Background(), "taken@inbox.test", "other")
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if apiErr.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("status: got %d", apiErr.StatusCode)
	}
	if !strings.Contains(apiErr.Message, "already used") {
		t.Errorf("message: got %q", apiErr.Message)
	}
}

func TestTokenWrongPassword(t *testing.T) {
	c, fake := testClient(t)
	fake.accounts["a@inbox.test"] = "right"

	_, _, err := c.Token(context.Background(), "a@inbox.test", "wrong")
	var apiErr *Error
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 *Error, got %v", err)
	}
	if apiErr.Message != "Invalid credentials." {
		t.Errorf("message: got %q", apiErr.Message)
	}
}

func TestMessagesAndMessage(t *testing.T) {
	c, _ := testClient(t)
	s, err := c.Open(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	msgs, err := c.Messages(context.Background(), s)
	if err != nil {
		t.Fatalf("messages: %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("got %d messages, want 1", len(msgs))
	}
	m := msgs[0]
	if m.ID != "m1" || m.Subject != "Welcome" || m.From.String() != "Shop <no-reply@shop.test>" {
		t.Errorf("summary: got %+v", m)
	}
	if m.CreatedAt.Year() != 2026 {
		t.Errorf("createdAt: got %v", m.CreatedAt)
	}
	if len(m.Codes) != 0 {
		t.Error("summaries should not carry codes")
	}

	full, err := c.Message(context.Background(), s, "m1")
	if err != nil {
		t.Fatalf("message: %v", err)
	}
	if len(full.Codes) == 0 || full.Codes[0] != "482913" {
		t.Errorf("codes: got %v, want [482913 ...]", full.Codes)
	}
}

func TestMessagesUnauthorized(t *testing.T) {
	c, _ := testClient(t)
	_, err := c.Messages(context.Background(), &Session{Token: "bad"})
	var apiErr *Error
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestDeleteAccount(t *testing.T) {
	c, fake := testClient(t)
	s, err := c.Open(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if err := c.DeleteAccount(context.Background(), s); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(fake.deleted) != 1 || fake.deleted[0] != "acct-1" {
		t.Errorf("deleted: got %v", fake.deleted)
	}
}

func TestAddressString(t *testing.T) {
	if got := (Address{Address: "a@b.test"}).String(); got != "a@b.test" {
		t.Errorf("got %q", got)
	}
}
