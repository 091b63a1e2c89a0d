package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/zarlcorp/core/pkg/zcrypto"

	"github.com/zarlcorp/zpersona/internal/identity"
)

const (
	defaultBaseURL   = "https://api.mail.tm"
	defaultEventsURL = "https://mercure.mail.tm/.well-known/mercure"

	passwordLength = 20
)

// ErrNoDomain is returned by Open when the service lists no active domain.
var ErrNoDomain = errors.New("mail: no active domain")

// Config configures the mail.tm client.
type Config struct {
	BaseURL   string
	EventsURL string
	Timeout   time.Duration
}

// Domain is a receiving domain offered by the service.
type Domain struct {
	ID       string
	Domain   string
	IsActive bool
}

// Account is a created mailbox.
type Account struct {
	ID      string
	Address string
}

// Session is an authenticated mailbox. Password is kept so the session can
// be re-established.
type Session struct {
	Account  Account
	Password string
	Token    string
}

// Address is a sender or recipient.
type Address struct {
	Name    string
	Address string
}

func (a Address) String() string {
	if a.Name == "" {
		return a.Address
	}
	return a.Name + " <" + a.Address + ">"
}

// Message is an inbox message. Text, HTML and Codes are only filled by
// Client.Message.
type Message struct {
	ID        string
	From      Address
	To        []Address
	Subject   string
	Intro     string
	Text      string
	HTML      []string
	Seen      bool
	CreatedAt time.Time
	Codes     []string
}

// Client communicates with the mail.tm REST API.
type Client struct {
	baseURL   string
	eventsURL string
	http      *http.Client
	rand      identity.Rand
	log       *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithRand sets the random source used for mailbox names.
func WithRand(r identity.Rand) Option {
	return func(c *Client) { c.rand = r }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// NewClient creates a mail.tm client.
func NewClient(cfg Config, opts ...Option) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.EventsURL == "" {
		cfg.EventsURL = defaultEventsURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	c := &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		eventsURL: cfg.EventsURL,
		http:      &http.Client{Timeout: cfg.Timeout},
		log:       slog.New(slog.DiscardHandler),
	}
	for _, o := range opts {
		o(c)
	}
	if c.rand == nil {
		c.rand = identity.NewRand()
	}
	return c
}

// Domains lists the receiving domains.
func (c *Client) Domains(ctx context.Context) ([]Domain, error) {
	var resp collection[domainJSON]
	if err := c.doJSON(ctx, http.MethodGet, "/domains", "", nil, &resp); err != nil {
		return nil, fmt.Errorf("domains: %w", err)
	}

	out := make([]Domain, len(resp.Members))
	for i, d := range resp.Members {
		out[i] = Domain{ID: d.ID, Domain: d.Domain, IsActive: d.IsActive}
	}
	return out, nil
}

// CreateAccount registers a mailbox.
func (c *Client) CreateAccount(ctx context.Context, address, password string) (Account, error) {
	var resp accountJSON
	body := credentialsJSON{Address: address, Password: password}
	if err := c.doJSON(ctx, http.MethodPost, "/accounts", "", body, &resp); err != nil {
		return Account{}, fmt.Errorf("create account: %w", err)
	}
	return Account{ID: resp.ID, Address: resp.Address}, nil
}

// Token exchanges credentials for a bearer token. It also returns the
// account ID.
func (c *Client) Token(ctx context.Context, address, password string) (token, accountID string, err error) {
	var resp struct {
		Token string `json:"token"`
		ID    string `json:"id"`
	}
	body := credentialsJSON{Address: address, Password: password}
	if err := c.doJSON(ctx, http.MethodPost, "/token", "", body, &resp); err != nil {
		return "", "", fmt.Errorf("token: %w", err)
	}
	return resp.Token, resp.ID, nil
}

// Open creates a fresh mailbox on the first active domain and logs in.
func (c *Client) Open(ctx context.Context) (*Session, error) {
	ds, err := c.Domains(ctx)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}

	var domain string
	for _, d := range ds {
		if d.IsActive {
			domain = d.Domain
			break
		}
	}
	if domain == "" {
		return nil, fmt.Errorf("open: %w", ErrNoDomain)
	}

	address := c.localPart() + "@" + domain
	password := zcrypto.GeneratePassword(passwordLength)

	acct, err := c.CreateAccount(ctx, address, password)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}

	token, _, err := c.Token(ctx, address, password)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}

	c.log.Debug("mailbox opened", "address", acct.Address)
	return &Session{Account: acct, Password: password, Token: token}, nil
}

// localPart is a pool word followed by four digits, which keeps collisions
// on the shared service unlikely.
func (c *Client) localPart() string {
	return fmt.Sprintf("%s%04d", words[c.rand.IntN(len(words))], c.rand.IntN(10000))
}

// Messages returns the first page of the inbox, newest first.
func (c *Client) Messages(ctx context.Context, s *Session) ([]Message, error) {
	var resp collection[messageJSON]
	if err := c.doJSON(ctx, http.MethodGet, "/messages?page=1", s.Token, nil, &resp); err != nil {
		return nil, fmt.Errorf("messages: %w", err)
	}

	out := make([]Message, len(resp.Members))
	for i, m := range resp.Members {
		out[i] = m.message()
	}
	return out, nil
}

// Message fetches one message with its full body and extracts verification
// codes from it.
func (c *Client) Message(ctx context.Context, s *Session, id string) (Message, error) {
	var resp messageJSON
	if err := c.doJSON(ctx, http.MethodGet, "/messages/"+url.PathEscape(id), s.Token, nil, &resp); err != nil {
		return Message{}, fmt.Errorf("message %s: %w", id, err)
	}

	m := resp.message()
	text := m.Text
	if text == "" {
		text = stripTags(strings.Join(m.HTML, "\n"))
	}
	m.Codes = Verifications(m.Subject + "\n" + text)
	return m, nil
}

// DeleteAccount removes the mailbox.
func (c *Client) DeleteAccount(ctx context.Context, s *Session) error {
	if err := c.doJSON(ctx, http.MethodDelete, "/accounts/"+url.PathEscape(s.Account.ID), s.Token, nil, nil); err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	return nil
}

func (c *Client) doJSON(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/ld+json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Message     string `json:"message"`
			Detail      string `json:"detail"`
			Description string `json:"hydra:description"`
		}
		msg := http.StatusText(resp.StatusCode)
		if json.Unmarshal(data, &apiErr) == nil {
			msg = firstNonEmpty(apiErr.Message, apiErr.Detail, apiErr.Description, msg)
		}
		return &Error{StatusCode: resp.StatusCode, Message: msg}
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	return nil
}

// Error is a non-2xx response from the mail API.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("mail: %s (status %d)", e.Message, e.StatusCode)
}

func firstNonEmpty(ss ...string) string {
	for _, s := range ss {
		if s != "" {
			return s
		}
	}
	return ""
}

// json wire types

type collection[T any] struct {
	Members []T `json:"hydra:member"`
}

type credentialsJSON struct {
	Address  string `json:"address"`
	Password string `json:"password"`
}

type domainJSON struct {
	ID       string `json:"id"`
	Domain   string `json:"domain"`
	IsActive bool   `json:"isActive"`
}

type accountJSON struct {
	ID      string `json:"id"`
	Address string `json:"address"`
}

type addressJSON struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

type messageJSON struct {
	Type      string        `json:"@type"`
	ID        string        `json:"id"`
	From      addressJSON   `json:"from"`
	To        []addressJSON `json:"to"`
	Subject   string        `json:"subject"`
	Intro     string        `json:"intro"`
	Text      string        `json:"text"`
	HTML      []string      `json:"html"`
	Seen      bool          `json:"seen"`
	CreatedAt time.Time     `json:"createdAt"`
}

func (m messageJSON) message() Message {
	to := make([]Address, len(m.To))
	for i, a := range m.To {
		to[i] = Address(a)
	}
	return Message{
		ID:        m.ID,
		From:      Address(m.From),
		To:        to,
		Subject:   m.Subject,
		Intro:     m.Intro,
		Text:      m.Text,
		HTML:      m.HTML,
		Seen:      m.Seen,
		CreatedAt: m.CreatedAt,
	}
}
