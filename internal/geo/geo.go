// Package geo resolves the caller's network identifier, its approximate
// coordinates and a nearby postal address.
package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/zarlcorp/zpersona/internal/identity"
)

const (
	defaultEchoURL    = "https://api.ipify.org?format=json"
	defaultGeoIPURL   = "http://ip-api.com/json/"
	defaultGeocodeURL = "https://nominatim.openstreetmap.org"
	defaultUserAgent  = "zpersona/1.0"

	// maxJitter is the largest offset in degrees applied to each axis
	// before reverse geocoding.
	maxJitter = 0.02
)

// Config configures the client. Zero values select the public endpoints.
type Config struct {
	EchoURL    string
	GeoIPURL   string
	GeocodeURL string
	UserAgent  string
	Timeout    time.Duration

	// DisableDNS skips the OpenDNS lookup and goes straight to the echo
	// endpoint.
	DisableDNS bool
}

// Client talks to the ip echo, ip geolocation and reverse geocoding
// services. Each call is independent and may fail on its own.
type Client struct {
	echoURL    string
	geoIPURL   string
	geocodeURL string
	userAgent  string
	http       *http.Client
	lookup     lookupFunc
	rand       identity.Rand
	log        *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithRand sets the random source used for coordinate jitter.
func WithRand(r identity.Rand) Option {
	return func(c *Client) { c.rand = r }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// NewClient creates a geo client.
func NewClient(cfg Config, opts ...Option) *Client {
	if cfg.EchoURL == "" {
		cfg.EchoURL = defaultEchoURL
	}
	if cfg.GeoIPURL == "" {
		cfg.GeoIPURL = defaultGeoIPURL
	}
	if cfg.GeocodeURL == "" {
		cfg.GeocodeURL = defaultGeocodeURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	c := &Client{
		echoURL:    cfg.EchoURL,
		geoIPURL:   strings.TrimRight(cfg.GeoIPURL, "/"),
		geocodeURL: strings.TrimRight(cfg.GeocodeURL, "/"),
		userAgent:  cfg.UserAgent,
		http:       &http.Client{Timeout: cfg.Timeout},
		lookup:     openDNSLookup,
		log:        slog.New(slog.DiscardHandler),
	}
	if cfg.DisableDNS {
		c.lookup = nil
	}
	for _, o := range opts {
		o(c)
	}
	if c.rand == nil {
		c.rand = identity.NewRand()
	}
	return c
}

// Coordinates returns the approximate location of ip.
func (c *Client) Coordinates(ctx context.Context, ip string) (identity.Coordinates, error) {
	body, err := c.get(ctx, c.geoIPURL+"/"+url.PathEscape(ip))
	if err != nil {
		return identity.Coordinates{}, fmt.Errorf("coordinates %s: %w", ip, err)
	}

	var resp struct {
		Status  string  `json:"status"`
		Message string  `json:"message"`
		Lat     float64 `json:"lat"`
		Lon     float64 `json:"lon"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return identity.Coordinates{}, fmt.Errorf("coordinates %s: unmarshal: %w", ip, err)
	}

	if resp.Status != "success" {
		msg := resp.Message
		if msg == "" {
			msg = resp.Status
		}
		return identity.Coordinates{}, fmt.Errorf("coordinates %s: lookup failed: %s", ip, msg)
	}

	return identity.Coordinates{Latitude: resp.Lat, Longitude: resp.Lon}, nil
}

// RandomAddress moves the point by up to ±0.02° on each axis and reverse
// geocodes the result. The returned address carries the jittered point.
func (c *Client) RandomAddress(ctx context.Context, lat, lon float64) (identity.Address, error) {
	lat += c.jitter()
	lon += c.jitter()

	q := url.Values{}
	q.Set("format", "jsonv2")
	q.Set("lat", strconv.FormatFloat(lat, 'f', 6, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', 6, 64))
	q.Set("addressdetails", "1")

	body, err := c.get(ctx, c.geocodeURL+"/reverse?"+q.Encode())
	if err != nil {
		return identity.Address{}, fmt.Errorf("reverse geocode: %w", err)
	}

	var resp reverseResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return identity.Address{}, fmt.Errorf("reverse geocode: unmarshal: %w", err)
	}
	if resp.Error != "" {
		return identity.Address{}, fmt.Errorf("reverse geocode: %s", resp.Error)
	}

	a := resp.Address
	road := a.Road
	if a.HouseNumber != "" && road != "" {
		road = a.HouseNumber + " " + road
	}

	return identity.Address{
		Road:        road,
		City:        firstNonEmpty(a.City, a.Town, a.Village),
		State:       a.State,
		Postcode:    a.Postcode,
		Country:     a.Country,
		Coordinates: &identity.Coordinates{Latitude: lat, Longitude: lon},
	}, nil
}

// jitter returns a uniform offset in [-maxJitter, maxJitter].
func (c *Client) jitter() float64 {
	const steps = 1_000_000
	return (float64(c.rand.IntN(2*steps+1))/steps - 1) * maxJitter
}

func (c *Client) get(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, &Error{StatusCode: resp.StatusCode, URL: u}
	}

	return body, nil
}

// Error is a non-2xx response from one of the services.
type Error struct {
	StatusCode int
	URL        string
}

func (e *Error) Error() string {
	return fmt.Sprintf("geo: %s returned status %d", e.URL, e.StatusCode)
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

type reverseResponse struct {
	Error   string `json:"error"`
	Address struct {
		HouseNumber string `json:"house_number"`
		Road        string `json:"road"`
		City        string `json:"city"`
		Town        string `json:"town"`
		Village     string `json:"village"`
		State       string `json:"state"`
		Postcode    string `json:"postcode"`
		Country     string `json:"country"`
	} `json:"address"`
}
