// Package batch generates identity records in bulk, falling back to local
// data whenever a network provider fails.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/segmentio/ksuid"

	"github.com/zarlcorp/zpersona/internal/identity"
)

// MinCount and MaxCount bound Options.Count.
const (
	MinCount = 1
	MaxCount = 100

	// DefaultDelay is the pause between records, which keeps the public
	// providers from rate limiting us.
	DefaultDelay = 100 * time.Millisecond

	defaultCountry = "US"
)

// UserProvider fetches a base identity (name, phone, national ID) for a
// country.
type UserProvider interface {
	FetchUser(ctx context.Context, country string) (identity.Identity, error)
}

// AddressProvider resolves the caller's network identifier and a postal
// address near it.
type AddressProvider interface {
	NetworkIdentifier(ctx context.Context) (string, error)
	Coordinates(ctx context.Context, ip string) (identity.Coordinates, error)
	RandomAddress(ctx context.Context, lat, lon float64) (identity.Address, error)
}

// EmailSource hands out disposable email addresses.
type EmailSource interface {
	Email() string
}

// Options describes a batch.
type Options struct {
	Count          int
	Countries      []string
	IncludeAddress bool
	IncludeEmail   bool

	// Progress, when set, is called after each iteration with the number
	// of iterations finished so far.
	Progress func(done, total int)
}

// ValidationError lists every problem found in a set of options.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid batch: " + strings.Join(e.Problems, "; ")
}

// Validate checks count bounds, that at least one country is given and
// that every country is supported. It returns a *ValidationError listing
// all violations, or nil.
func Validate(opts Options) error {
	var problems []string

	if opts.Count < MinCount || opts.Count > MaxCount {
		problems = append(problems, fmt.Sprintf("Count must be between %d and %d", MinCount, MaxCount))
	}

	if len(opts.Countries) == 0 {
		problems = append(problems, "At least one country must be selected")
	}

	var unsupported []string
	for _, c := range opts.Countries {
		if !identity.IsSupported(c) {
			unsupported = append(unsupported, c)
		}
	}
	if len(unsupported) > 0 {
		problems = append(problems, "Unsupported countries: "+strings.Join(unsupported, ", "))
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// SupportedCountries returns the country catalog in display order.
func SupportedCountries() []identity.Country {
	return identity.SupportedCountries()
}

// Engine generates records. Its collaborators are fixed at construction; a
// nil user or address provider means local data only.
type Engine struct {
	users     UserProvider
	addresses AddressProvider
	emails    EmailSource
	rand      identity.Rand
	enhancer  *identity.Enhancer
	local     *identity.LocalGenerator
	log       *slog.Logger
	delay     time.Duration
	now       func() time.Time
	newID     func() string
}

// Option configures an Engine.
type Option func(*Engine)

// WithUserProvider sets the base identity provider.
func WithUserProvider(p UserProvider) Option {
	return func(e *Engine) { e.users = p }
}

// WithAddressProvider sets the network identifier and address provider.
func WithAddressProvider(p AddressProvider) Option {
	return func(e *Engine) { e.addresses = p }
}

// WithEmailSource sets the email source used when a batch asks for emails.
func WithEmailSource(s EmailSource) Option {
	return func(e *Engine) { e.emails = s }
}

// WithRand sets the random source for country choice, enhancement and
// local fallback data.
func WithRand(r identity.Rand) Option {
	return func(e *Engine) { e.rand = r }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithDelay sets the pause between records. Zero disables it.
func WithDelay(d time.Duration) Option {
	return func(e *Engine) { e.delay = d }
}

// WithClock sets the clock used for timestamps and birthdays.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithIDFunc replaces the record ID generator.
func WithIDFunc(f func() string) Option {
	return func(e *Engine) { e.newID = f }
}

// New creates an engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		log:   slog.New(slog.DiscardHandler),
		delay: DefaultDelay,
		now:   time.Now,
		newID: func() string { return ksuid.New().String() },
	}
	for _, o := range opts {
		o(e)
	}
	if e.rand == nil {
		e.rand = identity.NewRand()
	}
	e.enhancer = identity.NewEnhancer(e.rand, e.now)
	e.local = identity.NewLocalGenerator(e.rand)
	return e
}

// Generate produces up to opts.Count records, one at a time. Provider
// failures fall back to local data; a record that still fails is logged
// and skipped. If ctx is cancelled the records made so far are returned
// together with ctx.Err(). Invalid options return a *ValidationError and
// no records.
func (e *Engine) Generate(ctx context.Context, opts Options) ([]identity.Record, error) {
	if err := Validate(opts); err != nil {
		return nil, err
	}

	records := make([]identity.Record, 0, opts.Count)
	var last int64
	for i := range opts.Count {
		if err := ctx.Err(); err != nil {
			return records, err
		}
		if i > 0 {
			if err := e.wait(ctx); err != nil {
				return records, err
			}
		}

		ts := e.now().UnixMilli() + int64(i)
		if ts <= last {
			ts = last + 1
		}

		rec, err := e.record(ctx, opts, i, ts)
		if opts.Progress != nil {
			opts.Progress(i+1, opts.Count)
		}
		if err != nil {
			e.log.Error("record failed", "index", i, "error", err)
			continue
		}

		last = ts
		records = append(records, rec)
	}

	e.log.Info("batch complete", "requested", opts.Count, "generated", len(records))
	return records, nil
}

// record builds one record. Panics from collaborators are turned into
// errors so one bad record does not end the batch.
func (e *Engine) record(ctx context.Context, opts Options, i int, ts int64) (rec identity.Record, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("record %d: panic: %v", i, r)
		}
	}()

	country := e.pickCountry(opts.Countries)
	id := e.enhancer.Enhance(e.baseIdentity(ctx, country))

	addr, ip := identity.Address{}, identity.LoopbackIP
	if opts.IncludeAddress {
		addr, ip = e.address(ctx, country)
	}

	rec = identity.Record{
		ID:                e.newID(),
		Identity:          id,
		Address:           addr,
		NetworkIdentifier: ip,
		CreatedAt:         ts,
	}
	if opts.IncludeEmail && e.emails != nil {
		rec.Email = e.emails.Email()
	}
	return rec, nil
}

func (e *Engine) pickCountry(countries []string) string {
	if len(countries) == 0 {
		return defaultCountry
	}
	return strings.ToUpper(strings.TrimSpace(countries[e.rand.IntN(len(countries))]))
}

// baseIdentity asks the user provider and falls back to local data.
func (e *Engine) baseIdentity(ctx context.Context, country string) identity.Identity {
	if e.users == nil {
		return e.local.Identity(country)
	}

	id, err := e.users.FetchUser(ctx, country)
	if err != nil {
		e.log.Warn("user provider failed, using local data", "country", country, "error", err)
		return e.local.Identity(country)
	}
	return e.normalise(id, country)
}

// normalise makes a provider identity follow the country table: the
// national ID label always comes from the table, and missing values are
// filled locally.
func (e *Engine) normalise(id identity.Identity, country string) identity.Identity {
	if id.Name.First == "" || id.Name.Last == "" {
		local := e.local.Identity(country)
		id.Name = local.Name
	}
	if id.Phone == "" {
		id.Phone = e.local.Phone(country)
	}
	if id.NationalID.Value == "" {
		id.NationalID = e.local.NationalID(country)
	}
	id.NationalID.Label = identity.CountryFor(country).IDLabel
	return id
}

// address resolves network identifier, coordinates and address in turn.
// Any failure yields the canned country address; the network identifier
// keeps whatever was resolved before the failure.
func (e *Engine) address(ctx context.Context, country string) (identity.Address, string) {
	ip := identity.LoopbackIP
	if e.addresses == nil {
		return identity.DefaultAddress(country), ip
	}

	resolved, err := e.addresses.NetworkIdentifier(ctx)
	if err != nil {
		e.log.Warn("network identifier failed, using default address", "country", country, "error", err)
		return identity.DefaultAddress(country), ip
	}
	ip = resolved

	coords, err := e.addresses.Coordinates(ctx, ip)
	if err != nil {
		e.log.Warn("coordinates failed, using default address", "country", country, "error", err)
		return identity.DefaultAddress(country), ip
	}

	addr, err := e.addresses.RandomAddress(ctx, coords.Latitude, coords.Longitude)
	if err != nil {
		e.log.Warn("address lookup failed, using default address", "country", country, "error", err)
		return identity.DefaultAddress(country), ip
	}
	return addr, ip
}

func (e *Engine) wait(ctx context.Context) error {
	if e.delay <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(e.delay)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
