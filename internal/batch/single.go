package batch

import (
	"context"
	"fmt"
	"strings"

	"github.com/zarlcorp/zpersona/internal/identity"
)

// Request describes one interactively generated record.
type Request struct {
	Country        string
	IncludeAddress bool
	IncludeEmail   bool
}

// Single generates one enhanced record. Unlike Generate it does not fall
// back: a provider failure is returned so the caller can show it. An empty
// country means US.
func (e *Engine) Single(ctx context.Context, req Request) (identity.Record, error) {
	country := strings.ToUpper(strings.TrimSpace(req.Country))
	if country == "" {
		country = defaultCountry
	}
	if !identity.IsSupported(country) {
		return identity.Record{}, &ValidationError{Problems: []string{"Unsupported countries: " + req.Country}}
	}

	base := e.local.Identity(country)
	if e.users != nil {
		id, err := e.users.FetchUser(ctx, country)
		if err != nil {
			return identity.Record{}, fmt.Errorf("fetch identity: %w", err)
		}
		base = e.normalise(id, country)
	}

	rec := identity.Record{
		ID:                e.newID(),
		Identity:          e.enhancer.Enhance(base),
		NetworkIdentifier: identity.LoopbackIP,
		CreatedAt:         e.now().UnixMilli(),
	}

	if req.IncludeAddress {
		if e.addresses == nil {
			rec.Address = identity.DefaultAddress(country)
		} else {
			ip, err := e.addresses.NetworkIdentifier(ctx)
			if err != nil {
				return identity.Record{}, fmt.Errorf("resolve network identifier: %w", err)
			}
			coords, err := e.addresses.Coordinates(ctx, ip)
			if err != nil {
				return identity.Record{}, fmt.Errorf("locate %s: %w", ip, err)
			}
			addr, err := e.addresses.RandomAddress(ctx, coords.Latitude, coords.Longitude)
			if err != nil {
				return identity.Record{}, fmt.Errorf("find address: %w", err)
			}
			rec.Address = addr
			rec.NetworkIdentifier = ip
		}
	}

	if req.IncludeEmail && e.emails != nil {
		rec.Email = e.emails.Email()
	}
	return rec, nil
}
