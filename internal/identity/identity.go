// Package identity models generated personas and synthesises their fields.
// Generation draws from an injected Rand so callers can make it
// deterministic; the default source is seeded from crypto/rand.
package identity

import "time"

// Name is a person's given and family name.
type Name struct {
	First string `json:"first"`
	Last  string `json:"last"`
}

// NationalID is a country specific identification number with its label,
// e.g. {"SSN", "123-45-6789"}.
type NationalID struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Identity holds a persona's personal fields. The last five fields are the
// enhancement set and are either all present or all empty.
type Identity struct {
	Name       Name       `json:"name"`
	Phone      string     `json:"phone"`
	NationalID NationalID `json:"nationalId"`
	Birthday   string     `json:"birthday,omitempty"`
	BloodType  string     `json:"bloodType,omitempty"`
	Occupation string     `json:"occupation,omitempty"`
	Education  string     `json:"education,omitempty"`
	CreditCard string     `json:"creditCard,omitempty"`
}

// FullName returns "First Last".
func (id Identity) FullName() string {
	return id.Name.First + " " + id.Name.Last
}

// Enhanced reports whether the enhancement fields have been populated.
func (id Identity) Enhanced() bool {
	return id.Birthday != ""
}

// Coordinates is a WGS84 point.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Address is a postal address. Every field is optional and the zero value
// is a valid, empty address.
type Address struct {
	Road        string       `json:"road,omitempty"`
	City        string       `json:"city,omitempty"`
	State       string       `json:"state,omitempty"`
	Postcode    string       `json:"postcode,omitempty"`
	Country     string       `json:"country,omitempty"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
}

// IsZero reports whether no address field is set.
func (a Address) IsZero() bool {
	return a == Address{}
}

// Parts returns the non-empty textual parts in display order.
func (a Address) Parts() []string {
	var parts []string
	for _, p := range []string{a.Road, a.City, a.State, a.Postcode, a.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

// LoopbackIP is the network identifier used when none was resolved.
const LoopbackIP = "127.0.0.1"

// Record is one generated identity with its address and metadata. It is
// the unit kept in history and exported.
type Record struct {
	ID                string   `json:"id"`
	Identity          Identity `json:"identity"`
	Address           Address  `json:"address"`
	NetworkIdentifier string   `json:"networkIdentifier"`
	CreatedAt         int64    `json:"createdAt"`
	Starred           bool     `json:"starred"`
	Email             string   `json:"email,omitempty"`
}

// Created returns CreatedAt as a time in UTC.
func (r Record) Created() time.Time {
	return time.UnixMilli(r.CreatedAt).UTC()
}
