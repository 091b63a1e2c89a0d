package identity

import "strings"

// Country describes the generation rules for one country code. Templates
// use D for a random digit and L for a random uppercase letter.
type Country struct {
	Code           string
	Name           string
	PhoneTemplate  string
	IDLabel        string
	IDTemplate     string
	DefaultAddress Address
}

var (
	usAddress = Address{
		Road:        "123 Main Street",
		City:        "New York",
		State:       "NY",
		Postcode:    "10001",
		Country:     "United States",
		Coordinates: &Coordinates{Latitude: 40.7128, Longitude: -74.0060},
	}
	ukAddress = Address{
		Road:        "10 Downing Street",
		City:        "London",
		State:       "England",
		Postcode:    "SW1A 2AA",
		Country:     "United Kingdom",
		Coordinates: &Coordinates{Latitude: 51.5074, Longitude: -0.1278},
	}
	caAddress = Address{
		Road:        "100 Queen Street",
		City:        "Toronto",
		State:       "ON",
		Postcode:    "M5H 2N2",
		Country:     "Canada",
		Coordinates: &Coordinates{Latitude: 43.6532, Longitude: -79.3832},
	}
)

const (
	usPhone = "+1-DDD-DDD-DDDD"
	usID    = "DDD-DD-DDDD"
)

// countries is ordered; SupportedCountries returns it in this order.
var countries = []Country{
	{"US", "United States", usPhone, "SSN", usID, usAddress},
	{"UK", "United Kingdom", "+44-DDDD-DDDDDD", "National Insurance Number", "LLDDDDDDL", ukAddress},
	{"CA", "Canada", "+1-DDD-DDD-DDDD", "Social Insurance Number", "DDD-DDD-DDD", caAddress},
	{"AU", "Australia", "+61-D-DDDD-DDDD", "Tax File Number", "DDDDDDDDD", usAddress},
	{"DE", "Germany", "+49-DDD-DDDDDDD", "Personalausweisnummer", "DDDDDDDDDD", usAddress},
	{"FR", "France", "+33-D-DD-DD-DD-DD", "Numéro de Sécurité Sociale", "DDDDDDDDDDDDDDD", usAddress},
	{"JP", "Japan", usPhone, "ID Number", usID, usAddress},
	{"KR", "South Korea", usPhone, "ID Number", usID, usAddress},
	{"CN", "China", usPhone, "ID Number", usID, usAddress},
	{"IN", "India", usPhone, "ID Number", usID, usAddress},
}

// unknownCountry is used for any code outside the table.
var unknownCountry = Country{
	Name:           "Unknown",
	PhoneTemplate:  usPhone,
	IDLabel:        "ID Number",
	IDTemplate:     usID,
	DefaultAddress: usAddress,
}

// SupportedCountries returns the fixed, ordered country catalog.
func SupportedCountries() []Country {
	out := make([]Country, len(countries))
	copy(out, countries)
	return out
}

// IsSupported reports whether code is in the catalog. Codes are matched
// case-insensitively.
func IsSupported(code string) bool {
	_, ok := lookup(code)
	return ok
}

// CountryFor returns the rules for code, or the unknown-country fallback.
func CountryFor(code string) Country {
	if c, ok := lookup(code); ok {
		return c
	}
	c := unknownCountry
	c.Code = strings.ToUpper(code)
	return c
}

// DefaultAddress returns a canned address for code. Only US, UK and CA
// have their own; every other code gets the US address.
func DefaultAddress(code string) Address {
	a := CountryFor(code).DefaultAddress
	if a.Coordinates != nil {
		c := *a.Coordinates
		a.Coordinates = &c
	}
	return a
}

func lookup(code string) (Country, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	for _, c := range countries {
		if c.Code == code {
			return c, true
		}
	}
	return Country{}, false
}

// LocalGenerator builds base identities without any network access. It is
// the fallback when the identity provider is unavailable.
type LocalGenerator struct {
	rand Rand
}

// NewLocalGenerator creates a local generator drawing from r.
func NewLocalGenerator(r Rand) *LocalGenerator {
	return &LocalGenerator{rand: r}
}

// Identity returns a base identity (no enhancement fields) formatted for
// the given country.
func (g *LocalGenerator) Identity(code string) Identity {
	c := CountryFor(code)
	return Identity{
		Name: Name{
			First: pick(g.rand, firstNames),
			Last:  pick(g.rand, lastNames),
		},
		Phone: fill(g.rand, c.PhoneTemplate),
		NationalID: NationalID{
			Label: c.IDLabel,
			Value: fill(g.rand, c.IDTemplate),
		},
	}
}

// Phone returns a phone number formatted for code.
func (g *LocalGenerator) Phone(code string) string {
	return fill(g.rand, CountryFor(code).PhoneTemplate)
}

// NationalID returns a national ID formatted for code.
func (g *LocalGenerator) NationalID(code string) NationalID {
	c := CountryFor(code)
	return NationalID{Label: c.IDLabel, Value: fill(g.rand, c.IDTemplate)}
}
