package identity

import (
	"fmt"
	"strings"
	"time"

	"github.com/zarlcorp/zpersona/internal/luhn"
)

const (
	minAge = 18
	maxAge = 80

	birthdayLayout = "2006-01-02"
)

// Enhancer attaches derived auxiliary fields to a base identity. It holds
// no state beyond its random source and clock.
type Enhancer struct {
	rand Rand
	now  func() time.Time
}

// NewEnhancer creates an enhancer. A nil now uses time.Now.
func NewEnhancer(r Rand, now func() time.Time) *Enhancer {
	if now == nil {
		now = time.Now
	}
	return &Enhancer{rand: r, now: now}
}

// Enhance returns a copy of id with all five enhancement fields freshly
// generated. Name, phone and national ID are copied unchanged. Calling it
// on an already enhanced identity replaces the fields; callers that need
// stability check Enhanced first.
func (e *Enhancer) Enhance(id Identity) Identity {
	id.Birthday = e.Birthday()
	id.BloodType = pick(e.rand, BloodTypes)
	id.Occupation = pick(e.rand, Occupations)
	id.Education = pick(e.rand, EducationLevels)
	id.CreditCard = e.CreditCard()
	return id
}

// Birthday returns an ISO date whose full-years age today lies in [18, 80].
// Days are drawn from 1-28 so every month is valid.
func (e *Enhancer) Birthday() string {
	now := e.now()
	age := minAge + e.rand.IntN(maxAge-minAge+1)
	month := time.Month(1 + e.rand.IntN(12))
	day := 1 + e.rand.IntN(28)

	year := now.Year() - age
	// birthday still ahead this year: one more year back keeps the age exact
	if month > now.Month() || (month == now.Month() && day > now.Day()) {
		year--
	}

	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Format(birthdayLayout)
}

// CreditCard returns a Luhn-valid card number formatted 4-4-4-4, or 4-6-5
// for 15 digit American Express numbers.
func (e *Enhancer) CreditCard() string {
	prefix := pick(e.rand, cardPrefixes)
	length := 16
	if prefix == "34" || prefix == "37" {
		length = 15
	}

	var b strings.Builder
	b.WriteString(prefix)
	for b.Len() < length-1 {
		b.WriteByte(byte('0' + e.rand.IntN(10)))
	}

	number, err := luhn.Append(b.String())
	if err != nil {
		// payload is built from digits only
		panic("identity: " + err.Error())
	}
	return FormatCard(number)
}

// FormatCard groups a bare card number with hyphens: 4-6-5 for 15 digits,
// 4-4-4-4 for 16. Other lengths are returned as-is.
func FormatCard(number string) string {
	switch len(number) {
	case 15:
		return number[:4] + "-" + number[4:10] + "-" + number[10:]
	case 16:
		return number[:4] + "-" + number[4:8] + "-" + number[8:12] + "-" + number[12:]
	}
	return number
}

// CardBrand names the issuer for a card number by its prefix.
func CardBrand(number string) string {
	d := luhn.Digits(number)
	switch {
	case strings.HasPrefix(d, "4"):
		return "Visa"
	case strings.HasPrefix(d, "34"), strings.HasPrefix(d, "37"):
		return "American Express"
	case strings.HasPrefix(d, "6011"):
		return "Discover"
	case len(d) >= 2 && d[0] == '5' && d[1] >= '1' && d[1] <= '5':
		return "MasterCard"
	}
	return "Unknown"
}

// Age returns the full years elapsed since an ISO birthday.
func Age(birthday string) (int, error) {
	return AgeAt(birthday, time.Now())
}

// AgeAt returns the full years elapsed between birthday and now, one less
// when now falls before the anniversary in its year.
func AgeAt(birthday string, now time.Time) (int, error) {
	b, err := time.Parse(birthdayLayout, birthday)
	if err != nil {
		return 0, fmt.Errorf("parse birthday %q: %w", birthday, err)
	}

	age := now.Year() - b.Year()
	if now.Month() < b.Month() || (now.Month() == b.Month() && now.Day() < b.Day()) {
		age--
	}
	return age, nil
}
