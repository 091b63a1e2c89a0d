package mail

import (
	"cmp"
	"regexp"
	"slices"
	"strings"
	"unicode"
)

// hints are words that mark a nearby token as a verification code.
var hints = []string{
	"verification", "verify", "code", "otp", "one-time", "passcode",
	"confirm", "pin", "security", "2fa", "login", "sign in", "authenticate",
}

var (
	tokenRe = regexp.MustCompile(`\b[A-Za-z0-9]{4,8}\b`)
	linkRe  = regexp.MustCompile(`https?://\S+|\S+@\S+\.\S+`)
	tagRe   = regexp.MustCompile(`<[^>]*>`)
	yearRe  = regexp.MustCompile(`^(19|20)\d{2}$`)
)

// hintRadius is how many bytes either side of a token are searched for a
// hint.
const hintRadius = 60

type candidate struct {
	value string
	score int
}

// Verifications returns the likely verification codes in text, most likely
// first. Numeric codes of 4, 6 or 8 digits qualify anywhere except as years
// or parts of prices, times and longer numbers; 6 character codes mixing
// letters and digits qualify only near a hint word.
func Verifications(text string) []string {
	if text == "" {
		return nil
	}

	// links and addresses often embed digit runs
	clean := linkRe.ReplaceAllStringFunc(text, func(s string) string {
		return strings.Repeat(" ", len(s))
	})
	lower := lowerASCII(clean)

	var found []candidate
	seen := make(map[string]bool)
	for _, loc := range tokenRe.FindAllStringIndex(clean, -1) {
		start, end := loc[0], loc[1]
		tok := clean[start:end]
		if seen[tok] {
			continue
		}

		near := hinted(lower, start, end)
		var score int
		switch {
		case isDigits(tok):
			if !qualifiesNumeric(clean, tok, start, end, near) {
				continue
			}
			score = numericScore(len(tok))
		case len(tok) == 6 && mixed(tok) && near:
			score = 10
		default:
			continue
		}

		if near {
			score += 50
		}
		if leadIn(lower[:start]) {
			score += 20
		}

		seen[tok] = true
		found = append(found, candidate{value: tok, score: score})
	}

	if len(found) == 0 {
		return nil
	}

	slices.SortStableFunc(found, func(a, b candidate) int {
		return cmp.Compare(b.score, a.score)
	})

	out := make([]string, len(found))
	for i, c := range found {
		out[i] = c.value
	}
	return out
}

func qualifiesNumeric(text, tok string, start, end int, near bool) bool {
	switch len(tok) {
	case 4, 6, 8:
	default:
		return false
	}

	before := byte(' ')
	if start > 0 {
		before = text[start-1]
	}
	after := byte(' ')
	if end < len(text) {
		after = text[end]
	}

	switch {
	case before == '$' || (start > 1 && text[start-2] == '$'):
		return false
	case before == ':' || after == ':':
		return false
	case before == '.' && start > 1 && isDigit(text[start-2]):
		return false
	case after == '.' && end+1 < len(text) && isDigit(text[end+1]):
		return false
	case before == ',' && start > 1 && isDigit(text[start-2]):
		return false
	case after == ',' && end+1 < len(text) && isDigit(text[end+1]):
		return false
	}

	if len(tok) == 4 && yearRe.MatchString(tok) && !near {
		return false
	}
	return true
}

func numericScore(n int) int {
	switch n {
	case 6:
		return 30
	case 8:
		return 20
	}
	return 15
}

func hinted(lower string, start, end int) bool {
	window := lower[max(0, start-hintRadius):min(len(lower), end+hintRadius)]
	for _, h := range hints {
		if strings.Contains(window, h) {
			return true
		}
	}
	return false
}

// leadIn reports whether the text before a token ends like "code: " or
// "code is ".
func leadIn(before string) bool {
	before = strings.TrimRight(before, " \t")
	return strings.HasSuffix(before, ":") ||
		strings.HasSuffix(before, "-") ||
		strings.HasSuffix(before, " is")
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	return true
}

// lowerASCII lower-cases ASCII letters only, so byte offsets into the
// result match the input.
func lowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + 'a' - 'A'
		}
	}
	return string(b)
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func mixed(s string) bool {
	var letter, digit bool
	for _, r := range s {
		letter = letter || unicode.IsLetter(r)
		digit = digit || unicode.IsDigit(r)
	}
	return letter && digit
}

// stripTags turns an HTML body into whitespace separated text.
func stripTags(html string) string {
	return strings.Join(strings.Fields(tagRe.ReplaceAllString(html, " ")), " ")
}
