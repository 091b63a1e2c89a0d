// Package luhn computes and checks mod-10 check digits for card numbers.
package luhn

import (
	"errors"
	"strings"
)

// ErrNotNumeric is returned when a payload contains anything but ASCII digits.
var ErrNotNumeric = errors.New("luhn: payload must be non-empty and numeric")

// CheckDigit returns the digit that makes payload+digit pass Valid.
// The rightmost payload digit is doubled, since the check digit will sit
// to its right.
func CheckDigit(payload string) (int, error) {
	if payload == "" {
		return 0, ErrNotNumeric
	}
	for i := 0; i < len(payload); i++ {
		if payload[i] < '0' || payload[i] > '9' {
			return 0, ErrNotNumeric
		}
	}

	sum := checksum(payload, true)
	return (10 - sum%10) % 10, nil
}

// Append returns payload with its check digit appended.
func Append(payload string) (string, error) {
	d, err := CheckDigit(payload)
	if err != nil {
		return "", err
	}
	return payload + string(rune('0'+d)), nil
}

// Valid strips every non-digit from number and reports whether the
// remaining digits carry a correct trailing check digit.
func Valid(number string) bool {
	digits := Digits(number)
	if digits == "" {
		return false
	}
	return checksum(digits, false)%10 == 0
}

// Digits returns s with every non-digit removed.
func Digits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// checksum walks digits right to left, doubling alternate positions.
// double says whether the rightmost digit is doubled.
func checksum(digits string, double bool) int {
	sum := 0
	for i := len(digits) - 1; i >= 0; i-- {
		d := int(digits[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum
}
