package deck

import (
	"errors"
	"regexp"
	"strconv"
	"time"
)

// ErrInvalidPIN is returned when a PIN is not exactly three digits.
var ErrInvalidPIN = errors.New("pin must be three digits")

var pinPattern = regexp.MustCompile(`^\d{3}$`)

// ParsePIN validates a three digit PIN and returns its numeric value (0-999).
func ParsePIN(pin string) (int, error) {
	if !pinPattern.MatchString(pin) {
		return 0, ErrInvalidPIN
	}
	n, err := strconv.Atoi(pin)
	if err != nil {
		return 0, ErrInvalidPIN
	}
	return n, nil
}

// EncodePIN returns now with its sub-second part replaced by pin milliseconds.
// The storage service compares this field between the stored and the
// incoming record to authorize updates.
func EncodePIN(now time.Time, pin string) (time.Time, error) {
	n, err := ParsePIN(pin)
	if err != nil {
		return time.Time{}, err
	}
	t := now.UTC().Truncate(time.Second)
	return t.Add(time.Duration(n) * time.Millisecond), nil
}

// PINFromDate extracts the millisecond field of t.
func PINFromDate(t time.Time) int {
	return t.Nanosecond() / int(time.Millisecond)
}

// RoundDate clears the sub-second part of t so the PIN is not echoed back.
func RoundDate(t time.Time) time.Time {
	return t.Truncate(time.Second)
}
