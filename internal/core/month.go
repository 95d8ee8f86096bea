package core

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// MonthKeyLayout is the time layout of a canonical month key, e.g. "March-2024".
const MonthKeyLayout = "January-2006"

// MonthKey identifies one stored record set.
type MonthKey string

// MonthKeyFor returns the key of the calendar month containing t.
func MonthKeyFor(t time.Time) MonthKey {
	return MonthKey(t.Format(MonthKeyLayout))
}

// ParseMonthKey validates s and returns it in canonical form.
func ParseMonthKey(s string) (MonthKey, error) {
	s = strings.TrimSpace(s)
	t, err := time.Parse(MonthKeyLayout, s)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidMonthKey, s)
	}
	return MonthKeyFor(t), nil
}

func (k MonthKey) String() string {
	return string(k)
}

// Validate reports whether k is a canonical month key.
func (k MonthKey) Validate() error {
	canon, err := ParseMonthKey(string(k))
	if err != nil {
		return err
	}
	if canon != k {
		return fmt.Errorf("%w: %q is not canonical, want %q", ErrInvalidMonthKey, string(k), string(canon))
	}
	return nil
}

// Time returns the first instant of the month in UTC.
func (k MonthKey) Time() (time.Time, error) {
	t, err := time.Parse(MonthKeyLayout, string(k))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidMonthKey, string(k))
	}
	return t, nil
}

// SortMonthKeys orders keys chronologically. Malformed keys go last in
// lexical order so the result is stable for any input.
func SortMonthKeys(keys []MonthKey) {
	sort.SliceStable(keys, func(i, j int) bool {
		ti, erri := keys[i].Time()
		tj, errj := keys[j].Time()
		switch {
		case erri == nil && errj == nil:
			if ti.Equal(tj) {
				return keys[i] < keys[j]
			}
			return ti.Before(tj)
		case erri == nil:
			return true
		case errj == nil:
			return false
		default:
			return keys[i] < keys[j]
		}
	})
}
