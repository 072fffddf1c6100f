package validation

import (
	"regexp"
	"strings"
	"time"
)

type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Basic validators
func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v[field] = "required"
	}
}

func NonNegativeFloat(field string, val float64, v Violations) {
	if val < 0 {
		v[field] = "must_not_be_negative"
	}
}

func MinInt(field string, val, minVal int, v Violations) {
	if val < minVal {
		v[field] = "below_minimum"
	}
}

// ISODate flags a value that is present but not a YYYY-MM-DD date.
func ISODate(field, value string, v Violations) {
	if value == "" {
		return
	}
	if _, err := time.Parse("2006-01-02", value); err != nil {
		v[field] = "invalid_date"
	}
}

var timeRe = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// ClockTime flags a value that is present but not an HH:MM time.
func ClockTime(field, value string, v Violations) {
	if value == "" {
		return
	}
	if !timeRe.MatchString(value) {
		v[field] = "invalid_time"
	}
}

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func Email(field, value string, v Violations) {
	if value == "" {
		return
	}
	if !emailRe.MatchString(value) {
		v[field] = "invalid_email"
	}
}
