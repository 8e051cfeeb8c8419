package util

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var nonAlphaNum = regexp.MustCompile(`[^A-Za-z0-9]`)

// SanitizeGroup converts a string into a valid Ansible group name.
// Ansible group names are case sensitive and should avoid spaces,
// hyphens and other punctuation, so every non-alphanumeric rune
// becomes an underscore.
func SanitizeGroup(s string) string {
	s = nonAlphaNum.ReplaceAllString(s, "_")
	if s == "" {
		return "unknown"
	}
	return s
}

// ParseBool accepts the boolean spellings found in ini files and
// environment variables: true/false, 1/0, yes/no (case insensitive).
func ParseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes":
		return true, nil
	case "false", "0", "no":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean %q", s)
}

// CoerceMetaValue maps a Consul node-meta string onto a typed host
// variable. Consul meta values are always strings; digit strings become
// ints and true/false become bools so the inventory consumer gets
// usable types. A digit string too large for int stays a string rather
// than wrapping.
func CoerceMetaValue(v string) any {
	v = strings.TrimSpace(v)
	if v == "" {
		return v
	}
	if isDigits(v) {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		return v
	}
	switch strings.ToLower(v) {
	case "true":
		return true
	case "false":
		return false
	}
	return v
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
