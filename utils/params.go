package utils

import (
	"net/http"
	"strconv"
	"strings"

	"agromart/apperr"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// ParseLimit reads ?limit=. Absent means DefaultLimit, zero is kept so the
// caller can return an empty list, and values above MaxLimit are capped.
func ParseLimit(r *http.Request) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("limit"))
	if raw == "" {
		return DefaultLimit, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, apperr.Validation("limit must be a non-negative integer")
	}
	if n > MaxLimit {
		n = MaxLimit
	}
	return n, nil
}

// ParseBool reads a boolean query flag; anything but "true" or "1" is false.
func ParseBool(r *http.Request, key string) bool {
	v := strings.ToLower(strings.TrimSpace(r.URL.Query().Get(key)))
	return v == "true" || v == "1"
}
