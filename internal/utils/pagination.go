package utils

import (
	"errors"
	"strconv"
	"strings"
)

const (
	DefaultLimit = 100
	MaxLimit     = 200
)

var (
	ErrInvalidSkip  = errors.New("skip must be a non-negative integer")
	ErrInvalidLimit = errors.New("limit must be an integer between 1 and 200")
)

// ParseSkipLimit reads the skip/limit query pair. Empty values take defaults.
func ParseSkipLimit(rawSkip, rawLimit string) (skip, limit int, err error) {
	skip, limit = 0, DefaultLimit

	if s := strings.TrimSpace(rawSkip); s != "" {
		skip, err = strconv.Atoi(s)
		if err != nil || skip < 0 {
			return 0, 0, ErrInvalidSkip
		}
	}

	if s := strings.TrimSpace(rawLimit); s != "" {
		limit, err = strconv.Atoi(s)
		if err != nil || limit < 1 || limit > MaxLimit {
			return 0, 0, ErrInvalidLimit
		}
	}

	return skip, limit, nil
}

func ParseID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}

	return id, true
}
