package utils

import (
	"errors"
	"testing"
)

func TestParseSkipLimit(t *testing.T) {
	tests := []struct {
		name      string
		skip      string
		limit     string
		wantSkip  int
		wantLimit int
		wantErr   error
	}{
		{name: "defaults", wantSkip: 0, wantLimit: 100},
		{name: "explicit", skip: "20", limit: "10", wantSkip: 20, wantLimit: 10},
		{name: "max limit", limit: "200", wantLimit: 200},
		{name: "negative skip", skip: "-1", wantErr: ErrInvalidSkip},
		{name: "text skip", skip: "abc", wantErr: ErrInvalidSkip},
		{name: "zero limit", limit: "0", wantErr: ErrInvalidLimit},
		{name: "limit too large", limit: "201", wantErr: ErrInvalidLimit},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			skip, limit, err := ParseSkipLimit(tt.skip, tt.limit)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("got err %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if skip != tt.wantSkip || limit != tt.wantLimit {
				t.Fatalf("got skip=%d limit=%d, want skip=%d limit=%d", skip, limit, tt.wantSkip, tt.wantLimit)
			}
		})
	}
}

func TestParseID(t *testing.T) {
	for raw, want := range map[string]bool{"1": true, "42": true, "0": false, "-3": false, "x": false, "": false} {
		if _, ok := ParseID(raw); ok != want {
			t.Fatalf("ParseID(%q) ok=%v, want %v", raw, ok, want)
		}
	}
}

func TestBuildSchoolsListCacheKey(t *testing.T) {
	if got := BuildSchoolsListCacheKey(0, 100); got != "schools:list:v1:skip=0:limit=100" {
		t.Fatalf("unexpected key %q", got)
	}
}
