// Package auth guards the API with optional shared API keys.
package auth

import (
	"context"
	"crypto/subtle"
	"strings"
)

type Validator interface {
	Validate(ctx context.Context, apiKey string) bool
}

// StaticKeys accepts any of a fixed, comma-separated set of keys.
type StaticKeys struct {
	keys [][]byte
}

// NewStaticKeys parses "k1,k2". It returns nil when no key is configured,
// which callers treat as auth disabled.
func NewStaticKeys(spec string) *StaticKeys {
	var keys [][]byte
	for _, key := range strings.Split(spec, ",") {
		key = strings.TrimSpace(key)
		if key != "" {
			keys = append(keys, []byte(key))
		}
	}
	if len(keys) == 0 {
		return nil
	}
	return &StaticKeys{keys: keys}
}

func (s *StaticKeys) Validate(_ context.Context, apiKey string) bool {
	candidate := []byte(apiKey)
	matched := 0
	for _, key := range s.keys {
		matched |= subtle.ConstantTimeCompare(key, candidate)
	}
	return matched == 1
}
