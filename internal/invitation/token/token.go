// Package token owns the invitation token format and the transport-damage
// normalizer. Tokens are opaque url-safe base64; links travel through URL
// query strings, email clients and copy-paste, each of which can mutate the
// stored form.
package token

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"net/url"
	"strings"
)

var ErrNotFound = errors.New("token_not_found")

const rawTokenBytes = 24

// New generates a fresh opaque token in the canonical stored form.
func New() (string, error) {
	buf := make([]byte, rawTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// LookupFunc reports whether a candidate matches a stored token.
type LookupFunc func(ctx context.Context, candidate string) (bool, error)

// Resolve canonicalizes an externally-supplied token by probing the ordered
// candidate set against the store and returning the first hit. It is pure
// given the lookup function.
func Resolve(ctx context.Context, raw string, lookup LookupFunc) (string, error) {
	for _, candidate := range Candidates(raw) {
		ok, err := lookup(ctx, candidate)
		if err != nil {
			return "", err
		}
		if ok {
			return candidate, nil
		}
	}
	return "", ErrNotFound
}

// Candidates expands raw into the ordered, deduplicated set of plausible
// originals. Transport layers may have applied percent-encoding once or
// twice, substituted spaces for '+', stripped or duplicated '=' padding, or
// swapped the url-safe and standard base64 alphabets; none of that is
// knowable from the damaged string alone, so every combination is probed in
// a fixed order with the untouched input first.
func Candidates(raw string) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(candidate string) {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" {
			return
		}
		if _, ok := seen[candidate]; ok {
			return
		}
		seen[candidate] = struct{}{}
		out = append(out, candidate)
	}

	frontier := []string{strings.TrimSpace(raw)}
	add(frontier[0])

	// Two expansion rounds cover stacked mutations (e.g. double
	// percent-encoding over a padding-stripped token).
	for round := 0; round < 2; round++ {
		var next []string
		for _, candidate := range frontier {
			for _, variant := range variants(candidate) {
				if _, ok := seen[variant]; !ok {
					next = append(next, variant)
				}
				add(variant)
			}
		}
		frontier = next
	}

	return out
}

func variants(candidate string) []string {
	var out []string

	if decoded, err := url.QueryUnescape(candidate); err == nil && decoded != candidate {
		out = append(out, decoded)
	}

	if strings.Contains(candidate, " ") {
		out = append(out, strings.ReplaceAll(candidate, " ", "+"))
	}

	if strings.ContainsAny(candidate, "+/") {
		replacer := strings.NewReplacer("+", "-", "/", "_")
		out = append(out, replacer.Replace(candidate))
	}
	if strings.ContainsAny(candidate, "-_") {
		replacer := strings.NewReplacer("-", "+", "_", "/")
		out = append(out, replacer.Replace(candidate))
	}

	if trimmed := strings.TrimRight(candidate, "="); trimmed != candidate {
		out = append(out, trimmed)
	}
	if padded := withCanonicalPadding(candidate); padded != candidate {
		out = append(out, padded)
	}

	return out
}

// withCanonicalPadding re-pads a stripped or over-padded base64 string to
// the length the standard alphabet would carry.
func withCanonicalPadding(candidate string) string {
	trimmed := strings.TrimRight(candidate, "=")
	switch len(trimmed) % 4 {
	case 2:
		return trimmed + "=="
	case 3:
		return trimmed + "="
	default:
		return trimmed
	}
}
