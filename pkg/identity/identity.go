// Package identity canonicalizes account identifiers so that records from
// independently-maintained exports can be joined on a single key. Raw
// identifiers differ in casing, whitespace, and domain form across sources;
// every identifier is reduced to exactly one canonical Identity string.
package identity

import "strings"

// Identity is the canonical string form of an account key. Two raw
// identifiers refer to the same account iff their Identity values are
// byte-equal.
type Identity string

// String returns the string representation of an identity.
func (id Identity) String() string {
	return string(id)
}

// ExternalMarker separates an external account's mangled address from the
// home tenant domain in its canonical form.
const ExternalMarker = "#EXT#@"

// Config holds the domain suffixes appended during normalization.
type Config struct {
	// HomeTenantDomain is appended (behind ExternalMarker) to identifiers
	// that contain an '@' and are therefore external email addresses.
	HomeTenantDomain string `json:"home_tenant_domain" yaml:"home_tenant_domain"`

	// LocalDomain is appended to identifiers without an '@'.
	LocalDomain string `json:"local_domain" yaml:"local_domain"`
}

// DefaultConfig returns the domain configuration for the standard tenant.
func DefaultConfig() Config {
	return Config{
		HomeTenantDomain: "liveuclac.onmicrosoft.com",
		LocalDomain:      "ucl.ac.uk",
	}
}

// Normalize maps a raw identifier to its canonical identity. It is total
// (never fails; an empty input yields the bare local-domain suffix) and
// idempotent: feeding a canonical identity back through returns it unchanged.
//
// Rules, in order:
//  1. Trim surrounding whitespace and lowercase.
//  2. Identifiers containing '@' are external email addresses: every '@'
//     becomes '_' and the external suffix "#EXT#@<home-tenant-domain>" is
//     appended.
//  3. Anything else is a local account: "@<local-domain>" is appended.
//
// Callers that want to reject blank identifiers must filter them before
// calling; the extractors do this per source.
func (c Config) Normalize(raw string) Identity {
	s := strings.TrimSpace(raw)

	// Already-canonical forms pass through untouched. Without this check an
	// external identity would be re-mangled on a second pass because its
	// suffix contains '@'.
	ext := ExternalMarker + strings.ToLower(c.HomeTenantDomain)
	if strings.HasSuffix(s, ext) {
		return Identity(s)
	}

	s = strings.ToLower(s)

	if local, ok := strings.CutSuffix(s, "@"+strings.ToLower(c.LocalDomain)); ok && !strings.Contains(local, "@") {
		return Identity(s)
	}

	if strings.Contains(s, "@") {
		return Identity(strings.ReplaceAll(s, "@", "_") + ext)
	}
	return Identity(s + "@" + strings.ToLower(c.LocalDomain))
}

// IsExternal reports whether an identity is in external (guest) form.
func (c Config) IsExternal(id Identity) bool {
	return strings.HasSuffix(string(id), ExternalMarker+strings.ToLower(c.HomeTenantDomain))
}
