package canon

import (
	"crypto/sha256"
	"encoding/base64"
	"net/url"
	"strings"
)

// HeaderField is one entry of an ordered header multi-map. The same name may
// appear in multiple fields (under any casing); the canonicalizer detects that
// explicitly rather than relying on a case-insensitive container.
type HeaderField struct {
	Name   string
	Values []string
}

// authorizationHeader is excluded from the h claim unconditionally, under any
// casing and regardless of duplication.
const authorizationHeader = "authorization"

// Digest returns the base64url (unpadded) SHA-256 of data. Hashing empty input
// is a valid, expected case.
func Digest(data []byte) string {
	sum := sha256.Sum256(data)
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// Headers reduces an ordered header multi-map to the h claim inputs: the
// lowercased names that survive disambiguation, in first-encountered order,
// and the canonical string "{name}: {value}" lines joined by "\n" with no
// trailing newline.
//
// A name survives only when it appears under exactly one casing variant and
// that variant carries exactly one value. Empty names and empty sole values
// are dropped. Dropping repeated names removes any ambiguity about which
// value was signed.
func Headers(fields []HeaderField) ([]string, string) {
	type group struct {
		value   string
		values  int
		casings map[string]struct{}
	}

	order := make([]string, 0, len(fields))
	groups := make(map[string]*group, len(fields))

	for _, f := range fields {
		lower := strings.ToLower(f.Name)
		if lower == authorizationHeader {
			continue
		}
		g, ok := groups[lower]
		if !ok {
			g = &group{casings: make(map[string]struct{}, 1)}
			groups[lower] = g
			order = append(order, lower)
		}
		g.casings[f.Name] = struct{}{}
		g.values += len(f.Values)
		if len(f.Values) == 1 {
			g.value = f.Values[0]
		}
	}

	names := make([]string, 0, len(order))
	lines := make([]string, 0, len(order))
	for _, lower := range order {
		g := groups[lower]
		if len(g.casings) != 1 || g.values != 1 {
			continue
		}
		if lower == "" || g.value == "" {
			continue
		}
		names = append(names, lower)
		lines = append(lines, lower+": "+g.value)
	}

	return names, strings.Join(lines, "\n")
}

// Query reduces a raw query component to the q claim inputs: the parameter
// names that survive disambiguation, in first-encountered order, and the
// canonical string "n1=v1&n2=v2".
//
// Segments are split on "&" and each non-empty segment once on "="; names and
// values are kept literal except that a literal space becomes %20, matching
// the path claim convention. A name occurring more than once (exact string
// match) is dropped entirely. An absent or empty query yields an empty
// canonical string.
func Query(rawQuery string) ([]string, string) {
	segments := strings.Split(rawQuery, "&")

	order := make([]string, 0, len(segments))
	seen := make(map[string]int, len(segments))
	values := make(map[string]string, len(segments))

	for _, seg := range segments {
		if seg == "" {
			continue
		}
		name, value := seg, ""
		if i := strings.Index(seg, "="); i >= 0 {
			name, value = seg[:i], seg[i+1:]
		}
		if _, ok := seen[name]; !ok {
			order = append(order, name)
		}
		seen[name]++
		values[name] = value
	}

	names := make([]string, 0, len(order))
	parts := make([]string, 0, len(order))
	for _, name := range order {
		if seen[name] != 1 {
			continue
		}
		escaped := escapeSpaces(name)
		names = append(names, escaped)
		parts = append(parts, escaped+"="+escapeSpaces(values[name]))
	}

	return names, strings.Join(parts, "&")
}

var defaultPorts = map[string]string{
	"http":  "80",
	"https": "443",
}

// Host returns the u claim value for an absolute URI: the lower-cased host
// with ":{port}" appended only when the port is non-default for the scheme.
// ok is false when the URI is relative or has no host.
func Host(u *url.URL) (string, bool) {
	if u == nil || !u.IsAbs() || u.Host == "" {
		return "", false
	}
	host := strings.ToLower(u.Hostname())
	if port := u.Port(); port != "" && port != defaultPorts[strings.ToLower(u.Scheme)] {
		host += ":" + port
	}
	return host, true
}

// Path returns the p claim value: the path component with literal spaces
// percent-encoded as %20. Works for absolute and relative URIs; a root path
// with no segments yields "/".
func Path(u *url.URL) string {
	if u == nil || u.Path == "" {
		return "/"
	}
	return escapeSpaces(u.Path)
}

func escapeSpaces(s string) string {
	return strings.ReplaceAll(s, " ", "%20")
}
