// Package registry holds the built-in per-TLD WHOIS profiles.
//
// Registries do not agree on a response format, so each profile carries the
// substrings that mark an unregistered domain and a throttled connection.
package registry

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedTLD is returned by Lookup for TLDs missing from the table
var ErrUnsupportedTLD = errors.New("unsupported TLD")

// Profile describes how one registry answers WHOIS queries
type Profile struct {
	// TLD without the leading dot
	TLD string

	// Server is the registry's WHOIS host
	Server string

	// NotFound is present in the response body of an unregistered domain
	NotFound string

	// ConnectionLimit is present in the response body when the registry throttles us
	ConnectionLimit string
}

var profiles = []Profile{
	{
		TLD:             "cz",
		Server:          "whois.nic.cz",
		NotFound:        "ERROR:101: no entries found",
		ConnectionLimit: "Your connection limit exceeded.",
	},
	{
		TLD:             "sk",
		Server:          "whois.sk-nic.sk",
		NotFound:        "Not found.",
		ConnectionLimit: "Your connection limit exceeded.",
	},
	{
		TLD:             "com",
		Server:          "whois.verisign-grs.com",
		NotFound:        `No match for "`,
		ConnectionLimit: "WHOIS LIMIT EXCEEDED",
	},
	{
		TLD:             "net",
		Server:          "whois.verisign-grs.com",
		NotFound:        `No match for "`,
		ConnectionLimit: "WHOIS LIMIT EXCEEDED",
	},
	{
		TLD:             "org",
		Server:          "whois.pir.org",
		NotFound:        "NOT FOUND",
		ConnectionLimit: "WHOIS LIMIT EXCEEDED",
	},
}

// Lookup returns the profile for tld. Case and a leading dot are ignored.
func Lookup(tld string) (Profile, error) {
	key := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(tld)), ".")
	for _, p := range profiles {
		if p.TLD == key {
			return p, nil
		}
	}
	return Profile{}, fmt.Errorf("%w: %q", ErrUnsupportedTLD, tld)
}

// Supported lists the known TLDs in table order
func Supported() []string {
	tlds := make([]string, 0, len(profiles))
	for _, p := range profiles {
		tlds = append(tlds, p.TLD)
	}
	return tlds
}

// FQDN joins label and the profile's TLD
func (p Profile) FQDN(label string) string {
	return label + "." + p.TLD
}
