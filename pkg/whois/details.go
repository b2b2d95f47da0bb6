package whois

import (
	"fmt"
	"time"

	whoisparser "github.com/likexian/whois-parser"
)

// Details holds registration data read from a registered domain's response
type Details struct {
	Registrar  string
	Expiration time.Time
}

// ParseDetails extracts the registrar and expiration date from a raw response
func ParseDetails(raw string) (Details, error) {
	parsed, err := whoisparser.Parse(raw)
	if err != nil {
		return Details{}, fmt.Errorf("WHOIS parse failed: %w", err)
	}

	var d Details
	if parsed.Registrar != nil {
		d.Registrar = parsed.Registrar.Name
	}
	if parsed.Domain != nil && parsed.Domain.ExpirationDate != "" {
		exp, err := ParseExpiration(parsed.Domain.ExpirationDate)
		if err != nil {
			return d, fmt.Errorf("invalid expiration date %q: %w", parsed.Domain.ExpirationDate, err)
		}
		d.Expiration = exp
	}
	return d, nil
}

// ParseExpiration tries RFC3339 then date-only formats
func ParseExpiration(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}
