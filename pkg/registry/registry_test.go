package registry

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		tld      string
		notFound string
		limit    string
	}{
		{"cz", "ERROR:101: no entries found", "Your connection limit exceeded."},
		{"SK", "Not found.", "Your connection limit exceeded."},
		{".com", `No match for "`, "WHOIS LIMIT EXCEEDED"},
		{"net", `No match for "`, "WHOIS LIMIT EXCEEDED"},
		{" org ", "NOT FOUND", "WHOIS LIMIT EXCEEDED"},
	}

	for _, tc := range tests {
		t.Run(tc.tld, func(t *testing.T) {
			p, err := Lookup(tc.tld)
			require.NoError(t, err)
			assert.Equal(t, tc.notFound, p.NotFound)
			assert.Equal(t, tc.limit, p.ConnectionLimit)
			assert.NotEmpty(t, p.Server)
		})
	}
}

func TestLookup_Unsupported(t *testing.T) {
	_, err := Lookup("de")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedTLD))
	assert.Contains(t, err.Error(), `"de"`)
}

func TestSupported(t *testing.T) {
	assert.Equal(t, []string{"cz", "sk", "com", "net", "org"}, Supported())

	// Callers must not be able to edit the table through the returned slice.
	s := Supported()
	s[0] = "xx"
	_, err := Lookup("cz")
	assert.NoError(t, err)
}

func TestFQDN(t *testing.T) {
	p, err := Lookup("cz")
	require.NoError(t, err)
	assert.Equal(t, "caferene.cz", p.FQDN("caferene"))
}
