package whois

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const comTaken = `   Domain Name: GOOGLE.COM
   Registry Domain ID: 2138514_DOMAIN_COM-VRSN
   Registrar WHOIS Server: whois.markmonitor.com
   Registrar URL: http://www.markmonitor.com
   Updated Date: 2019-09-09T15:39:04Z
   Creation Date: 1997-09-15T04:00:00Z
   Registry Expiry Date: 2028-09-14T04:00:00Z
   Registrar: MarkMonitor Inc.
   Registrar IANA ID: 292
   Registrar Abuse Contact Email: abusecomplaints@markmonitor.com
   Registrar Abuse Contact Phone: +1.2086851750
   Domain Status: clientDeleteProhibited https://icann.org/epp#clientDeleteProhibited
   Name Server: NS1.GOOGLE.COM
   Name Server: NS2.GOOGLE.COM
   DNSSEC: unsigned
`

func TestParseDetails(t *testing.T) {
	d, err := ParseDetails(comTaken)
	require.NoError(t, err)

	assert.Equal(t, "MarkMonitor Inc.", d.Registrar)
	assert.Equal(t, 2028, d.Expiration.Year())
}

func TestParseDetails_NotFound(t *testing.T) {
	_, err := ParseDetails("No match for \"CAFERENE.COM\".\n>>> Last update of whois database <<<\n")
	assert.Error(t, err)
}

func TestParseExpiration(t *testing.T) {
	tests := []struct {
		raw  string
		want string
		err  bool
	}{
		{"2025-05-01T12:34:56Z", "2025-05-01T12:34:56Z", false},
		{"2025-05-01", "2025-05-01T00:00:00Z", false},
		{"invalid", "", true},
	}
	for _, tc := range tests {
		got, err := ParseExpiration(tc.raw)
		if (err != nil) != tc.err {
			t.Errorf("ParseExpiration(%q) err = %v, wantErr %v", tc.raw, err, tc.err)
			continue
		}
		if err == nil && got.Format(time.RFC3339) != tc.want {
			t.Errorf("ParseExpiration(%q) = %s, want %s", tc.raw, got.Format(time.RFC3339), tc.want)
		}
	}
}
