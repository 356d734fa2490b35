package logx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnonymizeIP(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"203.0.113.57:4321", "203.0.113.0"},
		{"203.0.113.57", "203.0.113.0"},
		{"127.0.0.1:9999", "127.0.0.1"},
		{"[2001:db8:1234:5678:9abc:def0:1234:5678]:443", "2001:db8:1234:5678::"},
		{"not-an-ip", "unknown_ip"},
		{"", "unknown_ip"},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, anonymizeIP(tc.in), "input %q", tc.in)
	}
}
