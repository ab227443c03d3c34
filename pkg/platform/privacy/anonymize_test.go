package privacy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnonymizeIP(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"192.168.1.47", "192.168.1.0"},
		{"::ffff:203.0.113.9", "203.0.113.0"},
		{"2001:db8:85a3::8a2e:370:7334", "2001:db8:85a3::"},
		{"", "unknown"},
		{"unknown", "unknown"},
		{"not-an-ip", "invalid"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, AnonymizeIP(tt.in))
		})
	}
}

func TestIsPublicIP(t *testing.T) {
	assert.True(t, IsPublicIP("81.2.69.142"))
	assert.True(t, IsPublicIP("2a00:1450:4007::1"))
	assert.False(t, IsPublicIP("127.0.0.1"))
	assert.False(t, IsPublicIP("10.1.2.3"))
	assert.False(t, IsPublicIP("fe80::1"))
	assert.False(t, IsPublicIP("garbage"))
}
