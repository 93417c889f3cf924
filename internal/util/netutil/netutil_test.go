package netutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJoinHostPort(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		ip   string
		port int
		want string
	}{
		{name: "ipv4", ip: "10.0.1.5", port: 2377, want: "10.0.1.5:2377"},
		{name: "ipv6", ip: "fd00::1", port: 2377, want: "[fd00::1]:2377"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, JoinHostPort(tt.ip, tt.port))
		})
	}
}
