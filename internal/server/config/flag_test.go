package config

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{name: "all flags", args: []string{"cmd",
			"-a", "127.0.0.1:9090", "-d", "memory", "-s", "secret",
			"-t", "30", "-r", "localhost:6379", "-m", "3", "-l", "10",
			"-e", "admin@mithaimart.test", "-p", "sweet-secret",
		}, expected: &Config{
			EndpointAddrHTTP:            "127.0.0.1:9090",
			DatabaseDSN:                 "memory",
			SecretKey:                   "secret",
			AccessTokenValidityDuration: 30 * time.Minute,
			RedisAddr:                   "localhost:6379",
			MaxLoginAttempts:            3,
			LoginCooldown:               10 * time.Minute,
			AdminEmail:                  "admin@mithaimart.test",
			AdminPassword:               "sweet-secret",
		}},
		{name: "unknown flags are ignored", args: []string{"cmd", "-x", "1", "-a", ":1"},
			expected: &Config{EndpointAddrHTTP: ":1"}},
		{name: "non-numeric duration panics", args: []string{"cmd", "-t", "soon"}, expectPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args

			config := &Config{}

			if tt.expectPanic {
				require.Panics(t, func() { parseFlags(config) })
				return
			}
			require.NotPanics(t, func() { parseFlags(config) })
			assert.Empty(t, cmp.Diff(tt.expected, config))
		})
	}
}
