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
		{
			name: "all flags",
			args: []string{"cmd",
				"-a", "127.0.0.1:8081", "-g", "127.0.0.1:9090", "-d", "db", "-s", "secret", "-j", "HS512",
				"-t", "15", "-k", "12", "-l", "debug", "-u", "user", "-p", "password", "-b", "bucket",
				"-r", "us-west-1", "-e", "http://endpoint",
			},
			expected: &Config{
				EndpointAddrHTTP:            "127.0.0.1:8081",
				EndpointAddrGRPC:            "127.0.0.1:9090",
				DatabaseDSN:                 "db",
				SecretKey:                   "secret",
				TokenAlgorithm:              "HS512",
				AccessTokenValidityDuration: 15 * time.Minute,
				BcryptCost:                  12,
				LogLevel:                    "debug",
				S3RootUser:                  "user",
				S3RootPassword:              "password",
				S3Bucket:                    "bucket",
				S3Region:                    "us-west-1",
				S3BaseEndpoint:              "http://endpoint",
			},
		},
		{
			name:     "config flag is ignored here",
			args:     []string{"cmd", "-c", "server.json", "-t", "5"},
			expected: &Config{AccessTokenValidityDuration: 5 * time.Minute},
		},
		{
			name:        "non-numeric ttl",
			args:        []string{"cmd", "-t", "soon"},
			expectPanic: true,
		},
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
