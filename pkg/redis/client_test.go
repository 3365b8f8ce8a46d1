package redis

import (
	"context"
	"testing"

	"github.com/muhammadchandra19/economy/pkg/errors"
	"github.com/muhammadchandra19/economy/pkg/logger"
	"github.com/stretchr/testify/assert"
)

func TestConnectValidation(t *testing.T) {
	testCases := []struct {
		name    string
		config  func() *Config
		wantMsg string
	}{
		{
			name:    "nil config",
			config:  func() *Config { return nil },
			wantMsg: "Redis config is nil",
		},
		{
			name:    "no addresses",
			config:  DefaultConfig,
			wantMsg: "Redis addresses are empty",
		},
		{
			name: "unknown mode",
			config: func() *Config {
				cfg := DefaultConfig()
				cfg.Addrs = []string{"localhost:6379"}
				cfg.Mode = "sentinel"
				return cfg
			},
			wantMsg: "Invalid Redis mode",
		},
		{
			name: "zero pool",
			config: func() *Config {
				cfg := DefaultConfig()
				cfg.Addrs = []string{"localhost:6379"}
				cfg.PoolSize = 0
				return cfg
			},
			wantMsg: "Invalid Redis pool size",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := NewClient(logger.NewNopLogger(), tc.config())
			err := c.Connect(context.Background())
			assert.EqualError(t, err, tc.wantMsg)
			assert.True(t, errors.ErrorCodeEquals(err, string(errors.RedisConfigError)))
		})
	}
}

func TestDisconnectWithoutConnect(t *testing.T) {
	c := NewClient(logger.NewNopLogger(), DefaultConfig())
	err := c.Disconnect(context.Background())
	assert.True(t, errors.ErrorCodeEquals(err, string(errors.RedisDisconnectionError)))
}
