package limiter

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIPRateLimiter_AllowsWithinBurst(t *testing.T) {
	req := require.New(t)
	l := NewIPRateLimiter(1, 3)

	for i := 0; i < 3; i++ {
		req.True(l.Allow("10.0.0.1:4000"), "attempt %d should be within burst", i)
	}

	// The bucket is exhausted.
	req.False(l.Allow("10.0.0.1:4001"))
}

func TestIPRateLimiter_TracksAddressesIndependently(t *testing.T) {
	req := require.New(t)
	l := NewIPRateLimiter(0.001, 1)

	req.True(l.Allow("10.0.0.1:4000"))
	req.False(l.Allow("10.0.0.1:5000"))

	// A different host has its own bucket; the port does not matter.
	req.True(l.Allow("10.0.0.2:4000"))
}

func TestIPRateLimiter_FallsBackToRawAddress(t *testing.T) {
	req := require.New(t)
	l := NewIPRateLimiter(0.001, 1)

	// Addresses without a port are keyed as-is.
	req.True(l.Allow("pipe"))
	req.False(l.Allow("pipe"))
}

func TestIPRateLimiter_ManyAddresses(t *testing.T) {
	req := require.New(t)
	l := NewIPRateLimiter(1, 1)

	for i := 0; i < 100; i++ {
		req.True(l.Allow(fmt.Sprintf("10.0.%d.1:4000", i)))
	}
}
