package google

import (
	"golang.org/x/time/rate"
	"google.golang.org/api/option"
)

// base carries what both API adapters share: the outbound rate limit and any
// extra client options (endpoint overrides in tests).
type base struct {
	limiter *rate.Limiter
	opts    []option.ClientOption
}

func newBase(rps float64, opts []option.ClientOption) base {
	if rps <= 0 {
		rps = 5
	}
	return base{
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		opts:    opts,
	}
}
