// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"net/url"
	"sync"

	"golang.org/x/time/rate"
)

// Limiter throttles requests per host. Hosts without an explicit rate use
// the default rate.
type Limiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rates    map[string]rate.Limit
	def      rate.Limit
	burst    int
}

// NewLimiter returns a Limiter allowing perSecond requests per host. A
// perSecond of zero or less disables throttling for unconfigured hosts.
func NewLimiter(perSecond float64) *Limiter {
	def := rate.Inf
	if perSecond > 0 {
		def = rate.Limit(perSecond)
	}
	return &Limiter{
		limiters: make(map[string]*rate.Limiter),
		rates:    make(map[string]rate.Limit),
		def:      def,
		burst:    1,
	}
}

// SetHostRate overrides the rate for one host. It must be called before the
// first request to that host.
func (l *Limiter) SetHostRate(host string, perSecond float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rates[host] = rate.Limit(perSecond)
}

// Wait blocks until a request to rawURL is allowed or ctx is done.
func (l *Limiter) Wait(ctx context.Context, rawURL string) error {
	if l == nil {
		return nil
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return err
	}
	return l.limiterFor(u.Host).Wait(ctx)
}

func (l *Limiter) limiterFor(host string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	if lim, ok := l.limiters[host]; ok {
		return lim
	}
	r, ok := l.rates[host]
	if !ok {
		r = l.def
	}
	lim := rate.NewLimiter(r, l.burst)
	l.limiters[host] = lim
	return lim
}
