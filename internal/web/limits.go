package web

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// hostLimits keeps one limiter per host, each admitting a single request
// per politeness delay.
type hostLimits struct {
	every rate.Limit

	mu     sync.Mutex
	byHost map[string]*rate.Limiter
}

func newHostLimits(delay time.Duration) *hostLimits {
	every := rate.Inf
	if delay > 0 {
		every = rate.Every(delay)
	}
	return &hostLimits{every: every, byHost: make(map[string]*rate.Limiter)}
}

func (h *hostLimits) limiter(host string) *rate.Limiter {
	host = strings.ToLower(host)
	h.mu.Lock()
	defer h.mu.Unlock()
	l, ok := h.byHost[host]
	if !ok {
		l = rate.NewLimiter(h.every, 1)
		h.byHost[host] = l
	}
	return l
}

// Wait blocks until host may be contacted again or ctx is done.
func (h *hostLimits) Wait(ctx context.Context, host string) error {
	return h.limiter(host).Wait(ctx)
}
