package worker

import (
	"context"
	"net/url"
	"sync"

	"golang.org/x/time/rate"
)

// HostLimiter throttles outbound requests per host so one slow policy
// host cannot be hammered while another sits idle.
type HostLimiter struct {
	mu       sync.Mutex
	perHost  map[string]*rate.Limiter
	rateCfg  rate.Limit
	burstCfg int
}

// NewHostLimiter creates a limiter allowing requestsPerSecond with the
// given burst for each distinct host.
func NewHostLimiter(requestsPerSecond float64, burst int) *HostLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &HostLimiter{
		perHost:  make(map[string]*rate.Limiter),
		rateCfg:  rate.Limit(requestsPerSecond),
		burstCfg: burst,
	}
}

// Wait blocks until the host of rawURL has capacity or ctx is done.
// Sources that are not URLs share the empty-host bucket.
func (l *HostLimiter) Wait(ctx context.Context, rawURL string) error {
	return l.forHost(hostOf(rawURL)).Wait(ctx)
}

// Allow reports whether a request to the host could proceed right now.
func (l *HostLimiter) Allow(rawURL string) bool {
	return l.forHost(hostOf(rawURL)).Allow()
}

func (l *HostLimiter) forHost(host string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	limiter, ok := l.perHost[host]
	if !ok {
		limiter = rate.NewLimiter(l.rateCfg, l.burstCfg)
		l.perHost[host] = limiter
	}
	return limiter
}

func hostOf(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return parsed.Host
}
