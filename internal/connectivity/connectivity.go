package connectivity

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/sony/gobreaker"

	"docuscore-backend/internal/shared/config"
	"docuscore-backend/internal/shared/metrics"
	"docuscore-backend/internal/shared/telemetry"
)

const (
	ModeAuto    = "auto"
	ModeOnline  = "online"
	ModeOffline = "offline"

	defaultProbeTimeout = 2 * time.Second
	defaultCacheTTL     = 30 * time.Second

	breakerFailures = 3
	breakerCooldown = 2 * time.Minute
)

// Provider answers whether the enhanced tier is reachable.
type Provider interface {
	Online(ctx context.Context) bool
}

// Static always reports the same answer.
type Static bool

// Online returns the fixed value.
func (s Static) Online(ctx context.Context) bool {
	return bool(s)
}

type dialFunc func(ctx context.Context, network, address string) (net.Conn, error)

// Probe reports online when a TCP dial to Addr succeeds. Results are cached for TTL.
// After repeated failed dials the breaker opens and the probe reports offline without
// dialing until the cooldown passes.
type Probe struct {
	addr    string
	timeout time.Duration
	ttl     time.Duration
	dial    dialFunc
	now     func() time.Time
	breaker *gobreaker.CircuitBreaker

	mu        sync.Mutex
	checkedAt time.Time
	online    bool
	checked   bool
}

// NewProbe constructs a Probe. Zero timeout and ttl fall back to defaults.
func NewProbe(addr string, timeout, ttl time.Duration) *Probe {
	if timeout <= 0 {
		timeout = defaultProbeTimeout
	}
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	d := &net.Dialer{}
	return &Probe{
		addr:    addr,
		timeout: timeout,
		ttl:     ttl,
		dial:    d.DialContext,
		now:     time.Now,
		breaker: newBreaker(addr),
	}
}

func newBreaker(addr string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "connectivity:" + addr,
		MaxRequests: 1,
		Timeout:     breakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			telemetry.Info("connectivity.breaker", map[string]any{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			})
		},
	})
}

// Online dials the probe address unless a fresh cached answer exists.
func (p *Probe) Online(ctx context.Context) bool {
	if p == nil {
		return false
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	if p.checked && now.Sub(p.checkedAt) < p.ttl {
		return p.online
	}

	_, err := p.breaker.Execute(func() (interface{}, error) {
		return nil, p.dialOnce(ctx)
	})
	online := err == nil

	p.online = online
	p.checked = true
	p.checkedAt = now
	metrics.SetOnline(online)
	return online
}

func (p *Probe) dialOnce(ctx context.Context) error {
	dialCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	conn, err := p.dial(dialCtx, "tcp", p.addr)
	if conn != nil {
		conn.Close()
	}
	return err
}

// FromConfig builds the provider selected by CONNECTIVITY_MODE.
func FromConfig(cfg config.Config) Provider {
	switch cfg.ConnectivityMode {
	case ModeOnline:
		metrics.SetOnline(true)
		return Static(true)
	case ModeOffline:
		metrics.SetOnline(false)
		return Static(false)
	default:
		return NewProbe(cfg.ConnectivityProbeAddr, cfg.ConnectivityProbeTimeout, cfg.ConnectivityCacheTTL)
	}
}
