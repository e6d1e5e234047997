// Package clientpool caches a single reusable HTTP client handle keyed by its
// configuration. The pool holds at most one live handle at a time: acquiring
// with a different configuration retires the old handle before the new one
// becomes visible.
package clientpool

import (
	"fmt"
	"log"
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

const (
	DefaultBaseURL = "http://127.0.0.1:11438/v1"
	DefaultTimeout = 30 * time.Second
)

// Config identifies a client handle. Equality is structural; two configs that
// compare equal share a handle.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// NewConfig builds a Config with defaults applied and the base URL normalized.
func NewConfig(baseURL string, timeout time.Duration) Config {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return Config{BaseURL: baseURL, Timeout: timeout}
}

// Handle is a reusable network client bound to one Config. Pooled handles are
// owned by the pool; callers borrow them for the duration of a call and must
// not retain them across configuration changes. Handles from NewPrivateHandle
// are owned by their caller instead. A handle is safe to share only within a
// single worker's sequential calls.
type Handle struct {
	HTTP   *http.Client
	Config Config

	// CloseFunc overrides the default release behavior. Used by tests and
	// custom factories that hold resources beyond idle connections.
	CloseFunc func() error
}

// Close releases the handle's underlying resources.
func (h *Handle) Close() error {
	if h.CloseFunc != nil {
		return h.CloseFunc()
	}
	if h.HTTP != nil {
		h.HTTP.CloseIdleConnections()
	}
	return nil
}

// Factory constructs a handle for a config. Factories must return a handle
// whose Config field matches the requested config.
type Factory func(cfg Config) (*Handle, error)

// Pool is a thread-safe, single-slot cache of client handles. The zero value
// is not usable; construct with New.
type Pool struct {
	mu      sync.Mutex
	current atomic.Pointer[Handle]
	factory Factory
}

// New creates a pool. A nil factory uses DefaultFactory.
func New(factory Factory) *Pool {
	if factory == nil {
		factory = DefaultFactory
	}
	return &Pool{factory: factory}
}

// Acquire returns the cached handle when its config equals cfg, otherwise it
// retires any cached handle and constructs a new one bound to cfg. Across
// concurrent Acquire calls for an equal config exactly one handle is
// constructed. Construction failure is fatal to this call; release failure of
// an old handle is logged and swallowed.
func (p *Pool) Acquire(cfg Config) (*Handle, error) {
	// Fast path: the common case is a repeat acquire with an unchanged config.
	if h := p.current.Load(); h != nil && h.Config == cfg {
		return h, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	// Re-check under the lock; another caller may have installed the handle.
	if h := p.current.Load(); h != nil {
		if h.Config == cfg {
			return h, nil
		}
		if err := h.Close(); err != nil {
			log.Printf("clientpool: release handle for %s: %v", h.Config.BaseURL, err)
		}
		p.current.Store(nil)
	}

	h, err := p.factory(cfg)
	if err != nil {
		return nil, fmt.Errorf("create client for %s: %w", cfg.BaseURL, err)
	}
	p.current.Store(h)
	return h, nil
}

// NewPrivateHandle constructs a handle bound to cfg that bypasses the cache
// entirely. The caller owns it and must Close it; the pooled slot is not
// touched. Use this when a handle must not be shared, such as one per
// benchmark worker.
func (p *Pool) NewPrivateHandle(cfg Config) (*Handle, error) {
	h, err := p.factory(cfg)
	if err != nil {
		return nil, fmt.Errorf("create client for %s: %w", cfg.BaseURL, err)
	}
	return h, nil
}

// ReleaseAll closes and clears the cached handle, if any. Idempotent.
func (p *Pool) ReleaseAll() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if h := p.current.Load(); h != nil {
		if err := h.Close(); err != nil {
			log.Printf("clientpool: release handle for %s: %v", h.Config.BaseURL, err)
		}
		p.current.Store(nil)
	}
}

// DefaultFactory builds an HTTP client handle with connection pooling and the
// config's per-request timeout.
func DefaultFactory(cfg Config) (*Handle, error) {
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          256,
		MaxIdleConnsPerHost:   32,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &Handle{
		HTTP: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
		},
		Config: cfg,
	}, nil
}
