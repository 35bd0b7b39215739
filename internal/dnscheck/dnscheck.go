// Package dnscheck answers "can this domain receive mail" by resolving
// MX records. Resolution failures of any kind are a negative answer,
// never an error: DNS unreliability must not abort an investigation.
package dnscheck

import (
	"context"
	"net"
	"time"

	"github.com/rs/zerolog/log"
)

const defaultTimeout = 3 * time.Second

// Resolver is the subset of net.Resolver used by the checker.
type Resolver interface {
	LookupMX(ctx context.Context, name string) ([]*net.MX, error)
}

// Checker resolves MX records under a bounded timeout.
type Checker struct {
	resolver Resolver
	timeout  time.Duration
}

// New returns a checker backed by the default system resolver.
func New(timeout time.Duration) *Checker {
	return NewWithResolver(net.DefaultResolver, timeout)
}

// NewWithResolver returns a checker with an injected resolver.
func NewWithResolver(resolver Resolver, timeout time.Duration) *Checker {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Checker{resolver: resolver, timeout: timeout}
}

// HasMX reports whether domain has at least one MX record. NXDOMAIN,
// timeouts and network errors all map to false.
func (c *Checker) HasMX(ctx context.Context, domain string) bool {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	records, err := c.resolver.LookupMX(ctx, domain)
	if err != nil {
		log.Debug().Err(err).Str("domain", domain).Msg("MX lookup failed")
		return false
	}
	return len(records) > 0
}
