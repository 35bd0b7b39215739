package dnscheck

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type stubResolver struct {
	records []*net.MX
	err     error
	delay   time.Duration
	calls   int
}

func (s *stubResolver) LookupMX(ctx context.Context, name string) ([]*net.MX, error) {
	s.calls++
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return s.records, s.err
}

func TestHasMX(t *testing.T) {
	tests := []struct {
		name     string
		resolver *stubResolver
		want     bool
	}{
		{
			name:     "records present",
			resolver: &stubResolver{records: []*net.MX{{Host: "mx1.example.com.", Pref: 10}}},
			want:     true,
		},
		{
			name:     "no records",
			resolver: &stubResolver{},
			want:     false,
		},
		{
			name:     "nxdomain",
			resolver: &stubResolver{err: &net.DNSError{Err: "no such host", Name: "example.invalid", IsNotFound: true}},
			want:     false,
		},
		{
			name:     "network error",
			resolver: &stubResolver{err: errors.New("connection refused")},
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewWithResolver(tt.resolver, time.Second)
			assert.Equal(t, tt.want, c.HasMX(context.Background(), "example.com"))
		})
	}
}

func TestHasMXTimeout(t *testing.T) {
	resolver := &stubResolver{
		records: []*net.MX{{Host: "mx1.example.com.", Pref: 10}},
		delay:   200 * time.Millisecond,
	}
	c := NewWithResolver(resolver, 20*time.Millisecond)

	start := time.Now()
	assert.False(t, c.HasMX(context.Background(), "example.com"))
	assert.Less(t, time.Since(start), 150*time.Millisecond)
}

func TestNewDefaultsTimeout(t *testing.T) {
	c := NewWithResolver(&stubResolver{}, 0)
	assert.Equal(t, defaultTimeout, c.timeout)
}
