// Package pool opens connections to the store.
package pool

import (
	"context"
	"net"
	"time"
)

type ConnFactory struct {
	dialTimeout time.Duration
	address     string
	network     string
}

// NewConnFactory dials address over TCP. A zero dialTimeout leaves the
// timeout to the context.
func NewConnFactory(address string, dialTimeout time.Duration) *ConnFactory {
	return &ConnFactory{
		address:     address,
		dialTimeout: dialTimeout,
		network:     "tcp",
	}
}

// WithNetwork switches the network, e.g. to "unix" for a socket path.
func (f *ConnFactory) WithNetwork(network string) *ConnFactory {
	f.network = network
	return f
}

func (f *ConnFactory) Address() string {
	return f.address
}

func (f *ConnFactory) CreateConnection(ctx context.Context) (net.Conn, error) {
	dialer := net.Dialer{Timeout: f.dialTimeout}
	return dialer.DialContext(ctx, f.network, f.address)
}
