package state

import (
	"context"
	"net"
)

// NewResolver returns a resolver that queries the given name servers in order, or the system resolver if none are given
func NewResolver(servers []string) *net.Resolver {
	if len(servers) == 0 {
		return net.DefaultResolver
	}
	return &net.Resolver{
		PreferGo: true,
		Dial: func(ctx context.Context, network, address string) (net.Conn, error) {
			d := net.Dialer{Timeout: HostLookupTimeout}
			var lastErr error
			for _, r := range servers {
				conn, err := d.DialContext(ctx, network, r)
				if err == nil {
					return conn, nil
				}
				lastErr = err
			}
			return nil, lastErr
		},
	}
}
