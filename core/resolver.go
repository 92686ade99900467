package core

import (
	"context"
	"fmt"
	"net"
	"net/netip"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/encodeous/lsd/state"
	"github.com/jellydator/ttlcache/v3"
)

// HostResolver names nodes for diagnostics. Configured host names are returned as-is.
// Configured addresses are reverse-resolved in the background: until a name is cached the address itself is returned,
// and failed lookups are retried after HostRetryDelay.
type HostResolver struct {
	hosts   map[state.NodeId]string
	cache   *ttlcache.Cache[state.NodeId, string]
	lookup  func(ctx context.Context, addr string) ([]string, error)
	janitor atomic.Bool

	ctx     context.Context
	cancel  context.CancelFunc
	mu      sync.Mutex
	pending map[state.NodeId]struct{}
	wg      sync.WaitGroup
}

func NewHostResolver(hosts map[state.NodeId]string, resolver *net.Resolver) *HostResolver {
	ctx, cancel := context.WithCancel(context.Background())
	return &HostResolver{
		hosts: hosts,
		cache: ttlcache.New[state.NodeId, string](
			ttlcache.WithTTL[state.NodeId, string](state.DnsRefreshDelay),
			ttlcache.WithDisableTouchOnHit[state.NodeId, string](),
		),
		lookup:  resolver.LookupAddr,
		ctx:     ctx,
		cancel:  cancel,
		pending: make(map[state.NodeId]struct{}),
	}
}

// Start runs the cache janitor until Stop is called
func (r *HostResolver) Start() {
	if r.janitor.Swap(true) {
		return
	}
	go r.cache.Start()
}

// Stop cancels outstanding lookups and waits for them to finish
func (r *HostResolver) Stop() {
	r.mu.Lock()
	r.cancel()
	r.mu.Unlock()
	r.wg.Wait()
	if r.janitor.Swap(false) {
		r.cache.Stop()
	}
}

// HostForNode never blocks on the network
func (r *HostResolver) HostForNode(node state.NodeId) string {
	if item := r.cache.Get(node); item != nil {
		return item.Value()
	}
	host, ok := r.hosts[node]
	if !ok {
		return fmt.Sprintf("unknown-%d", node)
	}
	addr, err := netip.ParseAddr(host)
	if err != nil {
		// already a name
		return host
	}
	r.resolve(node, host, addr)
	return host
}

func (r *HostResolver) resolve(node state.NodeId, host string, addr netip.Addr) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ctx.Err() != nil {
		return
	}
	if _, ok := r.pending[node]; ok {
		return
	}
	r.pending[node] = struct{}{}
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer func() {
			r.mu.Lock()
			delete(r.pending, node)
			r.mu.Unlock()
		}()
		ctx, cancel := context.WithTimeout(r.ctx, state.HostLookupTimeout)
		defer cancel()
		names, err := r.lookup(ctx, addr.String())
		if r.ctx.Err() != nil {
			return
		}
		if err != nil || len(names) == 0 {
			r.cache.Set(node, host, state.HostRetryDelay)
			return
		}
		r.cache.Set(node, strings.TrimSuffix(names[0], "."), ttlcache.DefaultTTL)
	}()
}
