package state

import "time"

var (
	NodeConfigPath     = "/etc/lsd/node.yaml"
	TopologyConfigPath = "/etc/lsd/topology.yaml"
	DefaultIPCDir      = "/var/run/lsd"

	// DefaultTOS marks link sockets as network control traffic (CS6)
	DefaultTOS = 0xc0

	MaxNameLen = 100

	// SocketBufferSize is requested for the send and receive buffers of link sockets
	SocketBufferSize = 256 * 1024

	BindRetryDelay    = time.Second * 10
	LinkDumpDelay     = time.Second * 30
	DnsRefreshDelay   = time.Minute * 1
	HostLookupTimeout = time.Second * 2
	HostRetryDelay    = time.Second * 30
	IPCTimeout        = time.Second * 5
	SlowDispatch      = time.Millisecond * 4
)

// debugging switches, set from the command line
var (
	DBG_debug     = false
	DBG_trace     = false
	DBG_log_links = false
)
