package state

import (
	"errors"
	"fmt"
	"net"

	"github.com/google/uuid"
)

// NodeId identifies a node in the routing topology
type NodeId int

// Unbound is the handle reported for an endpoint without a bound socket
const Unbound = -1

// Identity reports the id of the node this process runs as
type Identity interface {
	LocalId() NodeId
}

// Binder binds a socket for a local link endpoint
type Binder interface {
	Bind(port uint16) (*Socket, error)
}

// Resolver maps node ids to printable host names, used for diagnostics only
type Resolver interface {
	HostForNode(node NodeId) string
}

// Socket is a bound socket owned by a link endpoint
type Socket struct {
	Conn net.PacketConn
	Fd   int
}

func (s *Socket) Close() error {
	if s.Conn == nil {
		return nil
	}
	return s.Conn.Close()
}

// Link is one edge of the topology graph. Links are owned by a LinkSet and can only be changed through it.
type Link struct {
	id    uuid.UUID
	name  string
	peers [2]NodeId
	ports [2]uint16
	cost  int

	local [2]bool
	socks [2]*Socket
}

func (l *Link) Id() uuid.UUID {
	return l.id
}

func (l *Link) Name() string {
	return l.name
}

// Peer returns the node of endpoint i
func (l *Link) Peer(i int) NodeId {
	return l.peers[i]
}

// Port returns the port of endpoint i
func (l *Link) Port(i int) uint16 {
	return l.ports[i]
}

func (l *Link) Cost() int {
	return l.cost
}

// IsLocal reports whether endpoint i was this node when the link was added
func (l *Link) IsLocal(i int) bool {
	return l.local[i]
}

// Socket returns the bound socket of endpoint i, or nil
func (l *Link) Socket(i int) *Socket {
	return l.socks[i]
}

// Fd returns the socket handle of endpoint i, or Unbound
func (l *Link) Fd(i int) int {
	if l.socks[i] == nil {
		return Unbound
	}
	return l.socks[i].Fd
}

// Up is true when every local endpoint holds a bound socket
func (l *Link) Up() bool {
	for i := range 2 {
		if l.local[i] && l.socks[i] == nil {
			return false
		}
	}
	return true
}

func (l *Link) String() string {
	return fmt.Sprintf("%s (node: %d, port: %d <-> node: %d, port: %d, cost: %d)",
		l.name, l.peers[0], l.ports[0], l.peers[1], l.ports[1], l.cost)
}

func (l *Link) closeSockets() error {
	var errs []error
	for i, sock := range l.socks {
		if sock == nil {
			continue
		}
		if err := sock.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing endpoint %d of link %s: %w", i, l.name, err))
		}
		l.socks[i] = nil
	}
	return errors.Join(errs...)
}
