package sys

import (
	"context"
	"fmt"
	"net"
	"net/netip"

	"github.com/encodeous/lsd/state"
	"golang.org/x/net/ipv4"
	"golang.org/x/net/ipv6"
)

// UDPBinder binds link endpoint sockets on a single local address
type UDPBinder struct {
	Addr netip.Addr // unset binds every IPv4 address
	Tos  int        // type of service / traffic class, 0 leaves the system default
}

func (b *UDPBinder) network() (string, netip.Addr) {
	if !b.Addr.IsValid() {
		return "udp4", netip.IPv4Unspecified()
	}
	if b.Addr.Unmap().Is4() {
		return "udp4", b.Addr.Unmap()
	}
	return "udp6", b.Addr
}

func (b *UDPBinder) setTos(conn *net.UDPConn, network string) error {
	if b.Tos == 0 {
		return nil
	}
	if network == "udp4" {
		return ipv4.NewPacketConn(conn).SetTOS(b.Tos)
	}
	return ipv6.NewPacketConn(conn).SetTrafficClass(b.Tos)
}

func (b *UDPBinder) Bind(port uint16) (*state.Socket, error) {
	network, addr := b.network()
	lc := net.ListenConfig{Control: setBuffers}
	pc, err := lc.ListenPacket(context.Background(), network, netip.AddrPortFrom(addr, port).String())
	if err != nil {
		return nil, err
	}
	conn := pc.(*net.UDPConn)
	if err = b.setTos(conn, network); err != nil {
		conn.Close()
		return nil, fmt.Errorf("setting tos on %s: %w", conn.LocalAddr(), err)
	}
	fd, err := socketFd(conn)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return &state.Socket{Conn: conn, Fd: fd}, nil
}

func socketFd(conn *net.UDPConn) (int, error) {
	rc, err := conn.SyscallConn()
	if err != nil {
		return state.Unbound, err
	}
	fd := state.Unbound
	err = rc.Control(func(h uintptr) {
		fd = int(h)
	})
	if err != nil {
		return state.Unbound, err
	}
	return fd, nil
}
