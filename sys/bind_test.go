package sys

import (
	"net"
	"net/netip"
	"testing"

	"github.com/encodeous/lsd/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUDPBinder_Bind(t *testing.T) {
	b := &UDPBinder{Addr: netip.MustParseAddr("127.0.0.1"), Tos: state.DefaultTOS}
	sock, err := b.Bind(0)
	require.NoError(t, err)
	defer sock.Close()

	assert.GreaterOrEqual(t, sock.Fd, 0)
	addr := sock.Conn.LocalAddr().(*net.UDPAddr)
	assert.True(t, addr.IP.IsLoopback())
	assert.NotZero(t, addr.Port)
}

func TestUDPBinder_Roundtrip(t *testing.T) {
	b := &UDPBinder{Addr: netip.MustParseAddr("127.0.0.1")}
	a, err := b.Bind(0)
	require.NoError(t, err)
	defer a.Close()
	c, err := b.Bind(0)
	require.NoError(t, err)
	defer c.Close()

	_, err = a.Conn.WriteTo([]byte("hello"), c.Conn.LocalAddr())
	require.NoError(t, err)
	buf := make([]byte, 16)
	n, from, err := c.Conn.ReadFrom(buf)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(buf[:n]))
	assert.Equal(t, a.Conn.LocalAddr().String(), from.String())
}

func TestUDPBinder_Unavailable(t *testing.T) {
	// TEST-NET-1 is never assigned to a local interface
	b := &UDPBinder{Addr: netip.MustParseAddr("192.0.2.1")}
	_, err := b.Bind(0)
	assert.Error(t, err)
}

func TestUDPBinder_Network(t *testing.T) {
	network, addr := (&UDPBinder{}).network()
	assert.Equal(t, "udp4", network)
	assert.Equal(t, netip.IPv4Unspecified(), addr)

	network, addr = (&UDPBinder{Addr: netip.MustParseAddr("::ffff:10.0.0.1")}).network()
	assert.Equal(t, "udp4", network)
	assert.Equal(t, netip.MustParseAddr("10.0.0.1"), addr)

	network, _ = (&UDPBinder{Addr: netip.MustParseAddr("::1")}).network()
	assert.Equal(t, "udp6", network)
}

func TestUDPBinder_PortInUse(t *testing.T) {
	b := &UDPBinder{Addr: netip.MustParseAddr("127.0.0.1")}
	first, err := b.Bind(0)
	require.NoError(t, err)
	defer first.Close()
	port := uint16(first.Conn.LocalAddr().(*net.UDPAddr).Port)

	second, err := b.Bind(port)
	if second != nil {
		second.Close()
	}
	assert.Error(t, err, "binding an address that is already bound must fail")
	assert.Nil(t, second)
}

func TestUDPBinder_LinkSetPortInUse(t *testing.T) {
	b := &UDPBinder{Addr: netip.MustParseAddr("127.0.0.1")}
	free, err := b.Bind(0)
	require.NoError(t, err)
	port := uint16(free.Conn.LocalAddr().(*net.UDPAddr).Port)
	require.NoError(t, free.Close())

	ls := state.NewLinkSet(state.LocalCfg{Id: 1}, b, state.Policy{})
	defer ls.Close()

	first, err := ls.Add(1, port, 2, 200, 5, "L1")
	require.NoError(t, err)
	assert.True(t, first.Up())

	second, err := ls.Add(1, port, 3, 300, 5, "L2")
	var bindErr *state.BindError
	require.ErrorAs(t, err, &bindErr)
	assert.Equal(t, "L2", bindErr.Link)
	assert.Equal(t, port, bindErr.Port)
	require.NotNil(t, second)
	assert.False(t, second.Up())
	assert.Equal(t, state.Unbound, second.Fd(0))
}
