package state

import (
	"net/netip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0600))
	return p
}

func TestReadLocalConfig(t *testing.T) {
	p := writeFile(t, "node.yaml", `
id: 3
bind_addr: 127.0.0.1
tos: 0
ipc_path: /tmp/lsd3.sock
bind_policy: reject
duplicate_names: reject
`)
	cfg, err := ReadLocalConfig(p)
	require.NoError(t, err)
	assert.Equal(t, NodeId(3), cfg.LocalId())
	assert.Equal(t, netip.MustParseAddr("127.0.0.1"), cfg.BindAddr)
	assert.Equal(t, 0, cfg.GetTos())
	assert.Equal(t, "/tmp/lsd3.sock", cfg.GetIpcPath())
	assert.Equal(t, Policy{Bind: BindReject, Duplicates: DuplicateReject}, cfg.Policy)
}

func TestReadLocalConfig_Defaults(t *testing.T) {
	p := writeFile(t, "node.yaml", "id: 4\n")
	cfg, err := ReadLocalConfig(p)
	require.NoError(t, err)
	assert.False(t, cfg.BindAddr.IsValid())
	assert.Equal(t, DefaultTOS, cfg.GetTos())
	assert.Equal(t, filepath.Join(DefaultIPCDir, "node4.sock"), cfg.GetIpcPath())
	assert.Equal(t, Policy{}, cfg.Policy)
}

func TestReadTopologyConfig(t *testing.T) {
	p := writeFile(t, "topology.yaml", `
nodes:
  - id: 1
    host: alpha.example
  - id: 2
    host: 10.0.0.2
  - id: 3
    host: gamma.example
links:
  - name: L1
    peer0: 1
    port0: 100
    peer1: 2
    port1: 200
    cost: 5
  - name: L2
    peer0: 2
    port0: 201
    peer1: 3
    port1: 300
    cost: -1
`)
	cfg, err := ReadTopologyConfig(p)
	require.NoError(t, err)
	assert.Len(t, cfg.Nodes, 3)
	assert.Equal(t, LinkCfg{Name: "L2", Peer0: 2, Port0: 201, Peer1: 3, Port1: 300, Cost: -1}, cfg.Links[1])
	assert.Equal(t, map[NodeId]string{1: "alpha.example", 2: "10.0.0.2", 3: "gamma.example"}, cfg.Hosts())
	assert.Equal(t, []LinkCfg{cfg.Links[0]}, cfg.LinksOf(1))
	assert.Len(t, cfg.LinksOf(2), 2)
	assert.Empty(t, cfg.LinksOf(4))
	assert.True(t, cfg.IsNode(3))
	assert.Nil(t, cfg.TryGetNode(4))
	assert.NoError(t, TopologyConfigValidator(cfg, Policy{}))
}

func TestReadConfig_Errors(t *testing.T) {
	_, err := ReadTopologyConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	p := writeFile(t, "bad.yaml", "links: [\n")
	_, err = ReadTopologyConfig(p)
	assert.Error(t, err)
}
