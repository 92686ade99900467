package state

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNameValidator_Valid(t *testing.T) {
	assert.NoError(t, NameValidator("1"))
	assert.NoError(t, NameValidator("ab_cd"))
	assert.NoError(t, NameValidator("L1"))
	assert.NoError(t, NameValidator("abcd-a.com"))
}

func TestNameValidator_Invalid(t *testing.T) {
	assert.Error(t, NameValidator("link name"))
	assert.Error(t, NameValidator(""))
	assert.Error(t, NameValidator("\t"))
	assert.Error(t, NameValidator("abcd-a.com\\hi"))
	assert.Error(t, NameValidator(strings.Repeat("a", 200)))
}

func TestPolicyValidator(t *testing.T) {
	assert.NoError(t, PolicyValidator(Policy{}))
	assert.NoError(t, PolicyValidator(Policy{Bind: BindReject, Duplicates: DuplicateReject}))
	assert.ErrorContains(t, PolicyValidator(Policy{Bind: "retry"}), "unknown bind_policy")
	assert.ErrorContains(t, PolicyValidator(Policy{Duplicates: "rename"}), "unknown duplicate_names")
}

func TestNodeConfigValidator(t *testing.T) {
	assert.NoError(t, NodeConfigValidator(&LocalCfg{Id: 1}))
	assert.Error(t, NodeConfigValidator(&LocalCfg{Id: -1}))
	tos := 256
	assert.ErrorContains(t, NodeConfigValidator(&LocalCfg{Id: 1, Tos: &tos}), "tos")
	assert.Error(t, NodeConfigValidator(&LocalCfg{Id: 1, IpcPath: "/does/not/exist/lsd.sock"}))
}

func testTopology() *TopologyCfg {
	return &TopologyCfg{
		Nodes: []HostCfg{
			{Id: 1, Host: "alpha"},
			{Id: 2, Host: "10.0.0.2"},
		},
		Links: []LinkCfg{
			{Name: "L1", Peer0: 1, Port0: 100, Peer1: 2, Port1: 200, Cost: 5},
		},
	}
}

func TestTopologyConfigValidator(t *testing.T) {
	assert.NoError(t, TopologyConfigValidator(testTopology(), Policy{}))

	cfg := testTopology()
	cfg.Nodes = append(cfg.Nodes, HostCfg{Id: 1, Host: "again"})
	assert.ErrorContains(t, TopologyConfigValidator(cfg, Policy{}), "duplicate node found: 1")

	cfg = testTopology()
	cfg.Nodes[0].Host = ""
	assert.ErrorContains(t, TopologyConfigValidator(cfg, Policy{}), "has no host")

	cfg = testTopology()
	cfg.Links[0].Peer1 = 3
	assert.ErrorContains(t, TopologyConfigValidator(cfg, Policy{}), "node 3 not defined")

	cfg = testTopology()
	cfg.Links[0].Name = ""
	assert.Error(t, TopologyConfigValidator(cfg, Policy{}))
}

func TestTopologyConfigValidator_DuplicateLinks(t *testing.T) {
	cfg := testTopology()
	cfg.Links = append(cfg.Links, cfg.Links[0])
	assert.NoError(t, TopologyConfigValidator(cfg, Policy{Duplicates: DuplicateAllow}))
	assert.ErrorContains(t, TopologyConfigValidator(cfg, Policy{Duplicates: DuplicateReject}), "duplicate link found: L1")
}

func TestNodeConfigValidator_DnsResolvers(t *testing.T) {
	assert.NoError(t, NodeConfigValidator(&LocalCfg{Id: 1, DnsResolvers: []string{"1.1.1.1:53", "[2606:4700::1111]:53"}}))
	assert.ErrorContains(t, NodeConfigValidator(&LocalCfg{Id: 1, DnsResolvers: []string{"1.1.1.1"}}), "dns_resolvers")
}
