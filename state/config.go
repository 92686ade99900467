package state

import (
	"fmt"
	"net/netip"
	"os"
	"path/filepath"
	"slices"

	"github.com/goccy/go-yaml"
)

// LocalCfg represents local node-level configuration
type LocalCfg struct {
	Id           NodeId     `yaml:"id"`                      // the id of this node in the topology
	BindAddr     netip.Addr `yaml:"bind_addr,omitempty"`     // address link sockets are bound on, unspecified binds all IPv4 addresses
	Tos          *int       `yaml:"tos,omitempty"`           // type of service byte set on link sockets
	IpcPath      string     `yaml:"ipc_path,omitempty"`      // control socket path
	LogPath      string     `yaml:"log_path,omitempty"`      // if not empty, lsd will write to this file
	DnsResolvers []string   `yaml:"dns_resolvers,omitempty"` // name servers (addr:port) used to name nodes configured by address
	Policy       `yaml:",inline"`
}

func (c LocalCfg) LocalId() NodeId {
	return c.Id
}

func (c LocalCfg) GetTos() int {
	if c.Tos == nil {
		return DefaultTOS
	}
	return *c.Tos
}

func (c LocalCfg) GetIpcPath() string {
	if c.IpcPath != "" {
		return c.IpcPath
	}
	return filepath.Join(DefaultIPCDir, fmt.Sprintf("node%d.sock", c.Id))
}

type HostCfg struct {
	Id   NodeId `yaml:"id"`
	Host string `yaml:"host"` // host name or address of the node
}

type LinkCfg struct {
	Name  string `yaml:"name"`
	Peer0 NodeId `yaml:"peer0"`
	Port0 uint16 `yaml:"port0"`
	Peer1 NodeId `yaml:"peer1"`
	Port1 uint16 `yaml:"port1"`
	Cost  int    `yaml:"cost"`
}

// TopologyCfg is the network-wide list of nodes and the links between them
type TopologyCfg struct {
	Nodes []HostCfg `yaml:"nodes"`
	Links []LinkCfg `yaml:"links"`
}

func (t *TopologyCfg) TryGetNode(node NodeId) *HostCfg {
	idx := slices.IndexFunc(t.Nodes, func(cfg HostCfg) bool {
		return cfg.Id == node
	})
	if idx == -1 {
		return nil
	}
	return &t.Nodes[idx]
}

func (t *TopologyCfg) IsNode(node NodeId) bool {
	return t.TryGetNode(node) != nil
}

// Hosts returns the configured host of every node
func (t *TopologyCfg) Hosts() map[NodeId]string {
	hosts := make(map[NodeId]string, len(t.Nodes))
	for _, n := range t.Nodes {
		hosts[n.Id] = n.Host
	}
	return hosts
}

// LinksOf returns the configured links that have the given node as an endpoint
func (t *TopologyCfg) LinksOf(node NodeId) []LinkCfg {
	links := make([]LinkCfg, 0)
	for _, l := range t.Links {
		if l.Peer0 == node || l.Peer1 == node {
			links = append(links, l)
		}
	}
	return links
}

func ReadLocalConfig(path string) (*LocalCfg, error) {
	var cfg LocalCfg
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	err = yaml.Unmarshal(file, &cfg)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &cfg, nil
}

func ReadTopologyConfig(path string) (*TopologyCfg, error) {
	var cfg TopologyCfg
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	err = yaml.Unmarshal(file, &cfg)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &cfg, nil
}
