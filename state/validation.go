package state

import (
	"fmt"
	"net/netip"
	"os"
	"path"
	"path/filepath"
	"regexp"
)

var namePattern, _ = regexp.Compile("^[0-9A-Za-z._-]+$")

func PathValidator(s string) error {
	_, err := os.Stat(path.Dir(s))
	if err != nil {
		return err
	}
	_, err = filepath.Abs(s)
	return err
}

func NameValidator(s string) error {
	if !namePattern.MatchString(s) {
		return fmt.Errorf("%q is not a valid name, must match pattern %s", s, namePattern.String())
	}
	if len(s) > MaxNameLen {
		return fmt.Errorf("len(\"%s\") = %d > %d is too long", s, len(s), MaxNameLen)
	}
	return nil
}

func BindValidator(s string) error {
	_, err := netip.ParseAddrPort(s)
	return err
}

func PolicyValidator(p Policy) error {
	switch p.Bind {
	case "", BindKeep, BindReject:
	default:
		return fmt.Errorf("unknown bind_policy %q, expected %q or %q", p.Bind, BindKeep, BindReject)
	}
	switch p.Duplicates {
	case "", DuplicateAllow, DuplicateReject:
	default:
		return fmt.Errorf("unknown duplicate_names %q, expected %q or %q", p.Duplicates, DuplicateAllow, DuplicateReject)
	}
	return nil
}

func NodeConfigValidator(node *LocalCfg) error {
	if node.Id < 0 {
		return fmt.Errorf("node id must not be negative, got %d", node.Id)
	}
	if tos := node.GetTos(); tos < 0 || tos > 0xff {
		return fmt.Errorf("tos must be within 0-255, got %d", tos)
	}
	if node.IpcPath != "" {
		if err := PathValidator(node.IpcPath); err != nil {
			return fmt.Errorf("ipc_path: %w", err)
		}
	}
	for _, r := range node.DnsResolvers {
		if err := BindValidator(r); err != nil {
			return fmt.Errorf("dns_resolvers: %w", err)
		}
	}
	return PolicyValidator(node.Policy)
}

func TopologyConfigValidator(cfg *TopologyCfg, policy Policy) error {
	seenNodes := make(map[NodeId]bool)
	for _, node := range cfg.Nodes {
		if node.Id < 0 {
			return fmt.Errorf("node id must not be negative, got %d", node.Id)
		}
		if seenNodes[node.Id] {
			return fmt.Errorf("duplicate node found: %d", node.Id)
		}
		if node.Host == "" {
			return fmt.Errorf("node %d has no host", node.Id)
		}
		seenNodes[node.Id] = true
	}
	seenLinks := make(map[string]bool)
	for _, link := range cfg.Links {
		if err := NameValidator(link.Name); err != nil {
			return err
		}
		if seenLinks[link.Name] && policy.Duplicates == DuplicateReject {
			return fmt.Errorf("duplicate link found: %s", link.Name)
		}
		seenLinks[link.Name] = true
		if !seenNodes[link.Peer0] {
			return fmt.Errorf("link %s: node %d not defined", link.Name, link.Peer0)
		}
		if !seenNodes[link.Peer1] {
			return fmt.Errorf("link %s: node %d not defined", link.Name, link.Peer1)
		}
	}
	return nil
}
