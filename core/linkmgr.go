package core

import (
	"errors"
	"strings"

	"github.com/encodeous/lsd/perf"
	"github.com/encodeous/lsd/state"
	"github.com/encodeous/lsd/sys"
)

// LinkMgr owns the node's link set. It loads the configured topology at startup and retries failed binds.
type LinkMgr struct {
	Binder   state.Binder
	Resolver *HostResolver
}

func (m *LinkMgr) Init(s *state.State) error {
	s.Log.Debug("init link manager")

	if m.Binder == nil {
		m.Binder = &sys.UDPBinder{
			Addr: s.BindAddr,
			Tos:  s.GetTos(),
		}
	}
	m.Resolver = NewHostResolver(s.Topology.Hosts(), state.NewResolver(s.DnsResolvers))
	m.Resolver.Start()

	s.LinkSet = state.NewLinkSet(s.Env, m.Binder, s.Policy)

	for _, lc := range s.Topology.Links {
		_, err := AddLink(s, lc)
		var bindErr *state.BindError
		if err != nil && !errors.As(err, &bindErr) {
			return err
		}
	}
	s.Log.Info("loaded topology", "links", s.LinkSet.Len(), "local", len(s.Topology.LinksOf(s.Id)))

	if s.LinkSet.Policy().Bind == state.BindKeep {
		s.RepeatTask(rebindLinks, state.BindRetryDelay)
	}
	if state.DBG_log_links {
		s.RepeatTask(logLinks, state.LinkDumpDelay)
	}
	return nil
}

func (m *LinkMgr) Cleanup(s *state.State) error {
	if m.Resolver != nil {
		m.Resolver.Stop()
	}
	if s.LinkSet == nil {
		return nil
	}
	s.Log.Info("closing link sockets")
	return s.LinkSet.Close()
}

// AddLink adds a link to the node's link set. Bind failures are logged and returned, the link may still have been added.
func AddLink(s *state.State, lc state.LinkCfg) (*state.Link, error) {
	link, err := s.LinkSet.Add(lc.Peer0, lc.Port0, lc.Peer1, lc.Port1, lc.Cost, lc.Name)
	var bindErr *state.BindError
	if errors.As(err, &bindErr) {
		perf.BindFailures.Add(1)
		s.Log.Warn("failed to bind link", "name", lc.Name, "error", err, "kept", link != nil)
	} else if err != nil {
		return nil, err
	}
	if link != nil {
		perf.LinksAdded.Add(1)
		s.Log.Debug("added link", "link", link.String(), "id", link.Id(), "up", link.Up())
	}
	return link, err
}

func UpdateLink(s *state.State, name string, cost int) (*state.Link, error) {
	link, err := s.LinkSet.Update(name, cost)
	if err != nil {
		return nil, err
	}
	perf.CostUpdates.Add(1)
	s.Log.Debug("updated link cost", "name", name, "cost", cost)
	return link, nil
}

func DeleteLink(s *state.State, name string) error {
	err := s.LinkSet.Delete(name)
	if errors.Is(err, state.ErrLinkNotFound) {
		return err
	}
	perf.LinksDeleted.Add(1)
	if err != nil {
		s.Log.Warn("deleted link, but failed to release its sockets", "name", name, "error", err)
		return err
	}
	s.Log.Debug("deleted link", "name", name)
	return nil
}

func RebindLink(s *state.State, name string) (*state.Link, error) {
	link, err := s.LinkSet.Rebind(name)
	if errors.Is(err, state.ErrLinkNotFound) {
		return nil, err
	}
	if err != nil {
		perf.BindFailures.Add(1)
		return link, err
	}
	return link, nil
}

func rebindLinks(s *state.State) error {
	for link := range s.LinkSet.All() {
		if link.Up() {
			continue
		}
		_, err := RebindLink(s, link.Name())
		if err != nil {
			s.Log.Debug("link is still down", "name", link.Name(), "error", err)
			continue
		}
		s.Log.Info("link is up", "name", link.Name())
	}
	return nil
}

func logLinks(s *state.State) error {
	sb := strings.Builder{}
	err := s.LinkSet.Dump(&sb, Get[*LinkMgr](s).Resolver)
	if err != nil {
		return err
	}
	s.Log.Info("link set\n" + sb.String())
	return nil
}
