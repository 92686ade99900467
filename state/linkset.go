package state

import (
	"errors"
	"fmt"
	"iter"
	"slices"

	"github.com/google/uuid"
)

type BindPolicy string

const (
	// BindKeep stores a link even if a local endpoint failed to bind, leaving that endpoint unbound
	BindKeep BindPolicy = "keep"
	// BindReject refuses to add a link unless every local endpoint is bound
	BindReject BindPolicy = "reject"
)

type DuplicatePolicy string

const (
	// DuplicateAllow accepts repeated names, lookups return the earliest link
	DuplicateAllow DuplicatePolicy = "allow"
	// DuplicateReject fails Add when the name is already present
	DuplicateReject DuplicatePolicy = "reject"
)

// Policy controls how a LinkSet reacts to bind failures and repeated names. The zero value is BindKeep, DuplicateAllow.
type Policy struct {
	Bind       BindPolicy      `yaml:"bind_policy,omitempty"`
	Duplicates DuplicatePolicy `yaml:"duplicate_names,omitempty"`
}

// LinkSet is the registry of links known to this node, kept in insertion order.
// It is not safe for concurrent use; the daemon only touches it from the dispatch goroutine.
type LinkSet struct {
	identity Identity
	binder   Binder
	policy   Policy
	links    []*Link
}

func NewLinkSet(identity Identity, binder Binder, policy Policy) *LinkSet {
	if policy.Bind == "" {
		policy.Bind = BindKeep
	}
	if policy.Duplicates == "" {
		policy.Duplicates = DuplicateAllow
	}
	return &LinkSet{
		identity: identity,
		binder:   binder,
		policy:   policy,
		links:    make([]*Link, 0),
	}
}

func (ls *LinkSet) Policy() Policy {
	return ls.policy
}

func (ls *LinkSet) indexOf(name string) int {
	return slices.IndexFunc(ls.links, func(l *Link) bool {
		return l.name == name
	})
}

func (ls *LinkSet) bind(l *Link, endpoint int) error {
	sock, err := ls.binder.Bind(l.Port(endpoint))
	if err == nil && sock == nil {
		err = errors.New("binder returned no socket")
	}
	if err != nil {
		return &BindError{
			Link:     l.name,
			Endpoint: endpoint,
			Port:     l.Port(endpoint),
			Err:      err,
		}
	}
	l.socks[endpoint] = sock
	return nil
}

// Add appends a new link. Endpoints whose node equals the local id get a socket bound on their port.
//
// A bind failure is reported as a *BindError. Under BindKeep the link is still added and returned together
// with the error, under BindReject the link is discarded and nil is returned.
func (ls *LinkSet) Add(peer0 NodeId, port0 uint16, peer1 NodeId, port1 uint16, cost int, name string) (*Link, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	if ls.policy.Duplicates == DuplicateReject && ls.indexOf(name) != -1 {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateName, name)
	}

	l := &Link{
		id:    uuid.New(),
		name:  name,
		peers: [2]NodeId{peer0, peer1},
		ports: [2]uint16{port0, port1},
		cost:  cost,
	}
	me := ls.identity.LocalId()
	l.local = [2]bool{peer0 == me, peer1 == me}

	var bindErrs []error
	for i := range 2 {
		if !l.local[i] {
			continue
		}
		if err := ls.bind(l, i); err != nil {
			bindErrs = append(bindErrs, err)
		}
	}
	err := errors.Join(bindErrs...)
	if err != nil && ls.policy.Bind == BindReject {
		return nil, errors.Join(err, l.closeSockets())
	}

	ls.links = append(ls.links, l)
	return l, err
}

// Find returns the first link with the given name
func (ls *LinkSet) Find(name string) (*Link, error) {
	idx := ls.indexOf(name)
	if idx == -1 {
		return nil, fmt.Errorf("%w: %s", ErrLinkNotFound, name)
	}
	return ls.links[idx], nil
}

func (ls *LinkSet) Update(name string, cost int) (*Link, error) {
	l, err := ls.Find(name)
	if err != nil {
		return nil, err
	}
	l.cost = cost
	return l, nil
}

// MustUpdate is like Update but panics if the link does not exist
func (ls *LinkSet) MustUpdate(name string, cost int) *Link {
	l, err := ls.Update(name, cost)
	if err != nil {
		panic(err)
	}
	return l
}

// Delete removes the link and closes its sockets. The link is removed even if closing a socket fails.
func (ls *LinkSet) Delete(name string) error {
	idx := ls.indexOf(name)
	if idx == -1 {
		return fmt.Errorf("%w: %s", ErrLinkNotFound, name)
	}
	l := ls.links[idx]
	ls.links = slices.Delete(ls.links, idx, idx+1)
	return l.closeSockets()
}

// MustDelete is like Delete but panics if the link does not exist. Errors from closing the link's sockets are returned.
func (ls *LinkSet) MustDelete(name string) error {
	err := ls.Delete(name)
	if errors.Is(err, ErrLinkNotFound) {
		panic(err)
	}
	return err
}

// Rebind retries binding every local endpoint of the link that is currently unbound
func (ls *LinkSet) Rebind(name string) (*Link, error) {
	l, err := ls.Find(name)
	if err != nil {
		return nil, err
	}
	var bindErrs []error
	for i := range 2 {
		if !l.local[i] || l.socks[i] != nil {
			continue
		}
		if err := ls.bind(l, i); err != nil {
			bindErrs = append(bindErrs, err)
		}
	}
	return l, errors.Join(bindErrs...)
}

// All iterates over a snapshot of the links in insertion order
func (ls *LinkSet) All() iter.Seq[*Link] {
	return slices.Values(slices.Clone(ls.links))
}

func (ls *LinkSet) Links() []*Link {
	return slices.Clone(ls.links)
}

func (ls *LinkSet) Len() int {
	return len(ls.links)
}

// Close closes every bound socket. The links stay in the set with their local endpoints unbound.
func (ls *LinkSet) Close() error {
	var errs []error
	for _, l := range ls.links {
		errs = append(errs, l.closeSockets())
	}
	return errors.Join(errs...)
}
