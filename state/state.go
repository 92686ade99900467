package state

import (
	"context"
	"log/slog"
	"sync/atomic"
)

type NyModule interface {
	Init(s *State) error
	Cleanup(s *State) error
}

// State access must be done only on a single Goroutine
type State struct {
	*Env
	Modules map[string]NyModule
	LinkSet *LinkSet
}

// Env can be read from any Goroutine
type Env struct {
	DispatchChannel chan<- func(s *State) error
	LocalCfg
	Topology   TopologyCfg
	Context    context.Context
	Cancel     context.CancelCauseFunc
	Log        *slog.Logger
	ConfigPath string
	Started    atomic.Bool
	Stopping   atomic.Bool
}
