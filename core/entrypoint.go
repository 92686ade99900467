package core

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"path"
	"reflect"
	"runtime"
	"runtime/trace"
	"syscall"
	"time"

	"github.com/encodeous/lsd/perf"
	"github.com/encodeous/lsd/state"
	"github.com/encodeous/tint"
	slogmulti "github.com/samber/slog-multi"
)

var errReload = errors.New("received reload signal")

// setupDebugging starts the requested debugging aids and returns a function that stops them
func setupDebugging() func() {
	stop := func() {}
	if state.DBG_trace {
		f, err := os.Create("trace.out")
		if err != nil {
			log.Fatal(err)
		}
		err = trace.Start(f)
		if err != nil {
			log.Fatal(err)
		}
		log.Println("Started tracing")
		stop = func() {
			trace.Stop()
			f.Close()
		}
	}
	if state.DBG_debug {
		go func() {
			log.Println(http.ListenAndServe("127.0.0.1:6060", nil))
		}()
	}
	return stop
}

// LoadConfig reads and validates both configuration files
func LoadConfig(topologyPath, nodePath string) (*state.TopologyCfg, *state.LocalCfg, error) {
	nodeCfg, err := state.ReadLocalConfig(nodePath)
	if err != nil {
		return nil, nil, err
	}
	topoCfg, err := state.ReadTopologyConfig(topologyPath)
	if err != nil {
		return nil, nil, err
	}
	err = state.NodeConfigValidator(nodeCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", nodePath, err)
	}
	err = state.TopologyConfigValidator(topoCfg, nodeCfg.Policy)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", topologyPath, err)
	}
	if !topoCfg.IsNode(nodeCfg.Id) {
		return nil, nil, fmt.Errorf("node %d is not part of the topology in %s", nodeCfg.Id, topologyPath)
	}
	return topoCfg, nodeCfg, nil
}

// Bootstrap manages the lifetime of the whole application. The daemon is restarted with fresh configuration on SIGHUP, but Bootstrap is only called once.
func Bootstrap(topologyPath, nodePath, logPath string, verbose bool) {
	defer setupDebugging()()
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	for {
		topoCfg, nodeCfg, err := LoadConfig(topologyPath, nodePath)
		if err != nil {
			panic(err)
		}
		if logPath != "" {
			nodeCfg.LogPath = logPath
		}
		restart, err := Start(*topoCfg, *nodeCfg, level, topologyPath, nil, nil)
		if err != nil {
			panic(err)
		}
		if !restart {
			break
		}
	}
}

func newLogger(ncfg state.LocalCfg, logLevel slog.Level) (*slog.Logger, error) {
	handlers := make([]slog.Handler, 0)
	handlers = append(handlers,
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:        logLevel,
			AddSource:    false,
			CustomPrefix: fmt.Sprintf("node%d", ncfg.Id),
			ReplaceAttr: func(groups []string, attr slog.Attr) slog.Attr {
				if attr.Key == "time" {
					return slog.Attr{}
				}
				return attr
			},
		}))

	if ncfg.LogPath != "" {
		err := os.MkdirAll(path.Dir(ncfg.LogPath), 0700)
		if err != nil {
			return nil, err
		}
		f, err := os.OpenFile(ncfg.LogPath, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0600)
		if err != nil {
			return nil, err
		}
		handlers = append(handlers, slog.NewTextHandler(f, &slog.HandlerOptions{Level: logLevel}))
	}

	return slog.New(slogmulti.Fanout(handlers...)), nil
}

// Start runs the daemon until it is stopped. It returns true if the daemon should be restarted with reloaded configuration.
// A nil binder binds UDP sockets; ready, if set, is called on the Start goroutine once every module is initialised.
func Start(tcfg state.TopologyCfg, ncfg state.LocalCfg, logLevel slog.Level, configPath string, binder state.Binder, ready func(s *state.State)) (bool, error) {
	ctx, cancel := context.WithCancelCause(context.Background())

	dispatch := make(chan func(env *state.State) error, 128)

	logger, err := newLogger(ncfg, logLevel)
	if err != nil {
		cancel(err)
		return false, err
	}

	s := state.State{
		Modules: make(map[string]state.NyModule),
		Env: &state.Env{
			Context:         ctx,
			Cancel:          cancel,
			DispatchChannel: dispatch,
			Topology:        tcfg,
			LocalCfg:        ncfg,
			Log:             logger,
			ConfigPath:      configPath,
		},
	}

	s.Log.Info("init modules")
	err = initModules(&s, binder)
	if err != nil {
		Stop(&s)
		return false, err
	}
	s.Log.Info("init modules complete")

	s.Log.Info("lsd has been initialized. To gracefully exit, send SIGINT or Ctrl+C. Send SIGHUP to reload configuration.")

	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(c)
	go func() {
		select {
		case sig := <-c:
			if sig == syscall.SIGHUP {
				s.Cancel(errReload)
			} else {
				s.Cancel(errors.New("received shutdown signal"))
			}
		case <-ctx.Done():
			return
		}
	}()

	if ready != nil {
		ready(&s)
	}

	err = MainLoop(&s, dispatch)
	if err != nil {
		return false, err
	}
	if errors.Is(context.Cause(ctx), errReload) {
		s.Log.Info("Restarting lsd...")
		return true, nil
	}
	return false, nil
}

func initModules(s *state.State, binder state.Binder) error {
	var modules []state.NyModule
	modules = append(modules, &LinkMgr{Binder: binder})
	modules = append(modules, &Control{})

	for _, module := range modules {
		s.Modules[reflect.TypeOf(module).String()] = module
		if err := module.Init(s); err != nil {
			return err
		}
	}
	return nil
}

func MainLoop(s *state.State, dispatch <-chan func(*state.State) error) error {
	s.Log.Debug("started main loop")
	s.Started.Store(true)
	for {
		select {
		case fun := <-dispatch:
			start := time.Now()
			err := fun(s)
			if err != nil {
				s.Log.Error("error occurred during dispatch: ", "error", err)
				s.Cancel(err)
			}
			elapsed := time.Since(start)
			perf.DispatchLatency.Add(float64(elapsed.Microseconds()))
			if elapsed > state.SlowDispatch {
				s.Log.Warn("dispatch took a long time!", "fun", runtime.FuncForPC(reflect.ValueOf(fun).Pointer()).Name(), "elapsed", elapsed, "len", len(dispatch))
			}
		case <-s.Context.Done():
			goto endLoop
		}
	}
endLoop:
	s.Log.Info("stopped main loop", "reason", context.Cause(s.Context).Error())
	Stop(s)
	return nil
}

func Stop(s *state.State) {
	if s.Stopping.Swap(true) {
		return // don't stop twice
	}
	s.Cancel(context.Canceled)
	s.Log.Info("cleaning up modules")
	for moduleName, module := range s.Modules {
		err := module.Cleanup(s)
		if err != nil {
			s.Log.Error("error occurred during Stop: ", "module", moduleName, "error", err)
		}
	}
	s.Log.Info("stopped")
}
