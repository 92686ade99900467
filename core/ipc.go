package core

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/encodeous/lsd/perf"
	"github.com/encodeous/lsd/state"
)

// Control serves the control socket. Each connection carries one command line, the reply is terminated by a NUL byte.
type Control struct {
	listener net.Listener
	wg       sync.WaitGroup
}

const ipcErrorPrefix = "error: "

func (c *Control) Init(s *state.State) error {
	ipcPath := s.GetIpcPath()
	s.Log.Debug("init control socket", "path", ipcPath)

	err := os.MkdirAll(filepath.Dir(ipcPath), 0700)
	if err != nil {
		return err
	}
	// remove a stale socket left by a previous run
	err = os.Remove(ipcPath)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	c.listener, err = net.Listen("unix", ipcPath)
	if err != nil {
		return fmt.Errorf("failed to listen on control socket: %w", err)
	}

	c.wg.Add(1)
	go c.serve(s.Env)
	return nil
}

func (c *Control) Cleanup(s *state.State) error {
	if c.listener == nil {
		return nil
	}
	err := c.listener.Close()
	c.wg.Wait()
	return err
}

func (c *Control) serve(e *state.Env) {
	defer c.wg.Done()
	for {
		conn, err := c.listener.Accept()
		if err != nil {
			if e.Context.Err() == nil && !errors.Is(err, net.ErrClosed) {
				e.Log.Warn("failed to accept control connection", "err", err)
				continue
			}
			return
		}
		c.wg.Add(1)
		go func() {
			defer c.wg.Done()
			defer conn.Close()
			err := handleConn(e, conn)
			if err != nil {
				e.Log.Debug("control connection failed", "err", err)
			}
		}()
	}
}

func handleConn(e *state.Env, conn net.Conn) error {
	err := conn.SetDeadline(time.Now().Add(state.IPCTimeout))
	if err != nil {
		return err
	}
	rw := bufio.NewReadWriter(bufio.NewReader(conn), bufio.NewWriter(conn))
	line, err := rw.ReadString('\n')
	if err != nil {
		return err
	}
	perf.IPCRequests.Add(1)

	res, err := e.DispatchWait(func(s *state.State) (any, error) {
		// command errors go back to the caller, they must not stop the main loop
		return HandleIPCCommand(s, strings.TrimSpace(line)), nil
	})
	if err != nil {
		return err
	}
	_, err = rw.WriteString(res.(string))
	if err != nil {
		return err
	}
	err = rw.WriteByte(0)
	if err != nil {
		return err
	}
	return rw.Flush()
}

// HandleIPCCommand runs a single control command against the link set and returns the reply
func HandleIPCCommand(s *state.State, line string) string {
	res, err := runIPCCommand(s, strings.Fields(line))
	if err != nil {
		return ipcErrorPrefix + err.Error() + "\n"
	}
	return res
}

func runIPCCommand(s *state.State, args []string) (string, error) {
	if len(args) == 0 {
		return "", errors.New("empty command")
	}
	switch args[0] {
	case "inspect":
		sb := strings.Builder{}
		sb.WriteString(fmt.Sprintf("Node: %d\n", s.Id))
		err := s.LinkSet.Dump(&sb, Get[*LinkMgr](s).Resolver)
		return sb.String(), err
	case "add":
		if len(args) != 7 {
			return "", errors.New("usage: add <peer0> <port0> <peer1> <port1> <cost> <name>")
		}
		lc, err := parseLinkArgs(args[1:])
		if err != nil {
			return "", err
		}
		link, err := AddLink(s, lc)
		if link == nil {
			return "", err
		}
		if err != nil {
			return fmt.Sprintf("added %s (down: %v)\n", link, err), nil
		}
		return fmt.Sprintf("added %s\n", link), nil
	case "update":
		if len(args) != 3 {
			return "", errors.New("usage: update <name> <cost>")
		}
		cost, err := strconv.Atoi(args[2])
		if err != nil {
			return "", fmt.Errorf("invalid cost %q: %w", args[2], err)
		}
		link, err := UpdateLink(s, args[1], cost)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("updated %s\n", link), nil
	case "delete":
		if len(args) != 2 {
			return "", errors.New("usage: delete <name>")
		}
		err := DeleteLink(s, args[1])
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("deleted %s\n", args[1]), nil
	case "rebind":
		if len(args) != 2 {
			return "", errors.New("usage: rebind <name>")
		}
		link, err := RebindLink(s, args[1])
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("rebound %s\n", link), nil
	default:
		return "", fmt.Errorf("unknown command %s", args[0])
	}
}

func parseLinkArgs(args []string) (state.LinkCfg, error) {
	var lc state.LinkCfg
	nums := make([]int, 5)
	for i, arg := range args[:5] {
		n, err := strconv.Atoi(arg)
		if err != nil {
			return lc, fmt.Errorf("invalid number %q: %w", arg, err)
		}
		nums[i] = n
	}
	for _, port := range []int{nums[1], nums[3]} {
		if port < 0 || port > 0xffff {
			return lc, fmt.Errorf("invalid port %d", port)
		}
	}
	lc = state.LinkCfg{
		Peer0: state.NodeId(nums[0]),
		Port0: uint16(nums[1]),
		Peer1: state.NodeId(nums[2]),
		Port1: uint16(nums[3]),
		Cost:  nums[4],
		Name:  args[5],
	}
	return lc, state.NameValidator(lc.Name)
}

// IPCCall sends one command to the control socket at ipcPath and returns the reply
func IPCCall(ipcPath string, command string) (string, error) {
	conn, err := net.DialTimeout("unix", ipcPath, state.IPCTimeout)
	if err != nil {
		return "", err
	}
	defer conn.Close()
	err = conn.SetDeadline(time.Now().Add(state.IPCTimeout))
	if err != nil {
		return "", err
	}
	rw := bufio.NewReadWriter(bufio.NewReader(conn), bufio.NewWriter(conn))

	_, err = rw.WriteString(command + "\n")
	if err != nil {
		return "", err
	}
	err = rw.Flush()
	if err != nil {
		return "", err
	}

	res, err := rw.ReadString(0)
	if err != nil && err != io.EOF {
		return "", err
	}
	res = strings.TrimSuffix(res, "\x00")
	if msg, ok := strings.CutPrefix(res, ipcErrorPrefix); ok {
		return "", errors.New(strings.TrimSpace(msg))
	}
	return res, nil
}
