package state

import (
	"fmt"
	"io"
	"strings"
)

func endpointString(l *Link, i int, r Resolver) string {
	host := "?"
	if r != nil {
		host = r.HostForNode(l.Peer(i))
	}
	return fmt.Sprintf("node(%d) host(%s) port(%d)", l.Peer(i), host, l.Port(i))
}

// Dump writes a human-readable report of every link to w
func (ls *LinkSet) Dump(w io.Writer, r Resolver) error {
	sb := strings.Builder{}
	sb.WriteString("Links:\n")
	if len(ls.links) == 0 {
		sb.WriteString("    (none)\n")
	}
	for _, l := range ls.links {
		status := "up"
		if !l.Up() {
			status = "down"
		}
		sb.WriteString(fmt.Sprintf(" - %s [%s] %s\n", l.name, l.id, status))
		sb.WriteString(fmt.Sprintf("   %s <--> %s\n", endpointString(l, 0, r), endpointString(l, 1, r)))
		sb.WriteString(fmt.Sprintf("   cost(%d) sock0(%d) sock1(%d)\n", l.cost, l.Fd(0), l.Fd(1)))
	}
	_, err := io.WriteString(w, sb.String())
	return err
}
