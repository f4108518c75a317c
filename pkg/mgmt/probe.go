// Package mgmt pkg/mgmt/probe.go
package mgmt

import (
	"context"
	"fmt"
	"net"
	"os"
	"time"

	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"
)

const (
	defaultProbeTimeout = 5 * time.Second
	icmpProtocol        = 1
	icmpReadBuffer      = 1500
)

// TCPProber checks reachability by dialing the management port. This is the
// default strategy: it needs no privileges and verifies the exact port the
// protocol session will use.
type TCPProber struct{}

// Probe implements Prober.
func (TCPProber) Probe(ctx context.Context, host string, port int, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = defaultProbeTimeout
	}

	var d net.Dialer

	dialCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	conn, err := d.DialContext(dialCtx, "tcp", net.JoinHostPort(host, fmt.Sprintf("%d", port)))
	if err != nil {
		return fmt.Errorf("%w: %s:%d: %v", ErrUnreachable, host, port, err)
	}

	return conn.Close()
}

// ICMPProber checks reachability with an ICMP echo. Requires a privileged
// socket; used where the management port is firewalled from the monitor but
// the host should still be distinguished from a dead one.
type ICMPProber struct{}

// Probe implements Prober. The port is ignored; ICMP reaches the host only.
func (ICMPProber) Probe(ctx context.Context, host string, _ int, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = defaultProbeTimeout
	}

	ip, err := net.ResolveIPAddr("ip4", host)
	if err != nil {
		return fmt.Errorf("%w: resolve %s: %v", ErrUnreachable, host, err)
	}

	conn, err := icmp.ListenPacket("ip4:icmp", "0.0.0.0")
	if err != nil {
		return fmt.Errorf("failed to open ICMP socket: %w", err)
	}
	defer conn.Close()

	msg := icmp.Message{
		Type: ipv4.ICMPTypeEcho,
		Code: 0,
		Body: &icmp.Echo{
			ID:   os.Getpid() & 0xffff,
			Seq:  1,
			Data: []byte("ringview-probe"),
		},
	}

	payload, err := msg.Marshal(nil)
	if err != nil {
		return fmt.Errorf("failed to marshal ICMP echo: %w", err)
	}

	if _, err := conn.WriteTo(payload, ip); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrUnreachable, host, err)
	}

	deadline := time.Now().Add(timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	if err := conn.SetReadDeadline(deadline); err != nil {
		return fmt.Errorf("failed to set read deadline: %w", err)
	}

	buf := make([]byte, icmpReadBuffer)

	for {
		n, peer, err := conn.ReadFrom(buf)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrUnreachable, host, err)
		}

		if peer.String() != ip.String() {
			continue
		}

		reply, err := icmp.ParseMessage(icmpProtocol, buf[:n])
		if err != nil {
			continue
		}

		if reply.Type == ipv4.ICMPTypeEchoReply {
			return nil
		}
	}
}
