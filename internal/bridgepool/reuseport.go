//go:build unix

package bridgepool

import (
	"context"
	"fmt"
	"net"
	"syscall"

	"golang.org/x/sys/unix"
)

// ListenReusePort opens a listener with SO_REUSEPORT set. It exists for
// integration tests that stand up a fake backend, tear it down, and
// rebind the same address for a second generation without waiting out
// TIME_WAIT, mirroring the blue/green backend swap SetEndpoint targets.
func ListenReusePort(network, address string) (net.Listener, error) {
	lc := net.ListenConfig{
		Control: func(_, _ string, c syscall.RawConn) error {
			var sockErr error
			if err := c.Control(func(fd uintptr) {
				sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEPORT, 1)
			}); err != nil {
				return err
			}
			return sockErr
		},
	}

	ln, err := lc.Listen(context.Background(), network, address)
	if err != nil {
		return nil, fmt.Errorf("listening with SO_REUSEPORT on %s %s: %w", network, address, err)
	}
	return ln, nil
}
