//go:build linux

package httpclient

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// control applies the requested socket options to a freshly created
// connection. Failures are ignored: an option the kernel rejects is treated
// the same as one the platform lacks.
func (o SocketOptions) control(network, address string, c syscall.RawConn) error {
	return c.Control(func(fd uintptr) {
		s := int(fd)
		if o.NoDelay {
			_ = unix.SetsockoptInt(s, unix.IPPROTO_TCP, unix.TCP_NODELAY, 1)
		}
		if o.EnableKeepalive {
			_ = unix.SetsockoptInt(s, unix.SOL_SOCKET, unix.SO_KEEPALIVE, 1)
		}
		if o.KeepaliveIdle > 0 {
			_ = unix.SetsockoptInt(s, unix.IPPROTO_TCP, unix.TCP_KEEPIDLE, int(o.KeepaliveIdle.Seconds()))
		}
		if o.KeepaliveInterval > 0 {
			_ = unix.SetsockoptInt(s, unix.IPPROTO_TCP, unix.TCP_KEEPINTVL, int(o.KeepaliveInterval.Seconds()))
		}
		if o.KeepaliveCount > 0 {
			_ = unix.SetsockoptInt(s, unix.IPPROTO_TCP, unix.TCP_KEEPCNT, o.KeepaliveCount)
		}
		if o.UserTimeout > 0 {
			_ = unix.SetsockoptInt(s, unix.IPPROTO_TCP, unix.TCP_USER_TIMEOUT, int(o.UserTimeout.Milliseconds()))
		}
	})
}
