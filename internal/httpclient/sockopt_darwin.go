//go:build darwin

package httpclient

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// control applies the requested socket options to a freshly created
// connection. Darwin spells keepalive-idle TCP_KEEPALIVE and has no
// TCP_USER_TIMEOUT; unsupported options are omitted.
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
			_ = unix.SetsockoptInt(s, unix.IPPROTO_TCP, unix.TCP_KEEPALIVE, int(o.KeepaliveIdle.Seconds()))
		}
		if o.KeepaliveInterval > 0 {
			_ = unix.SetsockoptInt(s, unix.IPPROTO_TCP, unix.TCP_KEEPINTVL, int(o.KeepaliveInterval.Seconds()))
		}
		if o.KeepaliveCount > 0 {
			_ = unix.SetsockoptInt(s, unix.IPPROTO_TCP, unix.TCP_KEEPCNT, o.KeepaliveCount)
		}
	})
}
