//go:build !linux && !darwin

package httpclient

import "syscall"

// control is a no-op on platforms without raw TCP option support here; all
// socket knobs are best-effort and silently omitted.
func (o SocketOptions) control(network, address string, c syscall.RawConn) error {
	return nil
}
