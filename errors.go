package ntpcli

import (
	"fmt"
	"net"
	"syscall"

	"github.com/pkg/errors"
)

// ErrTruncatedPacket is returned by Decode when fewer than PacketSize
// bytes are available.
var ErrTruncatedPacket = errors.New("ntp: truncated packet")

// ResolutionError reports a host name that did not resolve.
type ResolutionError struct {
	Host string
	Err  error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolve %s: %s", e.Host, e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// SocketError reports a failed socket operation.
type SocketError struct {
	Op  string
	Err error
}

func (e *SocketError) Error() string {
	return fmt.Sprintf("%s failed: %s", e.Op, e.Err)
}

func (e *SocketError) Unwrap() error { return e.Err }

// Resolver failures carry no errno. They map to the sysexits.h codes.
const (
	ExitNoHost   = 68 // EX_NOHOST
	ExitTempFail = 75 // EX_TEMPFAIL
)

// ErrorCode returns the platform error number carried by err. Resolver
// failures map to ExitNoHost or ExitTempFail, anything else to 1.
func ErrorCode(err error) int {
	if err == nil {
		return 0
	}
	var errno syscall.Errno
	if errors.As(err, &errno) && errno != 0 {
		return int(errno)
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		switch {
		case dnsErr.IsTimeout:
			return int(syscall.ETIMEDOUT)
		case dnsErr.IsNotFound:
			return ExitNoHost
		case dnsErr.IsTemporary:
			return ExitTempFail
		}
	}
	var timeout interface{ Timeout() bool }
	if errors.As(err, &timeout) && timeout.Timeout() {
		return int(syscall.ETIMEDOUT)
	}
	return 1
}
