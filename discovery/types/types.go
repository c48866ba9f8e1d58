package types

import (
	"context"
	"errors"
	"fmt"
)

// ErrDiscoveryUnavailable is returned when the listening sockets couldn't be
// queried at all. An empty listing is not an error.
var ErrDiscoveryUnavailable = errors.New("process discovery is unavailable")

// BackendType are the supported discovery implementations.
type BackendType string

// All supported discovery implementations.
const (
	BackendMock   BackendType = "mock"
	BackendNative BackendType = "native"
	BackendLsof   BackendType = "lsof"
)

// BackendTypeFromString returns a valid BackendType for the given string, or
// an error if the value is invalid. BackendMock can't be selected by users.
func BackendTypeFromString(val string) (BackendType, error) {
	switch BackendType(val) {
	case BackendNative:
		return BackendNative, nil
	case BackendLsof:
		return BackendLsof, nil
	}
	return "", fmt.Errorf("unsupported discovery backend '%s'", val)
}

// Socket is a TCP socket in the LISTEN state and the process that owns it.
type Socket struct {
	ProcessName string
	PID         int32
	// Port is the bare local port number, without any address prefix.
	Port string
}

// ProcessDetails is the best-effort metadata of a single process.
type ProcessDetails struct {
	// Command are the invocation arguments beyond the bare process name.
	Command string
	// Directory is the current working directory of the process.
	Directory string
}

// SocketLister queries the system for listening TCP sockets.
type SocketLister interface {
	// ListListening returns a point-in-time snapshot of listening TCP sockets.
	// The order is backend dependent.
	ListListening(ctx context.Context) ([]Socket, error)
}

// Inspector retrieves process metadata.
type Inspector interface {
	// Inspect returns details of the process with the given PID. The process
	// may have exited since it was listed, in which case an error is returned.
	Inspect(ctx context.Context, pid int32) (ProcessDetails, error)
}

// Backend is an OS-specific discovery mechanism.
type Backend interface {
	SocketLister
	Inspector
	Type() BackendType
}
