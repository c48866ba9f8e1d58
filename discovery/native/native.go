package native

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/shirou/gopsutil/v3/net"
	"github.com/shirou/gopsutil/v3/process"

	dtypes "go.hackfix.me/lhost/discovery/types"
)

const statusListen = "LISTEN"

// Native is a discovery backend that uses the OS introspection facilities
// exposed by gopsutil.
type Native struct {
	logger *slog.Logger
}

var _ dtypes.Backend = &Native{}

// New returns a new Native backend.
func New(logger *slog.Logger) *Native {
	return &Native{logger: logger.With("backend", dtypes.BackendNative)}
}

// Type implements the types.Backend interface.
func (n *Native) Type() dtypes.BackendType {
	return dtypes.BackendNative
}

// ListListening implements the types.SocketLister interface. Sockets that
// can't be attributed to a visible process are skipped.
func (n *Native) ListListening(ctx context.Context) ([]dtypes.Socket, error) {
	conns, err := net.ConnectionsWithContext(ctx, "tcp")
	if err != nil {
		return nil, fmt.Errorf("failed listing TCP connections: %w", err)
	}

	var (
		sockets = make([]dtypes.Socket, 0, len(conns))
		names   = make(map[int32]string)
	)
	for _, conn := range conns {
		if conn.Status != statusListen {
			continue
		}
		if conn.Pid <= 0 {
			n.logger.Debug("skipping socket without owning process",
				"local_address", conn.Laddr.IP, "port", conn.Laddr.Port)
			continue
		}

		name, ok := names[conn.Pid]
		if !ok {
			name = n.processName(ctx, conn.Pid)
			names[conn.Pid] = name
		}

		sockets = append(sockets, dtypes.Socket{
			ProcessName: name,
			PID:         conn.Pid,
			Port:        strconv.FormatUint(uint64(conn.Laddr.Port), 10),
		})
	}

	return sockets, nil
}

func (n *Native) processName(ctx context.Context, pid int32) string {
	proc, err := process.NewProcessWithContext(ctx, pid)
	if err != nil {
		n.logger.Debug("failed looking up process", "pid", pid, "error", err)
		return ""
	}
	name, err := proc.NameWithContext(ctx)
	if err != nil {
		n.logger.Debug("failed reading process name", "pid", pid, "error", err)
		return ""
	}
	return name
}

// Inspect implements the types.Inspector interface. An error is returned only
// if the process is gone, or if none of its details could be read.
func (n *Native) Inspect(ctx context.Context, pid int32) (dtypes.ProcessDetails, error) {
	proc, err := process.NewProcessWithContext(ctx, pid)
	if err != nil {
		return dtypes.ProcessDetails{}, fmt.Errorf("failed looking up process %d: %w", pid, err)
	}

	var details dtypes.ProcessDetails

	args, argsErr := proc.CmdlineSliceWithContext(ctx)
	if argsErr == nil && len(args) > 1 {
		details.Command = strings.Join(args[1:], " ")
	}

	cwd, cwdErr := proc.CwdWithContext(ctx)
	if cwdErr == nil {
		details.Directory = cwd
	}

	if argsErr != nil && cwdErr != nil {
		return dtypes.ProcessDetails{}, errors.Join(argsErr, cwdErr)
	}
	if argsErr != nil || cwdErr != nil {
		n.logger.Debug("partially inspected process", "pid", pid,
			"command_error", argsErr, "directory_error", cwdErr)
	}

	return details, nil
}
