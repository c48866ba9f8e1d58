// Package lsof implements process discovery by running the lsof and ps
// utilities, which are available on macOS and most Unix systems.
package lsof

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"

	dtypes "go.hackfix.me/lhost/discovery/types"
)

// Runner executes the named program and returns its standard output.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// Lsof is a discovery backend that shells out to lsof and ps.
type Lsof struct {
	run    Runner
	logger *slog.Logger
}

var _ dtypes.Backend = &Lsof{}

// New returns a new Lsof backend. If run is nil, commands are executed with
// os/exec.
func New(run Runner, logger *slog.Logger) *Lsof {
	if run == nil {
		run = execRunner
	}
	return &Lsof{run: run, logger: logger.With("backend", dtypes.BackendLsof)}
}

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	//nolint:wrapcheck // Wrapped by the caller.
	return exec.CommandContext(ctx, name, args...).Output()
}

// Type implements the types.Backend interface.
func (l *Lsof) Type() dtypes.BackendType {
	return dtypes.BackendLsof
}

// ListListening implements the types.SocketLister interface.
func (l *Lsof) ListListening(ctx context.Context) ([]dtypes.Socket, error) {
	out, err := l.run(ctx, "lsof", "-iTCP", "-sTCP:LISTEN", "-P", "-n", "-F", "pcn")
	if err != nil {
		if !isPartialResult(err) {
			return nil, fmt.Errorf("failed running lsof: %w", err)
		}
		// lsof exits with 1 when nothing matched, or when some files couldn't
		// be accessed. Whatever was written to stdout is still valid.
		if len(bytes.TrimSpace(out)) > 0 {
			l.logger.Debug("lsof reported errors, using partial output", "error", err)
		}
	}

	return parseListening(out), nil
}

// Inspect implements the types.Inspector interface.
func (l *Lsof) Inspect(ctx context.Context, pid int32) (dtypes.ProcessDetails, error) {
	pidStr := strconv.FormatInt(int64(pid), 10)

	var details dtypes.ProcessDetails

	argsOut, argsErr := l.run(ctx, "ps", "-o", "args=", "-p", pidStr)
	if argsErr == nil {
		// On macOS comm is the full executable path, which may contain spaces.
		// Elsewhere it's the short process name, and the first word of args is
		// taken as the executable.
		commOut, err := l.run(ctx, "ps", "-o", "comm=", "-p", pidStr)
		if err != nil {
			commOut = nil
		}
		details.Command = parseArgs(argsOut, commOut)
	}

	cwdOut, cwdErr := l.run(ctx, "lsof", "-a", "-p", pidStr, "-d", "cwd", "-F", "n")
	if cwdErr == nil {
		details.Directory = parseCwd(cwdOut, pidStr)
	}

	if argsErr != nil && cwdErr != nil {
		return dtypes.ProcessDetails{}, fmt.Errorf("failed inspecting process %d: %w",
			pid, errors.Join(argsErr, cwdErr))
	}

	return details, nil
}

// parseListening parses the output of lsof in field mode with the p (PID),
// c (command name) and n (address) fields selected. Every n field after a p
// field is a listening socket owned by that process.
func parseListening(out []byte) []dtypes.Socket {
	var (
		sockets []dtypes.Socket
		pid     int32
		name    string
		havePID bool
	)

	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		val := line[1:]
		switch line[0] {
		case 'p':
			p, err := strconv.ParseInt(val, 10, 32)
			havePID = err == nil
			pid, name = int32(p), ""
		case 'c':
			name = val
		case 'n':
			if !havePID {
				continue
			}
			sockets = append(sockets, dtypes.Socket{
				ProcessName: name,
				PID:         pid,
				Port:        dtypes.NormalizePort(val),
			})
		}
	}

	return sockets
}

// parseArgs returns the arguments following the executable in a ps args
// column. If the args start with the ps comm column, the whole comm value is
// dropped, otherwise only the first word is.
func parseArgs(args, comm []byte) string {
	line := strings.TrimSpace(string(args))
	exe := strings.TrimSpace(string(comm))
	if exe != "" && strings.HasPrefix(line, exe) {
		rest := line[len(exe):]
		if rest == "" || rest[0] == ' ' {
			return strings.Join(strings.Fields(rest), " ")
		}
	}

	fields := strings.Fields(line)
	if len(fields) < 2 {
		return ""
	}
	return strings.Join(fields[1:], " ")
}

// parseCwd returns the working directory from lsof field output. Lines that
// only echo the PID are discarded.
func parseCwd(out []byte, pid string) string {
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if len(line) < 2 {
			continue
		}
		val := line[1:]
		if val == pid {
			continue
		}
		if line[0] == 'n' {
			return val
		}
	}
	return ""
}

type exitCoder interface {
	ExitCode() int
}

func isPartialResult(err error) bool {
	var ec exitCoder
	return errors.As(err, &ec) && ec.ExitCode() == 1
}
