package mock

import (
	"context"
	"fmt"
	"sync"
	"time"

	dtypes "go.hackfix.me/lhost/discovery/types"
)

// Mock is a discovery backend that returns canned data.
type Mock struct {
	Sockets []dtypes.Socket
	Details map[int32]dtypes.ProcessDetails

	mx        sync.Mutex
	inspected map[int32]int
	listErr   error // to simulate errors
	listDelay time.Duration
	delays    map[int32]time.Duration
}

var _ dtypes.Backend = &Mock{}

// New returns a new Mock backend.
func New(sockets []dtypes.Socket, details map[int32]dtypes.ProcessDetails) *Mock {
	if details == nil {
		details = make(map[int32]dtypes.ProcessDetails)
	}
	return &Mock{
		Sockets:   sockets,
		Details:   details,
		inspected: make(map[int32]int),
		delays:    make(map[int32]time.Duration),
	}
}

// Type implements the types.Backend interface.
func (m *Mock) Type() dtypes.BackendType {
	return dtypes.BackendMock
}

// ListListening implements the types.SocketLister interface.
func (m *Mock) ListListening(ctx context.Context) ([]dtypes.Socket, error) {
	m.mx.Lock()
	delay := m.listDelay
	m.mx.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.listErr != nil {
		return nil, m.listErr
	}
	sockets := make([]dtypes.Socket, len(m.Sockets))
	copy(sockets, m.Sockets)
	return sockets, nil
}

// Inspect implements the types.Inspector interface. PIDs without details
// behave like processes that exited after being listed.
func (m *Mock) Inspect(ctx context.Context, pid int32) (dtypes.ProcessDetails, error) {
	m.mx.Lock()
	m.inspected[pid]++
	delay := m.delays[pid]
	m.mx.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return dtypes.ProcessDetails{}, ctx.Err()
		}
	}

	d, ok := m.Details[pid]
	if !ok {
		return dtypes.ProcessDetails{}, fmt.Errorf("process %d not found", pid)
	}
	return d, nil
}

// Inspected returns the number of times the given PID was inspected.
func (m *Mock) Inspected(pid int32) int {
	m.mx.Lock()
	defer m.mx.Unlock()
	return m.inspected[pid]
}

// SetListError makes ListListening fail with err.
func (m *Mock) SetListError(err error) {
	m.listErr = err
}

// SetListDelay makes ListListening take at least d.
func (m *Mock) SetListDelay(d time.Duration) {
	m.mx.Lock()
	defer m.mx.Unlock()
	m.listDelay = d
}

// SetDelay makes inspecting pid take at least d.
func (m *Mock) SetDelay(pid int32, d time.Duration) {
	m.mx.Lock()
	defer m.mx.Unlock()
	m.delays[pid] = d
}
