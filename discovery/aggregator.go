package discovery

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	aerrors "go.hackfix.me/lhost/app/errors"
	dtypes "go.hackfix.me/lhost/discovery/types"
	"go.hackfix.me/lhost/models"
)

// Aggregator joins the listening sockets reported by a backend with the
// details of the processes that own them.
type Aggregator struct {
	backend        dtypes.Backend
	listTimeout    time.Duration
	inspectTimeout time.Duration
	concurrency    int
	logger         *slog.Logger
}

// NewAggregator returns a new Aggregator instance.
func NewAggregator(backend dtypes.Backend, opts ...Option) (*Aggregator, error) {
	if backend == nil {
		return nil, fmt.Errorf("discovery backend is required")
	}

	a := &Aggregator{backend: backend}

	opts = append(DefaultOptions(), opts...)
	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, err
		}
	}

	return a, nil
}

// Discover returns one record per listening socket, in the order reported by
// the backend. Each owning process is inspected once. Processes that can't be
// inspected still produce records, with an empty command and directory.
//
// An error wrapping types.ErrDiscoveryUnavailable is returned if the sockets
// couldn't be listed.
func (a *Aggregator) Discover(ctx context.Context) ([]models.ProcessRecord, error) {
	logger := a.logger.With("backend", a.backend.Type())

	listCtx, cancel := context.WithTimeout(ctx, a.listTimeout)
	sockets, err := a.backend.ListListening(listCtx)
	cancel()
	if err != nil {
		return nil, aerrors.WithCause(dtypes.ErrDiscoveryUnavailable, err,
			"backend", a.backend.Type())
	}

	logger.Debug("listed listening sockets", "count", len(sockets))

	pids := make([]int32, 0, len(sockets))
	seen := make(map[int32]struct{}, len(sockets))
	for _, s := range sockets {
		if _, ok := seen[s.PID]; !ok {
			seen[s.PID] = struct{}{}
			pids = append(pids, s.PID)
		}
	}

	details := make([]dtypes.ProcessDetails, len(pids))
	var g errgroup.Group
	g.SetLimit(a.concurrency)
	for i, pid := range pids {
		g.Go(func() error {
			details[i] = a.inspect(ctx, logger, pid)
			return nil
		})
	}
	_ = g.Wait()

	byPID := make(map[int32]dtypes.ProcessDetails, len(pids))
	for i, pid := range pids {
		byPID[pid] = details[i]
	}

	records := make([]models.ProcessRecord, len(sockets))
	for i, s := range sockets {
		d := byPID[s.PID]
		records[i] = models.ProcessRecord{
			Name:      s.ProcessName,
			PID:       strconv.FormatInt(int64(s.PID), 10),
			Port:      s.Port,
			Directory: d.Directory,
			Command:   d.Command,
		}
	}

	return records, nil
}

func (a *Aggregator) inspect(ctx context.Context, logger *slog.Logger, pid int32) dtypes.ProcessDetails {
	ctx, cancel := context.WithTimeout(ctx, a.inspectTimeout)
	defer cancel()

	d, err := a.backend.Inspect(ctx, pid)
	if err != nil {
		logger.Debug("process inspection degraded", "pid", pid, "error", err)
		return dtypes.ProcessDetails{}
	}

	return d
}
