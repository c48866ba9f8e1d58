package app

import (
	"bytes"
	"context"
	"testing"

	"github.com/mandelsoft/vfs/pkg/memoryfs"
	"github.com/mandelsoft/vfs/pkg/vfs"
	"github.com/stretchr/testify/require"

	"go.hackfix.me/lhost/discovery/mock"
	dtypes "go.hackfix.me/lhost/discovery/types"
)

const testConfigPath = "/config.json"

type testApp struct {
	*App
	stdout, stderr *bytes.Buffer
	backend        *mock.Mock
}

func newTestApp(ctx context.Context, backend *mock.Mock, opts ...Option) (*testApp, error) {
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}

	opts = append([]Option{
		WithContext(ctx),
		WithFDs(stdout, stderr),
		WithFS(memoryfs.New()),
		WithBackend(backend),
		WithLogger(false),
	}, opts...)

	app, err := New("lhost", testConfigPath, opts...)
	if err != nil {
		return nil, err
	}

	return &testApp{App: app, stdout: stdout, stderr: stderr, backend: backend}, nil
}

func (ta *testApp) Run(args ...string) error {
	ta.stdout.Reset()
	ta.stderr.Reset()
	return ta.App.Run(args)
}

func (ta *testApp) writeConfig(t *testing.T, data string) {
	t.Helper()
	err := vfs.WriteFile(ta.ctx.FS, testConfigPath, []byte(data), 0o644)
	require.NoError(t, err)
}

func newTestBackend() *mock.Mock {
	return mock.New(
		[]dtypes.Socket{
			{ProcessName: "node", PID: 111, Port: "3000"},
			{ProcessName: "ruby", PID: 222, Port: "4000"},
			{ProcessName: "Dropbox", PID: 333, Port: "17600"},
			{ProcessName: "python3", PID: 444, Port: "8000"},
		},
		map[int32]dtypes.ProcessDetails{
			111: {Command: "server.js", Directory: "/app"},
			// 222 exited before it could be inspected.
			333: {Command: "", Directory: "/"},
			444: {Command: "-m http.server", Directory: "/srv/www"},
		},
	)
}
