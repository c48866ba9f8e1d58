package errors_test

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	aerrors "go.hackfix.me/lhost/app/errors"
)

func TestWith(t *testing.T) {
	t.Parallel()

	errBase := errors.New("base")
	errCause := errors.New("cause")

	serr := aerrors.WithCause(errBase, errCause, "backend", "lsof")
	merged := aerrors.With(serr, "backend", "native", "timeout", "10s")

	assert.Equal(t, "base", merged.Error())
	assert.ErrorIs(t, merged, errBase)
	assert.ErrorIs(t, merged, errCause)
	assert.Equal(t, errCause, merged.Cause())
	assert.Equal(t, map[string]any{"backend": "native", "timeout": "10s"}, merged.Metadata())
	// The original error is unchanged.
	assert.Equal(t, map[string]any{"backend": "lsof"}, serr.Metadata())

	assert.PanicsWithValue(t, "an even number of fields is required", func() {
		aerrors.NewWith("oops", "key")
	})
	assert.PanicsWithValue(t, "keys must be strings", func() {
		aerrors.NewWith("oops", 1, 2)
	})
}

//nolint:paralleltest // Modifies the default slog logger.
func TestLog(t *testing.T) {
	buf := &bytes.Buffer{}
	defLogger := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return a
		},
	})))
	t.Cleanup(func() { slog.SetDefault(defLogger) })

	aerrors.Log(aerrors.WithCause(errors.New("discovery failed"), errors.New("timeout"),
		"zeta", 1, "alpha", "a"))
	require.Equal(t, "level=ERROR msg=\"discovery failed\" cause=timeout alpha=a zeta=1\n", buf.String())

	buf.Reset()
	aerrors.Log(errors.New("plain"))
	assert.Equal(t, "level=ERROR msg=plain\n", buf.String())
}
