// Package discovery finds local processes listening on TCP ports.
package discovery

import (
	"fmt"
	"log/slog"

	"go.hackfix.me/lhost/discovery/lsof"
	"go.hackfix.me/lhost/discovery/native"
	dtypes "go.hackfix.me/lhost/discovery/types"
)

// Setup creates a discovery backend of the given type.
//
//nolint:ireturn // Intentional, the backend is selected at runtime.
func Setup(bt dtypes.BackendType, logger *slog.Logger) (dtypes.Backend, error) {
	switch bt {
	case dtypes.BackendNative:
		return native.New(logger), nil
	case dtypes.BackendLsof:
		return lsof.New(nil, logger), nil
	default:
		return nil, fmt.Errorf("unsupported discovery backend '%s'", bt)
	}
}
