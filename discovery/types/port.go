package types

import "strings"

// NormalizePort strips any address or wildcard prefix from a local socket
// address, up to and including the last ':'. E.g. "*:8080", "127.0.0.1:8080"
// and "[::1]:8080" all become "8080". Values without a ':' are returned
// trimmed, but otherwise intact.
func NormalizePort(addr string) string {
	addr = strings.TrimSpace(addr)
	if i := strings.LastIndexByte(addr, ':'); i >= 0 {
		return addr[i+1:]
	}
	return addr
}
