// Package types contains the generic discovery types and interfaces used
// throughout the application. These are defined separately from the main
// discovery package so that backends and callers don't need to depend on a
// specific implementation.
package types
