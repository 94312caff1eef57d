//go:build debug
// +build debug

package ntpcli

// dump every datagram
const debug = true
