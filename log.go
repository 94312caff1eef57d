//go:build !debug
// +build !debug

package ntpcli

const debug = false
