//go:build !linux
// +build !linux

package ntpcli

import (
	"time"

	"github.com/pkg/errors"
)

func now() time.Time {
	return time.Now()
}

func clockStatus() (precision int8, status string, err error) {
	return 0, "", errors.New("clock status not supported")
}
