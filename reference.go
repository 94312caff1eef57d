package ntpcli

import (
	"time"

	"github.com/apex/log"
	"github.com/beevik/ntp"
	"github.com/pkg/errors"
)

// ReferenceResult is the outcome of one standard NTP query.
type ReferenceResult struct {
	Offset    time.Duration
	RTT       time.Duration
	Stratum   uint8
	Reference string
}

// ReferenceCheck runs one full four-timestamp query against the
// configured server so the coarse midpoint output can be compared with
// a calibrated offset. Only the default port is supported.
func ReferenceCheck(cfg *Config) (*ReferenceResult, error) {
	if cfg.Port != "" && cfg.Port != defaultPort {
		return nil, errors.Errorf("reference check needs port %s, got %s", defaultPort, cfg.Port)
	}
	timeout := cfg.ReferenceTimeout
	if timeout <= 0 {
		timeout = defaultRefTO
	}
	resp, err := ntp.QueryWithOptions(cfg.Host, ntp.QueryOptions{Timeout: timeout})
	if err != nil {
		return nil, errors.Wrapf(err, "reference query %s", cfg.Host)
	}
	if err = resp.Validate(); err != nil {
		return nil, errors.Wrapf(err, "reference reply %s", cfg.Host)
	}

	var id [4]byte
	SetUint32(id[:], 0, resp.ReferenceID)
	r := &ReferenceResult{
		Offset:    resp.ClockOffset,
		RTT:       resp.RTT,
		Stratum:   resp.Stratum,
		Reference: ReferenceText(resp.Stratum, id),
	}
	log.WithFields(log.Fields{
		"host":      cfg.Host,
		"offset":    r.Offset,
		"rtt":       r.RTT,
		"stratum":   r.Stratum,
		"reference": r.Reference,
	}).Info("reference query")
	return r, nil
}
