package ntpcli

import (
	"context"
	"encoding/hex"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/apex/log"
	"github.com/pkg/errors"
)

// recvSize leaves room for replies that carry extension fields.
const recvSize = 128

// Engine polls one server over one UDP socket. The send loop and the
// receive loop share only the socket and the last send time.
type Engine struct {
	cfg     *Config
	tb      TimeBase
	sink    Sink
	conn    *net.UDPConn
	raddr   *net.UDPAddr
	stats   *statistic
	summary *Summary

	lastSend int64
	replies  int64

	closeOnce sync.Once
}

// New resolves the server and opens the socket. Nothing is sent until
// Run is called.
func New(cfg *Config, sink Sink) (e *Engine, err error) {
	if sink == nil {
		return nil, errors.New("nil sink")
	}
	if err = cfg.Validate(); err != nil {
		return nil, err
	}

	raddr, err := net.ResolveUDPAddr("udp", cfg.Addr())
	if err != nil {
		return nil, &ResolutionError{Host: cfg.Host, Err: err}
	}

	network := "udp6"
	if raddr.IP.To4() != nil {
		network = "udp4"
	}
	conn, err := net.ListenUDP(network, nil)
	if err != nil {
		return nil, &SocketError{Op: "socket", Err: err}
	}

	stats, err := newStatistic(cfg)
	if err != nil {
		conn.Close()
		return nil, err
	}
	if cfg.Metric != "" {
		stats.serve(cfg.Metric)
	}

	e = &Engine{
		cfg:     cfg,
		tb:      cfg.timeBase(),
		sink:    sink,
		conn:    conn,
		raddr:   raddr,
		stats:   stats,
		summary: &Summary{},
	}

	precision, status, cerr := clockStatus()
	if cerr != nil {
		log.WithError(cerr).Debug("clock status")
	}
	log.WithFields(log.Fields{
		"host":      cfg.Host,
		"addr":      raddr.String(),
		"local":     conn.LocalAddr().String(),
		"interval":  cfg.Interval,
		"precision": log2Duration(precision),
		"clock":     status,
	}).Info("engine ready")
	return e, nil
}

// RemoteAddr is the resolved server address.
func (e *Engine) RemoteAddr() *net.UDPAddr {
	return e.raddr
}

func (e *Engine) Summary() *Summary {
	return e.summary
}

// Run starts both loops and blocks until ctx is done, the configured
// record count is reached, or either loop fails. Socket and sink errors
// are returned; the socket is closed when Run returns.
func (e *Engine) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	errc := make(chan error, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		errc <- e.sendLoop(ctx)
	}()
	go func() {
		defer wg.Done()
		errc <- e.recvLoop(ctx)
	}()

	select {
	case <-ctx.Done():
	case err = <-errc:
	}
	cancel()
	// unblock the reader, the metrics stay open until both loops are gone
	e.conn.Close()
	wg.Wait()
	e.Close()
	return err
}

// RunFor runs the engine for the configured duration. The countdown
// starts after the warmup so the first request is on the wire first.
func (e *Engine) RunFor(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.Warmup+e.cfg.Duration)
	defer cancel()
	return e.Run(ctx)
}

// Close releases the socket and the metrics. It must not be called
// while Run is active.
func (e *Engine) Close() error {
	var err error
	e.closeOnce.Do(func() {
		err = e.conn.Close()
		if errors.Is(err, net.ErrClosed) {
			err = nil
		}
		e.stats.close()
	})
	return err
}

func (e *Engine) sendLoop(ctx context.Context) error {
	buf := Encode(NewRequest())
	ticker := time.NewTicker(e.cfg.Interval)
	defer ticker.Stop()

	for {
		if err := e.send(buf); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (e *Engine) send(buf []byte) error {
	atomic.StoreInt64(&e.lastSend, e.tb.FromTime(now()))
	_, err := e.conn.WriteToUDP(buf, e.raddr)
	if err != nil {
		return &SocketError{Op: "sendto", Err: err}
	}
	e.stats.reqCounter.Inc()
	return nil
}

func (e *Engine) recvLoop(ctx context.Context) error {
	buf := make([]byte, recvSize)

	for {
		n, remote, err := e.conn.ReadFromUDP(buf)
		send := atomic.LoadInt64(&e.lastSend)
		recv := e.tb.FromTime(now())
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return &SocketError{Op: "recvfrom", Err: err}
		}

		r, err := e.decode(buf[:n], remote, send, recv)
		if err != nil {
			log.WithFields(log.Fields{
				"responder": remote.String(),
				"size":      n,
			}).WithError(err).Warn("drop datagram")
			e.stats.dropCounter.WithLabelValues("small").Inc()
			continue
		}

		if err = e.sink.Write(r); err != nil {
			return errors.Wrap(err, "sink")
		}
		e.stats.logRecord(r, e.tb)
		e.summary.Add(r, e.tb)

		count := atomic.AddInt64(&e.replies, 1)
		if e.cfg.Count > 0 && count >= int64(e.cfg.Count) {
			log.WithField("count", count).Info("record count reached")
			return nil
		}
	}
}

func (e *Engine) decode(b []byte, remote *net.UDPAddr, send, recv int64) (*Record, error) {
	if debug {
		log.Debugf("%s -> %s", remote, hex.EncodeToString(b))
	}
	p, _, err := Decode(b, 0)
	if err != nil {
		return nil, err
	}
	ctx := log.WithFields(log.Fields{
		"responder": remote.String(),
		"mode":      p.Mode,
		"stratum":   p.Stratum,
		"poll":      log2Duration(p.Poll),
		"precision": log2Duration(p.Precision),
		"transmit":  p.Transmit.Time(),
	})
	if p.Mode != ModeServer {
		ctx.Debug("reply not in server mode")
	} else {
		ctx.Debug("reply")
	}
	return &Record{
		Send:      send,
		Recv:      recv,
		Responder: remote.IP.String(),
		Packet:    p,
	}, nil
}
