package ntpcli

import (
	"net"
	"net/http"

	"github.com/apex/log"
	geoip2 "github.com/oschwald/geoip2-golang"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type statistic struct {
	registry *prometheus.Registry

	reqCounter   prometheus.Counter
	replyCounter *prometheus.CounterVec
	dropCounter  *prometheus.CounterVec
	offsetGauge  prometheus.Gauge
	rttGauge     prometheus.Gauge
	delayGauge   prometheus.Gauge
	dispGauge    prometheus.Gauge
	stratumGauge prometheus.Gauge
	geoDB        *geoip2.Reader
}

func newStatistic(cfg *Config) (*statistic, error) {
	var (
		geoDB *geoip2.Reader
		err   error
	)

	if cfg.GeoDB != "" {
		geoDB, err = geoip2.Open(cfg.GeoDB)
		if err != nil {
			return nil, errors.Wrapf(err, "open geo db %s", cfg.GeoDB)
		}
	}

	s := &statistic{
		registry: prometheus.NewRegistry(),
		geoDB:    geoDB,
	}

	s.reqCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "ntp",
		Subsystem: "client",
		Name:      "requests_total",
		Help:      "The total number of ntp requests sent",
	})
	s.replyCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ntp",
		Subsystem: "client",
		Name:      "replies_total",
		Help:      "The total number of ntp replies decoded",
	}, []string{"cc"})
	s.dropCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ntp",
		Subsystem: "client",
		Name:      "dropped_total",
		Help:      "The total number of datagrams dropped",
	}, []string{"reason"})

	s.offsetGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "ntp",
		Subsystem: "stat",
		Name:      "offset_sec",
		Help:      "The coarse offset of the server midpoint to the local midpoint",
	})
	s.rttGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "ntp",
		Subsystem: "stat",
		Name:      "rtt_sec",
		Help:      "The local round trip of the last exchange",
	})
	s.delayGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "ntp",
		Subsystem: "stat",
		Name:      "root_delay_sec",
		Help:      "The root delay reported by the server",
	})
	s.dispGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "ntp",
		Subsystem: "stat",
		Name:      "root_dispersion_sec",
		Help:      "The root dispersion reported by the server",
	})
	s.stratumGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "ntp",
		Subsystem: "stat",
		Name:      "stratum",
		Help:      "The stratum reported by the server",
	})

	s.registry.MustRegister(
		s.reqCounter,
		s.replyCounter,
		s.dropCounter,
		s.offsetGauge,
		s.rttGauge,
		s.delayGauge,
		s.dispGauge,
		s.stratumGauge,
	)
	return s, nil
}

// serve exposes the registry on addr in the background.
func (s *statistic) serve(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	log.Infof("listen metric: %s", addr)
	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.WithError(err).Error("metric listener exited")
		}
	}()
}

func (s *statistic) logRecord(r *Record, tb TimeBase) {
	s.offsetGauge.Set(tb.Seconds(r.Offset(tb)))
	s.rttGauge.Set(tb.Seconds(r.RoundTrip()))
	s.delayGauge.Set(r.Packet.RootDelay.Duration().Seconds())
	s.dispGauge.Set(r.Packet.RootDispersion.Duration().Seconds())
	s.stratumGauge.Set(float64(r.Packet.Stratum))
	s.replyCounter.WithLabelValues(s.country(r.Responder)).Inc()
}

func (s *statistic) country(addr string) string {
	if s.geoDB == nil {
		return ""
	}
	ip := net.ParseIP(addr)
	if ip == nil {
		return ""
	}
	country, err := s.geoDB.Country(ip)
	if err != nil {
		log.WithError(err).Warn("stat ip")
		return ""
	}
	return country.Country.IsoCode
}

func (s *statistic) close() {
	if s.geoDB != nil {
		s.geoDB.Close()
	}
	s.geoDB = nil
}
