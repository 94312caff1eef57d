package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	"github.com/apex/log"
	"github.com/apex/log/handlers/cli"
	"github.com/apex/log/handlers/json"
	"github.com/apex/log/handlers/text"

	ntpcli "github.com/microsoft/Windows-Time-Calibration-Tools/ntpcli"
)

var (
	Version = "dev"

	app = kingpin.New("ntpcli", "Poll an NTP server and print one line per reply.")

	fConfig   = app.Flag("config", "yaml config file").Short('c').String()
	fHost     = app.Flag("host", "NTP server name or address").Short('H').String()
	fPort     = app.Flag("port", "server port (default 123)").String()
	fInterval = app.Flag("interval", "poll interval (default 5s)").Short('i').Duration()
	fDuration = app.Flag("duration", "run duration (default 60s)").Short('d').Duration()
	fWarmup   = app.Flag("warmup", "delay before the run duration starts (default 1s)").Duration()
	fForm     = app.Flag("form", "output form").Short('f').Enum(string(ntpcli.FormShort), string(ntpcli.FormLong))
	fTimeBase = app.Flag("time-base", "local time unit").Enum(ntpcli.FileTime.Name, ntpcli.UnixNano.Name)
	fCount    = app.Flag("count", "stop after n replies").Short('n').Int()
	fMetric   = app.Flag("metric", "prometheus listen address").String()
	fGeoDB    = app.Flag("geodb", "GeoLite2 country database").String()
	fRef      = app.Flag("reference", "run a standard NTP query before polling").Bool()

	fLogLevel  = app.Flag("log-level", "log level").Default("info").Enum("debug", "info", "warn", "error")
	fLogFormat = app.Flag("log-format", "log format").Default("cli").Enum("cli", "text", "json")
)

func main() {
	app.Version(Version)
	kingpin.MustParse(app.Parse(os.Args[1:]))

	setupLog(*fLogLevel, *fLogFormat)

	cfg, err := loadConfig()
	if err != nil {
		log.WithError(err).Error("config")
		os.Exit(1)
	}
	log.Debugf("%+v", cfg)

	tb, _ := ntpcli.TimeBaseByName(cfg.TimeBase)
	sink := ntpcli.NewCSVSink(os.Stdout, cfg.Form, tb)
	if err = sink.WriteHeader(); err != nil {
		log.WithError(err).Error("output")
		os.Exit(1)
	}

	if cfg.Reference {
		if _, err = ntpcli.ReferenceCheck(cfg); err != nil {
			log.WithError(err).Warn("reference check")
		}
	}

	e, err := ntpcli.New(cfg, sink)
	if err != nil {
		log.WithError(err).Error("startup")
		os.Exit(ntpcli.ErrorCode(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = e.RunFor(ctx)
	stop()

	if st, serr := e.Summary().Stats(); serr == nil {
		log.WithFields(st.Fields()).Info("summary")
	}

	if err != nil {
		log.WithError(err).WithField("server", e.RemoteAddr().String()).Error("exchange")
		os.Exit(ntpcli.ErrorCode(err))
	}
}

func setupLog(level, format string) {
	switch format {
	case "json":
		log.SetHandler(json.New(os.Stderr))
	case "text":
		log.SetHandler(text.New(os.Stderr))
	default:
		log.SetHandler(cli.New(os.Stderr))
	}
	log.SetLevel(log.MustParseLevel(level))
}

// loadConfig reads the config file if given and lets flags override it.
func loadConfig() (cfg *ntpcli.Config, err error) {
	cfg = &ntpcli.Config{}
	if *fConfig != "" {
		cfg, err = ntpcli.NewConfigFromFile(*fConfig)
		if err != nil {
			return nil, err
		}
	}

	if *fHost != "" {
		cfg.Host = *fHost
	}
	if *fPort != "" {
		cfg.Port = *fPort
	}
	if *fInterval != 0 {
		cfg.Interval = *fInterval
	}
	if *fDuration != 0 {
		cfg.Duration = *fDuration
	}
	if *fWarmup != 0 {
		cfg.Warmup = *fWarmup
	}
	if *fForm != "" {
		cfg.Form = ntpcli.Form(*fForm)
	}
	if *fTimeBase != "" {
		cfg.TimeBase = *fTimeBase
	}
	if *fCount != 0 {
		cfg.Count = *fCount
	}
	if *fMetric != "" {
		cfg.Metric = *fMetric
	}
	if *fGeoDB != "" {
		cfg.GeoDB = *fGeoDB
	}
	if *fRef {
		cfg.Reference = true
	}
	return cfg, cfg.Validate()
}
