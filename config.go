package ntpcli

import (
	"io/ioutil"
	"net"
	"time"

	"github.com/pkg/errors"
	yaml "gopkg.in/yaml.v2"
)

// Form selects how records are printed.
type Form string

const (
	FormShort Form = "short"
	FormLong  Form = "long"
)

const (
	defaultPort     = "123"
	defaultInterval = 5 * time.Second
	defaultDuration = 60 * time.Second
	defaultWarmup   = time.Second
	defaultRefTO    = 5 * time.Second
	minInterval     = 10 * time.Millisecond
)

type Config struct {
	Host     string        `yaml:"host"`
	Port     string        `yaml:"port"`
	Interval time.Duration `yaml:"interval"`
	Duration time.Duration `yaml:"duration"`
	Warmup   time.Duration `yaml:"warmup"`
	Form     Form          `yaml:"form"`
	TimeBase string        `yaml:"time_base"`
	Count    int           `yaml:"count"`

	Metric string `yaml:"metric"`
	GeoDB  string `yaml:"geo_db"`

	Reference        bool          `yaml:"reference"`
	ReferenceTimeout time.Duration `yaml:"reference_timeout"`
}

func NewConfigFromFile(path string) (cfg *Config, err error) {
	p, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read config %s", path)
	}
	cfg = &Config{}
	err = yaml.UnmarshalStrict(p, cfg)
	if err != nil {
		return nil, errors.Wrapf(err, "parse config %s", path)
	}
	return cfg, nil
}

// Validate fills in defaults and rejects unusable values.
func (c *Config) Validate() error {
	if c.Host == "" {
		return errors.New("host must be specified")
	}
	if c.Port == "" {
		c.Port = defaultPort
	}
	if _, err := net.LookupPort("udp", c.Port); err != nil {
		return errors.Wrapf(err, "invalid port %q", c.Port)
	}
	if c.Interval == 0 {
		c.Interval = defaultInterval
	}
	if c.Interval < minInterval {
		return errors.Errorf("interval %s below %s", c.Interval, minInterval)
	}
	if c.Duration == 0 {
		c.Duration = defaultDuration
	}
	if c.Duration < 0 {
		return errors.Errorf("negative duration %s", c.Duration)
	}
	if c.Warmup == 0 {
		c.Warmup = defaultWarmup
	}
	if c.Warmup < 0 {
		return errors.Errorf("negative warmup %s", c.Warmup)
	}
	switch c.Form {
	case "":
		c.Form = FormShort
	case FormShort, FormLong:
	default:
		return errors.Errorf("unknown form %q", c.Form)
	}
	if c.TimeBase == "" {
		c.TimeBase = FileTime.Name
	}
	if _, ok := TimeBaseByName(c.TimeBase); !ok {
		return errors.Errorf("unknown time base %q", c.TimeBase)
	}
	if c.Count < 0 {
		return errors.Errorf("negative count %d", c.Count)
	}
	if c.ReferenceTimeout == 0 {
		c.ReferenceTimeout = defaultRefTO
	}
	return nil
}

func (c *Config) timeBase() TimeBase {
	tb, ok := TimeBaseByName(c.TimeBase)
	if !ok {
		return FileTime
	}
	return tb
}

// Addr is the host:port pair to resolve.
func (c *Config) Addr() string {
	port := c.Port
	if port == "" {
		port = defaultPort
	}
	return net.JoinHostPort(c.Host, port)
}
