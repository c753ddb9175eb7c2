package config

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/twitter/nodesched/scheduler/ledger"
	"github.com/twitter/nodesched/scheduler/server"
)

// ServiceConfig config structure holding the json configs of every component
type ServiceConfig struct {
	Scheduler SchedulerJSONConfig `json:"Scheduler"`
	Ledger    LedgerJSONConfig    `json:"Ledger"`
	API       APIJSONConfig       `json:"API"`
}

func (s ServiceConfig) String() string {
	return fmt.Sprintf("\n%s\n%s\n%s", s.Scheduler, s.Ledger, s.API)
}

type SchedulerJSONConfig struct {
	Algorithm        string `json:"Algorithm"`        // bestfit, knapsack, roundrobin, proportional
	MaxKnapsackCells int64  `json:"MaxKnapsackCells"` // default to 10000000
	RoundPrefix      string `json:"RoundPrefix"`
}

func (sc SchedulerJSONConfig) String() string {
	return fmt.Sprintf("SchedulerJSONConfig: Algorithm: %s, MaxKnapsackCells: %d, RoundPrefix: %s",
		sc.Algorithm, sc.MaxKnapsackCells, sc.RoundPrefix)
}

func (sc SchedulerJSONConfig) CreateSchedulerConfig() server.SchedulerConfig {
	return server.SchedulerConfig{
		Algorithm:        sc.Algorithm,
		MaxKnapsackCells: sc.MaxKnapsackCells,
		RoundPrefix:      sc.RoundPrefix,
	}
}

type LedgerJSONConfig struct {
	Type        string   `json:"Type"`        // memory, file, etcd
	Path        string   `json:"Path"`        // file only
	Endpoints   []string `json:"Endpoints"`   // etcd only
	Prefix      string   `json:"Prefix"`      // etcd only, default to /nodesched/ledger/
	DialTimeout string   `json:"DialTimeout"` // etcd only, default to 5s
	MaxRetries  int      `json:"MaxRetries"`
}

func (lc LedgerJSONConfig) String() string {
	return fmt.Sprintf("LedgerJSONConfig: Type: %s, Path: %s, Endpoints: %v, Prefix: %s, DialTimeout: %s, MaxRetries: %d",
		lc.Type, lc.Path, lc.Endpoints, lc.Prefix, lc.DialTimeout, lc.MaxRetries)
}

// CreateStore opens the configured ledger store. The returned func releases
// it and is never nil.
func (lc LedgerJSONConfig) CreateStore() (ledger.Store, func() error, error) {
	nop := func() error { return nil }
	switch lc.Type {
	case "memory":
		return ledger.NewMemoryStore(nil), nop, nil
	case "file":
		if lc.Path == "" {
			return nil, nop, errors.New("file ledger needs a Path")
		}
		return ledger.NewFileStore(lc.Path, lc.MaxRetries), nop, nil
	case "etcd":
		timeout := 5 * time.Second
		if lc.DialTimeout != "" {
			var err error
			if timeout, err = time.ParseDuration(lc.DialTimeout); err != nil {
				return nil, nop, errors.Wrapf(err, "etcd DialTimeout %q", lc.DialTimeout)
			}
		}
		s, err := ledger.NewEtcdStore(lc.Endpoints, lc.Prefix, timeout, lc.MaxRetries)
		if err != nil {
			return nil, nop, err
		}
		return s, s.Close, nil
	}
	return nil, nop, errors.Errorf("unknown ledger type %q, expected memory, file or etcd", lc.Type)
}

type APIJSONConfig struct {
	Addr               string  `json:"Addr"`
	MaxRoundsPerSecond float64 `json:"MaxRoundsPerSecond"` // <= 0 disables the limit
	Burst              int     `json:"Burst"`
	StatsLatch         string  `json:"StatsLatch"` // default to 15s
}

func (ac APIJSONConfig) String() string {
	return fmt.Sprintf("APIJSONConfig: Addr: %s, MaxRoundsPerSecond: %g, Burst: %d, StatsLatch: %s",
		ac.Addr, ac.MaxRoundsPerSecond, ac.Burst, ac.StatsLatch)
}

// Latch parses StatsLatch.
func (ac APIJSONConfig) Latch() (time.Duration, error) {
	if ac.StatsLatch == "" {
		return 15 * time.Second, nil
	}
	d, err := time.ParseDuration(ac.StatsLatch)
	return d, errors.Wrapf(err, "StatsLatch %q", ac.StatsLatch)
}

// GetConfigText returns the named configuration, or configSelector itself
// when it is a literal JSON object.
func GetConfigText(configSelector string) ([]byte, error) {
	if strings.HasPrefix(strings.TrimSpace(configSelector), "{") {
		return []byte(configSelector), nil
	}
	configText, ok := SchedulerConfigs[configSelector]
	if !ok {
		keys := make([]string, 0, len(SchedulerConfigs))
		for k := range SchedulerConfigs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return nil, errors.Errorf("invalid configuration %s, supported values are %v", configSelector, keys)
	}
	return []byte(configText), nil
}

// GetServiceConfig parses the selected configuration over the defaults.
func GetServiceConfig(configSelector string) (*ServiceConfig, error) {
	defaultConfig := &ServiceConfig{}
	defaultText, _ := GetConfigText("default")
	if err := json.Unmarshal(defaultText, defaultConfig); err != nil {
		return nil, errors.Wrap(err, "couldn't parse the default config")
	}

	configText, err := GetConfigText(configSelector)
	if err != nil {
		return nil, err
	}
	cfg := &ServiceConfig{}
	if err := json.Unmarshal(configText, cfg); err != nil {
		return nil, errors.Wrapf(err, "couldn't parse config %s", configSelector)
	}

	// use the default values for any sections that were not set
	if cfg.Scheduler.Algorithm == "" {
		log.Infof("using default Scheduler config")
		cfg.Scheduler = defaultConfig.Scheduler
	}
	if cfg.Ledger.Type == "" {
		log.Infof("using default Ledger config")
		cfg.Ledger = defaultConfig.Ledger
	}
	if cfg.API.Addr == "" {
		log.Infof("using default API config")
		cfg.API = defaultConfig.API
	}
	return cfg, nil
}
