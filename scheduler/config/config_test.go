package config

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twitter/nodesched/scheduler/server"
)

// Tests to ensure every named config parses and builds a scheduler config
func TestGettingConfigurations(t *testing.T) {
	for name := range SchedulerConfigs {
		cfg, err := GetServiceConfig(name)
		require.NoError(t, err, name)
		_, err = server.NewScheduler(cfg.Scheduler.CreateSchedulerConfig(), nil, nil)
		assert.NoError(t, err, name)
		_, err = cfg.API.Latch()
		assert.NoError(t, err, name)
	}

	selector := "invalid.selector"
	cfg, err := GetServiceConfig(selector)
	assert.NotNil(t, err, fmt.Sprintf("configuration returned for %s: %s", selector, cfg))
}

// TestDefaultsFillMissingSections test overriding default structure values
// with values from the named config.
func TestDefaultsFillMissingSections(t *testing.T) {
	cfg, err := GetServiceConfig("local.etcd")
	require.NoError(t, err)
	assert.Equal(t, "etcd", cfg.Ledger.Type)
	assert.Equal(t, []string{"localhost:2379"}, cfg.Ledger.Endpoints)
	assert.Equal(t, "proportional", cfg.Scheduler.Algorithm)
	assert.Equal(t, int64(10000000), cfg.Scheduler.MaxKnapsackCells)
	assert.Equal(t, "localhost:9095", cfg.API.Addr)

	cfg, err = GetServiceConfig(`{"Scheduler": {"Algorithm": "knapsack"}, "API": {"Addr": ":0", "StatsLatch": "1s"}}`)
	require.NoError(t, err)
	assert.Equal(t, "knapsack", cfg.Scheduler.Algorithm)
	assert.Equal(t, "memory", cfg.Ledger.Type)
	latch, err := cfg.API.Latch()
	require.NoError(t, err)
	assert.Equal(t, time.Second, latch)

	_, err = GetServiceConfig(`{"Scheduler": `)
	assert.Error(t, err)
}

func TestCreateStore(t *testing.T) {
	dir, err := ioutil.TempDir("", "config")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	for _, lc := range []LedgerJSONConfig{
		{Type: "memory"},
		{Type: "file", Path: filepath.Join(dir, "ledger.json")},
	} {
		store, closeFn, err := lc.CreateStore()
		require.NoError(t, err, lc.String())
		assert.NotNil(t, store)
		assert.NoError(t, closeFn())
	}

	_, _, err = LedgerJSONConfig{Type: "file"}.CreateStore()
	assert.Error(t, err)
	_, _, err = LedgerJSONConfig{Type: "etcd", DialTimeout: "soon"}.CreateStore()
	assert.Error(t, err)
	_, _, err = LedgerJSONConfig{Type: "postgres"}.CreateStore()
	assert.Error(t, err)
}
