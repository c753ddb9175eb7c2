package config

// SchedulerConfigs the map of available configurations. Sections left out of
// a named configuration, or whose Type/Algorithm/Addr is empty, take the
// "default" values.
var SchedulerConfigs = map[string]string{
	"default": `{
		"Scheduler": {
			"Algorithm": "proportional",
			"MaxKnapsackCells": 10000000,
			"RoundPrefix": "round"
		},
		"Ledger": {
			"Type": "memory",
			"MaxRetries": 3
		},
		"API": {
			"Addr": "localhost:9095",
			"MaxRoundsPerSecond": 10,
			"Burst": 20,
			"StatsLatch": "15s"
		}
	}`,
	"local.file": `{
		"Ledger": {
			"Type": "file",
			"Path": "nodesched-ledger.json",
			"MaxRetries": 3
		}
	}`,
	"local.etcd": `{
		"Ledger": {
			"Type": "etcd",
			"Endpoints": ["localhost:2379"],
			"Prefix": "/nodesched/ledger/",
			"DialTimeout": "5s",
			"MaxRetries": 5
		}
	}`,
	"bestfit.file": `{
		"Scheduler": {
			"Algorithm": "bestfit",
			"RoundPrefix": "bestfit"
		},
		"Ledger": {
			"Type": "file",
			"Path": "nodesched-bestfit-ledger.json",
			"MaxRetries": 3
		}
	}`,
}
