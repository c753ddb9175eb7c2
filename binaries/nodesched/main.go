package main

import (
	"os"

	log "github.com/sirupsen/logrus"

	cerrors "github.com/twitter/nodesched/common/errors"
	"github.com/twitter/nodesched/scheduler/client/cli"
)

// CLI binary for nodesched
//	Supported commands: (see "-h" for all options)
//		run [--algorithm a] [--input request.json] [--history n=v,...]
//		knapsack [--input request.json]
//		demo
//		ledger
//		algorithms
//		serve [--listen host:port]
//	Global flags:
//		--addr [<host:port> of a nodesched api server, rounds run locally when unset]
//		--config [named configuration or literal JSON]
//		--log_level [<error|info|debug> level and above should be logged]

func main() {
	if err := cli.NewCLIClient().Exec(); err != nil {
		log.Errorf("nodesched: %v", err)
		os.Exit(int(cerrors.ExitCodeOf(err)))
	}
}
