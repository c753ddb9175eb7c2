package cli

import (
	"context"
	"encoding/json"
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	cerrors "github.com/twitter/nodesched/common/errors"
	"github.com/twitter/nodesched/common/endpoints"
	"github.com/twitter/nodesched/generator"
	"github.com/twitter/nodesched/scheduler/api"
	"github.com/twitter/nodesched/scheduler/bestfit"
	"github.com/twitter/nodesched/scheduler/client"
	"github.com/twitter/nodesched/scheduler/domain"
	"github.com/twitter/nodesched/scheduler/ledger"
	"github.com/twitter/nodesched/scheduler/server"
)

// demoCmd places the fixed demo tasks with the best-fit time scheduler. The
// stored ledger is not touched.
type demoCmd struct {
	out outputFlags
}

func (c *demoCmd) RegisterFlags() *cobra.Command {
	r := &cobra.Command{
		Use:   "demo",
		Short: "Place the demo tasks on the demo nodes by speed and uptime",
	}
	c.out.register(r)
	return r
}

func (c *demoCmd) Run(cl *CLIClient, cmd *cobra.Command, args []string) error {
	sched, release, err := cl.scheduler()
	if err != nil {
		return err
	}
	defer release()

	nodes, tasks := generator.DemoTimeData()
	res, err := sched.RunRound(context.Background(), domain.Request{
		Algorithm: bestfit.AlgorithmName,
		Batch:     domain.Batch{Nodes: nodes, Tasks: tasks, Ledger: ledger.New()},
	})
	if err != nil {
		return roundError(err)
	}
	return c.out.write(cl.Out, res)
}

type ledgerCmd struct {
	printAsJson bool
}

func (c *ledgerCmd) RegisterFlags() *cobra.Command {
	r := &cobra.Command{
		Use:   "ledger",
		Short: "Print the historical usage ledger",
	}
	r.Flags().BoolVar(&c.printAsJson, "json", false, "Print out the ledger as JSON")
	return r
}

func (c *ledgerCmd) Run(cl *CLIClient, cmd *cobra.Command, args []string) error {
	sched, release, err := cl.scheduler()
	if err != nil {
		return err
	}
	defer release()

	l, err := sched.Ledger(context.Background())
	if err != nil {
		return cerrors.NewError(err, cerrors.LedgerStoreExitCode)
	}
	if c.printAsJson {
		asJson, err := json.Marshal(l)
		if err != nil {
			return err
		}
		fmt.Fprintf(cl.Out, "%s\n", asJson)
		return nil
	}
	for _, name := range l.Names() {
		fmt.Fprintf(cl.Out, "%s: %g\n", name, l.Get(name))
	}
	return nil
}

type algorithmsCmd struct{}

func (c *algorithmsCmd) RegisterFlags() *cobra.Command {
	return &cobra.Command{
		Use:   "algorithms",
		Short: "List the scheduling algorithms",
	}
}

func (c *algorithmsCmd) Run(cl *CLIClient, cmd *cobra.Command, args []string) error {
	names := server.AlgorithmNames()
	if cl.Addr != "" {
		var err error
		if names, err = client.NewClient(cl.Addr, nil).Algorithms(context.Background()); err != nil {
			return err
		}
	}
	for _, n := range names {
		fmt.Fprintln(cl.Out, n)
	}
	return nil
}

// serveCmd runs the api server from the configuration.
type serveCmd struct {
	listen string
}

func (c *serveCmd) RegisterFlags() *cobra.Command {
	r := &cobra.Command{
		Use:   "serve",
		Short: "Serve the nodesched api",
	}
	r.Flags().StringVar(&c.listen, "listen", "", "Bind address, overriding the configured API.Addr")
	return r
}

func (c *serveCmd) Run(cl *CLIClient, cmd *cobra.Command, args []string) error {
	cfg := cl.cfg
	addr := orDefault(c.listen, cfg.API.Addr)
	latch, err := cfg.API.Latch()
	if err != nil {
		return cerrors.NewError(err, cerrors.InvalidInputExitCode)
	}

	store, closer, err := cfg.Ledger.CreateStore()
	if err != nil {
		return cerrors.Wrap(err, cerrors.LedgerStoreExitCode, "opening ledger store")
	}
	defer closer()

	stat, cancel := endpoints.MakeStatsReceiver("nodesched", latch)
	defer cancel()
	sched, err := server.NewScheduler(cfg.Scheduler.CreateSchedulerConfig(), store, stat)
	if err != nil {
		return cerrors.NewError(err, cerrors.InvalidInputExitCode)
	}

	log.Infof("starting nodesched api with config %s", cfg)
	h := api.NewHandler(sched, stat, cfg.API.MaxRoundsPerSecond, cfg.API.Burst)
	return api.Serve(addr, h)
}
